// Package catalog caches the product list fetched from the API.
//
// Concurrent refreshes share one request. Each refresh takes a generation
// number when it starts; a result is applied only if no newer refresh has
// been applied already, so a slow response never overwrites a fresher one.
package catalog

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/storefront/cart"
)

// Fetcher loads the full product list.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]cart.Product, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]cart.Product, error)

// FetchCatalog calls f.
func (f FetcherFunc) FetchCatalog(ctx context.Context) ([]cart.Product, error) { return f(ctx) }

// StockUpdate is a pushed stock level for one product.
type StockUpdate struct {
	ProductID string
	Stock     int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// Catalog is the client-side product cache.
type Catalog struct {
	fetcher Fetcher
	logger  *slog.Logger
	sf      singleflight.Group
	issued  atomic.Uint64

	mu       sync.RWMutex
	products []cart.Product
	byID     map[string]int
	applied  uint64
}

// New returns an empty catalog backed by f.
func New(f Fetcher, opts ...Option) *Catalog {
	c := &Catalog{
		fetcher: f,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		byID:    map[string]int{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh fetches the product list and applies it if it is the newest
// result. Callers that arrive while a fetch is running share its result.
//
// The shared fetch is not tied to any one caller: a caller whose ctx is done
// returns ctx.Err() at once while the fetch carries on for the others. It is
// bounded by the fetcher's own timeout.
func (c *Catalog) Refresh(ctx context.Context) ([]cart.Product, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan("catalog", func() (any, error) {
		gen := c.issued.Add(1)
		products, err := c.fetcher.FetchCatalog(fetchCtx)
		if err != nil {
			return nil, err
		}
		if !c.apply(gen, products) {
			c.logger.DebugContext(fetchCtx, "catalog: dropped stale refresh", slog.Uint64("generation", gen))
		}
		return products, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		c.logger.DebugContext(ctx, "catalog: caller left before refresh finished")
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		c.logger.WarnContext(ctx, "catalog: refresh failed", slog.Any("err", res.Err))
		return nil, res.Err
	}
	if res.Shared {
		c.logger.DebugContext(ctx, "catalog: joined in-flight refresh")
	}
	return slices.Clone(res.Val.([]cart.Product)), nil
}

// Replace installs products as if a refresh had just completed.
func (c *Catalog) Replace(products []cart.Product) {
	c.apply(c.issued.Add(1), products)
}

func (c *Catalog) apply(gen uint64, products []cart.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.applied {
		return false
	}
	c.applied = gen
	c.products = slices.Clone(products)
	c.byID = make(map[string]int, len(products))
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return true
}

// Generation is the generation of the applied product list, 0 before the
// first refresh.
func (c *Catalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied
}

// ApplyUpdate sets the stock of one product. ok is false for unknown ids.
func (c *Catalog) ApplyUpdate(u StockUpdate) (cart.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byID[u.ProductID]
	if !ok {
		return cart.Product{}, false
	}
	c.products[i].AvailableStock = u.Stock
	return c.products[i], true
}

// Products returns every cached product.
func (c *Catalog) Products() []cart.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

// Lookup returns the cached product with id.
func (c *Catalog) Lookup(id string) (cart.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return cart.Product{}, false
	}
	return c.products[i], true
}

// Active returns products whose status is ACTIVE.
func (c *Catalog) Active() []cart.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]cart.Product, 0, len(c.products))
	for _, p := range c.products {
		if strings.EqualFold(p.Status, cart.StatusActive) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, p := range c.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Search returns active products whose name, model or category contains
// query (case-insensitive), restricted to category when it is non-empty.
func (c *Catalog) Search(query, category string) []cart.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []cart.Product
	for _, p := range c.Active() {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Model), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
