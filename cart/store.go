package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrEthical07/storefront/kv"
)

var (
	// ErrPersistence wraps storage failures. In-memory state is unchanged
	// when it is returned.
	ErrPersistence = errors.New("cart: persistence failed")
	// ErrNotBound is returned by mutations before Hydrate bound a customer.
	ErrNotBound = errors.New("cart: no customer bound")
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the cart and wishlist of one customer.
type Store struct {
	storage kv.Storage
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	owner    string
	bound    bool
	cart     []CartEntry
	wishlist []WishlistEntry
	gen      uint64
}

// NewStore returns an unbound Store.
func NewStore(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys returns the storage keys owned by the store.
func (s *Store) Keys() []string {
	return []string{KeyCart, KeyWishlist}
}

// Hydrate binds the store to owner and loads both collections. Collections
// persisted for a different customer, or that fail to decode, load empty.
func (s *Store) Hydrate(ctx context.Context, owner string) {
	cart := s.loadCart(ctx, owner)
	wishlist := s.loadWishlist(ctx, owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
	s.bound = owner != ""
	s.cart = cart
	s.wishlist = wishlist
	s.gen++
}

func (s *Store) loadCart(ctx context.Context, owner string) []CartEntry {
	raw, ok := s.read(ctx, KeyCart)
	if !ok {
		return nil
	}
	env, err := decodeEnvelope[CartEntry](raw)
	if err != nil {
		s.logger.WarnContext(ctx, "cart: discarding corrupt cart", slog.Any("err", err))
		return nil
	}
	if env.Owner != owner {
		return nil
	}
	return sanitizeCart(env.Entries)
}

func (s *Store) loadWishlist(ctx context.Context, owner string) []WishlistEntry {
	raw, ok := s.read(ctx, KeyWishlist)
	if !ok {
		return nil
	}
	env, err := decodeEnvelope[WishlistEntry](raw)
	if err != nil {
		s.logger.WarnContext(ctx, "cart: discarding corrupt wishlist", slog.Any("err", err))
		return nil
	}
	if env.Owner != owner {
		return nil
	}
	return sanitizeWishlist(env.Entries)
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "cart: read", slog.String("key", key), slog.Any("err", err))
		return "", false
	}
	return raw, ok
}

// Reset unbinds the customer and empties memory. Storage is not touched.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = ""
	s.bound = false
	s.cart = nil
	s.wishlist = nil
	s.gen++
}

// Owner returns the bound customer id.
func (s *Store) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Generation increases on every change to the in-memory collections.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// commit persists the collections that are non-nil and then swaps them in.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, cart *[]CartEntry, wishlist *[]WishlistEntry) error {
	values := make(map[string]string, 2)
	if cart != nil {
		raw, err := encodeEnvelope(s.owner, *cart)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		values[KeyCart] = raw
	}
	if wishlist != nil {
		raw, err := encodeEnvelope(s.owner, *wishlist)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		values[KeyWishlist] = raw
	}

	if err := s.storage.SetMany(ctx, values); err != nil {
		s.logger.ErrorContext(ctx, "cart: write", slog.String("owner", s.owner), slog.Any("err", err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if cart != nil {
		s.cart = *cart
	}
	if wishlist != nil {
		s.wishlist = *wishlist
	}
	s.gen++
	return nil
}

// AddToCart adds one unit of p, merging with an existing entry.
func (s *Store) AddToCart(ctx context.Context, p Product) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	next, n, ok := s.planAdd(s.cart, p)
	if !ok {
		return n, nil
	}
	if err := s.commit(ctx, &next, nil); err != nil {
		return Notice{}, err
	}
	return n, nil
}

// planAdd computes the cart after adding one unit of p. ok is false when the
// add is refused, with the reason in the notice.
func (s *Store) planAdd(cur []CartEntry, p Product) ([]CartEntry, Notice, bool) {
	if !p.InStock() {
		return nil, notice(NoticeOutOfStock), false
	}

	i := indexCart(cur, p.ID)
	if i < 0 {
		next := append(slices.Clone(cur), CartEntry{Product: p, Quantity: 1, AddedAt: s.now()})
		return next, notice(NoticeAddedToCart), true
	}

	if cur[i].Quantity+1 > p.AvailableStock {
		return nil, stockLimit(p.AvailableStock), false
	}
	next := slices.Clone(cur)
	next[i].Quantity++
	next[i].Product = p
	return next, notice(NoticeQuantityUpdated), true
}

// SetQuantity sets the quantity of the entry for id. A quantity below one
// removes the entry; one above the entry's stock snapshot is refused.
func (s *Store) SetQuantity(ctx context.Context, id string, qty int) (Notice, error) {
	return s.SetQuantityWithin(ctx, id, qty, -1)
}

// SetQuantityWithin is SetQuantity with a second stock ceiling, usually the
// catalog's latest stock for id. The lower of known and the entry's snapshot
// applies, and a lower known stock is written into the snapshot. A negative
// known is ignored.
func (s *Store) SetQuantityWithin(ctx context.Context, id string, qty, known int) (Notice, error) {
	if qty < 1 {
		return s.RemoveFromCart(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	i := indexCart(s.cart, id)
	if i < 0 {
		return notice(NoticeNotInCart), nil
	}
	stock := s.cart[i].Product.AvailableStock
	if known >= 0 && known < stock {
		stock = known
	}
	if qty > stock {
		return stockLimit(stock), nil
	}
	if s.cart[i].Quantity == qty && s.cart[i].Product.AvailableStock == stock {
		return notice(NoticeQuantityUpdated), nil
	}

	next := slices.Clone(s.cart)
	next[i].Quantity = qty
	next[i].Product.AvailableStock = stock
	if err := s.commit(ctx, &next, nil); err != nil {
		return Notice{}, err
	}
	return notice(NoticeQuantityUpdated), nil
}

// RemoveFromCart drops the entry for id.
func (s *Store) RemoveFromCart(ctx context.Context, id string) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	if indexCart(s.cart, id) < 0 {
		return notice(NoticeNotInCart), nil
	}
	next := slices.DeleteFunc(slices.Clone(s.cart), func(e CartEntry) bool { return e.Product.ID == id })
	if err := s.commit(ctx, &next, nil); err != nil {
		return Notice{}, err
	}
	return notice(NoticeRemovedFromCart), nil
}

// ClearCart empties the cart in one write.
func (s *Store) ClearCart(ctx context.Context) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	next := []CartEntry{}
	if err := s.commit(ctx, &next, nil); err != nil {
		return Notice{}, err
	}
	return notice(NoticeCartCleared), nil
}

// AddToWishlist saves p. Saving a product twice is a no-op.
func (s *Store) AddToWishlist(ctx context.Context, p Product) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	if indexWishlist(s.wishlist, p.ID) >= 0 {
		return notice(NoticeAlreadyInWishlist), nil
	}
	next := append(slices.Clone(s.wishlist), WishlistEntry{Product: p, WishlistedAt: s.now()})
	if err := s.commit(ctx, nil, &next); err != nil {
		return Notice{}, err
	}
	return notice(NoticeAddedToWishlist), nil
}

// RemoveFromWishlist drops id from the wishlist. Absent ids are a no-op.
func (s *Store) RemoveFromWishlist(ctx context.Context, id string) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	if indexWishlist(s.wishlist, id) < 0 {
		return Notice{}, nil
	}
	next := slices.DeleteFunc(slices.Clone(s.wishlist), func(e WishlistEntry) bool { return e.Product.ID == id })
	if err := s.commit(ctx, nil, &next); err != nil {
		return Notice{}, err
	}
	return notice(NoticeRemovedFromWishlist), nil
}

// MoveToCart adds the wishlisted product to the cart and, only if that
// succeeded, removes it from the wishlist. Both collections are written
// together.
func (s *Store) MoveToCart(ctx context.Context, id string) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Notice{}, ErrNotBound
	}

	w := indexWishlist(s.wishlist, id)
	if w < 0 {
		return notice(NoticeNotInWishlist), nil
	}

	nextCart, n, ok := s.planAdd(s.cart, s.wishlist[w].Product)
	if !ok {
		return n, nil
	}
	nextWishlist := slices.Delete(slices.Clone(s.wishlist), w, w+1)
	if err := s.commit(ctx, &nextCart, &nextWishlist); err != nil {
		return Notice{}, err
	}
	return n, nil
}

// Items returns a copy of the cart.
func (s *Store) Items() []CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// Wishlist returns a copy of the wishlist.
func (s *Store) Wishlist() []WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

// Entry returns the cart entry for id.
func (s *Store) Entry(id string) (CartEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexCart(s.cart, id); i >= 0 {
		return s.cart[i], true
	}
	return CartEntry{}, false
}

// Len returns the number of cart lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cart)
}

// Units returns the total quantity across the cart.
func (s *Store) Units() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.cart {
		n += e.Quantity
	}
	return n
}

// Total is the sum of every line's subtotal.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sum(s.cart)
}

// Snapshot returns a copy of the cart and its total, read together.
func (s *Store) Snapshot() ([]CartEntry, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart), Sum(s.cart)
}

// Sum is the total of entries' subtotals.
func Sum(entries []CartEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Subtotal())
	}
	return sum
}

func indexCart(entries []CartEntry, id string) int {
	return slices.IndexFunc(entries, func(e CartEntry) bool { return e.Product.ID == id })
}

func indexWishlist(entries []WishlistEntry, id string) int {
	return slices.IndexFunc(entries, func(e WishlistEntry) bool { return e.Product.ID == id })
}
