package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MrEthical07/storefront/api"
	"github.com/MrEthical07/storefront/cart"
	"github.com/MrEthical07/storefront/catalog"
	internalaudit "github.com/MrEthical07/storefront/internal/audit"
	"github.com/MrEthical07/storefront/internal/inflight"
	"github.com/MrEthical07/storefront/middleware"
	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/route"
	"github.com/MrEthical07/storefront/session"
)

// Client is the storefront client state: session, route guard, cart and
// wishlist, catalog cache and the HTTP facade they share. Methods are safe
// for concurrent use.
type Client struct {
	config Config
	logger *slog.Logger

	sessions *session.Manager
	cart     *cart.Store
	catalog  *catalog.Catalog
	api      *api.Client
	table    route.Table

	metrics *Metrics
	audit   *internalaudit.Dispatcher

	loginFlight    inflight.Flag
	checkoutFlight inflight.Flag

	closeOnce sync.Once
}

// Hydrate restores the persisted session, and for a customer the cart and
// wishlist. Only the first call reads storage.
func (c *Client) Hydrate(ctx context.Context) session.State {
	st := c.sessions.Hydrate(ctx)
	if st.Authenticated {
		c.metrics.Inc(MetricSessionHydrated)
	}
	return st
}

// Session returns a snapshot of the session.
func (c *Client) Session() session.State {
	return c.sessions.State()
}

// State implements [middleware.StateSource].
func (c *Client) State() session.State {
	return c.sessions.State()
}

func (c *Client) IsAuthenticated() bool {
	return c.sessions.IsAuthenticated()
}

func (c *Client) Role() permission.Role {
	return c.sessions.CurrentRole()
}

// Authorize decides navigation to path against the route table.
func (c *Client) Authorize(path string) route.Decision {
	return c.table.Authorize(c.sessions.State(), path)
}

// Middleware guards an HTTP handler with the route table. A request that
// ends in a forced logout resumes at its own URI after login.
func (c *Client) Middleware() func(http.Handler) http.Handler {
	guard := middleware.GuardTable(c, c.table)
	return func(next http.Handler) http.Handler {
		guarded := guard(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithRequestedLocation(r.Context(), r.URL.RequestURI())
			guarded.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// API exposes the HTTP facade for the admin and staff resources. Calls made
// through it share the session's bearer token and 401 handling.
func (c *Client) API() *api.Client {
	return c.api
}

// Catalog exposes the product cache.
func (c *Client) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped counts audit events dropped because the buffer was full.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close flushes pending audit events. The client must not be used after.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.audit.Close()
	})
}

// bindCart follows the session: a customer's cart is loaded on login and
// hydrate, and any other session leaves the cart unbound.
func (c *Client) bindCart(ctx context.Context, st session.State) {
	st.Role.Visit(cartBinding{ctx: ctx, client: c, state: st})
}

// cartBinding is the per-role cart policy.
type cartBinding struct {
	ctx    context.Context
	client *Client
	state  session.State
}

var _ permission.RoleVisitor = cartBinding{}

func (b cartBinding) VisitNone()  { b.unbind() }
func (b cartBinding) VisitAdmin() { b.unbind() }
func (b cartBinding) VisitStaff() { b.unbind() }

func (b cartBinding) VisitUser() {
	owner := customerID(b.state)
	if b.client.cart.Owner() != owner {
		b.client.cart.Hydrate(b.ctx, owner)
	}
}

func (b cartBinding) unbind() {
	if b.client.cart.Owner() != "" {
		b.client.cart.Reset()
	}
}

func customerID(st session.State) string {
	if id := st.ProfileID(); id != "" {
		return id
	}
	if st.Profile != nil {
		return st.Profile.Email
	}
	return ""
}

// handleUnauthorized runs when the service rejects a bearer token. A 401
// for a token the session no longer holds is dropped.
func (c *Client) handleUnauthorized(ctx context.Context, token string, err error) {
	st := c.sessions.State()
	from := requestedLocationFromContext(ctx)
	expired, clearErr := c.sessions.ExpireToken(ctx, token, from)
	if clearErr != nil {
		c.logger.ErrorContext(ctx, "clear expired session", slog.Any("err", clearErr))
	}
	if !expired {
		c.logger.DebugContext(ctx, "ignoring 401 for a replaced session", slog.Any("err", err))
		return
	}
	c.logger.WarnContext(ctx, "session rejected by server",
		slog.String("from", from), slog.Any("err", err))

	c.metrics.Inc(MetricSessionExpired)
	c.emitAudit(ctx, AuditEventSessionExpired, st, ErrSessionExpired, map[string]string{"from": from})
}

// serviceError maps an authenticated call's 401 to ErrSessionExpired.
func serviceError(err error, hadToken bool) error {
	if err == nil {
		return nil
	}
	if hadToken && errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return err
}

func (c *Client) observe(id MetricID, start time.Time) {
	if c.metrics.LatencyEnabled() {
		c.metrics.Observe(id, time.Since(start))
	}
}
