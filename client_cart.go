package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrEthical07/storefront/cart"
	"github.com/MrEthical07/storefront/permission"
)

// Cart and wishlist actions are available to USER sessions only. Each
// returns the notice to show and an error that is non-nil only when the
// action could not run (ErrNotAuthenticated, ErrNotCustomer,
// ErrUnknownProduct) or could not be saved (ErrPersistence). Stock
// conflicts are notices, not errors.

// AddToCart adds one unit of the catalog product id.
func (c *Client) AddToCart(ctx context.Context, productID string) (cart.Notice, error) {
	p, err := c.customerProduct(productID)
	if err != nil {
		return cart.Notice{}, err
	}
	return c.cartResult(c.cart.AddToCart(ctx, p))
}

// SetQuantity sets the cart quantity of productID; below one removes it.
// The ceiling is the lower of the entry's stock and the catalog's.
func (c *Client) SetQuantity(ctx context.Context, productID string, qty int) (cart.Notice, error) {
	if err := c.requireCustomer(); err != nil {
		return cart.Notice{}, err
	}
	known := -1
	if p, ok := c.catalog.Lookup(productID); ok {
		known = p.AvailableStock
	}
	return c.cartResult(c.cart.SetQuantityWithin(ctx, productID, qty, known))
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (cart.Notice, error) {
	if err := c.requireCustomer(); err != nil {
		return cart.Notice{}, err
	}
	return c.cartResult(c.cart.RemoveFromCart(ctx, productID))
}

func (c *Client) ClearCart(ctx context.Context) (cart.Notice, error) {
	if err := c.requireCustomer(); err != nil {
		return cart.Notice{}, err
	}
	return c.cartResult(c.cart.ClearCart(ctx))
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) (cart.Notice, error) {
	p, err := c.customerProduct(productID)
	if err != nil {
		return cart.Notice{}, err
	}
	return c.cartResult(c.cart.AddToWishlist(ctx, p))
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) (cart.Notice, error) {
	if err := c.requireCustomer(); err != nil {
		return cart.Notice{}, err
	}
	return c.cartResult(c.cart.RemoveFromWishlist(ctx, productID))
}

// MoveToCart moves a wishlisted product into the cart. It stays wishlisted
// when the add is refused.
func (c *Client) MoveToCart(ctx context.Context, productID string) (cart.Notice, error) {
	if err := c.requireCustomer(); err != nil {
		return cart.Notice{}, err
	}
	return c.cartResult(c.cart.MoveToCart(ctx, productID))
}

// CartItems returns the cart, empty for non-customers.
func (c *Client) CartItems() []cart.CartEntry {
	return c.cart.Items()
}

func (c *Client) WishlistItems() []cart.WishlistEntry {
	return c.cart.Wishlist()
}

func (c *Client) CartTotal() decimal.Decimal {
	return c.cart.Total()
}

// CartUnits is the number of units across all cart entries.
func (c *Client) CartUnits() int {
	return c.cart.Units()
}

func (c *Client) requireCustomer() error {
	st := c.sessions.State()
	if !st.Authenticated {
		return ErrNotAuthenticated
	}
	if st.Role != permission.RoleUser {
		return ErrNotCustomer
	}
	return nil
}

func (c *Client) customerProduct(id string) (cart.Product, error) {
	if err := c.requireCustomer(); err != nil {
		return cart.Product{}, err
	}
	p, ok := c.catalog.Lookup(id)
	if !ok {
		return cart.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	return p, nil
}

func (c *Client) cartResult(n cart.Notice, err error) (cart.Notice, error) {
	if err != nil {
		if errors.Is(err, cart.ErrPersistence) {
			c.metrics.Inc(MetricCartPersistFailure)
			return n, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		if errors.Is(err, cart.ErrNotBound) {
			return n, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
		return n, err
	}

	switch n.Kind {
	case cart.NoticeOutOfStock, cart.NoticeStockLimit:
		c.metrics.Inc(MetricCartConflict)
	case cart.NoticeAddedToCart, cart.NoticeQuantityUpdated, cart.NoticeRemovedFromCart,
		cart.NoticeCartCleared, cart.NoticeAddedToWishlist, cart.NoticeRemovedFromWishlist:
		c.metrics.Inc(MetricCartMutation)
	}
	return n, nil
}
