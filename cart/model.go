package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusActive is the product status shown to customers.
const StatusActive = "ACTIVE"

// Product is a catalog item as last seen by the client.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"productName"`
	Model          string          `json:"model,omitempty"`
	UnitPrice      decimal.Decimal `json:"pricePerQuantity"`
	AvailableStock int             `json:"unitStockQuantity"`
	Status         string          `json:"status,omitempty"`
	Category       string          `json:"category,omitempty"`
}

// ModelOrName returns Model, falling back to Name.
func (p Product) ModelOrName() string {
	if p.Model != "" {
		return p.Model
	}
	return p.Name
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.AvailableStock > 0
}

// CartEntry is one product line in the cart.
type CartEntry struct {
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Subtotal is unit price times quantity.
func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Product.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// WishlistEntry is a saved product.
type WishlistEntry struct {
	Product      Product   `json:"product"`
	WishlistedAt time.Time `json:"wishlistedAt"`
}
