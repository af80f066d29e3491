package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// OrderItem is one checkout line. Model falls back to the product name when
// the product has none.
type OrderItem struct {
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName"`
	Model       string `json:"model"`
	Quantity    int    `json:"quantity"`
}

// OrderRequest is the checkout body.
type OrderRequest struct {
	Items []OrderItem `json:"items"`
}

// OrderLine is the service's per-product summary.
type OrderLine struct {
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Total          decimal.Decimal `json:"total"`
	RemainingStock int             `json:"remainingStock"`
}

// OrderResult is the checkout response.
type OrderResult struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	TotalAmount decimal.Decimal      `json:"totalAmount"`
	TotalItems  int                  `json:"totalItems"`
	Summary     map[string]OrderLine `json:"orderSummary,omitempty"`
	EmailSent   bool                 `json:"emailSent,omitempty"`
}

// PlaceOrder submits a checkout. idempotencyKey is sent as Idempotency-Key
// when non-empty.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (OrderResult, error) {
	var hdr http.Header
	if idempotencyKey != "" {
		hdr = http.Header{headerIdempotency: {idempotencyKey}}
	}
	var out OrderResult
	err := c.doJSON(ctx, call{
		op:     "orders.checkout",
		method: http.MethodPost,
		path:   "/orders/checkout",
		body:   req,
		header: hdr,
	}, &out)
	return out, err
}
