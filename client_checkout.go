package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/storefront/api"
	"github.com/MrEthical07/storefront/cart"
)

// SubmitOrder checks out the cart. While one submission runs, others fail
// with ErrInFlight.
//
// On success the cart is cleared and the catalog refreshed; a refresh
// failure is logged and does not fail the order. If clearing the cart
// cannot be saved, the receipt is returned together with an
// ErrPersistence error. A rejected or failed submission leaves the cart
// untouched.
func (c *Client) SubmitOrder(ctx context.Context) (OrderReceipt, error) {
	if err := c.requireCustomer(); err != nil {
		return OrderReceipt{}, err
	}
	if !c.checkoutFlight.TryAcquire() {
		return OrderReceipt{}, ErrInFlight
	}
	defer c.checkoutFlight.Release()

	items, total := c.cart.Snapshot()
	if len(items) == 0 {
		return OrderReceipt{}, ErrEmptyCart
	}

	st := c.sessions.State()
	key := uuid.NewString()
	receipt := OrderReceipt{
		IdempotencyKey: key,
		Items:          items,
		LocalTotal:     total,
	}

	start := time.Now()
	res, err := c.api.PlaceOrder(ctx, orderRequest(items), key)
	c.observe(MetricCheckoutLatency, start)
	if err != nil {
		err = serviceError(err, true)
		c.metrics.Inc(MetricCheckoutFailure)
		c.logger.WarnContext(ctx, "checkout failed", slog.String("idempotency_key", key), slog.Any("err", err))
		c.emitAudit(ctx, AuditEventCheckout, st, err, map[string]string{"idempotency_key": key})
		return OrderReceipt{}, err
	}
	if !res.Success {
		err := fmt.Errorf("%w: %s", ErrOrderRejected, res.Message)
		c.metrics.Inc(MetricCheckoutRejected)
		c.emitAudit(ctx, AuditEventCheckout, st, err, map[string]string{"idempotency_key": key})
		return OrderReceipt{}, err
	}

	receipt.ServerTotal = res.TotalAmount
	receipt.TotalItems = res.TotalItems
	receipt.Message = res.Message
	receipt.Summary = res.Summary
	receipt.EmailSent = res.EmailSent

	c.metrics.Inc(MetricCheckoutSuccess)
	c.emitAudit(ctx, AuditEventCheckout, st, nil, map[string]string{
		"idempotency_key": key,
		"total":           res.TotalAmount.StringFixed(2),
	})

	var clearErr error
	if _, err := c.cart.ClearCart(ctx); err != nil {
		c.metrics.Inc(MetricCartPersistFailure)
		clearErr = fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if _, err := c.RefreshCatalog(ctx); err != nil {
		c.logger.WarnContext(ctx, "refresh catalog after checkout", slog.Any("err", err))
	}

	return receipt, clearErr
}

func orderRequest(items []cart.CartEntry) api.OrderRequest {
	req := api.OrderRequest{Items: make([]api.OrderItem, 0, len(items))}
	for _, e := range items {
		req.Items = append(req.Items, api.OrderItem{
			ProductID:   e.Product.ID,
			ProductName: e.Product.Name,
			Model:       e.Product.ModelOrName(),
			Quantity:    e.Quantity,
		})
	}
	return req
}
