package storefront

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/storefront/cart"
	"github.com/MrEthical07/storefront/catalog"
	"github.com/MrEthical07/storefront/stockfeed"
)

// RefreshCatalog fetches the product list and applies the fetched stock to
// the cart and wishlist, unless the cart changed while the fetch ran.
// Cart entries above the new stock are clamped; sold-out entries are
// removed.
func (c *Client) RefreshCatalog(ctx context.Context) ([]cart.Product, error) {
	hadToken := c.sessions.Token() != ""
	gen := c.cart.Generation()

	products, err := c.catalog.Refresh(ctx)
	if err != nil {
		c.metrics.Inc(MetricCatalogRefreshFailure)
		return nil, serviceError(err, hadToken)
	}
	c.metrics.Inc(MetricCatalogRefresh)

	if c.cart.Owner() == "" {
		return products, nil
	}
	applied, err := c.cart.ApplyStock(ctx, gen, products)
	if err != nil {
		c.metrics.Inc(MetricCartPersistFailure)
		return products, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !applied {
		c.logger.DebugContext(ctx, "cart changed during catalog refresh; stock not applied")
	}
	return products, nil
}

// WatchStock follows the inventory hub and applies stock updates to the
// catalog and cart until ctx is done or the hub closes the connection.
func (c *Client) WatchStock(ctx context.Context) error {
	if c.config.API.StockFeedURL == "" {
		return ErrStockFeedDisabled
	}

	feed, err := stockfeed.Dial(ctx, c.config.API.StockFeedURL, c.sessions.Token(),
		stockfeed.WithLogger(c.logger))
	if err != nil {
		return err
	}
	defer func() { _ = feed.Close() }()

	return feed.Run(ctx, c.applyStockUpdate)
}

func (c *Client) applyStockUpdate(ctx context.Context, u catalog.StockUpdate) {
	c.metrics.Inc(MetricStockUpdate)
	if _, ok := c.catalog.ApplyUpdate(u); !ok {
		c.logger.DebugContext(ctx, "stock update for uncached product", slog.String("product_id", u.ProductID))
	}
	if _, err := c.cart.SetStock(ctx, u.ProductID, u.Stock); err != nil {
		c.metrics.Inc(MetricCartPersistFailure)
		c.logger.WarnContext(ctx, "apply stock update to cart",
			slog.String("product_id", u.ProductID), slog.Any("err", err))
	}
}
