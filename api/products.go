package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrEthical07/storefront/cart"
)

// ProductRecord is a product as the service sends it.
type ProductRecord struct {
	ID             ID              `json:"id"`
	Name           string          `json:"productName"`
	Model          string          `json:"model,omitempty"`
	UnitPrice      decimal.Decimal `json:"pricePerQuantity"`
	AvailableStock int             `json:"unitStockQuantity"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Status         string          `json:"status,omitempty"`
	Category       string          `json:"category,omitempty"`
}

// Product converts the record to the cart's snapshot type.
func (p ProductRecord) Product() cart.Product {
	return cart.Product{
		ID:             string(p.ID),
		Name:           p.Name,
		Model:          p.Model,
		UnitPrice:      p.UnitPrice,
		AvailableStock: p.AvailableStock,
		Status:         p.Status,
		Category:       p.Category,
	}
}

// ProductInput is the body of product create and update.
type ProductInput struct {
	Name           string          `json:"productName"`
	Model          string          `json:"model"`
	UnitPrice      decimal.Decimal `json:"pricePerQuantity"`
	AvailableStock int             `json:"unitStockQuantity"`
	Status         string          `json:"status,omitempty"`
	Category       string          `json:"category,omitempty"`
}

// FetchCatalog returns every product as cart snapshots.
func (c *Client) FetchCatalog(ctx context.Context) ([]cart.Product, error) {
	recs, err := c.Products().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]cart.Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Product())
	}
	return out, nil
}

// LowStock returns products the service flags as running low.
func (c *Client) LowStock(ctx context.Context) ([]ProductRecord, error) {
	raw, err := c.raw(ctx, call{op: "products.low_stock", method: http.MethodGet, path: "/products/staff/low-stock"})
	if err != nil {
		return nil, err
	}
	out, err := decodeList[ProductRecord](raw)
	if err != nil {
		return nil, fmt.Errorf("products.low_stock: %w: %v", ErrDecode, err)
	}
	return out, nil
}

// exportTimeout bounds CSV exports, which can be large.
const exportTimeout = 30 * time.Second

// ExportCSV streams the inventory CSV into w and returns the bytes written.
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	resp, err := c.do(ctx, call{
		op:     "products.export_csv",
		method: http.MethodGet,
		path:   "/products/staff/export-csv",
		header: http.Header{"Accept": {"text/csv"}},
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("products.export_csv: %w: %w", ErrNetwork, err)
	}
	return n, nil
}

// SheetsExport is the result of a spreadsheet export.
type SheetsExport struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	SpreadsheetURL string `json:"spreadsheetUrl,omitempty"`
}

// ExportToSheets asks the service to push the inventory to its spreadsheet.
func (c *Client) ExportToSheets(ctx context.Context) (SheetsExport, error) {
	var out SheetsExport
	err := c.doJSON(ctx, call{op: "products.export_sheets", method: http.MethodPost, path: "/products/staff/export-to-sheets"}, &out)
	return out, err
}
