// Package stockfeed subscribes to the inventory service's websocket hub and
// turns its events into catalog stock updates.
//
// The hub authenticates with a token query parameter and may batch several
// JSON events into one text frame, separated by newlines.
package stockfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrEthical07/storefront/catalog"
)

// EventStockUpdated is the event name carrying a product's new stock level.
const EventStockUpdated = "stock_updated"

var (
	// ErrUnauthorized is returned by Dial when the hub rejects the token.
	ErrUnauthorized = errors.New("stockfeed: unauthorized")
	// ErrMissingToken is returned by Dial without a token.
	ErrMissingToken = errors.New("stockfeed: token required")
)

// Event is one hub message.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type stockData struct {
	ProductID    json.RawMessage `json:"product_id"`
	CurrentStock *int            `json:"current_stock"`
}

// Handler receives stock updates in arrival order.
type Handler func(ctx context.Context, u catalog.StockUpdate)

// Option configures Dial.
type Option func(*Feed)

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(f *Feed) {
		if d != nil {
			f.dialer = d
		}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}

// Feed is an open subscription.
type Feed struct {
	dialer *websocket.Dialer
	logger *slog.Logger

	conn      *websocket.Conn
	closeOnce sync.Once
}

// Dial connects to the hub at rawURL, passing token as the token query
// parameter.
func Dial(ctx context.Context, rawURL, token string, opts ...Option) (*Feed, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("stockfeed: parse url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	f := &Feed{
		dialer: websocket.DefaultDialer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}

	conn, resp, err := f.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
		}
		return nil, fmt.Errorf("stockfeed: dial: %w", err)
	}
	f.conn = conn
	return f, nil
}

// Run reads events until ctx is done or the hub closes the connection,
// calling h for every stock update. A normal close returns nil; a cancelled
// ctx returns ctx.Err().
func (f *Feed) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = f.Close() })
	defer stop()

	for {
		_, frame, err := f.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stockfeed: read: %w", err)
		}

		for _, msg := range bytes.Split(frame, []byte{'\n'}) {
			msg = bytes.TrimSpace(msg)
			if len(msg) == 0 {
				continue
			}
			u, ok, err := decode(msg)
			if err != nil {
				f.logger.WarnContext(ctx, "stockfeed: skipping malformed event", slog.Any("err", err))
				continue
			}
			if ok {
				h(ctx, u)
			}
		}
	}
}

// Close closes the connection. It is safe to call more than once.
func (f *Feed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = f.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = f.conn.Close()
	})
	return err
}

// decode parses one event. ok is false for events that are not stock updates.
func decode(msg []byte) (catalog.StockUpdate, bool, error) {
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		return catalog.StockUpdate{}, false, err
	}
	if ev.Name != EventStockUpdated {
		return catalog.StockUpdate{}, false, nil
	}

	var d stockData
	if err := json.Unmarshal(ev.Data, &d); err != nil {
		return catalog.StockUpdate{}, false, err
	}
	id, err := productID(d.ProductID)
	if err != nil {
		return catalog.StockUpdate{}, false, err
	}
	if id == "" || d.CurrentStock == nil {
		return catalog.StockUpdate{}, false, errors.New("stockfeed: stock event missing product_id or current_stock")
	}
	stock := *d.CurrentStock
	if stock < 0 {
		stock = 0
	}
	return catalog.StockUpdate{ProductID: id, Stock: stock}, true, nil
}

func productID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
