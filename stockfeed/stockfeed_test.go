package stockfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrEthical07/storefront/catalog"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func newHubTest(t *testing.T, serve func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestRunDeliversBatchedStockUpdates(t *testing.T) {
	url := newHubTest(t, func(conn *websocket.Conn) {
		batch := `{"event":"stock_updated","data":{"product_id":"p-1","current_stock":4}}` + "\n" +
			`{"event":"product_created","data":{"product_id":"p-9"}}` + "\n" +
			`not json` + "\n" +
			`{"event":"stock_updated","data":{"product_id":7,"current_stock":0}}`
		_ = conn.WriteMessage(websocket.TextMessage, []byte(batch))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	feed, err := Dial(ctx, url, "tok")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer feed.Close()

	var got []catalog.StockUpdate
	if err := feed.Run(ctx, func(_ context.Context, u catalog.StockUpdate) { got = append(got, u) }); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []catalog.StockUpdate{{ProductID: "p-1", Stock: 4}, {ProductID: "7", Stock: 0}}
	if len(got) != len(want) {
		t.Fatalf("expected %d updates, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("update %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestDialRejectedToken(t *testing.T) {
	url := newHubTest(t, func(*websocket.Conn) {})
	if _, err := Dial(context.Background(), url, "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := Dial(context.Background(), url, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	hold := make(chan struct{})
	url := newHubTest(t, func(conn *websocket.Conn) {
		<-hold
	})
	defer close(hold)

	ctx, cancel := context.WithCancel(context.Background())
	feed, err := Dial(ctx, url, "tok")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx, func(context.Context, catalog.StockUpdate) {}) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
