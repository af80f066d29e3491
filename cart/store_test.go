package cart

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/MrEthical07/storefront/kv"
)

func newCartStoreTest(t *testing.T) (*Store, *kv.MemoryStorage) {
	t.Helper()
	mem := kv.NewMemoryStorage(0)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(mem, WithClock(func() time.Time { return fixed }))
	s.Hydrate(context.Background(), "cust-1")
	return s, mem
}

func product(id string, stock int, price string) Product {
	return Product{
		ID:             id,
		Name:           "Widget " + id,
		UnitPrice:      decimal.RequireFromString(price),
		AvailableStock: stock,
		Status:         StatusActive,
	}
}

func TestAddToCartMergesAndRespectsStock(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	p := product("p1", 2, "9.99")

	n, err := s.AddToCart(ctx, p)
	if err != nil || n.Kind != NoticeAddedToCart {
		t.Fatalf("first add: %v %v", n, err)
	}
	n, err = s.AddToCart(ctx, p)
	if err != nil || n.Kind != NoticeQuantityUpdated {
		t.Fatalf("second add: %v %v", n, err)
	}
	n, err = s.AddToCart(ctx, p)
	if err != nil || n.Kind != NoticeStockLimit {
		t.Fatalf("third add: %v %v", n, err)
	}
	if !strings.Contains(n.Message, "Only 2 units") {
		t.Fatalf("stock limit notice should cite ceiling, got %q", n.Message)
	}

	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected one entry with qty 2, got %+v", items)
	}
}

func TestAddToCartOutOfStock(t *testing.T) {
	s, mem := newCartStoreTest(t)
	n, err := s.AddToCart(context.Background(), product("p1", 0, "1"))
	if err != nil || n.Kind != NoticeOutOfStock || !n.IsConflict() {
		t.Fatalf("expected out-of-stock conflict, got %v %v", n, err)
	}
	if s.Len() != 0 || mem.Len() != 0 {
		t.Fatal("out-of-stock add changed state")
	}
}

func TestAddToCartRefreshesSnapshot(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToCart(ctx, product("p1", 5, "10"))
	_, _ = s.AddToCart(ctx, product("p1", 3, "12"))

	e, ok := s.Entry("p1")
	if !ok || e.Product.AvailableStock != 3 || !e.Product.UnitPrice.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("snapshot not refreshed: %+v", e)
	}
}

func TestCartInvariantsUnderMixedOperations(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	products := []Product{product("a", 3, "1"), product("b", 1, "2"), product("c", 0, "3")}

	for i := 0; i < 20; i++ {
		p := products[i%len(products)]
		switch i % 4 {
		case 0, 1:
			_, _ = s.AddToCart(ctx, p)
		case 2:
			_, _ = s.SetQuantity(ctx, p.ID, i%5)
		case 3:
			_, _ = s.MoveToCart(ctx, p.ID)
			_, _ = s.AddToWishlist(ctx, p)
		}

		seen := map[string]bool{}
		for _, e := range s.Items() {
			if seen[e.Product.ID] {
				t.Fatalf("step %d: duplicate cart entry %s", i, e.Product.ID)
			}
			seen[e.Product.ID] = true
			if e.Quantity < 1 || e.Quantity > e.Product.AvailableStock {
				t.Fatalf("step %d: quantity %d outside [1,%d]", i, e.Quantity, e.Product.AvailableStock)
			}
		}
		wseen := map[string]bool{}
		for _, e := range s.Wishlist() {
			if wseen[e.Product.ID] {
				t.Fatalf("step %d: duplicate wishlist entry %s", i, e.Product.ID)
			}
			wseen[e.Product.ID] = true
		}
	}
}

func TestSetQuantity(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToCart(ctx, product("p1", 4, "2.50"))

	if n, _ := s.SetQuantity(ctx, "p1", 5); n.Kind != NoticeStockLimit {
		t.Fatalf("expected stock limit, got %v", n.Kind)
	}
	if n, _ := s.SetQuantity(ctx, "p1", 4); n.Kind != NoticeQuantityUpdated {
		t.Fatalf("expected update, got %v", n.Kind)
	}
	if !s.Total().Equal(decimal.RequireFromString("10")) {
		t.Fatalf("unexpected total %s", s.Total())
	}
	if n, _ := s.SetQuantity(ctx, "missing", 1); n.Kind != NoticeNotInCart {
		t.Fatalf("expected not-in-cart, got %v", n.Kind)
	}
	if n, _ := s.SetQuantity(ctx, "p1", 0); n.Kind != NoticeRemovedFromCart {
		t.Fatalf("expected removal, got %v", n.Kind)
	}
	if s.Len() != 0 {
		t.Fatal("qty 0 did not remove entry")
	}
}

func TestSetQuantityWithinKnownStock(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToCart(ctx, product("p1", 5, "2.00"))

	n, err := s.SetQuantityWithin(ctx, "p1", 4, 1)
	if err != nil || n.Kind != NoticeStockLimit || !strings.Contains(n.Message, "Only 1 units") {
		t.Fatalf("expected stock limit at the known stock, got %+v %v", n, err)
	}
	if e, _ := s.Entry("p1"); e.Quantity != 1 {
		t.Fatalf("refused change applied: %+v", e)
	}

	n, err = s.SetQuantityWithin(ctx, "p1", 1, 1)
	if err != nil || n.Kind != NoticeQuantityUpdated {
		t.Fatalf("expected update, got %+v %v", n, err)
	}
	if e, _ := s.Entry("p1"); e.Product.AvailableStock != 1 {
		t.Fatalf("snapshot not lowered to the known stock: %+v", e.Product)
	}

	// A higher known stock never raises the ceiling above the snapshot.
	if n, _ := s.SetQuantityWithin(ctx, "p1", 3, 9); n.Kind != NoticeStockLimit {
		t.Fatalf("expected stock limit, got %v", n.Kind)
	}
}

func TestSnapshotReadsItemsAndTotalTogether(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToCart(ctx, product("p1", 5, "2.50"))
	_, _ = s.AddToCart(ctx, product("p1", 5, "2.50"))
	_, _ = s.AddToCart(ctx, product("p2", 5, "1.25"))

	items, total := s.Snapshot()
	if len(items) != 2 || !total.Equal(decimal.RequireFromString("6.25")) {
		t.Fatalf("unexpected snapshot %+v %s", items, total)
	}
	if !Sum(items).Equal(total) {
		t.Fatalf("total %s does not describe items (%s)", total, Sum(items))
	}
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	s, mem := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToCart(ctx, product("p1", 5, "1"))
	_, _ = s.AddToWishlist(ctx, product("w1", 5, "1"))
	before, beforeWish, gen := s.Items(), s.Wishlist(), s.Generation()

	mem.FailWrites(kv.ErrQuotaExceeded)
	ops := []func() (Notice, error){
		func() (Notice, error) { return s.AddToCart(ctx, product("p2", 5, "1")) },
		func() (Notice, error) { return s.AddToCart(ctx, product("p1", 5, "1")) },
		func() (Notice, error) { return s.SetQuantity(ctx, "p1", 3) },
		func() (Notice, error) { return s.RemoveFromCart(ctx, "p1") },
		func() (Notice, error) { return s.ClearCart(ctx) },
		func() (Notice, error) { return s.AddToWishlist(ctx, product("w2", 1, "1")) },
		func() (Notice, error) { return s.RemoveFromWishlist(ctx, "w1") },
		func() (Notice, error) { return s.MoveToCart(ctx, "w1") },
	}
	for i, op := range ops {
		if _, err := op(); !errors.Is(err, ErrPersistence) || !errors.Is(err, kv.ErrQuotaExceeded) {
			t.Fatalf("op %d: expected wrapped persistence error, got %v", i, err)
		}
	}

	if got := s.Items(); len(got) != len(before) || got[0].Quantity != before[0].Quantity {
		t.Fatalf("cart changed: %+v", got)
	}
	if got := s.Wishlist(); len(got) != len(beforeWish) {
		t.Fatalf("wishlist changed: %+v", got)
	}
	if s.Generation() != gen {
		t.Fatal("generation advanced on failed write")
	}
}

func TestWishlist(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	p := product("p1", 1, "3")

	if n, _ := s.AddToWishlist(ctx, p); n.Kind != NoticeAddedToWishlist {
		t.Fatalf("expected added, got %v", n.Kind)
	}
	if n, _ := s.AddToWishlist(ctx, p); n.Kind != NoticeAlreadyInWishlist {
		t.Fatalf("expected already-in-wishlist, got %v", n.Kind)
	}
	if n, err := s.RemoveFromWishlist(ctx, "absent"); err != nil || n.Kind != NoticeNone {
		t.Fatalf("absent removal should be a no-op, got %v %v", n, err)
	}
	if len(s.Wishlist()) != 1 {
		t.Fatal("wishlist length changed")
	}
}

func TestMoveToCart(t *testing.T) {
	s, _ := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToWishlist(ctx, product("p1", 1, "3"))
	_, _ = s.AddToWishlist(ctx, product("p2", 0, "3"))

	if n, _ := s.MoveToCart(ctx, "p1"); n.Kind != NoticeAddedToCart {
		t.Fatalf("expected add, got %v", n.Kind)
	}
	if n, _ := s.MoveToCart(ctx, "p2"); n.Kind != NoticeOutOfStock {
		t.Fatalf("expected out of stock, got %v", n.Kind)
	}

	wl := s.Wishlist()
	if len(wl) != 1 || wl[0].Product.ID != "p2" {
		t.Fatalf("only the moved product should leave the wishlist: %+v", wl)
	}
	if _, ok := s.Entry("p1"); !ok {
		t.Fatal("moved product missing from cart")
	}
}

func TestMutationsRequireBinding(t *testing.T) {
	s := NewStore(kv.NewMemoryStorage(0))
	if _, err := s.AddToCart(context.Background(), product("p1", 1, "1")); !errors.Is(err, ErrNotBound) {
		t.Fatalf("expected ErrNotBound, got %v", err)
	}
}

func TestHydrateScopesByOwner(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStorage(0)

	alice := NewStore(mem)
	alice.Hydrate(ctx, "alice")
	_, _ = alice.AddToCart(ctx, product("p1", 3, "1"))
	_, _ = alice.AddToWishlist(ctx, product("p2", 3, "1"))

	reload := NewStore(mem)
	reload.Hydrate(ctx, "alice")
	if reload.Len() != 1 || len(reload.Wishlist()) != 1 {
		t.Fatalf("same owner should reload both collections")
	}

	bob := NewStore(mem)
	bob.Hydrate(ctx, "bob")
	if bob.Len() != 0 || len(bob.Wishlist()) != 0 {
		t.Fatal("another customer's cart leaked")
	}
}

func TestHydrateCorruptEnvelope(t *testing.T) {
	mem := kv.NewMemoryStorage(0)
	mem.Put(KeyCart, "[not json")
	mem.Put(KeyWishlist, `{"owner":"c","entries":[{"product":{"id":"x"}},{"product":{"id":"x"}}]}`)

	s := NewStore(mem)
	s.Hydrate(context.Background(), "c")
	if s.Len() != 0 {
		t.Fatal("corrupt cart should load empty")
	}
	if len(s.Wishlist()) != 1 {
		t.Fatalf("duplicate wishlist ids should collapse, got %d", len(s.Wishlist()))
	}
}

func TestResetUnbinds(t *testing.T) {
	s, mem := newCartStoreTest(t)
	ctx := context.Background()
	_, _ = s.AddToCart(ctx, product("p1", 1, "1"))

	s.Reset()
	if s.Len() != 0 || s.Owner() != "" {
		t.Fatal("reset kept state")
	}
	if _, ok, _ := mem.Get(ctx, KeyCart); !ok {
		t.Fatal("reset must not touch storage")
	}
	if _, err := s.ClearCart(ctx); !errors.Is(err, ErrNotBound) {
		t.Fatalf("expected ErrNotBound after reset, got %v", err)
	}
}

func TestCartOverRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	s := NewStore(kv.NewRedisStorage(rdb, "sf"))
	s.Hydrate(ctx, "cust-1")
	_, _ = s.AddToWishlist(ctx, product("p1", 2, "4"))
	if _, err := s.MoveToCart(ctx, "p1"); err != nil {
		t.Fatalf("move: %v", err)
	}

	raw, err := mr.Get("sf:" + KeyCart)
	if err != nil || !strings.Contains(raw, `"owner":"cust-1"`) {
		t.Fatalf("cart envelope not persisted: %q %v", raw, err)
	}
	wl, _ := mr.Get("sf:" + KeyWishlist)
	if !strings.Contains(wl, `"entries":[]`) {
		t.Fatalf("wishlist not emptied in the same write: %q", wl)
	}
}
