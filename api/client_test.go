package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MrEthical07/storefront/permission"
)

func newAPITest(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := New("ftp://example.com"); err == nil {
		t.Fatal("expected error for non-http base url")
	}
}

func TestAuthenticateRoles(t *testing.T) {
	cases := []struct {
		name    string
		body    map[string]any
		role    permission.Role
		perms   string
		email   string
		wantErr error
	}{
		{
			name:  "admin default rights",
			body:  map[string]any{"success": true, "token": "t", "admin": map[string]any{"id": 1, "name": "Root", "email": "root@x"}},
			role:  permission.RoleAdmin,
			perms: "ADMIN",
			email: "root@x",
		},
		{
			name:  "staff explicit rights",
			body:  map[string]any{"success": true, "token": "t", "staff": map[string]any{"id": "s-9", "email": "s@x", "rightsPrivileges": "INVENTORY,REPORTS"}},
			role:  permission.RoleStaff,
			perms: "INVENTORY,REPORTS",
			email: "s@x",
		},
		{
			name:  "user default rights",
			body:  map[string]any{"success": true, "token": "t", "user": map[string]any{"id": 42, "email": "u@x", "phoneNumber": "555"}},
			role:  permission.RoleUser,
			perms: "BASIC_USER",
			email: "u@x",
		},
		{
			name:    "no account object",
			body:    map[string]any{"success": true, "token": "t"},
			wantErr: ErrNoAccount,
		},
		{
			name:    "unsuccessful body",
			body:    map[string]any{"success": false, "message": "nope"},
			wantErr: ErrLoginRejected,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("login must not carry a bearer token")
				}
				writeJSON(w, http.StatusOK, tc.body)
			}, WithTokenSource(TokenFunc(func() string { return "stale" })))

			res, err := c.Authenticate(context.Background(), "e", "p")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("authenticate: %v", err)
			}
			if res.Role != tc.role || res.Permissions != tc.perms || res.Profile.Email != tc.email || res.Token != "t" {
				t.Fatalf("unexpected result %+v", res)
			}
		})
	}
}

func TestAuthenticateErrorMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:        ErrInvalidCredentials,
		http.StatusForbidden:           ErrAccountInactive,
		http.StatusNotFound:            ErrAccountNotFound,
		http.StatusTooManyRequests:     ErrRateLimited,
		http.StatusInternalServerError: ErrServer,
	}
	for status, want := range cases {
		var hooked atomic.Bool
		c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, map[string]any{"success": false, "message": "server says no"})
		}, WithUnauthorizedHandler(func(context.Context, string, error) { hooked.Store(true) }))

		_, err := c.Authenticate(context.Background(), "e", "p")
		if !errors.Is(err, want) {
			t.Fatalf("status %d: expected %v, got %v", status, want, err)
		}
		if StatusOf(err) != status || MessageOf(err) != "server says no" {
			t.Fatalf("status %d: error lost detail: %v", status, err)
		}
		if hooked.Load() {
			t.Fatalf("status %d: login failure fired the unauthorized hook", status)
		}
	}
}

func TestBearerAndRequestID(t *testing.T) {
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected authorization %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id")
		}
		writeJSON(w, http.StatusOK, []any{})
	}, WithTokenSource(TokenFunc(func() string { return "tok-1" })))

	if _, err := c.Staff().List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestUnauthorizedHookOnlyWithBearer(t *testing.T) {
	token := "tok"
	var calls atomic.Int32
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "expired"})
	},
		WithTokenSource(TokenFunc(func() string { return token })),
		WithUnauthorizedHandler(func(_ context.Context, sent string, err error) {
			if !errors.Is(err, ErrUnauthorized) {
				t.Errorf("hook got %v", err)
			}
			if sent != "tok" {
				t.Errorf("hook got token %q", sent)
			}
			calls.Add(1)
		}),
	)

	_, err := c.FetchCatalog(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected hook once, got %d", calls.Load())
	}

	token = ""
	_, _ = c.FetchCatalog(context.Background())
	if calls.Load() != 1 {
		t.Fatal("hook fired for a request without a bearer token")
	}
}

func TestFetchCatalogAcceptsBothShapes(t *testing.T) {
	products := []map[string]any{
		{"id": 7, "productName": "Drill", "model": "D-1", "pricePerQuantity": 49.95, "unitStockQuantity": 3, "status": "ACTIVE", "category": "Tools"},
		{"id": 8, "productName": "Saw", "pricePerQuantity": "12.5", "unitStockQuantity": 0},
	}
	for _, wrap := range []bool{false, true} {
		c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/products" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if wrap {
				writeJSON(w, http.StatusOK, map[string]any{"data": products})
				return
			}
			writeJSON(w, http.StatusOK, products)
		})

		got, err := c.FetchCatalog(context.Background())
		if err != nil {
			t.Fatalf("wrap=%v: %v", wrap, err)
		}
		if len(got) != 2 || got[0].ID != "7" || got[0].AvailableStock != 3 {
			t.Fatalf("wrap=%v: unexpected products %+v", wrap, got)
		}
		if !got[0].UnitPrice.Equal(decimal.RequireFromString("49.95")) || !got[1].UnitPrice.Equal(decimal.RequireFromString("12.5")) {
			t.Fatalf("wrap=%v: prices decoded wrong", wrap)
		}
		if got[1].ModelOrName() != "Saw" {
			t.Fatalf("wrap=%v: model fallback broken", wrap)
		}
	}
}

func TestPlaceOrder(t *testing.T) {
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Idempotency-Key") != "key-1" {
			t.Errorf("missing idempotency key")
		}
		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Items) != 1 || req.Items[0].Model != "Drill" || req.Items[0].Quantity != 2 {
			t.Errorf("unexpected order %+v", req)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Order processed successfully",
			"totalAmount": 99.9,
			"totalItems":  2,
			"orderSummary": map[string]any{
				"Drill": map[string]any{"quantity": 2, "unitPrice": 49.95, "total": 99.9, "remainingStock": 1},
			},
		})
	})

	res, err := c.PlaceOrder(context.Background(), OrderRequest{Items: []OrderItem{{ProductID: "7", ProductName: "Drill", Model: "Drill", Quantity: 2}}}, "key-1")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if !res.Success || res.TotalItems != 2 || !res.TotalAmount.Equal(decimal.RequireFromString("99.9")) {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Summary["Drill"].RemainingStock != 1 {
		t.Fatalf("summary not decoded: %+v", res.Summary)
	}
}

func TestPartialOrderFailureDetails(t *testing.T) {
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":     false,
			"error":       "Partial order failure",
			"message":     "Some items could not be processed",
			"failedItems": []string{"Failed to process: Saw"},
		})
	})
	_, err := c.PlaceOrder(context.Background(), OrderRequest{}, "")
	var apiErr *Error
	if !errors.As(err, &apiErr) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation *Error, got %v", err)
	}
	if len(apiErr.Details) != 1 || apiErr.Op != "orders.checkout" {
		t.Fatalf("unexpected error detail %+v", apiErr)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	srv.Close()

	if _, err := c.Users().List(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestProductRoutes(t *testing.T) {
	var seen []string
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 5, "productName": "Nail"}})
	})
	ctx := context.Background()
	products := c.Products()

	if p, err := products.Create(ctx, ProductInput{Name: "Nail"}); err != nil || p.ID != "5" {
		t.Fatalf("create: %+v %v", p, err)
	}
	_, _ = products.Update(ctx, "5", ProductInput{Name: "Nail"})
	_ = products.Delete(ctx, "5")
	_, _ = products.Get(ctx, "5")

	want := []string{
		"POST /api/products/staff/create",
		"PUT /api/products/staff/update/5",
		"DELETE /api/products/admin/delete/5",
		"GET /api/products/5",
	}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected routes %v", seen)
	}
}

func TestExportCSV(t *testing.T) {
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/csv" {
			t.Errorf("unexpected accept %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "id,name\n1,Drill\n")
	})
	var buf bytes.Buffer
	n, err := c.ExportCSV(context.Background(), &buf)
	if err != nil || n != int64(buf.Len()) || buf.String() != "id,name\n1,Drill\n" {
		t.Fatalf("export: n=%d err=%v body=%q", n, err, buf.String())
	}
}

func TestLowStockAndSheets(t *testing.T) {
	c := newAPITest(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/staff/low-stock":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "productName": "Drill", "unitStockQuantity": 2}})
		case "/api/products/staff/export-to-sheets":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "exported"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	low, err := c.LowStock(ctx)
	if err != nil || len(low) != 1 || low[0].AvailableStock != 2 {
		t.Fatalf("low stock: %+v %v", low, err)
	}
	res, err := c.ExportToSheets(ctx)
	if err != nil || !res.Success {
		t.Fatalf("sheets: %+v %v", res, err)
	}
}
