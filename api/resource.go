package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// routes maps resource operations to paths. Products do not follow the
// REST layout the account resources use, so each path is explicit.
type routes struct {
	list   string
	get    func(id string) string
	create string
	update func(id string) string
	delete func(id string) string
}

func restRoutes(base string) routes {
	item := func(id string) string { return base + "/" + url.PathEscape(id) }
	return routes{list: base, get: item, create: base, update: item, delete: item}
}

// Resource is CRUD over one collection.
type Resource[T any] struct {
	c      *Client
	name   string
	routes routes
}

// List returns every record.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	raw, err := r.c.raw(ctx, call{op: r.name + ".list", method: http.MethodGet, path: r.routes.list})
	if err != nil {
		return nil, err
	}
	out, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s.list: %w: %v", r.name, ErrDecode, err)
	}
	return out, nil
}

// Get returns one record.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	return r.one(ctx, call{op: r.name + ".get", method: http.MethodGet, path: r.routes.get(id)})
}

// Create posts in and returns the stored record.
func (r *Resource[T]) Create(ctx context.Context, in any) (T, error) {
	return r.one(ctx, call{op: r.name + ".create", method: http.MethodPost, path: r.routes.create, body: in})
}

// Update replaces the record with id.
func (r *Resource[T]) Update(ctx context.Context, id string, in any) (T, error) {
	return r.one(ctx, call{op: r.name + ".update", method: http.MethodPut, path: r.routes.update(id), body: in})
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.doJSON(ctx, call{op: r.name + ".delete", method: http.MethodDelete, path: r.routes.delete(id)}, nil)
}

func (r *Resource[T]) one(ctx context.Context, cl call) (T, error) {
	var zero T
	raw, err := r.c.raw(ctx, cl)
	if err != nil {
		return zero, err
	}
	out, err := decodeOne[T](raw)
	if err != nil {
		return zero, fmt.Errorf("%s: %w: %v", cl.op, ErrDecode, err)
	}
	return out, nil
}

// raw sends cl and returns the whole 2xx body.
func (c *Client) raw(ctx context.Context, cl call) ([]byte, error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", cl.op, ErrNetwork, err)
	}
	return b, nil
}

// Staff is the staff directory.
func (c *Client) Staff() *Resource[Account] {
	return &Resource[Account]{c: c, name: "staff", routes: restRoutes("/staff")}
}

// Users is the customer directory.
func (c *Client) Users() *Resource[Account] {
	return &Resource[Account]{c: c, name: "users", routes: restRoutes("/users")}
}

// Admins is the administrator directory.
func (c *Client) Admins() *Resource[Account] {
	return &Resource[Account]{c: c, name: "admins", routes: restRoutes("/admin")}
}

// Products is the product inventory.
func (c *Client) Products() *Resource[ProductRecord] {
	item := func(prefix string) func(string) string {
		return func(id string) string { return prefix + url.PathEscape(id) }
	}
	return &Resource[ProductRecord]{c: c, name: "products", routes: routes{
		list:   "/products",
		get:    item("/products/"),
		create: "/products/staff/create",
		update: item("/products/staff/update/"),
		delete: item("/products/admin/delete/"),
	}}
}
