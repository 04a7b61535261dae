package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sakura-poetry/poetryctl/internal/gateway"
)

// Entity is implemented by every catalog record.
type Entity interface {
	Identity() int64
}

// Page bounds a list query. Zero fields are left to the server default.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) query() url.Values {
	q := url.Values{}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// Resource is the uniform CRUD surface the backend exposes under
// /api/{name}: POST /list, POST /create, PUT /update, DELETE /delete/{id}.
type Resource[T Entity] struct {
	client *gateway.Client
	base   string
}

// NewResource binds a resource rooted at base, e.g. "/api/poetry".
func NewResource[T Entity](client *gateway.Client, base string) Resource[T] {
	return Resource[T]{client: client, base: base}
}

// Base returns the resource's root path.
func (r Resource[T]) Base() string {
	return r.base
}

// List returns records matching the non-zero fields of filter.
func (r Resource[T]) List(ctx context.Context, filter T, page Page) ([]T, error) {
	return gateway.Call[[]T](ctx, r.client, gateway.Request{
		Method: http.MethodPost,
		Path:   r.base + "/list",
		Query:  page.query(),
		Body:   filter,
	})
}

// Create stores a new record.
func (r Resource[T]) Create(ctx context.Context, v T) (bool, error) {
	return gateway.Call[bool](ctx, r.client, gateway.Request{
		Method: http.MethodPost,
		Path:   r.base + "/create",
		Body:   v,
	})
}

// Update replaces the record identified by v's id.
func (r Resource[T]) Update(ctx context.Context, v T) (bool, error) {
	return gateway.Call[bool](ctx, r.client, gateway.Request{
		Method: http.MethodPut,
		Path:   r.base + "/update",
		Body:   v,
	})
}

// Delete removes the record with the given id.
func (r Resource[T]) Delete(ctx context.Context, id int64) (bool, error) {
	return gateway.Call[bool](ctx, r.client, gateway.Request{
		Method: http.MethodDelete,
		Path:   r.base + "/delete/" + strconv.FormatInt(id, 10),
	})
}

// get performs a GET below the resource root.
func get[V any](ctx context.Context, client *gateway.Client, path string, query url.Values) (V, error) {
	return gateway.Call[V](ctx, client, gateway.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

func segment(s string) string {
	return "/" + url.PathEscape(s)
}

func idSegment(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}
