// Package paging drives one server-paged collection: current page, filters
// and the items of the last good fetch.
package paging

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/notify"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// ErrStale is returned for a response superseded by a newer request.
var ErrStale = errors.New("paging: stale response discarded")

// FetchFunc loads one page. The query is owned by the callee.
type FetchFunc[T any] func(ctx context.Context, q client.PageQuery) (client.Page[T], error)

// State is a snapshot of a controller.
type State[T any] struct {
	PageIndex   int
	PageSize    int
	Filters     map[string]any
	TotalPages  int
	TotalItems  int64
	HasPrevious bool
	HasNext     bool
	Loading     bool
	Items       []T
}

// Controller is safe for concurrent use. Only the most recent request may
// update its state.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	notifier notify.Notifier

	mu         sync.Mutex
	gen        uint64
	pageIndex  int
	pageSize   int
	filters    map[string]any
	totalPages int
	totalItems int64
	loading    bool
	items      []T
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	pageSize int
	filters  map[string]any
	notifier notify.Notifier
}

// WithPageSize sets the page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithFilters sets the initial filters.
func WithFilters(f map[string]any) Option {
	return func(o *options) { o.filters = maps.Clone(f) }
}

// WithNotifier sets where fetch failures are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// New returns a controller on page 1. Nothing is fetched until Refetch or
// another navigation call.
func New[T any](fetch FetchFunc[T], opts ...Option) *Controller[T] {
	if fetch == nil {
		panic("paging: nil fetch func")
	}
	o := options{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.filters == nil {
		o.filters = map[string]any{}
	}
	return &Controller[T]{
		fetch:     fetch,
		notifier:  o.notifier,
		pageIndex: 1,
		pageSize:  o.pageSize,
		filters:   o.filters,
	}
}

// State returns a copy of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{
		PageIndex:   c.pageIndex,
		PageSize:    c.pageSize,
		Filters:     maps.Clone(c.filters),
		TotalPages:  c.totalPages,
		TotalItems:  c.totalItems,
		HasPrevious: c.pageIndex > 1,
		HasNext:     c.pageIndex < c.totalPages,
		Loading:     c.loading,
		Items:       append([]T(nil), c.items...),
	}
}

// Items returns a copy of the current items.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// SetPage fetches page n. It is a no-op when n is the current page or
// outside [1, max(totalPages,1)].
func (c *Controller[T]) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if n == c.pageIndex || n < 1 || n > max(c.totalPages, 1) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.load(ctx, n)
}

// NextPage moves forward one page; no-op on the last page.
func (c *Controller[T]) NextPage(ctx context.Context) error {
	c.mu.Lock()
	n := c.pageIndex + 1
	c.mu.Unlock()
	return c.SetPage(ctx, n)
}

// PreviousPage moves back one page; no-op on the first page.
func (c *Controller[T]) PreviousPage(ctx context.Context) error {
	c.mu.Lock()
	n := c.pageIndex - 1
	c.mu.Unlock()
	return c.SetPage(ctx, n)
}

// SetFilter merges patch into the filters, moves to page 1 and fetches it.
// A nil value is kept and sent as null. Filters and page are committed
// together before the fetch, so a failed fetch leaves page 1 of the new
// filters for Refetch to retry.
func (c *Controller[T]) SetFilter(ctx context.Context, patch map[string]any) error {
	c.mu.Lock()
	maps.Copy(c.filters, patch)
	c.pageIndex = 1
	c.mu.Unlock()
	return c.load(ctx, 1)
}

// Refetch reloads the current page with the current filters.
func (c *Controller[T]) Refetch(ctx context.Context) error {
	c.mu.Lock()
	n := c.pageIndex
	c.mu.Unlock()
	return c.load(ctx, n)
}

// Patch applies fn to the current items. The next fetch replaces the result
// wholesale.
func (c *Controller[T]) Patch(fn func(items []T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = fn(append([]T(nil), c.items...))
}

// load fetches page n. When the server reports fewer pages than requested
// the last page is fetched once instead.
func (c *Controller[T]) load(ctx context.Context, n int) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.loading = true
	q := client.PageQuery{PageIndex: n, PageSize: c.pageSize, Filters: maps.Clone(c.filters)}
	c.mu.Unlock()

	page, err := c.fetch(ctx, q)
	if err == nil && page.TotalPages < q.PageIndex && q.PageIndex > 1 {
		q.PageIndex = max(page.TotalPages, 1)
		if !c.current(gen) {
			return ErrStale
		}
		page, err = c.fetch(ctx, q)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrStale
	}
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		notify.Error(c.notifier, err)
		return err
	}
	c.pageIndex = q.PageIndex
	c.totalPages = page.TotalPages
	c.totalItems = page.TotalItems
	c.items = page.Datas
	if c.totalPages > 0 && c.pageIndex > c.totalPages {
		c.pageIndex = c.totalPages
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller[T]) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}
