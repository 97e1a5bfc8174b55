// Package catalog drives incremental loading of the goods listing: a
// page cursor, the accumulated count and the stop condition, reset
// whenever the search text, sort or filters change.
package catalog

import (
	"context"
	"strings"

	"lavka/internal/api"
)

// goodsLister is the one gateway call the paginator needs.
type goodsLister interface {
	Goods(ctx context.Context, q api.GoodsQuery) (api.GoodsPage, error)
}

// Query is everything that, when changed, restarts pagination.
type Query struct {
	Search       string
	Sort         string
	Categories   []string
	PriceFrom    *float64
	PriceTo      *float64
	DiscountOnly bool
}

// DefaultSort matches the catalog's initial ordering.
const DefaultSort = "rating_desc"

// State of the load cycle.
type State int

const (
	Idle State = iota
	Loading
	Loaded
)

// Page is the outcome of one successful LoadNext. Items holds the
// records to display after local filters; Append says whether they
// extend the current display or replace it (first page after a reset).
type Page struct {
	Items   []api.Good
	Append  bool
	HasMore bool
}

// Paginator owns its pagination state; the UI layer holds a handle and
// never touches the cursor directly.
type Paginator struct {
	client  goodsLister
	perPage int

	state  State
	query  Query
	page   int
	loaded int
	total  int
}

func NewPaginator(client goodsLister, perPage int) *Paginator {
	if perPage <= 0 {
		perPage = 12
	}
	return &Paginator{client: client, perPage: perPage, page: 1}
}

// Reset arms the paginator for a fresh query: back to page one with
// nothing accumulated. The caller clears its display before the next
// load.
func (p *Paginator) Reset(q Query) {
	p.query = q
	p.page = 1
	p.loaded = 0
	p.total = 0
	p.state = Idle
}

// HasMore reports whether the load-more affordance should be offered.
// It stays true after a failed load so the user can retry.
func (p *Paginator) HasMore() bool {
	return p.loaded > 0 && p.loaded < p.total
}

func (p *Paginator) State() State { return p.state }
func (p *Paginator) Query() Query { return p.query }

// LoadNext fetches the next page. On success the cursor advances and
// the accumulated count grows by the full page size (before local
// filtering, so the stop condition tracks the server's totals). On
// failure the cursor stays put and the paginator remains retryable;
// a failure on the first page means nothing was displayed yet, so the
// empty page result tells the caller to clear.
func (p *Paginator) LoadNext(ctx context.Context) (Page, error) {
	first := p.page == 1 && p.loaded == 0
	p.state = Loading

	got, err := p.client.Goods(ctx, api.GoodsQuery{
		Page:    p.page,
		PerPage: p.perPage,
		Query:   p.query.Search,
		Sort:    p.sort(),
	})
	if err != nil {
		p.state = Idle
		return Page{Append: !first}, err
	}

	p.loaded += len(got.Items)
	p.total = got.Total
	p.page++
	p.state = Loaded

	return Page{
		Items:   Filter(got.Items, p.query),
		Append:  !first,
		HasMore: p.loaded < got.Total,
	}, nil
}

func (p *Paginator) sort() string {
	if p.query.Sort == "" {
		return DefaultSort
	}
	return p.query.Sort
}

// Filter applies the client-side part of the query: category checkboxes,
// the price window and the discount-only switch. The server never sees
// these, so they trim pages for display without touching the cursor
// arithmetic.
func Filter(items []api.Good, q Query) []api.Good {
	if len(q.Categories) == 0 && q.PriceFrom == nil && q.PriceTo == nil && !q.DiscountOnly {
		return items
	}
	out := make([]api.Good, 0, len(items))
	for _, g := range items {
		if len(q.Categories) > 0 && !matchCategory(g.Category, q.Categories) {
			continue
		}
		if q.PriceFrom != nil && g.Price < *q.PriceFrom {
			continue
		}
		if q.PriceTo != nil && g.Price > *q.PriceTo {
			continue
		}
		if q.DiscountOnly && !g.Discounted() {
			continue
		}
		out = append(out, g)
	}
	return out
}

func matchCategory(cat string, wanted []string) bool {
	for _, w := range wanted {
		if strings.EqualFold(cat, w) {
			return true
		}
	}
	return false
}

// Categories lists the distinct categories present in a page of items,
// in first-seen order. The catalog sidebar is built from the first page.
func Categories(items []api.Good) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range items {
		if g.Category == "" || seen[g.Category] {
			continue
		}
		seen[g.Category] = true
		out = append(out, g.Category)
	}
	return out
}
