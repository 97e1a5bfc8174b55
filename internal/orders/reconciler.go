// Package orders resolves an order's line items into something
// displayable and builds the payloads sent on create and update.
//
// An order's line items arrive in one of two forms: goods embedded in
// the order record, or a flat list of good IDs where repeats mean
// quantity. The second form needs secondary fetches, which are issued
// as one concurrent batch and tolerated individually: a good that fails
// to resolve is dropped from the result, never fatal.
package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lavka/internal/api"
	"lavka/internal/pricing"
)

type goodsFetcher interface {
	GoodByID(ctx context.Context, id int64) (api.Good, error)
}

// Line is one resolved order position.
type Line struct {
	GoodID    int64
	Title     string
	UnitPrice float64
	Quantity  int
	Subtotal  float64
}

// Reconciliation is a best-effort result: the lines that resolved, the
// IDs that did not, and the total. When the order record carried its own
// non-zero total that value is reported unchanged and Authoritative is
// set; the lines then exist for display only.
type Reconciliation struct {
	Lines         []Line
	Total         float64
	Authoritative bool
	FailedIDs     []int64
}

// ItemCount is the quantity-weighted number of goods in the order.
func (r Reconciliation) ItemCount() int {
	n := 0
	for _, l := range r.Lines {
		n += l.Quantity
	}
	return n
}

type Reconciler struct {
	client goodsFetcher
}

func NewReconciler(client goodsFetcher) *Reconciler {
	return &Reconciler{client: client}
}

// Reconcile resolves an order's line items and total.
func (r *Reconciler) Reconcile(ctx context.Context, o api.Order) Reconciliation {
	var rec Reconciliation
	switch {
	case len(o.Goods) > 0:
		rec = fromEmbedded(o.Goods)
	case len(o.GoodIDs) > 0:
		rec = r.fromIDs(ctx, o.GoodIDs)
	}
	if o.TotalSum > 0 {
		rec.Total = o.TotalSum
		rec.Authoritative = true
	}
	return rec
}

func fromEmbedded(goods []api.OrderGood) Reconciliation {
	rec := Reconciliation{Lines: make([]Line, 0, len(goods))}
	for _, g := range goods {
		qty := g.Quantity
		if qty < 1 {
			qty = 1
		}
		unit := pricing.Effective(g.ActualPrice, g.DiscountPrice)
		line := Line{
			GoodID:    g.ID,
			Title:     displayName(g.DisplayName(), g.ID),
			UnitPrice: unit,
			Quantity:  qty,
			Subtotal:  unit * float64(qty),
		}
		rec.Lines = append(rec.Lines, line)
		rec.Total += line.Subtotal
	}
	return rec
}

func (r *Reconciler) fromIDs(ctx context.Context, ids []int64) Reconciliation {
	counts := map[int64]int{}
	order := make([]int64, 0, len(ids))
	for _, id := range ids {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	goods, failed := r.FetchGoods(ctx, order)
	byID := make(map[int64]api.Good, len(goods))
	for _, g := range goods {
		byID[g.ID] = g
	}

	rec := Reconciliation{FailedIDs: failed}
	for _, id := range order {
		g, ok := byID[id]
		if !ok {
			continue
		}
		qty := counts[id]
		line := Line{
			GoodID:    id,
			Title:     displayName(g.Title, id),
			UnitPrice: g.Price,
			Quantity:  qty,
			Subtotal:  g.Price * float64(qty),
		}
		rec.Lines = append(rec.Lines, line)
		rec.Total += line.Subtotal
	}
	return rec
}

// FetchGoods fetches the given IDs as one concurrent batch, waiting for
// every fetch to settle. Goods come back in the order asked for; IDs
// whose fetch failed are reported, not fatal.
func (r *Reconciler) FetchGoods(ctx context.Context, ids []int64) (goods []api.Good, failed []int64) {
	if len(ids) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	byID := make(map[int64]api.Good, len(ids))

	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			g, err := r.client.GoodByID(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, id)
				return
			}
			byID[id] = g
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		if g, ok := byID[id]; ok {
			goods = append(goods, g)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return goods, failed
}

func displayName(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Item #%d", id)
}
