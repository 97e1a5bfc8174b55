package orders_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"lavka/internal/api"
	"lavka/internal/orders"
)

func fp(v float64) *float64 { return &v }

// fakeGoods serves fixed goods by ID; listed IDs fail.
type fakeGoods struct {
	mu      sync.Mutex
	goods   map[int64]api.Good
	broken  map[int64]bool
	fetches []int64
}

func (f *fakeGoods) GoodByID(_ context.Context, id int64) (api.Good, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, id)
	f.mu.Unlock()
	if f.broken[id] {
		return api.Good{}, errors.New("fetch failed")
	}
	g, ok := f.goods[id]
	if !ok {
		return api.Good{}, errors.New("not found")
	}
	return g, nil
}

func TestReconcileIDListWithRepeats(t *testing.T) {
	srv := &fakeGoods{goods: map[int64]api.Good{
		5: {ID: 5, Title: "Lamp", Price: 100},
		7: {ID: 7, Title: "Mug", Price: 50},
	}}
	r := orders.NewReconciler(srv)

	rec := r.Reconcile(context.Background(), api.Order{GoodIDs: []int64{5, 5, 7}})

	if rec.Total != 250 {
		t.Fatalf("total=%v want 250", rec.Total)
	}
	if rec.Authoritative {
		t.Fatal("no total_sum, nothing authoritative")
	}
	if len(rec.Lines) != 2 {
		t.Fatalf("lines: %+v", rec.Lines)
	}
	if rec.Lines[0].GoodID != 5 || rec.Lines[0].Quantity != 2 || rec.Lines[0].Subtotal != 200 {
		t.Fatalf("line 0: %+v", rec.Lines[0])
	}
	if rec.Lines[1].GoodID != 7 || rec.Lines[1].Quantity != 1 {
		t.Fatalf("line 1: %+v", rec.Lines[1])
	}
	if rec.ItemCount() != 3 {
		t.Fatalf("item count=%d", rec.ItemCount())
	}

	// Repeated IDs are fetched once.
	if len(srv.fetches) != 2 {
		t.Fatalf("fetches: %v", srv.fetches)
	}
}

func TestReconcileDropsFailedFetches(t *testing.T) {
	srv := &fakeGoods{
		goods:  map[int64]api.Good{5: {ID: 5, Title: "Lamp", Price: 100}},
		broken: map[int64]bool{7: true},
	}
	r := orders.NewReconciler(srv)

	rec := r.Reconcile(context.Background(), api.Order{GoodIDs: []int64{5, 5, 7}})

	if len(rec.Lines) != 1 || rec.Lines[0].GoodID != 5 {
		t.Fatalf("lines: %+v", rec.Lines)
	}
	if rec.Total != 200 {
		t.Fatalf("total reflects resolved items only, got %v", rec.Total)
	}
	if !reflect.DeepEqual(rec.FailedIDs, []int64{7}) {
		t.Fatalf("failed: %v", rec.FailedIDs)
	}
}

func TestAuthoritativeTotalWins(t *testing.T) {
	srv := &fakeGoods{
		goods:  map[int64]api.Good{5: {ID: 5, Title: "Lamp", Price: 100}},
		broken: map[int64]bool{7: true},
	}
	r := orders.NewReconciler(srv)

	rec := r.Reconcile(context.Background(), api.Order{GoodIDs: []int64{5, 5, 7}, TotalSum: 999})

	if rec.Total != 999 || !rec.Authoritative {
		t.Fatalf("total=%v authoritative=%v", rec.Total, rec.Authoritative)
	}
	// Lines still resolve for display.
	if len(rec.Lines) != 1 {
		t.Fatalf("lines: %+v", rec.Lines)
	}
}

func TestReconcileEmbeddedGoods(t *testing.T) {
	r := orders.NewReconciler(&fakeGoods{})

	rec := r.Reconcile(context.Background(), api.Order{Goods: []api.OrderGood{
		{ID: 1, Name: "Lamp", ActualPrice: fp(1000), DiscountPrice: fp(700), Quantity: 2},
		{ID: 2, Title: "Mug", ActualPrice: fp(50)}, // no quantity -> 1
		{ID: 3, DiscountPrice: fp(30)},             // no name -> placeholder
	}})

	if rec.Total != 700*2+50+30 {
		t.Fatalf("total=%v", rec.Total)
	}
	if rec.Lines[0].UnitPrice != 700 || rec.Lines[0].Quantity != 2 {
		t.Fatalf("line 0: %+v", rec.Lines[0])
	}
	if rec.Lines[1].Quantity != 1 {
		t.Fatalf("line 1: %+v", rec.Lines[1])
	}
	if rec.Lines[2].Title != "Item #3" {
		t.Fatalf("line 2: %+v", rec.Lines[2])
	}
}

func TestReconcileEmptyOrder(t *testing.T) {
	r := orders.NewReconciler(&fakeGoods{})
	rec := r.Reconcile(context.Background(), api.Order{})
	if len(rec.Lines) != 0 || rec.Total != 0 || rec.Authoritative {
		t.Fatalf("%+v", rec)
	}
}

func TestFetchGoodsKeepsRequestOrder(t *testing.T) {
	srv := &fakeGoods{goods: map[int64]api.Good{
		1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3},
	}}
	r := orders.NewReconciler(srv)

	goods, failed := r.FetchGoods(context.Background(), []int64{3, 1, 2})
	if len(failed) != 0 {
		t.Fatalf("failed: %v", failed)
	}
	ids := []int64{goods[0].ID, goods[1].ID, goods[2].ID}
	if !reflect.DeepEqual(ids, []int64{3, 1, 2}) {
		t.Fatalf("order: %v", ids)
	}
}
