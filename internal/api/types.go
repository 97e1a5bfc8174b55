package api

// Good is the canonical catalog item every response shape is reduced to.
// Raw keeps the record as the service sent it, for views that need fields
// the normalizer does not carry over (struck-through actual price, etc).
type Good struct {
	ID       int64
	Title    string
	Price    float64
	Image    string
	Category string
	Rating   float64
	Raw      map[string]any
}

// GoodsPage is one normalized page of the catalog listing.
type GoodsPage struct {
	Items []Good
	Total int
}

// ActualPrice returns the raw actual_price field, when usable.
func (g Good) ActualPrice() (float64, bool) {
	v := rawNumber(g.Raw, "actual_price")
	if v == nil {
		return 0, false
	}
	return *v, true
}

// DiscountPrice returns the raw discount_price field, when usable.
func (g Good) DiscountPrice() (float64, bool) {
	v := rawNumber(g.Raw, "discount_price")
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Discounted reports whether the good should display a struck-through
// actual price next to the effective one.
func (g Good) Discounted() bool {
	dp, dok := g.DiscountPrice()
	ap, aok := g.ActualPrice()
	return dok && dp > 0 && aok && dp < ap
}

// StruckPrice is the original price to strike through, 0 when the good
// is not discounted. Single-valued for template use.
func (g Good) StruckPrice() float64 {
	if !g.Discounted() {
		return 0
	}
	ap, _ := g.ActualPrice()
	return ap
}

// GoodsQuery carries the listing parameters the service understands.
// Zero values are dropped from the request.
type GoodsQuery struct {
	Page    int
	PerPage int
	Query   string
	Sort    string
}

// OrderGood is a good embedded in an order record. Quantity is 0 when the
// service did not send one; consumers treat that as 1.
type OrderGood struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	ActualPrice   *float64 `json:"actual_price"`
	DiscountPrice *float64 `json:"discount_price"`
	Quantity      int      `json:"quantity"`
}

// DisplayName picks the first usable name field.
func (g OrderGood) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Title
}

// Order is an order record. Line items arrive either as embedded Goods or
// as the flat GoodIDs list (repeats meaning quantity); TotalSum is only
// present on some responses and is authoritative when non-zero.
type Order struct {
	ID               int64       `json:"id"`
	FullName         string      `json:"full_name"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	DeliveryAddress  string      `json:"delivery_address"`
	DeliveryDate     string      `json:"delivery_date"`
	DeliveryInterval string      `json:"delivery_interval"`
	Comment          string      `json:"comment"`
	Subscribe        int         `json:"subscribe"`
	GoodIDs          []int64     `json:"good_ids"`
	Goods            []OrderGood `json:"goods"`
	TotalSum         float64     `json:"total_sum"`
	CreatedAt        string      `json:"created_at"`
}

// ItemCount is the number of line entries an order carries, whichever
// source is present.
func (o Order) ItemCount() int {
	if len(o.Goods) > 0 {
		return len(o.Goods)
	}
	return len(o.GoodIDs)
}

// OrderPayload is the body sent on create and update. Comment is omitted
// when empty; GoodIDs is set on create (the quantity-expanded cart list)
// and left out on update.
type OrderPayload struct {
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Subscribe        int     `json:"subscribe"`
	Phone            string  `json:"phone"`
	DeliveryAddress  string  `json:"delivery_address"`
	DeliveryDate     string  `json:"delivery_date"`
	DeliveryInterval string  `json:"delivery_interval"`
	Comment          string  `json:"comment,omitempty"`
	GoodIDs          []int64 `json:"good_ids,omitempty"`
}
