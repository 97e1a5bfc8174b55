package api

import (
	"math"
	"strconv"

	"lavka/internal/pricing"
)

// The goods listing endpoint has shipped several response shapes over
// time. Classification is explicit so every consumer goes through the
// same decision instead of re-probing the structure ad hoc.
type listShape int

const (
	shapeUnknown listShape = iota
	shapeItems   // {items: [...], total: n}
	shapeGoods   // {goods: [...], _pagination: {...}}
	shapeArray   // bare [...]
)

func classifyList(v any) listShape {
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t["items"].([]any); ok {
			return shapeItems
		}
		if _, ok := t["goods"].([]any); ok {
			return shapeGoods
		}
		return shapeUnknown
	case []any:
		return shapeArray
	default:
		return shapeUnknown
	}
}

// NormalizeGoodsList reduces whatever the listing endpoint returned to a
// canonical page. Unknown shapes come back as an empty page, never an
// error; a missing or non-numeric total falls back to the item count.
func NormalizeGoodsList(v any) GoodsPage {
	switch classifyList(v) {
	case shapeItems:
		m := v.(map[string]any)
		raw := m["items"].([]any)
		total := len(raw)
		if n := rawNumber(m, "total"); n != nil && int(*n) > 0 {
			total = int(*n)
		}
		return GoodsPage{Items: normalizeAll(raw), Total: total}

	case shapeGoods:
		m := v.(map[string]any)
		raw := m["goods"].([]any)
		total := len(raw)
		if p, ok := m["_pagination"].(map[string]any); ok {
			// The pagination block has used several names for the
			// same counter; first usable one wins.
			for _, key := range []string{"total_count", "total", "count"} {
				if n := rawNumber(p, key); n != nil && int(*n) > 0 {
					total = int(*n)
					break
				}
			}
		}
		return GoodsPage{Items: normalizeAll(raw), Total: total}

	case shapeArray:
		raw := v.([]any)
		return GoodsPage{Items: normalizeAll(raw), Total: len(raw)}

	default:
		return GoodsPage{Items: []Good{}, Total: 0}
	}
}

func normalizeAll(raw []any) []Good {
	items := make([]Good, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			items = append(items, NormalizeGood(m))
		}
	}
	return items
}

// NormalizeGood maps one raw record to a Good. Title, image and category
// each have a primary and a fallback field; the price goes through the
// pricing tie-break so it is always a usable number.
func NormalizeGood(m map[string]any) Good {
	return Good{
		ID:       rawID(m),
		Title:    rawString(m, "name", "title"),
		Price:    pricing.Effective(rawNumber(m, "actual_price"), rawNumber(m, "discount_price")),
		Image:    rawString(m, "image", "image_url"),
		Category: rawString(m, "main_category", "category"),
		Rating:   rawRating(m),
		Raw:      m,
	}
}

func rawID(m map[string]any) int64 {
	if n := rawNumber(m, "id"); n != nil {
		return int64(*n)
	}
	return 0
}

func rawString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// rawNumber reads the first of keys that holds a finite number.
// JSON numbers decode as float64; anything else is ignored.
func rawNumber(m map[string]any, keys ...string) *float64 {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if f, ok := m[k].(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			v := f
			return &v
		}
	}
	return nil
}

func rawRating(m map[string]any) float64 {
	switch t := m["rating"].(type) {
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			return t
		}
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return 0
}
