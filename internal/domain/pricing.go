package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Variant identifiers as they appear in callback data and order lines.
const (
	VariantMain = "main"

	DefaultUnit = "шт."
)

// PriceVariant is a purchasable (price, unit) combination of a product.
// Derived on every catalog read, never persisted.
type PriceVariant struct {
	Price     int
	Unit      string
	VariantID string
	IsMain    bool
}

// ResolveVariants lists the purchasable variants of p, cheapest first.
// A secondary slot is included only when its price parses to a positive
// integer and its unit is non-empty; the main slot only needs a positive
// price (an empty unit falls back to DefaultUnit). Ties keep slot order:
// main, then variant_1..variant_4. Malformed numbers are treated as absent,
// never as an error. An empty result means "nothing purchasable", which
// callers must distinguish from "product not found".
func ResolveVariants(p *Product) []PriceVariant {
	if p == nil {
		return nil
	}
	out := make([]PriceVariant, 0, 5)

	if price, ok := parsePrice(p.Price); ok {
		unit := strings.TrimSpace(p.Unit)
		if unit == "" {
			unit = DefaultUnit
		}
		out = append(out, PriceVariant{Price: price, Unit: unit, VariantID: VariantMain, IsMain: true})
	}

	for i, slot := range p.ExtraSlots() {
		price, ok := parsePrice(slot.Price)
		unit := strings.TrimSpace(slot.Unit)
		if !ok || unit == "" {
			continue
		}
		out = append(out, PriceVariant{Price: price, Unit: unit, VariantID: "variant_" + strconv.Itoa(i+1)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// FindVariant returns the resolved variant with the given id, if any.
func FindVariant(p *Product, variantID string) (PriceVariant, bool) {
	for _, v := range ResolveVariants(p) {
		if v.VariantID == variantID {
			return v, true
		}
	}
	return PriceVariant{}, false
}

func parsePrice(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
