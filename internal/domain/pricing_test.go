package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveVariantsMainSlot(t *testing.T) {
	t.Parallel()

	p := &Product{ID: "p1", Name: "Сыр", Price: "450", Unit: "300 г"}
	vs := ResolveVariants(p)
	require.Len(t, vs, 1)
	require.Equal(t, PriceVariant{Price: 450, Unit: "300 г", VariantID: VariantMain, IsMain: true}, vs[0])
}

func TestResolveVariantsMainUnitFallback(t *testing.T) {
	t.Parallel()

	p := &Product{ID: "p1", Price: "100"}
	vs := ResolveVariants(p)
	require.Len(t, vs, 1)
	require.Equal(t, DefaultUnit, vs[0].Unit)
}

func TestResolveVariantsSkipsMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price string
		want  int
	}{
		{"empty price", "", 0},
		{"zero price", "0", 0},
		{"negative price", "-5", 0},
		{"text price", "дорого", 0},
		{"spaced thousands", "1 200", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{ID: "p1", Price: tt.price, Unit: "шт."}
			require.Len(t, ResolveVariants(p), tt.want)
		})
	}
}

func TestResolveVariantsSecondaryNeedsPriceAndUnit(t *testing.T) {
	t.Parallel()

	p := &Product{
		ID:     "p1",
		Price:  "500",
		Unit:   "1 кг",
		Extra1: PriceSlot{Price: "300", Unit: "500 г"},
		Extra2: PriceSlot{Price: "200", Unit: ""},   // no unit, dropped
		Extra3: PriceSlot{Price: "", Unit: "250 г"}, // no price, dropped
		Extra4: PriceSlot{Price: "900", Unit: "2 кг"},
	}
	vs := ResolveVariants(p)
	require.Len(t, vs, 3)

	ids := []string{vs[0].VariantID, vs[1].VariantID, vs[2].VariantID}
	require.Equal(t, []string{"variant_1", VariantMain, "variant_4"}, ids)
	for i := 1; i < len(vs); i++ {
		require.GreaterOrEqual(t, vs[i].Price, vs[i-1].Price, "variants must be sorted cheapest first")
	}
}

func TestResolveVariantsTiesKeepSlotOrder(t *testing.T) {
	t.Parallel()

	p := &Product{
		ID:     "p1",
		Price:  "100",
		Unit:   "шт.",
		Extra1: PriceSlot{Price: "100", Unit: "пара"},
	}
	vs := ResolveVariants(p)
	require.Len(t, vs, 2)
	require.True(t, vs[0].IsMain)
	require.Equal(t, "variant_1", vs[1].VariantID)
}

func TestResolveVariantsNoPurchasable(t *testing.T) {
	t.Parallel()

	p := &Product{ID: "p1", Name: "Витрина"}
	require.Empty(t, ResolveVariants(p))
	require.Empty(t, ResolveVariants(nil))
}

func TestFindVariant(t *testing.T) {
	t.Parallel()

	p := &Product{ID: "p1", Price: "500", Unit: "1 кг", Extra1: PriceSlot{Price: "300", Unit: "500 г"}}

	v, ok := FindVariant(p, "variant_1")
	require.True(t, ok)
	require.Equal(t, 300, v.Price)

	_, ok = FindVariant(p, "variant_2")
	require.False(t, ok)
}
