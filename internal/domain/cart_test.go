package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCartAddMergesSameVariant(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", 2)
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", 3)

	require.Len(t, c.Lines, 1)
	require.Equal(t, 5, c.Lines[0].Quantity)
	require.Equal(t, 2250, c.Lines[0].LineTotal)
}

func TestCartVariantsAreSeparateLines(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", 1)
	c.Add("p1", "variant_1", "Сыр (1 кг)", 1400, "1 кг", 1)

	require.Len(t, c.Lines, 2)
	require.Equal(t, 1850, c.Total())
	require.Equal(t, 2, c.ItemCount())
}

func TestCartFirstPriceSticks(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", 1)
	// The catalog was repriced mid-session; the cart keeps the first price.
	c.Add("p1", VariantMain, "Сыр", 500, "300 г", 1)

	require.Len(t, c.Lines, 1)
	require.Equal(t, 450, c.Lines[0].UnitPrice)
	require.Equal(t, 900, c.Lines[0].LineTotal)
}

func TestCartIgnoresNonPositiveQty(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", 0)
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", -2)
	require.True(t, c.Empty())
	require.Zero(t, c.Total())
}

func TestCartClear(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add("p1", VariantMain, "Сыр", 450, "300 г", 1)
	c.Clear()
	require.True(t, c.Empty())
	require.Zero(t, c.ItemCount())
}
