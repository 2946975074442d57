package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufaso/shopbot/internal/domain"
)

func TestSplitVariantKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		payload   string
		productID string
		variantID string
		ok        bool
	}{
		{"p1_main", "p1", "main", true},
		{"p1_variant_2", "p1", "variant_2", true},
		{"prod_42_main", "prod_42", "main", true},
		{"prod_42_variant_1", "prod_42", "variant_1", true},
		{"garbage", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			productID, variantID, ok := splitVariantKey(tt.payload)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.productID, productID)
			require.Equal(t, tt.variantID, variantID)
		})
	}
}

func TestSplitCartKey(t *testing.T) {
	t.Parallel()

	productID, variantID, qty, ok := splitCartKey("p1_variant_3_7")
	require.True(t, ok)
	require.Equal(t, "p1", productID)
	require.Equal(t, "variant_3", variantID)
	require.Equal(t, 7, qty)

	productID, variantID, qty, ok = splitCartKey("prod_42_main_10")
	require.True(t, ok)
	require.Equal(t, "prod_42", productID)
	require.Equal(t, "main", variantID)
	require.Equal(t, 10, qty)

	_, _, _, ok = splitCartKey("p1_main_x")
	require.False(t, ok)
}

func TestCategoriesKeyboardLayout(t *testing.T) {
	t.Parallel()

	cats := []domain.Category{{ID: "c1", Name: "Сыры"}, {ID: "c2", Name: "Мёд"}, {ID: "c3", Name: "Халва"}}

	kb := categoriesKeyboard(cats, &domain.Cart{})
	require.Len(t, kb.InlineKeyboard, 2, "two per row, no cart button for an empty cart")
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.Len(t, kb.InlineKeyboard[1], 1)
	require.Equal(t, "category_c1", kb.InlineKeyboard[0][0].CallbackData)

	var cart domain.Cart
	cart.Add("p1", domain.VariantMain, "Сыр", 450, "300 г", 2)
	kb = categoriesKeyboard(cats, &cart)
	last := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	require.Equal(t, "cart", last[0].CallbackData)
	require.Contains(t, last[0].Text, "(2)")
}

func TestProductKeyboardOffersOtherVariants(t *testing.T) {
	t.Parallel()

	p := &domain.Product{ID: "p1", CategoryID: "c1", Price: "500", Unit: "1 кг", Extra1: domain.PriceSlot{Price: "300", Unit: "500 г"}}
	selected, ok := domain.FindVariant(p, domain.VariantMain)
	require.True(t, ok)

	kb := productKeyboard(p, selected, 3, &domain.Cart{})

	require.Equal(t, "dec_p1_main_3", kb.InlineKeyboard[0][0].CallbackData)
	require.Equal(t, "inc_p1_main_3", kb.InlineKeyboard[0][2].CallbackData)
	require.Equal(t, "add_to_cart_p1_main_3", kb.InlineKeyboard[1][0].CallbackData)

	var variantButtons []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == "variant_p1_variant_1" {
				variantButtons = append(variantButtons, btn.Text)
			}
			require.NotEqual(t, "variant_p1_main", btn.CallbackData, "the selected variant is not re-offered")
		}
	}
	require.Len(t, variantButtons, 1)

	back := kb.InlineKeyboard[len(kb.InlineKeyboard)-1][0]
	require.Equal(t, "back_to_products_c1", back.CallbackData)
}

func TestAdminOrderKeyboardPerStatus(t *testing.T) {
	t.Parallel()

	collect := func(o *domain.Order) []string {
		kb := adminOrderKeyboard(o)
		if kb == nil {
			return nil
		}
		var data []string
		for _, row := range kb.InlineKeyboard {
			for _, btn := range row {
				data = append(data, btn.CallbackData)
			}
		}
		return data
	}

	o := &domain.Order{OrderID: "007", Status: domain.StatusNew}
	require.Contains(t, collect(o), "order_accept_007")
	require.NotContains(t, collect(o), "order_prepare_007")

	o.Status = domain.StatusAccepted
	require.Contains(t, collect(o), "order_prepare_007")
	require.NotContains(t, collect(o), "order_accept_007")

	o.Status = domain.StatusInDelivery
	require.Contains(t, collect(o), "order_complete_007")

	o.Status = domain.StatusCompleted
	require.Nil(t, adminOrderKeyboard(o), "terminal orders get no actions")
	o.Status = domain.StatusCancelled
	require.Nil(t, adminOrderKeyboard(o))
}

func TestCartText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "🛒 Корзина пуста", cartText(&domain.Cart{}))

	var cart domain.Cart
	cart.Add("p1", domain.VariantMain, "Качотта", 450, "300 г", 2)
	text := cartText(&cart)
	require.Contains(t, text, "Качотта")
	require.Contains(t, text, "450 ₽ × 2 = 900 ₽")
	require.Contains(t, text, "Итого: 900 ₽")
}

func TestAdminOrderTextHeaders(t *testing.T) {
	t.Parallel()

	o := &domain.Order{
		OrderID:      "003",
		Date:         "2026-03-14",
		Time:         "15:09:26",
		Status:       domain.StatusNew,
		CustomerName: "Анна",
		Phone:        "+79991234567",
		Address:      "ул. Ленина, 1",
		Total:        900,
		Lines:        []domain.OrderLine{{ProductName: "Качотта", UnitPrice: 450, Quantity: 2, Subtotal: 900}},
	}
	text := adminOrderText(o)
	require.Contains(t, text, "🆕 НОВЫЙ ЗАКАЗ #003")
	require.Contains(t, text, "Качотта")

	o.Status = domain.StatusCancelled
	require.Contains(t, adminOrderText(o), "❌ ЗАКАЗ ОТМЕНЕН #003")
}
