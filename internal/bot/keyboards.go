package bot

import (
	"fmt"

	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/domain"
)

// categoriesKeyboard lays categories two per row, with the cart button last
// when the cart is not empty.
func categoriesKeyboard(categories []domain.Category, cart *domain.Cart) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	var row []telegram.InlineKeyboardButton
	for _, c := range categories {
		row = append(row, telegram.Btn(c.Name, "category_"+c.ID))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if !cart.Empty() {
		rows = append(rows, telegram.Row(telegram.Btn(fmt.Sprintf("🛒 Корзина (%d)", cart.ItemCount()), "cart")))
	}
	return telegram.Keyboard(rows...)
}

func productsKeyboard(products []domain.Product, cart *domain.Cart) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, telegram.Row(telegram.Btn(p.Name, "product_"+p.ID)))
	}
	if !cart.Empty() {
		rows = append(rows, telegram.Row(telegram.Btn(fmt.Sprintf("🛒 Корзина (%d)", cart.ItemCount()), "cart")))
	}
	rows = append(rows, telegram.Row(telegram.Btn("⬅️ К категориям", "back_to_categories")))
	return telegram.Keyboard(rows...)
}

// productKeyboard renders the card controls for the selected variant: the
// quantity stepper, the add button, alternative variants and navigation.
func productKeyboard(p *domain.Product, selected domain.PriceVariant, qty int, cart *domain.Cart) *telegram.InlineKeyboardMarkup {
	key := p.ID + "_" + selected.VariantID
	var rows [][]telegram.InlineKeyboardButton

	rows = append(rows, telegram.Row(
		telegram.Btn("➖", fmt.Sprintf("dec_%s_%d", key, qty)),
		telegram.Btn(fmt.Sprintf("%d", qty), "qty"),
		telegram.Btn("➕", fmt.Sprintf("inc_%s_%d", key, qty)),
	))
	rows = append(rows, telegram.Row(
		telegram.Btn("🛒 Добавить в корзину", fmt.Sprintf("add_to_cart_%s_%d", key, qty)),
	))

	for _, v := range domain.ResolveVariants(p) {
		if v.VariantID == selected.VariantID {
			continue
		}
		rows = append(rows, telegram.Row(
			telegram.Btn(fmt.Sprintf("%s — %d ₽", v.Unit, v.Price), fmt.Sprintf("variant_%s_%s", p.ID, v.VariantID)),
		))
	}

	if !cart.Empty() {
		rows = append(rows, telegram.Row(telegram.Btn(fmt.Sprintf("🛒 Корзина (%d)", cart.ItemCount()), "cart")))
	}
	rows = append(rows, telegram.Row(telegram.Btn("⬅️ Назад к товарам", "back_to_products_"+p.CategoryID)))
	return telegram.Keyboard(rows...)
}

func cartKeyboard(cart *domain.Cart) *telegram.InlineKeyboardMarkup {
	if cart.Empty() {
		return telegram.Keyboard(telegram.Row(telegram.Btn("📋 К каталогу", "back_to_categories")))
	}
	return telegram.Keyboard(
		telegram.Row(telegram.Btn("✅ Оформить заказ", "start_checkout")),
		telegram.Row(telegram.Btn("🗑 Очистить корзину", "clear_cart")),
		telegram.Row(telegram.Btn("📋 Продолжить покупки", "back_to_categories")),
	)
}

// adminOrderKeyboard offers only the actions legal from the current status.
func adminOrderKeyboard(o *domain.Order) *telegram.InlineKeyboardMarkup {
	id := o.OrderID
	switch o.Status {
	case domain.StatusNew:
		return telegram.Keyboard(
			telegram.Row(telegram.Btn("✅ Принять", "order_accept_"+id), telegram.Btn("📞 Позвонить", "order_call_"+id)),
			telegram.Row(telegram.Btn("❌ Отменить", "order_cancel_"+id)),
		)
	case domain.StatusAccepted:
		return telegram.Keyboard(
			telegram.Row(telegram.Btn("👨‍🍳 На сборку", "order_prepare_"+id), telegram.Btn("📞 Позвонить", "order_call_"+id)),
			telegram.Row(telegram.Btn("❌ Отменить", "order_cancel_"+id)),
		)
	case domain.StatusPreparing:
		return telegram.Keyboard(
			telegram.Row(telegram.Btn("🚗 В доставку", "order_delivery_"+id), telegram.Btn("📞 Позвонить", "order_call_"+id)),
			telegram.Row(telegram.Btn("❌ Отменить", "order_cancel_"+id)),
		)
	case domain.StatusInDelivery:
		return telegram.Keyboard(
			telegram.Row(telegram.Btn("✅ Завершить", "order_complete_"+id)),
			telegram.Row(telegram.Btn("❌ Отменить", "order_cancel_"+id)),
		)
	default:
		return nil
	}
}

func publishKeyboard(items []domain.PublishItem) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, it := range items {
		rows = append(rows, telegram.Row(telegram.Btn(it.Name, "publish_"+it.ProductID)))
	}
	rows = append(rows, telegram.Row(telegram.Btn("❌ Отмена", "cancel_publish")))
	return telegram.Keyboard(rows...)
}
