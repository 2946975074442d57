package bot

import (
	"fmt"
	"strings"

	"github.com/bufaso/shopbot/internal/domain"
)

const greeting = "👋 Добро пожаловать в наш магазин!\n\nВыберите категорию, чтобы посмотреть товары."

func menuCaption(greeted bool) string {
	if greeted {
		return "📋 Каталог\n\nВыберите категорию:"
	}
	return greeting
}

func priceList(p *domain.Product) string {
	var sb strings.Builder
	for _, v := range domain.ResolveVariants(p) {
		fmt.Fprintf(&sb, "• %s — %d ₽\n", v.Unit, v.Price)
	}
	if sb.Len() == 0 {
		sb.WriteString("• Цены уточняйте\n")
	}
	return sb.String()
}

func productCaption(p *domain.Product, v domain.PriceVariant, qty int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n\n", p.Name)
	if p.Description != "" {
		sb.WriteString(p.Description + "\n\n")
	}
	sb.WriteString(priceList(p))
	fmt.Fprintf(&sb, "\nВыбрано: %s — %d ₽\nКоличество: %d\nИтого: %d ₽", v.Unit, v.Price, qty, v.Price*qty)
	return sb.String()
}

func cartText(cart *domain.Cart) string {
	if cart.Empty() {
		return "🛒 Корзина пуста"
	}
	var sb strings.Builder
	sb.WriteString("🛒 <b>Ваша корзина:</b>\n\n")
	for i, l := range cart.Lines {
		fmt.Fprintf(&sb, "%d. %s (%s)\n   %d ₽ × %d = %d ₽\n", i+1, l.ProductName, l.Unit, l.UnitPrice, l.Quantity, l.LineTotal)
	}
	fmt.Fprintf(&sb, "\n💰 <b>Итого: %d ₽</b>", cart.Total())
	return sb.String()
}

// miniCart is appended to product cards so the shopper sees the running total.
func miniCart(cart *domain.Cart) string {
	if cart.Empty() {
		return ""
	}
	return fmt.Sprintf("\n\n🛒 В корзине: %d тов. на %d ₽", cart.ItemCount(), cart.Total())
}

var statusHeaders = map[domain.OrderStatus]string{
	domain.StatusNew:        "🆕 НОВЫЙ ЗАКАЗ",
	domain.StatusAccepted:   "✅ ПРИНЯТЫЙ ЗАКАЗ",
	domain.StatusPreparing:  "👨‍🍳 ЗАКАЗ ГОТОВИТСЯ",
	domain.StatusInDelivery: "🚗 ЗАКАЗ В ДОСТАВКЕ",
	domain.StatusCompleted:  "✅ ЗАКАЗ ЗАВЕРШЕН",
	domain.StatusCancelled:  "❌ ЗАКАЗ ОТМЕНЕН",
}

// adminOrderText renders the order card shown in the admin chat. The header
// changes with the status, the body stays stable so the history is readable.
func adminOrderText(o *domain.Order) string {
	var sb strings.Builder
	header, ok := statusHeaders[o.Status]
	if !ok {
		header = "ЗАКАЗ"
	}
	fmt.Fprintf(&sb, "%s #%s\n\n", header, o.OrderID)
	fmt.Fprintf(&sb, "📅 %s %s\n", o.Date, o.Time)
	fmt.Fprintf(&sb, "👤 %s\n", o.CustomerName)
	fmt.Fprintf(&sb, "📞 %s\n", o.Phone)
	fmt.Fprintf(&sb, "🏠 %s\n", o.Address)
	if o.UserInfo != "" {
		fmt.Fprintf(&sb, "💬 %s\n", o.UserInfo)
	}
	if len(o.Lines) > 0 {
		sb.WriteString("\n<b>Состав:</b>\n")
		for _, l := range o.Lines {
			fmt.Fprintf(&sb, "• %s — %d ₽ × %d = %d ₽\n", l.ProductName, l.UnitPrice, l.Quantity, l.Subtotal)
		}
	}
	fmt.Fprintf(&sb, "\n💰 <b>Итого: %d ₽</b>", o.Total)
	if o.Notes != "" {
		fmt.Fprintf(&sb, "\n\n📋 История:\n%s", o.Notes)
	}
	return sb.String()
}

func orderConfirmation(o *domain.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ <b>Заказ #%s оформлен!</b>\n\n", o.OrderID)
	fmt.Fprintf(&sb, "👤 %s\n📞 %s\n🏠 %s\n\n", o.CustomerName, o.Phone, o.Address)
	for _, l := range o.Lines {
		fmt.Fprintf(&sb, "• %s — %d ₽ × %d\n", l.ProductName, l.UnitPrice, l.Quantity)
	}
	fmt.Fprintf(&sb, "\n💰 Итого: %d ₽\n\nМы свяжемся с вами для подтверждения.", o.Total)
	return sb.String()
}

// channelPost is the product card published to the sales channel.
func channelPost(it *domain.PublishItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", it.Name)
	if it.Category != "" {
		fmt.Fprintf(&sb, "📂 %s\n", it.Category)
	}
	if it.Description != "" {
		sb.WriteString("\n" + it.Description + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(priceList(it.AsProduct()))
	return sb.String()
}
