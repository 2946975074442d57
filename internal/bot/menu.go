package bot

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/domain"
)

func (b *Bot) handleStart(ctx context.Context, m *telegram.Message) {
	chatID := m.Chat.ID
	s := b.session(chatID)
	b.checkout.Reset(chatID)

	categories, err := b.catalog.Categories(ctx)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("load categories")
		_, _ = b.tg.SendMessage(ctx, chatID, "⏳ Каталог временно недоступен, попробуйте позже.", nil)
		return
	}
	caption := menuCaption(s.Greeted)
	s.Greeted = true
	if _, err := b.tg.SendPhoto(ctx, chatID, b.menuImage(), caption, categoriesKeyboard(categories, &s.Cart)); err != nil {
		// The storefront photo may be missing on a fresh deploy.
		_, _ = b.tg.SendMessage(ctx, chatID, caption, categoriesKeyboard(categories, &s.Cart))
	}
}

func (b *Bot) cbCategories(ctx context.Context, q *telegram.CallbackQuery) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	categories, err := b.catalog.Categories(ctx)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	b.editCard(ctx, q, menuCaption(true), b.menuImage(), categoriesKeyboard(categories, &s.Cart))
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
}

func (b *Bot) cbProducts(ctx context.Context, q *telegram.CallbackQuery, categoryID string) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	products, err := b.catalog.ProductsByCategory(ctx, categoryID)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	if len(products) == 0 {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "В этой категории пока пусто")
		return
	}
	name := b.catalog.CategoryName(ctx, categoryID)
	caption := "📋 <b>" + name + "</b>\n\nВыберите товар:" + miniCart(&s.Cart)
	b.editCard(ctx, q, caption, b.menuImage(), productsKeyboard(products, &s.Cart))
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
}

func (b *Bot) cbProduct(ctx context.Context, q *telegram.CallbackQuery, productID string) {
	p, err := b.catalog.ProductByID(ctx, productID)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	variants := domain.ResolveVariants(p)
	if len(variants) == 0 {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Для этого товара нет доступных цен")
		return
	}
	b.renderProduct(ctx, q, p, variants[0], 1)
}

func (b *Bot) cbVariant(ctx context.Context, q *telegram.CallbackQuery, payload string) {
	productID, variantID, ok := splitVariantKey(payload)
	if !ok {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}
	p, err := b.catalog.ProductByID(ctx, productID)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	v, ok := domain.FindVariant(p, variantID)
	if !ok {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Вариант больше недоступен")
		return
	}
	b.renderProduct(ctx, q, p, v, 1)
}

func (b *Bot) cbQuantity(ctx context.Context, q *telegram.CallbackQuery, payload string, delta int) {
	productID, variantID, qty, ok := splitCartKey(payload)
	if !ok {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}
	next := qty + delta
	if next < 1 {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Минимум 1")
		return
	}
	if next > domain.MaxLineQty {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Максимум 10 за раз")
		return
	}
	p, err := b.catalog.ProductByID(ctx, productID)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	v, ok := domain.FindVariant(p, variantID)
	if !ok {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Вариант больше недоступен")
		return
	}
	b.renderProduct(ctx, q, p, v, next)
}

func (b *Bot) cbAddToCart(ctx context.Context, q *telegram.CallbackQuery, payload string) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	productID, variantID, qty, ok := splitCartKey(payload)
	if !ok || qty < 1 {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}
	p, err := b.catalog.ProductByID(ctx, productID)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	v, ok := domain.FindVariant(p, variantID)
	if !ok {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Вариант больше недоступен")
		return
	}
	name := p.Name
	if !v.IsMain {
		name = p.Name + " (" + v.Unit + ")"
	}
	s.Cart.Add(p.ID, v.VariantID, name, v.Price, v.Unit, qty)
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "✅ Добавлено в корзину")
	b.renderProduct(ctx, q, p, v, 1)
}

func (b *Bot) renderProduct(ctx context.Context, q *telegram.CallbackQuery, p *domain.Product, v domain.PriceVariant, qty int) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	caption := productCaption(p, v, qty) + miniCart(&s.Cart)
	b.editCard(ctx, q, caption, b.productImage(p.Image), productKeyboard(p, v, qty, &s.Cart))
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
}

// editCard swaps the photo card in place; messages without media fall back
// to a caption edit and finally to a fresh message.
func (b *Bot) editCard(ctx context.Context, q *telegram.CallbackQuery, caption, photo string, kb *telegram.InlineKeyboardMarkup) {
	chatID := q.Message.Chat.ID
	if err := b.tg.EditMessageMedia(ctx, chatID, q.Message.MessageID, photo, caption, kb); err == nil {
		return
	}
	if err := b.tg.EditMessageCaption(ctx, chatID, q.Message.MessageID, caption, kb); err == nil {
		return
	}
	if _, err := b.tg.SendPhoto(ctx, chatID, photo, caption, kb); err != nil {
		_, _ = b.tg.SendMessage(ctx, chatID, caption, kb)
	}
}

func splitVariantKey(payload string) (productID, variantID string, ok bool) {
	// variant IDs are "main" or "variant_<n>", so split from the right.
	if strings.HasSuffix(payload, "_"+domain.VariantMain) {
		return strings.TrimSuffix(payload, "_"+domain.VariantMain), domain.VariantMain, true
	}
	i := strings.LastIndex(payload, "_variant_")
	if i < 0 {
		return "", "", false
	}
	return payload[:i], payload[i+1:], true
}

func splitCartKey(payload string) (productID, variantID string, qty int, ok bool) {
	i := strings.LastIndex(payload, "_")
	if i < 0 {
		return "", "", 0, false
	}
	n := 0
	for _, r := range payload[i+1:] {
		if r < '0' || r > '9' {
			return "", "", 0, false
		}
		n = n*10 + int(r-'0')
	}
	productID, variantID, ok = splitVariantKey(payload[:i])
	return productID, variantID, n, ok
}
