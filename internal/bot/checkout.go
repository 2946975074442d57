package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/domain"
	"github.com/bufaso/shopbot/internal/usecase"
)

func (b *Bot) cbCart(ctx context.Context, q *telegram.CallbackQuery) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
	_, _ = b.tg.SendMessage(ctx, chatID, cartText(&s.Cart), cartKeyboard(&s.Cart))
}

func (b *Bot) cbClearCart(ctx context.Context, q *telegram.CallbackQuery) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	s.Cart.Clear()
	b.checkout.Reset(chatID)
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "🗑 Корзина очищена")
	_, _ = b.tg.SendMessage(ctx, chatID, cartText(&s.Cart), cartKeyboard(&s.Cart))
}

func (b *Bot) cbStartCheckout(ctx context.Context, q *telegram.CallbackQuery) {
	chatID := q.Message.Chat.ID
	s := b.session(chatID)
	if err := b.checkout.Start(chatID, &s.Cart, userInfo(q.From)); err != nil {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "🛒 Корзина пуста")
		return
	}
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
	_, _ = b.tg.SendMessage(ctx, chatID, "📝 Оформление заказа\n\nКак вас зовут?", nil)
}

// handleCheckoutText feeds free-form text into the checkout dialog. Text
// outside a checkout session gets a gentle nudge back to the catalog.
func (b *Bot) handleCheckoutText(ctx context.Context, m *telegram.Message, text string) {
	chatID := m.Chat.ID
	if b.checkout.Step(chatID) == usecase.StepNone {
		_, _ = b.tg.SendMessage(ctx, chatID, "Наберите /start, чтобы открыть каталог 🙂", nil)
		return
	}
	step, orderID, err := b.checkout.Input(ctx, chatID, text)
	if err != nil {
		b.replyCheckoutErr(ctx, chatID, err)
		return
	}
	switch step {
	case usecase.StepPhone:
		_, _ = b.tg.SendMessage(ctx, chatID, fmt.Sprintf("📞 Отлично, %s! Теперь укажите номер телефона:", text), nil)
	case usecase.StepAddress:
		_, _ = b.tg.SendMessage(ctx, chatID, "🏠 Укажите адрес доставки:", nil)
	case usecase.StepNone:
		if orderID != "" {
			b.finishOrder(ctx, chatID, orderID)
		}
	}
}

func (b *Bot) replyCheckoutErr(ctx context.Context, chatID int64, err error) {
	var msg string
	switch {
	case errors.Is(err, domain.ErrTimeout):
		msg = "⏳ Хранилище заказов не отвечает. Корзина сохранена — попробуйте оформить заказ ещё раз."
	default:
		if field, ok := domain.IsValidation(err); ok {
			msg = "⚠️ Не удалось оформить заказ: проверьте поле «" + field + "» и начните оформление заново."
		} else {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("order creation failed")
			msg = "⚠️ Не удалось оформить заказ. Корзина сохранена — попробуйте ещё раз."
		}
	}
	s := b.session(chatID)
	_, _ = b.tg.SendMessage(ctx, chatID, msg, cartKeyboard(&s.Cart))
}

func (b *Bot) finishOrder(ctx context.Context, chatID int64, orderID string) {
	order, err := b.orders.Get(ctx, orderID)
	if err != nil {
		// The order exists even when the readback fails: confirm and notify
		// with what is known instead of going silent.
		log.Warn().Err(err).Str("order_id", orderID).Msg("read back created order")
		_, _ = b.tg.SendMessage(ctx, chatID, fmt.Sprintf("✅ Заказ #%s оформлен! Мы свяжемся с вами для подтверждения.", orderID), nil)
		if b.adminChat != 0 {
			fallback := &domain.Order{OrderID: orderID, Status: domain.StatusNew}
			text := fmt.Sprintf("🆕 НОВЫЙ ЗАКАЗ #%s\n\n⚠️ Детали не прочитались из хранилища, смотрите таблицу.", orderID)
			if _, err := b.tg.SendMessage(ctx, b.adminChat, text, adminOrderKeyboard(fallback)); err != nil {
				log.Warn().Err(err).Str("order_id", orderID).Msg("notify admin chat")
			}
		}
		return
	}
	_, _ = b.tg.SendMessage(ctx, chatID, orderConfirmation(order), nil)
	if b.adminChat != 0 {
		if _, err := b.tg.SendMessage(ctx, b.adminChat, adminOrderText(order), adminOrderKeyboard(order)); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("notify admin chat")
		}
	}
}
