package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/adapters/export"
	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/domain"
)

var orderActions = map[string]struct {
	status domain.OrderStatus
	note   string
}{
	"accept":   {domain.StatusAccepted, "принят"},
	"prepare":  {domain.StatusPreparing, "передан на сборку"},
	"delivery": {domain.StatusInDelivery, "передан в доставку"},
	"complete": {domain.StatusCompleted, "завершён"},
	"cancel":   {domain.StatusCancelled, "отменён"},
}

func (b *Bot) cbOrderAction(ctx context.Context, q *telegram.CallbackQuery, payload string) {
	if q.From == nil || !b.isAdmin(q.From.ID) {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "⛔ Недостаточно прав")
		return
	}
	action, orderID, ok := strings.Cut(payload, "_")
	if !ok || orderID == "" {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}

	if action == "call" {
		order, err := b.orders.Get(ctx, orderID)
		if err != nil {
			b.answerErr(ctx, q, err)
			return
		}
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
		_, _ = b.tg.SendMessage(ctx, q.Message.Chat.ID, fmt.Sprintf("📞 Заказ #%s: %s, %s", order.OrderID, order.CustomerName, order.Phone), nil)
		return
	}

	act, ok := orderActions[action]
	if !ok {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}
	order, err := b.orders.Transition(ctx, orderID, act.status, act.note, actorName(q.From))
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "✅ Заказ "+act.note)

	// Rewrite the admin card in place so the chat shows one card per order.
	if err := b.tg.EditMessageText(ctx, q.Message.Chat.ID, q.Message.MessageID, adminOrderText(order), adminOrderKeyboard(order)); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("edit admin order card")
		_, _ = b.tg.SendMessage(ctx, q.Message.Chat.ID, adminOrderText(order), adminOrderKeyboard(order))
	}
}

func (b *Bot) handleExport(ctx context.Context, m *telegram.Message) {
	if m.From == nil || !b.isAdmin(m.From.ID) {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⛔ Команда доступна только администраторам", nil)
		return
	}
	orders, lines, err := b.orders.Export(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("export orders")
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Не удалось выгрузить заказы", nil)
		return
	}
	if len(orders) == 0 {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "Заказов пока нет", nil)
		return
	}
	data, err := export.Workbook(orders, lines)
	if err != nil {
		log.Warn().Err(err).Msg("build workbook")
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Не удалось сформировать файл", nil)
		return
	}
	name := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	caption := fmt.Sprintf("📊 Выгрузка заказов: %d шт.", len(orders))
	if err := b.tg.SendDocument(ctx, m.Chat.ID, name, data, caption); err != nil {
		log.Warn().Err(err).Msg("send export")
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Не удалось отправить файл", nil)
	}
}
