package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/domain"
)

// PostItem implements usecase.ChannelPoster: it renders the catalog row as a
// channel post with an order link when one is present.
func (b *Bot) PostItem(ctx context.Context, it *domain.PublishItem) error {
	if b.channelChat == 0 {
		return fmt.Errorf("channel chat is not configured")
	}
	var kb *telegram.InlineKeyboardMarkup
	if it.OrderURL != "" {
		kb = telegram.Keyboard(telegram.Row(telegram.URLBtn("🛒 Заказать", it.OrderURL)))
	}
	text := channelPost(it)
	if it.ImageURL != "" {
		_, err := b.tg.SendPhoto(ctx, b.channelChat, it.ImageURL, text, kb)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Str("product_id", it.ProductID).Msg("channel photo post failed, sending text")
	}
	_, err := b.tg.SendMessage(ctx, b.channelChat, text, kb)
	return err
}

// handlePublish posts the whole unpublished backlog to the channel.
func (b *Bot) handlePublish(ctx context.Context, m *telegram.Message) {
	if m.From == nil || !b.isAdmin(m.From.ID) {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⛔ Команда доступна только администраторам", nil)
		return
	}
	if b.publisher == nil {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Публикация не настроена", nil)
		return
	}
	published, total, err := b.publisher.PublishAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("publish backlog")
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Публикация прервана: "+err.Error(), nil)
		return
	}
	if total == 0 {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "✅ Все товары уже опубликованы", nil)
		return
	}
	_, _ = b.tg.SendMessage(ctx, m.Chat.ID, fmt.Sprintf("📢 Опубликовано %d из %d товаров", published, total), nil)
}

// handlePreview shows the rendered post for one product, or the list of
// unpublished products to pick from when no id is given.
func (b *Bot) handlePreview(ctx context.Context, m *telegram.Message, productID string) {
	if m.From == nil || !b.isAdmin(m.From.ID) {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⛔ Команда доступна только администраторам", nil)
		return
	}
	if b.publisher == nil {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Публикация не настроена", nil)
		return
	}
	if productID == "" {
		items, err := b.publisher.Unpublished(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("list unpublished")
			_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "⚠️ Не удалось получить список товаров", nil)
			return
		}
		if len(items) == 0 {
			_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "✅ Все товары уже опубликованы", nil)
			return
		}
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "Выберите товар для публикации:", publishKeyboard(items))
		return
	}
	it, err := b.publisher.Preview(ctx, productID)
	if err != nil {
		_, _ = b.tg.SendMessage(ctx, m.Chat.ID, "❌ Товар не найден среди неопубликованных", nil)
		return
	}
	text := "👀 Предпросмотр:\n\n" + channelPost(it)
	kb := telegram.Keyboard(
		telegram.Row(telegram.Btn("📢 Опубликовать", "publish_"+it.ProductID)),
		telegram.Row(telegram.Btn("❌ Отмена", "cancel_publish")),
	)
	if it.ImageURL != "" && strings.HasPrefix(it.ImageURL, "http") {
		if _, err := b.tg.SendPhoto(ctx, m.Chat.ID, it.ImageURL, text, kb); err == nil {
			return
		}
	}
	_, _ = b.tg.SendMessage(ctx, m.Chat.ID, text, kb)
}

func (b *Bot) cbPublishOne(ctx context.Context, q *telegram.CallbackQuery, productID string) {
	if q.From == nil || !b.isAdmin(q.From.ID) {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "⛔ Недостаточно прав")
		return
	}
	if b.publisher == nil {
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "⚠️ Публикация не настроена")
		return
	}
	it, err := b.publisher.PublishOne(ctx, productID)
	if err != nil {
		b.answerErr(ctx, q, err)
		return
	}
	_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "📢 Опубликовано: "+it.Name)
}
