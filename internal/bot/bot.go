// Package bot is the Telegram conversation layer: menu rendering, cart and
// checkout dialogs, admin order actions and channel publishing commands.
package bot

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/domain"
	"github.com/bufaso/shopbot/internal/usecase"
)

// Session is the per-chat state: the cart, the first-launch flag for the
// greeting caption, nothing else. Checkout progress lives in CheckoutUC.
type Session struct {
	Cart    domain.Cart
	Greeted bool
}

type Bot struct {
	tg        *telegram.Client
	catalog   *usecase.CatalogUC
	orders    *usecase.OrderUC
	checkout  *usecase.CheckoutUC
	publisher *usecase.PublisherUC

	admins      map[int64]struct{}
	adminChat   int64
	channelChat int64
	assetsDir   string

	mu       sync.Mutex
	sessions map[int64]*Session
	queues   map[int64]chan *telegram.Update
}

func New(tg *telegram.Client, catalog *usecase.CatalogUC, orders *usecase.OrderUC, checkout *usecase.CheckoutUC, publisher *usecase.PublisherUC) *Bot {
	b := &Bot{
		tg:        tg,
		catalog:   catalog,
		orders:    orders,
		checkout:  checkout,
		publisher: publisher,
		admins:    map[int64]struct{}{},
		sessions:  map[int64]*Session{},
		queues:    map[int64]chan *telegram.Update{},
		assetsDir: os.Getenv("ASSETS_DIR"),
	}
	if b.assetsDir == "" {
		b.assetsDir = "assets"
	}
	for _, part := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			b.admins[id] = struct{}{}
		}
	}
	b.adminChat, _ = strconv.ParseInt(strings.TrimSpace(os.Getenv("ADMIN_CHAT_ID")), 10, 64)
	b.channelChat, _ = strconv.ParseInt(strings.TrimSpace(os.Getenv("CHANNEL_CHAT_ID")), 10, 64)
	return b
}

func (b *Bot) session(chatID int64) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &Session{}
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

// Send implements the notifier's Sender.
func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	_, err := b.tg.SendMessage(ctx, chatID, text, nil)
	return err
}

// Run long-polls for updates until ctx is cancelled. Updates from different
// chats run concurrently; updates from one chat run strictly in order on a
// per-chat worker, so Session and the checkout conversation are only ever
// touched from a single goroutine at a time.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		updates, err := b.tg.GetUpdates(ctx, offset, 30)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for i := range updates {
			u := updates[i]
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.enqueue(ctx, &u)
		}
	}
}

// enqueue routes the update to its chat's worker, starting one on first
// contact. A chat that floods past its buffer gets updates dropped rather
// than stalling the poll loop.
func (b *Bot) enqueue(ctx context.Context, u *telegram.Update) {
	chatID := updateChatID(u)
	if chatID == 0 {
		go b.dispatch(ctx, u)
		return
	}
	b.mu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = make(chan *telegram.Update, 32)
		b.queues[chatID] = q
		go b.chatWorker(ctx, q)
	}
	b.mu.Unlock()
	select {
	case q <- u:
	default:
		log.Warn().Int64("chat_id", chatID).Int64("update_id", u.UpdateID).Msg("chat queue full, update dropped")
	}
}

func (b *Bot) chatWorker(ctx context.Context, q <-chan *telegram.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-q:
			b.dispatch(ctx, u)
		}
	}
}

func updateChatID(u *telegram.Update) int64 {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func (b *Bot) dispatch(ctx context.Context, u *telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("update_id", u.UpdateID).Msg("update handler panicked")
		}
	}()
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *telegram.Message) {
	text := strings.TrimSpace(m.Text)
	switch {
	case text == "/start":
		b.handleStart(ctx, m)
	case text == "/publish":
		b.handlePublish(ctx, m)
	case strings.HasPrefix(text, "/preview"):
		b.handlePreview(ctx, m, strings.TrimSpace(strings.TrimPrefix(text, "/preview")))
	case text == "/export":
		b.handleExport(ctx, m)
	case strings.HasPrefix(text, "/"):
		// Unknown command, ignore.
	default:
		b.handleCheckoutText(ctx, m, text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	data := q.Data
	switch {
	case data == "back_to_categories":
		b.cbCategories(ctx, q)
	case strings.HasPrefix(data, "category_"):
		b.cbProducts(ctx, q, strings.TrimPrefix(data, "category_"))
	case strings.HasPrefix(data, "back_to_products_"):
		b.cbProducts(ctx, q, strings.TrimPrefix(data, "back_to_products_"))
	case strings.HasPrefix(data, "product_"):
		b.cbProduct(ctx, q, strings.TrimPrefix(data, "product_"))
	case strings.HasPrefix(data, "variant_"):
		b.cbVariant(ctx, q, strings.TrimPrefix(data, "variant_"))
	case strings.HasPrefix(data, "inc_"):
		b.cbQuantity(ctx, q, strings.TrimPrefix(data, "inc_"), +1)
	case strings.HasPrefix(data, "dec_"):
		b.cbQuantity(ctx, q, strings.TrimPrefix(data, "dec_"), -1)
	case strings.HasPrefix(data, "add_to_cart_"):
		b.cbAddToCart(ctx, q, strings.TrimPrefix(data, "add_to_cart_"))
	case data == "cart":
		b.cbCart(ctx, q)
	case data == "clear_cart":
		b.cbClearCart(ctx, q)
	case data == "start_checkout":
		b.cbStartCheckout(ctx, q)
	case data == "qty":
		// The quantity display button does nothing.
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
	case strings.HasPrefix(data, "order_"):
		b.cbOrderAction(ctx, q, strings.TrimPrefix(data, "order_"))
	case strings.HasPrefix(data, "publish_"):
		b.cbPublishOne(ctx, q, strings.TrimPrefix(data, "publish_"))
	case data == "cancel_publish":
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "Отменено")
	default:
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "")
	}
}

// answerErr converts a handler error into a short callback notice.
func (b *Bot) answerErr(ctx context.Context, q *telegram.CallbackQuery, err error) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "⚠️ Статус уже изменен")
	case errors.Is(err, domain.ErrNotFound):
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "❌ Не найдено")
	case errors.Is(err, domain.ErrTimeout):
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "⏳ Хранилище не отвечает, попробуйте ещё раз")
	default:
		log.Warn().Err(err).Str("data", q.Data).Msg("callback failed")
		_ = b.tg.AnswerCallbackQuery(ctx, q.ID, "⚠️ Ошибка")
	}
}

func userInfo(u *telegram.User) string {
	if u == nil {
		return "Не указан"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "ID: " + strconv.FormatInt(u.ID, 10)
}

func actorName(u *telegram.User) string {
	if u == nil {
		return "Система"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "ID:" + strconv.FormatInt(u.ID, 10)
}
