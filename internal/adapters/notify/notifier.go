// Package notify delivers order-status messages to customers. Delivery is
// one-shot and best effort: a failed send is logged and dropped, never
// retried and never surfaced to the admin flow that caused it. That is a
// deliberate tradeoff for a non-critical notification, not an oversight; a
// bounded retry could be added here without touching the state machine.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/domain"
)

// statusTexts maps each status to its customer-facing line. Statuses without
// an entry (new) produce no notification.
var statusTexts = map[domain.OrderStatus]string{
	domain.StatusAccepted:   "✅ Принят администратором",
	domain.StatusPreparing:  "✅ Передан на комплектацию",
	domain.StatusInDelivery: "✅ Отправлен адресату",
	domain.StatusCancelled:  "❌ Отменён администратором",
	domain.StatusCompleted:  "♥️ Доставлен и завершён!",
}

// Sender is the one message-sending call the notifier needs.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type Notifier struct {
	sub    message.Subscriber
	sender Sender
}

func New(sub message.Subscriber, sender Sender) *Notifier {
	return &Notifier{sub: sub, sender: sender}
}

// Run consumes status notices until ctx is cancelled. Every message is
// acked regardless of delivery outcome.
func (n *Notifier) Run(ctx context.Context) error {
	msgs, err := n.sub.Subscribe(ctx, domain.TopicOrderStatus)
	if err != nil {
		return err
	}
	for msg := range msgs {
		n.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (n *Notifier) handle(ctx context.Context, msg *message.Message) {
	var notice domain.StatusNotice
	if err := json.Unmarshal(msg.Payload, &notice); err != nil {
		log.Warn().Err(err).Str("msg_id", msg.UUID).Msg("bad status notice payload")
		return
	}
	if !domain.PlausibleChatID(notice.ChatID) {
		return
	}
	text, ok := statusTexts[notice.Status]
	if !ok {
		return
	}
	body := fmt.Sprintf("📦 Статус вашего заказа #%s:\n%s", notice.OrderID, text)
	if err := n.sender.Send(ctx, notice.ChatID, body); err != nil {
		log.Warn().Err(err).Str("order_id", notice.OrderID).Int64("chat_id", notice.ChatID).Msg("customer notification failed")
		return
	}
	log.Info().Str("order_id", notice.OrderID).Int64("chat_id", notice.ChatID).Msg("customer notified")
}
