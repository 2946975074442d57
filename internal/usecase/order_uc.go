package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/domain"
)

// storeTimeout bounds every backing-store call so a slow spreadsheet cannot
// hang a conversation.
const storeTimeout = 15 * time.Second

func storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

// storeErr maps a deadline hit to the retryable domain sentinel.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return err
}

// OrderUC owns order creation and the status state machine.
//
// The backing store has no transactions and no atomic counter, so the
// read-max-then-append identifier scheme and the read-then-update status
// scheme are both racy against a second writer. This process is the only
// writer, and mu serializes creation and transitions inside it; that is the
// whole consistency story and it must stay that way.
type OrderUC struct {
	Orders domain.OrderRepo
	Bus    message.Publisher

	Now func() time.Time

	mu sync.Mutex
}

func NewOrderUC(orders domain.OrderRepo, bus message.Publisher) *OrderUC {
	return &OrderUC{Orders: orders, Bus: bus, Now: time.Now}
}

// NextOrderID scans every persisted identifier, takes the numeric maximum
// (unparseable rows are ignored) and zero-pads max+1 to three digits.
// An empty store yields "001". Callers must hold mu.
func (uc *OrderUC) nextOrderID(ctx context.Context) (string, error) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()
	ids, err := uc.Orders.ListOrderIDs(cctx)
	if err != nil {
		return "", storeErr(err)
	}
	last := 0
	for _, raw := range ids {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if n > last {
			last = n
		}
	}
	return fmt.Sprintf("%03d", last+1), nil
}

// Create validates the checkout data, assigns the next identifier and
// persists the order header followed by its line items.
//
// The two appends are separate writes. If the line-item append fails it is
// retried with exponential backoff against the already-assigned orderID
// (AppendLines is retry-safe by contract); only after the retries are
// exhausted does Create fail, leaving a header without items for operators
// to reconcile.
func (uc *OrderUC) Create(ctx context.Context, info domain.CheckoutInfo, cart *domain.Cart) (string, error) {
	if strings.TrimSpace(info.Name) == "" {
		return "", domain.NewValidationError("name")
	}
	if strings.TrimSpace(info.Phone) == "" {
		return "", domain.NewValidationError("phone")
	}
	if strings.TrimSpace(info.Address) == "" {
		return "", domain.NewValidationError("address")
	}
	if cart == nil || cart.Empty() {
		return "", domain.NewValidationError("cart")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	orderID, err := uc.nextOrderID(ctx)
	if err != nil {
		return "", err
	}

	now := uc.Now()
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	total := 0
	for _, l := range cart.Lines {
		sub := l.UnitPrice * l.Quantity
		total += sub
		lines = append(lines, domain.OrderLine{
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    sub,
		})
	}

	order := &domain.Order{
		OrderID:      orderID,
		Date:         now.Format("2006-01-02"),
		Time:         now.Format("15:04:05"),
		Status:       domain.StatusNew,
		CustomerName: strings.TrimSpace(info.Name),
		Phone:        strings.TrimSpace(info.Phone),
		Address:      strings.TrimSpace(info.Address),
		Total:        total,
		UserInfo:     info.UserInfo,
		ChatID:       info.ChatID,
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()
	if err := uc.Orders.AppendOrder(cctx, order); err != nil {
		return "", storeErr(err)
	}

	appendLines := func() error {
		lctx, lcancel := storeCtx(ctx)
		defer lcancel()
		return uc.Orders.AppendLines(lctx, orderID, lines)
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(appendLines, bo); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("order header written but line items failed")
		return "", fmt.Errorf("order %s created without items: %w", orderID, storeErr(err))
	}

	log.Info().Str("order_id", orderID).Int("total", total).Int("lines", len(lines)).Msg("order created")
	return orderID, nil
}

// Get returns the full order projection: header plus line items.
func (uc *OrderUC) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()
	o, err := uc.Orders.FindByID(cctx, orderID)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(o.Lines) == 0 {
		lctx, lcancel := storeCtx(ctx)
		defer lcancel()
		lines, err := uc.Orders.ListLines(lctx, orderID)
		if err != nil {
			return nil, storeErr(err)
		}
		o.Lines = lines
	}
	return o, nil
}

// Transition moves an order to status, appends a history note and enqueues
// a customer notification.
//
// The current status is checked under mu before writing: a double-tap or a
// second admin acting on the same order gets ErrConflict and causes no write
// and no notification. Notification delivery is fire-and-forget; a failed
// enqueue is logged and never rolls back the store write.
func (uc *OrderUC) Transition(ctx context.Context, orderID string, status domain.OrderStatus, note, actor string) (*domain.Order, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	cctx, cancel := storeCtx(ctx)
	defer cancel()
	order, err := uc.Orders.FindByID(cctx, orderID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !domain.CanTransition(order.Status, status) {
		return order, domain.ErrConflict
	}

	line := fmt.Sprintf("[%s] %s: %s(%s)", uc.Now().Format("02.01.2006 15:04:05"), actor, status, note)
	uctx, ucancel := storeCtx(ctx)
	defer ucancel()
	if err := uc.Orders.UpdateStatus(uctx, orderID, status, line); err != nil {
		return nil, storeErr(err)
	}
	order.Status = status
	if order.Notes != "" {
		order.Notes += "\n"
	}
	order.Notes += line

	if len(order.Lines) == 0 {
		lctx, lcancel := storeCtx(ctx)
		lines, lerr := uc.Orders.ListLines(lctx, orderID)
		lcancel()
		if lerr == nil {
			order.Lines = lines
		}
	}

	if order.ChatID != 0 {
		uc.enqueueNotice(order.OrderID, status, order.ChatID)
	}

	log.Info().Str("order_id", orderID).Str("status", string(status)).Str("actor", actor).Msg("order status updated")
	return order, nil
}

func (uc *OrderUC) enqueueNotice(orderID string, status domain.OrderStatus, chatID int64) {
	if uc.Bus == nil {
		return
	}
	payload, err := json.Marshal(domain.StatusNotice{OrderID: orderID, Status: status, ChatID: chatID})
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	if err := uc.Bus.Publish(domain.TopicOrderStatus, msg); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("status notice enqueue failed")
	}
}

// Export returns every order with its line items, for the admin xlsx report.
func (uc *OrderUC) Export(ctx context.Context) ([]domain.Order, map[string][]domain.OrderLine, error) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()
	orders, err := uc.Orders.ListOrders(cctx)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	lines := make(map[string][]domain.OrderLine, len(orders))
	for _, o := range orders {
		lctx, lcancel := storeCtx(ctx)
		ls, err := uc.Orders.ListLines(lctx, o.OrderID)
		lcancel()
		if err != nil {
			return nil, nil, storeErr(err)
		}
		lines[o.OrderID] = ls
	}
	return orders, lines, nil
}
