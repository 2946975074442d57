package domain

import (
	"context"
	"strconv"
	"strings"
)

type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusAccepted   OrderStatus = "accepted"
	StatusPreparing  OrderStatus = "preparing"
	StatusInDelivery OrderStatus = "in_delivery"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// allowedFrom lists the statuses a transition into the key status may start
// from. Guarding every edge closes the admin double-tap race for the whole
// graph.
var allowedFrom = map[OrderStatus][]OrderStatus{
	StatusAccepted:   {StatusNew},
	StatusPreparing:  {StatusAccepted},
	StatusInDelivery: {StatusPreparing},
	StatusCompleted:  {StatusInDelivery},
	StatusCancelled:  {StatusNew, StatusAccepted, StatusPreparing, StatusInDelivery},
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range allowedFrom[to] {
		if from == allowed {
			return true
		}
	}
	return false
}

// Order is the persisted order header. Status and Notes are the only fields
// mutated after creation; orders are never deleted here.
type Order struct {
	OrderID      string      `gorm:"primaryKey;size:10"`
	Date         string      `gorm:"size:10"`
	Time         string      `gorm:"size:8"`
	Status       OrderStatus `gorm:"type:varchar(20);index"`
	CustomerName string      `gorm:"size:140"`
	Phone        string      `gorm:"size:50"`
	Address      string      `gorm:"size:255"`
	Total        int
	// Notes is the append-only status history, one "[ts] actor: status(note)"
	// line per transition.
	Notes    string `gorm:"type:text"`
	UserInfo string `gorm:"size:140"`
	// ChatID is the originating chat, 0 when unknown or implausible.
	ChatID int64 `gorm:"index"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;references:OrderID"`
}

// OrderLine is an immutable snapshot of one cart line at creation time.
// Later catalog price changes never touch a placed order.
type OrderLine struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"size:10;index"`
	ProductID   string `gorm:"size:40"`
	ProductName string `gorm:"size:180"`
	UnitPrice   int
	Quantity    int
	Subtotal    int
}

// CheckoutInfo is what the checkout conversation collects before creating
// an order.
type CheckoutInfo struct {
	Name     string
	Phone    string
	Address  string
	UserInfo string
	ChatID   int64
}

type OrderRepo interface {
	// ListOrderIDs returns every persisted order identifier, parseable or not.
	ListOrderIDs(ctx context.Context) ([]string, error)
	AppendOrder(ctx context.Context, o *Order) error
	// AppendLines must be safe to retry with the same orderID after a
	// partial failure; the order header already exists at that point.
	AppendLines(ctx context.Context, orderID string, lines []OrderLine) error
	FindByID(ctx context.Context, orderID string) (*Order, error)
	// UpdateStatus overwrites the status field and appends historyLine to the
	// notes field (read current value, concatenate, write back: the backing
	// store has no append-to-cell primitive).
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus, historyLine string) error
	ListOrders(ctx context.Context) ([]Order, error)
	ListLines(ctx context.Context, orderID string) ([]OrderLine, error)
}

// ParseChatID parses a stored chat identifier defensively: it is accepted
// only when it is an integer of at least 5 digits, guarding against
// placeholder values ending up as notification targets. Returns 0 otherwise.
func ParseChatID(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	digits := strconv.FormatInt(v, 10)
	digits = strings.TrimPrefix(digits, "-")
	if len(digits) < 5 {
		return 0
	}
	return v
}

// PlausibleChatID is the send-side counterpart of ParseChatID.
func PlausibleChatID(id int64) bool {
	digits := strconv.FormatInt(id, 10)
	digits = strings.TrimPrefix(digits, "-")
	return len(digits) >= 5
}

// TopicOrderStatus carries StatusNotice commands from the state machine to
// the customer notifier.
const TopicOrderStatus = "order.status"

// StatusNotice asks the notifier to tell a customer about a transition.
// Delivery is best effort and never affects the transition itself.
type StatusNotice struct {
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
	ChatID  int64       `json:"chat_id"`
}
