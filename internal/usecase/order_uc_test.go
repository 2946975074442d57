package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"

	"github.com/bufaso/shopbot/internal/domain"
)

// fakeOrderRepo is an in-memory OrderRepo with injectable failures.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	lines  map[string][]domain.OrderLine

	failAppendLines int // fail this many AppendLines calls, then succeed
	appendLineCalls int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}, lines: map[string][]domain.OrderLine{}}
}

func (r *fakeOrderRepo) ListOrderIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeOrderRepo) AppendOrder(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.OrderID]; ok {
		return fmt.Errorf("duplicate order id %s", o.OrderID)
	}
	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}

func (r *fakeOrderRepo) AppendLines(_ context.Context, orderID string, lines []domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLineCalls++
	if r.appendLineCalls <= r.failAppendLines {
		return errors.New("transient store failure")
	}
	if len(r.lines[orderID]) > 0 {
		return nil // retry after partial success is a no-op
	}
	r.lines[orderID] = append(r.lines[orderID], lines...)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	cp.Lines = append([]domain.OrderLine(nil), r.lines[orderID]...)
	return &cp, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus, historyLine string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	if o.Notes != "" {
		o.Notes += "\n"
	}
	o.Notes += historyLine
	return nil
}

func (r *fakeOrderRepo) ListOrders(context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListLines(_ context.Context, orderID string) ([]domain.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderLine(nil), r.lines[orderID]...), nil
}

// capturePublisher records published messages.
type capturePublisher struct {
	mu   sync.Mutex
	msgs []*message.Message
}

func (p *capturePublisher) Publish(_ string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

func testInfo(chatID int64) domain.CheckoutInfo {
	return domain.CheckoutInfo{Name: "Анна", Phone: "+79991234567", Address: "ул. Ленина, 1", UserInfo: "@ann", ChatID: chatID}
}

func testCart() *domain.Cart {
	var c domain.Cart
	c.Add("p1", domain.VariantMain, "Сыр", 450, "300 г", 2)
	c.Add("p2", "variant_1", "Мёд (500 г)", 700, "500 г", 1)
	return &c
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	repo.orders["001"] = &domain.Order{OrderID: "001"}
	repo.orders["002"] = &domain.Order{OrderID: "002"}
	repo.orders["005"] = &domain.Order{OrderID: "005"}
	repo.orders["broken"] = &domain.Order{OrderID: "broken"} // ignored by the scan

	uc := NewOrderUC(repo, nil)
	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)
	require.Equal(t, "006", id)
}

func TestCreateFirstOrderIsOne(t *testing.T) {
	t.Parallel()

	uc := NewOrderUC(newFakeOrderRepo(), nil)
	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)
	require.Equal(t, "001", id)
}

func TestCreatePersistsHeaderAndLines(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	uc := NewOrderUC(repo, nil)
	uc.Now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }

	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)

	o, err := uc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusNew, o.Status)
	require.Equal(t, "2026-03-14", o.Date)
	require.Equal(t, "15:09:26", o.Time)
	require.Equal(t, 450*2+700, o.Total)
	require.Equal(t, int64(123456789), o.ChatID)
	require.Len(t, o.Lines, 2)
	require.Equal(t, 900, o.Lines[0].Subtotal)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	uc := NewOrderUC(newFakeOrderRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		info  domain.CheckoutInfo
		cart  *domain.Cart
		field string
	}{
		{"missing name", domain.CheckoutInfo{Phone: "1", Address: "a"}, testCart(), "name"},
		{"blank phone", domain.CheckoutInfo{Name: "n", Phone: "  ", Address: "a"}, testCart(), "phone"},
		{"missing address", domain.CheckoutInfo{Name: "n", Phone: "1"}, testCart(), "address"},
		{"empty cart", testInfo(1), &domain.Cart{}, "cart"},
		{"nil cart", testInfo(1), nil, "cart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tt.info, tt.cart)
			field, ok := domain.IsValidation(err)
			require.True(t, ok)
			require.Equal(t, tt.field, field)
		})
	}
}

func TestCreateRetriesLineAppend(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	repo.failAppendLines = 2
	uc := NewOrderUC(repo, nil)

	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)
	lines, err := repo.ListLines(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, 3, repo.appendLineCalls)
}

func TestCreateConcurrentIDsAreUnique(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	uc := NewOrderUC(repo, nil)

	const n = 10
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
			require.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}

func TestTransitionAcceptAndNotify(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	bus := &capturePublisher{}
	uc := NewOrderUC(repo, bus)
	uc.Now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }

	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)

	o, err := uc.Transition(context.Background(), id, domain.StatusAccepted, "принят", "Игорь")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, o.Status)
	require.Contains(t, o.Notes, "[14.03.2026 15:09:26] Игорь: accepted(принят)")

	require.Equal(t, 1, bus.count())
	var notice domain.StatusNotice
	require.NoError(t, json.Unmarshal(bus.msgs[0].Payload, &notice))
	require.Equal(t, domain.StatusNotice{OrderID: id, Status: domain.StatusAccepted, ChatID: 123456789}, notice)
}

func TestTransitionDoubleTapConflicts(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	bus := &capturePublisher{}
	uc := NewOrderUC(repo, bus)

	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)

	_, err = uc.Transition(context.Background(), id, domain.StatusAccepted, "принят", "Игорь")
	require.NoError(t, err)

	_, err = uc.Transition(context.Background(), id, domain.StatusAccepted, "принят", "Олег")
	require.ErrorIs(t, err, domain.ErrConflict)

	// The losing tap wrote nothing and notified nobody.
	o, err := uc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 1, countLines(o.Notes))
	require.Equal(t, 1, bus.count())
}

func TestTransitionSkippingStageRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	uc := NewOrderUC(repo, nil)

	id, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)

	_, err = uc.Transition(context.Background(), id, domain.StatusPreparing, "на сборку", "Игорь")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestTransitionUnknownOrder(t *testing.T) {
	t.Parallel()

	uc := NewOrderUC(newFakeOrderRepo(), nil)
	_, err := uc.Transition(context.Background(), "404", domain.StatusAccepted, "", "Игорь")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransitionNoNoticeWithoutChatID(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	bus := &capturePublisher{}
	uc := NewOrderUC(repo, bus)

	id, err := uc.Create(context.Background(), testInfo(0), testCart())
	require.NoError(t, err)

	_, err = uc.Transition(context.Background(), id, domain.StatusAccepted, "принят", "Игорь")
	require.NoError(t, err)
	require.Zero(t, bus.count())
}

func TestExport(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	uc := NewOrderUC(repo, nil)

	id1, err := uc.Create(context.Background(), testInfo(123456789), testCart())
	require.NoError(t, err)
	id2, err := uc.Create(context.Background(), testInfo(987654321), testCart())
	require.NoError(t, err)

	orders, lines, err := uc.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Len(t, lines[id1], 2)
	require.Len(t, lines[id2], 2)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
