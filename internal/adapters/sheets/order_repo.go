package sheets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bufaso/shopbot/internal/domain"
)

// Order book layout:
//
//	ORDERS!A:K      = [orderId, date, time, status, customerName, phone,
//	                   address, total, notesHistory, userDisplayInfo,
//	                   originatingChatId]
//	ORDER_ITEMS!A:F = [orderId, productId, productName, unitPrice,
//	                   quantity, subtotal]
//
// Status lives in column D, the history note in column I.
const (
	rangeOrderIDs  = "ORDERS!A2:A"
	rangeOrders    = "ORDERS!A:K"
	rangeItems     = "ORDER_ITEMS!A:F"
	rangeItemIDs   = "ORDER_ITEMS!A2:A"
	colStatusTmpl  = "ORDERS!D%d"
	colHistoryTmpl = "ORDERS!I%d"
)

type OrderRepo struct{ c *Client }

func NewOrderRepo(c *Client) *OrderRepo { return &OrderRepo{c: c} }

func (r *OrderRepo) ListOrderIDs(ctx context.Context) ([]string, error) {
	rows, err := r.c.get(ctx, rangeOrderIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := cell(row, 0); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *OrderRepo) AppendOrder(ctx context.Context, o *domain.Order) error {
	chat := ""
	if o.ChatID != 0 {
		chat = strconv.FormatInt(o.ChatID, 10)
	}
	row := []interface{}{
		o.OrderID, o.Date, o.Time, string(o.Status),
		o.CustomerName, o.Phone, o.Address, o.Total,
		o.Notes, o.UserInfo, chat,
	}
	return r.c.append(ctx, rangeOrders, [][]interface{}{row})
}

// AppendLines writes all line items in one batch. Retry safety: if any row
// for orderID is already present the previous append went through as a
// whole, so the retry is a no-op instead of a duplicate.
func (r *OrderRepo) AppendLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	existing, err := r.c.get(ctx, rangeItemIDs)
	if err != nil {
		return err
	}
	for _, row := range existing {
		if cell(row, 0) == orderID {
			return nil
		}
	}
	rows := make([][]interface{}, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []interface{}{
			orderID, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity, l.Subtotal,
		})
	}
	return r.c.append(ctx, rangeItems, rows)
}

func (r *OrderRepo) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	rows, err := r.c.get(ctx, rangeOrders)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if cell(row, 0) == orderID {
			o := rowOrder(row)
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UpdateStatus overwrites the status cell and rewrites the history cell with
// the prior value plus historyLine. The sheet has no append-to-cell
// primitive, so append-by-rewrite is the contract here; prior history is
// never dropped.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, historyLine string) error {
	rows, err := r.c.get(ctx, rangeOrders)
	if err != nil {
		return err
	}
	rowIndex := -1
	notes := ""
	for i, row := range rows {
		if cell(row, 0) == orderID {
			rowIndex = i + 1 // sheet rows are 1-based
			notes = cell(row, 8)
			break
		}
	}
	if rowIndex == -1 {
		return domain.ErrNotFound
	}

	if err := r.c.update(ctx, fmt.Sprintf(colStatusTmpl, rowIndex), [][]interface{}{{string(status)}}); err != nil {
		return err
	}
	if notes != "" {
		notes += "\n"
	}
	notes += historyLine
	return r.c.update(ctx, fmt.Sprintf(colHistoryTmpl, rowIndex), [][]interface{}{{notes}})
}

func (r *OrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.c.get(ctx, rangeOrders)
	if err != nil {
		return nil, err
	}
	var out []domain.Order
	for i, row := range rows {
		if i == 0 && cell(row, 0) == "OrderID" {
			continue // header row
		}
		if cell(row, 0) == "" {
			continue
		}
		out = append(out, rowOrder(row))
	}
	return out, nil
}

func (r *OrderRepo) ListLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.c.get(ctx, rangeItems)
	if err != nil {
		return nil, err
	}
	var out []domain.OrderLine
	for _, row := range rows {
		if cell(row, 0) != orderID {
			continue
		}
		out = append(out, domain.OrderLine{
			OrderID:     orderID,
			ProductID:   cell(row, 1),
			ProductName: cell(row, 2),
			UnitPrice:   cellInt(row, 3),
			Quantity:    cellInt(row, 4),
			Subtotal:    cellInt(row, 5),
		})
	}
	return out, nil
}

func rowOrder(row []interface{}) domain.Order {
	return domain.Order{
		OrderID:      cell(row, 0),
		Date:         cell(row, 1),
		Time:         cell(row, 2),
		Status:       domain.OrderStatus(cell(row, 3)),
		CustomerName: cell(row, 4),
		Phone:        cell(row, 5),
		Address:      cell(row, 6),
		Total:        cellInt(row, 7),
		Notes:        cell(row, 8),
		UserInfo:     cell(row, 9),
		ChatID:       domain.ParseChatID(cell(row, 10)),
	}
}

func cellInt(row []interface{}, i int) int {
	n, err := strconv.Atoi(cell(row, i))
	if err != nil {
		return 0
	}
	return n
}
