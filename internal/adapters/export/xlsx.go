// Package export renders the order book as an xlsx workbook for the admin
// /export command.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bufaso/shopbot/internal/domain"
)

const (
	sheetOrders = "Заказы"
	sheetItems  = "Позиции"
)

// Workbook builds a two-sheet report: order headers and their line items.
func Workbook(orders []domain.Order, lines map[string][]domain.OrderLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetOrders)
	headers := []interface{}{"OrderID", "Дата", "Время", "Статус", "Клиент", "Телефон", "Адрес", "Сумма", "История"}
	if err := f.SetSheetRow(sheetOrders, "A1", &headers); err != nil {
		return nil, err
	}
	for i, o := range orders {
		row := []interface{}{
			o.OrderID, o.Date, o.Time, string(o.Status),
			o.CustomerName, o.Phone, o.Address, o.Total, o.Notes,
		}
		cellRef := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetOrders, cellRef, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(sheetItems); err != nil {
		return nil, err
	}
	itemHeaders := []interface{}{"OrderID", "ProductID", "Товар", "Цена", "Кол-во", "Сумма"}
	if err := f.SetSheetRow(sheetItems, "A1", &itemHeaders); err != nil {
		return nil, err
	}
	rowN := 2
	for _, o := range orders {
		for _, l := range lines[o.OrderID] {
			row := []interface{}{l.OrderID, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity, l.Subtotal}
			if err := f.SetSheetRow(sheetItems, fmt.Sprintf("A%d", rowN), &row); err != nil {
				return nil, err
			}
			rowN++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
