package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bufaso/shopbot/internal/domain"
)

func TestWorkbook(t *testing.T) {
	t.Parallel()

	orders := []domain.Order{
		{OrderID: "001", Date: "2026-03-14", Time: "12:00:00", Status: domain.StatusAccepted, CustomerName: "Анна", Phone: "+79991234567", Address: "ул. Ленина, 1", Total: 900},
		{OrderID: "002", Date: "2026-03-14", Time: "13:30:00", Status: domain.StatusNew, CustomerName: "Олег", Phone: "+79990000000", Address: "пр. Мира, 7", Total: 700},
	}
	lines := map[string][]domain.OrderLine{
		"001": {{OrderID: "001", ProductID: "p1", ProductName: "Качотта", UnitPrice: 450, Quantity: 2, Subtotal: 900}},
		"002": {{OrderID: "002", ProductID: "p2", ProductName: "Мёд", UnitPrice: 700, Quantity: 1, Subtotal: 700}},
	}

	data, err := Workbook(orders, lines)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.ElementsMatch(t, []string{"Заказы", "Позиции"}, f.GetSheetList())

	rows, err := f.GetRows("Заказы")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "001", rows[1][0])
	require.Equal(t, "Анна", rows[1][4])

	items, err := f.GetRows("Позиции")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "Качотта", items[1][2])
}

func TestWorkbookEmpty(t *testing.T) {
	t.Parallel()

	data, err := Workbook(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Заказы")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
