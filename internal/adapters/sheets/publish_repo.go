package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/bufaso/shopbot/internal/domain"
)

// ForPublishing!A2:R = [id, category, name, description, price, unit,
// price1, unit1 … price4, unit4, imageURL, orderURL, published]. The
// Published flag sits in column Q and is "да" once posted.
const (
	rangePublishing  = "ForPublishing!A2:R"
	colPublishedTmpl = "ForPublishing!Q%d"

	publishedYes = "да"
	publishedNo  = "нет"
)

type PublishRepo struct{ c *Client }

func NewPublishRepo(c *Client) *PublishRepo { return &PublishRepo{c: c} }

func (r *PublishRepo) Unpublished(ctx context.Context) ([]domain.PublishItem, error) {
	rows, err := r.c.get(ctx, rangePublishing)
	if err != nil {
		return nil, err
	}
	var out []domain.PublishItem
	for i, row := range rows {
		published := strings.ToLower(cell(row, 16))
		if published != "" && published != publishedNo {
			continue
		}
		if cell(row, 0) == "" {
			continue
		}
		out = append(out, domain.PublishItem{
			Row:         i + 2, // data starts at sheet row 2
			ProductID:   cell(row, 0),
			Category:    cell(row, 1),
			Name:        cell(row, 2),
			Description: cell(row, 3),
			Price:       cell(row, 4),
			Unit:        cell(row, 5),
			Extra1:      domain.PriceSlot{Price: cell(row, 6), Unit: cell(row, 7)},
			Extra2:      domain.PriceSlot{Price: cell(row, 8), Unit: cell(row, 9)},
			Extra3:      domain.PriceSlot{Price: cell(row, 10), Unit: cell(row, 11)},
			Extra4:      domain.PriceSlot{Price: cell(row, 12), Unit: cell(row, 13)},
			ImageURL:    cell(row, 14),
			OrderURL:    cell(row, 15),
		})
	}
	return out, nil
}

func (r *PublishRepo) MarkPublished(ctx context.Context, row int) error {
	return r.c.update(ctx, fmt.Sprintf(colPublishedTmpl, row), [][]interface{}{{publishedYes}})
}
