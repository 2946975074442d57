package domain

import "context"

// PublishItem is one row of the ForPublishing sheet: a catalog entry waiting
// to be posted to the public channel. Row keeps the 1-based sheet row so the
// Published flag can be written back.
type PublishItem struct {
	Row         int
	ProductID   string
	Category    string
	Name        string
	Description string
	ImageURL    string
	OrderURL    string

	Price  string
	Unit   string
	Extra1 PriceSlot
	Extra2 PriceSlot
	Extra3 PriceSlot
	Extra4 PriceSlot
}

// AsProduct adapts the row for the price-variant resolver.
func (it *PublishItem) AsProduct() *Product {
	return &Product{
		ID:          it.ProductID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Unit:        it.Unit,
		Extra1:      it.Extra1,
		Extra2:      it.Extra2,
		Extra3:      it.Extra3,
		Extra4:      it.Extra4,
	}
}

type PublishRepo interface {
	Unpublished(ctx context.Context) ([]PublishItem, error)
	MarkPublished(ctx context.Context, row int) error
}
