package sheets

import (
	"context"

	"github.com/bufaso/shopbot/internal/domain"
)

// Catalog sheet layout:
//
//	Categories!A2:B = [id, name]
//	Products!A2:P   = [id, categoryId, name, description,
//	                   price, unit, price1, unit1, price2, unit2,
//	                   price3, unit3, price4, unit4, image]
const (
	rangeCategories = "Categories!A2:B"
	rangeProducts   = "Products!A2:P"
)

type CatalogRepo struct{ c *Client }

func NewCatalogRepo(c *Client) *CatalogRepo { return &CatalogRepo{c: c} }

func (r *CatalogRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.c.get(ctx, rangeCategories)
	if err != nil {
		return nil, err
	}
	cats := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		cats = append(cats, domain.Category{ID: id, Name: cell(row, 1)})
	}
	return cats, nil
}

func (r *CatalogRepo) ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	rows, err := r.c.get(ctx, rangeProducts)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, row := range rows {
		if cell(row, 1) != categoryID {
			continue
		}
		out = append(out, rowProduct(row))
	}
	return out, nil
}

func (r *CatalogRepo) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	rows, err := r.c.get(ctx, rangeProducts)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if cell(row, 0) == id {
			p := rowProduct(row)
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func rowProduct(row []interface{}) domain.Product {
	return domain.Product{
		ID:          cell(row, 0),
		CategoryID:  cell(row, 1),
		Name:        cell(row, 2),
		Description: cell(row, 3),
		Price:       cell(row, 4),
		Unit:        cell(row, 5),
		Extra1:      domain.PriceSlot{Price: cell(row, 6), Unit: cell(row, 7)},
		Extra2:      domain.PriceSlot{Price: cell(row, 8), Unit: cell(row, 9)},
		Extra3:      domain.PriceSlot{Price: cell(row, 10), Unit: cell(row, 11)},
		Extra4:      domain.PriceSlot{Price: cell(row, 12), Unit: cell(row, 13)},
		Image:       cell(row, 14),
	}
}
