package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bufaso/shopbot/internal/domain"
)

type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := r.db.WithContext(ctx).Order("id asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *CatalogRepo) ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var list []domain.Product
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CatalogRepo) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
