package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bufaso/shopbot/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) ListOrderIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Pluck("order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *OrderRepo) AppendOrder(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Omit("Lines").Create(o).Error
}

// AppendLines is retry-safe: an order that already has lines keeps them.
func (r *OrderRepo) AppendLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.OrderLine{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, historyLine string) error {
	o, err := r.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	notes := o.Notes
	if notes != "" {
		notes += "\n"
	}
	notes += historyLine
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{"status": string(status), "notes": notes}).Error
}

func (r *OrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var list []domain.Order
	if err := r.db.WithContext(ctx).Order("order_id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) ListLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	var list []domain.OrderLine
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
