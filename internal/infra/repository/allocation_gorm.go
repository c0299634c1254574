package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"

	"gorm.io/gorm"
)

type AllocationGormRepository struct {
	db *gorm.DB
}

func NewAllocationGormRepository(db *gorm.DB) *AllocationGormRepository {
	return &AllocationGormRepository{db: db}
}

func (r *AllocationGormRepository) CreateBulk(ctx context.Context, allocs []model.OrderAllocation) error {
	if len(allocs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&allocs).Error; err != nil {
		return err
	}
	return nil
}

func (r *AllocationGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderAllocation, error) {
	var list []model.OrderAllocation
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("stock_id asc").Order("id asc").
		Find(&list).Error; err != nil {
		return []model.OrderAllocation{}, err
	}
	return list, nil
}
