package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

type AllocationRepository interface {
	CreateBulk(ctx context.Context, allocs []model.OrderAllocation) error
	// stock_id順
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderAllocation, error)
}
