package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

type WarehouseRepository interface {
	// 無ければ有効・priority 0で作る
	GetOrCreateByName(ctx context.Context, name string) (model.Warehouse, error)
	FindByID(ctx context.Context, id int64) (model.Warehouse, error)
	FindByName(ctx context.Context, name string) (model.Warehouse, error)
	// priority DESC, name ASC
	ListActiveOrdered(ctx context.Context) ([]model.Warehouse, error)
	ListAll(ctx context.Context) ([]model.Warehouse, error)
	// address / priority / is_active
	Update(ctx context.Context, w model.Warehouse) error
}
