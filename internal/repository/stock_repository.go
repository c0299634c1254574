package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

type StockRepository interface {
	// (warehouse, product) の行を返す。無ければ0で作る。
	GetOrCreate(ctx context.Context, warehouseID, productID int64) (model.Stock, error)
	Find(ctx context.Context, warehouseID, productID int64) (model.Stock, error)
	// 行ロックを取って読む
	FindByIDForUpdate(ctx context.Context, stockID int64) (model.Stock, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.Stock, error)
	// 商品の全在庫行をid順にロック
	ListByProductForUpdate(ctx context.Context, productID int64) ([]model.Stock, error)

	// 在庫の現在値を設定
	SetQuantity(ctx context.Context, stockID int64, quantity int64) error
	// 空きが足りるときだけreservedを増やす
	Reserve(ctx context.Context, stockID int64, qty int64) (bool, error)
	// reservedを戻す（0未満にはしない）
	Release(ctx context.Context, stockID int64, qty int64) error
	// 出荷: quantityとreservedを両方減らす
	Consume(ctx context.Context, stockID int64, qty int64) error

	// 商品ごとの available 合計
	TotalAvailable(ctx context.Context, productIDs []int64) (map[int64]int64, error)
	// 複数商品の在庫行。product_id, warehouse_id順
	ListByProducts(ctx context.Context, productIDs []int64) ([]model.Stock, error)

	CreateMovement(ctx context.Context, m model.StockMovement) error
	ListMovements(ctx context.Context, productID int64, limit int) ([]model.StockMovement, error)
}
