package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/shopspring/decimal"
)

type OrderItemRepository interface {
	// 同一商品は数量加算。価格は最初の値のまま。
	// 加算後が model.MaxItemQuantity を超えるなら何もせず ErrQuantityLimit
	AddOrIncrement(ctx context.Context, orderID int64, productID int64, qty int64, price decimal.Decimal) (model.OrderItem, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, itemID int64) (model.OrderItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int64) error
	DeleteByID(ctx context.Context, itemID int64) error
	// 明細がそのユーザーの下書き注文のものか
	IsInDraftOf(ctx context.Context, itemID int64, userID int64) (bool, error)
}
