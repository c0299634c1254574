package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。priceは最初にカートへ入れた時点の価格。
// 明細1行の数量の上限
const MaxItemQuantity = 10000

type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;uniqueIndex:ux_order_items_order_product,priority:1" json:"order_id"`
	ProductID int64           `gorm:"not null;uniqueIndex:ux_order_items_order_product,priority:2;index" json:"product_id"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity  int64           `gorm:"not null;default:1;check:chk_order_items_quantity,quantity >= 1" json:"quantity"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (i OrderItem) TotalCost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
