package model

import "time"

// (倉庫, 商品) ごとの在庫。1組につき1行。
type Stock struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WarehouseID int64     `gorm:"not null;uniqueIndex:ux_stocks_warehouse_product,priority:1" json:"warehouse_id"`
	ProductID   int64     `gorm:"not null;uniqueIndex:ux_stocks_warehouse_product,priority:2;index" json:"product_id"`
	Quantity    int64     `gorm:"not null;default:0;check:chk_stocks_quantity,quantity >= 0" json:"quantity"`
	Reserved    int64     `gorm:"not null;default:0;check:chk_stocks_reserved,reserved >= 0" json:"reserved"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 実際に使える数（quantity - reserved）。マイナスにはしない。
func (s Stock) Available() int64 {
	return AvailableOf(s.Quantity, s.Reserved)
}

func AvailableOf(quantity, reserved int64) int64 {
	if quantity-reserved < 0 {
		return 0
	}
	return quantity - reserved
}

// 全倉庫の合計
func TotalAvailable(stocks []Stock) int64 {
	var total int64
	for _, s := range stocks {
		total += s.Available()
	}
	return total
}

type StockMovementKind string

const (
	// 棚卸し・取込による絶対値の設定
	StockMovementSet StockMovementKind = "SET"
	// 注文確定で引当
	StockMovementReserve StockMovementKind = "RESERVE"
	// キャンセルで引当を戻す
	StockMovementRelease StockMovementKind = "RELEASE"
	// 出荷で実在庫から引く
	StockMovementConsume StockMovementKind = "CONSUME"
)

// 在庫の変動履歴
type StockMovement struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	WarehouseID int64             `gorm:"not null;index" json:"warehouse_id"`
	ProductID   int64             `gorm:"not null;index" json:"product_id"`
	Kind        StockMovementKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Delta       int64             `gorm:"not null" json:"delta"`
	ActorUserID *int64            `gorm:"index" json:"actor_user_id,omitempty"`
	OrderID     *int64            `gorm:"index" json:"order_id,omitempty"`
	Reason      string            `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
}
