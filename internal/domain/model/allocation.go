package model

import (
	"errors"
	"sort"
	"time"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// 注文明細をどの倉庫から引き当てたか
type OrderAllocation struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order_id"`
	OrderItemID int64     `gorm:"not null;index" json:"order_item_id"`
	StockID     int64     `gorm:"not null;index" json:"stock_id"`
	WarehouseID int64     `gorm:"not null" json:"warehouse_id"`
	ProductID   int64     `gorm:"not null" json:"product_id"`
	Quantity    int64     `gorm:"not null;check:chk_order_allocations_quantity,quantity > 0" json:"quantity"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 引当候補（在庫行と倉庫）
type AllocationCandidate struct {
	Warehouse Warehouse
	Stock     Stock
}

type PlannedAllocation struct {
	StockID     int64
	WarehouseID int64
	ProductID   int64
	Quantity    int64
}

// 優先度の高い倉庫から順に埋める。
// 非アクティブ倉庫は使わない。足りなければErrInsufficientStock。
func PlanAllocation(cands []AllocationCandidate, qty int64) ([]PlannedAllocation, error) {
	if qty <= 0 {
		return []PlannedAllocation{}, nil
	}

	sorted := make([]AllocationCandidate, 0, len(cands))
	for _, c := range cands {
		if c.Warehouse.IsActive {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return FulfillmentLess(sorted[i].Warehouse, sorted[j].Warehouse)
	})

	remaining := qty
	plan := make([]PlannedAllocation, 0)
	for _, c := range sorted {
		if remaining == 0 {
			break
		}
		avail := c.Stock.Available()
		if avail <= 0 {
			continue
		}
		take := avail
		if take > remaining {
			take = remaining
		}
		plan = append(plan, PlannedAllocation{
			StockID:     c.Stock.ID,
			WarehouseID: c.Warehouse.ID,
			ProductID:   c.Stock.ProductID,
			Quantity:    take,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, ErrInsufficientStock
	}
	return plan, nil
}
