package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/metrics"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

// 注文の全明細を引き当てる。1つでも足りなければErrInsufficientStockで何も書かない（Txごと戻る）。
// 商品はid順、在庫行は商品ごとにid順でロックする。
func reserveOrder(ctx context.Context, r repo.TxRepos, o model.Order, items []model.OrderItem) error {
	warehouses, err := r.Warehouses().ListAll(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]model.Warehouse, len(warehouses))
	for _, w := range warehouses {
		byID[w.ID] = w
	}

	sorted := make([]model.OrderItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	allocs := make([]model.OrderAllocation, 0, len(sorted))
	for _, it := range sorted {
		stocks, err := r.Stocks().ListByProductForUpdate(ctx, it.ProductID)
		if err != nil {
			return err
		}

		cands := make([]model.AllocationCandidate, 0, len(stocks))
		for _, st := range stocks {
			w, ok := byID[st.WarehouseID]
			if !ok {
				continue
			}
			cands = append(cands, model.AllocationCandidate{Warehouse: w, Stock: st})
		}

		plan, err := model.PlanAllocation(cands, it.Quantity)
		if err != nil {
			metrics.StockReservations.WithLabelValues("insufficient").Inc()
			return fmt.Errorf("product %d: %w", it.ProductID, err)
		}

		for _, pa := range plan {
			ok, err := r.Stocks().Reserve(ctx, pa.StockID, pa.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				metrics.StockReservations.WithLabelValues("insufficient").Inc()
				return fmt.Errorf("product %d: %w", it.ProductID, repo.ErrInsufficientStock)
			}
			if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
				WarehouseID: pa.WarehouseID,
				ProductID:   pa.ProductID,
				Kind:        model.StockMovementReserve,
				Delta:       pa.Quantity,
				OrderID:     &o.ID,
				Reason:      "order confirmed",
			}); err != nil {
				return err
			}
			allocs = append(allocs, model.OrderAllocation{
				OrderID:     o.ID,
				OrderItemID: it.ID,
				StockID:     pa.StockID,
				WarehouseID: pa.WarehouseID,
				ProductID:   pa.ProductID,
				Quantity:    pa.Quantity,
			})
		}
	}

	if err := r.Allocations().CreateBulk(ctx, allocs); err != nil {
		return err
	}
	metrics.StockReservations.WithLabelValues("ok").Inc()
	return nil
}

// キャンセル: 引当を戻す
func releaseOrder(ctx context.Context, r repo.TxRepos, o model.Order) error {
	allocs, err := r.Allocations().ListByOrderID(ctx, o.ID)
	if err != nil {
		return err
	}
	for _, a := range allocs {
		if err := r.Stocks().Release(ctx, a.StockID, a.Quantity); err != nil {
			return err
		}
		if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
			WarehouseID: a.WarehouseID,
			ProductID:   a.ProductID,
			Kind:        model.StockMovementRelease,
			Delta:       -a.Quantity,
			OrderID:     &o.ID,
			Reason:      "order canceled",
		}); err != nil {
			return err
		}
	}
	return nil
}

// 出荷: 実在庫と引当を両方減らす
func consumeOrder(ctx context.Context, r repo.TxRepos, o model.Order) error {
	allocs, err := r.Allocations().ListByOrderID(ctx, o.ID)
	if err != nil {
		return err
	}
	for _, a := range allocs {
		if err := r.Stocks().Consume(ctx, a.StockID, a.Quantity); err != nil {
			return err
		}
		if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
			WarehouseID: a.WarehouseID,
			ProductID:   a.ProductID,
			Kind:        model.StockMovementConsume,
			Delta:       -a.Quantity,
			OrderID:     &o.ID,
			Reason:      "order shipped",
		}); err != nil {
			return err
		}
	}
	return nil
}
