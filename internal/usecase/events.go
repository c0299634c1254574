package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/logger"

	"go.uber.org/zap"
)

// コミット後のイベント送信先（kafkaなど）
type EventPublisher interface {
	Publish(ctx context.Context, ev model.DomainEvent) error
}

// 送信失敗はログだけ。コミット済みの処理は戻さない。
func publishAll(ctx context.Context, pub EventPublisher, events []model.DomainEvent) {
	if pub == nil {
		return
	}
	for _, ev := range events {
		if err := pub.Publish(ctx, ev); err != nil {
			logger.FromContext(ctx).Error("publish event failed",
				zap.String("type", string(ev.Type)),
				zap.String("key", ev.Key),
				zap.Error(err),
			)
		}
	}
}

func orderEvent(o model.Order, from, to model.OrderStatus, items []model.OrderItem) model.DomainEvent {
	var typ model.EventType
	switch to {
	case model.OrderStatusConfirmed:
		typ = model.EventOrderConfirmed
	case model.OrderStatusPaid:
		typ = model.EventOrderPaid
	case model.OrderStatusShipped:
		typ = model.EventOrderShipped
	default:
		typ = model.EventOrderCanceled
	}
	return model.DomainEvent{
		Type:       typ,
		Key:        strconv.FormatInt(o.ID, 10),
		OccurredAt: time.Now().UTC(),
		Payload: model.OrderStatusChanged{
			OrderID: o.ID,
			UserID:  o.UserID,
			From:    from,
			To:      to,
			Total:   model.TotalCost(items).StringFixed(2),
		},
	}
}

func stockEvent(before, after model.Stock, coerced bool) model.DomainEvent {
	return model.DomainEvent{
		Type:       model.EventStockQuantitySet,
		Key:        strconv.FormatInt(after.ProductID, 10),
		OccurredAt: time.Now().UTC(),
		Payload: model.StockQuantitySet{
			WarehouseID: after.WarehouseID,
			ProductID:   after.ProductID,
			Before:      before.Quantity,
			After:       after.Quantity,
			Reserved:    after.Reserved,
			Coerced:     coerced,
		},
	}
}
