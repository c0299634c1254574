package model

import "time"

type EventType string

const (
	EventOrderConfirmed   EventType = "order.confirmed"
	EventOrderPaid        EventType = "order.paid"
	EventOrderShipped     EventType = "order.shipped"
	EventOrderCanceled    EventType = "order.canceled"
	EventStockQuantitySet EventType = "stock.quantity_set"
)

// コミット後に外へ流すイベント
type DomainEvent struct {
	Type       EventType `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type OrderStatusChanged struct {
	OrderID int64       `json:"order_id"`
	UserID  int64       `json:"user_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	Total   string      `json:"total"`
}

type StockQuantitySet struct {
	WarehouseID int64 `json:"warehouse_id"`
	ProductID   int64 `json:"product_id"`
	Before      int64 `json:"before"`
	After       int64 `json:"after"`
	Reserved    int64 `json:"reserved"`
	Coerced     bool  `json:"coerced"`
}
