package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// 下書き（カート）。ユーザーごとに1件だけ。
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// 許可される遷移
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:       {OrderStatusConfirmed, OrderStatusCanceled},
	OrderStatusConfirmed: {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:      {OrderStatusShipped},
}

func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCanceled
}

// 在庫を引当中の状態か
func (s OrderStatus) HoldsReservation() bool {
	return s == OrderStatusConfirmed || s == OrderStatusPaid
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(v)))
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusPaid, OrderStatusShipped, OrderStatusCanceled:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", v)
}

// 注文。配送先はプロフィールからのコピーで、後から変わらない。
type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	FirstName string      `gorm:"type:varchar(100);not null;default:''" json:"first_name"`
	LastName  string      `gorm:"type:varchar(100);not null;default:''" json:"last_name"`
	Email     string      `gorm:"type:varchar(255);not null;default:''" json:"email"`
	Phone     string      `gorm:"type:varchar(20);not null;default:''" json:"phone"`
	Address   string      `gorm:"type:text;not null;default:''" json:"address"`
	Note      string      `gorm:"type:text;not null;default:''" json:"note"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 合計金額。保存せず毎回計算する。
func (o Order) TotalCost() decimal.Decimal {
	return TotalCost(o.Items)
}

func TotalCost(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalCost())
	}
	return total
}

// 注文作成時点の連絡先
type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (o *Order) ApplyContact(c Contact) {
	o.FirstName = c.FirstName
	o.LastName = c.LastName
	o.Email = c.Email
	o.Phone = c.Phone
	o.Address = c.Address
}

func (o Order) Contact() Contact {
	return Contact{
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Phone:     o.Phone,
		Address:   o.Address,
	}
}
