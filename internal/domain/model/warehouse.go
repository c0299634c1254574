package model

import (
	"sort"
	"time"
)

// 倉庫・店舗。priorityが高いほど先に出荷に使う。
type Warehouse struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Priority  int       `gorm:"not null;default:0" json:"priority"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 出荷順: priority DESC, name ASC
func FulfillmentLess(a, b Warehouse) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func SortForFulfillment(ws []Warehouse) {
	sort.SliceStable(ws, func(i, j int) bool {
		return FulfillmentLess(ws[i], ws[j])
	})
}
