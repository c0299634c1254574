package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	// 読めない数量を補正して保存した
	AuditActionCoerceStockQuantity AuditAction = "COERCE_STOCK_QUANTITY"
	AuditActionUpdateOrderStatus   AuditAction = "UPDATE_ORDER_STATUS"
	// CSV取込による商品の作成・更新
	AuditActionImportCatalog AuditAction = "IMPORT_CATALOG"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionUpdateStock, AuditActionCoerceStockQuantity, AuditActionUpdateOrderStatus, AuditActionImportCatalog:
		return true
	}
	return false
}

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceStock   AuditResourceType = "stock" // 倉庫×商品の行
	AuditResourceOrder   AuditResourceType = "order"
)

func (r AuditResourceType) Valid() bool {
	return r == AuditResourceProduct || r == AuditResourceStock || r == AuditResourceOrder
}

// 在庫・商品・注文への変更履歴。変更と同じtxで書く
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// CLIからの操作はnil
	ActorUserID  *int64            `gorm:"index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource,priority:1" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index:idx_audit_resource,priority:2" json:"resource_id"`

	// before/afterはJSON文字列
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`
	Note       string `gorm:"type:varchar(255);not null;default:''" json:"note"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
