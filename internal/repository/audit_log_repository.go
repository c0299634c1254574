package repository

import (
	"context"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

// nilの項目は絞り込まない。CreatedFrom/CreatedToは両端を含む
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time

	Limit  int
	Offset int
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry model.AuditLog) error
	// 新しい順
	List(ctx context.Context, f AuditLogFilter) ([]model.AuditLog, error)
}
