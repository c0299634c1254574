package repository

import (
	"context"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// 在庫や商品の変更と同じtxで書く。CreatedAtが空なら今
func (r *auditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}

	logs := make([]model.AuditLog, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(auditMatches(f), createdBetween("created_at", f.CreatedFrom, f.CreatedTo), window(limit, f.Offset)).
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// nilの条件は無視する
func auditMatches(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		cond := map[string]interface{}{}
		if f.ActorUserID != nil {
			cond["actor_user_id"] = *f.ActorUserID
		}
		if f.Action != nil {
			cond["action"] = string(*f.Action)
		}
		if f.ResourceType != nil {
			cond["resource_type"] = string(*f.ResourceType)
		}
		if f.ResourceID != nil {
			cond["resource_id"] = *f.ResourceID
		}
		if len(cond) == 0 {
			return db
		}
		return db.Where(cond)
	}
}
