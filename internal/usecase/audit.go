package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

// 監査ログのbefore/after用
func auditJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func writeAudit(ctx context.Context, r repo.TxRepos, actor *int64, action model.AuditAction, resource model.AuditResourceType, resourceID int64, before, after any, note string) error {
	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		Note:         note,
		CreatedAt:    time.Now(),
	})
}

// 0以下はCLIなど（操作者なし）
func actorRef(userID int64) *int64 {
	if userID <= 0 {
		return nil
	}
	return &userID
}

type AuditUsecase struct {
	tx repo.TransactionManager
}

func NewAuditUsecase(tx repo.TransactionManager) *AuditUsecase {
	return &AuditUsecase{tx: tx}
}

// GET /admin/audit-logs
func (u *AuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 1 || f.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.Action != nil && !f.Action.Valid() {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid action")
	}
	if f.ResourceType != nil && !f.ResourceType.Valid() {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
	}

	var out []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logs, err := r.AuditLogs().List(ctx, f)
		if err != nil {
			return dbError(err)
		}
		out = logs
		return nil
	})
	if err != nil {
		return []model.AuditLog{}, err
	}
	return out, nil
}
