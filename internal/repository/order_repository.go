package repository

import (
	"context"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	// 下書き注文を取得（行ロック）。無ければcontactをコピーして作る。
	GetOrCreateDraft(ctx context.Context, userID int64, contact model.Contact) (model.Order, bool, error)
	FindDraftByUserID(ctx context.Context, userID int64) (model.Order, error)
	// 明細付き
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	// fromのときだけ更新。違えばErrConflict。
	UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error
	UpdateContact(ctx context.Context, orderID int64, contact model.Contact, note string) error
}
