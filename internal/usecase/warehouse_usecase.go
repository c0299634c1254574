package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

type WarehouseUsecase struct {
	tx repo.TransactionManager
}

func NewWarehouseUsecase(tx repo.TransactionManager) *WarehouseUsecase {
	return &WarehouseUsecase{tx: tx}
}

// POST /admin/warehousesの入力DTO。nilの項目は変更しない。
type WarehouseInput struct {
	Name     string
	Address  *string
	Priority *int
	IsActive *bool
}

func (u *WarehouseUsecase) GetOrCreateByName(ctx context.Context, name string) (model.Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 255 {
		return model.Warehouse{}, NewHTTPError(http.StatusBadRequest, "invalid warehouse name")
	}

	var out model.Warehouse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := r.Warehouses().GetOrCreateByName(ctx, name)
		if err != nil {
			return toHTTPError(err)
		}
		out = w
		return nil
	})
	if err != nil {
		return model.Warehouse{}, err
	}
	return out, nil
}

// 出荷に使う順（priority DESC, name ASC）
func (u *WarehouseUsecase) ListActiveOrdered(ctx context.Context) ([]model.Warehouse, error) {
	var out []model.Warehouse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ws, err := r.Warehouses().ListActiveOrdered(ctx)
		if err != nil {
			return dbError(err)
		}
		out = ws
		return nil
	})
	if err != nil {
		return []model.Warehouse{}, err
	}
	return out, nil
}

// 名前で作成（既にあればそれ）し、指定された項目だけ更新
func (u *WarehouseUsecase) AdminUpsert(ctx context.Context, adminUserID int64, in WarehouseInput) (model.Warehouse, error) {
	if adminUserID <= 0 {
		return model.Warehouse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Warehouse{}, NewHTTPError(http.StatusBadRequest, "invalid warehouse name")
	}

	var out model.Warehouse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := r.Warehouses().GetOrCreateByName(ctx, name)
		if err != nil {
			return toHTTPError(err)
		}

		if in.Address == nil && in.Priority == nil && in.IsActive == nil {
			out = w
			return nil
		}
		if in.Address != nil {
			w.Address = strings.TrimSpace(*in.Address)
		}
		if in.Priority != nil {
			w.Priority = *in.Priority
		}
		if in.IsActive != nil {
			w.IsActive = *in.IsActive
		}
		if err := r.Warehouses().Update(ctx, w); err != nil {
			return toHTTPError(err)
		}
		out = w
		return nil
	})
	if err != nil {
		return model.Warehouse{}, err
	}
	return out, nil
}
