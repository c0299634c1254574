package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

type AdminOrderUsecase struct {
	tx  repo.TransactionManager
	pub EventPublisher
}

func NewAdminOrderUsecase(tx repo.TransactionManager, pub EventPublisher) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, pub: pub}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（合計金額は毎回計算）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		st, err := model.ParseOrderStatus(s)
		if err != nil {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = string(st)
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError(err)
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return dbError(err)
			}
			outs = append(outs, toOrderOutput(o, items, nil))
		}
		out = OrderListOutput{Items: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新。confirmedで引当、shippedで出荷、canceledで戻し。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	to, err := model.ParseOrderStatus(in.Status)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	ctx, span := startSpan(ctx, "order.update_status")
	var res transitionResult
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		res, err = transitionOrder(ctx, r, actorRef(actorAdminUserID), 0, orderID, to)
		return err
	})
	endSpan(span, err)
	if err != nil {
		return OrderOutput{}, err
	}

	if res.Changed {
		publishAll(ctx, u.pub, []model.DomainEvent{res.Event})
	}
	return toOrderOutput(res.Order, res.Items, nil), nil
}
