package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

type OrderUsecase struct {
	tx  repo.TransactionManager
	pub EventPublisher
}

func NewOrderUsecase(tx repo.TransactionManager, pub EventPublisher) *OrderUsecase {
	return &OrderUsecase{tx: tx, pub: pub}
}

type OrderItemOutput struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	TotalCost string `json:"total_cost"`
}

type OrderOutput struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Status    string            `json:"status"`
	Contact   model.Contact     `json:"contact"`
	Note      string            `json:"note"`
	TotalCost string            `json:"total_cost"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
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
		out = OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64, locale string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		names, err := productNames(ctx, r, o.Items, locale)
		if err != nil {
			return dbError(err)
		}
		out = toOrderOutput(o, o.Items, names)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 本人によるキャンセル（new / confirmed のみ）。confirmedなら引当を戻す。
func (u *OrderUsecase) Cancel(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var res transitionResult
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		res, err = transitionOrder(ctx, r, actorRef(userID), userID, orderID, model.OrderStatusCanceled)
		return err
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if res.Changed {
		publishAll(ctx, u.pub, []model.DomainEvent{res.Event})
	}
	return toOrderOutput(res.Order, res.Items, nil), nil
}

// 商品名（削除済みの商品は空）
func productNames(ctx context.Context, r repo.TxRepos, items []model.OrderItem, locale string) (map[int64]string, error) {
	names := make(map[int64]string, len(items))
	for _, it := range items {
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		names[it.ProductID] = p.DisplayName(locale)
	}
	return names, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem, names map[int64]string) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      names[it.ProductID],
			Price:     it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			TotalCost: it.TotalCost().StringFixed(2),
		})
	}

	return OrderOutput{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Contact:   o.Contact(),
		Note:      o.Note,
		TotalCost: model.TotalCost(items).StringFixed(2),
		CreatedAt: o.CreatedAt,
		Items:     outItems,
	}
}
