package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/metrics"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

type transitionResult struct {
	Order   model.Order
	Items   []model.OrderItem
	Changed bool
	Event   model.DomainEvent
}

// 注文のステータスを変え、在庫の引当・戻し・出荷を同じTxで行う。
// ownerUserIDが0より大きければ本人の注文だけ（他人のものは404）。
// 同じステータスへの変更は何もしない。
func transitionOrder(
	ctx context.Context,
	r repo.TxRepos,
	actor *int64,
	ownerUserID int64,
	orderID int64,
	to model.OrderStatus,
) (transitionResult, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return transitionResult{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return transitionResult{}, dbError(err)
	}
	if ownerUserID > 0 && o.UserID != ownerUserID {
		return transitionResult{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return transitionResult{}, dbError(err)
	}

	from := o.Status
	if from == to {
		o.Items = items
		return transitionResult{Order: o, Items: items}, nil
	}
	if !model.CanTransition(from, to) {
		return transitionResult{}, NewHTTPError(http.StatusConflict, fmt.Sprintf("cannot change order from %s to %s", from, to))
	}

	switch {
	case to == model.OrderStatusConfirmed:
		if len(items) == 0 {
			return transitionResult{}, NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		err = reserveOrder(ctx, r, o, items)
	case to == model.OrderStatusCanceled && from.HoldsReservation():
		err = releaseOrder(ctx, r, o)
	case to == model.OrderStatusShipped:
		err = consumeOrder(ctx, r, o)
	}
	if err != nil {
		return transitionResult{}, toHTTPError(err)
	}

	if err := r.Orders().UpdateStatus(ctx, orderID, from, to); err != nil {
		return transitionResult{}, toHTTPError(err)
	}

	if err := writeAudit(ctx, r, actor,
		model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
		map[string]string{"status": string(from)},
		map[string]string{"status": string(to)},
		"",
	); err != nil {
		return transitionResult{}, dbError(err)
	}

	metrics.OrderTransitions.WithLabelValues(string(from), string(to)).Inc()

	o.Status = to
	o.Items = items
	return transitionResult{
		Order:   o,
		Items:   items,
		Changed: true,
		Event:   orderEvent(o, from, to, items),
	}, nil
}
