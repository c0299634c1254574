package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/metrics"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxItemQuantity = model.MaxItemQuantity

// CartUsecase は下書き注文（status=new）をカートとして扱う。
type CartUsecase struct {
	tx  repo.TransactionManager
	pub EventPublisher
}

func NewCartUsecase(tx repo.TransactionManager, pub EventPublisher) *CartUsecase {
	return &CartUsecase{tx: tx, pub: pub}
}

type CartOutput struct {
	// まだ下書きが無ければnil
	OrderID   *int64            `json:"order_id"`
	Items     []OrderItemOutput `json:"items"`
	TotalCost string            `json:"total_cost"`
}

// POST /cart/confirmの入力。nilの項目は下書きの値のまま。
type ConfirmInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
	Note      *string
}

func emptyCart() CartOutput {
	return CartOutput{Items: []OrderItemOutput{}, TotalCost: "0.00"}
}

// 商品をカートへ入れる。下書きが無ければプロフィールの連絡先をコピーして作る。
// 同じ商品は数量を加算し、価格は最初に入れたときのまま。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, productID int64, quantity int64) (model.OrderItem, error) {
	if userID <= 0 {
		return model.OrderItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.OrderItem{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if quantity < 1 || quantity > maxItemQuantity {
		return model.OrderItem{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	ctx, span := startSpan(ctx, "cart.add_item",
		attribute.Int64("user.id", userID),
		attribute.Int64("product.id", productID),
		attribute.Int64("quantity", quantity),
	)

	var out model.OrderItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return dbError(err)
		}
		if !p.Orderable() {
			return NewHTTPError(http.StatusBadRequest, "product is not available")
		}

		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if err != nil {
			return dbError(err)
		}

		draft, _, err := r.Orders().GetOrCreateDraft(ctx, userID, user.Contact())
		if errors.Is(err, repo.ErrNotFound) {
			// 同時に確定された直後
			return NewHTTPError(http.StatusConflict, "cart changed, retry")
		}
		if err != nil {
			return dbError(err)
		}

		item, err := r.OrderItems().AddOrIncrement(ctx, draft.ID, p.ID, quantity, p.CurrentPrice())
		if err != nil {
			return toHTTPError(err)
		}
		out = item
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return model.OrderItem{}, err
	}

	metrics.CartItemsAdded.Inc()
	return out, nil
}

// カート取得。下書きが無ければ空（作らない）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64, locale string) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = buildCart(ctx, r, userID, locale)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 数量変更（自分の下書きの明細だけ）
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, itemID int64, quantity int64, locale string) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if quantity < 1 || quantity > maxItemQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureDraftItem(ctx, r, userID, itemID); err != nil {
			return err
		}
		if err := r.OrderItems().UpdateQuantity(ctx, itemID, quantity); err != nil {
			return toHTTPError(err)
		}

		var err error
		out, err = buildCart(ctx, r, userID, locale)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) DeleteItem(ctx context.Context, userID int64, itemID int64, locale string) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureDraftItem(ctx, r, userID, itemID); err != nil {
			return err
		}
		if err := r.OrderItems().DeleteByID(ctx, itemID); err != nil {
			return toHTTPError(err)
		}

		var err error
		out, err = buildCart(ctx, r, userID, locale)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 注文確定（new -> confirmed）。全明細の在庫を引き当てる。
func (u *CartUsecase) Confirm(ctx context.Context, userID int64, in ConfirmInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	ctx, span := startSpan(ctx, "cart.confirm", attribute.Int64("user.id", userID))
	var res transitionResult
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		draft, err := r.Orders().FindDraftByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return dbError(err)
		}

		contact, note, err := mergeContact(draft, in)
		if err != nil {
			return err
		}
		if contact != draft.Contact() || note != draft.Note {
			if err := r.Orders().UpdateContact(ctx, draft.ID, contact, note); err != nil {
				return toHTTPError(err)
			}
		}

		res, err = transitionOrder(ctx, r, actorRef(userID), userID, draft.ID, model.OrderStatusConfirmed)
		if err != nil {
			return err
		}
		res.Order.ApplyContact(contact)
		res.Order.Note = note
		return nil
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

func mergeContact(o model.Order, in ConfirmInput) (model.Contact, string, error) {
	c := o.Contact()
	set := func(dst *string, v *string, max int) bool {
		if v == nil {
			return true
		}
		s := strings.TrimSpace(*v)
		if len(s) > max {
			return false
		}
		*dst = s
		return true
	}
	if !set(&c.FirstName, in.FirstName, 100) || !set(&c.LastName, in.LastName, 100) {
		return model.Contact{}, "", NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if !set(&c.Email, in.Email, 255) {
		return model.Contact{}, "", NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if !set(&c.Phone, in.Phone, 20) {
		return model.Contact{}, "", NewHTTPError(http.StatusBadRequest, "invalid phone")
	}
	if !set(&c.Address, in.Address, 1000) {
		return model.Contact{}, "", NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	note := o.Note
	if !set(&note, in.Note, 1000) {
		return model.Contact{}, "", NewHTTPError(http.StatusBadRequest, "note too long")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return model.Contact{}, "", NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return c, note, nil
}

// 他人の明細・確定済みの明細は「存在しない扱い」
func ensureDraftItem(ctx context.Context, r repo.TxRepos, userID, itemID int64) error {
	ok, err := r.OrderItems().IsInDraftOf(ctx, itemID, userID)
	if err != nil {
		return dbError(err)
	}
	if !ok {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}

func buildCart(ctx context.Context, r repo.TxRepos, userID int64, locale string) (CartOutput, error) {
	draft, err := r.Orders().FindDraftByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return emptyCart(), nil
	}
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	names, err := productNames(ctx, r, draft.Items, locale)
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	o := toOrderOutput(draft, draft.Items, names)
	return CartOutput{OrderID: &draft.ID, Items: o.Items, TotalCost: o.TotalCost}, nil
}
