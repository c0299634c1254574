package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/metrics"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const stockMovementListLimit = 50

type StockUsecase struct {
	tx               repo.TransactionManager
	pub              EventPublisher
	mode             ParseMode
	defaultWarehouse string
}

func NewStockUsecase(tx repo.TransactionManager, pub EventPublisher, mode ParseMode, defaultWarehouse string) *StockUsecase {
	return &StockUsecase{
		tx:               tx,
		pub:              pub,
		mode:             mode,
		defaultWarehouse: defaultWarehouse,
	}
}

// PUT /admin/stockの入力DTO
type SetQuantityInput struct {
	// 倉庫名（無ければ作る）。空ならWarehouseID、どちらも無ければ既定倉庫。
	Warehouse   string
	WarehouseID int64
	ProductID   int64
	SKU         string
	// 生の文字列のまま受け取る
	Quantity string
	Reason   string
	// trueなら設定に関係なくstrictで読む
	Strict *bool
}

type StockOutput struct {
	Stock     model.Stock `json:"stock"`
	Available int64       `json:"available"`
	Coercion  string      `json:"coercion,omitempty"`
	// 引当数を下回る値を設定したとき
	BelowReserved bool `json:"below_reserved"`
}

type StockRowView struct {
	model.Stock
	WarehouseName string `json:"warehouse_name"`
	Available     int64  `json:"available"`
}

type ProductStockView struct {
	ProductID      int64                 `json:"product_id"`
	SKU            string                `json:"sku"`
	Rows           []StockRowView        `json:"rows"`
	TotalAvailable int64                 `json:"total_available"`
	Movements      []model.StockMovement `json:"movements"`
}

// (倉庫, 商品) の行。無ければ0で作る。
func (u *StockUsecase) GetOrCreate(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	if warehouseID <= 0 || productID <= 0 {
		return model.Stock{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Stock
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		st, err := r.Stocks().GetOrCreate(ctx, warehouseID, productID)
		if err != nil {
			return toHTTPError(err)
		}
		out = st
		return nil
	})
	if err != nil {
		return model.Stock{}, err
	}
	return out, nil
}

// 行が無ければ0
func (u *StockUsecase) Available(ctx context.Context, warehouseID, productID int64) (int64, error) {
	var out int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		st, err := r.Stocks().Find(ctx, warehouseID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			out = 0
			return nil
		}
		if err != nil {
			return dbError(err)
		}
		out = st.Available()
		return nil
	})
	return out, err
}

func (u *StockUsecase) TotalAvailable(ctx context.Context, productID int64) (int64, error) {
	var out int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		m, err := r.Stocks().TotalAvailable(ctx, []int64{productID})
		if err != nil {
			return dbError(err)
		}
		out = m[productID]
		return nil
	})
	return out, err
}

// GET /admin/stock/:product_id
func (u *StockUsecase) ProductStock(ctx context.Context, productID int64) (ProductStockView, error) {
	if productID <= 0 {
		return ProductStockView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var out ProductStockView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return toHTTPError(err)
		}

		stocks, err := r.Stocks().ListByProduct(ctx, productID)
		if err != nil {
			return dbError(err)
		}
		warehouses, err := r.Warehouses().ListAll(ctx)
		if err != nil {
			return dbError(err)
		}
		names := make(map[int64]string, len(warehouses))
		for _, w := range warehouses {
			names[w.ID] = w.Name
		}

		movements, err := r.Stocks().ListMovements(ctx, productID, stockMovementListLimit)
		if err != nil {
			return dbError(err)
		}

		rows := make([]StockRowView, 0, len(stocks))
		for _, st := range stocks {
			rows = append(rows, StockRowView{
				Stock:         st,
				WarehouseName: names[st.WarehouseID],
				Available:     st.Available(),
			})
		}
		out = ProductStockView{
			ProductID:      p.ID,
			SKU:            p.SKU,
			Rows:           rows,
			TotalAvailable: model.TotalAvailable(stocks),
			Movements:      movements,
		}
		return nil
	})
	if err != nil {
		return ProductStockView{}, err
	}
	return out, nil
}

// 在庫数を設定する。lenientでは読めない値を0にする（ログと監査ログを残す）。
func (u *StockUsecase) SetQuantity(ctx context.Context, actorUserID int64, in SetQuantityInput) (StockOutput, error) {
	if actorUserID <= 0 {
		return StockOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 && strings.TrimSpace(in.SKU) == "" {
		return StockOutput{}, NewHTTPError(http.StatusBadRequest, "product_id or sku required")
	}
	mode := u.mode
	if in.Strict != nil && *in.Strict {
		mode = ParseStrict
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "manual"
	}
	if len(reason) > 255 {
		return StockOutput{}, NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	ctx, span := startSpan(ctx, "stock.set_quantity",
		attribute.Int64("product.id", in.ProductID),
		attribute.String("product.sku", in.SKU),
	)

	var (
		out    StockOutput
		events []model.DomainEvent
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		events = events[:0]
		w, err := u.resolveWarehouse(ctx, r, in)
		if err != nil {
			return err
		}
		p, err := resolveProduct(ctx, r, in.ProductID, in.SKU)
		if err != nil {
			return err
		}

		res, err := setQuantityTx(ctx, r, actorRef(actorUserID), w, p, in.Quantity, mode, reason)
		if err != nil {
			return toHTTPError(err)
		}
		out = StockOutput{
			Stock:         res.After,
			Available:     res.After.Available(),
			Coercion:      res.Parsed.Coercion,
			BelowReserved: res.After.Quantity < res.After.Reserved,
		}
		if res.Changed {
			events = append(events, stockEvent(res.Before, res.After, res.Parsed.Coerced()))
		}
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return StockOutput{}, err
	}

	publishAll(ctx, u.pub, events)
	return out, nil
}

func (u *StockUsecase) resolveWarehouse(ctx context.Context, r repo.TxRepos, in SetQuantityInput) (model.Warehouse, error) {
	name := strings.TrimSpace(in.Warehouse)
	if name == "" && in.WarehouseID > 0 {
		w, err := r.Warehouses().FindByID(ctx, in.WarehouseID)
		if errors.Is(err, repo.ErrNotFound) {
			return model.Warehouse{}, NewHTTPError(http.StatusBadRequest, "invalid warehouse_id")
		}
		if err != nil {
			return model.Warehouse{}, dbError(err)
		}
		return w, nil
	}
	if name == "" {
		name = u.defaultWarehouse
	}
	if len(name) > 255 {
		return model.Warehouse{}, NewHTTPError(http.StatusBadRequest, "invalid warehouse name")
	}
	w, err := r.Warehouses().GetOrCreateByName(ctx, name)
	if err != nil {
		return model.Warehouse{}, toHTTPError(err)
	}
	return w, nil
}

func resolveProduct(ctx context.Context, r repo.TxRepos, productID int64, sku string) (model.Product, error) {
	var (
		p   model.Product
		err error
	)
	if productID > 0 {
		p, err = r.Products().FindByID(ctx, productID)
	} else {
		p, err = r.Products().FindBySKU(ctx, strings.TrimSpace(sku))
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	return p, nil
}

type setQuantityResult struct {
	Before  model.Stock
	After   model.Stock
	Parsed  ParsedQuantity
	Changed bool
}

// Tx内で在庫数を設定する。管理画面とCSV取込の共通処理。
func setQuantityTx(
	ctx context.Context,
	r repo.TxRepos,
	actor *int64,
	w model.Warehouse,
	p model.Product,
	raw string,
	mode ParseMode,
	reason string,
) (setQuantityResult, error) {
	parsed, err := ParseQuantity(raw, mode)
	if err != nil {
		return setQuantityResult{}, err
	}

	st, err := r.Stocks().GetOrCreate(ctx, w.ID, p.ID)
	if err != nil {
		return setQuantityResult{}, err
	}
	before, err := r.Stocks().FindByIDForUpdate(ctx, st.ID)
	if err != nil {
		return setQuantityResult{}, err
	}

	log := logger.FromContext(ctx).With(
		zap.Int64("warehouse_id", w.ID),
		zap.Int64("product_id", p.ID),
		zap.String("sku", p.SKU),
	)

	if parsed.Coerced() {
		log.Warn("stock quantity coerced",
			zap.String("raw", raw),
			zap.String("kind", parsed.Coercion),
			zap.Int64("value", parsed.Value),
		)
		metrics.StockQuantityCoercions.WithLabelValues(parsed.Coercion).Inc()
		if err := writeAudit(ctx, r, actor,
			model.AuditActionCoerceStockQuantity, model.AuditResourceStock, before.ID,
			map[string]string{"raw": raw},
			map[string]int64{"quantity": parsed.Value},
			parsed.Coercion,
		); err != nil {
			return setQuantityResult{}, err
		}
	}

	after := before
	after.Quantity = parsed.Value
	res := setQuantityResult{Before: before, After: after, Parsed: parsed}
	if parsed.Value == before.Quantity {
		return res, nil
	}

	if err := r.Stocks().SetQuantity(ctx, before.ID, parsed.Value); err != nil {
		return setQuantityResult{}, err
	}
	if parsed.Value < before.Reserved {
		log.Warn("stock quantity set below reserved",
			zap.Int64("quantity", parsed.Value),
			zap.Int64("reserved", before.Reserved),
		)
	}

	if err := r.Stocks().CreateMovement(ctx, model.StockMovement{
		WarehouseID: w.ID,
		ProductID:   p.ID,
		Kind:        model.StockMovementSet,
		Delta:       parsed.Value - before.Quantity,
		ActorUserID: actor,
		Reason:      reason,
	}); err != nil {
		return setQuantityResult{}, err
	}

	if err := writeAudit(ctx, r, actor,
		model.AuditActionUpdateStock, model.AuditResourceStock, before.ID,
		map[string]int64{"quantity": before.Quantity, "reserved": before.Reserved},
		map[string]int64{"quantity": after.Quantity, "reserved": after.Reserved},
		reason,
	); err != nil {
		return setQuantityResult{}, err
	}

	res.Changed = true
	return res, nil
}
