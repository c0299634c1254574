package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/metrics"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CSVの列
const (
	ColumnSKU       = "SKU"
	ColumnCategory  = "Category"
	ColumnPrice     = "Price"
	ColumnQuantity  = "Quantity"
	ColumnWarehouse = "Warehouse"
	ColumnActive    = "Active"
	// 取込のみ。新規作成時の既定言語の商品名。
	ColumnName = "Name"
)

var ExportHeader = []string{ColumnSKU, ColumnCategory, ColumnPrice, ColumnQuantity, ColumnWarehouse, ColumnActive}

const (
	importCreated = "created"
	importUpdated = "updated"
	importSkipped = "skipped"
	importFailed  = "failed"
)

type CatalogImportUsecase struct {
	tx               repo.TransactionManager
	pub              EventPublisher
	mode             ParseMode
	defaultWarehouse string
	defaultCategory  string
	defaultLocale    string
}

func NewCatalogImportUsecase(
	tx repo.TransactionManager,
	pub EventPublisher,
	mode ParseMode,
	defaultWarehouse, defaultCategory, defaultLocale string,
) *CatalogImportUsecase {
	if defaultLocale == "" {
		defaultLocale = model.DefaultLocale
	}
	return &CatalogImportUsecase{
		tx:               tx,
		pub:              pub,
		mode:             mode,
		defaultWarehouse: defaultWarehouse,
		defaultCategory:  defaultCategory,
		defaultLocale:    model.NormalizeLocale(defaultLocale),
	}
}

type ImportRowError struct {
	// ヘッダを1行目とした行番号
	Row   int    `json:"row"`
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

type importRow struct {
	line      int
	sku       string
	name      string
	category  string
	price     string
	quantity  *string
	warehouse string
	active    string
}

// CSVを1行ずつ取り込む。行ごとに1Tx。失敗した行は記録して次へ進む。
func (u *CatalogImportUsecase) Import(ctx context.Context, actorUserID int64, src io.Reader) (ImportResult, error) {
	ctx, span := startSpan(ctx, "catalog.import")

	rd := csv.NewReader(src)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		endSpan(span, err)
		return ImportResult{}, NewHTTPError(http.StatusBadRequest, "empty csv")
	}
	if err != nil {
		endSpan(span, err)
		return ImportResult{}, NewHTTPError(http.StatusBadRequest, "invalid csv")
	}
	cols := indexColumns(header)
	if _, ok := cols[strings.ToLower(ColumnSKU)]; !ok {
		endSpan(span, errors.New("missing SKU column"))
		return ImportResult{}, NewHTTPError(http.StatusBadRequest, "missing SKU column")
	}

	res := ImportResult{Errors: []ImportRowError{}}
	line := 1
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.fail(line, "", "invalid csv row")
			continue
		}
		if isBlankRecord(rec) {
			continue
		}

		row := toImportRow(line, rec, cols)
		outcome, err := u.importRow(ctx, actorUserID, row)
		if err != nil {
			msg := "db error"
			if he, ok := AsHTTPError(toHTTPError(err)); ok {
				msg = he.Message
			}
			res.fail(line, row.sku, msg)
			logger.FromContext(ctx).Warn("import row failed",
				zap.Int("row", line),
				zap.String("sku", row.sku),
				zap.Error(err),
			)
			continue
		}
		metrics.ImportRows.WithLabelValues(outcome).Inc()
		switch outcome {
		case importCreated:
			res.Created++
		case importUpdated:
			res.Updated++
		default:
			res.Skipped++
		}
	}

	span.SetAttributes(
		attribute.Int("import.created", res.Created),
		attribute.Int("import.updated", res.Updated),
		attribute.Int("import.skipped", res.Skipped),
		attribute.Int("import.failed", res.Failed),
	)
	endSpan(span, nil)

	logger.FromContext(ctx).Info("catalog import finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (r *ImportResult) fail(line int, sku, msg string) {
	r.Failed++
	r.Errors = append(r.Errors, ImportRowError{Row: line, SKU: sku, Error: msg})
	metrics.ImportRows.WithLabelValues(importFailed).Inc()
}

func (u *CatalogImportUsecase) importRow(ctx context.Context, actorUserID int64, row importRow) (string, error) {
	if row.sku == "" || len(row.sku) > 100 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid sku")
	}
	active, err := parseActive(row.active)
	if err != nil {
		return "", err
	}
	categoryName := row.category
	if categoryName == "" {
		categoryName = u.defaultCategory
	}
	warehouseName := row.warehouse
	if warehouseName == "" {
		warehouseName = u.defaultWarehouse
	}
	actor := actorRef(actorUserID)

	outcome := importSkipped
	var events []model.DomainEvent
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		outcome, events = importSkipped, nil
		cat, _, err := getOrCreateCategory(ctx, r, categoryName, u.defaultLocale)
		if err != nil {
			return err
		}
		p, changed, created, err := u.upsertProduct(ctx, r, row, cat.ID, active)
		if err != nil {
			return err
		}
		if created || changed {
			action := importUpdated
			if created {
				action = importCreated
			}
			if err := writeAudit(ctx, r, actor,
				model.AuditActionImportCatalog, model.AuditResourceProduct, p.ID,
				map[string]string{"sku": p.SKU},
				map[string]any{"price": p.Price.StringFixed(2), "category_id": p.CategoryID, "is_active": p.IsActive},
				action,
			); err != nil {
				return err
			}
		}
		switch {
		case created:
			outcome = importCreated
		case changed:
			outcome = importUpdated
		}

		// 数量が空なら倉庫も作らない
		if row.quantity == nil {
			return nil
		}
		w, err := r.Warehouses().GetOrCreateByName(ctx, warehouseName)
		if err != nil {
			return err
		}
		sq, err := setQuantityTx(ctx, r, actor, w, p, *row.quantity, u.mode, fmt.Sprintf("import row %d", row.line))
		if err != nil {
			return err
		}
		if sq.Changed {
			events = append(events, stockEvent(sq.Before, sq.After, sq.Parsed.Coerced()))
			if outcome == importSkipped {
				outcome = importUpdated
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	publishAll(ctx, u.pub, events)
	return outcome, nil
}

// SKUで探して作成・更新する。SKU以外の価格・有効・カテゴリだけ更新。
func (u *CatalogImportUsecase) upsertProduct(ctx context.Context, r repo.TxRepos, row importRow, categoryID int64, active bool) (model.Product, bool, bool, error) {
	existing, err := r.Products().FindBySKU(ctx, row.sku)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, false, false, err
	}

	if errors.Is(err, repo.ErrNotFound) {
		price, err := parsePrice(row.price)
		if err != nil {
			return model.Product{}, false, false, err
		}
		name := row.name
		if name == "" {
			name = row.sku
		}
		p, err := r.Products().Create(ctx, model.Product{
			SKU:          row.sku,
			CategoryID:   categoryID,
			Price:        price,
			IsActive:     active,
			Translations: []model.ProductTranslation{{Locale: u.defaultLocale, Name: name}},
		})
		if err != nil {
			return model.Product{}, false, false, err
		}
		if err := ensureSlugs[model.ProductTranslation](ctx, r.Products(), p); err != nil {
			return model.Product{}, false, false, err
		}
		return p, false, true, nil
	}

	next := existing
	next.CategoryID = categoryID
	next.IsActive = active
	if strings.TrimSpace(row.price) != "" {
		price, err := parsePrice(row.price)
		if err != nil {
			return model.Product{}, false, false, err
		}
		next.Price = price
	}

	if next.CategoryID == existing.CategoryID && next.IsActive == existing.IsActive && next.Price.Equal(existing.Price) {
		return existing, false, false, nil
	}
	if err := r.Products().Update(ctx, next); err != nil {
		return model.Product{}, false, false, err
	}
	return next, true, false, nil
}

// CSVを書き出す。在庫は(商品, 倉庫)ごとに1行で、そのまま取り込み直しても在庫は変わらない。
// 在庫行の無い商品は数量と倉庫を空欄にした1行
func (u *CatalogImportUsecase) Export(ctx context.Context, dst io.Writer) error {
	var (
		products   []model.Product
		categories map[int64]string
		warehouses map[int64]string
		stocks     map[int64][]model.Stock
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		products, err = r.Products().ListAll(ctx)
		if err != nil {
			return err
		}
		cats, err := r.Categories().ListAll(ctx)
		if err != nil {
			return err
		}
		categories = make(map[int64]string, len(cats))
		for _, c := range cats {
			categories[c.ID] = c.DisplayName(u.defaultLocale)
		}
		ws, err := r.Warehouses().ListAll(ctx)
		if err != nil {
			return err
		}
		warehouses = make(map[int64]string, len(ws))
		for _, w := range ws {
			warehouses[w.ID] = w.Name
		}

		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		rows, err := r.Stocks().ListByProducts(ctx, ids)
		if err != nil {
			return err
		}
		stocks = make(map[int64][]model.Stock, len(products))
		for _, st := range rows {
			stocks[st.ProductID] = append(stocks[st.ProductID], st)
		}
		return nil
	})
	if err != nil {
		return dbError(err)
	}

	cw := csv.NewWriter(dst)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, p := range products {
		base := []string{p.SKU, categories[p.CategoryID], p.Price.StringFixed(2)}
		active := strconv.FormatBool(p.IsActive)

		if len(stocks[p.ID]) == 0 {
			if err := cw.Write(append(base, "", "", active)); err != nil {
				return err
			}
			continue
		}
		for _, st := range stocks[p.ID] {
			rec := append(append([]string{}, base...), strconv.FormatInt(st.Quantity, 10), warehouses[st.WarehouseID], active)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		// BOM付きのExcel出力
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func toImportRow(line int, rec []string, cols map[string]int) importRow {
	get := func(col string) (string, bool) {
		i, ok := cols[strings.ToLower(col)]
		if !ok || i >= len(rec) {
			return "", ok
		}
		return strings.TrimSpace(rec[i]), true
	}

	row := importRow{line: line}
	row.sku, _ = get(ColumnSKU)
	row.name, _ = get(ColumnName)
	row.category, _ = get(ColumnCategory)
	row.price, _ = get(ColumnPrice)
	row.warehouse, _ = get(ColumnWarehouse)
	row.active, _ = get(ColumnActive)
	// 空欄は数量を触らない
	if q, _ := get(ColumnQuantity); q != "" {
		row.quantity = &q
	}
	return row
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// 空は有効扱い
func parseActive(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid active value %q", v))
}
