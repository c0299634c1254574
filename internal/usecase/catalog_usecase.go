package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type CatalogUsecase struct {
	tx              repo.TransactionManager
	defaultLocale   string
	defaultCategory string
}

// DI
func NewCatalogUsecase(tx repo.TransactionManager, defaultLocale, defaultCategory string) *CatalogUsecase {
	if defaultLocale == "" {
		defaultLocale = model.DefaultLocale
	}
	return &CatalogUsecase{
		tx:              tx,
		defaultLocale:   model.NormalizeLocale(defaultLocale),
		defaultCategory: defaultCategory,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page          int
	Limit         int
	Q             string
	CategoryID    *int64
	Locale        string
	FeaturedFirst bool
}

// 店頭表示用の商品
type ProductView struct {
	ID                 int64   `json:"id"`
	SKU                string  `json:"sku"`
	CategoryID         int64   `json:"category_id"`
	Name               string  `json:"name"`
	Slug               string  `json:"slug"`
	Description        string  `json:"description,omitempty"`
	ShortDescription   string  `json:"short_description"`
	Price              string  `json:"price"`
	ComparePrice       *string `json:"compare_price,omitempty"`
	DiscountPercentage int     `json:"discount_percentage"`
	IsFeatured         bool    `json:"is_featured"`
	TotalAvailable     int64   `json:"total_available"`
	InStock            bool    `json:"in_stock"`
}

type ProductListOutput struct {
	Items []ProductView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type CategoryView struct {
	ID       int64          `json:"id"`
	ParentID *int64         `json:"parent_id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Children []CategoryView `json:"children"`
}

func (u *CatalogUsecase) locale(v string) string {
	if l := model.NormalizeLocale(v); model.IsSupportedLocale(l) {
		return l
	}
	return u.defaultLocale
}

func toProductView(p model.Product, locale string, available int64, withDescription bool) ProductView {
	v := ProductView{
		ID:                 p.ID,
		SKU:                p.SKU,
		CategoryID:         p.CategoryID,
		Name:               p.DisplayName(locale),
		Price:              p.CurrentPrice().StringFixed(2),
		DiscountPercentage: p.DiscountPercentage(),
		IsFeatured:         p.IsFeatured,
		TotalAvailable:     available,
		InStock:            available > 0,
	}
	if t, ok := p.Localized(locale); ok {
		v.Slug = t.Slug
		v.ShortDescription = t.ShortDescription
		if withDescription {
			v.Description = t.Description
		}
	}
	if p.ComparePrice != nil {
		s := p.ComparePrice.StringFixed(2)
		v.ComparePrice = &s
	}
	return v
}

// 店頭の商品一覧。各商品に全倉庫合計の在庫数を付ける。
func (u *CatalogUsecase) ListStorefront(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	locale := u.locale(in.Locale)

	var out ProductListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q := repo.ProductListQuery{
			Page:          in.Page,
			Limit:         in.Limit,
			Q:             strings.TrimSpace(in.Q),
			FeaturedFirst: in.FeaturedFirst,
		}

		// 子カテゴリの商品も含める
		if in.CategoryID != nil {
			cats, err := r.Categories().ListAll(ctx)
			if err != nil {
				return dbError(err)
			}
			found := false
			for _, c := range cats {
				if c.ID == *in.CategoryID {
					found = true
					break
				}
			}
			if !found {
				return NewHTTPError(http.StatusNotFound, "category not found")
			}
			q.CategoryIDs = append([]int64{*in.CategoryID}, model.DescendantIDs(cats, *in.CategoryID)...)
		}

		products, total, err := r.Products().ListPublic(ctx, q)
		if err != nil {
			return dbError(err)
		}

		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		avail, err := r.Stocks().TotalAvailable(ctx, ids)
		if err != nil {
			return dbError(err)
		}

		items := make([]ProductView, 0, len(products))
		for _, p := range products {
			items = append(items, toProductView(p, locale, avail[p.ID], false))
		}
		out = ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})
	if err != nil {
		return ProductListOutput{}, err
	}
	return out, nil
}

func (u *CatalogUsecase) GetProductDetail(ctx context.Context, productID int64, locale string) (ProductView, error) {
	if productID <= 0 {
		return ProductView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var out ProductView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return toHTTPError(err)
		}
		if !p.Orderable() {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		avail, err := r.Stocks().TotalAvailable(ctx, []int64{p.ID})
		if err != nil {
			return dbError(err)
		}
		out = toProductView(p, u.locale(locale), avail[p.ID], true)
		return nil
	})
	if err != nil {
		return ProductView{}, err
	}
	return out, nil
}

// 有効なカテゴリだけのツリー。無効なカテゴリの下は表示しない。
func (u *CatalogUsecase) CategoryTree(ctx context.Context, locale string) ([]CategoryView, error) {
	locale = u.locale(locale)

	var cats []model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		cats, err = r.Categories().ListAll(ctx)
		return err
	})
	if err != nil {
		return []CategoryView{}, dbError(err)
	}

	return toCategoryViews(model.BuildTree(cats), locale), nil
}

func toCategoryViews(nodes []*model.TreeNode[model.Category], locale string) []CategoryView {
	out := make([]CategoryView, 0, len(nodes))
	for _, n := range nodes {
		if !n.Item.IsActive {
			continue
		}
		v := CategoryView{
			ID:       n.Item.ID,
			ParentID: n.Item.ParentID,
			Name:     n.Item.DisplayName(locale),
			Children: toCategoryViews(n.Children, locale),
		}
		if t, ok := n.Item.Localized(locale); ok {
			v.Slug = t.Slug
		}
		out = append(out, v)
	}
	return out
}

// 言語別の入力
type TranslationInput struct {
	Locale           string `json:"locale"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
}

type ProductInput struct {
	SKU          string
	CategoryID   int64
	Price        string
	ComparePrice *string
	IsActive     bool
	IsFeatured   bool
	Translations []TranslationInput
}

func validateTranslations(in []TranslationInput, required bool) error {
	if required && len(in) == 0 {
		return NewHTTPError(http.StatusBadRequest, "translations required")
	}
	seen := map[string]bool{}
	for _, t := range in {
		l := model.NormalizeLocale(t.Locale)
		if !model.IsSupportedLocale(l) {
			return NewHTTPError(http.StatusBadRequest, "unsupported locale")
		}
		if seen[l] {
			return NewHTTPError(http.StatusBadRequest, "duplicate locale")
		}
		seen[l] = true
		if strings.TrimSpace(t.Name) == "" {
			return NewHTTPError(http.StatusBadRequest, "name required")
		}
	}
	return nil
}

// 価格: 正の数、小数2桁まで
func parsePrice(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, NewHTTPError(http.StatusBadRequest, "price must be > 0")
	}
	if !d.Round(2).Equal(d) {
		return decimal.Decimal{}, NewHTTPError(http.StatusBadRequest, "price must have at most 2 decimals")
	}
	return d, nil
}

func parseComparePrice(v *string) (*decimal.Decimal, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	d, err := parsePrice(*v)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid compare_price")
	}
	return &d, nil
}

func (u *CatalogUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || len(sku) > 100 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid sku")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return model.Product{}, err
	}
	compare, err := parseComparePrice(in.ComparePrice)
	if err != nil {
		return model.Product{}, err
	}
	if err := validateTranslations(in.Translations, true); err != nil {
		return model.Product{}, err
	}

	ctx, span := startSpan(ctx, "catalog.create_product", attribute.String("product.sku", sku))
	var out model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		categoryID, err := u.resolveCategory(ctx, r, in.CategoryID)
		if err != nil {
			return err
		}

		if _, err := r.Products().FindBySKU(ctx, sku); err == nil {
			return NewHTTPError(http.StatusConflict, "sku already exists")
		} else if !errors.Is(err, repo.ErrNotFound) {
			return dbError(err)
		}

		p := model.Product{
			SKU:          sku,
			CategoryID:   categoryID,
			Price:        price,
			ComparePrice: compare,
			IsActive:     in.IsActive,
			IsFeatured:   in.IsFeatured,
			Translations: toProductTranslations(in.Translations),
		}
		created, err := r.Products().Create(ctx, p)
		if err != nil {
			return toHTTPError(err)
		}

		// slugは作成後に明示的に付ける
		if err := ensureSlugs[model.ProductTranslation](ctx, r.Products(), created); err != nil {
			return toHTTPError(err)
		}

		out, err = r.Products().FindByID(ctx, created.ID)
		return toHTTPError(err)
	})
	endSpan(span, err)
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// SKUは変更できない（空なら無視）
func (u *CatalogUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return model.Product{}, err
	}
	compare, err := parseComparePrice(in.ComparePrice)
	if err != nil {
		return model.Product{}, err
	}
	if err := validateTranslations(in.Translations, false); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		current, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return toHTTPError(err)
		}
		if sku := strings.TrimSpace(in.SKU); sku != "" && sku != current.SKU {
			return NewHTTPError(http.StatusBadRequest, "sku is immutable")
		}

		categoryID := current.CategoryID
		if in.CategoryID != 0 {
			if categoryID, err = u.resolveCategory(ctx, r, in.CategoryID); err != nil {
				return err
			}
		}

		if err := r.Products().Update(ctx, model.Product{
			ID:           productID,
			CategoryID:   categoryID,
			Price:        price,
			ComparePrice: compare,
			IsActive:     in.IsActive,
			IsFeatured:   in.IsFeatured,
		}); err != nil {
			return toHTTPError(err)
		}

		for _, t := range toProductTranslations(in.Translations) {
			t.ProductID = productID
			if err := r.Products().UpsertTranslation(ctx, t); err != nil {
				return toHTTPError(err)
			}
		}

		updated, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return toHTTPError(err)
		}
		if err := ensureSlugs[model.ProductTranslation](ctx, r.Products(), updated); err != nil {
			return toHTTPError(err)
		}
		out, err = r.Products().FindByID(ctx, productID)
		return toHTTPError(err)
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

func (u *CatalogUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return toHTTPError(r.Products().SoftDelete(ctx, productID))
	})
}

type CategoryInput struct {
	ParentID     *int64
	IsActive     bool
	Translations []TranslationInput
}

func (u *CatalogUsecase) AdminCreateCategory(ctx context.Context, adminUserID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateTranslations(in.Translations, true); err != nil {
		return model.Category{}, err
	}

	var out model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if in.ParentID != nil {
			if _, err := r.Categories().FindByID(ctx, *in.ParentID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusBadRequest, "invalid parent_id")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		created, err := r.Categories().Create(ctx, model.Category{
			ParentID:     in.ParentID,
			IsActive:     in.IsActive,
			Translations: toCategoryTranslations(in.Translations),
		})
		if err != nil {
			return toHTTPError(err)
		}
		if err := ensureSlugs[model.CategoryTranslation](ctx, r.Categories(), created); err != nil {
			return toHTTPError(err)
		}
		out, err = r.Categories().FindByID(ctx, created.ID)
		return toHTTPError(err)
	})
	if err != nil {
		return model.Category{}, err
	}
	return out, nil
}

// 0なら既定カテゴリ
func (u *CatalogUsecase) resolveCategory(ctx context.Context, r repo.TxRepos, categoryID int64) (int64, error) {
	if categoryID == 0 {
		c, _, err := getOrCreateCategory(ctx, r, u.defaultCategory, u.defaultLocale)
		if err != nil {
			return 0, toHTTPError(err)
		}
		return c.ID, nil
	}
	if _, err := r.Categories().FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return categoryID, nil
}

// 名前（どの言語でも）でカテゴリを探し、無ければ作る
func getOrCreateCategory(ctx context.Context, r repo.TxRepos, name, locale string) (model.Category, bool, error) {
	name = strings.TrimSpace(name)
	if err := r.Categories().LockName(ctx, name); err != nil {
		return model.Category{}, false, err
	}

	c, err := r.Categories().FindByName(ctx, name)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, false, err
	}

	created, err := r.Categories().Create(ctx, model.Category{
		IsActive:     true,
		Translations: []model.CategoryTranslation{{Locale: locale, Name: name}},
	})
	if err != nil {
		return model.Category{}, false, err
	}
	if err := ensureSlugs[model.CategoryTranslation](ctx, r.Categories(), created); err != nil {
		return model.Category{}, false, err
	}
	return created, true, nil
}

func toProductTranslations(in []TranslationInput) []model.ProductTranslation {
	out := make([]model.ProductTranslation, 0, len(in))
	for _, t := range in {
		out = append(out, model.ProductTranslation{
			Locale:           model.NormalizeLocale(t.Locale),
			Name:             strings.TrimSpace(t.Name),
			Description:      t.Description,
			ShortDescription: t.ShortDescription,
		})
	}
	return out
}

func toCategoryTranslations(in []TranslationInput) []model.CategoryTranslation {
	out := make([]model.CategoryTranslation, 0, len(in))
	for _, t := range in {
		out = append(out, model.CategoryTranslation{
			Locale:      model.NormalizeLocale(t.Locale),
			Name:        strings.TrimSpace(t.Name),
			Description: t.Description,
		})
	}
	return out
}
