package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
	// 指定カテゴリ（子孫を含めて渡す）
	CategoryIDs   []int64
	FeaturedFirst bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	// 削除済みを除く全件（エクスポート用）
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	// SKUは更新しない
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	// (product, locale) で作成または更新
	UpsertTranslation(ctx context.Context, t model.ProductTranslation) error
	SlugStore
}

// 言語別slugの保存先
type SlugStore interface {
	// 同じlocaleで他の行が使っているか
	SlugTaken(ctx context.Context, locale string, slug string, exceptTranslationID int64) (bool, error)
	SetTranslationSlug(ctx context.Context, translationID int64, slug string) error
}
