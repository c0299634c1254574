package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

type CategoryRepository interface {
	// 翻訳付きで全件（id順）
	ListAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// どの言語の名前でも一致すればよい（大文字小文字は無視）
	FindByName(ctx context.Context, name string) (model.Category, error)
	// 翻訳も一緒に作る
	Create(ctx context.Context, c model.Category) (model.Category, error)
	// 同名カテゴリの同時作成を防ぐ（Tx内のみ有効）
	LockName(ctx context.Context, name string) error
	SlugStore
}
