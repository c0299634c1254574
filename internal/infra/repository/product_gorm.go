package repository

import (
	"context"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品のみを、検索/カテゴリ/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 公開（is_active=true）かつ、商品削除されていないものだけ
	tx = tx.Where("products.is_active = ?", true)

	// q はSKUとどれかの言語の商品名
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where(
			"products.sku ILIKE ? OR EXISTS (SELECT 1 FROM product_translations pt WHERE pt.product_id = products.id AND pt.name ILIKE ?)",
			like, like,
		)
	}

	if len(q.CategoryIDs) > 0 {
		tx = tx.Where("products.category_id IN ?", q.CategoryIDs)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	if q.FeaturedFirst {
		tx = tx.Order("products.is_featured desc")
	}
	tx = tx.Order("products.created_at desc").Order("products.id desc")

	if err := tx.Preload("Translations").Scopes(paginate(q.Page, q.Limit)).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Preload("Translations").
		Order("id asc").
		Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Translations").First(&p, id).Error
	if err != nil {
		return model.Product{}, translateErr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("sku = ?", sku).
		First(&p).Error
	if err != nil {
		return model.Product{}, translateErr(err)
	}
	return p, nil
}

// 商品の作成（翻訳も一緒に）
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translateErr(err)
	}
	return p, nil
}

// 商品の更新。SKUは変えない。
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"category_id":   p.CategoryID,
		"price":         p.Price,
		"compare_price": p.ComparePrice,
		"is_active":     p.IsActive,
		"is_featured":   p.IsFeatured,
	})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（論理削除）
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// slugは既存の値を残す
func (r *ProductGormRepository) UpsertTranslation(ctx context.Context, t model.ProductTranslation) error {
	t.ID = 0
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "locale"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "short_description"}),
		}).
		Create(&t).Error
	return translateErr(err)
}

func (r *ProductGormRepository) SlugTaken(ctx context.Context, locale string, slug string, exceptTranslationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductTranslation{}).
		Where("locale = ? AND slug = ? AND id <> ?", locale, slug, exceptTranslationID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductGormRepository) SetTranslationSlug(ctx context.Context, translationID int64, slug string) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductTranslation{}).
		Where("id = ?", translationID).
		Update("slug", slug)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
