package repository

import (
	"context"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).
		Preload("Translations").
		Order("id asc").
		Find(&list).Error; err != nil {
		return []model.Category{}, err
	}
	return list, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Preload("Translations").First(&c, id).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) FindByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("id IN (SELECT category_id FROM category_translations WHERE LOWER(name) = ?)",
			strings.ToLower(strings.TrimSpace(name))).
		Order("id asc").
		First(&c).Error
	if err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

// トランザクション終了まで保持されるadvisory lock
func (r *CategoryGormRepository) LockName(ctx context.Context, name string) error {
	key := "category:" + strings.ToLower(strings.TrimSpace(name))
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func (r *CategoryGormRepository) SlugTaken(ctx context.Context, locale string, slug string, exceptTranslationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CategoryTranslation{}).
		Where("locale = ? AND slug = ? AND id <> ?", locale, slug, exceptTranslationID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryGormRepository) SetTranslationSlug(ctx context.Context, translationID int64, slug string) error {
	res := r.db.WithContext(ctx).
		Model(&model.CategoryTranslation{}).
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
