package repository

import (
	"context"
	"strings"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarehouseGormRepository struct {
	db *gorm.DB
}

func NewWarehouseGormRepository(db *gorm.DB) *WarehouseGormRepository {
	return &WarehouseGormRepository{db: db}
}

// 同名の同時作成はON CONFLICTで1行にまとめる
func (r *WarehouseGormRepository) GetOrCreateByName(ctx context.Context, name string) (model.Warehouse, error) {
	name = strings.TrimSpace(name)
	w := model.Warehouse{Name: name, IsActive: true}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&w).Error; err != nil {
		return model.Warehouse{}, translateErr(err)
	}
	return r.FindByName(ctx, name)
}

func (r *WarehouseGormRepository) FindByID(ctx context.Context, id int64) (model.Warehouse, error) {
	var w model.Warehouse
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return model.Warehouse{}, translateErr(err)
	}
	return w, nil
}

func (r *WarehouseGormRepository) FindByName(ctx context.Context, name string) (model.Warehouse, error) {
	var w model.Warehouse
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&w).Error; err != nil {
		return model.Warehouse{}, translateErr(err)
	}
	return w, nil
}

// 出荷に使う順
func (r *WarehouseGormRepository) ListActiveOrdered(ctx context.Context) ([]model.Warehouse, error) {
	var list []model.Warehouse
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority desc").Order("name asc").Order("id asc").
		Find(&list).Error; err != nil {
		return []model.Warehouse{}, err
	}
	return list, nil
}

func (r *WarehouseGormRepository) ListAll(ctx context.Context) ([]model.Warehouse, error) {
	var list []model.Warehouse
	if err := r.db.WithContext(ctx).
		Order("priority desc").Order("name asc").Order("id asc").
		Find(&list).Error; err != nil {
		return []model.Warehouse{}, err
	}
	return list, nil
}

func (r *WarehouseGormRepository) Update(ctx context.Context, w model.Warehouse) error {
	res := r.db.WithContext(ctx).Model(&model.Warehouse{}).Where("id = ?", w.ID).Updates(map[string]interface{}{
		"address":   w.Address,
		"priority":  w.Priority,
		"is_active": w.IsActive,
	})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
