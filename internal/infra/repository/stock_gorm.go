package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockGormRepository struct {
	db *gorm.DB
}

func NewStockGormRepository(db *gorm.DB) *StockGormRepository {
	return &StockGormRepository{db: db}
}

// 一意制約 (warehouse_id, product_id) に任せて、重複行を作らない
func (r *StockGormRepository) GetOrCreate(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	s := model.Stock{WarehouseID: warehouseID, ProductID: productID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&s).Error; err != nil {
		return model.Stock{}, translateErr(err)
	}
	return r.Find(ctx, warehouseID, productID)
}

func (r *StockGormRepository) Find(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		First(&s).Error
	if err != nil {
		return model.Stock{}, translateErr(err)
	}
	return s, nil
}

func (r *StockGormRepository) FindByIDForUpdate(ctx context.Context, stockID int64) (model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", stockID).
		First(&s).Error
	if err != nil {
		return model.Stock{}, translateErr(err)
	}
	return s, nil
}

func (r *StockGormRepository) ListByProduct(ctx context.Context, productID int64) ([]model.Stock, error) {
	var list []model.Stock
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&list).Error; err != nil {
		return []model.Stock{}, err
	}
	return list, nil
}

// ロック順はid昇順で固定（デッドロック回避）
func (r *StockGormRepository) ListByProductForUpdate(ctx context.Context, productID int64) ([]model.Stock, error) {
	var list []model.Stock
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&list).Error; err != nil {
		return []model.Stock{}, err
	}
	return list, nil
}

// 在庫の現在値を設定
func (r *StockGormRepository) SetQuantity(ctx context.Context, stockID int64, quantity int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("id = ?", stockID).
		Update("quantity", quantity)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 空きが足りるときだけ引き当てる
func (r *StockGormRepository) Reserve(ctx context.Context, stockID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("id = ? AND quantity - reserved >= ?", stockID, qty).
		Update("reserved", gorm.Expr("reserved + ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 引当戻し（キャンセル）
func (r *StockGormRepository) Release(ctx context.Context, stockID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("id = ?", stockID).
		Update("reserved", gorm.Expr("GREATEST(reserved - ?, 0)", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 出荷
func (r *StockGormRepository) Consume(ctx context.Context, stockID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("id = ?", stockID).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("GREATEST(quantity - ?, 0)", qty),
			"reserved": gorm.Expr("GREATEST(reserved - ?, 0)", qty),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type productTotal struct {
	ProductID int64
	Total     int64
}

func (r *StockGormRepository) TotalAvailable(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	return r.sumBy(ctx, productIDs, "GREATEST(quantity - reserved, 0)")
}

func (r *StockGormRepository) ListByProducts(ctx context.Context, productIDs []int64) ([]model.Stock, error) {
	list := []model.Stock{}
	if len(productIDs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id asc").
		Order("warehouse_id asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *StockGormRepository) sumBy(ctx context.Context, productIDs []int64, expr string) (map[int64]int64, error) {
	out := make(map[int64]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []productTotal
	if err := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Select("product_id, COALESCE(SUM("+expr+"), 0) AS total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ProductID] = row.Total
	}
	return out, nil
}

// 変動履歴作成
func (r *StockGormRepository) CreateMovement(ctx context.Context, m model.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	return nil
}

func (r *StockGormRepository) ListMovements(ctx context.Context, productID int64, limit int) ([]model.StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.StockMovement
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return []model.StockMovement{}, err
	}
	return list, nil
}
