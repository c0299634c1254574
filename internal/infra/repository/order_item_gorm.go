package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// INSERT .. ON CONFLICT DO UPDATE で数量を加算する。priceは上書きしない。
// 上限を超える加算は WHERE で弾き、更新0行を ErrQuantityLimit にする。
func (r *OrderItemGormRepository) AddOrIncrement(ctx context.Context, orderID int64, productID int64, qty int64, price decimal.Decimal) (model.OrderItem, error) {
	item := model.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Price:     price,
		Quantity:  qty,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("order_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("order_items.quantity + EXCLUDED.quantity <= ?", model.MaxItemQuantity),
			}},
		}).
		Create(&item)
	if res.Error != nil {
		return model.OrderItem{}, translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.OrderItem{}, repo.ErrQuantityLimit
	}

	var saved model.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&saved).Error; err != nil {
		return model.OrderItem{}, translateErr(err)
	}
	return saved, nil
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

func (r *OrderItemGormRepository) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	var item model.OrderItem
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return model.OrderItem{}, translateErr(err)
	}
	return item, nil
}

// 明細の数量を更新
func (r *OrderItemGormRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *OrderItemGormRepository) DeleteByID(ctx context.Context, itemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.OrderItem{}, itemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細が、そのuserの下書き注文に属しているかを判定
func (r *OrderItemGormRepository) IsInDraftOf(ctx context.Context, itemID int64, userID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("join orders on orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.user_id = ? AND orders.status = ?", itemID, userID, model.OrderStatusNew).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
