package repository

import (
	"context"
	"time"

	"github.com/gmplanet/stock-market/internal/logger"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 1つのtxに紐づいたrepository一式
type txReposGorm struct {
	tx *gorm.DB
}

func (r txReposGorm) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r txReposGorm) Categories() repo.CategoryRepository  { return NewCategoryGormRepository(r.tx) }
func (r txReposGorm) Warehouses() repo.WarehouseRepository { return NewWarehouseGormRepository(r.tx) }
func (r txReposGorm) Stocks() repo.StockRepository         { return NewStockGormRepository(r.tx) }
func (r txReposGorm) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r txReposGorm) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r txReposGorm) Allocations() repo.AllocationRepository {
	return NewAllocationGormRepository(r.tx)
}
func (r txReposGorm) Users() repo.UserRepository         { return NewUserGormRepository(r.tx) }
func (r txReposGorm) AuditLogs() repo.AuditLogRepository { return NewAuditLogGormRepository(r.tx) }

type TxManagerGorm struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration
}

type TxOption func(*TxManagerGorm)

// デッドロックとシリアライズ失敗のときだけやり直す。attempts<=1でやり直さない
func WithRetry(attempts int, backoff time.Duration) TxOption {
	return func(tm *TxManagerGorm) {
		tm.attempts = attempts
		tm.backoff = backoff
	}
}

func NewTxManagerGorm(db *gorm.DB, opts ...TxOption) *TxManagerGorm {
	tm := &TxManagerGorm{db: db, attempts: 3, backoff: 20 * time.Millisecond}
	for _, opt := range opts {
		opt(tm)
	}
	if tm.attempts < 1 {
		tm.attempts = 1
	}
	return tm
}

// fnがerrorを返したらrollback。fnは再実行されることがある
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	for attempt := 1; ; attempt++ {
		err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(txReposGorm{tx: tx})
		})
		if err == nil || attempt >= tm.attempts || !isRetryable(err) {
			return err
		}

		logger.FromContext(ctx).Warn("transaction retry", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * tm.backoff):
		}
	}
}
