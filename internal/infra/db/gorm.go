package db

import (
	"fmt"

	"github.com/gmplanet/stock-market/internal/config"
	"github.com/gmplanet/stock-market/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DBLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return gormDB, nil
}

// AutoMigrateで作れない部分インデックス
var partialIndexes = []string{
	// 1ユーザーにつき下書き注文は1件
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_user_draft ON orders (user_id) WHERE status = 'new'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_product_translations_slug ON product_translations (locale, slug) WHERE slug <> ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_category_translations_slug ON category_translations (locale, slug) WHERE slug <> ''`,
}

func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Category{},
		&model.CategoryTranslation{},
		&model.Product{},
		&model.ProductTranslation{},
		&model.Warehouse{},
		&model.Stock{},
		&model.StockMovement{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderAllocation{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
