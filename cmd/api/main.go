package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmplanet/stock-market/internal/config"
	"github.com/gmplanet/stock-market/internal/handler"
	"github.com/gmplanet/stock-market/internal/infra/db"
	"github.com/gmplanet/stock-market/internal/infra/messaging"
	"github.com/gmplanet/stock-market/internal/infra/observability"
	infraRepo "github.com/gmplanet/stock-market/internal/infra/repository"
	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/server"
	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type publisher interface {
	usecase.EventPublisher
	Close() error
}

func main() {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.GoEnv,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		log.Fatal("tracing setup failed", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	//イベント送信先。brokerが無ければ送らない。
	var pub publisher
	if len(cfg.KafkaBrokers) > 0 {
		pub = messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	} else {
		pub = messaging.NewNopPublisher(log)
	}
	defer func() { _ = pub.Close() }()

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB, infraRepo.WithRetry(cfg.DBTxAttempts, 20*time.Millisecond))
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	//Usecase生成
	mode := usecase.ParseModeOf(cfg.StockParseMode)
	catalogUC := usecase.NewCatalogUsecase(txm, cfg.DefaultLocale, cfg.DefaultCategory)
	warehouseUC := usecase.NewWarehouseUsecase(txm)
	stockUC := usecase.NewStockUsecase(txm, pub, mode, cfg.DefaultWarehouse)
	importUC := usecase.NewCatalogImportUsecase(txm, pub, mode, cfg.DefaultWarehouse, cfg.DefaultCategory, cfg.DefaultLocale)
	cartUC := usecase.NewCartUsecase(txm, pub)
	orderUC := usecase.NewOrderUsecase(txm, pub)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, pub)
	auditUC := usecase.NewAuditUsecase(txm)
	userUC := usecase.NewUserUsecase(txm, cfg.JWTSecret)

	//Handler生成
	e := server.New(cfg, userRepo, server.Handlers{
		Product:      handler.NewProductHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminProduct: handler.NewAdminProductHandler(catalogUC),
		AdminStock:   handler.NewAdminStockHandler(warehouseUC, stockUC, importUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC, auditUC),
		AdminUser:    handler.NewAdminUserHandler(userUC),
	})

	log.Info("starting", cfg.LogFields()...)

	//Server起動
	if err := server.Start(ctx, e, ":"+cfg.Port); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}
