// stockctl はCSVの取込・書き出しと、開発用のトークン発行を行うCLI。
//
//	stockctl import [-strict] catalog.csv
//	stockctl export [-o catalog.csv]
//	stockctl token -user 1 [-ttl 1h]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmplanet/stock-market/internal/config"
	"github.com/gmplanet/stock-market/internal/infra/db"
	"github.com/gmplanet/stock-market/internal/infra/messaging"
	infraRepo "github.com/gmplanet/stock-market/internal/infra/repository"
	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stockctl <import|export|token> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.GoEnv,
		ServiceName: cfg.ServiceName + "-cli",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "import":
		err = runImport(ctx, cfg, os.Args[2:])
	case "export":
		err = runExport(ctx, cfg, os.Args[2:])
	case "token":
		err = runToken(ctx, cfg, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Error("stockctl failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func newImportUsecase(cfg config.Config, mode usecase.ParseMode) (*usecase.CatalogImportUsecase, func(), error) {
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, nil, err
	}

	var pub interface {
		usecase.EventPublisher
		Close() error
	}
	if len(cfg.KafkaBrokers) > 0 {
		pub = messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger.L())
	} else {
		pub = messaging.NewNopPublisher(logger.L())
	}

	uc := usecase.NewCatalogImportUsecase(
		infraRepo.NewTxManagerGorm(gormDB, infraRepo.WithRetry(cfg.DBTxAttempts, 20*time.Millisecond)), pub, mode,
		cfg.DefaultWarehouse, cfg.DefaultCategory, cfg.DefaultLocale,
	)
	return uc, func() { _ = pub.Close() }, nil
}

func runImport(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	strict := fs.Bool("strict", false, "reject unparseable or fractional quantities")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("import: csv file required")
	}

	mode := usecase.ParseModeOf(cfg.StockParseMode)
	if *strict {
		mode = usecase.ParseStrict
	}

	uc, closeFn, err := newImportUsecase(cfg, mode)
	if err != nil {
		return err
	}
	defer closeFn()

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	// CLIからの取込は操作者なし
	res, err := uc.Import(ctx, 0, f)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, res)
}

func runExport(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	_ = fs.Parse(args)

	uc, closeFn, err := newImportUsecase(cfg, usecase.ParseModeOf(cfg.StockParseMode))
	if err != nil {
		return err
	}
	defer closeFn()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return uc.Export(ctx, w)
}

func runToken(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	ttl := fs.Duration("ttl", 15*time.Minute, "token lifetime")
	_ = fs.Parse(args)
	if *userID <= 0 {
		return fmt.Errorf("token: -user required")
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}

	uc := usecase.NewUserUsecase(infraRepo.NewTxManagerGorm(gormDB, infraRepo.WithRetry(cfg.DBTxAttempts, 20*time.Millisecond)), cfg.JWTSecret)
	tok, err := uc.IssueAccessToken(ctx, *userID, *ttl)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, tok)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
