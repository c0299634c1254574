package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gmplanet/stock-market/internal/config"
	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/metrics"
	"github.com/gmplanet/stock-market/internal/middleware"
	"github.com/gmplanet/stock-market/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func New(cfg config.Config, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(Tracing(cfg.ServiceName))
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware(cfg.ServiceName))

	RegisterRoutes(e, cfg, userRepo, h)
	return e
}

// ctxが終わるまで待ち、graceful shutdownする
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.L().Info("shutting down server")
	return e.Shutdown(shutdownCtx)
}
