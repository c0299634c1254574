package server

import (
	"net/http"

	"github.com/gmplanet/stock-market/internal/config"
	"github.com/gmplanet/stock-market/internal/handler"
	"github.com/gmplanet/stock-market/internal/metrics"
	"github.com/gmplanet/stock-market/internal/middleware"
	"github.com/gmplanet/stock-market/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminProduct *handler.AdminProductHandler
	AdminStock   *handler.AdminStockHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// JWT検証の後に強制ログアウト済みかをDBで確認する
	signedIn := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}

	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, signedIn...)
	h.Order.RegisterRoutes(e, signedIn...)

	admin := e.Group("/admin", append(signedIn, middleware.AdminRoleGuard())...)
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminStock.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
}
