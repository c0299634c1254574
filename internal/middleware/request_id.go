package middleware

import (
	"github.com/gmplanet/stock-market/internal/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// リクエストIDを付け、そのIDを持つloggerをcontextへ入れる。
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			l := logger.L().With(zap.String("request_id", rid))
			c.Set(logger.EchoKey, l)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), l)))

			return next(c)
		}
	}
}
