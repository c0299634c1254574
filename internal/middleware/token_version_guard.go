package middleware

import (
	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/repository"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 強制ログアウト済み(tv不一致)と無効ユーザーを401にする
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c)
			}

			user, err := users.FindByID(c.Request().Context(), p.UserID)
			if err != nil || user == nil {
				logger.FromEcho(c).Info("token owner not found", zap.Error(err))
				return unauthorized(c)
			}

			switch {
			case !user.IsActive:
				logger.FromEcho(c).Info("inactive user")
				return unauthorized(c)
			case user.TokenVersion != p.TokenVersion:
				logger.FromEcho(c).Info("stale token",
					zap.Int("token_tv", p.TokenVersion), zap.Int("current_tv", user.TokenVersion))
				return unauthorized(c)
			}

			return next(c)
		}
	}
}
