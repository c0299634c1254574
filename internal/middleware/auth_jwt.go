package middleware

import (
	"net/http"
	"strings"

	"github.com/gmplanet/stock-market/internal/auth"
	"github.com/gmplanet/stock-market/internal/config"
	"github.com/gmplanet/stock-market/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

// Authorization: Bearer <token> を検証してPrincipalを載せる
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			claims, err := auth.Parse(secret, raw)
			if err != nil {
				logger.FromEcho(c).Debug("token rejected", zap.Error(err))
				return unauthorized(c)
			}

			p := Principal{
				UserID:       int64(claims.UserID),
				Role:         claims.Role,
				TokenVersion: claims.TokenVersion,
			}
			WithPrincipal(c, p)

			l := logger.FromEcho(c).With(zap.Int64("user_id", p.UserID), zap.String("role", string(p.Role)))
			c.Set(logger.EchoKey, l)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), l)))

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
