package middleware

import (
	"net/http"

	"github.com/gmplanet/stock-market/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// RequireRole はroleがいずれかに一致するときだけ通す
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok || p.Role == "" {
				return unauthorized(c)
			}
			if _, ok := allowed[p.Role]; !ok {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "admin only"})
			}
			return next(c)
		}
	}
}

// 管理画面用
func AdminRoleGuard() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
