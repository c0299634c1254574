package middleware

import (
	"github.com/gmplanet/stock-market/internal/domain/model"

	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Principal はAuthJWTが検証したトークンの持ち主
type Principal struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

func WithPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
}

// AuthJWTを通っていなければfalse
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	if !ok || p.UserID <= 0 {
		return Principal{}, false
	}
	return p, true
}
