package auth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gmplanet/stock-market/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// アクセストークンのclaims。stockctlでの発行とAuthJWTでの検証で共通
type Claims struct {
	UserID       Subject          `json:"sub"`
	Role         model.Role       `json:"role"`
	TokenVersion int              `json:"tv"`
	IssuedAt     *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt    *jwt.NumericDate `json:"exp,omitempty"`
}

// NewClaims はuserの現在のrole/token_versionでclaimsを作る
func NewClaims(user model.User, now time.Time, ttl time.Duration) Claims {
	return Claims{
		UserID:       Subject(user.ID),
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		IssuedAt:     jwt.NewNumericDate(now),
		ExpiresAt:    jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (c Claims) Valid() error {
	std := jwt.RegisteredClaims{IssuedAt: c.IssuedAt, ExpiresAt: c.ExpiresAt}
	if err := std.Valid(); err != nil {
		return err
	}
	switch {
	case c.UserID <= 0:
		return fmt.Errorf("%w: sub", ErrInvalidToken)
	case c.Role == "":
		return fmt.Errorf("%w: role", ErrInvalidToken)
	case c.TokenVersion < 0:
		return fmt.Errorf("%w: tv", ErrInvalidToken)
	}
	return nil
}

func Sign(secret []byte, c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// Parse はHS256で署名されたトークンだけを受け付ける
func Parse(secret []byte, raw string) (Claims, error) {
	var c Claims
	token, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

// Subject はsubを数値でも文字列でも読む
type Subject int64

func (s *Subject) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = Subject(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("invalid sub %s", b)
	}
	*s = Subject(f)
	return nil
}
