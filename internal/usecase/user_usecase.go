package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gmplanet/stock-market/internal/auth"
	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"
)

const accessTokenTTL = 15 * time.Minute

// ログイン自体は外部。ここでは強制ログアウトと、開発・運用向けのトークン発行だけ。
type UserUsecase struct {
	tx        repo.TransactionManager
	jwtSecret []byte
	now       func() time.Time
}

func NewUserUsecase(tx repo.TransactionManager, jwtSecret string) *UserUsecase {
	return &UserUsecase{tx: tx, jwtSecret: []byte(jwtSecret), now: time.Now}
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AccessToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// token_versionを上げて、発行済みのJWTを使えなくする
func (u *UserUsecase) ForceLogout(ctx context.Context, targetUserID int64) (ForceLogoutResponse, error) {
	if targetUserID <= 0 {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	var out ForceLogoutResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		tv, err := r.Users().IncrementTokenVersion(ctx, targetUserID)
		if err != nil {
			return toHTTPError(err)
		}
		out = ForceLogoutResponse{UserID: targetUserID, NewTokenVersion: tv}
		return nil
	})
	if err != nil {
		return ForceLogoutResponse{}, err
	}
	return out, nil
}

// 現在のrole / token_versionでJWTを発行する（stockctl token）
func (u *UserUsecase) IssueAccessToken(ctx context.Context, userID int64, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = accessTokenTTL
	}

	var user *model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		user, err = r.Users().FindByID(ctx, userID)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return AccessToken{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return AccessToken{}, dbError(err)
	}
	if !user.IsActive {
		return AccessToken{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	claims := auth.NewClaims(*user, u.now(), ttl)
	signed, err := auth.Sign(u.jwtSecret, claims)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{AccessToken: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}
