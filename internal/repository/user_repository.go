package repository

import (
	"context"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

// ユーザー登録・ログインは外部。ここは認可と注文者の参照だけ
type UserRepository interface {
	// プロフィール(配送先)付きで返す
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// 発行済みJWTを無効にして、新しいtoken_versionを返す
	IncrementTokenVersion(ctx context.Context, userID int64) (int, error)
}
