package repository

import (
	"context"

	"shopverse/internal/domain/model"
)

// パスワード再設定トークン。ユーザーにつき1件でUpsert。
type PasswordResetRepository interface {
	Upsert(ctx context.Context, token model.PasswordResetToken) error
	FindByUserID(ctx context.Context, userID int64) (model.PasswordResetToken, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}
