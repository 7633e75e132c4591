package repository

import (
	"context"
	"errors"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PasswordResetGormRepository struct {
	db *gorm.DB
}

func NewPasswordResetGormRepository(db *gorm.DB) *PasswordResetGormRepository {
	return &PasswordResetGormRepository{db: db}
}

// ユーザーにつき1件。既存があれば上書き。
func (r *PasswordResetGormRepository) Upsert(ctx context.Context, token model.PasswordResetToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at"}),
		}).
		Create(&token).Error
}

func (r *PasswordResetGormRepository) FindByUserID(ctx context.Context, userID int64) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PasswordResetToken{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PasswordResetToken{}, err
	}
	return t, nil
}

func (r *PasswordResetGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.PasswordResetToken{}).Error
}
