package repository

import (
	"context"

	"shopverse/internal/domain/model"
)

type ReviewRepository interface {
	ListByProductID(ctx context.Context, productID int64) ([]model.Review, error)

	// (product, user) で1件。無ければ ErrNotFound。
	FindByProductAndUser(ctx context.Context, productID int64, userID int64) (model.Review, error)

	Create(ctx context.Context, review model.Review) (model.Review, error)
	Update(ctx context.Context, review model.Review) error

	//その商品の全レビューの算術平均と件数
	AverageRating(ctx context.Context, productID int64) (float64, int64, error)
}
