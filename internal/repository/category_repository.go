package repository

import (
	"context"

	"shopverse/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
}

type BrandRepository interface {
	List(ctx context.Context) ([]model.Brand, error)
}
