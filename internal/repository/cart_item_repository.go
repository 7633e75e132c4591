package repository

import (
	"context"

	"shopverse/internal/domain/model"
)

type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	// (user, product) で1件。無ければ ErrNotFound。
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error)

	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error

	//注文確定時のカートクリア
	DeleteAllByUserID(ctx context.Context, userID int64) error

	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
