package repository

import (
	"context"

	"shopverse/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	//注文番号＋所有者で1件。他人の注文は ErrNotFound 扱い。
	FindByNumberAndUser(ctx context.Context, orderNumber string, userID int64) (model.Order, error)

	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
