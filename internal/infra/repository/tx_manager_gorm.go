package repository

import (
	"context"

	repo "shopverse/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products       repo.ProductRepository
	inventory      repo.InventoryRepository
	orders         repo.OrderRepository
	orderItems     repo.OrderItemRepository
	cartItems      repo.CartItemRepository
	addresses      repo.AddressRepository
	reviews        repo.ReviewRepository
	users          repo.UserRepository
	passwordResets repo.PasswordResetRepository
}

func (r *txReposGorm) Products() repo.ProductRepository             { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository          { return r.inventory }
func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository         { return r.orderItems }
func (r *txReposGorm) CartItems() repo.CartItemRepository           { return r.cartItems }
func (r *txReposGorm) Addresses() repo.AddressRepository            { return r.addresses }
func (r *txReposGorm) Reviews() repo.ReviewRepository               { return r.reviews }
func (r *txReposGorm) Users() repo.UserRepository                   { return r.users }
func (r *txReposGorm) PasswordResets() repo.PasswordResetRepository { return r.passwordResets }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			products:       NewProductGormRepository(tx),
			inventory:      NewInventoryGormRepository(tx),
			orders:         NewOrderGormRepository(tx),
			orderItems:     NewOrderItemGormRepository(tx),
			cartItems:      NewCartItemGormRepository(tx),
			addresses:      NewAddressGormRepository(tx),
			reviews:        NewReviewGormRepository(tx),
			users:          NewUserGormRepository(tx),
			passwordResets: NewPasswordResetGormRepository(tx),
		}
		return fn(r)
	})
}
