package usecase_test

import (
	"context"

	"shopverse/internal/domain/model"
	"shopverse/internal/infra/external"
	repo "shopverse/internal/repository"
	"shopverse/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（usecaseテスト共用）
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListByCategory(ctx context.Context, categoryID int64, excludeID int64, limit int) ([]model.Product, error) {
	args := m.Called(ctx, categoryID, excludeID, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) UpdateRating(ctx context.Context, productID int64, rating float64) error {
	args := m.Called(ctx, productID, rating)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecrementIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) Increment(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) FindByNumberAndUser(ctx context.Context, orderNumber string, userID int64) (model.Order, error) {
	args := m.Called(ctx, orderNumber, userID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, productID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Address)
	return items, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *AddressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Category)
	return items, args.Error(1)
}

type BrandRepoMock struct{ mock.Mock }

func (m *BrandRepoMock) List(ctx context.Context) ([]model.Brand, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Brand)
	return items, args.Error(1)
}

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.Review)
	return items, args.Error(1)
}

func (m *ReviewRepoMock) FindByProductAndUser(ctx context.Context, productID int64, userID int64) (model.Review, error) {
	args := m.Called(ctx, productID, userID)
	r, _ := args.Get(0).(model.Review)
	return r, args.Error(1)
}

func (m *ReviewRepoMock) Create(ctx context.Context, review model.Review) (model.Review, error) {
	args := m.Called(ctx, review)
	r, _ := args.Get(0).(model.Review)
	return r, args.Error(1)
}

func (m *ReviewRepoMock) Update(ctx context.Context, review model.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepoMock) AverageRating(ctx context.Context, productID int64) (float64, int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Get(1).(int64), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type PasswordResetRepoMock struct{ mock.Mock }

func (m *PasswordResetRepoMock) Upsert(ctx context.Context, token model.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *PasswordResetRepoMock) FindByUserID(ctx context.Context, userID int64) (model.PasswordResetToken, error) {
	args := m.Called(ctx, userID)
	t, _ := args.Get(0).(model.PasswordResetToken)
	return t, args.Error(1)
}

func (m *PasswordResetRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// トランザクションの偽物
// =====================

// txReposStub はモック一式をTxReposとして差し出す
type txReposStub struct {
	products   *ProductRepoMock
	inventory  *InventoryRepoMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	cartItems  *CartItemRepoMock
	addresses  *AddressRepoMock
	reviews    *ReviewRepoMock
	users      *UserRepoMock
	resets     *PasswordResetRepoMock
}

func newTxReposStub() *txReposStub {
	return &txReposStub{
		products:   new(ProductRepoMock),
		inventory:  new(InventoryRepoMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		cartItems:  new(CartItemRepoMock),
		addresses:  new(AddressRepoMock),
		reviews:    new(ReviewRepoMock),
		users:      new(UserRepoMock),
		resets:     new(PasswordResetRepoMock),
	}
}

func (s *txReposStub) Products() repo.ProductRepository            { return s.products }
func (s *txReposStub) Inventory() repo.InventoryRepository         { return s.inventory }
func (s *txReposStub) Orders() repo.OrderRepository                { return s.orders }
func (s *txReposStub) OrderItems() repo.OrderItemRepository        { return s.orderItems }
func (s *txReposStub) CartItems() repo.CartItemRepository          { return s.cartItems }
func (s *txReposStub) Addresses() repo.AddressRepository           { return s.addresses }
func (s *txReposStub) Reviews() repo.ReviewRepository              { return s.reviews }
func (s *txReposStub) Users() repo.UserRepository                  { return s.users }
func (s *txReposStub) PasswordResets() repo.PasswordResetRepository { return s.resets }

// txManagerStub はfnをそのまま実行するだけ。fnのerrorを透過する。
type txManagerStub struct {
	repos *txReposStub
}

func (t *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(t.repos)
}

// =====================
// 外部サービスのモック
// =====================

type CardGatewayMock struct{ mock.Mock }

func (m *CardGatewayMock) CreateSession(ctx context.Context, in usecase.CheckoutSessionInput) (usecase.CheckoutSession, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(usecase.CheckoutSession)
	return s, args.Error(1)
}

type InsightsAPIMock struct{ mock.Mock }

func (m *InsightsAPIMock) SearchProducts(ctx context.Context, query string, limit int) ([]external.InsightProduct, error) {
	args := m.Called(ctx, query, limit)
	items, _ := args.Get(0).([]external.InsightProduct)
	return items, args.Error(1)
}

func (m *InsightsAPIMock) ProductByID(ctx context.Context, id int64) (external.InsightProduct, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(external.InsightProduct)
	return p, args.Error(1)
}

func (m *InsightsAPIMock) ProductsByCategory(ctx context.Context, category string, limit int) ([]external.InsightProduct, error) {
	args := m.Called(ctx, category, limit)
	items, _ := args.Get(0).([]external.InsightProduct)
	return items, args.Error(1)
}

func (m *InsightsAPIMock) CartByID(ctx context.Context, trackingID string) (external.InsightCart, error) {
	args := m.Called(ctx, trackingID)
	c, _ := args.Get(0).(external.InsightCart)
	return c, args.Error(1)
}
