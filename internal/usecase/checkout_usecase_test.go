package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"
	"shopverse/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	assert.Equal(t, status, he.Status)
}

func newCheckoutUsecase(tx *txManagerStub, gateway usecase.CardGateway) *usecase.CheckoutUsecase {
	dispatcher := usecase.NewPaymentDispatcher(gateway, "wallet-client-id", "http://localhost:3000")
	return usecase.NewCheckoutUsecase(tx, dispatcher, decimal.RequireFromString("0.085"), 1299)
}

func checkoutProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Aurora Lamp", Slug: "aurora-lamp", PriceCents: 4999, Inventory: 10},
		{ID: 2, Name: "Titan Mug", Slug: "titan-mug", PriceCents: 1500, Inventory: 3},
	}
}

func savedAddressFixture() model.Address {
	return model.Address{
		ID:         7,
		UserID:     42,
		FullName:   "Alex Doe",
		Line1:      "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestCheckoutUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assertHTTPStatus(t, err, 400)
}

func TestCheckoutUsecase_PlaceOrder_InvalidPaymentMethod(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethod("bank-transfer"),
	})
	assertHTTPStatus(t, err, 400)
}

func TestCheckoutUsecase_PlaceOrder_ProductMissing(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{99}).
		Return([]model.Product{}, nil)

	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 99, Quantity: 1}},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assertHTTPStatus(t, err, 404)

	//在庫ガードで止まるので書き込みは一切発生しない
	tx.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tx.repos.inventory.AssertNotCalled(t, "DecrementIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_PlaceOrder_InsufficientInventory(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1, 2}).
		Return(checkoutProducts(), nil)

	//2番の在庫は3。5個の注文は全体が拒否される。
	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 5},
		},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assertHTTPStatus(t, err, 400)
	assert.Contains(t, err.Error(), "Titan Mug")

	tx.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_PlaceOrder_AddressRequired(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return(checkoutProducts()[:1], nil)

	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assertHTTPStatus(t, err, 400)
	assert.Contains(t, err.Error(), "shipping address")
}

func TestCheckoutUsecase_PlaceOrder_SavedAddressOfOtherUser(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return(checkoutProducts()[:1], nil)

	other := savedAddressFixture()
	other.UserID = 999
	tx.repos.addresses.On("FindByID", mock.Anything, int64(7)).Return(other, nil)

	//他人の住所は存在を漏らさず404
	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assertHTTPStatus(t, err, 404)
}

func TestCheckoutUsecase_PlaceOrder_Success_PayOnDelivery(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1, 2}).
		Return(checkoutProducts(), nil)
	tx.repos.addresses.On("FindByID", mock.Anything, int64(7)).
		Return(savedAddressFixture(), nil)

	tx.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return strings.HasPrefix(o.OrderNumber, "SV-") &&
			o.UserID == 42 &&
			o.Status == model.OrderStatusPending &&
			o.PaymentStatus == model.PaymentStatusPending &&
			o.SubtotalCents == 4999*2+1500 &&
			strings.Contains(o.AddressSnapshot, "Alex Doe")
	})).Return(int64(500), nil)

	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(500), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 && items[0].ProductName == "Aurora Lamp" && items[0].PriceCents == 4999
	})).Return(nil)

	tx.repos.inventory.On("DecrementIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	tx.repos.inventory.On("DecrementIfEnough", mock.Anything, int64(2), int64(1)).Return(true, nil)
	tx.repos.cartItems.On("DeleteAllByUserID", mock.Anything, int64(42)).Return(nil)

	out, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Order.OrderNumber, "SV-"))
	assert.Equal(t, int64(11498), out.Order.SubtotalCents)
	// 11498 * 0.085 = 977.33 → 977
	assert.Equal(t, int64(977), out.Order.TaxCents)
	assert.Equal(t, int64(11498+977+1299), out.Order.TotalCents)
	assert.Len(t, out.Order.Items, 2)

	//pay-on-deliveryは外部決済なし
	assert.Nil(t, out.Payment)

	tx.repos.orders.AssertExpectations(t)
	tx.repos.orderItems.AssertExpectations(t)
	tx.repos.inventory.AssertExpectations(t)
	tx.repos.cartItems.AssertExpectations(t)
}

func TestCheckoutUsecase_PlaceOrder_InlineAddressIsPersisted(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return(checkoutProducts()[:1], nil)

	tx.repos.addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 42 && a.FullName == "Riley Chen" && a.Line1 == "9 Oak Ave"
	})).Return(model.Address{ID: 11, UserID: 42, FullName: "Riley Chen", Line1: "9 Oak Ave"}, nil)

	tx.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.AddressID == 11 && strings.Contains(o.AddressSnapshot, "Riley Chen")
	})).Return(int64(501), nil)
	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(501), mock.Anything).Return(nil)
	tx.repos.inventory.On("DecrementIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	tx.repos.cartItems.On("DeleteAllByUserID", mock.Anything, int64(42)).Return(nil)

	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items: []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Address: usecase.InlineAddress{
			FullName:   "Riley Chen",
			Line1:      "9 Oak Ave",
			City:       "Portland",
			State:      "OR",
			PostalCode: "97201",
			Country:    "US",
		},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})

	assert.NoError(t, err)
	tx.repos.addresses.AssertExpectations(t)
}

func TestCheckoutUsecase_PlaceOrder_ConcurrentDecrementFails(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return(checkoutProducts()[:1], nil)
	tx.repos.addresses.On("FindByID", mock.Anything, int64(7)).
		Return(savedAddressFixture(), nil)
	tx.repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(502), nil)
	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(502), mock.Anything).Return(nil)

	//ガードは通ったが、条件付きUPDATEで負けた（並行注文）
	tx.repos.inventory.On("DecrementIfEnough", mock.Anything, int64(1), int64(2)).Return(false, nil)

	_, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 2}},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assertHTTPStatus(t, err, 400)
}

func TestCheckoutUsecase_PlaceOrder_CardGatewayDownDegradesToSimulated(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}

	gateway := new(CardGatewayMock)
	gateway.On("CreateSession", mock.Anything, mock.Anything).
		Return(usecase.CheckoutSession{}, errors.New("connection refused"))

	uc := newCheckoutUsecase(tx, gateway)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return(checkoutProducts()[:1], nil)
	tx.repos.addresses.On("FindByID", mock.Anything, int64(7)).
		Return(savedAddressFixture(), nil)
	tx.repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(503), nil)
	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(503), mock.Anything).Return(nil)
	tx.repos.inventory.On("DecrementIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	tx.repos.cartItems.On("DeleteAllByUserID", mock.Anything, int64(42)).Return(nil)

	out, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodCardGateway,
	})

	//ゲートウェイ障害でも注文は成立し、シミュレーションに降格する
	assert.NoError(t, err)
	assert.NotNil(t, out.Payment)
	assert.True(t, out.Payment.Simulated)
}

// WithinTxがエラーを返したら結果は空のまま
func TestCheckoutUsecase_PlaceOrder_TxFailureReturnsNothing(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := newCheckoutUsecase(tx, nil)

	tx.repos.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return([]model.Product(nil), repo.ErrNotFound)

	out, err := uc.PlaceOrder(context.Background(), 42, usecase.PlaceOrderInput{
		Items:         []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Address:       usecase.SavedAddress{AddressID: 7},
		PaymentMethod: model.PaymentMethodPayOnDelivery,
	})
	assert.Error(t, err)
	assert.Empty(t, out.Order.OrderNumber)
	assert.Nil(t, out.Payment)
}
