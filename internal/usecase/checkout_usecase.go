package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"

	"github.com/shopspring/decimal"
)

// 配送先の指定は「保存済み住所の参照」か「インライン入力」の二択。
// どちらでもない値は来ないよう閉じたバリアントにする。
type AddressSelection interface {
	isAddressSelection()
}

// 保存済み住所をIDで参照する
type SavedAddress struct {
	AddressID int64
}

func (SavedAddress) isAddressSelection() {}

// 入力された住所をそのまま使う（新規保存される）
type InlineAddress struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

func (InlineAddress) isAddressSelection() {}

// 注文に凍結保存する住所スナップショット
type addressSnapshot struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type CheckoutItemInput struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	Items         []CheckoutItemInput
	Address       AddressSelection
	PaymentMethod model.PaymentMethod
}

type CheckoutItemOutput struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	PriceCents  int64  `json:"price_cents"`
	Quantity    int64  `json:"quantity"`
	ImageURL    string `json:"image_url,omitempty"`
}

type CheckoutOrderOutput struct {
	OrderNumber   string               `json:"order_number"`
	Status        string               `json:"status"`
	PaymentStatus string               `json:"payment_status"`
	SubtotalCents int64                `json:"subtotal_cents"`
	TaxCents      int64                `json:"tax_cents"`
	ShippingCents int64                `json:"shipping_cents"`
	TotalCents    int64                `json:"total_cents"`
	Items         []CheckoutItemOutput `json:"items"`
}

type CheckoutOutput struct {
	Order   CheckoutOrderOutput `json:"order"`
	Payment *PaymentDirective   `json:"payment"`
}

// チェックアウト1回分の処理。
// 在庫チェック〜注文作成〜在庫減算〜カートクリアは1つのトランザクション。
// 途中で失敗したら何も残らない。決済の起動はコミットの後。
type CheckoutUsecase struct {
	tx            repo.TransactionManager
	payments      *PaymentDispatcher
	taxRate       decimal.Decimal
	shippingCents int64

	//テストで時刻を差し替えるため
	now func() time.Time
}

func NewCheckoutUsecase(tx repo.TransactionManager, payments *PaymentDispatcher, taxRate decimal.Decimal, shippingCents int64) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:            tx,
		payments:      payments,
		taxRate:       taxRate,
		shippingCents: shippingCents,
		now:           time.Now,
	}
}

// 注文番号：店のタグ + 作成時刻ミリ秒のbase36（大文字）
func generateOrderNumber(now time.Time) string {
	return "SV-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 || item.Quantity < 1 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart item")
		}
	}
	if !in.PaymentMethod.Valid() {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	var out CheckoutOutput
	var payReq PaymentRequest

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//対象商品を1回の読みでまとめて取る
		ids := make([]int64, 0, len(in.Items))
		for _, item := range in.Items {
			ids = append(ids, item.ProductID)
		}

		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		productMap := make(map[int64]model.Product, len(products))
		for _, p := range products {
			productMap[p.ID] = p
		}

		//在庫ガード：1件でもダメなら注文全体を拒否する
		for _, item := range in.Items {
			p, ok := productMap[item.ProductID]
			if !ok {
				return NewHTTPError(http.StatusNotFound, "one or more products were not found")
			}
			if item.Quantity > p.Inventory {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("insufficient inventory for %s", p.Name))
			}
		}

		//住所を確定してスナップショット化
		address, snapshot, err := resolveAddress(ctx, r, userID, in.Address)
		if err != nil {
			return err
		}

		snapshotJSON, err := json.Marshal(snapshot)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		//金額は確定時に計算して注文に固定する
		lines := make([]PriceLine, 0, len(in.Items))
		for _, item := range in.Items {
			lines = append(lines, PriceLine{
				UnitPriceCents: productMap[item.ProductID].PriceCents,
				Quantity:       item.Quantity,
			})
		}
		pricing := ComputePricing(lines, u.taxRate, u.shippingCents)

		now := u.now()
		orderNumber := generateOrderNumber(now)

		orderID, err := r.Orders().Create(ctx, model.Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			Status:          model.OrderStatusPending,
			PaymentStatus:   InitialPaymentStatus(in.PaymentMethod),
			PaymentMethod:   in.PaymentMethod,
			ShippingStatus:  model.ShippingStatusNotShipped,
			SubtotalCents:   pricing.SubtotalCents,
			TaxCents:        pricing.TaxCents,
			ShippingCents:   pricing.ShippingCents,
			TotalCents:      pricing.TotalCents,
			AddressID:       address.ID,
			AddressSnapshot: string(snapshotJSON),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細は商品スナップショット
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			p := productMap[item.ProductID]
			imageURL := ""
			if len(p.Images) > 0 {
				imageURL = p.Images[0].URL
			}
			orderItems = append(orderItems, model.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSlug: p.Slug,
				PriceCents:  p.PriceCents,
				Quantity:    item.Quantity,
				ImageURL:    imageURL,
				CreatedAt:   now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫減算。条件付きUPDATEなので同時注文の売り越しはここで止まる。
		for _, item := range in.Items {
			ok, err := r.Inventory().DecrementIfEnough(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("insufficient inventory for %s", productMap[item.ProductID].Name))
			}
		}

		//カートクリア（再注文防止）
		if err := r.CartItems().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outItems := make([]CheckoutItemOutput, 0, len(orderItems))
		payLines := make([]CheckoutSessionLine, 0, len(orderItems))
		for _, it := range orderItems {
			outItems = append(outItems, CheckoutItemOutput{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				ProductSlug: it.ProductSlug,
				PriceCents:  it.PriceCents,
				Quantity:    it.Quantity,
				ImageURL:    it.ImageURL,
			})
			payLines = append(payLines, CheckoutSessionLine{
				Name:            it.ProductName,
				UnitAmountCents: it.PriceCents,
				Quantity:        it.Quantity,
			})
		}

		out = CheckoutOutput{
			Order: CheckoutOrderOutput{
				OrderNumber:   orderNumber,
				Status:        string(model.OrderStatusPending),
				PaymentStatus: string(InitialPaymentStatus(in.PaymentMethod)),
				SubtotalCents: pricing.SubtotalCents,
				TaxCents:      pricing.TaxCents,
				ShippingCents: pricing.ShippingCents,
				TotalCents:    pricing.TotalCents,
				Items:         outItems,
			},
		}
		payReq = PaymentRequest{
			OrderNumber: orderNumber,
			UserID:      userID,
			Lines:       payLines,
		}
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}

	//決済の起動は注文の永続化が終わってから。失敗しても注文は残る。
	out.Payment = u.payments.Dispatch(ctx, in.PaymentMethod, payReq)

	return out, nil
}

// 住所を確定する。
// SavedAddress: 本人の保存済み住所であること（他人のものは404）。
// InlineAddress: 新規住所として保存する。
// どちらでもなければ住所必須エラー。
func resolveAddress(ctx context.Context, r repo.TxRepos, userID int64, sel AddressSelection) (model.Address, addressSnapshot, error) {
	switch s := sel.(type) {
	case SavedAddress:
		if s.AddressID <= 0 {
			return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
		}
		addr, err := r.Addresses().FindByID(ctx, s.AddressID)
		if err == repo.ErrNotFound {
			return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusNotFound, "address not found")
		}
		if err != nil {
			return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if addr.UserID != userID {
			//他人の住所は存在しない扱い
			return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusNotFound, "address not found")
		}
		return addr, snapshotOf(addr), nil

	case InlineAddress:
		if s.FullName == "" || s.Line1 == "" || s.City == "" || s.State == "" || s.PostalCode == "" || s.Country == "" {
			return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid shipping address")
		}
		created, err := r.Addresses().Create(ctx, model.Address{
			UserID:     userID,
			FullName:   s.FullName,
			Line1:      s.Line1,
			Line2:      s.Line2,
			City:       s.City,
			State:      s.State,
			PostalCode: s.PostalCode,
			Country:    s.Country,
			Phone:      s.Phone,
		})
		if err != nil {
			return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return created, snapshotOf(created), nil
	}

	return model.Address{}, addressSnapshot{}, NewHTTPError(http.StatusBadRequest, "shipping address is required")
}

func snapshotOf(a model.Address) addressSnapshot {
	return addressSnapshot{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}
