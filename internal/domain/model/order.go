package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusPaid       PaymentStatus = "PAID"
)

type ShippingStatus string

const (
	ShippingStatusNotShipped ShippingStatus = "NOT_SHIPPED"
	ShippingStatusShipped    ShippingStatus = "SHIPPED"
	ShippingStatusDelivered  ShippingStatus = "DELIVERED"
)

// 決済方法は閉じた選択肢。新しいプロバイダは値とハンドラを足して増やす。
type PaymentMethod string

const (
	PaymentMethodCardGateway   PaymentMethod = "card-gateway"
	PaymentMethodWalletRedirect PaymentMethod = "wallet-redirect"
	PaymentMethodPayOnDelivery  PaymentMethod = "pay-on-delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCardGateway, PaymentMethodWalletRedirect, PaymentMethodPayOnDelivery:
		return true
	}
	return false
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//人間が読める注文番号（時刻由来、ユニーク）
	OrderNumber string `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`

	UserID         int64          `gorm:"not null;index" json:"user_id"`
	Status         OrderStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(30);not null" json:"payment_method"`
	ShippingStatus ShippingStatus `gorm:"type:varchar(20);not null" json:"shipping_status"`

	//金額は作成時に確定。商品価格が後で変わっても再計算しない。
	SubtotalCents int64 `gorm:"not null" json:"subtotal_cents"`
	TaxCents      int64 `gorm:"not null" json:"tax_cents"`
	ShippingCents int64 `gorm:"not null" json:"shipping_cents"`
	TotalCents    int64 `gorm:"not null" json:"total_cents"`

	AddressID int64 `gorm:"not null" json:"address_id"`

	//作成時点の住所をJSONで凍結。元の住所を編集・削除しても変わらない。
	AddressSnapshot string `gorm:"type:text;not null" json:"address_snapshot"`

	ShippingTrackingID string `gorm:"type:varchar(100)" json:"shipping_tracking_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
