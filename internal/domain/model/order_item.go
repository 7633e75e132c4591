package model

import "time"

// 注文時点の商品スナップショット。
// 商品が後で編集・削除されても過去の注文は変わらない。
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSlug string    `gorm:"type:varchar(255);not null" json:"product_slug"`
	PriceCents  int64     `gorm:"not null" json:"price_cents"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
