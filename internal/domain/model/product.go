package model

import "time"

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	//価格（セント単位の整数）
	PriceCents int64 `gorm:"not null" json:"price_cents"`

	//在庫数（マイナス禁止）
	Inventory int64 `gorm:"not null" json:"inventory"`

	//レビュー平均（0〜5）、レビュー投稿のたびに再計算
	Rating float64 `gorm:"not null;default:0" json:"rating"`

	SKU        string `gorm:"type:varchar(100)" json:"sku"`
	CategoryID int64  `gorm:"not null;index" json:"category_id"`
	BrandID    int64  `gorm:"not null;index" json:"brand_id"`

	Images   []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
	Category Category       `gorm:"foreignKey:CategoryID" json:"category"`
	Brand    Brand          `gorm:"foreignKey:BrandID" json:"brand"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
