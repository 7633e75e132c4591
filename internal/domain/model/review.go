package model

import "time"

// レビューは (product, user) につき1件。再投稿は上書き。
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:idx_review_product_user" json:"product_id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_review_product_user" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Reviewer  string    `gorm:"type:varchar(255);not null" json:"reviewer"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
