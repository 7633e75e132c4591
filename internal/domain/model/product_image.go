package model

type ProductImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	URL       string `gorm:"type:varchar(500);not null" json:"url"`
	AltText   string `gorm:"type:varchar(255)" json:"alt_text"`

	//商品につき1枚だけメイン画像
	IsPrimary bool `gorm:"not null;default:false" json:"is_primary"`
	Position  int  `gorm:"not null;default:0" json:"position"`
}
