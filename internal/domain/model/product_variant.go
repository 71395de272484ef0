package model

// 商品のバリエーション（色・サイズごとの在庫）
type ProductVariant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Color     string `gorm:"type:varchar(50)" json:"color"`
	Size      string `gorm:"type:varchar(50)" json:"size"`
	Quantity  int64  `gorm:"not null;default:0" json:"quantity"`
	SKU       string `gorm:"type:varchar(100)" json:"sku"`
}

func (v ProductVariant) IsAvailable() bool {
	return v.Quantity > 0
}
