package model

import "time"

// 商品。価格はトマン単位の整数。
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64     `gorm:"not null;index" json:"category_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null" json:"price"`
	OldPrice    *int64    `json:"old_price,omitempty"`
	Stock       int64     `gorm:"not null;default:0" json:"stock"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 割引率（旧価格があるときのみ）
func (p Product) DiscountPercent() int64 {
	if p.OldPrice == nil || *p.OldPrice <= p.Price {
		return 0
	}
	return (*p.OldPrice - p.Price) * 100 / *p.OldPrice
}

// 在庫ありか
func (p Product) InStock() bool {
	return p.Available && p.Stock > 0
}
