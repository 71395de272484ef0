package model

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusCanceled OrderStatus = "canceled"
)

type ShippingMethod string

const (
	//着払い（買い手は送料0）
	ShippingTipax ShippingMethod = "tipax"
	//速達郵便
	ShippingPost ShippingMethod = "post"
	//特別郵便
	ShippingSpecialPost ShippingMethod = "special_post"
)

// 決済結果ごとに1行だけ作る台帳レコード。
// PaymentAuthorityはゲートウェイの相関トークン。
// 同じコールバックの再読み込みで二重登録しないようuniqueにする。
type Order struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName       string         `gorm:"type:varchar(100);not null" json:"full_name"`
	Email          string         `gorm:"type:varchar(255);not null" json:"email"`
	Phone          string         `gorm:"type:varchar(15);not null" json:"phone"`
	PostalCode     string         `gorm:"type:varchar(10);not null" json:"postal_code"`
	Address        string         `gorm:"type:text;not null" json:"address"`
	Subtotal       int64          `gorm:"not null" json:"subtotal"`
	TotalPrice     int64          `gorm:"not null" json:"total_price"`
	ShippingMethod ShippingMethod `gorm:"type:varchar(20);not null;default:'post'" json:"shipping_method"`
	ShippingCost   int64          `gorm:"not null;default:0" json:"shipping_cost"`
	Status         OrderStatus    `gorm:"type:varchar(20);not null;index" json:"status"`

	PaymentAuthority string `gorm:"type:varchar(50);uniqueIndex" json:"payment_authority"`
	PaymentReference string `gorm:"type:varchar(50)" json:"payment_reference"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o Order) Paid() bool {
	return o.Status == OrderStatusPaid
}
