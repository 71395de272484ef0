package usecase

import (
	"context"
	"net/http"

	"app/internal/cart"
	"app/internal/domain/model"
	"app/internal/session"
)

// セッションのキー
const (
	OrderDataKey     = "order_data"
	AuthorityKey     = "payment_authority"
	PaymentResultKey = "payment_result"
)

// 配送方法ごとの固定送料（トマン）
var shippingCosts = map[model.ShippingMethod]int64{
	model.ShippingTipax:       0,
	model.ShippingPost:        80000,
	model.ShippingSpecialPost: 140000,
}

// 未知の方法はpostの送料にフォールバック
func ShippingCost(method model.ShippingMethod) int64 {
	if cost, ok := shippingCosts[method]; ok {
		return cost
	}
	return shippingCosts[model.ShippingPost]
}

// StagedOrderは決済前にセッションへ積む注文データ。
// ゲートウェイの結果が出たら破棄する。
type StagedOrder struct {
	FullName       string               `json:"full_name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Address        string               `json:"address"`
	PostalCode     string               `json:"postal_code"`
	ShippingMethod model.ShippingMethod `json:"shipping_method"`
	ShippingCost   int64                `json:"shipping_cost"`
	Subtotal       int64                `json:"subtotal"`
	TotalPrice     int64                `json:"total_price"`
}

// CheckoutFormはバリデーション対象の入力
type CheckoutForm struct {
	Name           string
	Email          string
	Phone          string
	Address        string
	PostalCode     string
	ShippingMethod string
}

// validatorパッケージが実装する
type CheckoutValidator interface {
	Validate(form CheckoutForm) []string
}

type CheckoutUsecase struct {
	validator CheckoutValidator
}

func NewCheckoutUsecase(validator CheckoutValidator) *CheckoutUsecase {
	return &CheckoutUsecase{validator: validator}
}

// Stageは入力を検証し、送料込みの合計を計算して
// 注文データをセッションへ積む。カート自体はまだ消さない。
func (u *CheckoutUsecase) Stage(ctx context.Context, sess *session.Session, form CheckoutForm) (StagedOrder, error) {
	if violations := u.validator.Validate(form); len(violations) > 0 {
		return StagedOrder{}, &ValidationError{Violations: violations}
	}

	c := cart.Load(sess)
	if c.LineCount() == 0 {
		return StagedOrder{}, ErrCartEmpty
	}

	method := model.ShippingMethod(form.ShippingMethod)
	if method == "" {
		method = model.ShippingPost
	}
	shippingCost := ShippingCost(method)

	subtotal := c.TotalPrice()
	staged := StagedOrder{
		FullName:       form.Name,
		Email:          form.Email,
		Phone:          form.Phone,
		Address:        form.Address,
		PostalCode:     form.PostalCode,
		ShippingMethod: method,
		ShippingCost:   shippingCost,
		Subtotal:       subtotal,
		TotalPrice:     subtotal + shippingCost,
	}

	if err := sess.Set(OrderDataKey, staged); err != nil {
		return StagedOrder{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return staged, nil
}

// Stagedは積んである注文データを返す（確認画面用）
func (u *CheckoutUsecase) Staged(sess *session.Session) (StagedOrder, bool) {
	var staged StagedOrder
	ok, err := sess.Get(OrderDataKey, &staged)
	if err != nil || !ok {
		return StagedOrder{}, false
	}
	return staged, true
}
