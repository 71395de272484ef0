package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"app/internal/cart"
	"app/internal/domain/model"
	"app/internal/payment"
	"app/internal/repository"
	"app/internal/session"

	"github.com/labstack/gommon/log"
)

// 決済フローの状態エラー。ハンドラ側でリダイレクト先を決める。
var (
	//注文データが積まれていない（順序どおりに来ていない）
	ErrNoStagedOrder = errors.New("no staged order")
	//カートが空
	ErrCartEmpty = errors.New("cart empty")
	//ゲートウェイ起因の失敗。失敗ページへ送る。
	ErrPaymentFailed = errors.New("payment failed")
)

// internal/payment.Clientが実装する
type Gateway interface {
	Request(ctx context.Context, in payment.RequestInput) (string, error)
	Verify(ctx context.Context, amount int64, authority string) (string, error)
	StartPayURL(authority string) string
}

// PaymentResultは終端ページ表示用にセッションへ残す
type PaymentResult struct {
	Status    string `json:"status"`
	RefID     string `json:"ref_id,omitempty"`
	OrderID   int64  `json:"order_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Authority string `json:"authority,omitempty"`
}

type PaymentUsecase struct {
	gateway     Gateway
	orders      repository.OrderRepository
	callbackURL string
}

func NewPaymentUsecase(gateway Gateway, orders repository.OrderRepository, callbackURL string) *PaymentUsecase {
	return &PaymentUsecase{
		gateway:     gateway,
		orders:      orders,
		callbackURL: callbackURL,
	}
}

// Startは決済リクエストを開き、買い手を送るべきURLを返す。
// ゲートウェイが受理しなかった場合はOrderを作らずErrPaymentFailed。
func (u *PaymentUsecase) Start(ctx context.Context, sess *session.Session) (string, error) {
	var staged StagedOrder
	ok, err := sess.Get(OrderDataKey, &staged)
	if err != nil || !ok {
		return "", ErrNoStagedOrder
	}

	c := cart.Load(sess)
	if c.TotalPrice() == 0 {
		return "", ErrCartEmpty
	}

	authority, err := u.gateway.Request(ctx, payment.RequestInput{
		Amount:      staged.TotalPrice,
		Description: payment.Description(staged.TotalPrice),
		CallbackURL: u.callbackURL,
		Mobile:      staged.Phone,
		Email:       staged.Email,
	})
	if err != nil {
		//拒否もネットワーク断も買い手には失敗として返す
		log.Errorf("payment request failed: %v", err)
		u.stashResult(sess, PaymentResult{Status: "failed", Message: "payment request failed"})
		return "", ErrPaymentFailed
	}

	if err := sess.Set(AuthorityKey, authority); err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return u.gateway.StartPayURL(authority), nil
}

// HandleCallbackはゲートウェイからの戻りを処理する。
// 成功時はtrueを返し、Order(paid)を1行作ってカートと注文データを消す。
// 検証拒否時はOrder(failed)を1行作り、カートは残す。
// キャンセルや通信失敗ではOrderを作らない。
func (u *PaymentUsecase) HandleCallback(ctx context.Context, sess *session.Session, authority string, status string) (bool, error) {
	if status != "OK" || authority == "" {
		u.stashResult(sess, PaymentResult{Status: "canceled", Message: "payment canceled"})
		return false, nil
	}

	//同じauthorityが台帳にあれば再照会せず前回の結果を出す。
	//成功後の再読み込みでは注文データがもう無いので、この判定を先にやる。
	existing, found, err := u.orders.FindByAuthority(ctx, authority)
	if err == nil && found {
		u.rerenderExisting(sess, existing)
		return existing.Paid(), nil
	}

	var staged StagedOrder
	ok, err := sess.Get(OrderDataKey, &staged)
	if err != nil || !ok {
		return false, ErrNoStagedOrder
	}

	refID, verifyErr := u.gateway.Verify(ctx, staged.TotalPrice, authority)
	if verifyErr == nil {
		order, err := u.record(ctx, sess, staged, model.OrderStatusPaid, authority, refID)
		if err != nil {
			return false, err
		}

		sess.Delete(OrderDataKey)
		sess.Delete(AuthorityKey)
		cart.Load(sess).Clear()

		u.stashResult(sess, PaymentResult{
			Status:  "paid",
			RefID:   refID,
			OrderID: order.ID,
		})
		return true, nil
	}

	if rejected, ok := payment.AsRejected(verifyErr); ok {
		order, err := u.record(ctx, sess, staged, model.OrderStatusFailed, authority, "")
		if err != nil {
			return false, err
		}
		u.stashResult(sess, PaymentResult{
			Status:  "failed",
			OrderID: order.ID,
			Message: "verification rejected: " + strconv.Itoa(rejected.Code),
		})
		return false, nil
	}

	//通信・パース失敗。台帳には書かず失敗扱い。
	log.Errorf("payment verify failed: %v", verifyErr)
	u.stashResult(sess, PaymentResult{Status: "failed", Message: "payment verification failed"})
	return false, nil
}

// Resultは終端ページ用の結果を返す
func (u *PaymentUsecase) Result(sess *session.Session) (PaymentResult, bool) {
	var result PaymentResult
	ok, err := sess.Get(PaymentResultKey, &result)
	if err != nil || !ok {
		return PaymentResult{}, false
	}
	return result, true
}

// recordは台帳へ1行追記する。明細はカートのスナップショットから起こす。
func (u *PaymentUsecase) record(ctx context.Context, sess *session.Session, staged StagedOrder, status model.OrderStatus, authority string, refID string) (model.Order, error) {
	order := model.Order{
		FullName:         staged.FullName,
		Email:            staged.Email,
		Phone:            staged.Phone,
		PostalCode:       staged.PostalCode,
		Address:          staged.Address,
		Subtotal:         staged.Subtotal,
		TotalPrice:       staged.TotalPrice,
		ShippingMethod:   staged.ShippingMethod,
		ShippingCost:     staged.ShippingCost,
		Status:           status,
		PaymentAuthority: authority,
		PaymentReference: refID,
	}

	created, err := u.orders.CreateWithItems(ctx, order, u.snapshotItems(sess))
	if err != nil {
		//uniqueインデックス衝突＝並行コールバック。既存行を結果にする。
		if existing, found, findErr := u.orders.FindByAuthority(ctx, authority); findErr == nil && found {
			return existing, nil
		}
		log.Errorf("order create failed: %v", err)
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *PaymentUsecase) rerenderExisting(sess *session.Session, order model.Order) {
	result := PaymentResult{
		Status:  string(order.Status),
		RefID:   order.PaymentReference,
		OrderID: order.ID,
	}
	if order.Paid() {
		sess.Delete(OrderDataKey)
		sess.Delete(AuthorityKey)
		cart.Load(sess).Clear()
	}
	u.stashResult(sess, result)
}

// カート明細を注文明細スナップショットへ変換。
// 価格が読めない行は落とす。
func (u *PaymentUsecase) snapshotItems(sess *session.Session) []model.OrderItem {
	c := cart.Load(sess)
	items := make([]model.OrderItem, 0, c.LineCount())
	for _, id := range c.ProductIDs() {
		line, ok := c.Line(id)
		if !ok {
			continue
		}
		price, err := strconv.ParseInt(line.Price, 10, 64)
		if err != nil {
			continue
		}
		items = append(items, model.OrderItem{
			ProductID:           id,
			ProductNameSnapshot: line.Name,
			UnitPriceSnapshot:   price,
			Quantity:            line.Quantity,
		})
	}
	return items
}

func (u *PaymentUsecase) stashResult(sess *session.Session, result PaymentResult) {
	_ = sess.Set(PaymentResultKey, result)
}
