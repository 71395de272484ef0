package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	infrarepo "app/internal/infra/repository"
	infrasession "app/internal/infra/session"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 偽のゲートウェイ。requestとverifyの呼び出し回数を数える。
type fakeGateway struct {
	srv         *httptest.Server
	requests    int
	verifies    int
	verifyCode  int
	lastVerify  map[string]any
	lastRequest map[string]any
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{verifyCode: 100}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payment/request.json":
			g.requests++
			_ = json.NewDecoder(r.Body).Decode(&g.lastRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"code": 100, "authority": "A0001"},
			})
		case "/payment/verify.json":
			g.verifies++
			_ = json.NewDecoder(r.Body).Decode(&g.lastVerify)
			if g.verifyCode == 100 {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{"code": 100, "ref_id": 123456789},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data":   []any{},
				"errors": map[string]any{"code": g.verifyCode, "message": "rejected"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(g.srv.Close)
	return g
}

type testApp struct {
	srv     *httptest.Server
	client  *http.Client
	db      *gorm.DB
	gateway *fakeGateway
}

// DB・ストア・ゲートウェイまで実物で組むHTTPテストアプリ
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.SessionRecord{},
	))

	gateway := newFakeGateway(t)

	cfg := config.Config{
		SessionSecret:      "test-secret",
		GoEnv:              "dev",
		PaymentCallbackURL: "http://shop.local/checkout/verify",
	}

	productRepo := infrarepo.NewProductGormRepository(db)
	categoryRepo := infrarepo.NewCategoryGormRepository(db)
	orderRepo := infrarepo.NewOrderGormRepository(db)
	store := infrasession.NewGormStore(db)

	gatewayClient := payment.NewClient("merchant-1", gateway.srv.URL, "https://gateway.example/StartPay")

	productUC := usecase.NewProductUsecase(productRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(validator.NewCheckoutValidator())
	paymentUC := usecase.NewPaymentUsecase(gatewayClient, orderRepo, cfg.PaymentCallbackURL)

	e := server.New(cfg, store)
	server.RegisterRoutes(e,
		handler.NewProductHandler(productUC),
		handler.NewCartHandler(cartUC),
		handler.NewCheckoutHandler(checkoutUC, cartUC, paymentUC),
	)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		//リダイレクトは追わずLocationを検証する
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{srv: srv, client: client, db: db, gateway: gateway}
}

func (a *testApp) do(t *testing.T, method string, path string, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, a.srv.URL+path, nil)
	} else {
		req, err = http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func seedProduct(t *testing.T, db *gorm.DB) model.Product {
	t.Helper()
	cat := model.Category{Name: "Shoes", Slug: "shoes"}
	require.NoError(t, db.Create(&cat).Error)
	p := model.Product{CategoryID: cat.ID, Name: "Running Shoe", Slug: "running-shoe", Price: 100000, Stock: 5, Available: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

const checkoutBody = `{
	"name": "Sara Ahmadi",
	"email": "sara@example.com",
	"phone": "09123456789",
	"address": "Tehran, Valiasr St.",
	"postal_code": "1234567890",
	"shipping_method": "tipax"
}`

// カート投入→checkout→ゲートウェイ遷移→コールバック成功までの通し
func TestCheckoutFlow_Success(t *testing.T) {
	app := newTestApp(t)
	p := seedProduct(t, app.db)

	resp := app.do(t, http.MethodPost, "/cart", fmt.Sprintf(`{"product_id": %d, "quantity": 2}`, p.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cartOut usecase.CartResponse
	decodeBody(t, resp, &cartOut)
	assert.Equal(t, int64(200000), cartOut.TotalPrice)

	resp = app.do(t, http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var staged usecase.StagedOrder
	decodeBody(t, resp, &staged)
	assert.Equal(t, int64(200000), staged.TotalPrice)
	assert.Equal(t, int64(0), staged.ShippingCost)

	resp = app.do(t, http.MethodGet, "/checkout/payment", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://gateway.example/StartPay/A0001", resp.Header.Get("Location"))

	resp = app.do(t, http.MethodGet, "/checkout/verify?Authority=A0001&Status=OK", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout/success", resp.Header.Get("Location"))

	resp = app.do(t, http.MethodGet, "/checkout/success", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result usecase.PaymentResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "paid", result.Status)
	assert.Equal(t, "123456789", result.RefID)

	//カートは空になっている
	resp = app.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cartOut)
	assert.Equal(t, 0, cartOut.LineCount)

	//台帳にはpaidの1行と明細
	var orders []model.Order
	require.NoError(t, app.db.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusPaid, orders[0].Status)
	assert.Equal(t, "A0001", orders[0].PaymentAuthority)

	var items []model.OrderItem
	require.NoError(t, app.db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)
}

// コールバックの再読み込みで台帳が増えないこと
func TestCheckoutFlow_DuplicateCallback(t *testing.T) {
	app := newTestApp(t)
	p := seedProduct(t, app.db)

	app.do(t, http.MethodPost, "/cart", fmt.Sprintf(`{"product_id": %d, "quantity": 1}`, p.ID)).Body.Close()
	app.do(t, http.MethodPost, "/checkout", checkoutBody).Body.Close()
	app.do(t, http.MethodGet, "/checkout/payment", "").Body.Close()

	resp := app.do(t, http.MethodGet, "/checkout/verify?Authority=A0001&Status=OK", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/checkout/success", resp.Header.Get("Location"))

	//2回目の戻り。台帳の既存行から前回の結果を出し直す。
	resp = app.do(t, http.MethodGet, "/checkout/verify?Authority=A0001&Status=OK", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout/success", resp.Header.Get("Location"))

	//ゲートウェイへの再照会はしない
	assert.Equal(t, 1, app.gateway.verifies)

	var count int64
	require.NoError(t, app.db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// 検証拒否時はfailedの1行を作り、カートを残す
func TestCheckoutFlow_VerifyRejected(t *testing.T) {
	app := newTestApp(t)
	p := seedProduct(t, app.db)
	app.gateway.verifyCode = -51

	app.do(t, http.MethodPost, "/cart", fmt.Sprintf(`{"product_id": %d, "quantity": 1}`, p.ID)).Body.Close()
	app.do(t, http.MethodPost, "/checkout", checkoutBody).Body.Close()
	app.do(t, http.MethodGet, "/checkout/payment", "").Body.Close()

	resp := app.do(t, http.MethodGet, "/checkout/verify?Authority=A0001&Status=OK", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout/failed", resp.Header.Get("Location"))

	resp = app.do(t, http.MethodGet, "/checkout/failed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result usecase.PaymentResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "failed", result.Status)

	var orders []model.Order
	require.NoError(t, app.db.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusFailed, orders[0].Status)

	//カートは残っている
	resp = app.do(t, http.MethodGet, "/cart", "")
	var cartOut usecase.CartResponse
	decodeBody(t, resp, &cartOut)
	assert.Equal(t, 1, cartOut.LineCount)
}

// 買い手がゲートウェイでキャンセルした場合は台帳に書かない
func TestCheckoutFlow_Canceled(t *testing.T) {
	app := newTestApp(t)
	p := seedProduct(t, app.db)

	app.do(t, http.MethodPost, "/cart", fmt.Sprintf(`{"product_id": %d, "quantity": 1}`, p.ID)).Body.Close()
	app.do(t, http.MethodPost, "/checkout", checkoutBody).Body.Close()
	app.do(t, http.MethodGet, "/checkout/payment", "").Body.Close()

	resp := app.do(t, http.MethodGet, "/checkout/verify?Authority=A0001&Status=NOK", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout/failed", resp.Header.Get("Location"))

	assert.Equal(t, 0, app.gateway.verifies)

	var count int64
	require.NoError(t, app.db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// 注文データ無しで決済開始に来たらフォームへ戻す
func TestCheckoutFlow_PaymentWithoutStagedOrder(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/checkout/payment", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))
}

// カート空でcheckoutは400
func TestCheckoutFlow_StageWithEmptyCart(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body handler.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "cart is empty", body.Error)
}

// バリデーション違反は全件まとめて返す
func TestCheckoutFlow_StageValidation(t *testing.T) {
	app := newTestApp(t)
	p := seedProduct(t, app.db)

	app.do(t, http.MethodPost, "/cart", fmt.Sprintf(`{"product_id": %d, "quantity": 1}`, p.ID)).Body.Close()

	resp := app.do(t, http.MethodPost, "/checkout", `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body handler.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Len(t, body.Details, 5)
}

// 結果が無いままsuccessを開いたらフォームへ戻す
func TestCheckoutFlow_SuccessWithoutResult(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/checkout/success", "")
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))
}
