package handler

import (
	"errors"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// checkout〜決済コールバックまでのHTTP。
// ゲートウェイへの遷移と戻りはリダイレクトで流す。
type CheckoutHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	cartUC     *usecase.CartUsecase
	paymentUC  *usecase.PaymentUsecase
}

func NewCheckoutHandler(
	checkoutUC *usecase.CheckoutUsecase,
	cartUC *usecase.CartUsecase,
	paymentUC *usecase.PaymentUsecase,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUC: checkoutUC,
		cartUC:     cartUC,
		paymentUC:  paymentUC,
	}
}

type CheckoutRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	PostalCode     string `json:"postal_code"`
	ShippingMethod string `json:"shipping_method"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/checkout")

	g.GET("", h.getCheckout)
	g.POST("", h.stage)

	//決済開始は安全メソッド（GET）だけ受ける
	g.GET("/payment", h.payment)
	g.GET("/verify", h.verify)
	g.GET("/success", h.success)
	g.GET("/failed", h.failed)
}

// フォーム画面相当。積んである注文データと再照合済みカートを返す。
func (h *CheckoutHandler) getCheckout(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	cartOut, ucErr := h.cartUC.GetCart(c.Request().Context(), sess)
	if ucErr != nil {
		return writeError(c, ucErr)
	}

	resp := map[string]any{"cart": cartOut}
	if staged, ok := h.checkoutUC.Staged(sess); ok {
		resp["order_data"] = staged
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) stage(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	staged, ucErr := h.checkoutUC.Stage(c.Request().Context(), sess, usecase.CheckoutForm{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		PostalCode:     req.PostalCode,
		ShippingMethod: req.ShippingMethod,
	})
	if errors.Is(ucErr, usecase.ErrCartEmpty) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart is empty"})
	}
	if ucErr != nil {
		return writeError(c, ucErr)
	}

	return c.JSON(http.StatusOK, staged)
}

// ゲートウェイへ決済リクエストを開き、買い手をStartPayへ送る
func (h *CheckoutHandler) payment(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	url, ucErr := h.paymentUC.Start(c.Request().Context(), sess)
	switch {
	case errors.Is(ucErr, usecase.ErrNoStagedOrder):
		//順序どおりに来ていないのでフォームへ戻す
		return c.Redirect(http.StatusFound, "/checkout")
	case errors.Is(ucErr, usecase.ErrCartEmpty):
		return c.Redirect(http.StatusFound, "/cart")
	case errors.Is(ucErr, usecase.ErrPaymentFailed):
		return c.Redirect(http.StatusFound, "/checkout/failed")
	case ucErr != nil:
		return writeError(c, ucErr)
	}

	return c.Redirect(http.StatusFound, url)
}

// ゲートウェイからの戻り（?Authority=...&Status=OK）
func (h *CheckoutHandler) verify(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	authority := c.QueryParam("Authority")
	status := c.QueryParam("Status")

	paid, ucErr := h.paymentUC.HandleCallback(c.Request().Context(), sess, authority, status)
	switch {
	case errors.Is(ucErr, usecase.ErrNoStagedOrder):
		return c.Redirect(http.StatusFound, "/checkout")
	case ucErr != nil:
		return writeError(c, ucErr)
	}

	if paid {
		return c.Redirect(http.StatusFound, "/checkout/success")
	}
	return c.Redirect(http.StatusFound, "/checkout/failed")
}

// 終端ページ。直前の決済結果を返す。
func (h *CheckoutHandler) success(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	result, ok := h.paymentUC.Result(sess)
	if !ok || result.Status != "paid" {
		return c.Redirect(http.StatusFound, "/checkout")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) failed(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	result, ok := h.paymentUC.Result(sess)
	if !ok {
		return c.JSON(http.StatusOK, usecase.PaymentResult{Status: "failed"})
	}
	return c.JSON(http.StatusOK, result)
}
