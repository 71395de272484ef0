package handler

import (
	"net/http"
	"strconv"

	"app/internal/middleware"
	"app/internal/session"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PATCH("/:product_id", h.patchItem)
	g.DELETE("/:product_id", h.deleteItem)
	g.POST("/clean", h.clean)
	g.DELETE("", h.clear)
}

// セッションが取れないのはミドルウェアの付け忘れ
func getSession(c echo.Context) (*session.Session, bool) {
	return middleware.GetSession(c)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	out, ucErr := h.uc.GetCart(c.Request().Context(), sess)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	//数量省略は1個
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	out, ucErr := h.uc.AddToCart(c.Request().Context(), sess, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	productID, parseErr := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if parseErr != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, ucErr := h.uc.UpdateQuantity(c.Request().Context(), sess, productID, req.Quantity)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	productID, parseErr := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if parseErr != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, ucErr := h.uc.RemoveFromCart(c.Request().Context(), sess, productID)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clean(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	out, ucErr := h.uc.CleanInvalid(c.Request().Context(), sess)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	sess, ok := getSession(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	out, ucErr := h.uc.ClearCart(c.Request().Context(), sess)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return c.JSON(http.StatusOK, out)
}
