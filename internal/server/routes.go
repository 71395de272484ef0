package server

import (
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	checkoutH *handler.CheckoutHandler,
) {
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e)
	checkoutH.RegisterRoutes(e)
}
