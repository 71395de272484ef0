package server

import (
	"app/internal/config"
	appmw "app/internal/middleware"
	"app/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Newはechoを組み立てて返す。起動はしない。
func New(cfg config.Config, store session.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	//全ルートでセッションを解決する
	e.Use(appmw.Session(store, cfg))

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
