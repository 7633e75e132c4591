package server

import (
	"net/http"

	"shopverse/internal/config"
	"shopverse/internal/handler"
	"shopverse/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlersはルート登録に必要なhandler一式
type Handlers struct {
	Auth     *handler.AuthHandler
	Account  *handler.AccountHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Address  *handler.AddressHandler
}

// NewはEchoを組み立てて返す。起動はmain側。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	//cookieを使うのでcredentials許可、originはフロントだけ
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg)
	h.Product.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Checkout.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)

	//セッション必須のgroup
	account := e.Group("/account")
	account.Use(middleware.RequireSession(cfg))
	h.Account.RegisterRoutes(account)

	private := e.Group("")
	private.Use(middleware.RequireSession(cfg))
	h.Address.RegisterRoutes(private)

	return e
}
