package server

import (
	"checkout-api/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Health  *handler.HealthHandler

	// 認証必須ルートに付ける
	AuthMW echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h Handlers) {
	h.Health.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e, h.AuthMW)
	h.Cart.RegisterRoutes(e, h.AuthMW)
	h.Order.RegisterRoutes(e, h.AuthMW)
}
