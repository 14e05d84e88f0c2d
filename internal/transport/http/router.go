package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/handlers"
	"github.com/craftline/marketplace/internal/handlers/admin"
	"github.com/craftline/marketplace/internal/handlers/auth"
	"github.com/craftline/marketplace/internal/handlers/cart"
	authmw "github.com/craftline/marketplace/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *auth.AuthHandler
	AdminHandler   *admin.AdminHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *cart.CartHandler
	SearchHandler  *handlers.SearchHandler
	Auth           *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/artisans/register", d.AuthHandler.Register)
	v1.POST("/artisans/login", d.AuthHandler.Login)
	v1.POST("/artisans/logout", d.AuthHandler.LogOut)

	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	artisan := v1.Group("/artisan", d.Auth.RequireArtisan)
	artisan.POST("/products", d.ProductHandler.CreateProduct)
	artisan.GET("/products", d.ProductHandler.MyProducts)

	v1.POST("/admin/login", d.AdminHandler.Login)
	adm := v1.Group("/admin", d.Auth.RequireAdmin)
	adm.GET("/pending", d.AdminHandler.Pending)
	adm.POST("/artisans/:id/verify", d.AdminHandler.VerifyArtisan)
	adm.POST("/products/:id/approve", d.AdminHandler.ApproveProduct)

	ct := v1.Group("/cart")
	ct.GET("", d.CartHandler.GetCart)
	ct.POST("", d.CartHandler.AddToCart)
	ct.DELETE("/products/:productID", d.CartHandler.RemoveFromCart)

	v1.GET("/checkout", d.CartHandler.Quote)
	v1.POST("/checkout/confirm", d.CartHandler.ConfirmCheckout)
}
