// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/handlers"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/middleware"
	"github.com/atelier-textile/storefront-api/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Webhook  *handlers.WebhookHandler
	Product  *handlers.ProductHandler
	Category *handlers.CategoryHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
	Profile  *handlers.UserProfileHandler
	Contact  *handlers.ContactHandler
}

// Guards holds the authenticators used by route groups
type Guards struct {
	Tokens *auth.TokenVerifier
	Admin  *auth.AdminAuthenticator
}

// SetupRoutes mounts every route group
func SetupRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	SetupCatalogRoutes(rg, h)
	SetupCartRoutes(rg, h, g)
	SetupCheckoutRoutes(rg, h, g)
	SetupWebhookRoutes(rg, h)
	SetupContactRoutes(rg, h)
	SetupAccountRoutes(rg, h, g)
	SetupAdminRoutes(rg, h, g)
}

// SetupCatalogRoutes sets up public product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:slug", h.Product.GetProductBySlug)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.GetCategoryTree)
		categories.GET("/:id", h.Category.GetCategory)
		categories.GET("/:id/path", h.Category.GetCategoryPath)
	}
}

// SetupCartRoutes sets up session cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(g.Tokens))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.DELETE("/items", h.Cart.RemoveMatchingItem)
		cart.PATCH("/items/:lineId", h.Cart.UpdateItem)
		cart.DELETE("/items/:lineId", h.Cart.RemoveItem)
		cart.POST("/price", h.Cart.QuotePrice)
	}
}

// SetupCheckoutRoutes sets up checkout and post-payment routes. Guests may
// check out; a valid access token attributes the order.
func SetupCheckoutRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	optional := middleware.OptionalAuthMiddleware(g.Tokens)

	checkout := rg.Group("/checkout")
	checkout.Use(optional)
	{
		checkout.POST("", h.Checkout.Checkout)
		checkout.GET("/sessions/:id", h.Checkout.GetSession)
	}

	rg.POST("/orders/status", optional, h.Checkout.UpdateOrderStatus)
}

// SetupWebhookRoutes sets up payment provider webhooks
func SetupWebhookRoutes(rg *gin.RouterGroup, h Handlers) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.Webhook.Stripe)
	}
}

// SetupContactRoutes sets up the contact and quote forms
func SetupContactRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.POST("/contact", h.Contact.Contact)
	rg.POST("/quote", h.Contact.Quote)
}

// SetupAccountRoutes sets up routes of the signed-in customer
func SetupAccountRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	me := rg.Group("/me")
	me.Use(middleware.AuthMiddleware(g.Tokens))
	{
		me.GET("/profile", h.Profile.GetProfile)
		me.PUT("/profile", h.Profile.UpdateProfile)
		me.GET("/orders", h.Order.GetMyOrders)
		me.GET("/orders/:id", h.Order.GetMyOrder)
	}
}

// SetupAdminRoutes sets up back-office routes guarded by the admin token
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AdminMiddleware(g.Admin))
	{
		products := admin.Group("/products")
		{
			products.GET("", h.Product.AdminGetProducts)
			products.POST("", h.Product.AdminCreateProduct)
			products.GET("/:id", h.Product.AdminGetProduct)
			products.PUT("/:id", h.Product.AdminUpdateProduct)
			products.DELETE("/:id", h.Product.AdminDeleteProduct)
			products.PUT("/:id/variants", h.Product.AdminUpsertVariant)
			products.DELETE("/:id/variants/:variantId", h.Product.AdminDeleteVariant)
		}

		categories := admin.Group("/categories")
		{
			categories.GET("", h.Category.GetCategoryTree)
			categories.POST("", h.Category.AdminCreateCategory)
			categories.PUT("/:id", h.Category.AdminUpdateCategory)
			categories.DELETE("/:id", h.Category.AdminDeleteCategory)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", h.Order.AdminGetOrders)
			orders.GET("/:id", h.Order.AdminGetOrder)
			orders.PATCH("/:id/status", h.Order.AdminUpdateOrderStatus)
			orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
		}

		admin.GET("/exports/catalog.xlsx", h.Product.AdminExportCatalog)
	}
}
