package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers are the storefront endpoint handlers
type Handlers struct {
	Auth          *handler.AuthHandler
	Products      *handler.ProductHandler
	Cart          *handler.CartHandler
	Orders        *handler.OrderHandler
	Shipping      *handler.ShippingHandler
	Payments      *handler.PaymentWebhookHandler
	Profile       *handler.ProfileHandler
	Wishlist      *handler.WishlistHandler
	Notifications *handler.NotificationHandler
	Realtime      *handler.RealtimeHandler
	Admin         *handler.AdminHandler
	System        *handler.SystemHandler
}

// Guards are the per-group middleware. Any of them may be nil.
type Guards struct {
	// RequireAuth rejects requests without a valid bearer token
	RequireAuth gin.HandlerFunc
	// OptionalAuth identifies the caller when a token is present
	OptionalAuth gin.HandlerFunc
	// SocketAuth also accepts the token as a query parameter
	SocketAuth gin.HandlerFunc
	// RequireAdmin runs after RequireAuth on the admin group
	RequireAdmin gin.HandlerFunc
	// AuthRateLimit throttles the credential endpoints
	AuthRateLimit gin.HandlerFunc
	// AfterAuth runs once the caller is known, e.g. span enrichment
	AfterAuth gin.HandlerFunc
}

// Storefront builds the /api route groups
func Storefront(h Handlers, g Guards) []*DomainGroup {
	auth := NewDomainGroup("auth", "/auth").Use(g.AuthRateLimit, g.OptionalAuth, g.AfterAuth)
	auth.POST("/signup/request-otp", h.Auth.RequestOTP)
	auth.POST("/signup/verify", h.Auth.VerifyOTP)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", g.RequireAuth, h.Auth.Logout)

	products := NewDomainGroup("catalog", "/products").Use(g.AfterAuth)
	products.GET("", h.Products.List)
	products.GET("/:id", h.Products.Get)

	cart := NewDomainGroup("cart", "/cart").Use(g.RequireAuth, g.AfterAuth)
	cart.GET("/get", h.Cart.Get)
	cart.POST("/add", h.Cart.Add)
	cart.PUT("/update", h.Cart.Update)
	cart.DELETE("/remove", h.Cart.Remove)
	cart.DELETE("/clear", h.Cart.Clear)

	orders := NewDomainGroup("orders", "/orders").Use(g.OptionalAuth, g.AfterAuth)
	orders.POST("/create-order", h.Orders.Create)
	orders.POST("/confirm-order", h.Orders.Confirm)
	orders.POST("/confirm-payment", h.Orders.ConfirmPayment)
	orders.GET("/get-orders", h.Orders.List)
	orders.GET("/get/:orderId", h.Orders.Get)
	orders.POST("/cancel-order/:orderId", h.Orders.Cancel)
	orders.GET("/invoice/:orderId", h.Orders.Invoice)

	shipping := NewDomainGroup("shipping", "/shiprocket").Use(g.AfterAuth)
	shipping.POST("/check-serviceability", h.Shipping.CheckServiceability)

	payments := NewDomainGroup("payments", "/payments").Use(g.AfterAuth)
	payments.POST("/cashfree/webhook", h.Payments.Cashfree)

	profile := NewDomainGroup("profile", "/profile").Use(g.RequireAuth, g.AfterAuth)
	profile.GET("", h.Profile.Get)
	profile.PUT("", h.Profile.Update)

	wishlist := NewDomainGroup("wishlist", "/wishlist").Use(g.RequireAuth, g.AfterAuth)
	wishlist.GET("", h.Wishlist.Get)
	wishlist.POST("/add", h.Wishlist.Add)
	wishlist.DELETE("/remove/:productId", h.Wishlist.Remove)

	notifications := NewDomainGroup("notifications", "/notifications").Use(g.RequireAuth, g.AfterAuth)
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.PUT("/read-all", h.Notifications.MarkAllRead)
	notifications.PUT("/:id/read", h.Notifications.MarkRead)

	realtime := NewDomainGroup("realtime", "/ws").Use(g.SocketAuth, g.AfterAuth)
	realtime.GET("/orders", h.Realtime.Orders)

	admin := NewDomainGroup("admin", "/admin").Use(g.RequireAuth, g.RequireAdmin, g.AfterAuth)
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/orders", h.Admin.ListOrders)
	admin.PUT("/orders/:orderId/status", h.Admin.UpdateOrderStatus)
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/products", h.Products.AdminList)
	admin.POST("/products", h.Products.Create)
	admin.PUT("/products/:id", h.Products.Update)
	admin.DELETE("/products/:id", h.Products.Delete)
	admin.POST("/products/:id/stock", h.Products.AdjustStock)
	admin.POST("/products/:id/images", h.Products.UploadImage)
	admin.DELETE("/products/:id/images", h.Products.RemoveImage)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)

	return []*DomainGroup{auth, products, cart, orders, shipping, payments, profile, wishlist, notifications, realtime, admin, system}
}

// MountProbes registers the liveness and readiness probes at the root,
// outside the API middleware
func MountProbes(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
	engine.GET("/healthz", system.Health)
	engine.GET("/ready", system.Ready)
}

// MountSwagger serves the API docs behind guard
func MountSwagger(engine *gin.Engine, guard gin.HandlerFunc) {
	handlers := compact([]gin.HandlerFunc{guard, ginSwagger.WrapHandler(swaggerFiles.Handler)})
	engine.GET("/swagger/*any", handlers...)
}
