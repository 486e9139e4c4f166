package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/server/http/handlers"
	"github.com/polkiloo/beautymart/internal/server/http/middleware"
)

// maxRequestBody caps inflated request bodies.
const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/admin", authHandler.AdminLogin)

	authRequired := middleware.AuthRequired(facade)

	cart := api.Group("/cart", authRequired)
	cart.GET("", cartHandler.Get)
	cart.POST("/add", cartHandler.Add)
	cart.POST("/update", cartHandler.Update)

	order := api.Group("/order")
	order.POST("/webhook/stripe", orderHandler.StripeWebhook)

	customer := order.Group("", authRequired)
	customer.POST("/place", orderHandler.Place(model.PaymentCOD))
	customer.POST("/stripe", orderHandler.Place(model.PaymentStripe))
	customer.POST("/razorpay", orderHandler.Place(model.PaymentRazorpay))
	customer.POST("/paypal", orderHandler.Place(model.PaymentPayPal))
	customer.POST("/verifyStripe", orderHandler.VerifyStripe)
	customer.POST("/verifyRazorpay", orderHandler.VerifyRazorpay)
	customer.POST("/verifyPaypal", orderHandler.VerifyPayPal)
	customer.GET("/user", orderHandler.UserOrders)

	admin := order.Group("", authRequired, middleware.AdminRequired())
	admin.GET("/list", orderHandler.List)
	admin.POST("/status", orderHandler.UpdateStatus)

	return engine
}
