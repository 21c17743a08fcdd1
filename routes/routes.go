package routes

import (
	"net/http"

	"github.com/Company-KERL/Kerl-backend/controllers"
	"github.com/Company-KERL/Kerl-backend/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers bundles the handlers registered on the router.
type Controllers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Payment *controllers.PaymentController
}

// RegisterRoutes wires every endpoint. Session-protected groups resolve the
// user through tokens.
func RegisterRoutes(r *gin.Engine, h Controllers, tokens middleware.TokenValidator) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "OK"})
	})

	auth := middleware.AuthMiddleware(tokens)

	r.POST("/signup", h.Auth.Signup)
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/profile", auth, h.Auth.GetProfile)
	r.PUT("/profile", auth, h.Auth.UpdateUser)
	r.GET("/check-auth", auth, h.Auth.CheckAuth)

	products := r.Group("/products")
	{
		products.POST("", h.Product.CreateProduct)
		products.GET("", h.Product.GetProducts)
		products.GET("/:id", h.Product.GetProduct)
		products.PUT("/:id", h.Product.UpdateProduct)
		products.DELETE("/:id", h.Product.DeleteProduct)
		products.POST("/:id/images/presign", h.Product.PresignImageUpload)
	}

	cart := r.Group("/cart", auth)
	{
		cart.POST("", h.Cart.AddItem)
		cart.DELETE("", h.Cart.RemoveItem)
		cart.PUT("", h.Cart.UpdateItemQuantity)
		cart.GET("/:userId", h.Cart.GetItems)
		cart.GET("/:userId/length", h.Cart.GetLength)
		cart.DELETE("/:userId", h.Cart.ClearCart)
	}

	orders := r.Group("/orders", auth)
	{
		orders.POST("", h.Order.CreateOrder)
		orders.PUT("", h.Order.UpdateOrderStatus)
		orders.GET("/addresses/:userId", h.Order.GetAddresses)
		orders.GET("/:userId", h.Order.GetUserOrders)
		orders.DELETE("/:orderId", h.Order.DeleteOrder)
	}

	// Stripe deliveries carry no session.
	r.POST("/payments/webhook/stripe", h.Payment.StripeWebhook)

	payments := r.Group("/payments", auth)
	{
		payments.POST("", h.Payment.CreatePayment)
		payments.PUT("", h.Payment.UpdatePayment)
		payments.GET("/:orderId", h.Payment.GetPayment)
	}
}
