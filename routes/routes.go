// routes/routes.go
package routes

import (
	"go-storefront/controllers"
	"go-storefront/middleware"

	"github.com/gorilla/mux"
)

// Controllers bundles every handler set the router serves.
type Controllers struct {
	Users          *controllers.UserController
	Products       *controllers.ProductController
	Carts          *controllers.CartController
	Orders         *controllers.OrderController
	Addresses      *controllers.AddressController
	PaymentMethods *controllers.PaymentController
	Wishlists      *controllers.WishlistController
	Chat           *controllers.ChatController
	Health         *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	// Public routes
	router.HandleFunc("/register", c.Users.Register).Methods("POST")
	router.HandleFunc("/login", c.Users.Login).Methods("POST")
	router.HandleFunc("/verify", c.Users.VerifyEmail).Methods("GET")
	router.HandleFunc("/health", c.Health.Health).Methods("GET")

	// Product routes
	router.HandleFunc("/products", c.Products.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", c.Products.GetProductByID).Methods("GET")

	// Order tracking and support chat need no account
	router.HandleFunc("/api/tracking", c.Orders.TrackOrder).Methods("GET")
	router.HandleFunc("/api/ai/chat", c.Chat.Chat).Methods("POST")
	router.HandleFunc("/api/ai/chat/health", c.Chat.Health).Methods("GET")

	// Admin routes
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/products", c.Products.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", c.Products.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", c.Products.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/api/orders/{id}/status", c.Orders.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/api/orders/{id}/tracking", c.Orders.AddTrackingEvent).Methods("POST")

	// Protected routes
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", c.Users.GetProfile).Methods("GET")
	protected.HandleFunc("/products/{id}/reviews", c.Products.AddReview).Methods("POST")

	// Cart Routes
	protected.HandleFunc("/cart", c.Carts.GetCart).Methods("GET")
	protected.HandleFunc("/cart/add", c.Carts.AddToCart).Methods("POST")
	protected.HandleFunc("/cart/update", c.Carts.UpdateCart).Methods("PUT")
	protected.HandleFunc("/cart/remove/{id}", c.Carts.RemoveFromCart).Methods("DELETE")
	protected.HandleFunc("/cart/clear", c.Carts.ClearCart).Methods("DELETE")

	// Order Routes
	protected.HandleFunc("/api/orders", c.Orders.GetOrders).Methods("GET")
	protected.HandleFunc("/api/orders", c.Orders.PlaceOrder).Methods("POST")
	protected.HandleFunc("/api/orders/{id}", c.Orders.GetOrder).Methods("GET")
	protected.HandleFunc("/api/orders/{id}/cancel", c.Orders.CancelOrder).Methods("POST")

	// Address Routes
	protected.HandleFunc("/api/addresses", c.Addresses.GetAddresses).Methods("GET")
	protected.HandleFunc("/api/addresses", c.Addresses.CreateAddress).Methods("POST")
	protected.HandleFunc("/api/addresses/{id}", c.Addresses.UpdateAddress).Methods("PUT")
	protected.HandleFunc("/api/addresses/{id}", c.Addresses.DeleteAddress).Methods("DELETE")
	protected.HandleFunc("/api/addresses/{id}/default", c.Addresses.SetDefaultAddress).Methods("PUT")

	// Payment Routes
	protected.HandleFunc("/api/payment-methods", c.PaymentMethods.GetPaymentMethods).Methods("GET")
	protected.HandleFunc("/api/payment-methods", c.PaymentMethods.CreatePaymentMethod).Methods("POST")
	protected.HandleFunc("/api/payment-methods/{id}", c.PaymentMethods.UpdatePaymentMethod).Methods("PUT")
	protected.HandleFunc("/api/payment-methods/{id}", c.PaymentMethods.DeletePaymentMethod).Methods("DELETE")
	protected.HandleFunc("/api/payment-methods/{id}/default", c.PaymentMethods.SetDefaultPaymentMethod).Methods("PUT")

	// Wishlist Routes
	protected.HandleFunc("/api/wishlist", c.Wishlists.GetWishlist).Methods("GET")
	protected.HandleFunc("/api/wishlist/{productId}", c.Wishlists.AddToWishlist).Methods("POST")
	protected.HandleFunc("/api/wishlist/{productId}", c.Wishlists.RemoveFromWishlist).Methods("DELETE")
}
