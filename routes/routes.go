package routes

import (
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Restaurants *handlers.RestaurantHandler
	Orders      *handlers.OrderHandler
	Cart        *handlers.CartHandler
	Sessions    *middleware.SessionIssuer
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", handlers.Health)

	api := r.Group("/api")

	// ── Restaurants ────────────────────────────────────────────────
	{
		api.GET("/restaurants", h.Restaurants.ListRestaurants)
		api.POST("/restaurants", h.Restaurants.CreateRestaurant)
		api.GET("/restaurants/:id", h.Restaurants.GetRestaurant)
		api.PUT("/restaurants/:id", h.Restaurants.UpdateRestaurant)
		api.DELETE("/restaurants/:id", h.Restaurants.DeleteRestaurant)
		api.GET("/restaurants/:id/menu", h.Restaurants.GetMenu)
	}

	// ── Orders ─────────────────────────────────────────────────────
	{
		api.GET("/orders", h.Orders.ListOrders)
		api.POST("/orders", h.Orders.CreateOrder)
		api.GET("/orders/:id", h.Orders.GetOrder)
		api.PUT("/orders/:id/cancel", h.Orders.CancelOrder)
		api.PUT("/orders/:id/status", h.Orders.UpdateOrderStatus)
		api.GET("/orders/:id/history", h.Orders.GetOrderHistory)
		api.GET("/orders/:id/tracking", h.Orders.GetTracking)
		api.GET("/orders/:id/qrcode", h.Orders.GetQRCode)
	}

	// ── Cart (session token in X-Cart-Session) ─────────────────────
	cart := api.Group("/cart")
	cart.Use(middleware.CartSession(h.Sessions))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:itemId", h.Cart.UpdateItem)
		cart.DELETE("/items/:itemId", h.Cart.RemoveItem)
		cart.POST("/checkout", h.Cart.Checkout)
	}

	// State machine info
	api.GET("/state-machine", handlers.GetStateMachineInfo)
}
