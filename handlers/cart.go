package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/pricing"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts  *service.CartService
	logger *zap.Logger
}

func NewCartHandler(carts *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	respondData(c, http.StatusOK, h.carts.Get(c.Request.Context(), middleware.GetSessionID(c)), "")
}

type AddToCartRequest struct {
	RestaurantID string              `json:"restaurantId" binding:"required"`
	MenuItemID   string              `json:"menuItemId" binding:"required"`
	Quantity     int                 `json:"quantity"`
	Selections   map[string][]string `json:"selections"`
}

// AddItem adds a line. Adding from another restaurant replaces the cart and
// says so in the message.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "restaurantId and menuItemId are required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := h.carts.AddItem(c.Request.Context(), middleware.GetSessionID(c), service.AddToCartInput{
		RestaurantID: req.RestaurantID,
		MenuItemID:   req.MenuItemID,
		Quantity:     req.Quantity,
		Picks:        pricing.Picks(req.Selections),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Item added to cart"
	if res.Replaced {
		message = "Your cart had items from another restaurant and was replaced"
	}
	respondData(c, http.StatusCreated, res.Cart, message)
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateItem sets a line's quantity; zero removes the line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	state := h.carts.UpdateQuantity(c.Request.Context(), middleware.GetSessionID(c), c.Param("itemId"), *req.Quantity)
	respondData(c, http.StatusOK, state, "")
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	state := h.carts.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("itemId"))
	respondData(c, http.StatusOK, state, "")
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	state := h.carts.Clear(c.Request.Context(), middleware.GetSessionID(c))
	respondData(c, http.StatusOK, state, "Cart cleared")
}

type CheckoutRequest struct {
	UserID          string          `json:"userId"`
	DeliveryAddress *models.Address `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// Checkout places an order from the cart. The response carries the order
// and the grand total (items plus delivery).
func (h *CartHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	order, err := h.carts.Checkout(c.Request.Context(), middleware.GetSessionID(c), req.UserID, req.DeliveryAddress, req.PaymentMethod)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{
		"order":      order,
		"grandTotal": order.GrandTotal(),
	}, "Order created")
}
