package handlers

import (
	"net/http"
	"strconv"

	"food-ordering-api/models"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders *service.OrderService
	qr     *service.OrderQRCode
	logger *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, qr *service.OrderQRCode, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, qr: qr, logger: logger}
}

// ListOrders supports ?userId=, ?status= and ?limit=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{
		UserID: c.Query("userId"),
		Status: models.OrderStatus(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, orders, len(orders))
}

// Required fields are checked by the service so a missing one yields a
// readable message.
type CreateOrderRequest struct {
	UserID          string            `json:"userId"`
	RestaurantID    string            `json:"restaurantId"`
	RestaurantName  string            `json:"restaurantName"`
	Items           []models.CartItem `json:"items"`
	DeliveryAddress *models.Address   `json:"deliveryAddress"`
	DeliveryFee     *decimal.Decimal  `json:"deliveryFee"`
	PaymentMethod   string            `json:"paymentMethod"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:          req.UserID,
		RestaurantID:    req.RestaurantID,
		RestaurantName:  req.RestaurantName,
		Items:           req.Items,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryFee:     req.DeliveryFee,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, order, "Order created")
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, order, "")
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, order, "Order cancelled")
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, order, "Order status updated")
}

func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	history, err := h.orders.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, history, len(history))
}

func (h *OrderHandler) GetTracking(c *gin.Context) {
	view, err := h.orders.Tracking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, view, "")
}

// GetQRCode serves a PNG linking to the order page
func (h *OrderHandler) GetQRCode(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	png, err := h.qr.PNG(order.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
