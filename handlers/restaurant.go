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

type RestaurantHandler struct {
	catalog service.RestaurantCatalog
	logger  *zap.Logger
}

func NewRestaurantHandler(catalog service.RestaurantCatalog, logger *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{catalog: catalog, logger: logger}
}

// ListRestaurants supports ?category=, ?search= and ?isOpen=true
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	openOnly, _ := strconv.ParseBool(c.Query("isOpen"))
	filter := models.RestaurantFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		OpenOnly: openOnly,
	}
	restaurants, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, restaurants, len(restaurants))
}

func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	restaurant, err := h.catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, restaurant, "")
}

// GetMenu returns the menu categories, optionally narrowed by ?category=
func (h *RestaurantHandler) GetMenu(c *gin.Context) {
	restaurant, err := h.catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	menu := restaurant.Menu
	if category := c.Query("category"); category != "" {
		menu = []models.MenuCategory{}
		for _, mc := range restaurant.Menu {
			if mc.ID == category || mc.Name == category {
				menu = append(menu, mc)
			}
		}
	}
	respondList(c, menu, len(menu))
}

type CreateRestaurantRequest struct {
	Name         string                `json:"name"`
	Image        string                `json:"image"`
	DeliveryTime string                `json:"deliveryTime"`
	DeliveryFee  decimal.Decimal       `json:"deliveryFee"`
	Category     string                `json:"category"`
	Description  string                `json:"description"`
	IsOpen       *bool                 `json:"isOpen"`
	Menu         []models.MenuCategory `json:"menu"`
}

func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	isOpen := true
	if req.IsOpen != nil {
		isOpen = *req.IsOpen
	}
	restaurant := &models.Restaurant{
		Name:         req.Name,
		Image:        req.Image,
		DeliveryTime: req.DeliveryTime,
		DeliveryFee:  req.DeliveryFee,
		Category:     req.Category,
		Description:  req.Description,
		IsOpen:       isOpen,
		Menu:         req.Menu,
	}
	if err := h.catalog.Create(c.Request.Context(), restaurant); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, restaurant, "Restaurant created")
}

func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	var req models.RestaurantUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	restaurant, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, restaurant, "Restaurant updated")
}

func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	restaurant, err := h.catalog.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, restaurant, "Restaurant removed")
}
