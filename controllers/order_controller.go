package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/services"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	CustomerID  string   `json:"customerId" binding:"required"`
	LensTypeIDs []string `json:"lensTypeIds" binding:"required,min=1,dive,required"`
	Notes       string   `json:"notes" binding:"max=1000"`
}

// UpdateOrderStatusRequest represents the request body for an admin status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrders handles GET /api/orders - lists orders with optional status and customer
// filters. Customers only ever see their own orders.
func ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Invalid numbers fall back to the defaults
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))

	list, err := services.NewOrderService(config.GetDB()).List(c.Request.Context(), userID, services.OrderListFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customerId"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, list)
}

// CreateOrder handles POST /api/orders
func CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := services.NewOrderService(config.GetDB()).Create(c.Request.Context(), userID, services.CreateOrderInput{
		CustomerID:  req.CustomerID,
		LensTypeIDs: req.LensTypeIDs,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusCreated, order, "Pedido criado com sucesso")
}

// GetOrder handles GET /api/orders/:id
func GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := services.NewOrderService(config.GetDB()).Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status (admins only)
func UpdateOrderStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := services.NewOrderService(config.GetDB()).UpdateStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, order, "Status do pedido atualizado com sucesso")
}
