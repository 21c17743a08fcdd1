package controllers

import (
	"net/http"
	"strings"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/Company-KERL/Kerl-backend/services"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const noOrdersMessage = "No orders found for this user"

// OrderController handles order placement and order history.
type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles POST /orders. A replayed Idempotency-Key answers 200
// with the original order.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req, "Items and a complete address are required") {
		return
	}
	userID, ok := sessionUser(c, req.UserID)
	if !ok {
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	order, replayed, err := oc.orderService.CreateOrder(c.Request.Context(), userID, &req, key)
	if err != nil {
		abort(c, err)
		return
	}

	if replayed {
		c.JSON(http.StatusOK, gin.H{"message": "Order already created", "order": order})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// GetUserOrders handles GET /orders/:userId.
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	userID, ok := sessionUser(c, c.Param("userId"))
	if !ok {
		return
	}

	orders, err := oc.orderService.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": noOrdersMessage, "orders": []models.OrderView{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Orders retrieved successfully", "orders": orders})
}

// UpdateOrderStatus handles PUT /orders.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req, "orderId and status are required") {
		return
	}

	order, err := oc.orderService.UpdateOrderStatus(c.Request.Context(), req.OrderID, req.Status)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// DeleteOrder handles DELETE /orders/:orderId.
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	if err := oc.orderService.DeleteOrder(c.Request.Context(), c.Param("orderId")); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// GetAddresses handles GET /orders/addresses/:userId.
func (oc *OrderController) GetAddresses(c *gin.Context) {
	userID, ok := sessionUser(c, c.Param("userId"))
	if !ok {
		return
	}

	addresses, err := oc.orderService.GetAddresses(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}

	if len(addresses) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": noOrdersMessage, "addresses": []models.Address{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Addresses retrieved successfully", "addresses": addresses})
}
