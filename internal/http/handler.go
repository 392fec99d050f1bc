package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reefcloud/catalog-provision-service/internal/models"
	"github.com/reefcloud/catalog-provision-service/internal/repository"
	"github.com/reefcloud/catalog-provision-service/internal/service"
)

type Handler struct {
	orderService *service.OrderService
}

func NewHandler(orderService *service.OrderService) *Handler {
	return &Handler{orderService: orderService}
}

// CreateOrderItem orders a product instance. Provisioning is asynchronous:
// the response only acknowledges that the attempt was scheduled.
func (h *Handler) CreateOrderItem(c *gin.Context) {
	var req models.CreateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.orderService.CreateOrderItem(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// RetireOrderItem schedules retirement of a provisioned resource.
func (h *Handler) RetireOrderItem(c *gin.Context) {
	orderItemID := c.Param("id")
	if orderItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order item id required"})
		return
	}

	resp, err := h.orderService.RetireOrderItem(c.Request.Context(), orderItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// DeleteOrderItem soft-deletes an order item record.
func (h *Handler) DeleteOrderItem(c *gin.Context) {
	orderItemID := c.Param("id")
	if orderItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order item id required"})
		return
	}

	if err := h.orderService.DeleteOrderItem(c.Request.Context(), orderItemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order item deleted"})
}

// GetOrderItem returns the current state of an order item.
func (h *Handler) GetOrderItem(c *gin.Context) {
	orderItemID := c.Param("id")
	if orderItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order item id required"})
		return
	}

	resp, err := h.orderService.GetOrderItem(c.Request.Context(), orderItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order item not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetOrderItems lists the items of an order.
func (h *Handler) GetOrderItems(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id required"})
		return
	}

	resp, err := h.orderService.GetOrderItems(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_items": resp})
}

// GetOrderItemLogs returns the provisioning audit trail.
func (h *Handler) GetOrderItemLogs(c *gin.Context) {
	orderItemID := c.Param("id")
	if orderItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order item id required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.orderService.GetOrderItemLogs(c.Request.Context(), orderItemID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": resp})
}
