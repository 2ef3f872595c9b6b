package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"
	"go-topup-store/internal/orders"
	"go-topup-store/internal/provider"

	"github.com/gin-gonic/gin"
)

// The forwarding client is shared across requests; built lazily so the
// .env file is loaded before the timeout setting is read.
var (
	providerClientOnce sync.Once
	providerClient     *provider.Client
)

func forwardingClient() *provider.Client {
	providerClientOnce.Do(func() {
		providerClient = provider.NewClient()
	})
	return providerClient
}

type CreateOrderRequest struct {
	ServiceID      uint                `json:"service_id" binding:"required"`
	Input          provider.OrderInput `json:"input"`
	PayFromBalance bool                `json:"pay_from_balance"`
}

// --- POST /api/orders ---
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := c.MustGet("userID").(uint)

	order, err := orders.Create(database.DB, orders.CreateInput{
		UserID:         userID,
		ServiceID:      req.ServiceID,
		Input:          req.Input,
		PayFromBalance: req.PayFromBalance,
	})

	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, orders.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found or disabled"})
		case errors.Is(err, orders.ErrUserDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "This account has been disabled"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// --- GET /api/orders/me ---
func MyOrders(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var list []models.Order
	err := database.DB.Preload("Service").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// --- GET /api/admin/orders?status= ---
func AdminListOrders(c *gin.Context) {
	query := database.DB.Preload("Service").Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var list []models.Order
	if err := query.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, list)
}

type UpdateOrderStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// --- PATCH /api/orders/:id/status ---
// Drives the state machine. The response includes the side-effect report
// so the admin UI can show what actually happened (forwarding outcome,
// journal entry, refund).
func UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	order, effects, err := orders.UpdateStatus(database.DB, forwardingClient(), uint(id), req.Status, req.RejectionReason)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This status transition is not allowed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":        order,
		"side_effects": effects,
	})
}
