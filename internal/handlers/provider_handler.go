package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"
	"go-topup-store/internal/orders"
	"go-topup-store/internal/provider"

	"github.com/gin-gonic/gin"
)

// --- ADMIN: PROVIDER CRUD ---

type ProviderRequest struct {
	Name     string `json:"name" binding:"required"`
	BaseURL  string `json:"base_url" binding:"required"`
	AuthType string `json:"auth_type" binding:"required"` // 'basic' or 'bearer'
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
	Active   *bool  `json:"active"`
}

func CreateProvider(c *gin.Context) {
	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, base_url and auth_type are required"})
		return
	}
	if req.AuthType != "basic" && req.AuthType != "bearer" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auth_type must be 'basic' or 'bearer'"})
		return
	}

	prov := models.ApiProvider{
		Name:     req.Name,
		BaseURL:  req.BaseURL,
		AuthType: req.AuthType,
		Username: req.Username,
		Password: req.Password,
		Token:    req.Token,
		Active:   true,
	}
	if req.Active != nil {
		prov.Active = *req.Active
	}
	if err := database.DB.Create(&prov).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create provider"})
		return
	}
	c.JSON(http.StatusCreated, prov)
}

func ListProviders(c *gin.Context) {
	var providers []models.ApiProvider
	if err := database.DB.Find(&providers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch providers"})
		return
	}
	c.JSON(http.StatusOK, providers)
}

func UpdateProvider(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider ID"})
		return
	}

	var prov models.ApiProvider
	if err := database.DB.First(&prov, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := database.DB.Model(&prov).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update provider"})
		return
	}
	c.JSON(http.StatusOK, prov)
}

// --- ADMIN: SERVICE MAPPINGS ---

type MappingRequest struct {
	ServiceID         uint   `json:"service_id" binding:"required"`
	ProviderID        uint   `json:"provider_id" binding:"required"`
	ExternalServiceID string `json:"external_service_id" binding:"required"`
	Active            *bool  `json:"active"`
}

func CreateServiceMapping(c *gin.Context) {
	var req MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_id, provider_id and external_service_id are required"})
		return
	}

	mapping := models.ApiServiceMapping{
		ServiceID:         req.ServiceID,
		ProviderID:        req.ProviderID,
		ExternalServiceID: req.ExternalServiceID,
		Active:            true,
	}
	if req.Active != nil {
		mapping.Active = *req.Active
	}
	if err := database.DB.Create(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mapping"})
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

func ListServiceMappings(c *gin.Context) {
	var mappings []models.ApiServiceMapping
	if err := database.DB.Find(&mappings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mappings"})
		return
	}
	c.JSON(http.StatusOK, mappings)
}

// --- GET /api/admin/api-order-logs?order_id= ---
func ListApiOrderLogs(c *gin.Context) {
	query := database.DB.Order("created_at desc")
	if raw := c.Query("order_id"); raw != "" {
		orderID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order_id"})
			return
		}
		query = query.Where("order_id = ?", orderID)
	}

	var logs []models.ApiOrderLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch API order logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

type WebhookPayload struct {
	Reference string `json:"reference"` // Our order id, echoed back by the partner
	OrderID   string `json:"order_id"`  // Some partners send it under this name
	Status    string `json:"status" binding:"required"`
	Message   string `json:"message"`
}

// --- POST /api/webhook/provider/:providerId ---
// Partner status callbacks. A matched callback goes through the same state
// machine as an admin action, so it carries the same side effects
// (refund on rejection, revenue entry on completion, notification).
func ProviderWebhook(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider ID"})
		return
	}

	var prov models.ApiProvider
	if err := database.DB.First(&prov, providerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}

	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	// 1. Resolve the local order from `reference` (preferred) or `order_id`
	reference := payload.Reference
	if reference == "" {
		reference = payload.OrderID
	}
	orderID, err := strconv.Atoi(reference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Callback did not include a usable order reference"})
		return
	}

	var existing models.Order
	if err := database.DB.First(&existing, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	// 2. The order is real, so log the callback against it
	database.DB.Create(&models.ApiOrderLog{
		OrderID:    existing.ID,
		ProviderID: prov.ID,
		Request:    "webhook: status=" + payload.Status + " message=" + payload.Message,
		Status:     "success",
	})

	// 3. Map the partner status onto ours; unknown statuses are acknowledged
	// but ignored
	newStatus, ok := provider.MapWebhookStatus(payload.Status)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "Status acknowledged, no transition applied"})
		return
	}

	reason := payload.Message
	if newStatus == models.OrderRejected && reason == "" {
		reason = "Rejected by provider"
	}

	order, effects, err := orders.UpdateStatus(database.DB, forwardingClient(), uint(orderID), newStatus, reason)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order is not in a state that accepts this callback"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply callback"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "side_effects": effects})
}
