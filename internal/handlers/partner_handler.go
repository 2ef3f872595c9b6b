package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"
	"go-topup-store/internal/orders"
	"go-topup-store/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// --- ADMIN: API TOKEN MANAGEMENT ---

type CreateTokenRequest struct {
	UserID      uint   `json:"user_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	IPAllowlist string `json:"ip_allowlist"`
}

// CreateApiToken mints a partner token. The raw token is returned exactly
// once, in this response; only its row is kept.
func CreateApiToken(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and name are required"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, req.UserID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
		return
	}

	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")

	token := models.ApiToken{
		UserID:      req.UserID,
		Name:        req.Name,
		Token:       raw,
		IPAllowlist: req.IPAllowlist,
		Active:      true,
	}
	if err := database.DB.Create(&token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    token.ID,
		"name":  token.Name,
		"token": raw, // Shown once. Store it now.
	})
}

func ListApiTokens(c *gin.Context) {
	var tokens []models.ApiToken
	if err := database.DB.Find(&tokens).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch API tokens"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func RevokeApiToken(c *gin.Context) {
	id := c.Param("id")
	result := database.DB.Model(&models.ApiToken{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke API token"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "API token not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "API token revoked"})
}

// --- PARTNER-FACING V1 API (ApiTokenAuth) ---

type PartnerOrderRequest struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	UserInput string `json:"user_input" binding:"required"` // Composite form: "1234|zone:5"
}

// --- POST /api/v1/order ---
// Creates an order billed against the wallet of the token's owner.
func PartnerCreateOrder(c *gin.Context) {
	var req PartnerOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_id and user_input are required"})
		return
	}

	input, err := provider.ParseOrderInput(req.UserInput)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_input could not be parsed"})
		return
	}

	userID := c.MustGet("userID").(uint)

	order, err := orders.Create(database.DB, orders.CreateInput{
		UserID:         userID,
		ServiceID:      req.ServiceID,
		Input:          input,
		PayFromBalance: true, // Partner orders always draw on the token owner's wallet
	})
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, orders.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found or disabled"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"price":    order.Price,
	})
}

type PartnerStatusRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// --- POST /api/v1/order-status ---
func PartnerOrderStatus(c *gin.Context) {
	var req PartnerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	userID := c.MustGet("userID").(uint)

	// Partners can only see their own orders
	var order models.Order
	if err := database.DB.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":         order.ID,
		"status":           order.Status,
		"rejection_reason": order.RejectionReason,
		"created_at":       order.CreatedAt,
	})
}
