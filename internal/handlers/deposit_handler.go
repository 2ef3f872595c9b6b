package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-topup-store/internal/database"
	"go-topup-store/internal/deposits"
	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
)

type CreateDepositRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	ReceiptURL string  `json:"receipt_url"`
}

// --- POST /api/deposit-requests ---
func CreateDeposit(c *gin.Context) {
	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A positive amount is required"})
		return
	}

	userID := c.MustGet("userID").(uint)

	deposit := models.DepositRequest{
		UserID:     userID,
		Amount:     req.Amount,
		ReceiptURL: req.ReceiptURL,
		Status:     models.DepositPending,
	}
	if err := database.DB.Create(&deposit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deposit request"})
		return
	}

	c.JSON(http.StatusCreated, deposit)
}

// --- GET /api/deposit-requests/me ---
func MyDeposits(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var list []models.DepositRequest
	err := database.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposit requests"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// --- GET /api/admin/deposit-requests?status= ---
func AdminListDeposits(c *gin.Context) {
	query := database.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var list []models.DepositRequest
	if err := query.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposit requests"})
		return
	}

	c.JSON(http.StatusOK, list)
}

type ReviewDepositRequest struct {
	Action          string   `json:"action" binding:"required"` // 'approve' or 'reject'
	ApprovedAmount  *float64 `json:"approved_amount"`
	FundID          *uint    `json:"fund_id"`
	RejectionReason string   `json:"rejection_reason"`
}

// --- PATCH /api/admin/deposit-requests/:id ---
func ReviewDeposit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit ID"})
		return
	}

	var req ReviewDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action is required"})
		return
	}

	var deposit *models.DepositRequest

	switch req.Action {
	case "approve":
		// Approval needs both the amount actually received and the fund it landed in
		if req.ApprovedAmount == nil || req.FundID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "approved_amount and fund_id are required to approve"})
			return
		}
		deposit, err = deposits.Approve(database.DB, uint(id), *req.ApprovedAmount, *req.FundID)
	case "reject":
		if req.RejectionReason == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rejection_reason is required to reject"})
			return
		}
		deposit, err = deposits.Reject(database.DB, uint(id), req.RejectionReason)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be 'approve' or 'reject'"})
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, deposits.ErrDepositNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit request not found"})
		case errors.Is(err, deposits.ErrNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This deposit request was already reviewed"})
		case errors.Is(err, deposits.ErrFundNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fund not found"})
		case errors.Is(err, deposits.ErrBadAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Approved amount must be positive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review deposit request"})
		}
		return
	}

	c.JSON(http.StatusOK, deposit)
}
