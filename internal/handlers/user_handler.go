package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"
	"go-topup-store/internal/notify"
	"go-topup-store/internal/wallet"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- GET /api/me ---
func Me(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- GET /api/admin/users ---
func AdminListUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type SetBalanceRequest struct {
	Balance float64 `json:"balance"`
}

// --- PUT /api/admin/users/:id/balance ---
// Admins set an absolute balance; the difference is applied through the
// wallet service so this stays an atomic adjustment like every other
// balance write. Negative targets are allowed.
func AdminSetBalance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Balance is required"})
		return
	}

	var user models.User
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&user, id).Error; err != nil {
			return err
		}
		return wallet.Adjust(tx, user.ID, req.Balance-user.Balance)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, wallet.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		}
		return
	}

	msg := fmt.Sprintf("An administrator set your balance to %.2f.", req.Balance)
	if err := notify.Push(database.DB, user.ID, notify.TypeInfo, "Balance updated", msg); err != nil {
		log.Printf("Warning: balance notification for user %d not sent: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Balance updated", "balance": req.Balance})
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// --- PUT /api/admin/users/:id/active ---
func AdminSetUserActive(c *gin.Context) {
	id := c.Param("id")

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Active flag is required"})
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("active", *req.Active)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

type AssignVipRequest struct {
	VipGroupID *uint `json:"vip_group_id"` // Null clears the tier
}

// --- PUT /api/admin/users/:id/vip-group ---
func AdminAssignVipGroup(c *gin.Context) {
	id := c.Param("id")

	var req AssignVipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if req.VipGroupID != nil {
		var group models.VipGroup
		if err := database.DB.First(&group, *req.VipGroupID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VIP group not found"})
			return
		}
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("vip_group_id", req.VipGroupID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "VIP group updated"})
}
