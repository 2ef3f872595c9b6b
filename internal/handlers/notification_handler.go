package handlers

import (
	"net/http"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET /api/notifications ---
func MyNotifications(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var list []models.Notification
	err := database.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(100).
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- GET /api/notifications/unread-count ---
func UnreadNotificationCount(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var count int64
	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// --- POST /api/notifications/:id/read ---
func MarkNotificationRead(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id := c.Param("id")

	// Scoped to the user so nobody can mark someone else's notification
	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// --- POST /api/notifications/read-all ---
func MarkAllNotificationsRead(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
