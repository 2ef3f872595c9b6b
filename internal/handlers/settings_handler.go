package handlers

import (
	"net/http"
	"time"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET /api/settings ---
// Public store metadata (name, maintenance state) for the storefront shell.
func GetSettings(c *gin.Context) {
	var settings models.Settings
	if err := database.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// --- PUT /api/admin/settings ---
func UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := database.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := database.DB.Model(&settings).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// DashboardData is the admin landing page payload
type DashboardData struct {
	TotalRevenue    float64          `json:"total_revenue"`
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	PendingDeposits int64            `json:"pending_deposits"`
	UserCount       int64            `json:"user_count"`
	RecentOrders    []models.Order   `json:"recent_orders"`
}

// --- GET /api/admin/dashboard ---
func AdminDashboard(c *gin.Context) {
	var data DashboardData
	data.OrdersByStatus = make(map[string]int64)

	// 1. All-time completed revenue
	err := database.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderCompleted).
		Select("COALESCE(SUM(price), 0)").
		Scan(&data.TotalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	// 2. Order counts per status
	for _, status := range []string{models.OrderPending, models.OrderProcessing, models.OrderCompleted, models.OrderRejected} {
		var count int64
		if err := database.DB.Model(&models.Order{}).Where("status = ?", status).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}
		data.OrdersByStatus[status] = count
	}

	// 3. Work queue + user base size
	if err := database.DB.Model(&models.DepositRequest{}).Where("status = ?", models.DepositPending).Count(&data.PendingDeposits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count deposits"})
		return
	}
	if err := database.DB.Model(&models.User{}).Count(&data.UserCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	// 4. Last 10 orders, newest first
	err = database.DB.Preload("Service").Order("created_at desc").Limit(10).Find(&data.RecentOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// --- PUBLIC: BANK ACCOUNTS + AD BANNERS ---

func ListBankAccounts(c *gin.Context) {
	var accounts []models.BankAccount
	if err := database.DB.Where("active = ?", true).Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bank accounts"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func ListAdBanners(c *gin.Context) {
	var banners []models.AdBanner
	if err := database.DB.Where("active = ?", true).Order("sort_order").Find(&banners).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banners"})
		return
	}
	c.JSON(http.StatusOK, banners)
}

// --- ADMIN CRUD for bank accounts and banners ---

func CreateBankAccount(c *gin.Context) {
	var account models.BankAccount
	if err := c.ShouldBindJSON(&account); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	account.ID = 0
	if err := database.DB.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bank account"})
		return
	}
	c.JSON(http.StatusCreated, account)
}

func DeleteBankAccount(c *gin.Context) {
	result := database.DB.Delete(&models.BankAccount{}, c.Param("id"))
	if result.Error != nil || result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bank account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bank account deleted"})
}

func CreateAdBanner(c *gin.Context) {
	var banner models.AdBanner
	if err := c.ShouldBindJSON(&banner); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	banner.ID = 0
	if err := database.DB.Create(&banner).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create banner"})
		return
	}
	c.JSON(http.StatusCreated, banner)
}

func DeleteAdBanner(c *gin.Context) {
	result := database.DB.Delete(&models.AdBanner{}, c.Param("id"))
	if result.Error != nil || result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
}

// --- GET /api/admin/reports/sales?start=&end= ---
// Date-ranged revenue summary, shared with the AI assistant.
func SalesReport(c *gin.Context) {
	start, err1 := time.Parse("2006-01-02", c.DefaultQuery("start", "1970-01-01"))
	end, err2 := time.Parse("2006-01-02", c.DefaultQuery("end", "2099-12-31"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		return
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate sales"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_revenue": report.TotalRevenue,
		"total_orders":  report.TotalCount,
	})
}
