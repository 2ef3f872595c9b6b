package handlers

import (
	"net/http"
	"strconv"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"
	"go-topup-store/internal/orders"

	"github.com/gin-gonic/gin"
)

// --- GET /api/catalog ---
// Public storefront listing: active groups with their active services.
// If the caller is logged in, prices reflect their VIP tier.
func GetCatalog(c *gin.Context) {
	var groups []models.ServiceGroup
	if err := database.DB.Where("active = ?", true).Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch catalog"})
		return
	}

	// Resolve the viewer for VIP pricing (optional - catalog is public)
	var viewer *models.User
	if userID, exists := c.Get("userID"); exists {
		var u models.User
		if err := database.DB.First(&u, userID).Error; err == nil {
			viewer = &u
		}
	}

	type servicePrice struct {
		models.Service
		EffectivePrice float64 `json:"effective_price"`
	}
	type groupWithServices struct {
		models.ServiceGroup
		Services []servicePrice `json:"services"`
	}

	var out []groupWithServices
	for _, g := range groups {
		var services []models.Service
		if err := database.DB.Where("group_id = ? AND active = ?", g.ID, true).Find(&services).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch catalog"})
			return
		}

		entry := groupWithServices{ServiceGroup: g}
		for _, s := range services {
			price := s.Price
			if viewer != nil {
				price = orders.EffectivePrice(database.DB, viewer, &s)
			}
			entry.Services = append(entry.Services, servicePrice{Service: s, EffectivePrice: price})
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, out)
}

// --- ADMIN: SERVICE GROUP CRUD ---

type ServiceGroupRequest struct {
	Name      string `json:"name" binding:"required"`
	Icon      string `json:"icon"`
	InputType string `json:"input_type" binding:"required"`
	Active    *bool  `json:"active"`
}

func CreateServiceGroup(c *gin.Context) {
	var req ServiceGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and input_type are required"})
		return
	}

	switch req.InputType {
	case "player_id", "email", "credentials":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_type must be player_id, email or credentials"})
		return
	}

	group := models.ServiceGroup{Name: req.Name, Icon: req.Icon, InputType: req.InputType, Active: true}
	if req.Active != nil {
		group.Active = *req.Active
	}
	if err := database.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service group"})
		return
	}
	c.JSON(http.StatusCreated, group)
}

func UpdateServiceGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.ServiceGroup
	if err := database.DB.First(&group, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service group not found"})
		return
	}

	// Partial update: only touch fields that were sent
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := database.DB.Model(&group).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service group"})
		return
	}
	c.JSON(http.StatusOK, group)
}

// --- ADMIN: SERVICE CRUD ---

type ServiceRequest struct {
	GroupID uint    `json:"group_id" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Price   float64 `json:"price" binding:"required,gt=0"`
	Active  *bool   `json:"active"`
}

func CreateService(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id, name and a positive price are required"})
		return
	}

	var group models.ServiceGroup
	if err := database.DB.First(&group, req.GroupID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service group not found"})
		return
	}

	service := models.Service{GroupID: req.GroupID, Name: req.Name, Price: req.Price, Active: true}
	if req.Active != nil {
		service.Active = *req.Active
	}
	if err := database.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}
	c.JSON(http.StatusCreated, service)
}

func UpdateService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := database.DB.Model(&service).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		return
	}
	c.JSON(http.StatusOK, service)
}

// --- ADMIN: VIP GROUPS ---

type VipGroupRequest struct {
	Name            string  `json:"name" binding:"required"`
	DiscountPercent float64 `json:"discount_percent" binding:"gte=0,lte=100"`
}

func CreateVipGroup(c *gin.Context) {
	var req VipGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and a 0-100 discount are required"})
		return
	}

	group := models.VipGroup{Name: req.Name, DiscountPercent: req.DiscountPercent}
	if err := database.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create VIP group"})
		return
	}
	c.JSON(http.StatusCreated, group)
}

func ListVipGroups(c *gin.Context) {
	var groups []models.VipGroup
	if err := database.DB.Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch VIP groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

type VipDiscountRequest struct {
	ServiceID       uint    `json:"service_id" binding:"required"`
	DiscountPercent float64 `json:"discount_percent" binding:"gte=0,lte=100"`
}

// --- POST /api/admin/vip-groups/:id/discounts ---
// Per-service override of the group's global percentage.
func SetVipServiceDiscount(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid VIP group ID"})
		return
	}

	var req VipDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_id and a 0-100 discount are required"})
		return
	}

	var group models.VipGroup
	if err := database.DB.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "VIP group not found"})
		return
	}

	// Upsert: one override per (group, service)
	var discount models.VipServiceDiscount
	err = database.DB.Where("vip_group_id = ? AND service_id = ?", groupID, req.ServiceID).First(&discount).Error
	if err == nil {
		discount.DiscountPercent = req.DiscountPercent
		err = database.DB.Save(&discount).Error
	} else {
		discount = models.VipServiceDiscount{
			VipGroupID:      uint(groupID),
			ServiceID:       req.ServiceID,
			DiscountPercent: req.DiscountPercent,
		}
		err = database.DB.Create(&discount).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save VIP discount"})
		return
	}
	c.JSON(http.StatusOK, discount)
}
