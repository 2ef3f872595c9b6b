package orders

import (
	"math"

	"go-topup-store/internal/models"

	"gorm.io/gorm"
)

// EffectivePrice resolves what this user pays for the service. A VIP
// per-service override wins over the group's global percentage; users
// without a VIP group pay list price.
func EffectivePrice(db *gorm.DB, user *models.User, service *models.Service) float64 {
	if user.VipGroupID == nil {
		return service.Price
	}

	discount := 0.0

	var override models.VipServiceDiscount
	err := db.Where("vip_group_id = ? AND service_id = ?", *user.VipGroupID, service.ID).
		First(&override).Error
	if err == nil {
		discount = override.DiscountPercent
	} else {
		var group models.VipGroup
		if err := db.First(&group, *user.VipGroupID).Error; err == nil {
			discount = group.DiscountPercent
		}
	}

	if discount <= 0 {
		return service.Price
	}
	return round2(service.Price * (1 - discount/100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
