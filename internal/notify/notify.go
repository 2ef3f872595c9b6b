// Package notify creates per-user notification rows. Callers treat pushes
// as best-effort: a failed notification must never fail the operation that
// triggered it.
package notify

import (
	"go-topup-store/internal/models"

	"gorm.io/gorm"
)

const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeError   = "error"
	TypeOrder   = "order"
)

// Push inserts one notification for the user.
func Push(db *gorm.DB, userID uint, ntype, title, message string) error {
	return db.Create(&models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}).Error
}

// PushOrder inserts a notification linked to a specific order.
func PushOrder(db *gorm.DB, userID, orderID uint, ntype, title, message string) error {
	return db.Create(&models.Notification{
		UserID:         userID,
		Type:           ntype,
		Title:          title,
		Message:        message,
		RelatedOrderID: &orderID,
	}).Error
}
