// Package wallet is the single writer of users.balance. Every balance
// movement in the system (order debit, rejection refund, reset re-debit,
// deposit credit, admin adjustment) goes through Adjust.
package wallet

import (
	"errors"

	"go-topup-store/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// Adjust applies a delta to a user's balance as a single atomic UPDATE
// (balance = balance + delta), so concurrent adjustments can never lose
// updates. Negative results are allowed.
func Adjust(db *gorm.DB, userID uint, delta float64) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
