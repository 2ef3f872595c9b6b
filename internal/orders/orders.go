// Package orders owns the order lifecycle: creation with its balance
// debit, and the status state machine with its side-effect fan-out.
package orders

import (
	"errors"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"
	"go-topup-store/internal/provider"
	"go-topup-store/internal/wallet"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrServiceNotFound     = errors.New("service not found or disabled")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserDisabled        = errors.New("user account is disabled")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	UserID         uint
	ServiceID      uint
	Input          provider.OrderInput
	PayFromBalance bool
}

// Create places a new pending order. The balance check and debit happen in
// the same transaction as the insert, with the user row locked, so two
// concurrent orders cannot both spend the same balance.
func Create(db *gorm.DB, input CreateInput) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		// 1. The buyer must exist and be active
		var user models.User
		if err := database.ForUpdate(tx).First(&user, input.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if !user.Active {
			return ErrUserDisabled
		}

		// 2. The service and its group must be active
		var service models.Service
		if err := tx.Where("id = ? AND active = ?", input.ServiceID, true).First(&service).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return err
		}
		var group models.ServiceGroup
		if err := tx.Where("id = ? AND active = ?", service.GroupID, true).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return err
		}

		// 3. Validate the identifier against the group's input type
		if err := input.Input.Validate(group.InputType); err != nil {
			return err
		}

		// 4. Resolve the VIP-adjusted price and debit the wallet
		price := EffectivePrice(tx, &user, &service)

		if input.PayFromBalance {
			if user.Balance < price {
				return ErrInsufficientBalance
			}
			if err := wallet.Adjust(tx, user.ID, -price); err != nil {
				return err
			}
		}

		// 5. Orders are always born pending
		order = models.Order{
			UserID:          user.ID,
			ServiceID:       service.ID,
			UserInputID:     input.Input.Encode(),
			Price:           price,
			PaidFromBalance: input.PayFromBalance,
			Status:          models.OrderPending,
		}
		return tx.Create(&order).Error
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}
