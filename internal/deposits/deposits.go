// Package deposits implements the admin review flow for balance top-up
// requests: pending -> approved (credits the wallet, posts a journal
// entry against a fund) or pending -> rejected. Both transitions are
// one-shot; there is no reset path.
package deposits

import (
	"errors"
	"fmt"
	"log"

	"go-topup-store/internal/database"
	"go-topup-store/internal/ledger"
	"go-topup-store/internal/models"
	"go-topup-store/internal/notify"
	"go-topup-store/internal/wallet"

	"gorm.io/gorm"
)

var (
	ErrDepositNotFound = errors.New("deposit request not found")
	ErrNotPending      = errors.New("deposit request was already reviewed")
	ErrFundNotFound    = errors.New("fund not found")
	ErrBadAmount       = errors.New("approved amount must be positive")
)

// Approve credits the user's balance by approvedAmount (which may differ
// from the requested amount) and stamps the request. The credit and the
// status change commit together; the journal entry and notification follow
// best-effort, mirroring how order completion treats its side effects.
func Approve(db *gorm.DB, depositID uint, approvedAmount float64, fundID uint) (*models.DepositRequest, error) {
	if approvedAmount <= 0 {
		return nil, ErrBadAmount
	}

	var deposit models.DepositRequest
	var fund models.Fund

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&deposit, depositID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDepositNotFound
			}
			return err
		}
		if deposit.Status != models.DepositPending {
			return ErrNotPending
		}

		if err := tx.First(&fund, fundID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFundNotFound
			}
			return err
		}

		if err := wallet.Adjust(tx, deposit.UserID, approvedAmount); err != nil {
			return err
		}

		deposit.Status = models.DepositApproved
		deposit.ApprovedAmount = &approvedAmount
		deposit.FundID = &fundID
		return tx.Save(&deposit).Error
	})

	if err != nil {
		return nil, err
	}

	// The fund's running balance moves with the journal entry's fund line
	if _, err := ledger.PostDepositEntry(db, &deposit, &fund, approvedAmount); err != nil {
		log.Printf("Warning: journal entry for deposit %d not posted: %v", deposit.ID, err)
	}

	msg := fmt.Sprintf("Your deposit request #%d was approved. %.2f was added to your balance.", deposit.ID, approvedAmount)
	if err := notify.Push(db, deposit.UserID, notify.TypeSuccess, "Deposit approved", msg); err != nil {
		log.Printf("Warning: notification for deposit %d not sent: %v", deposit.ID, err)
	}

	return &deposit, nil
}

// Reject stamps the request with the reason and tells the user. No money
// moves.
func Reject(db *gorm.DB, depositID uint, reason string) (*models.DepositRequest, error) {
	var deposit models.DepositRequest

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&deposit, depositID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDepositNotFound
			}
			return err
		}
		if deposit.Status != models.DepositPending {
			return ErrNotPending
		}

		deposit.Status = models.DepositRejected
		deposit.RejectionReason = reason
		return tx.Save(&deposit).Error
	})

	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your deposit request #%d was rejected. Reason: %s", deposit.ID, reason)
	if err := notify.Push(db, deposit.UserID, notify.TypeError, "Deposit rejected", msg); err != nil {
		log.Printf("Warning: notification for deposit %d not sent: %v", deposit.ID, err)
	}

	return &deposit, nil
}
