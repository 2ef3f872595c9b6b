package ledger

import (
	"errors"
	"time"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

	"gorm.io/gorm"
)

var ErrPeriodAlreadyClosed = errors.New("accounting period is already closed")

// ResolveCurrentPeriod returns the monthly period covering t, creating an
// open one if it does not exist yet. If the period exists but was closed,
// ErrPeriodClosed is returned and nothing is created: a closed month stays
// closed.
func ResolveCurrentPeriod(db *gorm.DB, t time.Time) (*models.AccountingPeriod, error) {
	year, month := t.Year(), int(t.Month())

	var period models.AccountingPeriod
	err := db.Where("year = ? AND month = ?", year, month).First(&period).Error
	if err == nil {
		if period.Status == models.PeriodClosed {
			return nil, ErrPeriodClosed
		}
		return &period, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	period = models.AccountingPeriod{Year: year, Month: &month, Status: models.PeriodOpen}
	if createErr := db.Create(&period).Error; createErr != nil {
		// Unique index on (year, month): another writer created the month
		// first, so use theirs
		var existing models.AccountingPeriod
		if err := db.Where("year = ? AND month = ?", year, month).First(&existing).Error; err != nil {
			return nil, createErr
		}
		if existing.Status == models.PeriodClosed {
			return nil, ErrPeriodClosed
		}
		return &existing, nil
	}
	return &period, nil
}

// ClosePeriod performs the one-way open -> closed transition. Existing
// entries are left untouched; the gate lives at entry-creation time.
func ClosePeriod(db *gorm.DB, periodID, closedBy uint) (*models.AccountingPeriod, error) {
	var period models.AccountingPeriod

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&period, periodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPeriodNotFound
			}
			return err
		}
		if period.Status == models.PeriodClosed {
			return ErrPeriodAlreadyClosed
		}

		now := time.Now()
		period.Status = models.PeriodClosed
		period.ClosedAt = &now
		period.ClosedBy = &closedBy
		return tx.Save(&period).Error
	})

	if err != nil {
		return nil, err
	}
	return &period, nil
}
