// Package ledger implements the double-entry bookkeeping core: balanced
// journal entries, sequential entry numbers, fund balances, accounting
// periods and the reports derived from them.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

	"gorm.io/gorm"
)

// BalanceEpsilon is the tolerance when comparing total debits to total
// credits. Amounts are stored as float64, so an exact == would reject
// entries that are balanced for any human reading of the numbers.
const BalanceEpsilon = 0.01

var (
	ErrTooFewLines     = errors.New("a journal entry needs at least two lines")
	ErrUnbalanced      = errors.New("journal entry debits and credits are not equal")
	ErrAccountNotFound = errors.New("journal line references an unknown account")
	ErrPeriodNotFound  = errors.New("accounting period not found")
	ErrPeriodClosed    = errors.New("accounting period is closed")
)

// LineInput is one leg of an entry to be created.
type LineInput struct {
	AccountID uint    `json:"account_id" binding:"required"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	FundID    *uint   `json:"fund_id"`
	Memo      string  `json:"memo"`
}

// EntryInput is a journal entry header plus its lines.
type EntryInput struct {
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	SourceType  string      `json:"source_type"` // 'manual', 'order', 'deposit', 'closing'
	SourceID    *uint       `json:"source_id"`
	PeriodID    *uint       `json:"period_id"`
	Lines       []LineInput `json:"lines" binding:"required"`
}

// CreateEntry validates and persists a journal entry atomically:
// header, lines, fund balance deltas and fund transactions either all
// land or none do. The entry number is assigned inside the transaction
// so concurrent writers get distinct, increasing numbers.
func CreateEntry(db *gorm.DB, input EntryInput) (*models.JournalEntry, error) {
	// 1. Shape checks before touching the database
	if len(input.Lines) < 2 {
		return nil, ErrTooFewLines
	}

	var totalDebit, totalCredit float64
	for _, line := range input.Lines {
		totalDebit += line.Debit
		totalCredit += line.Credit
	}
	if math.Abs(totalDebit-totalCredit) > BalanceEpsilon {
		return nil, ErrUnbalanced
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if input.SourceType == "" {
		input.SourceType = "manual"
	}

	var entry models.JournalEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		// 2. Every line must reference an existing account
		for _, line := range input.Lines {
			var count int64
			if err := tx.Model(&models.Account{}).Where("id = ?", line.AccountID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrAccountNotFound
			}
		}

		// 3. If the entry targets a period, that period must exist and be open
		if input.PeriodID != nil {
			var period models.AccountingPeriod
			if err := tx.First(&period, *input.PeriodID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPeriodNotFound
				}
				return err
			}
			if period.Status == models.PeriodClosed {
				return ErrPeriodClosed
			}
		}

		// 4. Assign the next sequential entry number under a row lock
		var maxNumber int
		if err := database.ForUpdate(tx.Model(&models.JournalEntry{})).
			Select("COALESCE(MAX(entry_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		entry = models.JournalEntry{
			EntryNumber: maxNumber + 1,
			Date:        input.Date,
			Description: input.Description,
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			SourceType:  input.SourceType,
			SourceID:    input.SourceID,
			PeriodID:    input.PeriodID,
		}
		for _, line := range input.Lines {
			entry.Lines = append(entry.Lines, models.JournalLine{
				AccountID: line.AccountID,
				Debit:     line.Debit,
				Credit:    line.Credit,
				FundID:    line.FundID,
				Memo:      line.Memo,
			})
		}

		// GORM inserts the lines together with the header
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		// 5. Lines carrying a fund move that fund's running balance
		for _, line := range entry.Lines {
			if line.FundID == nil {
				continue
			}
			delta := line.Debit - line.Credit

			result := tx.Model(&models.Fund{}).
				Where("id = ?", *line.FundID).
				Update("balance", gorm.Expr("balance + ?", delta))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("journal line references unknown fund %d", *line.FundID)
			}

			if err := tx.Create(&models.FundTransaction{
				FundID:         *line.FundID,
				JournalEntryID: entry.ID,
				Amount:         delta,
				Description:    input.Description,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// accountIDByCode resolves a chart-of-accounts code to its row id.
func accountIDByCode(db *gorm.DB, code string) (uint, error) {
	var account models.Account
	if err := db.Where("code = ?", code).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return account.ID, nil
}

// PostOrderRevenue writes the automatic entry for a completed order:
// debit cash (1101), credit sales revenue (4100), in the current open
// monthly period. Returns ErrPeriodClosed when the resolved period is
// closed; the caller decides whether that is fatal (for order completion
// it is a soft skip).
func PostOrderRevenue(db *gorm.DB, order *models.Order) (*models.JournalEntry, error) {
	cashID, err := accountIDByCode(db, "1101")
	if err != nil {
		return nil, err
	}
	revenueID, err := accountIDByCode(db, "4100")
	if err != nil {
		return nil, err
	}

	period, err := ResolveCurrentPeriod(db, time.Now())
	if err != nil {
		return nil, err
	}

	orderID := order.ID
	return CreateEntry(db, EntryInput{
		Description: fmt.Sprintf("Revenue for order #%d", order.ID),
		SourceType:  "order",
		SourceID:    &orderID,
		PeriodID:    &period.ID,
		Lines: []LineInput{
			{AccountID: cashID, Debit: order.Price},
			{AccountID: revenueID, Credit: order.Price},
		},
	})
}

// PostDepositEntry writes the entry for an approved deposit: debit the
// fund's linked account (falling back to cash 1101), credit customer
// deposits (2101). The debit line carries the fund so its running balance
// moves with the entry.
func PostDepositEntry(db *gorm.DB, deposit *models.DepositRequest, fund *models.Fund, amount float64) (*models.JournalEntry, error) {
	var debitAccountID uint
	var err error
	if fund.AccountID != nil {
		debitAccountID = *fund.AccountID
	} else {
		debitAccountID, err = accountIDByCode(db, "1101")
		if err != nil {
			return nil, err
		}
	}

	liabilityID, err := accountIDByCode(db, "2101")
	if err != nil {
		return nil, err
	}

	period, err := ResolveCurrentPeriod(db, time.Now())
	if err != nil {
		return nil, err
	}

	depositID := deposit.ID
	fundID := fund.ID
	return CreateEntry(db, EntryInput{
		Description: fmt.Sprintf("Deposit approval #%d", deposit.ID),
		SourceType:  "deposit",
		SourceID:    &depositID,
		PeriodID:    &period.ID,
		Lines: []LineInput{
			{AccountID: debitAccountID, Debit: amount, FundID: &fundID},
			{AccountID: liabilityID, Credit: amount},
		},
	})
}
