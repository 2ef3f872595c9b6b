package ledger

import (
	"gorm.io/gorm"
)

// AccountBalanceRow is one account's aggregated journal activity.
// Net is sum(debit) - sum(credit); callers interpret the sign per
// account type convention.
type AccountBalanceRow struct {
	AccountID   uint    `json:"account_id"`
	Code        string  `json:"code"`
	NameAr      string  `json:"name_ar"`
	Type        string  `json:"type"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	Net         float64 `json:"net"`
}

// AccountBalances aggregates journal lines per account, optionally
// restricted to one accounting period. Accounts with no activity are
// included with zero totals so the report covers the whole chart.
func AccountBalances(db *gorm.DB, periodID *uint) ([]AccountBalanceRow, error) {
	query := db.Table("accounts").
		Select(`accounts.id as account_id, accounts.code, accounts.name_ar, accounts.type,
			COALESCE(SUM(journal_lines.debit), 0) as total_debit,
			COALESCE(SUM(journal_lines.credit), 0) as total_credit,
			COALESCE(SUM(journal_lines.debit), 0) - COALESCE(SUM(journal_lines.credit), 0) as net`).
		Joins("LEFT JOIN journal_lines ON journal_lines.account_id = accounts.id")

	if periodID != nil {
		query = query.
			Joins("LEFT JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
			Where("journal_lines.id IS NULL OR journal_entries.period_id = ?", *periodID)
	}

	var rows []AccountBalanceRow
	err := query.
		Group("accounts.id, accounts.code, accounts.name_ar, accounts.type").
		Order("accounts.code").
		Scan(&rows).Error
	return rows, err
}

// TrialBalance is the account balance report plus its grand totals. For a
// consistent ledger the two totals are equal.
type TrialBalance struct {
	Rows        []AccountBalanceRow `json:"rows"`
	TotalDebit  float64             `json:"total_debit"`
	TotalCredit float64             `json:"total_credit"`
}

func GetTrialBalance(db *gorm.DB, periodID *uint) (*TrialBalance, error) {
	rows, err := AccountBalances(db, periodID)
	if err != nil {
		return nil, err
	}

	report := TrialBalance{Rows: rows}
	for _, row := range rows {
		report.TotalDebit += row.TotalDebit
		report.TotalCredit += row.TotalCredit
	}
	return &report, nil
}
