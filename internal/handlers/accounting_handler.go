package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-topup-store/internal/database"
	"go-topup-store/internal/ledger"
	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET /api/accounting/accounts ---
func ListAccounts(c *gin.Context) {
	var accounts []models.Account
	if err := database.DB.Order("code").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accounts"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

type CreateAccountRequest struct {
	Code     string `json:"code" binding:"required"`
	NameAr   string `json:"name_ar" binding:"required"`
	Type     string `json:"type" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// --- POST /api/accounting/accounts ---
func CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code, name and type are required"})
		return
	}

	switch req.Type {
	case "asset", "liability", "equity", "revenue", "expense":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown account type"})
		return
	}

	account := models.Account{Code: req.Code, NameAr: req.NameAr, Type: req.Type, ParentID: req.ParentID}
	if err := database.DB.Create(&account).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Account code already exists"})
		return
	}
	c.JSON(http.StatusCreated, account)
}

// --- GET /api/accounting/funds ---
func ListFunds(c *gin.Context) {
	var funds []models.Fund
	if err := database.DB.Find(&funds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch funds"})
		return
	}
	c.JSON(http.StatusOK, funds)
}

type CreateFundRequest struct {
	Name      string `json:"name" binding:"required"`
	AccountID *uint  `json:"account_id"`
}

// --- POST /api/accounting/funds ---
func CreateFund(c *gin.Context) {
	var req CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	fund := models.Fund{Name: req.Name, AccountID: req.AccountID}
	if err := database.DB.Create(&fund).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fund"})
		return
	}
	c.JSON(http.StatusCreated, fund)
}

// --- GET /api/accounting/funds/:id/transactions ---
func ListFundTransactions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fund ID"})
		return
	}

	var list []models.FundTransaction
	if err := database.DB.Where("fund_id = ?", id).Order("created_at desc").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fund transactions"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- POST /api/accounting/journal-entries ---
func CreateJournalEntry(c *gin.Context) {
	var input ledger.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid journal entry payload"})
		return
	}

	entry, err := ledger.CreateEntry(database.DB, input)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrTooFewLines),
			errors.Is(err, ledger.ErrUnbalanced),
			errors.Is(err, ledger.ErrAccountNotFound),
			errors.Is(err, ledger.ErrPeriodNotFound),
			errors.Is(err, ledger.ErrPeriodClosed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create journal entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// --- GET /api/accounting/journal-entries?period_id= ---
func ListJournalEntries(c *gin.Context) {
	query := database.DB.Preload("Lines").Order("entry_number desc")

	if raw := c.Query("period_id"); raw != "" {
		periodID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period_id"})
			return
		}
		query = query.Where("period_id = ?", periodID)
	}

	var entries []models.JournalEntry
	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch journal entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// --- GET /api/accounting/periods ---
func ListPeriods(c *gin.Context) {
	var periods []models.AccountingPeriod
	if err := database.DB.Order("year desc, month desc").Find(&periods).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch periods"})
		return
	}
	c.JSON(http.StatusOK, periods)
}

type CreatePeriodRequest struct {
	Year  int  `json:"year" binding:"required"`
	Month *int `json:"month"` // Omit for a yearly period
}

// --- POST /api/accounting/periods ---
func CreatePeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Year is required"})
		return
	}
	if req.Month != nil && (*req.Month < 1 || *req.Month > 12) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be between 1 and 12"})
		return
	}

	period := models.AccountingPeriod{Year: req.Year, Month: req.Month, Status: models.PeriodOpen}
	if err := database.DB.Create(&period).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create period"})
		return
	}
	c.JSON(http.StatusCreated, period)
}

// --- POST /api/accounting/periods/:id/close ---
func ClosePeriod(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period ID"})
		return
	}

	adminID := c.MustGet("userID").(uint)

	period, err := ledger.ClosePeriod(database.DB, uint(id), adminID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrPeriodNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		case errors.Is(err, ledger.ErrPeriodAlreadyClosed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Period is already closed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close period"})
		}
		return
	}
	c.JSON(http.StatusOK, period)
}

// periodFilter reads an optional ?period_id= query parameter.
func periodFilter(c *gin.Context) (*uint, bool) {
	raw := c.Query("period_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period_id"})
		return nil, false
	}
	uid := uint(id)
	return &uid, true
}

// --- GET /api/accounting/reports/trial-balance?period_id= ---
func TrialBalanceReport(c *gin.Context) {
	periodID, ok := periodFilter(c)
	if !ok {
		return
	}

	report, err := ledger.GetTrialBalance(database.DB, periodID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build trial balance"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- GET /api/accounting/reports/account-balances?period_id= ---
func AccountBalancesReport(c *gin.Context) {
	periodID, ok := periodFilter(c)
	if !ok {
		return
	}

	rows, err := ledger.AccountBalances(database.DB, periodID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build account balances"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
