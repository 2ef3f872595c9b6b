package models

import (
	"time"
)

// --- STATUS VALUES ---
// Stored as plain strings so they read naturally in the DB and in JSON.

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderRejected   = "rejected"
)

const (
	DepositPending  = "pending"
	DepositApproved = "approved"
	DepositRejected = "rejected"
)

const (
	PeriodOpen   = "open"
	PeriodClosed = "closed"
)

// User - The customer (or admin) interacting with the store
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`       // Never return this in JSON
	Role         string    `json:"role"`    // 'user', 'admin'
	Balance      float64   `json:"balance"` // Wallet balance. May go negative (admin adjustments).
	Active       bool      `gorm:"default:true" json:"active"`
	VipGroupID   *uint     `json:"vip_group_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceGroup - A category of services (e.g. "Mobile Legends", "Streaming Cards")
type ServiceGroup struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	InputType string `json:"input_type"` // 'player_id', 'email', 'credentials'
	Active    bool   `gorm:"default:true" json:"active"`
}

// Service - A sellable item (top-up denomination, card, credit pack)
type Service struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	GroupID uint    `json:"group_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Active  bool    `gorm:"default:true" json:"active"`
}

// Order - A purchase request. Created as 'pending', mutated only via status transitions.
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index" json:"user_id"`
	ServiceID       uint      `json:"service_id"`
	Service         Service   `json:"service"`       // Preload service details
	UserInputID     string    `json:"user_input_id"` // Player id / email / credential blob, normalized at creation
	Price           float64   `json:"price"`         // Snapshot of the (VIP-adjusted) price at order time
	PaidFromBalance bool      `json:"paid_from_balance"`
	Status          string    `gorm:"index" json:"status"` // 'pending', 'processing', 'completed', 'rejected'
	RejectionReason string    `json:"rejection_reason"`
	CreatedAt       time.Time `json:"created_at"`
}

// DepositRequest - A user-submitted balance top-up claim awaiting admin review
type DepositRequest struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index" json:"user_id"`
	Amount          float64   `json:"amount"`
	ApprovedAmount  *float64  `json:"approved_amount"` // Set on approval. May differ from Amount.
	FundID          *uint     `json:"fund_id"`         // Which cash pool received the money
	Status          string    `json:"status"`          // 'pending', 'approved', 'rejected'
	RejectionReason string    `json:"rejection_reason"`
	ReceiptURL      string    `json:"receipt_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// Account - A chart-of-accounts node
type Account struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Code     string `gorm:"uniqueIndex;size:20" json:"code"`
	NameAr   string `json:"name_ar"`
	Type     string `json:"type"` // 'asset', 'liability', 'equity', 'revenue', 'expense'
	ParentID *uint  `json:"parent_id"`
}

// Fund - A named cash/bank pool with a running balance
type Fund struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
	AccountID *uint   `json:"account_id"` // Optional link into the chart of accounts
}

// FundTransaction - Audit trail of fund balance movements
type FundTransaction struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FundID         uint      `gorm:"index" json:"fund_id"`
	JournalEntryID uint      `json:"journal_entry_id"`
	Amount         float64   `json:"amount"` // Net delta (debit - credit)
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// JournalEntry - A balanced double-entry record header (debits must equal credits)
type JournalEntry struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	EntryNumber int           `gorm:"index" json:"entry_number"` // Sequential, assigned at creation
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	TotalDebit  float64       `json:"total_debit"`
	TotalCredit float64       `json:"total_credit"`
	SourceType  string        `json:"source_type"` // 'manual', 'order', 'deposit', 'closing'
	SourceID    *uint         `json:"source_id"`   // The order/deposit id for auto entries
	PeriodID    *uint         `json:"period_id"`
	Lines       []JournalLine `gorm:"foreignKey:EntryID" json:"lines"`
	CreatedAt   time.Time     `json:"created_at"`
}

// JournalLine - One leg of a journal entry
type JournalLine struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	EntryID   uint    `gorm:"index" json:"entry_id"`
	AccountID uint    `json:"account_id"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	FundID    *uint   `json:"fund_id"` // If set, the line moves this fund's running balance
	Memo      string  `json:"memo"`
}

// AccountingPeriod - A time bucket journal entries post into. Closing is one-way.
type AccountingPeriod struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Year     int        `gorm:"uniqueIndex:idx_periods_year_month" json:"year"`
	Month    *int       `gorm:"uniqueIndex:idx_periods_year_month" json:"month"`  // Nil for a yearly period
	Status   string     `json:"status"` // 'open', 'closed'
	ClosedAt *time.Time `json:"closed_at"`
	ClosedBy *uint      `json:"closed_by"`
}

// VipGroup - A discount tier assignable to users
type VipGroup struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `json:"name"`
	DiscountPercent float64 `json:"discount_percent"`
}

// VipServiceDiscount - Per-service override of a VIP group's global percentage
type VipServiceDiscount struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	VipGroupID      uint    `gorm:"index" json:"vip_group_id"`
	ServiceID       uint    `json:"service_id"`
	DiscountPercent float64 `json:"discount_percent"`
}

// ApiProvider - An external fulfillment partner we forward orders to
type ApiProvider struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	AuthType string `json:"auth_type"` // 'basic', 'bearer'
	Username string `json:"username"`
	Password string `json:"-"`
	Token    string `json:"-"`
	Active   bool   `gorm:"default:true" json:"active"`
}

// ApiServiceMapping - Links a local service to a provider's external service id
type ApiServiceMapping struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	ServiceID         uint   `gorm:"index" json:"service_id"`
	ProviderID        uint   `json:"provider_id"`
	ExternalServiceID string `json:"external_service_id"`
	Active            bool   `gorm:"default:true" json:"active"`
}

// ApiOrderLog - Request/response audit trail for every forwarding attempt
type ApiOrderLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"index" json:"order_id"`
	ProviderID uint      `json:"provider_id"`
	Request    string    `json:"request"`
	Response   string    `json:"response"`
	Status     string    `json:"status"` // 'success', 'failed', 'error'
	CreatedAt  time.Time `json:"created_at"`
}

// ApiToken - Bearer credential for partner access to the v1 API
type ApiToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `json:"user_id"` // Orders created with this token debit this wallet
	Name        string     `json:"name"`
	Token       string     `gorm:"uniqueIndex;size:64" json:"-"`
	IPAllowlist string     `json:"ip_allowlist"` // Comma-separated. Empty = any IP.
	Active      bool       `gorm:"default:true" json:"active"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Notification - A per-user message created by state transitions and admin actions
type Notification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	Type           string    `json:"type"` // 'info', 'success', 'error', 'order'
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	RelatedOrderID *uint     `json:"related_order_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Settings - Single-row store configuration (maintenance gate, display name)
type Settings struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	StoreName          string `json:"store_name"`
	MaintenanceMode    bool   `json:"maintenance_mode"`
	MaintenanceMessage string `json:"maintenance_message"`
}

// BankAccount - Displayed to users so they know where to send deposits
type BankAccount struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban"`
	Active        bool   `gorm:"default:true" json:"active"`
}

// AdBanner - Homepage carousel slide
type AdBanner struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ImageURL  string `json:"image_url"`
	LinkURL   string `json:"link_url"`
	SortOrder int    `json:"sort_order"`
	Active    bool   `gorm:"default:true" json:"active"`
}
