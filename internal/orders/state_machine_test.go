package orders

import (
	"net/http"
	"testing"
	"time"

	"go-topup-store/internal/database"
	"go-topup-store/internal/ledger"
	"go-topup-store/internal/models"
	"go-topup-store/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

// seedStore creates a user with balance 1000 and a 300.0 service.
func seedStore(t *testing.T, db *gorm.DB) (models.User, models.Service) {
	t.Helper()

	user := models.User{Username: "ahmed", Role: "user", Balance: 1000, Active: true}
	require.NoError(t, db.Create(&user).Error)

	group := models.ServiceGroup{Name: "Mobile Legends", InputType: "player_id", Active: true}
	require.NoError(t, db.Create(&group).Error)

	service := models.Service{GroupID: group.ID, Name: "500 Diamonds", Price: 300, Active: true}
	require.NoError(t, db.Create(&service).Error)

	return user, service
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) float64 {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Balance
}

func placeOrder(t *testing.T, db *gorm.DB, user models.User, service models.Service) *models.Order {
	t.Helper()
	order, err := Create(db, CreateInput{
		UserID:         user.ID,
		ServiceID:      service.ID,
		Input:          provider.OrderInput{PlayerID: "1234", Zone: "5"},
		PayFromBalance: true,
	})
	require.NoError(t, err)
	return order
}

func TestRejectRefundsExactlyOnce(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)

	order := placeOrder(t, db, user, service)
	require.Equal(t, 700.0, balanceOf(t, db, user.ID))

	updated, effects, err := UpdateStatus(db, nil, order.ID, models.OrderRejected, "out of stock")
	require.NoError(t, err)

	assert.Equal(t, models.OrderRejected, updated.Status)
	assert.Equal(t, "out of stock", updated.RejectionReason)
	assert.True(t, effects.Refunded)
	assert.Equal(t, 1000.0, balanceOf(t, db, user.ID))
}

func TestRejectResetCycleNetsToZero(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)

	order := placeOrder(t, db, user, service)
	require.Equal(t, 700.0, balanceOf(t, db, user.ID))

	// N reject/reset cycles must leave the balance exactly where it started
	for i := 0; i < 3; i++ {
		_, effects, err := UpdateStatus(db, nil, order.ID, models.OrderRejected, "oos")
		require.NoError(t, err)
		assert.True(t, effects.Refunded)
		assert.Equal(t, 1000.0, balanceOf(t, db, user.ID))

		_, effects, err = UpdateStatus(db, nil, order.ID, models.OrderPending, "")
		require.NoError(t, err)
		assert.True(t, effects.Redebited)
		assert.Equal(t, 700.0, balanceOf(t, db, user.ID))
	}
}

func TestResetFromCompletedDoesNotTouchBalance(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)

	order := placeOrder(t, db, user, service)
	_, _, err := UpdateStatus(db, nil, order.ID, models.OrderCompleted, "")
	require.NoError(t, err)
	require.Equal(t, 700.0, balanceOf(t, db, user.ID))

	_, effects, err := UpdateStatus(db, nil, order.ID, models.OrderPending, "")
	require.NoError(t, err)
	assert.False(t, effects.Redebited)
	assert.Equal(t, 700.0, balanceOf(t, db, user.ID))
}

func TestFullLifecycleScenario(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)

	// Create paying from balance: 1000 -> 700, order pending
	order := placeOrder(t, db, user, service)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 700.0, balanceOf(t, db, user.ID))

	// Reject with a reason: refund to 1000, one notification carries the reason
	_, _, err := UpdateStatus(db, nil, order.ID, models.OrderRejected, "out of stock")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balanceOf(t, db, user.ID))

	var reasonNotes []models.Notification
	require.NoError(t, db.Where("user_id = ? AND message LIKE ?", user.ID, "%out of stock%").Find(&reasonNotes).Error)
	assert.Len(t, reasonNotes, 1)

	// Reset: re-debit to 700
	_, _, err = UpdateStatus(db, nil, order.ID, models.OrderPending, "")
	require.NoError(t, err)
	assert.Equal(t, 700.0, balanceOf(t, db, user.ID))

	// Complete: revenue entry 300 (1101 debit / 4100 credit) in the open
	// period, balance untouched
	_, effects, err := UpdateStatus(db, nil, order.ID, models.OrderCompleted, "")
	require.NoError(t, err)
	assert.True(t, effects.Journaled)
	assert.Equal(t, 700.0, balanceOf(t, db, user.ID))

	var entry models.JournalEntry
	require.NoError(t, db.Preload("Lines").Where("source_type = ?", "order").First(&entry).Error)
	assert.Equal(t, 300.0, entry.TotalDebit)
	assert.Equal(t, 300.0, entry.TotalCredit)
	require.NotNil(t, entry.PeriodID)

	var period models.AccountingPeriod
	require.NoError(t, db.First(&period, *entry.PeriodID).Error)
	assert.Equal(t, models.PeriodOpen, period.Status)

	var cash, revenue models.Account
	require.NoError(t, db.Where("code = ?", "1101").First(&cash).Error)
	require.NoError(t, db.Where("code = ?", "4100").First(&revenue).Error)
	require.Len(t, entry.Lines, 2)
	for _, line := range entry.Lines {
		switch line.AccountID {
		case cash.ID:
			assert.Equal(t, 300.0, line.Debit)
		case revenue.ID:
			assert.Equal(t, 300.0, line.Credit)
		default:
			t.Fatalf("unexpected account %d on revenue entry", line.AccountID)
		}
	}
}

func TestCompletionWithClosedPeriodSkipsJournal(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)

	// Close the current month up front
	period, err := ledger.ResolveCurrentPeriod(db, time.Now())
	require.NoError(t, err)
	_, err = ledger.ClosePeriod(db, period.ID, 1)
	require.NoError(t, err)

	order := placeOrder(t, db, user, service)
	updated, effects, err := UpdateStatus(db, nil, order.ID, models.OrderCompleted, "")
	require.NoError(t, err)

	// The order still completes; the entry is skipped, not failed
	assert.Equal(t, models.OrderCompleted, updated.Status)
	assert.False(t, effects.Journaled)
	assert.NotEmpty(t, effects.JournalSkipped)

	var entries int64
	db.Model(&models.JournalEntry{}).Count(&entries)
	assert.Zero(t, entries)
}

func TestInvalidTransitionsRejected(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)
	order := placeOrder(t, db, user, service)

	// Same status
	_, _, err := UpdateStatus(db, nil, order.ID, models.OrderPending, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown status value
	_, _, err = UpdateStatus(db, nil, order.ID, "shipped", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// completed -> processing is not a thing
	_, _, err = UpdateStatus(db, nil, order.ID, models.OrderCompleted, "")
	require.NoError(t, err)
	_, _, err = UpdateStatus(db, nil, order.ID, models.OrderProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	db := setupDB(t)

	_, _, err := UpdateStatus(db, nil, 999, models.OrderRejected, "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestProcessingForwardsAndFailureIsNonFatal(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)

	// Provider pointing at a port nothing listens on
	prov := models.ApiProvider{
		Name:     "DeadProvider",
		BaseURL:  "http://127.0.0.1:1",
		AuthType: "basic",
		Username: "u",
		Password: "p",
		Active:   true,
	}
	require.NoError(t, db.Create(&prov).Error)
	mapping := models.ApiServiceMapping{
		ServiceID:         service.ID,
		ProviderID:        prov.ID,
		ExternalServiceID: "ext-77",
		Active:            true,
	}
	require.NoError(t, db.Create(&mapping).Error)

	order := placeOrder(t, db, user, service)

	client := provider.NewClientWithHTTP(&http.Client{Timeout: 2 * time.Second})
	updated, effects, err := UpdateStatus(db, client, order.ID, models.OrderProcessing, "")
	require.NoError(t, err)

	// The local transition succeeds even though the provider is unreachable
	assert.Equal(t, models.OrderProcessing, updated.Status)
	assert.False(t, effects.Forwarded)
	assert.NotEmpty(t, effects.ForwardMessage)

	var logRow models.ApiOrderLog
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&logRow).Error)
	assert.Equal(t, "error", logRow.Status)
	assert.NotEmpty(t, logRow.Response)
}

func TestEveryTransitionNotifiesTheUser(t *testing.T) {
	db := setupDB(t)
	user, service := seedStore(t, db)
	order := placeOrder(t, db, user, service)

	_, effects, err := UpdateStatus(db, nil, order.ID, models.OrderProcessing, "")
	require.NoError(t, err)
	assert.True(t, effects.Notified)

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ? AND related_order_id = ?", user.ID, order.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
