package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

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

// seedForwarding wires an order to a provider via a service mapping, with
// the provider pointed at baseURL.
func seedForwarding(t *testing.T, db *gorm.DB, baseURL string) *models.Order {
	t.Helper()

	group := models.ServiceGroup{Name: "Mobile Legends", InputType: "player_id", Active: true}
	require.NoError(t, db.Create(&group).Error)
	service := models.Service{GroupID: group.ID, Name: "500 Diamonds", Price: 300, Active: true}
	require.NoError(t, db.Create(&service).Error)

	prov := models.ApiProvider{
		Name:     "topup-hub",
		BaseURL:  baseURL,
		AuthType: "bearer",
		Token:    "sekrit",
		Active:   true,
	}
	require.NoError(t, db.Create(&prov).Error)
	require.NoError(t, db.Create(&models.ApiServiceMapping{
		ServiceID:         service.ID,
		ProviderID:        prov.ID,
		ExternalServiceID: "MLBB-500",
		Active:            true,
	}).Error)

	order := models.Order{
		UserID:      1,
		ServiceID:   service.ID,
		UserInputID: "1234567|zone:2050",
		Price:       300,
		Status:      models.OrderProcessing,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func lastLog(t *testing.T, db *gorm.DB, orderID uint) models.ApiOrderLog {
	t.Helper()
	var entry models.ApiOrderLog
	require.NoError(t, db.Where("order_id = ?", orderID).Order("id DESC").First(&entry).Error)
	return entry
}

func TestForwardOrderSuccess(t *testing.T) {
	db := setupDB(t)

	var received *http.Request
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received = r
		form = r.PostForm
		w.Write([]byte(`{"status":"accepted"}`))
	}))
	defer srv.Close()

	order := seedForwarding(t, db, srv.URL)
	result := NewClientWithHTTP(srv.Client()).ForwardOrder(db, order)

	require.True(t, result.Success)
	assert.Contains(t, result.Message, "topup-hub")

	// The provider saw the mapped external id, our reference and the
	// decoded input fields
	require.NotNil(t, received)
	assert.Equal(t, "Bearer sekrit", received.Header.Get("Authorization"))
	assert.Equal(t, []string{"neworder"}, form["request"])
	assert.Equal(t, []string{"MLBB-500"}, form["service"])
	assert.Equal(t, []string{"1234567"}, form["player_id"])
	assert.Equal(t, []string{"2050"}, form["zone"])

	entry := lastLog(t, db, order.ID)
	assert.Equal(t, "success", entry.Status)
	assert.Contains(t, entry.Response, "accepted")
}

func TestForwardOrderProviderError(t *testing.T) {
	db := setupDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of stock", http.StatusInternalServerError)
	}))
	defer srv.Close()

	order := seedForwarding(t, db, srv.URL)
	result := NewClientWithHTTP(srv.Client()).ForwardOrder(db, order)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "500")

	entry := lastLog(t, db, order.ID)
	assert.Equal(t, "failed", entry.Status)
	assert.Contains(t, entry.Response, "HTTP 500")
}

func TestForwardOrderUnreachable(t *testing.T) {
	db := setupDB(t)

	// Port 1 is never listening
	order := seedForwarding(t, db, "http://127.0.0.1:1")
	result := NewClientWithHTTP(&http.Client{}).ForwardOrder(db, order)

	assert.False(t, result.Success)

	entry := lastLog(t, db, order.ID)
	assert.Equal(t, "error", entry.Status)
}

func TestForwardOrderNoMapping(t *testing.T) {
	db := setupDB(t)

	order := models.Order{UserID: 1, ServiceID: 42, UserInputID: "1234567", Status: models.OrderProcessing}
	require.NoError(t, db.Create(&order).Error)

	result := NewClient().ForwardOrder(db, &order)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no active provider mapping")

	// Nothing was attempted, so nothing was logged
	var count int64
	db.Model(&models.ApiOrderLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestForwardOrderDisabledProvider(t *testing.T) {
	db := setupDB(t)

	order := seedForwarding(t, db, "http://127.0.0.1:1")
	require.NoError(t, db.Model(&models.ApiProvider{}).Where("1 = 1").Update("active", false).Error)

	result := NewClient().ForwardOrder(db, order)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "disabled")
}

func TestMapWebhookStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		mapped bool
	}{
		{"completed", models.OrderCompleted, true},
		{"COMPLETE", models.OrderCompleted, true},
		{"success", models.OrderCompleted, true},
		{"done", models.OrderCompleted, true},
		{"rejected", models.OrderRejected, true},
		{"failed", models.OrderRejected, true},
		{"cancelled", models.OrderRejected, true},
		{"refunded", models.OrderRejected, true},
		{" Failed ", models.OrderRejected, true},
		{"processing", "", false},
		{"whatever", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := MapWebhookStatus(tc.in)
		assert.Equal(t, tc.mapped, ok, "status %q", tc.in)
		assert.Equal(t, tc.want, got, "status %q", tc.in)
	}
}
