package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/webhook/provider/:providerId", ProviderWebhook)
	return r
}

func TestProviderWebhookUnknownOrderLeavesNoLog(t *testing.T) {
	db := setupDB(t)

	prov := models.ApiProvider{Name: "topup-hub", BaseURL: "http://127.0.0.1:1", AuthType: "bearer", Active: true}
	require.NoError(t, db.Create(&prov).Error)

	w := doJSON(t, webhookRouter(), http.MethodPost,
		fmt.Sprintf("/api/webhook/provider/%d", prov.ID),
		gin.H{"reference": "999", "status": "completed"}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Nothing was applied, so nothing was logged
	var logs int64
	db.Model(&models.ApiOrderLog{}).Count(&logs)
	assert.Zero(t, logs)
}

func TestProviderWebhookCompletesOrder(t *testing.T) {
	db := setupDB(t)

	user := models.User{Username: "ahmed", Role: "user", Active: true}
	require.NoError(t, db.Create(&user).Error)
	group := models.ServiceGroup{Name: "Mobile Legends", InputType: "player_id", Active: true}
	require.NoError(t, db.Create(&group).Error)
	service := models.Service{GroupID: group.ID, Name: "500 Diamonds", Price: 300, Active: true}
	require.NoError(t, db.Create(&service).Error)
	prov := models.ApiProvider{Name: "topup-hub", BaseURL: "http://127.0.0.1:1", AuthType: "bearer", Active: true}
	require.NoError(t, db.Create(&prov).Error)

	order := models.Order{
		UserID:      user.ID,
		ServiceID:   service.ID,
		UserInputID: "1234567",
		Price:       300,
		Status:      models.OrderProcessing,
	}
	require.NoError(t, db.Create(&order).Error)

	w := doJSON(t, webhookRouter(), http.MethodPost,
		fmt.Sprintf("/api/webhook/provider/%d", prov.ID),
		gin.H{"reference": fmt.Sprint(order.ID), "status": "completed"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderCompleted, reloaded.Status)

	// The callback itself is on the audit trail
	var entry models.ApiOrderLog
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&entry).Error)
	assert.Contains(t, entry.Request, "webhook")
}
