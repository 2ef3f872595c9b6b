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

func balanceRouter() *gin.Engine {
	r := gin.New()
	r.PUT("/api/admin/users/:id/balance", AdminSetBalance)
	return r
}

func TestAdminSetBalanceUnknownUserIs404(t *testing.T) {
	setupDB(t)

	w := doJSON(t, balanceRouter(), http.MethodPut,
		"/api/admin/users/999/balance", gin.H{"balance": 50.0}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminSetBalanceAppliesAbsoluteTarget(t *testing.T) {
	db := setupDB(t)

	user := models.User{Username: "ahmed", Role: "user", Balance: 100, Active: true}
	require.NoError(t, db.Create(&user).Error)

	w := doJSON(t, balanceRouter(), http.MethodPut,
		fmt.Sprintf("/api/admin/users/%d/balance", user.ID), gin.H{"balance": 250.0}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 250.0, reloaded.Balance)

	// The user is told about the adjustment
	var notes int64
	db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notes)
	assert.EqualValues(t, 1, notes)
}
