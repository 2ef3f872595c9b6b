package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"go-topup-store/internal/auth"
	"go-topup-store/internal/middleware"
	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogPrice(t *testing.T, body []byte, serviceID uint) float64 {
	t.Helper()

	var groups []struct {
		Services []struct {
			ID             uint    `json:"id"`
			EffectivePrice float64 `json:"effective_price"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(body, &groups))

	for _, g := range groups {
		for _, s := range g.Services {
			if s.ID == serviceID {
				return s.EffectivePrice
			}
		}
	}
	t.Fatalf("service %d not in catalog payload", serviceID)
	return 0
}

func TestCatalogShowsVipPriceToLoggedInViewer(t *testing.T) {
	db := setupDB(t)

	group := models.ServiceGroup{Name: "Mobile Legends", InputType: "player_id", Active: true}
	require.NoError(t, db.Create(&group).Error)
	service := models.Service{GroupID: group.ID, Name: "500 Diamonds", Price: 300, Active: true}
	require.NoError(t, db.Create(&service).Error)

	vip := models.VipGroup{Name: "Gold", DiscountPercent: 10}
	require.NoError(t, db.Create(&vip).Error)
	user := models.User{Username: "ahmed", Role: "user", Active: true, VipGroupID: &vip.ID}
	require.NoError(t, db.Create(&user).Error)

	token, err := auth.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)

	// The route is public but identifies the viewer when a token is sent
	r := gin.New()
	r.GET("/api/catalog", middleware.OptionalAuth(), GetCatalog)

	// Anonymous viewers pay list price
	w := doJSON(t, r, http.MethodGet, "/api/catalog", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 300.0, catalogPrice(t, w.Body.Bytes(), service.ID))

	// The VIP viewer sees their 10% discount
	w = doJSON(t, r, http.MethodGet, "/api/catalog", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 270.0, catalogPrice(t, w.Body.Bytes(), service.ID))

	// A garbage token never blocks a public route
	w = doJSON(t, r, http.MethodGet, "/api/catalog", nil, map[string]string{"Authorization": "Bearer not.a.token"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 300.0, catalogPrice(t, w.Body.Bytes(), service.ID))
}
