package wallet

import (
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
	return db
}

func TestAdjust(t *testing.T) {
	db := setupDB(t)

	user := models.User{Username: "ahmed", Role: "user", Balance: 100, Active: true}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, Adjust(db, user.ID, 50))
	require.NoError(t, Adjust(db, user.ID, -30.5))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 119.5, reloaded.Balance)
}

func TestAdjustAllowsNegativeBalance(t *testing.T) {
	db := setupDB(t)

	user := models.User{Username: "ahmed", Role: "user", Balance: 10, Active: true}
	require.NoError(t, db.Create(&user).Error)

	// Overdraft decisions belong to the callers, not here
	require.NoError(t, Adjust(db, user.ID, -25))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, -15.0, reloaded.Balance)
}

func TestAdjustUnknownUser(t *testing.T) {
	db := setupDB(t)
	assert.ErrorIs(t, Adjust(db, 999, 50), ErrUserNotFound)
}
