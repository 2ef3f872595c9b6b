package database

import (
	"log"
	"os"
	"time"

	"go-topup-store/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	// 1. Get Credentials from .env file
	dsn := os.Getenv("DB_DSN")

	if dsn == "" {
		log.Fatal("❌ Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var err error

	// 2. Connect with GORM (Wait for DB to be ready)
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	log.Println("✅ Successfully connected to MySQL!")

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}
	log.Println("✅ Database Schema Synced!")

	if err := Seed(DB); err != nil {
		log.Fatal("Failed to seed base data:", err)
	}
}

// Migrate syncs the schema. Split out from Connect so tests can run it
// against their own (sqlite) database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ServiceGroup{},
		&models.Service{},
		&models.Order{},
		&models.DepositRequest{},
		&models.Account{},
		&models.Fund{},
		&models.FundTransaction{},
		&models.JournalEntry{},
		&models.JournalLine{},
		&models.AccountingPeriod{},
		&models.VipGroup{},
		&models.VipServiceDiscount{},
		&models.ApiProvider{},
		&models.ApiServiceMapping{},
		&models.ApiOrderLog{},
		&models.ApiToken{},
		&models.Notification{},
		&models.Settings{},
		&models.BankAccount{},
		&models.AdBanner{},
	)
}

// Seed inserts the base chart of accounts and the settings row if missing.
// Codes 1101 and 4100 are hard requirements: auto-posting on order
// completion writes against them.
func Seed(db *gorm.DB) error {
	accounts := []models.Account{
		{Code: "1101", NameAr: "الصندوق", Type: "asset"},
		{Code: "1102", NameAr: "البنك", Type: "asset"},
		{Code: "2101", NameAr: "ودائع العملاء", Type: "liability"},
		{Code: "3101", NameAr: "رأس المال", Type: "equity"},
		{Code: "4100", NameAr: "إيرادات المبيعات", Type: "revenue"},
		{Code: "5101", NameAr: "مصاريف عامة", Type: "expense"},
	}

	for _, acct := range accounts {
		var existing models.Account
		err := db.Where("code = ?", acct.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&acct).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	var count int64
	if err := db.Model(&models.Settings{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(&models.Settings{StoreName: "Top-Up Store"}).Error
	}
	return nil
}
