package main

import (
	"log"
	"os"
	"time"

	"go-topup-store/internal/database"
	"go-topup-store/internal/handlers"
	"go-topup-store/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"}, // Storefront dev server
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)

	// --- FEATURE FLAG: Self-Registration ---
	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PUBLIC STOREFRONT DATA ---
	r.GET("/api/settings", handlers.GetSettings)
	// Catalog is public, but a logged-in viewer gets VIP-adjusted prices
	r.GET("/api/catalog", middleware.OptionalAuth(), handlers.GetCatalog)
	r.GET("/api/bank-accounts", handlers.ListBankAccounts)
	r.GET("/api/banners", handlers.ListAdBanners)

	// --- PARTNER CALLBACKS (no session, the provider id + reference is the contract) ---
	r.POST("/api/webhook/provider/:providerId", handlers.ProviderWebhook)

	// --- PARTNER V1 API (bearer ApiToken) ---
	v1 := r.Group("/api/v1")
	v1.Use(middleware.ApiTokenAuth())
	{
		v1.POST("/order", handlers.PartnerCreateOrder)
		v1.POST("/order-status", handlers.PartnerOrderStatus)
	}

	// --- LOGGED-IN CUSTOMERS ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	api.Use(middleware.MaintenanceGate())
	{
		api.GET("/me", handlers.Me)
		api.POST("/orders", handlers.CreateOrder)
		api.GET("/orders/me", handlers.MyOrders)
		api.POST("/deposit-requests", handlers.CreateDeposit)
		api.GET("/deposit-requests/me", handlers.MyDeposits)
		api.GET("/notifications", handlers.MyNotifications)
		api.GET("/notifications/unread-count", handlers.UnreadNotificationCount)
		api.POST("/notifications/:id/read", handlers.MarkNotificationRead)
		api.POST("/notifications/read-all", handlers.MarkAllNotificationsRead)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			// AI assistant is restricted to Admin
			admin.POST("/admin/ask", handlers.AskAI)

			admin.GET("/admin/dashboard", handlers.AdminDashboard)
			admin.GET("/admin/reports/sales", handlers.SalesReport)

			// Orders: the state machine lives behind this PATCH
			admin.GET("/admin/orders", handlers.AdminListOrders)
			admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus)

			// Deposits
			admin.GET("/admin/deposit-requests", handlers.AdminListDeposits)
			admin.PATCH("/admin/deposit-requests/:id", handlers.ReviewDeposit)

			// Users
			admin.GET("/admin/users", handlers.AdminListUsers)
			admin.PUT("/admin/users/:id/balance", handlers.AdminSetBalance)
			admin.PUT("/admin/users/:id/active", handlers.AdminSetUserActive)
			admin.PUT("/admin/users/:id/vip-group", handlers.AdminAssignVipGroup)

			// Catalog management
			admin.POST("/admin/service-groups", handlers.CreateServiceGroup)
			admin.PUT("/admin/service-groups/:id", handlers.UpdateServiceGroup)
			admin.POST("/admin/services", handlers.CreateService)
			admin.PUT("/admin/services/:id", handlers.UpdateService)
			admin.GET("/admin/vip-groups", handlers.ListVipGroups)
			admin.POST("/admin/vip-groups", handlers.CreateVipGroup)
			admin.POST("/admin/vip-groups/:id/discounts", handlers.SetVipServiceDiscount)

			// Accounting
			admin.GET("/accounting/accounts", handlers.ListAccounts)
			admin.POST("/accounting/accounts", handlers.CreateAccount)
			admin.GET("/accounting/funds", handlers.ListFunds)
			admin.POST("/accounting/funds", handlers.CreateFund)
			admin.GET("/accounting/funds/:id/transactions", handlers.ListFundTransactions)
			admin.GET("/accounting/journal-entries", handlers.ListJournalEntries)
			admin.POST("/accounting/journal-entries", handlers.CreateJournalEntry)
			admin.GET("/accounting/periods", handlers.ListPeriods)
			admin.POST("/accounting/periods", handlers.CreatePeriod)
			admin.POST("/accounting/periods/:id/close", handlers.ClosePeriod)
			admin.GET("/accounting/reports/trial-balance", handlers.TrialBalanceReport)
			admin.GET("/accounting/reports/account-balances", handlers.AccountBalancesReport)

			// Provider integration
			admin.GET("/admin/providers", handlers.ListProviders)
			admin.POST("/admin/providers", handlers.CreateProvider)
			admin.PUT("/admin/providers/:id", handlers.UpdateProvider)
			admin.GET("/admin/service-mappings", handlers.ListServiceMappings)
			admin.POST("/admin/service-mappings", handlers.CreateServiceMapping)
			admin.GET("/admin/api-order-logs", handlers.ListApiOrderLogs)
			admin.GET("/admin/api-tokens", handlers.ListApiTokens)
			admin.POST("/admin/api-tokens", handlers.CreateApiToken)
			admin.DELETE("/admin/api-tokens/:id", handlers.RevokeApiToken)

			// Store settings + peripheral content
			admin.PUT("/admin/settings", handlers.UpdateSettings)
			admin.POST("/admin/bank-accounts", handlers.CreateBankAccount)
			admin.DELETE("/admin/bank-accounts/:id", handlers.DeleteBankAccount)
			admin.POST("/admin/banners", handlers.CreateAdBanner)
			admin.DELETE("/admin/banners/:id", handlers.DeleteAdBanner)
		}
	}

	// --- DEPLOYMENT: Serve the built storefront ---
	r.Static("/assets", "./web/assets")

	// SPA Catch-All: if the user refreshes on "/orders", serve index.html
	// so the frontend router can take over.
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("🚀 Server starting on " + baseURL)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
