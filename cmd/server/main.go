package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kasirku/kasirku-backend/internal/analytics"
	"github.com/kasirku/kasirku-backend/internal/auth"
	"github.com/kasirku/kasirku-backend/internal/dashboard"
	"github.com/kasirku/kasirku-backend/internal/invoice"
	"github.com/kasirku/kasirku-backend/internal/payment"
	"github.com/kasirku/kasirku-backend/internal/product"
	"github.com/kasirku/kasirku-backend/internal/recap"
	"github.com/kasirku/kasirku-backend/internal/reports"
	"github.com/kasirku/kasirku-backend/internal/sale"
	"github.com/kasirku/kasirku-backend/internal/stock"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/kasirku/kasirku-backend/pkg/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Daily recap emails
	recapScheduler := recap.NewScheduler(db)
	recapScheduler.Start()

	// Setup Gin router
	r := gin.Default()

	// Middleware
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/refresh", authHandler.RefreshToken)

		// Google OAuth routes
		v1.GET("/auth/google", authHandler.GoogleLogin)
		v1.GET("/auth/google/callback", authHandler.GoogleCallback)

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth - current user and business profile
			protected.GET("/auth/me", authHandler.GetMe)
			protected.PUT("/auth/profile", authHandler.UpdateProfile)

			// Dashboard routes
			dashboardHandler := dashboard.NewHandler(db)
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)
			protected.GET("/dashboard/top-products", dashboardHandler.GetTopProducts)
			protected.GET("/dashboard/recent-sales", dashboardHandler.GetRecentSales)
			protected.GET("/dashboard/low-stock", dashboardHandler.GetLowStock)

			// Product routes
			productHandler := product.NewHandler(db)
			protected.GET("/products", productHandler.List)
			protected.POST("/products", productHandler.Create)
			protected.GET("/products/:id", productHandler.Get)
			protected.PUT("/products/:id", productHandler.Update)
			protected.DELETE("/products/:id", productHandler.Delete)
			protected.PATCH("/products/:id/toggle", productHandler.ToggleActive)
			protected.GET("/products/barcode/:barcode", productHandler.GetByBarcode)
			protected.POST("/products/import", productHandler.ImportFile)
			protected.GET("/products/import/template", productHandler.DownloadTemplate)

			// Category and brand routes
			protected.GET("/categories", productHandler.ListCategories)
			protected.POST("/categories", productHandler.CreateCategory)
			protected.DELETE("/categories/:id", productHandler.DeleteCategory)
			protected.GET("/brands", productHandler.ListBrands)
			protected.POST("/brands", productHandler.CreateBrand)
			protected.DELETE("/brands/:id", productHandler.DeleteBrand)

			// Stock routes
			stockHandler := stock.NewHandler(db)
			protected.POST("/stock/:id/add", stockHandler.AddStock)
			protected.POST("/stock/:id/adjust", stockHandler.AdjustStock)
			protected.GET("/stock/history", stockHandler.GetHistory)
			protected.GET("/stock/summary", stockHandler.GetSummary)
			protected.GET("/stock/alerts", stockHandler.GetAlerts)

			// Sale routes
			saleHandler := sale.NewHandler(db)
			protected.GET("/sales", saleHandler.List)
			protected.POST("/sales", saleHandler.Create)
			protected.GET("/sales/:id", saleHandler.Get)
			protected.POST("/sales/:id/void", saleHandler.Void)
			protected.DELETE("/sales/:id", middleware.OwnerRequired(), saleHandler.Delete)
			protected.DELETE("/sales/:id/items/:item_id", saleHandler.DeleteItem)

			// Analytics routes
			analyticsHandler := analytics.NewHandler(db)
			protected.GET("/analytics/summary", analyticsHandler.GetSummary)
			protected.GET("/analytics/performance", analyticsHandler.GetPerformance)
			protected.GET("/analytics/product", analyticsHandler.GetProductMetrics)
			protected.GET("/analytics/monthly", analyticsHandler.GetMonthly)
			protected.GET("/analytics/yearly", analyticsHandler.GetYearly)
			protected.GET("/analytics/monthly-range", analyticsHandler.GetMonthlyRange)

			// Reports routes
			reportsHandler := reports.NewHandler(db)
			protected.GET("/reports/sales", reportsHandler.GetSalesReport)
			protected.GET("/reports/products", reportsHandler.GetProductSalesReport)
			protected.GET("/reports/sales/export", reportsHandler.ExportSalesReport)

			// Invoice settings and custom invoices
			invoiceHandler := invoice.NewHandler(db)
			protected.GET("/invoice/settings", invoiceHandler.GetSettings)
			protected.PUT("/invoice/settings", invoiceHandler.UpdateSettings)
			protected.GET("/invoices/custom", invoiceHandler.ListCustom)
			protected.POST("/invoices/custom", invoiceHandler.CreateCustom)
			protected.PUT("/invoices/custom/:id", invoiceHandler.UpdateCustom)
			protected.DELETE("/invoices/custom/:id", invoiceHandler.DeleteCustom)

			// Payment channel routes
			paymentHandler := payment.NewHandler(db)
			protected.GET("/payment-channels", paymentHandler.ListChannels)
			protected.POST("/payment-channels", paymentHandler.CreateChannel)
			protected.PUT("/payment-channels/:id", paymentHandler.UpdateChannel)
			protected.PATCH("/payment-channels/:id/toggle", paymentHandler.ToggleChannel)
			protected.DELETE("/payment-channels/:id", paymentHandler.DeleteChannel)
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
