package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"medbill/internal/caching"
	"medbill/internal/client"
	"medbill/internal/config"
	"medbill/internal/handlers"
	"medbill/internal/jobs/background"
	"medbill/internal/services"
)

const version = "1.0.0"

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Remote.BaseURL == "" {
		log.Fatal("CASHIER_API_URL environment variable (or remote.base_url) is required")
	}

	// Remote cashier resource owns all bill state.
	cashierClient := client.NewCashierClient(cfg.Remote)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis)

	// Create services
	billSvc := services.NewBillService(cashierClient, cacheSvc, cfg.Billing)
	paymentSvc := services.NewPaymentService(cashierClient, cacheSvc, cfg.Billing)
	adjustmentSvc := services.NewAdjustmentService(cashierClient, cacheSvc)
	metricsSvc := services.NewMetricsService(cashierClient, cacheSvc, cfg.Billing, cfg.Metrics)

	// Create handlers
	billHandlers := handlers.NewBillHandlers(billSvc, adjustmentSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc)
	metricsHandlers := handlers.NewMetricsHandlers(metricsSvc)
	receiptHandlers := handlers.NewReceiptHandlers(billSvc, cfg.Billing.FacilityName, cfg.Billing.DefaultCurrency)

	// Background jobs
	scheduler := background.NewJobScheduler(metricsSvc, paymentSvc,
		time.Duration(cfg.Metrics.RefreshMinutes)*time.Minute)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoint
	e.GET("/health", handlers.Health(scheduler))

	// API routes
	v1 := e.Group("/v1")

	v1.GET("/bills", billHandlers.ListBills)
	v1.POST("/bills", billHandlers.CreateBill)
	v1.GET("/bills/metrics", metricsHandlers.GetDashboardMetrics)
	v1.GET("/bills/:uuid", billHandlers.GetBill)
	v1.GET("/bills/:uuid/receipt", receiptHandlers.GetReceipt)
	v1.PUT("/bills/:uuid/line-items/:lineItemUuid", billHandlers.EditLineItem)
	v1.GET("/bills/:uuid/line-items/:lineItemUuid/discount", billHandlers.GetLineItemDiscount)
	v1.POST("/bills/:uuid/payments", paymentHandlers.RecordPayment)
	v1.DELETE("/bills/:uuid/payments/:paymentUuid", paymentHandlers.DeletePayment)

	v1.GET("/payment-modes", paymentHandlers.ListPaymentModes)
	v1.GET("/billable-services", billHandlers.SearchBillableServices)

	// Graceful shutdown on SIGINT/SIGTERM via echo's Start error path.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Printf("Shutting down")
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
		e.Close()
	}()

	log.Printf("medbill server v%s starting on %s", version, cfg.Server.ListenAddr)
	e.Logger.Fatal(e.Start(cfg.Server.ListenAddr))
}
