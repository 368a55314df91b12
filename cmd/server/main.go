package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garage-backend/internal/auth"
	"garage-backend/internal/cache"
	"garage-backend/internal/config"
	"garage-backend/internal/database"
	"garage-backend/internal/db"
	"garage-backend/internal/handlers"
	"garage-backend/internal/health"
	h "garage-backend/internal/http"
	"garage-backend/internal/middleware"
	"garage-backend/internal/monitoring"
	"garage-backend/internal/repositories"
	"garage-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (continuing without caching)", err)
	} else if cfg.Redis.Addr != "" {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker and system monitor
	healthChecker := health.NewHealthChecker(pool)
	collector := monitoring.NewCollector(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	clientRepo := repositories.NewClientRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	catalogRepo := repositories.NewCatalogRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	quotationRepo := repositories.NewQuotationRepository(pool)
	onlineOrderRepo := repositories.NewOnlineOrderRepository(pool)

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	clientService := services.NewClientService(clientRepo)
	vehicleService := services.NewVehicleService(vehicleRepo, clientRepo)
	catalogService := services.NewCatalogService(catalogRepo)
	invoiceService := services.NewInvoiceService(invoiceRepo, userRepo)
	quotationService := services.NewQuotationService(quotationRepo, cfg.Quotation.ValidityDays)
	razorpayService := services.NewRazorpayService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		onlineOrderRepo,
		invoiceRepo,
	)
	pdfService := services.NewPDFService(cfg)
	archiveService := services.NewArchiveService(cfg.Archive)
	if archiveService != nil {
		log.Println("[Archive] PDF archival enabled")
	}
	if razorpayService.IsEnabled() {
		log.Println("[Razorpay] Online payments enabled")
	}

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	authHandler := handlers.NewAuthHandler(userService)
	clientHandler := handlers.NewClientHandler(clientService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, pdfService, archiveService)
	quotationHandler := handlers.NewQuotationHandler(quotationService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	monitoringHandler := handlers.NewMonitoringHandler(collector, archiveService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		clientHandler,
		vehicleHandler,
		catalogHandler,
		invoiceHandler,
		quotationHandler,
		razorpayHandler,
		monitoringHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		middleware.RequestLogging(
			middleware.MetricsMiddleware(
				corsMiddleware(router))))

	// Background sweep for quotations past their validity date
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runExpirySweep(sweepCtx, quotationService, cfg.Quotation.ExpirySweepMinutes)

	// Start server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// runExpirySweep periodically expires pending quotations past their validity
// date. The first sweep runs immediately so restarts catch up.
func runExpirySweep(ctx context.Context, quotations *services.QuotationService, intervalMinutes int) {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}

	if _, err := quotations.ExpireOverdue(ctx); err != nil {
		log.Printf("[Quotations] Expiry sweep failed: %v", err)
	}

	ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := quotations.ExpireOverdue(ctx); err != nil {
				log.Printf("[Quotations] Expiry sweep failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
