// Package main provides the main entry point for the Gandaberunda campaign workflow service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sidverse/gandaberunda/app/handlers"
	"github.com/sidverse/gandaberunda/app/middleware"
	"github.com/sidverse/gandaberunda/app/router"
	"github.com/sidverse/gandaberunda/app/services"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
	"github.com/sidverse/gandaberunda/config"
	_ "github.com/sidverse/gandaberunda/docs"
	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/repository"
	"github.com/sidverse/gandaberunda/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Gandaberunda application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes application logs to a size-rotated file when file
// output is configured. Access logs stay on the Fiber logger middleware.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.FilePath == "" || (cfg.Output != "file" && cfg.Output != "both") {
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		return
	}
	log.SetOutput(rotated)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if client == nil {
		return cancel
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
	stopFuncs = append(stopFuncs, cancel)

	// Initialize repositories
	brandRepo := repository.NewBrandRepository(db)
	creatorRepo := repository.NewCreatorRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Seed the bootstrap admin account if configured
	if err := ensureAdminAccount(adminRepo, cfg); err != nil {
		return nil, err
	}

	// Initialize services
	notificationService := services.NewNotificationService(&cfg.Notification)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	snapshots := businessflow.NewSnapshotCache(rc, &cfg.Cache)

	// Initialize flows
	campaignFlow := businessflow.NewCampaignFlow(
		campaignRepo,
		engagementRepo,
		brandRepo,
		creatorRepo,
		auditRepo,
		notificationService,
		snapshots,
		db,
	)

	negotiationFlow := businessflow.NewNegotiationFlow(
		engagementRepo,
		creatorRepo,
		brandRepo,
		auditRepo,
		notificationService,
		snapshots,
		db,
	)

	scriptFlow := businessflow.NewScriptFlow(
		engagementRepo,
		campaignRepo,
		creatorRepo,
		brandRepo,
		auditRepo,
		notificationService,
		snapshots,
		db,
	)

	contentFlow := businessflow.NewContentFlow(
		engagementRepo,
		campaignRepo,
		creatorRepo,
		brandRepo,
		auditRepo,
		notificationService,
		snapshots,
		db,
	)

	shortlistFlow := businessflow.NewShortlistFlow(
		campaignRepo,
		engagementRepo,
		creatorRepo,
		adminRepo,
		auditRepo,
		notificationService,
		snapshots,
		db,
	)

	// Initialize handlers
	campaignHandler := handlers.NewCampaignHandler(campaignFlow)
	negotiationHandler := handlers.NewNegotiationHandler(negotiationFlow)
	scriptHandler := handlers.NewScriptHandler(scriptFlow)
	contentHandler := handlers.NewContentHandler(contentFlow)
	shortlistHandler := handlers.NewShortlistHandler(shortlistFlow)
	engagementHandler := handlers.NewEngagementHandler(campaignFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		authMiddleware,
		campaignHandler,
		negotiationHandler,
		scriptHandler,
		contentHandler,
		shortlistHandler,
		engagementHandler,
	)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureAdminAccount creates the configured operator account on first boot
func ensureAdminAccount(adminRepo repository.AdminRepository, cfg *config.ProductionConfig) error {
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		return nil
	}

	existing, err := adminRepo.ByUsername(context.Background(), cfg.Admin.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		UUID:         uuid.New(),
		Username:     cfg.Admin.Username,
		PasswordHash: string(hashed),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(context.Background(), &admin); err != nil {
		return err
	}

	log.Printf("Seeded admin account %q", cfg.Admin.Username)
	return nil
}
