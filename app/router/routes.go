// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/handlers"
	"github.com/sidverse/gandaberunda/app/middleware"
	_ "github.com/sidverse/gandaberunda/docs"
	"github.com/sidverse/gandaberunda/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	authMiddleware   *middleware.AuthMiddleware
	campaignHandler  handlers.CampaignHandlerInterface
	negotiationHdlr  handlers.NegotiationHandlerInterface
	scriptHandler    handlers.ScriptHandlerInterface
	contentHandler   handlers.ContentHandlerInterface
	shortlistHandler handlers.ShortlistHandlerInterface
	engagementHdlr   handlers.EngagementHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	authMiddleware *middleware.AuthMiddleware,
	campaignHandler handlers.CampaignHandlerInterface,
	negotiationHdlr handlers.NegotiationHandlerInterface,
	scriptHandler handlers.ScriptHandlerInterface,
	contentHandler handlers.ContentHandlerInterface,
	shortlistHandler handlers.ShortlistHandlerInterface,
	engagementHdlr handlers.EngagementHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Gandaberunda API",
		ServerHeader: "Gandaberunda",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB, covers shortlist spreadsheets
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		authMiddleware:   authMiddleware,
		campaignHandler:  campaignHandler,
		negotiationHdlr:  negotiationHdlr,
		scriptHandler:    scriptHandler,
		contentHandler:   contentHandler,
		shortlistHandler: shortlistHandler,
		engagementHdlr:   engagementHdlr,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group and rate limiter
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		log.Println("API documentation enabled for development")
	}

	// General rate limiting for all API routes (aligned with nginx)
	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Brand lane: campaign lifecycle and reviews
	campaigns := api.Group("/campaigns", r.authMiddleware.BrandAuthenticate())
	campaigns.Post("/", r.campaignHandler.CreateCampaign)
	campaigns.Get("/", r.campaignHandler.ListCampaigns)
	campaigns.Get("/:uuid", r.campaignHandler.GetCampaign)
	campaigns.Post("/:uuid/archive", r.campaignHandler.ArchiveCampaign)
	campaigns.Post("/:uuid/creators/respond", r.campaignHandler.RespondToCreators)
	campaigns.Post("/:uuid/amounts/finalize", r.campaignHandler.FinalizeCreatorAmounts)
	campaigns.Post("/:uuid/selection/submit", r.campaignHandler.SubmitCreatorSelection)
	campaigns.Put("/:uuid/brief", r.campaignHandler.PublishBrief)
	campaigns.Post("/:uuid/complete", r.campaignHandler.CompleteCampaign)
	campaigns.Get("/:uuid/engagements", r.campaignHandler.ListCampaignEngagements)
	campaigns.Post("/:uuid/scripts/review", r.scriptHandler.BatchReviewScripts)
	campaigns.Post("/:uuid/contents/review", r.contentHandler.BatchReviewContents)

	// Brand lane: per-engagement reviews
	brandEngagements := api.Group("/engagements", r.authMiddleware.BrandAuthenticate())
	brandEngagements.Post("/:uuid/bid/respond", r.negotiationHdlr.RespondToBid)
	brandEngagements.Post("/:uuid/script/review", r.scriptHandler.ReviewScript)
	brandEngagements.Post("/:uuid/content/review", r.contentHandler.ReviewContent)

	// Creator lane: bidding and submissions
	creator := api.Group("/creator", r.authMiddleware.CreatorAuthenticate())
	creator.Get("/engagements", r.engagementHdlr.ListMyEngagements)
	creator.Post("/engagements/:uuid/bid", r.negotiationHdlr.SubmitBid)
	creator.Post("/engagements/:uuid/deal/accept", r.negotiationHdlr.AcceptDeal)
	creator.Post("/engagements/:uuid/deal/reject", r.negotiationHdlr.RejectDeal)
	creator.Post("/engagements/:uuid/script", r.scriptHandler.SubmitScript)
	creator.Post("/engagements/:uuid/content", r.contentHandler.UploadContent)
	creator.Post("/engagements/:uuid/go-live", r.contentHandler.GoLive)

	// Admin lane: shortlist management
	admin := api.Group("/admin", r.authMiddleware.AdminAuthenticate())
	admin.Post("/campaigns/:uuid/shortlist", r.shortlistHandler.UploadShortlist)
	admin.Post("/campaigns/:uuid/shortlist/file", r.shortlistHandler.UploadShortlistFile)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://gandaberunda.com",
			"https://api.gandaberunda.com",
			"https://admin.gandaberunda.com",
			"https://app.gandaberunda.com",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Structured access logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus HTTP metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "gandaberunda-api",
		},
	})
}

// Serve Swagger JSON specification
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	swaggerData, err := os.ReadFile("docs/swagger.json")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(swaggerData)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
