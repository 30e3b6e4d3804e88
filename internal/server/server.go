// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"critica/internal/cache"
	"critica/internal/config"
	"critica/internal/database"
	"critica/internal/mail"
	"critica/internal/middleware"
	"critica/internal/models"
	"critica/internal/repository"
	"critica/internal/service"
	"critica/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	titleRepo    repository.TitleRepository
	reviewRepo   repository.ReviewRepository
	commentRepo  repository.CommentRepository

	ratings *cache.RatingCache

	authService    *service.AuthService
	userService    *service.UserService
	catalogService *service.CatalogService
	reviewService  *service.ReviewService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	middleware.InitMiddleware(cfg)
	prom := middleware.InitMetrics("critica-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		categoryRepo:   categoryRepo,
		genreRepo:      genreRepo,
		titleRepo:      titleRepo,
		reviewRepo:     reviewRepo,
		commentRepo:    commentRepo,
		ratings:        cache.NewRatingCache(redisClient),
	}

	codes := token.NewCodeIssuer(cfg.JWTSecret)
	minter := token.NewMinter(cfg.JWTSecret, middleware.TokenIssuer, middleware.TokenAudience)

	server.authService = service.NewAuthService(userRepo, codes, minter, mail.NewSender(cfg))
	server.userService = service.NewUserService(userRepo)
	server.catalogService = service.NewCatalogService(categoryRepo, genreRepo, titleRepo, server.ratings)
	server.reviewService = service.NewReviewService(reviewRepo, titleRepo, server.ratings)
	server.commentService = service.NewCommentService(commentRepo, reviewRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing spans
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/token", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "token"), s.ExchangeToken)

	// Category routes: reads are public, writes are admin-only
	categories := api.Group("/categories")
	categories.Get("/", middleware.OptionalAuth, s.GetCategories)
	categories.Post("/", middleware.AuthRequired, s.CreateCategory)
	categories.Delete("/:slug", middleware.AuthRequired, s.DeleteCategory)

	// Genre routes
	genres := api.Group("/genres")
	genres.Get("/", middleware.OptionalAuth, s.GetGenres)
	genres.Post("/", middleware.AuthRequired, s.CreateGenre)
	genres.Delete("/:slug", middleware.AuthRequired, s.DeleteGenre)

	// Title routes
	titles := api.Group("/titles")
	titles.Get("/", middleware.OptionalAuth, s.GetTitles)
	titles.Post("/", middleware.AuthRequired, s.CreateTitle)

	// Review routes nested under titles. Specific /:id/:resource routes
	// are defined BEFORE the generic /:id route.
	titles.Get("/:id/reviews", middleware.OptionalAuth, s.GetReviews)
	titles.Post("/:id/reviews", middleware.AuthRequired, s.CreateReview)
	titles.Get("/:id/reviews/:reviewId", middleware.OptionalAuth, s.GetReview)
	titles.Patch("/:id/reviews/:reviewId", middleware.AuthRequired, s.UpdateReview)
	titles.Delete("/:id/reviews/:reviewId", middleware.AuthRequired, s.DeleteReview)

	titles.Get("/:id", middleware.OptionalAuth, s.GetTitle)
	titles.Patch("/:id", middleware.AuthRequired, s.UpdateTitle)
	titles.Delete("/:id", middleware.AuthRequired, s.DeleteTitle)

	// Comment routes nested under reviews
	reviews := api.Group("/reviews")
	reviews.Get("/:id/comments", middleware.OptionalAuth, s.GetComments)
	reviews.Post("/:id/comments", middleware.AuthRequired, s.CreateComment)
	reviews.Patch("/:id/comments/:commentId", middleware.AuthRequired, s.UpdateComment)
	reviews.Delete("/:id/comments/:commentId", middleware.AuthRequired, s.DeleteComment)

	// User routes. /me routes before the generic /:username route.
	users := api.Group("/users", middleware.AuthRequired)
	users.Get("/me", s.GetMyProfile)
	users.Patch("/me", s.UpdateMyProfile)
	users.Get("/", s.GetAllUsers)
	users.Get("/:username", s.GetUser)
	users.Patch("/:username", s.UpdateUser)
	users.Delete("/:username", s.DeleteUser)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: rating reads fall back to the database.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Critica API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
