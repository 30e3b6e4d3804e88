package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"critica/internal/cache"
	"critica/internal/config"
	"critica/internal/mail"
	"critica/internal/middleware"
	"critica/internal/models"
	"critica/internal/repository"
	"critica/internal/service"
	"critica/internal/token"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.SetupJoinTable(&models.Title{}, "Genres", &models.TitleGenre{}); err != nil {
		t.Fatalf("setup join table: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.TitleGenre{},
		&models.Review{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a Server against in-memory sqlite with the real route
// table. Prometheus registration is skipped so tests can build servers
// repeatedly.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db := setupServerTestDB(t)
	cfg := &config.Config{JWTSecret: "test_secret", Env: "test"}
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ratings := cache.NewRatingCache(nil)

	codes := token.NewCodeIssuer(cfg.JWTSecret)
	minter := token.NewMinter(cfg.JWTSecret, middleware.TokenIssuer, middleware.TokenAudience)

	s := &Server{
		config:       cfg,
		db:           db,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		titleRepo:    titleRepo,
		reviewRepo:   reviewRepo,
		commentRepo:  commentRepo,
		ratings:      ratings,
	}
	s.authService = service.NewAuthService(userRepo, codes, minter, &mail.LogSender{})
	s.userService = service.NewUserService(userRepo)
	s.catalogService = service.NewCatalogService(categoryRepo, genreRepo, titleRepo, ratings)
	s.reviewService = service.NewReviewService(reviewRepo, titleRepo, ratings)
	s.commentService = service.NewCommentService(commentRepo, reviewRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.SetupRoutes(app)

	return s, app, db
}

// createUser inserts a user directly and returns it with a valid bearer token.
func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		Role:             role,
		ConfirmationCode: models.ConfirmationCodePlaceholder,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	minter := token.NewMinter("test_secret", middleware.TokenIssuer, middleware.TokenAudience)
	signed, _, err := minter.Mint(user.ID)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return user, signed
}

func jsonRequest(t *testing.T, method, target string, body interface{}, bearer string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode body %q: %v", data, err)
	}
}
