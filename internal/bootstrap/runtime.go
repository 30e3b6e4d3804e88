// Package bootstrap establishes runtime dependencies before the HTTP
// server starts serving.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"critica/internal/cache"
	"critica/internal/config"
	"critica/internal/database"
	"critica/internal/middleware"
	"critica/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to DB and Redis and optionally bootstraps a
// development admin account.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, nil
}

// ensureDevAdmin guarantees an admin account exists in development. The
// account is passwordless like every other: it still authenticates through
// the signup and token-exchange flow.
func ensureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrap {
		return nil
	}

	username := strings.TrimSpace(cfg.DevAdminName)
	if username == "" {
		username = "critica_admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@critica.local"
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				Username:         username,
				Email:            email,
				Role:             models.RoleAdmin,
				ConfirmationCode: models.ConfirmationCodePlaceholder,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			middleware.Logger.Info("development admin bootstrapped",
				"username", username, "email", email)
		case findErr != nil:
			return findErr
		default:
			if admin.Role != models.RoleAdmin {
				if err := tx.Model(&models.User{}).
					Where("id = ?", admin.ID).
					Update("role", models.RoleAdmin).Error; err != nil {
					return err
				}
				middleware.Logger.Info("development admin role restored",
					"username", username)
			}
		}
		return nil
	})
}
