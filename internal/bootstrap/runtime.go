// Package bootstrap prepares the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// InitRuntime connects to the database (applying the schema policy) and Redis
// and ensures the owner account exists. The Redis client is nil when Redis is
// unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureOwner(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap owner account: %w", err)
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// EnsureOwner creates or promotes the account named by OWNER_EMAIL. It is a
// no-op when no owner is configured. An existing account keeps its password.
func EnsureOwner(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.OwnerEmail))
	if email == "" {
		return nil
	}
	if cfg.OwnerPassword == "" {
		return errors.New("OWNER_PASSWORD must be set together with OWNER_EMAIL")
	}
	username := strings.ToLower(strings.TrimSpace(cfg.OwnerUsername))
	if username == "" {
		username = "owner"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}

	created := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		findErr := tx.Where("email = ?", email).First(&owner).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(&models.User{
				Name:               "Owner",
				Username:           username,
				Email:              email,
				Password:           string(hashed),
				Location:           models.DefaultLocation,
				Role:               models.RoleOwner,
				SubscriptionStatus: models.SubscriptionTick,
				VerifiedType:       models.VerifiedBlack,
			}).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", owner.ID).Updates(map[string]any{
				"role":                models.RoleOwner,
				"subscription_status": models.SubscriptionTick,
				"verified_type":       models.VerifiedBlack,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("owner account ensured", "email", email, "created", created)
	return nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	var tweets int64
	if err := db.WithContext(ctx).Model(&models.Tweet{}).Count(&tweets).Error; err != nil {
		return err
	}
	if tweets > 0 {
		return nil
	}
	_, err := seed.Seed(ctx, db, seed.DefaultOptions())
	return err
}
