// Package bootstrap performs one-time provisioning at server startup.
package bootstrap

import (
	"context"
	"errors"

	"campuswall/internal/config"
	"campuswall/internal/middleware"
	"campuswall/internal/models"
	"campuswall/internal/repository"
	"campuswall/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureChief creates the chief admin account when BOOTSTRAP_CHIEF is set
// and no account with the configured username exists. It never overwrites
// an existing account, so a changed config password does not silently
// rotate credentials.
func EnsureChief(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if !cfg.BootstrapChief {
		return nil
	}
	if cfg.BootstrapChiefPassword == "" {
		return errors.New("BOOTSTRAP_CHIEF is set but BOOTSTRAP_CHIEF_PASSWORD is empty")
	}
	if err := validation.ValidateUsername(cfg.BootstrapChiefUsername); err != nil {
		return err
	}
	if err := validation.ValidatePassword(cfg.BootstrapChiefPassword); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	if existing, err := userRepo.GetByUsername(ctx, cfg.BootstrapChiefUsername); err == nil {
		middleware.Logger.Info("chief account already present, skipping bootstrap",
			"username", existing.Username)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapChiefPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	chief := &models.User{
		Username: cfg.BootstrapChiefUsername,
		Password: string(hash),
		Role:     models.RoleChief,
		IsActive: true,
	}
	if err := userRepo.Create(ctx, chief); err != nil {
		return err
	}
	middleware.Logger.Info("chief account bootstrapped", "username", chief.Username)
	return nil
}
