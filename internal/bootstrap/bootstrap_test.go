package bootstrap

import (
	"context"
	"testing"

	"campuswall/internal/config"
	"campuswall/internal/database"
	"campuswall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBootstrapTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestEnsureChief_Disabled(t *testing.T) {
	db := setupBootstrapTestDB(t)
	cfg := &config.Config{BootstrapChief: false}

	require.NoError(t, EnsureChief(context.Background(), db, cfg))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestEnsureChief_CreatesAccount(t *testing.T) {
	db := setupBootstrapTestDB(t)
	cfg := &config.Config{
		BootstrapChief:         true,
		BootstrapChiefUsername: "chief",
		BootstrapChiefPassword: "Bootstrap!Pass9",
	}

	require.NoError(t, EnsureChief(context.Background(), db, cfg))

	var chief models.User
	require.NoError(t, db.Where("username = ?", "chief").First(&chief).Error)
	assert.Equal(t, models.RoleChief, chief.Role)
	assert.True(t, chief.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(chief.Password), []byte("Bootstrap!Pass9")))
}

func TestEnsureChief_NeverOverwrites(t *testing.T) {
	db := setupBootstrapTestDB(t)
	cfg := &config.Config{
		BootstrapChief:         true,
		BootstrapChiefUsername: "chief",
		BootstrapChiefPassword: "Bootstrap!Pass9",
	}
	require.NoError(t, EnsureChief(context.Background(), db, cfg))

	var before models.User
	require.NoError(t, db.Where("username = ?", "chief").First(&before).Error)

	cfg.BootstrapChiefPassword = "Different!Pass9"
	require.NoError(t, EnsureChief(context.Background(), db, cfg))

	var after models.User
	require.NoError(t, db.Where("username = ?", "chief").First(&after).Error)
	assert.Equal(t, before.Password, after.Password)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureChief_RequiresPassword(t *testing.T) {
	db := setupBootstrapTestDB(t)
	cfg := &config.Config{
		BootstrapChief:         true,
		BootstrapChiefUsername: "chief",
	}
	assert.Error(t, EnsureChief(context.Background(), db, cfg))

	cfg.BootstrapChiefPassword = "short"
	assert.Error(t, EnsureChief(context.Background(), db, cfg))
}
