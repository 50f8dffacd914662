package repository

import (
	"testing"

	"campuswall/internal/database"
	"campuswall/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestSession(t *testing.T, db *gorm.DB, token, collegeCode string) *models.Session {
	t.Helper()

	session := &models.Session{
		Token:         token,
		CollegeCode:   collegeCode,
		Nickname:      "Anon",
		LastResetDate: models.Today(),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return session
}
