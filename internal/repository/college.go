package repository

import (
	"context"

	"campuswall/internal/models"

	"gorm.io/gorm"
)

// CollegeRepository defines the interface for college data operations
type CollegeRepository interface {
	Create(ctx context.Context, college *models.College) error
	GetByCode(ctx context.Context, code string) (*models.College, error)
	ListActive(ctx context.Context) ([]*models.College, error)
	Update(ctx context.Context, college *models.College) error
}

type collegeRepository struct {
	db *gorm.DB
}

// NewCollegeRepository creates a new college repository
func NewCollegeRepository(db *gorm.DB) CollegeRepository {
	return &collegeRepository{db: db}
}

func (r *collegeRepository) Create(ctx context.Context, college *models.College) error {
	return r.db.WithContext(ctx).Create(college).Error
}

func (r *collegeRepository) GetByCode(ctx context.Context, code string) (*models.College, error) {
	var college models.College
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&college).Error; err != nil {
		return nil, err
	}
	return &college, nil
}

func (r *collegeRepository) ListActive(ctx context.Context) ([]*models.College, error) {
	var colleges []*models.College
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&colleges).Error
	return colleges, err
}

func (r *collegeRepository) Update(ctx context.Context, college *models.College) error {
	return r.db.WithContext(ctx).Save(college).Error
}
