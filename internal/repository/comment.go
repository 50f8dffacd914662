package repository

import (
	"context"

	"campuswall/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// Create inserts the comment and bumps the confession's comment counter
	// in one transaction.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListApprovedByConfession(ctx context.Context, confessionID uint) ([]*models.Comment, error)
	ListPending(ctx context.Context, collegeCode string) ([]*models.Comment, error)
	Approve(ctx context.Context, id uint) (*models.Comment, error)
	// Delete removes the comment and decrements the confession counter.
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Confession{}, comment.ConfessionID).Error; err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE confessions SET comment_count = comment_count + 1 WHERE id = ?`,
			comment.ConfessionID,
		).Error
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListApprovedByConfession(ctx context.Context, confessionID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("confession_id = ? AND is_approved = ?", confessionID, true).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ListPending returns unreviewed comments, optionally scoped to a college
// via the parent confession.
func (r *commentRepository) ListPending(ctx context.Context, collegeCode string) ([]*models.Comment, error) {
	var comments []*models.Comment
	q := r.db.WithContext(ctx).Where("comments.is_approved = ?", false)
	if collegeCode != "" {
		q = q.Joins("JOIN confessions ON confessions.id = comments.confession_id").
			Where("confessions.college_code = ?", collegeCode)
	}
	err := q.Order("comments.created_at DESC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Approve(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		if comment.IsApproved {
			return ErrAlreadyReviewed
		}
		comment.IsApproved = true
		return tx.Model(&comment).Update("is_approved", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return err
		}
		// Keep the denormalized counter in step with the row removal.
		return tx.Exec(
			`UPDATE confessions SET comment_count = CASE WHEN comment_count > 0 THEN comment_count - 1 ELSE 0 END WHERE id = ?`,
			comment.ConfessionID,
		).Error
	})
}
