package repository

import (
	"context"

	"campuswall/internal/models"

	"gorm.io/gorm"
)

// DirectMessageRepository defines the interface for direct message data operations
type DirectMessageRepository interface {
	Create(ctx context.Context, dm *models.DirectMessage) error
	GetByID(ctx context.Context, id uint) (*models.DirectMessage, error)
	// ListVisible returns messages the session may see: everything it sent
	// plus approved messages addressed to it.
	ListVisible(ctx context.Context, sessionID uint) ([]*models.DirectMessage, error)
	ListPending(ctx context.Context) ([]*models.DirectMessage, error)
	// Review sets the message to approved or rejected with an optional
	// note. Reviewed messages may be re-decided (status and note are
	// overwritten); they only leave the pending queue, never re-enter it.
	Review(ctx context.Context, id uint, status, adminNote string) (*models.DirectMessage, error)
}

type directMessageRepository struct {
	db *gorm.DB
}

// NewDirectMessageRepository creates a new direct message repository
func NewDirectMessageRepository(db *gorm.DB) DirectMessageRepository {
	return &directMessageRepository{db: db}
}

func (r *directMessageRepository) Create(ctx context.Context, dm *models.DirectMessage) error {
	dm.Status = models.DMStatusPending
	return r.db.WithContext(ctx).Create(dm).Error
}

func (r *directMessageRepository) GetByID(ctx context.Context, id uint) (*models.DirectMessage, error) {
	var dm models.DirectMessage
	if err := r.db.WithContext(ctx).First(&dm, id).Error; err != nil {
		return nil, err
	}
	return &dm, nil
}

func (r *directMessageRepository) ListVisible(ctx context.Context, sessionID uint) ([]*models.DirectMessage, error) {
	var dms []*models.DirectMessage
	err := r.db.WithContext(ctx).
		Where("from_session_id = ? OR (to_session_id = ? AND status = ?)",
			sessionID, sessionID, models.DMStatusApproved).
		Order("created_at DESC").
		Find(&dms).Error
	return dms, err
}

func (r *directMessageRepository) ListPending(ctx context.Context) ([]*models.DirectMessage, error) {
	var dms []*models.DirectMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", models.DMStatusPending).
		Order("created_at DESC").
		Find(&dms).Error
	return dms, err
}

func (r *directMessageRepository) Review(ctx context.Context, id uint, status, adminNote string) (*models.DirectMessage, error) {
	var dm models.DirectMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&dm, id).Error; err != nil {
			return err
		}
		dm.Status = status
		dm.AdminNote = adminNote
		return tx.Model(&dm).Updates(map[string]interface{}{
			"status":     status,
			"admin_note": adminNote,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &dm, nil
}
