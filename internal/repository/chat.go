package repository

import (
	"context"

	"campuswall/internal/cache"
	"campuswall/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat room and message data operations
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, collegeCode string) ([]*models.ChatRoom, error)
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	// ListRecentMessages returns the newest messages in chronological order.
	ListRecentMessages(ctx context.Context, roomID uint, limit int) ([]*models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *chatRepository) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := cache.Aside(ctx, cache.RoomKey(id), &room, cache.ConfessionTTL, func() error {
		return r.db.WithContext(ctx).First(&room, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) ListRooms(ctx context.Context, collegeCode string) ([]*models.ChatRoom, error) {
	var rooms []*models.ChatRoom
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if collegeCode != "" {
		q = q.Where("college_code = ?", collegeCode)
	}
	err := q.Order("name ASC").Find(&rooms).Error
	return rooms, err
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.MessageHistoryKey(msg.RoomID))
	return nil
}

func (r *chatRepository) ListRecentMessages(ctx context.Context, roomID uint, limit int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage

	load := func() error {
		if err := r.db.WithContext(ctx).
			Where("room_id = ?", roomID).
			Order("created_at DESC").
			Limit(limit).
			Find(&messages).Error; err != nil {
			return err
		}
		// Reverse to chronological order for display.
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
		return nil
	}

	err := cache.Aside(ctx, cache.MessageHistoryKey(roomID), &messages, cache.MessageHistoryTTL, load)
	return messages, err
}
