package service

import (
	"context"
	"errors"
	"strings"

	"campuswall/internal/models"
	"campuswall/internal/repository"
	"campuswall/internal/validation"

	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

type ChatService struct {
	chatRepo repository.ChatRepository
}

type PostChatMessageInput struct {
	Session  *models.Session
	RoomID   uint
	Content  string
	Nickname string
}

func NewChatService(chatRepo repository.ChatRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

// ListRooms returns the active rooms for the session's college.
func (s *ChatService) ListRooms(ctx context.Context, session *models.Session) ([]*models.ChatRoom, error) {
	return s.chatRepo.ListRooms(ctx, session.CollegeCode)
}

// JoinRoom validates that the session may enter the room: the room exists,
// is active, and belongs to the session's college.
func (s *ChatService) JoinRoom(ctx context.Context, session *models.Session, roomID uint) (*models.ChatRoom, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Room not found")
		}
		return nil, err
	}
	if !room.IsActive {
		return nil, models.NewNotFoundError("Room not found")
	}
	if room.CollegeCode != session.CollegeCode {
		return nil, models.NewUnauthorizedError("Room belongs to another campus")
	}
	return room, nil
}

func (s *ChatService) History(ctx context.Context, session *models.Session, roomID uint, limit int) ([]*models.ChatMessage, error) {
	if _, err := s.JoinRoom(ctx, session, roomID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return s.chatRepo.ListRecentMessages(ctx, roomID, limit)
}

// PostMessage persists a chat message. Fan-out to connected clients happens
// after the write succeeds, never before.
func (s *ChatService) PostMessage(ctx context.Context, in PostChatMessageInput) (*models.ChatMessage, error) {
	if err := validation.ValidateChatMessage(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.JoinRoom(ctx, in.Session, in.RoomID); err != nil {
		return nil, err
	}

	nickname := in.Nickname
	if nickname == "" {
		nickname = in.Session.Nickname
	}

	msg := &models.ChatMessage{
		Content:   strings.TrimSpace(in.Content),
		RoomID:    in.RoomID,
		SessionID: in.Session.ID,
		Nickname:  nickname,
		IsPublic:  true,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
