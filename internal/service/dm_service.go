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

type DirectMessageService struct {
	dmRepo      repository.DirectMessageRepository
	sessionRepo repository.SessionRepository
}

type SendDirectMessageInput struct {
	Session     *models.Session
	ToSessionID uint
	Content     string
}

func NewDirectMessageService(dmRepo repository.DirectMessageRepository, sessionRepo repository.SessionRepository) *DirectMessageService {
	return &DirectMessageService{dmRepo: dmRepo, sessionRepo: sessionRepo}
}

func (s *DirectMessageService) Send(ctx context.Context, in SendDirectMessageInput) (*models.DirectMessage, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.ToSessionID == in.Session.ID {
		return nil, models.NewValidationError("Cannot message yourself")
	}

	if _, err := s.sessionRepo.GetByID(ctx, in.ToSessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipient not found")
		}
		return nil, err
	}

	dm := &models.DirectMessage{
		Content:       strings.TrimSpace(in.Content),
		FromSessionID: in.Session.ID,
		ToSessionID:   in.ToSessionID,
	}
	if err := s.dmRepo.Create(ctx, dm); err != nil {
		return nil, err
	}
	return dm, nil
}

// List returns the session's direct messages: everything it sent plus
// approved messages addressed to it.
func (s *DirectMessageService) List(ctx context.Context, session *models.Session) ([]*models.DirectMessage, error) {
	return s.dmRepo.ListVisible(ctx, session.ID)
}
