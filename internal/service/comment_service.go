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

type CommentService struct {
	commentRepo    repository.CommentRepository
	confessionRepo repository.ConfessionRepository
}

type CreateCommentInput struct {
	Session      *models.Session
	ConfessionID uint
	Content      string
	Nickname     string
}

func NewCommentService(commentRepo repository.CommentRepository, confessionRepo repository.ConfessionRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, confessionRepo: confessionRepo}
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	confession, err := s.confessionRepo.GetByID(ctx, in.ConfessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession not found")
		}
		return nil, err
	}
	if !confession.IsApproved {
		return nil, models.NewValidationError("Cannot comment on an unapproved confession")
	}

	nickname := in.Nickname
	if nickname == "" {
		nickname = in.Session.Nickname
	}

	comment := &models.Comment{
		Content:      strings.TrimSpace(in.Content),
		ConfessionID: in.ConfessionID,
		SessionID:    in.Session.ID,
		Nickname:     nickname,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns approved comments on an approved confession.
func (s *CommentService) List(ctx context.Context, confessionID uint) ([]*models.Comment, error) {
	confession, err := s.confessionRepo.GetByID(ctx, confessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession not found")
		}
		return nil, err
	}
	if !confession.IsApproved {
		return nil, models.NewNotFoundError("Confession not found")
	}
	return s.commentRepo.ListApprovedByConfession(ctx, confessionID)
}
