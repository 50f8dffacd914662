package service

import (
	"context"
	"errors"
	"strings"

	"campuswall/internal/models"
	"campuswall/internal/observability"
	"campuswall/internal/repository"
	"campuswall/internal/validation"

	"gorm.io/gorm"
)

const (
	defaultFeedLimit = repository.FeedPageSize
	maxFeedLimit     = 100
)

type ConfessionService struct {
	confessionRepo repository.ConfessionRepository
}

type CreateConfessionInput struct {
	Session  *models.Session
	Content  string
	Category string
	// Nickname overrides the session nickname for this post only.
	Nickname    string
	IsAnonymous bool
}

type FeedInput struct {
	CollegeCode string
	Category    string
	Limit       int
	Offset      int
}

func NewConfessionService(confessionRepo repository.ConfessionRepository) *ConfessionService {
	return &ConfessionService{confessionRepo: confessionRepo}
}

func (s *ConfessionService) Create(ctx context.Context, in CreateConfessionInput) (*models.Confession, error) {
	if err := validation.ValidateConfessionContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	nickname := in.Nickname
	if nickname == "" {
		nickname = in.Session.Nickname
	}

	confession := &models.Confession{
		Content:     strings.TrimSpace(in.Content),
		Category:    in.Category,
		CollegeCode: in.Session.CollegeCode,
		SessionID:   in.Session.ID,
		Nickname:    nickname,
		IsAnonymous: in.IsAnonymous,
	}

	today := models.Today()
	err := s.confessionRepo.CreateWithQuota(ctx, confession, today, DailyConfessionLimit)
	if err != nil {
		if errors.Is(err, repository.ErrQuotaExceeded) {
			observability.QuotaDenied.Inc()
			return nil, models.NewQuotaExceededError("Daily confession limit reached")
		}
		return nil, err
	}

	// Mirror the unit the conditional UPDATE consumed so callers can report
	// the remaining allowance without re-reading the session row.
	if in.Session.LastResetDate == today {
		in.Session.DailyConfessionCount++
	} else {
		in.Session.DailyConfessionCount = 1
		in.Session.LastResetDate = today
	}

	observability.ConfessionsCreated.WithLabelValues(confession.CollegeCode, confession.Category).Inc()
	return confession, nil
}

func (s *ConfessionService) Feed(ctx context.Context, in FeedInput) ([]*models.Confession, error) {
	if in.Category != "" {
		if err := validation.ValidateCategory(in.Category); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	return s.confessionRepo.ListApproved(ctx, in.CollegeCode, in.Category, limit, offset)
}

// Get returns a confession visible to the session: approved posts, or the
// session's own pending ones.
func (s *ConfessionService) Get(ctx context.Context, id uint, session *models.Session) (*models.Confession, error) {
	confession, err := s.confessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession not found")
		}
		return nil, err
	}
	if !confession.IsApproved && (session == nil || confession.SessionID != session.ID) {
		return nil, models.NewNotFoundError("Confession not found")
	}
	return confession, nil
}

func (s *ConfessionService) ListMine(ctx context.Context, session *models.Session, limit, offset int) ([]*models.Confession, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return s.confessionRepo.ListBySession(ctx, session.ID, limit, offset)
}

// ToggleLike flips the session's like on an approved confession. Returns
// "liked" or "unliked" plus the refreshed confession.
func (s *ConfessionService) ToggleLike(ctx context.Context, id uint, session *models.Session) (string, *models.Confession, error) {
	confession, err := s.Get(ctx, id, session)
	if err != nil {
		return "", nil, err
	}
	if !confession.IsApproved {
		return "", nil, models.NewValidationError("Cannot like an unapproved confession")
	}

	liked, err := s.confessionRepo.ToggleLike(ctx, id, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, models.NewNotFoundError("Confession not found")
		}
		return "", nil, err
	}

	refreshed, err := s.confessionRepo.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}

	action := "unliked"
	if liked {
		action = "liked"
	}
	return action, refreshed, nil
}
