// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	"campuswall/internal/models"
	"campuswall/internal/repository"
	"campuswall/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyConfessionLimit is the number of confessions a session may submit
// per calendar day.
const DailyConfessionLimit = 5

type SessionService struct {
	sessionRepo repository.SessionRepository
	collegeRepo repository.CollegeRepository
}

type GetOrCreateSessionInput struct {
	// Token is the value of the X-Session-Token header, empty for first
	// contact. An unknown token is adopted rather than replaced so a client
	// that races its first two requests converges on one identity.
	Token       string
	CollegeCode string
	Nickname    string
}

func NewSessionService(sessionRepo repository.SessionRepository, collegeRepo repository.CollegeRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo, collegeRepo: collegeRepo}
}

func (s *SessionService) GetOrCreate(ctx context.Context, in GetOrCreateSessionInput) (*models.Session, error) {
	if in.Token != "" {
		session, err := s.sessionRepo.GetByToken(ctx, in.Token)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := validation.ValidateCollegeCode(in.CollegeCode); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.collegeRepo.GetByCode(ctx, in.CollegeCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("College not found")
		}
		return nil, err
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	token := in.Token
	if token == "" {
		token = uuid.NewString()
	}
	nickname := in.Nickname
	if nickname == "" {
		nickname = anonNickname()
	}

	session := &models.Session{
		Token:         token,
		CollegeCode:   in.CollegeCode,
		Nickname:      nickname,
		LastResetDate: models.Today(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resolve returns the session for a token, without creating one.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, models.NewUnauthorizedError("Session token required")
	}
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Unknown session token")
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) UpdateNickname(ctx context.Context, session *models.Session, nickname string) (*models.Session, error) {
	if err := validation.ValidateNickname(nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if nickname == "" {
		return nil, models.NewValidationError("Nickname is required")
	}
	session.Nickname = nickname
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RemainingQuota reports how many confessions the session may still submit
// today. The stored counter only rolls over when a submission happens, so a
// stale LastResetDate means a full allowance.
func RemainingQuota(session *models.Session) int {
	if session.LastResetDate != models.Today() {
		return DailyConfessionLimit
	}
	remaining := DailyConfessionLimit - session.DailyConfessionCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func anonNickname() string {
	return fmt.Sprintf("Anon-%s", uuid.NewString()[:8])
}
