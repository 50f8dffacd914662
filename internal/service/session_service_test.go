package service

import (
	"context"
	"testing"

	"campuswall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionService_GetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("existing token returns the stored session", func(t *testing.T) {
		t.Parallel()
		sessionRepo := noopSessionRepo()
		sessionRepo.getByTokenFn = func(_ context.Context, token string) (*models.Session, error) {
			return &models.Session{ID: 7, Token: token, CollegeCode: "cmu"}, nil
		}
		svc := NewSessionService(sessionRepo, noopCollegeRepo())

		session, err := svc.GetOrCreate(ctx, GetOrCreateSessionInput{Token: "known"})
		require.NoError(t, err)
		assert.Equal(t, uint(7), session.ID)
	})

	t.Run("unknown supplied token is adopted", func(t *testing.T) {
		t.Parallel()
		var created *models.Session
		sessionRepo := noopSessionRepo()
		sessionRepo.createFn = func(_ context.Context, s *models.Session) error {
			s.ID = 1
			created = s
			return nil
		}
		svc := NewSessionService(sessionRepo, noopCollegeRepo())

		session, err := svc.GetOrCreate(ctx, GetOrCreateSessionInput{
			Token:       "client-chosen-token",
			CollegeCode: "cmu",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "client-chosen-token", session.Token)
	})

	t.Run("empty token generates a fresh one", func(t *testing.T) {
		t.Parallel()
		svc := NewSessionService(noopSessionRepo(), noopCollegeRepo())

		session, err := svc.GetOrCreate(ctx, GetOrCreateSessionInput{CollegeCode: "cmu"})
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.NotEmpty(t, session.Nickname)
		assert.Equal(t, models.Today(), session.LastResetDate)
	})

	t.Run("unknown college", func(t *testing.T) {
		t.Parallel()
		collegeRepo := noopCollegeRepo()
		collegeRepo.getByCodeFn = func(_ context.Context, _ string) (*models.College, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewSessionService(noopSessionRepo(), collegeRepo)

		_, err := svc.GetOrCreate(ctx, GetOrCreateSessionInput{CollegeCode: "nowhere"})
		assertNotFoundError(t, err)
	})

	t.Run("invalid college code", func(t *testing.T) {
		t.Parallel()
		svc := NewSessionService(noopSessionRepo(), noopCollegeRepo())

		_, err := svc.GetOrCreate(ctx, GetOrCreateSessionInput{CollegeCode: "Bad Code"})
		assertValidationError(t, err)
	})
}

func TestSessionService_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		svc := NewSessionService(noopSessionRepo(), noopCollegeRepo())
		_, err := svc.Resolve(ctx, "")
		assertUnauthorizedError(t, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		svc := NewSessionService(noopSessionRepo(), noopCollegeRepo())
		_, err := svc.Resolve(ctx, "missing")
		assertUnauthorizedError(t, err)
	})
}

func TestRemainingQuota(t *testing.T) {
	t.Parallel()

	t.Run("stale reset date means full allowance", func(t *testing.T) {
		t.Parallel()
		session := &models.Session{DailyConfessionCount: 5, LastResetDate: "2001-01-01"}
		assert.Equal(t, DailyConfessionLimit, RemainingQuota(session))
	})

	t.Run("today's usage is subtracted", func(t *testing.T) {
		t.Parallel()
		session := &models.Session{DailyConfessionCount: 3, LastResetDate: models.Today()}
		assert.Equal(t, 2, RemainingQuota(session))
	})

	t.Run("never negative", func(t *testing.T) {
		t.Parallel()
		session := &models.Session{DailyConfessionCount: 99, LastResetDate: models.Today()}
		assert.Equal(t, 0, RemainingQuota(session))
	})
}
