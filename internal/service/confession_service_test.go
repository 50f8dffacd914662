package service

import (
	"context"
	"strings"
	"testing"

	"campuswall/internal/models"
	"campuswall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *models.Session {
	return &models.Session{ID: 1, Token: "tok", CollegeCode: "cmu", Nickname: "Anon-1234"}
}

func TestConfessionService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc := NewConfessionService(noopConfessionRepo())
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Create(ctx, CreateConfessionInput{Session: testSession(), Category: "rants"})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Create(ctx, CreateConfessionInput{
			Session:  testSession(),
			Category: "rants",
			Content:  strings.Repeat("x", 1001),
		})
		assertValidationError(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Create(ctx, CreateConfessionInput{
			Session:  testSession(),
			Category: "gossip",
			Content:  "hello",
		})
		assertValidationError(t, err)
	})
}

func TestConfessionService_Create_Success(t *testing.T) {
	t.Parallel()

	var captured *models.Confession
	repo := noopConfessionRepo()
	repo.createWithQuotaFn = func(_ context.Context, c *models.Confession, today string, limit int) error {
		c.ID = 42
		captured = c
		assert.Equal(t, models.Today(), today)
		assert.Equal(t, DailyConfessionLimit, limit)
		return nil
	}

	svc := NewConfessionService(repo)
	confession, err := svc.Create(context.Background(), CreateConfessionInput{
		Session:     testSession(),
		Category:    "crush",
		Content:     "  trimmed content  ",
		IsAnonymous: true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), confession.ID)
	assert.Equal(t, "trimmed content", captured.Content)
	assert.Equal(t, "cmu", captured.CollegeCode)
	// Session nickname is the default when none is supplied.
	assert.Equal(t, "Anon-1234", captured.Nickname)
	assert.False(t, captured.IsApproved)
}

func TestConfessionService_Create_QuotaExceeded(t *testing.T) {
	t.Parallel()

	repo := noopConfessionRepo()
	repo.createWithQuotaFn = func(_ context.Context, _ *models.Confession, _ string, _ int) error {
		return repository.ErrQuotaExceeded
	}

	svc := NewConfessionService(repo)
	_, err := svc.Create(context.Background(), CreateConfessionInput{
		Session:  testSession(),
		Category: "rants",
		Content:  "one too many",
	})
	assertAppError(t, err, models.CodeQuotaExceeded)
}

func TestConfessionService_Feed_LimitClamping(t *testing.T) {
	t.Parallel()

	var gotLimit, gotOffset int
	repo := noopConfessionRepo()
	repo.listApprovedFn = func(_ context.Context, _, _ string, limit, offset int) ([]*models.Confession, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}
	svc := NewConfessionService(repo)
	ctx := context.Background()

	_, err := svc.Feed(ctx, FeedInput{CollegeCode: "cmu"})
	require.NoError(t, err)
	assert.Equal(t, defaultFeedLimit, gotLimit)

	_, err = svc.Feed(ctx, FeedInput{CollegeCode: "cmu", Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, maxFeedLimit, gotLimit)
	assert.Equal(t, 0, gotOffset)

	_, err = svc.Feed(ctx, FeedInput{CollegeCode: "cmu", Category: "gossip"})
	assertValidationError(t, err)
}

func TestConfessionService_Get_Visibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("pending post hidden from strangers", func(t *testing.T) {
		t.Parallel()
		repo := noopConfessionRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Confession, error) {
			return &models.Confession{ID: id, SessionID: 99, IsApproved: false}, nil
		}
		svc := NewConfessionService(repo)
		_, err := svc.Get(ctx, 1, testSession())
		assertNotFoundError(t, err)
	})

	t.Run("pending post visible to its author", func(t *testing.T) {
		t.Parallel()
		repo := noopConfessionRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Confession, error) {
			return &models.Confession{ID: id, SessionID: 1, IsApproved: false}, nil
		}
		svc := NewConfessionService(repo)
		confession, err := svc.Get(ctx, 1, testSession())
		require.NoError(t, err)
		assert.Equal(t, uint(1), confession.ID)
	})
}

func TestConfessionService_ToggleLike(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns liked action", func(t *testing.T) {
		t.Parallel()
		repo := noopConfessionRepo()
		repo.toggleLikeFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		svc := NewConfessionService(repo)

		action, confession, err := svc.ToggleLike(ctx, 1, testSession())
		require.NoError(t, err)
		assert.Equal(t, "liked", action)
		assert.NotNil(t, confession)
	})

	t.Run("returns unliked action", func(t *testing.T) {
		t.Parallel()
		repo := noopConfessionRepo()
		repo.toggleLikeFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
		svc := NewConfessionService(repo)

		action, _, err := svc.ToggleLike(ctx, 1, testSession())
		require.NoError(t, err)
		assert.Equal(t, "unliked", action)
	})

	t.Run("pending confession cannot be liked", func(t *testing.T) {
		t.Parallel()
		repo := noopConfessionRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Confession, error) {
			return &models.Confession{ID: id, SessionID: 1, IsApproved: false}, nil
		}
		svc := NewConfessionService(repo)
		_, _, err := svc.ToggleLike(ctx, 1, testSession())
		assertValidationError(t, err)
	})
}
