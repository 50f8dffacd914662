package repository

import (
	"context"

	"campuswall/internal/cache"
	"campuswall/internal/models"
	"campuswall/internal/observability"
	"campuswall/internal/validation"

	"gorm.io/gorm"
)

// FeedPageSize is the default feed page size and the only page geometry the
// cache stores. Requests for other limits always hit the database, so a
// small custom page can never be served to a default-size request.
const FeedPageSize = 20

// ConfessionRepository defines the interface for confession data operations
type ConfessionRepository interface {
	// CreateWithQuota inserts the confession and consumes one unit of the
	// session's daily allowance in the same transaction. Returns
	// ErrQuotaExceeded when the allowance for today is spent.
	CreateWithQuota(ctx context.Context, confession *models.Confession, today string, limit int) error
	GetByID(ctx context.Context, id uint) (*models.Confession, error)
	ListApproved(ctx context.Context, collegeCode, category string, limit, offset int) ([]*models.Confession, error)
	ListPending(ctx context.Context, collegeCode string) ([]*models.Confession, error)
	ListBySession(ctx context.Context, sessionID uint, limit, offset int) ([]*models.Confession, error)
	Approve(ctx context.Context, id uint) (*models.Confession, error)
	Delete(ctx context.Context, id uint) error
	// ToggleLike flips the session's like on the confession and adjusts the
	// denormalized counter in one transaction. Returns true when the result
	// is a like, false when the result is an unlike.
	ToggleLike(ctx context.Context, confessionID, sessionID uint) (bool, error)
	IsLiked(ctx context.Context, confessionID, sessionID uint) (bool, error)
}

type confessionRepository struct {
	db *gorm.DB
}

// NewConfessionRepository creates a new confession repository
func NewConfessionRepository(db *gorm.DB) ConfessionRepository {
	return &confessionRepository{db: db}
}

func (r *confessionRepository) CreateWithQuota(ctx context.Context, confession *models.Confession, today string, limit int) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "CreateWithQuota", "confessions")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One conditional UPDATE handles both the daily rollover and the
		// allowance check, so two racing submissions cannot both pass on
		// the last remaining unit.
		res := tx.Exec(
			`UPDATE sessions
			 SET daily_confession_count = CASE WHEN last_reset_date = ? THEN daily_confession_count + 1 ELSE 1 END,
			     last_reset_date = ?
			 WHERE id = ? AND (last_reset_date <> ? OR daily_confession_count < ?)`,
			today, today, confession.SessionID, today, limit,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuotaExceeded
		}

		return tx.Create(confession).Error
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *confessionRepository) GetByID(ctx context.Context, id uint) (*models.Confession, error) {
	var confession models.Confession
	err := r.db.WithContext(ctx).First(&confession, id).Error
	if err != nil {
		return nil, err
	}
	return &confession, nil
}

func (r *confessionRepository) ListApproved(ctx context.Context, collegeCode, category string, limit, offset int) ([]*models.Confession, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListApproved", "confessions")
	defer span.End()

	var confessions []*models.Confession

	load := func() error {
		q := r.db.WithContext(ctx).
			Where("is_approved = ? AND college_code = ?", true, collegeCode)
		if category != "" {
			q = q.Where("category = ?", category)
		}
		return q.Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&confessions).Error
	}

	// Only the default-size first page is cached; other geometries are rare
	// and cheap, and caching them under the same key would serve truncated
	// pages to default requests.
	if offset == 0 && limit == FeedPageSize {
		err := cache.Aside(ctx, cache.FeedKey(collegeCode, category), &confessions, cache.FeedTTL, load)
		return confessions, err
	}

	if err := load(); err != nil {
		return nil, err
	}
	return confessions, nil
}

func (r *confessionRepository) ListPending(ctx context.Context, collegeCode string) ([]*models.Confession, error) {
	var confessions []*models.Confession
	q := r.db.WithContext(ctx).Where("is_approved = ?", false)
	if collegeCode != "" {
		q = q.Where("college_code = ?", collegeCode)
	}
	err := q.Order("created_at DESC").Find(&confessions).Error
	return confessions, err
}

func (r *confessionRepository) ListBySession(ctx context.Context, sessionID uint, limit, offset int) ([]*models.Confession, error) {
	var confessions []*models.Confession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&confessions).Error
	return confessions, err
}

func (r *confessionRepository) Approve(ctx context.Context, id uint) (*models.Confession, error) {
	var confession models.Confession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&confession, id).Error; err != nil {
			return err
		}
		if confession.IsApproved {
			return ErrAlreadyReviewed
		}
		confession.IsApproved = true
		return tx.Model(&confession).Update("is_approved", true).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateConfession(ctx, id)
	cache.InvalidateFeeds(ctx, confession.CollegeCode, validation.Categories())
	return &confession, nil
}

func (r *confessionRepository) Delete(ctx context.Context, id uint) error {
	var confession models.Confession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&confession, id).Error; err != nil {
			return err
		}
		if err := tx.Where("confession_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("confession_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Confession{}, id).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateConfession(ctx, id)
	cache.InvalidateFeeds(ctx, confession.CollegeCode, validation.Categories())
	return nil
}

func (r *confessionRepository) ToggleLike(ctx context.Context, confessionID, sessionID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Confession{}, confessionID).Error; err != nil {
			return err
		}

		// INSERT ... ON CONFLICT DO NOTHING is atomic; a zero row count
		// means the like already existed and this toggle removes it.
		res := tx.Exec(
			`INSERT INTO likes (confession_id, session_id, created_at)
			 VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (confession_id, session_id) DO NOTHING`,
			confessionID, sessionID,
		)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			liked = true
			return tx.Exec(
				`UPDATE confessions SET likes = likes + 1 WHERE id = ?`,
				confessionID,
			).Error
		}

		liked = false
		if err := tx.Where("confession_id = ? AND session_id = ?", confessionID, sessionID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		// Floor at zero so a drifted counter can never go negative.
		return tx.Exec(
			`UPDATE confessions SET likes = CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END WHERE id = ?`,
			confessionID,
		).Error
	})
	if err != nil {
		return false, err
	}

	action := "unliked"
	if liked {
		action = "liked"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()
	cache.InvalidateConfession(ctx, confessionID)
	return liked, nil
}

func (r *confessionRepository) IsLiked(ctx context.Context, confessionID, sessionID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("confession_id = ? AND session_id = ?", confessionID, sessionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
