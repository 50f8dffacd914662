package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuswall/internal/models"
	"campuswall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// sessionRepoStub is a stub for repository.SessionRepository.
type sessionRepoStub struct {
	createFn     func(context.Context, *models.Session) error
	getByTokenFn func(context.Context, string) (*models.Session, error)
	getByIDFn    func(context.Context, uint) (*models.Session, error)
	updateFn     func(context.Context, *models.Session) error
	linkUserFn   func(context.Context, uint, uint) error
}

func (s *sessionRepoStub) Create(ctx context.Context, session *models.Session) error {
	return s.createFn(ctx, session)
}
func (s *sessionRepoStub) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	return s.getByTokenFn(ctx, token)
}
func (s *sessionRepoStub) GetByID(ctx context.Context, id uint) (*models.Session, error) {
	return s.getByIDFn(ctx, id)
}
func (s *sessionRepoStub) Update(ctx context.Context, session *models.Session) error {
	return s.updateFn(ctx, session)
}
func (s *sessionRepoStub) LinkUser(ctx context.Context, sessionID, userID uint) error {
	return s.linkUserFn(ctx, sessionID, userID)
}

func noopSessionRepo() *sessionRepoStub {
	return &sessionRepoStub{
		createFn: func(_ context.Context, s *models.Session) error {
			s.ID = 1
			return nil
		},
		getByTokenFn: func(_ context.Context, _ string) (*models.Session, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Session, error) {
			return &models.Session{ID: id}, nil
		},
		updateFn:   func(_ context.Context, _ *models.Session) error { return nil },
		linkUserFn: func(_ context.Context, _, _ uint) error { return nil },
	}
}

// collegeRepoStub is a stub for repository.CollegeRepository.
type collegeRepoStub struct {
	createFn     func(context.Context, *models.College) error
	getByCodeFn  func(context.Context, string) (*models.College, error)
	listActiveFn func(context.Context) ([]*models.College, error)
	updateFn     func(context.Context, *models.College) error
}

func (s *collegeRepoStub) Create(ctx context.Context, college *models.College) error {
	return s.createFn(ctx, college)
}
func (s *collegeRepoStub) GetByCode(ctx context.Context, code string) (*models.College, error) {
	return s.getByCodeFn(ctx, code)
}
func (s *collegeRepoStub) ListActive(ctx context.Context) ([]*models.College, error) {
	return s.listActiveFn(ctx)
}
func (s *collegeRepoStub) Update(ctx context.Context, college *models.College) error {
	return s.updateFn(ctx, college)
}

func noopCollegeRepo() *collegeRepoStub {
	return &collegeRepoStub{
		createFn: func(_ context.Context, c *models.College) error {
			c.ID = 1
			return nil
		},
		getByCodeFn: func(_ context.Context, code string) (*models.College, error) {
			return &models.College{ID: 1, Name: "Test College", Code: code, IsActive: true}, nil
		},
		listActiveFn: func(_ context.Context) ([]*models.College, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.College) error { return nil },
	}
}

// confessionRepoStub is a stub for repository.ConfessionRepository.
type confessionRepoStub struct {
	createWithQuotaFn func(context.Context, *models.Confession, string, int) error
	getByIDFn         func(context.Context, uint) (*models.Confession, error)
	listApprovedFn    func(context.Context, string, string, int, int) ([]*models.Confession, error)
	listPendingFn     func(context.Context, string) ([]*models.Confession, error)
	listBySessionFn   func(context.Context, uint, int, int) ([]*models.Confession, error)
	approveFn         func(context.Context, uint) (*models.Confession, error)
	deleteFn          func(context.Context, uint) error
	toggleLikeFn      func(context.Context, uint, uint) (bool, error)
	isLikedFn         func(context.Context, uint, uint) (bool, error)
}

func (s *confessionRepoStub) CreateWithQuota(ctx context.Context, c *models.Confession, today string, limit int) error {
	return s.createWithQuotaFn(ctx, c, today, limit)
}
func (s *confessionRepoStub) GetByID(ctx context.Context, id uint) (*models.Confession, error) {
	return s.getByIDFn(ctx, id)
}
func (s *confessionRepoStub) ListApproved(ctx context.Context, college, category string, limit, offset int) ([]*models.Confession, error) {
	return s.listApprovedFn(ctx, college, category, limit, offset)
}
func (s *confessionRepoStub) ListPending(ctx context.Context, college string) ([]*models.Confession, error) {
	return s.listPendingFn(ctx, college)
}
func (s *confessionRepoStub) ListBySession(ctx context.Context, sessionID uint, limit, offset int) ([]*models.Confession, error) {
	return s.listBySessionFn(ctx, sessionID, limit, offset)
}
func (s *confessionRepoStub) Approve(ctx context.Context, id uint) (*models.Confession, error) {
	return s.approveFn(ctx, id)
}
func (s *confessionRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *confessionRepoStub) ToggleLike(ctx context.Context, confessionID, sessionID uint) (bool, error) {
	return s.toggleLikeFn(ctx, confessionID, sessionID)
}
func (s *confessionRepoStub) IsLiked(ctx context.Context, confessionID, sessionID uint) (bool, error) {
	return s.isLikedFn(ctx, confessionID, sessionID)
}

func noopConfessionRepo() *confessionRepoStub {
	return &confessionRepoStub{
		createWithQuotaFn: func(_ context.Context, c *models.Confession, _ string, _ int) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Confession, error) {
			return &models.Confession{ID: id, IsApproved: true, CollegeCode: "cmu"}, nil
		},
		listApprovedFn: func(_ context.Context, _, _ string, _, _ int) ([]*models.Confession, error) {
			return nil, nil
		},
		listPendingFn: func(_ context.Context, _ string) ([]*models.Confession, error) { return nil, nil },
		listBySessionFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Confession, error) {
			return nil, nil
		},
		approveFn: func(_ context.Context, id uint) (*models.Confession, error) {
			return &models.Confession{ID: id, IsApproved: true}, nil
		},
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn                   func(context.Context, *models.Comment) error
	getByIDFn                  func(context.Context, uint) (*models.Comment, error)
	listApprovedByConfessionFn func(context.Context, uint) ([]*models.Comment, error)
	listPendingFn              func(context.Context, string) ([]*models.Comment, error)
	approveFn                  func(context.Context, uint) (*models.Comment, error)
	deleteFn                   func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListApprovedByConfession(ctx context.Context, confessionID uint) ([]*models.Comment, error) {
	return s.listApprovedByConfessionFn(ctx, confessionID)
}
func (s *commentRepoStub) ListPending(ctx context.Context, college string) ([]*models.Comment, error) {
	return s.listPendingFn(ctx, college)
}
func (s *commentRepoStub) Approve(ctx context.Context, id uint) (*models.Comment, error) {
	return s.approveFn(ctx, id)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, ConfessionID: 1}, nil
		},
		listApprovedByConfessionFn: func(_ context.Context, _ uint) ([]*models.Comment, error) {
			return nil, nil
		},
		listPendingFn: func(_ context.Context, _ string) ([]*models.Comment, error) { return nil, nil },
		approveFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, IsApproved: true}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// dmRepoStub is a stub for repository.DirectMessageRepository.
type dmRepoStub struct {
	createFn      func(context.Context, *models.DirectMessage) error
	getByIDFn     func(context.Context, uint) (*models.DirectMessage, error)
	listVisibleFn func(context.Context, uint) ([]*models.DirectMessage, error)
	listPendingFn func(context.Context) ([]*models.DirectMessage, error)
	reviewFn      func(context.Context, uint, string, string) (*models.DirectMessage, error)
}

func (s *dmRepoStub) Create(ctx context.Context, dm *models.DirectMessage) error {
	return s.createFn(ctx, dm)
}
func (s *dmRepoStub) GetByID(ctx context.Context, id uint) (*models.DirectMessage, error) {
	return s.getByIDFn(ctx, id)
}
func (s *dmRepoStub) ListVisible(ctx context.Context, sessionID uint) ([]*models.DirectMessage, error) {
	return s.listVisibleFn(ctx, sessionID)
}
func (s *dmRepoStub) ListPending(ctx context.Context) ([]*models.DirectMessage, error) {
	return s.listPendingFn(ctx)
}
func (s *dmRepoStub) Review(ctx context.Context, id uint, status, note string) (*models.DirectMessage, error) {
	return s.reviewFn(ctx, id, status, note)
}

func noopDMRepo() *dmRepoStub {
	return &dmRepoStub{
		createFn: func(_ context.Context, dm *models.DirectMessage) error {
			dm.ID = 1
			dm.Status = models.DMStatusPending
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.DirectMessage, error) {
			return &models.DirectMessage{ID: id}, nil
		},
		listVisibleFn: func(_ context.Context, _ uint) ([]*models.DirectMessage, error) { return nil, nil },
		listPendingFn: func(_ context.Context) ([]*models.DirectMessage, error) { return nil, nil },
		reviewFn: func(_ context.Context, id uint, status, note string) (*models.DirectMessage, error) {
			return &models.DirectMessage{ID: id, Status: status, AdminNote: note}, nil
		},
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listFn          func(context.Context) ([]*models.User, error)
	updateFn        func(context.Context, *models.User) error
	deactivateFn    func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) List(ctx context.Context) ([]*models.User, error) {
	return s.listFn(ctx)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsActive: true}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listFn:       func(_ context.Context) ([]*models.User, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
		deactivateFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// chatRepoStub is a stub for repository.ChatRepository.
type chatRepoStub struct {
	createRoomFn         func(context.Context, *models.ChatRoom) error
	getRoomFn            func(context.Context, uint) (*models.ChatRoom, error)
	listRoomsFn          func(context.Context, string) ([]*models.ChatRoom, error)
	createMessageFn      func(context.Context, *models.ChatMessage) error
	listRecentMessagesFn func(context.Context, uint, int) ([]*models.ChatMessage, error)
}

func (s *chatRepoStub) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return s.createRoomFn(ctx, room)
}
func (s *chatRepoStub) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	return s.getRoomFn(ctx, id)
}
func (s *chatRepoStub) ListRooms(ctx context.Context, college string) ([]*models.ChatRoom, error) {
	return s.listRoomsFn(ctx, college)
}
func (s *chatRepoStub) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.createMessageFn(ctx, msg)
}
func (s *chatRepoStub) ListRecentMessages(ctx context.Context, roomID uint, limit int) ([]*models.ChatMessage, error) {
	return s.listRecentMessagesFn(ctx, roomID, limit)
}

func noopChatRepo() *chatRepoStub {
	return &chatRepoStub{
		createRoomFn: func(_ context.Context, r *models.ChatRoom) error {
			r.ID = 1
			return nil
		},
		getRoomFn: func(_ context.Context, id uint) (*models.ChatRoom, error) {
			return &models.ChatRoom{ID: id, Name: "Lounge", CollegeCode: "cmu", IsActive: true}, nil
		},
		listRoomsFn:     func(_ context.Context, _ string) ([]*models.ChatRoom, error) { return nil, nil },
		createMessageFn: func(_ context.Context, m *models.ChatMessage) error { m.ID = 1; return nil },
		listRecentMessagesFn: func(_ context.Context, _ uint, _ int) ([]*models.ChatMessage, error) {
			return nil, nil
		},
	}
}

// vipRepoStub is a stub for repository.VipRepository.
type vipRepoStub struct {
	listItemsFn          func(context.Context) ([]*models.MarketplaceItem, error)
	getItemFn            func(context.Context, uint) (*models.MarketplaceItem, error)
	createItemFn         func(context.Context, *models.MarketplaceItem) error
	updateItemFn         func(context.Context, *models.MarketplaceItem) error
	getOrCreateBalanceFn func(context.Context, repository.TokenOwner) (*models.UserTokens, error)
	earnFn               func(context.Context, repository.TokenOwner, int, string) (*models.UserTokens, error)
	earnOnceFn           func(context.Context, repository.TokenOwner, int, string, string) (*models.UserTokens, error)
	purchaseFn           func(context.Context, repository.TokenOwner, *models.MarketplaceItem) (*models.VipPurchase, error)
	listTransactionsFn   func(context.Context, repository.TokenOwner, int) ([]*models.TokenTransaction, error)
	listPurchasesFn      func(context.Context, repository.TokenOwner) ([]*models.VipPurchase, error)
	getMembershipFn      func(context.Context, repository.TokenOwner) (*models.VipMembership, error)
	expirePurchasesFn    func(context.Context, time.Time) (int64, error)
}

func (s *vipRepoStub) ListItems(ctx context.Context) ([]*models.MarketplaceItem, error) {
	return s.listItemsFn(ctx)
}
func (s *vipRepoStub) GetItem(ctx context.Context, id uint) (*models.MarketplaceItem, error) {
	return s.getItemFn(ctx, id)
}
func (s *vipRepoStub) CreateItem(ctx context.Context, item *models.MarketplaceItem) error {
	return s.createItemFn(ctx, item)
}
func (s *vipRepoStub) UpdateItem(ctx context.Context, item *models.MarketplaceItem) error {
	return s.updateItemFn(ctx, item)
}
func (s *vipRepoStub) GetOrCreateBalance(ctx context.Context, owner repository.TokenOwner) (*models.UserTokens, error) {
	return s.getOrCreateBalanceFn(ctx, owner)
}
func (s *vipRepoStub) Earn(ctx context.Context, owner repository.TokenOwner, amount int, description string) (*models.UserTokens, error) {
	return s.earnFn(ctx, owner, amount, description)
}
func (s *vipRepoStub) EarnOnce(ctx context.Context, owner repository.TokenOwner, amount int, description, dedupKey string) (*models.UserTokens, error) {
	return s.earnOnceFn(ctx, owner, amount, description, dedupKey)
}
func (s *vipRepoStub) Purchase(ctx context.Context, owner repository.TokenOwner, item *models.MarketplaceItem) (*models.VipPurchase, error) {
	return s.purchaseFn(ctx, owner, item)
}
func (s *vipRepoStub) ListTransactions(ctx context.Context, owner repository.TokenOwner, limit int) ([]*models.TokenTransaction, error) {
	return s.listTransactionsFn(ctx, owner, limit)
}
func (s *vipRepoStub) ListPurchases(ctx context.Context, owner repository.TokenOwner) ([]*models.VipPurchase, error) {
	return s.listPurchasesFn(ctx, owner)
}
func (s *vipRepoStub) GetMembership(ctx context.Context, owner repository.TokenOwner) (*models.VipMembership, error) {
	return s.getMembershipFn(ctx, owner)
}
func (s *vipRepoStub) ExpirePurchases(ctx context.Context, now time.Time) (int64, error) {
	return s.expirePurchasesFn(ctx, now)
}

func noopVipRepo() *vipRepoStub {
	return &vipRepoStub{
		listItemsFn: func(_ context.Context) ([]*models.MarketplaceItem, error) { return nil, nil },
		getItemFn: func(_ context.Context, id uint) (*models.MarketplaceItem, error) {
			return &models.MarketplaceItem{ID: id, Title: "Badge", Price: 10, IsActive: true}, nil
		},
		createItemFn: func(_ context.Context, i *models.MarketplaceItem) error { i.ID = 1; return nil },
		updateItemFn: func(_ context.Context, _ *models.MarketplaceItem) error { return nil },
		getOrCreateBalanceFn: func(_ context.Context, _ repository.TokenOwner) (*models.UserTokens, error) {
			return &models.UserTokens{ID: 1}, nil
		},
		earnFn: func(_ context.Context, _ repository.TokenOwner, amount int, _ string) (*models.UserTokens, error) {
			return &models.UserTokens{ID: 1, Balance: amount}, nil
		},
		earnOnceFn: func(_ context.Context, _ repository.TokenOwner, amount int, _, _ string) (*models.UserTokens, error) {
			return &models.UserTokens{ID: 1, Balance: amount}, nil
		},
		purchaseFn: func(_ context.Context, _ repository.TokenOwner, item *models.MarketplaceItem) (*models.VipPurchase, error) {
			return &models.VipPurchase{ID: 1, MarketplaceItemID: item.ID, TokensSpent: item.Price}, nil
		},
		listTransactionsFn: func(_ context.Context, _ repository.TokenOwner, _ int) ([]*models.TokenTransaction, error) {
			return nil, nil
		},
		listPurchasesFn: func(_ context.Context, _ repository.TokenOwner) ([]*models.VipPurchase, error) { return nil, nil },
		getMembershipFn: func(_ context.Context, _ repository.TokenOwner) (*models.VipMembership, error) {
			return nil, gorm.ErrRecordNotFound
		},
		expirePurchasesFn: func(_ context.Context, _ time.Time) (int64, error) { return 0, nil },
	}
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeUnauthorized)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeNotFound)
}
