package service

import (
	"context"
	"errors"

	"campuswall/internal/models"
	"campuswall/internal/observability"
	"campuswall/internal/repository"
	"campuswall/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminService implements moderator authentication and the moderation queue.
type AdminService struct {
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	collegeRepo    repository.CollegeRepository
	confessionRepo repository.ConfessionRepository
	commentRepo    repository.CommentRepository
	dmRepo         repository.DirectMessageRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	collegeRepo repository.CollegeRepository,
	confessionRepo repository.ConfessionRepository,
	commentRepo repository.CommentRepository,
	dmRepo repository.DirectMessageRepository,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		collegeRepo:    collegeRepo,
		confessionRepo: confessionRepo,
		commentRepo:    commentRepo,
		dmRepo:         dmRepo,
	}
}

// Login verifies moderator credentials and binds the account to the caller's
// anonymous session. Subsequent requests with the same session token carry
// the moderator role.
func (s *AdminService) Login(ctx context.Context, session *models.Session, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := s.sessionRepo.LinkUser(ctx, session.ID, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout detaches the moderator account from the session. The anonymous
// session itself survives.
func (s *AdminService) Logout(ctx context.Context, session *models.Session) error {
	session.UserID = nil
	session.User = nil
	return s.sessionRepo.Update(ctx, session)
}

// RequireAdmin returns the active moderator bound to the session, or an
// unauthorized error.
func (s *AdminService) RequireAdmin(session *models.Session) (*models.User, error) {
	if session == nil || session.User == nil {
		return nil, models.NewUnauthorizedError("Moderator access required")
	}
	user := session.User
	if !user.IsActive || !models.ValidRole(user.Role) {
		return nil, models.NewUnauthorizedError("Moderator access required")
	}
	return user, nil
}

// moderationScope returns the college filter for the moderator: the chief
// sees everything, everyone else only their own campus.
func moderationScope(user *models.User) string {
	if user.Role == models.RoleChief {
		return ""
	}
	return user.CollegeCode
}

func (s *AdminService) PendingConfessions(ctx context.Context, user *models.User) ([]*models.Confession, error) {
	return s.confessionRepo.ListPending(ctx, moderationScope(user))
}

func (s *AdminService) checkConfessionScope(ctx context.Context, user *models.User, id uint) (*models.Confession, error) {
	confession, err := s.confessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession not found")
		}
		return nil, err
	}
	if scope := moderationScope(user); scope != "" && confession.CollegeCode != scope {
		return nil, models.NewUnauthorizedError("Confession belongs to another campus")
	}
	return confession, nil
}

func (s *AdminService) ApproveConfession(ctx context.Context, user *models.User, id uint) (*models.Confession, error) {
	if _, err := s.checkConfessionScope(ctx, user, id); err != nil {
		return nil, err
	}
	confession, err := s.confessionRepo.Approve(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return nil, models.NewValidationError("Confession already reviewed")
		}
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues("confession", "approved").Inc()
	return confession, nil
}

func (s *AdminService) RejectConfession(ctx context.Context, user *models.User, id uint) error {
	if _, err := s.checkConfessionScope(ctx, user, id); err != nil {
		return err
	}
	if err := s.confessionRepo.Delete(ctx, id); err != nil {
		return err
	}
	observability.ModerationDecisions.WithLabelValues("confession", "rejected").Inc()
	return nil
}

func (s *AdminService) PendingComments(ctx context.Context, user *models.User) ([]*models.Comment, error) {
	return s.commentRepo.ListPending(ctx, moderationScope(user))
}

func (s *AdminService) checkCommentScope(ctx context.Context, user *models.User, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment not found")
		}
		return nil, err
	}
	if scope := moderationScope(user); scope != "" {
		confession, err := s.confessionRepo.GetByID(ctx, comment.ConfessionID)
		if err != nil {
			return nil, err
		}
		if confession.CollegeCode != scope {
			return nil, models.NewUnauthorizedError("Comment belongs to another campus")
		}
	}
	return comment, nil
}

func (s *AdminService) ApproveComment(ctx context.Context, user *models.User, id uint) (*models.Comment, error) {
	if _, err := s.checkCommentScope(ctx, user, id); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.Approve(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return nil, models.NewValidationError("Comment already reviewed")
		}
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues("comment", "approved").Inc()
	return comment, nil
}

func (s *AdminService) RejectComment(ctx context.Context, user *models.User, id uint) error {
	if _, err := s.checkCommentScope(ctx, user, id); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	observability.ModerationDecisions.WithLabelValues("comment", "rejected").Inc()
	return nil
}

// requireDMReviewer gates direct message review to the chief and college
// roles; normal moderators only handle public content.
func requireDMReviewer(user *models.User) error {
	if user.Role != models.RoleChief && user.Role != models.RoleCollege {
		return models.NewUnauthorizedError("Direct message review requires a senior moderator")
	}
	return nil
}

func (s *AdminService) PendingDirectMessages(ctx context.Context, user *models.User) ([]*models.DirectMessage, error) {
	if err := requireDMReviewer(user); err != nil {
		return nil, err
	}
	return s.dmRepo.ListPending(ctx)
}

func (s *AdminService) ReviewDirectMessage(ctx context.Context, user *models.User, id uint, approve bool, note string) (*models.DirectMessage, error) {
	if err := requireDMReviewer(user); err != nil {
		return nil, err
	}

	status := models.DMStatusRejected
	if approve {
		status = models.DMStatusApproved
	}
	dm, err := s.dmRepo.Review(ctx, id, status, note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Direct message not found")
		}
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues("direct_message", status).Inc()
	return dm, nil
}

// requireChief gates platform administration to the chief role.
func requireChief(user *models.User) error {
	if user.Role != models.RoleChief {
		return models.NewUnauthorizedError("Chief access required")
	}
	return nil
}

type CreateCollegeInput struct {
	Name string
	Code string
}

func (s *AdminService) CreateCollege(ctx context.Context, user *models.User, in CreateCollegeInput) (*models.College, error) {
	if err := requireChief(user); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if err := validation.ValidateCollegeCode(in.Code); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.collegeRepo.GetByCode(ctx, in.Code); err == nil {
		return nil, models.NewValidationError("College code already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	college := &models.College{Name: in.Name, Code: in.Code, IsActive: true}
	if err := s.collegeRepo.Create(ctx, college); err != nil {
		return nil, err
	}
	return college, nil
}

func (s *AdminService) ListColleges(ctx context.Context) ([]*models.College, error) {
	return s.collegeRepo.ListActive(ctx)
}

type CreateModeratorInput struct {
	Username    string
	Password    string
	Role        models.Role
	CollegeCode string
}

func (s *AdminService) CreateModerator(ctx context.Context, user *models.User, in CreateModeratorInput) (*models.User, error) {
	if err := requireChief(user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !models.ValidRole(in.Role) {
		return nil, models.NewValidationError("Unknown role")
	}
	if in.Role != models.RoleChief {
		if _, err := s.collegeRepo.GetByCode(ctx, in.CollegeCode); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewValidationError("College not found")
			}
			return nil, err
		}
	}
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewValidationError("Username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	moderator := &models.User{
		Username:    in.Username,
		Password:    string(hash),
		Role:        in.Role,
		CollegeCode: in.CollegeCode,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, moderator); err != nil {
		return nil, err
	}
	return moderator, nil
}

func (s *AdminService) ListModerators(ctx context.Context, user *models.User) ([]*models.User, error) {
	if err := requireChief(user); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

func (s *AdminService) DeactivateModerator(ctx context.Context, user *models.User, id uint) error {
	if err := requireChief(user); err != nil {
		return err
	}
	if user.ID == id {
		return models.NewValidationError("Cannot deactivate yourself")
	}
	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Moderator not found")
		}
		return err
	}
	return nil
}
