// Package seed creates development and demo data for the application
// database. Not intended to run against production.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"campuswall/internal/models"
	"campuswall/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them. A thin helper used by
// the seeder and by tests that need realistic fixtures.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seed data
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// spreadBack returns a timestamp up to maxDays in the past so seeded feeds
// do not all share one creation instant.
func (f *Factory) spreadBack(maxDays int) time.Time {
	days := f.rng.Intn(maxDays)
	mins := f.rng.Intn(24 * 60)
	return time.Now().Add(-time.Duration(days)*24*time.Hour - time.Duration(mins)*time.Minute)
}

func (f *Factory) CreateCollege(name, code string) (*models.College, error) {
	college := &models.College{Name: name, Code: code, IsActive: true}
	if err := f.db.Create(college).Error; err != nil {
		return nil, err
	}
	return college, nil
}

// CreateSession persists an anonymous session with a generated nickname.
func (f *Factory) CreateSession(collegeCode string, overrides ...func(*models.Session)) (*models.Session, error) {
	session := &models.Session{
		Token:         gofakeit.UUID(),
		CollegeCode:   collegeCode,
		Nickname:      fmt.Sprintf("%s%s", gofakeit.AdjectiveDescriptive(), gofakeit.NounConcrete()),
		LastResetDate: models.Today(),
	}
	for _, override := range overrides {
		override(session)
	}
	if err := f.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// CreateConfession persists a confession in a random known category.
// Roughly three quarters arrive approved so the seeded feed is not empty.
func (f *Factory) CreateConfession(session *models.Session, overrides ...func(*models.Confession)) (*models.Confession, error) {
	categories := validation.Categories()
	confession := &models.Confession{
		Content:     gofakeit.Paragraph(1, 2, 8, " "),
		Category:    categories[f.rng.Intn(len(categories))],
		CollegeCode: session.CollegeCode,
		SessionID:   session.ID,
		Nickname:    session.Nickname,
		IsAnonymous: f.rng.Intn(4) != 0,
		IsApproved:  f.rng.Intn(4) != 0,
		CreatedAt:   f.spreadBack(30),
	}
	for _, override := range overrides {
		override(confession)
	}
	if err := f.db.Create(confession).Error; err != nil {
		return nil, err
	}
	return confession, nil
}

func (f *Factory) CreateComment(confession *models.Confession, session *models.Session) (*models.Comment, error) {
	comment := &models.Comment{
		Content:      gofakeit.Sentence(10),
		ConfessionID: confession.ID,
		SessionID:    session.ID,
		Nickname:     session.Nickname,
		IsApproved:   f.rng.Intn(3) != 0,
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE confessions SET comment_count = comment_count + 1 WHERE id = ?`,
			confession.ID,
		).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) CreateChatRoom(collegeCode, name string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{
		Name:            name,
		CollegeCode:     collegeCode,
		IsActive:        true,
		MaxParticipants: 50,
	}
	if err := f.db.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func (f *Factory) CreateChatMessage(room *models.ChatRoom, session *models.Session) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		Content:   gofakeit.Sentence(8),
		RoomID:    room.ID,
		SessionID: session.ID,
		Nickname:  session.Nickname,
		IsPublic:  true,
		CreatedAt: f.spreadBack(2),
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) CreateMarketplaceItem(title, description, category string, price, durationDays int) (*models.MarketplaceItem, error) {
	item := &models.MarketplaceItem{
		Title:        title,
		Description:  description,
		Category:     category,
		Price:        price,
		IsActive:     true,
		DurationDays: durationDays,
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateModerator persists a moderator account with a bcrypt-hashed password.
func (f *Factory) CreateModerator(username, password string, role models.Role, collegeCode string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:    strings.ToLower(username),
		Password:    string(hash),
		Role:        role,
		CollegeCode: collegeCode,
		IsActive:    true,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
