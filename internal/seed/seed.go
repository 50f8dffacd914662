package seed

import (
	"fmt"
	"log"

	"campuswall/internal/models"

	"gorm.io/gorm"
)

// Options controls the size and behavior of a seeding run.
type Options struct {
	NumSessions    int
	NumConfessions int
	ShouldClean    bool
}

var defaultColleges = []struct {
	Name string
	Code string
}{
	{"State University", "state-uni"},
	{"Tech Institute", "tech-inst"},
	{"Liberal Arts College", "liberal-arts"},
	{"Community College", "community"},
}

var defaultRooms = []string{"General", "Late Night", "Study Hall", "Confession Corner"}

var defaultItems = []struct {
	Title        string
	Description  string
	Category     string
	Price        int
	DurationDays int
}{
	{"Rainbow Nickname", "Your nickname shows in color in chat", "cosmetic", 30, 30},
	{"Pin a Confession", "Pins one of your confessions to the top of the feed for a week", "boost", 50, 7},
	{"VIP Membership", "Badge plus priority moderation for a month", "membership", 100, 30},
	{"Extra Confessions", "Five extra confessions for one day", "boost", 20, 1},
}

// Seed populates the database with demo colleges, sessions, confessions,
// chat rooms, and marketplace items.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d sessions and %d confessions", opts.NumSessions, opts.NumConfessions)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db)

	colleges := make([]*models.College, 0, len(defaultColleges))
	for _, c := range defaultColleges {
		college, err := f.CreateCollege(c.Name, c.Code)
		if err != nil {
			return fmt.Errorf("create college %s: %w", c.Code, err)
		}
		colleges = append(colleges, college)
	}
	log.Printf("created %d colleges", len(colleges))

	rooms := make([]*models.ChatRoom, 0, len(colleges)*len(defaultRooms))
	for _, college := range colleges {
		for _, name := range defaultRooms {
			room, err := f.CreateChatRoom(college.Code, name)
			if err != nil {
				return fmt.Errorf("create room %s/%s: %w", college.Code, name, err)
			}
			rooms = append(rooms, room)
		}
	}
	log.Printf("created %d chat rooms", len(rooms))

	sessions := make([]*models.Session, 0, opts.NumSessions)
	for i := 0; i < opts.NumSessions; i++ {
		college := colleges[i%len(colleges)]
		session, err := f.CreateSession(college.Code)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		sessions = append(sessions, session)
	}
	log.Printf("created %d sessions", len(sessions))

	if len(sessions) > 0 {
		confessions := make([]*models.Confession, 0, opts.NumConfessions)
		for i := 0; i < opts.NumConfessions; i++ {
			author := sessions[f.rng.Intn(len(sessions))]
			confession, err := f.CreateConfession(author)
			if err != nil {
				return fmt.Errorf("create confession: %w", err)
			}
			confessions = append(confessions, confession)
		}
		log.Printf("created %d confessions", len(confessions))

		// A couple of comments on each approved confession keeps the feed
		// looking lived-in.
		commented := 0
		for _, confession := range confessions {
			if !confession.IsApproved {
				continue
			}
			for i := 0; i < f.rng.Intn(3); i++ {
				commenter := sessions[f.rng.Intn(len(sessions))]
				if _, err := f.CreateComment(confession, commenter); err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				commented++
			}
		}
		log.Printf("created %d comments", commented)

		chatted := 0
		for _, room := range rooms {
			for i := 0; i < f.rng.Intn(6); i++ {
				author := sessions[f.rng.Intn(len(sessions))]
				if author.CollegeCode != room.CollegeCode {
					continue
				}
				if _, err := f.CreateChatMessage(room, author); err != nil {
					return fmt.Errorf("create chat message: %w", err)
				}
				chatted++
			}
		}
		log.Printf("created %d chat messages", chatted)
	}

	for _, item := range defaultItems {
		if _, err := f.CreateMarketplaceItem(item.Title, item.Description, item.Category, item.Price, item.DurationDays); err != nil {
			return fmt.Errorf("create marketplace item %s: %w", item.Title, err)
		}
	}
	log.Printf("created %d marketplace items", len(defaultItems))

	log.Println("seeding complete")
	return nil
}

// clearData removes all seeded rows. Plain deletes keep this portable
// across postgres and the sqlite test database.
func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.VipMembership{},
		&models.VipPurchase{},
		&models.TokenTransaction{},
		&models.UserTokens{},
		&models.MarketplaceItem{},
		&models.DirectMessage{},
		&models.ChatMessage{},
		&models.ChatRoom{},
		&models.Like{},
		&models.Comment{},
		&models.Confession{},
		&models.Session{},
		&models.User{},
		&models.College{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
