// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campuswall/internal/cache"
	"campuswall/internal/config"
	"campuswall/internal/database"
	"campuswall/internal/middleware"
	"campuswall/internal/models"
	"campuswall/internal/notifications"
	"campuswall/internal/repository"
	"campuswall/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	sessionRepo    repository.SessionRepository
	collegeRepo    repository.CollegeRepository
	confessionRepo repository.ConfessionRepository
	commentRepo    repository.CommentRepository
	dmRepo         repository.DirectMessageRepository
	userRepo       repository.UserRepository
	chatRepo       repository.ChatRepository
	vipRepo        repository.VipRepository

	notifier *notifications.Notifier
	roomHub  *notifications.RoomHub

	sessionService    *service.SessionService
	confessionService *service.ConfessionService
	commentService    *service.CommentService
	dmService         *service.DirectMessageService
	chatService       *service.ChatService
	adminService      *service.AdminService
	vipService        *service.VipService
}

// fiberprometheus registers its collectors with the default prometheus
// registry, which panics on double registration. A process-wide instance
// keeps repeated server construction (tests, restarts) safe.
var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

func prometheusMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New("campuswall-api")
	})
	return promInstance
}

// NewServer creates a server instance, establishing its own DB and Redis
// connections from the config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used in tests and when a bootstrap layer establishes DB/Redis explicitly.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prometheusMiddleware(),

		sessionRepo:    repository.NewSessionRepository(db),
		collegeRepo:    repository.NewCollegeRepository(db),
		confessionRepo: repository.NewConfessionRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		dmRepo:         repository.NewDirectMessageRepository(db),
		userRepo:       repository.NewUserRepository(db),
		chatRepo:       repository.NewChatRepository(db),
		vipRepo:        repository.NewVipRepository(db),
	}

	s.sessionService = service.NewSessionService(s.sessionRepo, s.collegeRepo)
	s.confessionService = service.NewConfessionService(s.confessionRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.confessionRepo)
	s.dmService = service.NewDirectMessageService(s.dmRepo, s.sessionRepo)
	s.chatService = service.NewChatService(s.chatRepo)
	s.adminService = service.NewAdminService(s.userRepo, s.sessionRepo, s.collegeRepo, s.confessionRepo, s.commentRepo, s.dmRepo)
	s.vipService = service.NewVipService(s.vipRepo)

	s.notifier = notifications.NewNotifier(redisClient)
	s.roomHub = notifications.NewRoomHub()

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	app.Use(s.promMiddleware.Middleware)

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on 429 responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Session-Token, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	s.promMiddleware.RegisterAt(app, "/metrics")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "CampusWall Metrics Dashboard",
	}))

	// Session bootstrap is the only route that creates identities.
	api.Post("/session", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "session_create"), s.CreateSession)

	// Public browse routes
	api.Get("/colleges", s.GetColleges)
	api.Get("/colleges/:code", s.GetCollege)

	// Everything below requires an X-Session-Token header.
	protected := api.Group("", s.SessionRequired())

	protected.Get("/session/me", s.GetMySession)
	protected.Patch("/session/nickname", s.UpdateNickname)
	protected.Get("/daily-limit", s.GetDailyLimit)

	confessions := protected.Group("/confessions")
	confessions.Get("/", s.GetFeed)
	confessions.Get("/mine", s.GetMyConfessions)
	confessions.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_confession"), s.CreateConfession)
	confessions.Get("/:id/comments", s.GetComments)
	confessions.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	confessions.Post("/:id/like", s.ToggleLike)
	confessions.Get("/:id", s.GetConfession)

	dms := protected.Group("/direct-messages")
	dms.Get("/", s.GetDirectMessages)
	dms.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "send_dm"), s.SendDirectMessage)

	chat := protected.Group("/chat")
	chat.Get("/rooms", s.GetChatRooms)
	chat.Get("/rooms/:id/messages", s.GetRoomMessages)
	chat.Post("/rooms/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_chat"), s.PostRoomMessage)

	vip := protected.Group("/vip")
	vip.Get("/marketplace", s.GetMarketplace)
	vip.Get("/membership", s.GetVipMembership)
	vip.Get("/tokens", s.GetTokenBalance)
	vip.Post("/tokens/checkin", s.DailyCheckIn)
	vip.Post("/tokens/earn", s.AdminRequired(), s.EarnTokens)
	vip.Get("/transactions", s.GetTokenTransactions)
	vip.Get("/purchases", s.GetPurchases)
	vip.Post("/purchase", s.PurchaseItem)
	vip.Post("/marketplace", s.AdminRequired(), s.CreateMarketplaceItem)

	// Moderator login rides on the anonymous session.
	auth := protected.Group("/auth")
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.AdminLogin)
	auth.Post("/logout", s.AdminLogout)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/confessions/pending", s.GetPendingConfessions)
	admin.Post("/confessions/:id/approve", s.ApproveConfession)
	admin.Delete("/confessions/:id", s.RejectConfession)
	admin.Get("/comments/pending", s.GetPendingComments)
	admin.Post("/comments/:id/approve", s.ApproveComment)
	admin.Delete("/comments/:id", s.RejectComment)
	admin.Get("/direct-messages/pending", s.GetPendingDirectMessages)
	admin.Post("/direct-messages/:id/review", s.ReviewDirectMessage)
	admin.Post("/colleges", s.CreateCollege)
	admin.Get("/admins", s.GetModerators)
	admin.Post("/admins", s.CreateModerator)
	admin.Patch("/admins/:id/status", s.DeactivateModerator)

	// WebSocket chat relay
	ws := api.Group("/ws")
	ws.Get("/chat", s.WebSocketUpgrade(), s.WebSocketChatHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; the app degrades to single-instance operation
	// without it.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// SessionRequired resolves the X-Session-Token header into a session and
// stores it in locals. Requests without a valid token get 401.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Session-Token")
		session, err := s.sessionService.Resolve(c.UserContext(), token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("session", session)
		c.Locals("sessionID", session.ID)

		ctx := context.WithValue(c.UserContext(), middleware.SessionIDKey, session.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AdminRequired rejects sessions without an active moderator binding. Must
// be placed after SessionRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := currentSession(c)
		user, err := s.adminService.RequireAdmin(session)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		c.Locals("adminUser", user)
		return c.Next()
	}
}

// Start starts the server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "CampusWall API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.Error("unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.redis != nil {
		go func() {
			if err := s.roomHub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start room hub wiring", "error", err)
			}
		}()
	}

	go s.runExpirySweep(s.shutdownCtx)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// runExpirySweep retires VIP purchases and memberships past their expiry.
func (s *Server) runExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.vipService.SweepExpired(ctx); err != nil {
				middleware.Logger.Error("vip expiry sweep failed", "error", err)
			} else if n > 0 {
				middleware.Logger.Info("vip purchases expired", "count", n)
			}
		}
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.roomHub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down room hub", "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
