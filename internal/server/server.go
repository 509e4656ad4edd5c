// Package server contains the HTTP handlers for the hotorflop API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hotorflop/internal/cache"
	"hotorflop/internal/config"
	"hotorflop/internal/database"
	"hotorflop/internal/featureflags"
	"hotorflop/internal/middleware"
	"hotorflop/internal/models"
	"hotorflop/internal/notifications"
	"hotorflop/internal/repository"
	"hotorflop/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	publisher      notifications.Publisher
	featureFlags   *featureflags.Manager
	hub            *notifications.Hub

	postService     *service.PostService
	feedService     *service.FeedService
	voteService     *service.VoteService
	friendService   *service.FriendService
	commentService  *service.CommentService
	wishlistService *service.WishlistService
	reportService   *service.ReportService
	userService     *service.UserService
	messageService  *service.MessageService
}

// NewServer connects to the database, Redis and the event bus described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	publisher, err := notifications.New(cfg, redisClient)
	if err != nil {
		return nil, fmt.Errorf("event bus setup failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, publisher)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient and publisher may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher notifications.Publisher) (*Server, error) {
	if publisher == nil {
		publisher = notifications.Noop{}
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	reportRepo := repository.NewReportRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	ttl := time.Duration(cfg.GraphCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	visibility := service.NewVisibilityService(relRepo, flags, ttl)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("hotorflop-api"),
		publisher:      publisher,
		featureFlags:   flags,
		hub:            notifications.NewHub(),
	}

	s.postService = service.NewPostService(postRepo, visibility, publisher, cfg.FeedPageSize)
	s.feedService = service.NewFeedService(postRepo, visibility, cfg.FeedPageSize)
	s.voteService = service.NewVoteService(voteRepo, postRepo, visibility, publisher)
	s.friendService = service.NewFriendService(relRepo, userRepo, visibility)
	s.commentService = service.NewCommentService(commentRepo, postRepo, visibility)
	s.wishlistService = service.NewWishlistService(wishlistRepo, postRepo, visibility)
	s.reportService = service.NewReportService(reportRepo, postRepo, commentRepo, userRepo, visibility)
	s.userService = service.NewUserService(userRepo)
	s.messageService = service.NewMessageService(messageRepo, userRepo, visibility, publisher, s.hub)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// After requestid and context middleware so log lines carry both ids.
	app.Use(middleware.StructuredLogger())

	// CORS before anything that can short-circuit, so error responses keep their headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global per-IP limit. Preflight requests are left to CORS.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/ws/messages", requireUpgrade, middleware.TicketAuth(s.redis), s.MessagesSocket())

	api := app.Group("/api", middleware.AuthRequired(s.redis))

	users := api.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/search", middleware.RateLimit(s.redis, 60, time.Minute, "user_search"), s.SearchUsers)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	feed := api.Group("/feed")
	feed.Get("/", s.GetFeed)
	feed.Get("/random", s.GetRandomPost)

	posts := api.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes before generic /:id
	posts.Post("/:id/vote", middleware.RateLimit(s.redis, 60, time.Minute, "vote"), s.CastVote)
	posts.Get("/:id/results", s.GetResults)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	api.Delete("/comments/:id", s.DeleteComment)

	friends := api.Group("/friends")
	friends.Get("/", s.GetFollowing)
	friends.Get("/followers", s.GetFollowers)
	friends.Get("/close", s.GetCloseFriends)
	friends.Put("/:userId/close", s.SetCloseFriend)
	friends.Post("/:userId", middleware.RateLimit(s.redis, 30, 5*time.Minute, "follow"), s.Follow)
	friends.Delete("/:userId", s.Unfollow)

	wishlist := api.Group("/wishlist")
	wishlist.Get("/", s.GetWishlist)
	wishlist.Post("/:postId", s.AddToWishlist)
	wishlist.Delete("/:postId", s.RemoveFromWishlist)

	reports := api.Group("/reports", middleware.RateLimit(s.redis, 10, 10*time.Minute, "report"))
	reports.Post("/posts/:id", s.ReportPost)
	reports.Post("/comments/:id", s.ReportComment)
	reports.Post("/users/:id", s.ReportUser)

	conversations := api.Group("/conversations")
	conversations.Get("/", s.GetConversations)
	conversations.Get("/:userId/messages", s.GetMessages)
	conversations.Post("/:userId/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	conversations.Put("/:userId/read", s.MarkConversationRead)
	conversations.Get("/:userId/search", s.SearchMessages)

	messages := api.Group("/messages")
	messages.Get("/unread", s.GetUnreadCount)
	messages.Post("/ws-ticket", middleware.RateLimit(s.redis, 20, time.Minute, "ws_ticket"), s.IssueWSTicket)
	messages.Put("/:id", s.EditMessage)
	messages.Delete("/:id", s.DeleteMessage)

	admin := api.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/reports", s.GetReports)
	admin.Put("/reports/:id", s.UpdateReport)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database answers. Redis is optional:
// without it the service runs uncached, so only a configured but failing
// Redis makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "disabled"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.userService.IsAdmin(c.UserContext(), userID)
		if err != nil {
			return respondWithAppError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// newApp builds the Fiber app with middleware and routes installed.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "hotorflop API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.newApp()

	if sub, ok := s.publisher.(*notifications.RedisPublisher); ok {
		if err := sub.Subscribe(s.shutdownCtx, s.logEvent); err != nil {
			middleware.Logger.Warn("event subscription failed", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// logEvent records events seen on the bus, including those from other instances.
func (s *Server) logEvent(e notifications.Envelope) {
	middleware.Logger.Debug("event received",
		slog.String("subject", e.Subject),
		slog.Int("bytes", len(e.Data)),
	)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error closing live connections", slog.String("error", err.Error()))
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.publisher.Close(); err != nil {
		middleware.Logger.Error("error closing event publisher", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
