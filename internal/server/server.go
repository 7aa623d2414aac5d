// Package server contains the HTTP handlers and routing for the board.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "postboard/docs" // swagger docs
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/media"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultFeedWindow = 20 * time.Second

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	feedCache      cache.Store
	images         *media.Store

	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	feedService    *service.FeedService
	followService  *service.FollowService
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
	groupService   *service.GroupService

	now func() time.Time
}

// NewServer connects to the database and Redis and builds a server. Redis is
// optional: without it the feed cache lives in process and logout cannot
// revoke tokens.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient = cache.Connect(ctx, cfg.RedisURL)
		cancel()
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer has established DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("postboard"),
		images:         media.NewStore(cfg.MediaRoot),
		userRepo:       repository.NewUserRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		now:            time.Now,
	}

	if redisClient != nil {
		s.feedCache = cache.NewRedisStore(redisClient, cache.Namespace)
	} else {
		middleware.Logger.Warn("redis unavailable, using in-process feed cache")
		s.feedCache = cache.NewMemoryStore()
	}

	maxImageBytes := int64(cfg.ImageMaxUploadSizeMB) << 20
	s.feedService = service.NewFeedService(s.postRepo, s.groupRepo, s.userRepo, s.followRepo, cfg.PostsPerPage)
	s.followService = service.NewFollowService(s.userRepo, s.followRepo)
	s.postService = service.NewPostService(s.postRepo, s.groupRepo, s.commentRepo, s.images, maxImageBytes)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.userService = service.NewUserService(s.userRepo)
	s.groupService = service.NewGroupService(s.groupRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	app.Use(middleware.TracingMiddleware())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8000,http://127.0.0.1:8000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
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

	app.Use(s.ResolveActor())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Static("/media", s.images.Root)

	// Feeds
	app.Get("/", s.Index)
	app.Get("/group/:slug", s.GroupPosts)
	app.Get("/profile/:username", s.Profile)
	app.Get("/follow", s.ActorRequired(), s.FollowIndex)

	// Subscriptions
	app.Get("/profile/:username/follow", s.ActorRequired(), s.ProfileFollow)
	app.Post("/profile/:username/follow", s.ActorRequired(), s.ProfileFollow)
	app.Get("/profile/:username/unfollow", s.ActorRequired(), s.ProfileUnfollow)
	app.Post("/profile/:username/unfollow", s.ActorRequired(), s.ProfileUnfollow)

	// Posts
	app.Get("/create", s.ActorRequired(), s.CreateForm)
	app.Post("/create", s.ActorRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Specific /:post_id/... routes before the generic detail route
	app.Get("/posts/:post_id/edit", s.ActorRequired(), s.EditForm)
	app.Post("/posts/:post_id/edit", s.ActorRequired(), s.EditPost)
	app.Post("/posts/:post_id/comment", s.ActorRequired(), middleware.RateLimit(
		s.redis, 5, time.Minute, "create_comment"), s.AddComment)
	app.Get("/posts/:post_id", s.PostDetail)

	// Auth
	auth := app.Group("/auth")
	auth.Get("/login", s.LoginForm)
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	// Admin
	admin := app.Group("/admin", s.AdminRequired())
	admin.Post("/groups", s.CreateGroup)
	admin.Post("/cache/clear", s.ClearFeedCache)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only a configured but failing Redis makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": s.now(),
	})
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	bodyLimit := (s.config.ImageMaxUploadSizeMB + 1) << 20
	if bodyLimit < 4<<20 {
		bodyLimit = 4 << 20
	}

	app := fiber.New(fiber.Config{
		AppName:   "postboard",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Migrate creates or updates the schema on the server's database.
func (s *Server) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, s.db)
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", "error", err)
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", "error", err)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

func (s *Server) feedWindow() time.Duration {
	if ttl := s.config.FeedCacheTTL(); ttl > 0 {
		return ttl
	}
	return defaultFeedWindow
}
