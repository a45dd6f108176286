// Package server contains the HTTP and WebSocket handlers for the chirp API.
package server

import (
	"context"
	"time"

	_ "chirp/docs" // swagger docs
	"chirp/internal/auth"
	"chirp/internal/bootstrap"
	"chirp/internal/config"
	"chirp/internal/featureflags"
	"chirp/internal/mail"
	"chirp/internal/middleware"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"
	"chirp/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// wireableHub is implemented by every WebSocket hub that can be wired to
// Redis pub/sub and gracefully shut down.
type wireableHub interface {
	Name() string
	StartWiring(ctx context.Context, n *notifications.Notifier) error
	Shutdown(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *auth.TokenManager
	media        storage.Store
	mailer       mail.Sender
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	hubs         []wireableHub
	featureFlags *featureflags.Manager

	accounts     *service.AccountService
	interactions *service.InteractionService
	feed         *service.FeedService
	admin        *service.AdminService
	trending     *service.TrendingService
}

// Option overrides a collaborator built by NewServerWithDeps.
type Option func(*Server)

// WithStore replaces the media store.
func WithStore(store storage.Store) Option {
	return func(s *Server) { s.media = store }
}

// WithMailer replaces the email sender.
func WithMailer(m mail.Sender) Option {
	return func(s *Server) { s.mailer = m }
}

// NewServer initializes the runtime dependencies and builds a server on them.
func NewServer(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, token revocation and notifications are
// then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("chirp-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiryDays, redisClient),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.media == nil {
		s.media = storage.NewLocalStore(cfg)
	}
	if s.mailer == nil {
		s.mailer = mail.NewSender(cfg)
	}

	// Initialize notifier and hub if Redis is available
	var publisher service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		s.hubs = []wireableHub{s.hub}
		publisher = s.notifier
	}

	users := repository.NewUserRepository(db)
	tweets := repository.NewTweetRepository(db)
	relations := repository.NewRelationRepository(db)
	hashtags := repository.NewHashtagRepository(db)

	s.trending = service.NewTrendingService(hashtags, s.featureFlags)
	s.accounts = service.NewAccountService(users, relations, auth.NewBcryptHasher(), s.tokens, s.media, s.mailer, cfg.FrontendURL)
	s.interactions = service.NewInteractionService(users, tweets, relations, s.media, publisher, s.trending)
	s.feed = service.NewFeedService(users, tweets, relations, s.featureFlags)
	s.admin = service.NewAdminService(users, s.media)

	return s, nil
}

// NewApp builds the Fiber app with the central error handler, middleware
// and routes installed.
func (s *Server) NewApp() *fiber.App {
	limit := s.config.MediaMaxUploadMB
	if limit <= 0 {
		limit = 10
	}
	app := fiber.New(fiber.Config{
		AppName:      "Chirp API",
		BodyLimit:    (limit + 1) * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.media.(*storage.LocalStore); ok {
		app.Static(local.BaseURL(), local.Dir(), fiber.Static{MaxAge: 3600})
	}

	api := app.Group("/api/v1")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Chirp Metrics Dashboard"}))

	authed := s.AuthRequired()

	// Account
	api.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	api.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Get("/logout", s.Logout)
	api.Post("/forgotpassword", middleware.RateLimit(s.redis, 3, 15*time.Minute, "forgot_password"), s.ForgotPassword)
	api.Patch("/resetpassword/:token", s.ResetPassword)

	api.Get("/me", authed, s.GetMyProfile)
	api.Patch("/updateprofile", authed, s.UpdateProfile)
	api.Patch("/updatepassword", authed, s.UpdatePassword)
	api.Patch("/updateprofilepic", authed, s.UpdateProfilePic)
	api.Patch("/updateprofileposter", authed, s.UpdateProfilePoster)
	api.Delete("/deleteprofilepic", authed, s.DeleteProfilePic)
	api.Delete("/deleteprofileposter", authed, s.DeleteProfilePoster)
	api.Patch("/updateemail", authed, s.UpdateEmail)
	api.Patch("/updateusername", authed, s.UpdateUsername)
	api.Delete("/deleteaccount", authed, s.DeleteAccount)

	// Public profiles. /user/basic, /user/tweets etc. must precede /user/:username.
	api.Get("/user", middleware.RateLimit(s.redis, 30, time.Minute, "search_users"), s.SearchUsers)
	api.Get("/user/basic/:username", s.GetBasicUserDetails)
	api.Get("/user/tweets/:id", s.GetUserTweets)
	api.Get("/user/likes/:id", s.GetUserLikes)
	api.Get("/user/retweets/:id", s.GetUserRetweets)
	api.Get("/user/replies/:id", s.GetUserReplies)
	api.Get("/user/:username", s.GetUserDetails)

	api.Patch("/follow/:id", authed, s.Follow)
	api.Patch("/unfollow/:id", authed, s.Unfollow)

	// Feeds of the caller
	me := api.Group("/me", authed)
	me.Get("/posts", s.GetMyTweets)
	me.Get("/likes", s.GetMyLikes)
	me.Get("/retweets", s.GetMyRetweets)
	me.Get("/replies", s.GetMyReplies)
	me.Get("/feed", s.GetMyFeed)

	// Tweets. Specific /tweet/<action>/:id routes come before /tweet/:id.
	api.Post("/tweet", authed, middleware.RateLimit(s.redis, 30, time.Minute, "create_tweet"), s.CreateTweet)
	api.Patch("/tweet/like/:id", authed, s.ToggleLike)
	api.Patch("/tweet/bookmark/:id", authed, s.ToggleBookmark)
	api.Patch("/tweet/retweet/:id", authed, s.ToggleRetweet)
	api.Get("/tweet/:id", s.GetTweet)
	api.Post("/tweet/:id", authed, middleware.RateLimit(s.redis, 30, time.Minute, "reply_tweet"), s.ReplyTweet)
	api.Patch("/tweet/:id", authed, s.Require(auth.HasSubscription), s.UpdateTweet)
	api.Delete("/tweet/:id", authed, s.DeleteTweet)

	api.Get("/trending", s.GetTrending)

	// Websocket notifications
	api.Get("/ws", authed, s.WebsocketHandler())

	// Admin
	admin := api.Group("/admin", authed, s.Require(auth.IsAdmin))
	admin.Get("/users", s.GetAllUsers)
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Delete("/user/:id", s.AdminDeleteUser)
	admin.Patch("/givetick/:id", s.GiveTick)
	admin.Patch("/removetick/:id", s.RemoveTick)
	admin.Patch("/user/makeadmin/:id", s.MakeAdmin)
	admin.Patch("/user/revokeadmin/:id", s.Require(auth.IsOwner), s.RevokeAdmin)
	admin.Delete("/tweet/:id", s.AdminDeleteTweet)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
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
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires the notification hubs and listens on the
// configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()
	s.startHubs(ctx)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// startHubs subscribes every hub to Redis until ctx is cancelled.
func (s *Server) startHubs(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	for _, h := range s.hubs {
		go func() {
			if err := h.StartWiring(ctx, s.notifier); err != nil && ctx.Err() == nil {
				middleware.Logger.Error("failed to start hub wiring", "hub", h.Name(), "error", err)
			}
		}()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	for _, h := range s.hubs {
		if err := h.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", "hub", h.Name(), "error", err)
		}
	}

	// Pending hashtag writes still need the database.
	s.trending.Wait()

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
