// Package server contains the HTTP handlers and routing of the users service.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	_ "patisson-users/docs" // swagger docs
	"patisson-users/internal/auth"
	"patisson-users/internal/cache"
	"patisson-users/internal/config"
	"patisson-users/internal/database"
	"patisson-users/internal/gql"
	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/password"
	"patisson-users/internal/repository"
	"patisson-users/internal/service"

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

// Deps are the collaborators a Server is built from.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Verifier auth.Verifier
	Issuer   auth.TokenIssuer
	// Clock drives ban evaluation; nil means time.Now.
	Clock service.Clock
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       auth.Verifier
	issuer         auth.TokenIssuer
	userService    *service.UserService
	libraryService *service.LibraryService
	banService     *service.BanService
	graph          *gql.Schema
}

// NewServer connects to the database, Redis and the authentication service
// and creates a server instance from them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional: without it tokens are verified on every request and
	// rate limits fail open.
	redisClient := cache.Connect(ctx, cfg.RedisURL)

	roles, err := auth.LoadRoles(cfg.RolesFile)
	if err != nil {
		return nil, err
	}

	client, err := auth.NewClient(auth.ClientConfig{
		BaseURL:  cfg.AuthServiceURL,
		Timeout:  cfg.AuthTimeout,
		Login:    cfg.ServiceLogin,
		Password: cfg.ServicePassword,
	}, roles)
	if err != nil {
		return nil, err
	}

	var verifier auth.Verifier = client
	if cfg.AuthJWTSecret != "" {
		local, err := auth.NewJWTVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, roles)
		if err != nil {
			return nil, err
		}
		verifier = local
		middleware.Logger.Info("verifying tokens locally", "issuer", cfg.AuthJWTIssuer)
	}

	return NewServerWithDeps(cfg, Deps{
		DB:       db,
		Redis:    redisClient,
		Verifier: auth.NewCachingVerifier(verifier, redisClient, cfg.TokenCacheTTL),
		Issuer:   client,
	})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	hasher, err := password.NewHasher(cfg.PasswordHashCost)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(deps.DB)
	libraryRepo := repository.NewLibraryRepository(deps.DB)
	banRepo := repository.NewBanRepository(deps.DB)

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics(cfg.ServiceName),
		verifier:       deps.Verifier,
		issuer:         deps.Issuer,
		userService:    service.NewUserService(deps.DB, userRepo, hasher, deps.Clock),
		libraryService: service.NewLibraryService(deps.DB, libraryRepo),
		banService:     service.NewBanService(deps.DB, banRepo, deps.Clock),
	}

	s.graph, err = gql.NewSchema(s.userService, s.libraryService, s.verifier)
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	return s, nil
}

// NewApp returns a fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Patisson Users",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{
					Detail: []models.ErrorSchema{{Error: models.CodeInvalidParameters, Extra: fe.Message}},
				})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// probePaths are exempt from the global limiter.
var probePaths = map[string]bool{"/health/live": true, "/health/ready": true, "/metrics": true}

// SetupMiddleware installs the request pipeline. Order matters: the request
// id and trace exist before anything logs.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(
		recover.New(),
		requestid.New(),
		middleware.TracingMiddleware(),
		middleware.ContextMiddleware(),
	)
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(
		helmet.New(),
		middleware.StructuredLogger(),
		// Callers are other services, so any origin may reach the API.
		cors.New(cors.Config{
			AllowOrigins: "*",
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + clientTokenHeader,
			MaxAge:       int((24 * time.Hour).Seconds()),
		}),
	)
	if s.config.RateLimitPerMinute > 0 {
		app.Use(s.globalLimiter())
	}
}

// globalLimiter caps each caller's requests per minute. Callers are told
// apart by their service token, so services sharing a gateway address keep
// separate budgets. Tokenless requests fall back to the client IP.
func (s *Server) globalLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          s.config.RateLimitPerMinute,
		Expiration:   time.Minute,
		KeyGenerator: limiterKey,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || probePaths[c.Path()]
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Detail: []models.ErrorSchema{{Error: "RATE_LIMITED", Extra: "Too many requests"}},
			})
		},
	})
}

func limiterKey(c *fiber.Ctx) string {
	if token := bearerToken(c); token != "" {
		sum := sha256.Sum256([]byte(token))
		return "token:" + hex.EncodeToString(sum[:])
	}
	return "ip:" + c.IP()
}

// SetupRoutes registers probes, docs, the REST API under /api/v1 and GraphQL.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	v1 := api.Group("/v1", s.ServiceTokenRequired())
	v1.Post("/create-user",
		s.RequireServicePermissions(auth.CapUserReg),
		middleware.RateLimit(s.redis, s.config.CreateUserRateLimit, time.Minute, "create_user"),
		s.CreateUser)
	v1.Post("/create-library", s.ClientTokenRequired(auth.CapCreateLib), s.CreateLibrary)
	v1.Post("/create-ban", s.ClientTokenRequired(auth.CapCreateBan), s.CreateBan)
	v1.Post("/verify-user", s.VerifyUser)
	v1.Post("/update-user", s.UpdateUser)

	// The GraphQL resolvers verify the service token themselves.
	app.Post("/graphql", s.GraphQL)
}

// Start starts the server and blocks until it stops listening.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
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
