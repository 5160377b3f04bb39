package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/tryshirtonline/face-attandance/internal/alert"
	"github.com/tryshirtonline/face-attandance/internal/api/docs"
	"github.com/tryshirtonline/face-attandance/internal/api/handler"
	"github.com/tryshirtonline/face-attandance/internal/api/middleware"
	"github.com/tryshirtonline/face-attandance/internal/audit"
	"github.com/tryshirtonline/face-attandance/internal/auth"
	"github.com/tryshirtonline/face-attandance/internal/config"
	"github.com/tryshirtonline/face-attandance/internal/extractor"
	"github.com/tryshirtonline/face-attandance/internal/liveness"
	"github.com/tryshirtonline/face-attandance/internal/match"
	"github.com/tryshirtonline/face-attandance/internal/ratelimit"
	"github.com/tryshirtonline/face-attandance/internal/repository"
	"github.com/tryshirtonline/face-attandance/internal/service"
	"github.com/tryshirtonline/face-attandance/internal/webhook"
)

type Dependencies struct {
	Config    *config.Config
	Extractor extractor.Extractor
	DB        *pgxpool.Pool
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	webhookWorker *webhook.Worker
	cancelWorker  context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Face Attendance API",
		BodyLimit:    64 * 1024 * 1024, // frame bursts
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Only configure data-backed routes if dependencies were provided
	if r.deps == nil {
		healthHandler := handler.NewHealthHandler(nil)
		r.app.Get("/health", healthHandler.Health)
		r.app.Get("/ready", healthHandler.Ready)
		return
	}

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler(r.deps.DB)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	cfg := r.deps.Config

	// Webhook service and retry worker
	webhookService := webhook.NewService(r.deps.DB)
	r.webhookWorker = webhook.NewWorker(r.deps.DB, webhookService, r.logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	r.cancelWorker = cancel
	go r.webhookWorker.Run(workerCtx)

	// Repositories
	userRepo := repository.NewUserRepository(r.deps.DB)
	supervisorRepo := repository.NewSupervisorRepository(r.deps.DB)
	employeeRepo := repository.NewEmployeeRepository(r.deps.DB)
	attendanceRepo := repository.NewAttendanceRepository(r.deps.DB)
	verificationRepo := repository.NewVerificationRepository(r.deps.DB)

	// Attendance pipeline
	attendanceService := service.NewAttendanceService(
		employeeRepo,
		attendanceRepo,
		verificationRepo,
		r.deps.Extractor,
		match.NewScorer(cfg.MatchThreshold),
		liveness.Config{
			ClosureThreshold: cfg.BlinkClosureThreshold,
			MinConsecutive:   cfg.BlinkMinConsecutive,
			ValidityFrames:   cfg.BlinkValidityFrames,
		},
	).
		WithRateLimiter(ratelimit.NewRateLimiter(r.deps.DB, cfg.AttemptRateWindow), cfg.AttemptRateLimit).
		WithAuditLogger(audit.NewSlogLogger(r.logger)).
		WithNotifier(alert.NewNotifier(webhookService, r.logger)).
		WithBroadcaster(webhookService)

	// Operator authentication
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiresIn)

	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(middleware.AuthDependencies{
		JWTService:  jwtService,
		Users:       userRepo,
		Supervisors: supervisorRepo,
		Logger:      r.logger,
	}))

	attendanceHandler := handler.NewAttendanceHandler(attendanceService, r.logger)

	v1.Post("/attendance/mark", attendanceHandler.Mark)
	v1.Get("/attendance/today", attendanceHandler.Today)
	v1.Post("/employees/:employee_number/template", attendanceHandler.EnrollTemplate)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	return r.app.Shutdown()
}
