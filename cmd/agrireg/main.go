package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrireg/agrireg/internal/app"
	"github.com/agrireg/agrireg/internal/assignments"
	"github.com/agrireg/agrireg/internal/auth"
	"github.com/agrireg/agrireg/internal/certificates"
	"github.com/agrireg/agrireg/internal/farmers"
	"github.com/agrireg/agrireg/internal/observability"
	"github.com/agrireg/agrireg/internal/platform/cache"
	"github.com/agrireg/agrireg/internal/platform/db"
	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/roles"
	"github.com/agrireg/agrireg/internal/shared"
	"github.com/agrireg/agrireg/internal/users"
	"github.com/agrireg/agrireg/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{
		MaxConns:        cfg.PGMaxConns,
		MinConns:        cfg.PGMinConns,
		MaxConnLifetime: cfg.PGConnMaxLifetime,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "agrireg_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	permCache := rbac.NewCache(redisClient, cfg.PermissionCacheTTL)
	resolver := rbac.NewResolver(rbac.NewPGStore(dbpool), permCache)
	gate := rbac.NewGate(resolver, logger, metrics)
	rbacMiddleware := rbac.Middleware{Gate: gate, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, resolver, auditLogger)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)

	assignmentsRepo := assignments.NewRepository(dbpool)
	assignmentsService := assignments.NewService(assignmentsRepo, resolver, auditLogger)
	assignmentsHandler := assignments.NewHandler(logger, assignmentsService, rbacMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, resolver, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	farmersRepo := farmers.NewRepository(dbpool)
	farmersService := farmers.NewService(farmersRepo, auditLogger)
	farmersHandler := farmers.NewHandler(logger, farmersService, rbacMiddleware)

	certificatesRepo := certificates.NewRepository(dbpool)
	certificatesService := certificates.NewService(certificatesRepo, auditLogger)
	certificatesHandler := certificates.NewHandler(logger, certificatesService, rbacMiddleware)

	permissionsHandler := rbac.NewPermissionsHandler(logger, resolver)

	if err := rolesService.SeedSystemRoles(ctx); err != nil {
		logger.Error("seed system roles", slog.Any("error", err))
		os.Exit(1)
	}
	seedAdmin(ctx, cfg, dbpool, usersService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, rbacMiddleware.RequireAll(rbac.PermCertificatesUpdate), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Identity:            auth.IdentityMiddleware(authService, logger),
		AuthHandler:         authHandler,
		RolesHandler:        rolesHandler,
		AssignmentsHandler:  assignmentsHandler,
		UsersHandler:        usersHandler,
		FarmersHandler:      farmersHandler,
		CertificatesHandler: certificatesHandler,
		PermissionsHandler:  permissionsHandler,
		JobsHandler:         jobsHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// seedAdmin bootstraps the first super_admin account when the users table is
// empty and seed credentials are configured.
func seedAdmin(ctx context.Context, cfg *app.Config, pool *pgxpool.Pool, usersService *users.Service, logger *slog.Logger) {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return
	}
	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		logger.Warn("count users for seed", slog.Any("error", err))
		return
	}
	if count > 0 {
		return
	}
	_, err := usersService.Create(ctx, users.CreateUserRequest{
		Email:    cfg.SeedAdminEmail,
		Name:     "Administrator",
		Password: cfg.SeedAdminPassword,
		Role:     rbac.SystemRoleSuperAdmin,
	}, 0)
	if err != nil {
		logger.Warn("seed admin account", slog.Any("error", err))
		return
	}
	logger.Info("seeded initial admin account", slog.String("email", cfg.SeedAdminEmail))
}
