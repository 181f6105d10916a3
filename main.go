package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/config"
	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/handlers"
	"github.com/pitchrank/pitchrank-engine/pkg/logging"
	"github.com/pitchrank/pitchrank-engine/pkg/matching"
	"github.com/pitchrank/pitchrank-engine/pkg/middleware"
	"github.com/pitchrank/pitchrank-engine/pkg/repositories"
	"github.com/pitchrank/pitchrank-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis", cfg.Redis.Addr()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
		MinConnections: cfg.Database.MinConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations go through database/sql rather than the pgx pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, suggestion cache disabled")
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	teamRepo := repositories.NewTeamRepository()
	aliasRepo := repositories.NewTeamAliasRepository()
	gameRepo := repositories.NewGameRepository()
	mergeRepo := repositories.NewMergeRepository()
	auditRepo := repositories.NewAuditRepository()

	markers, err := matching.NewMarkerDetector()
	if err != nil {
		logger.Fatal("Failed to build marker detector", zap.Error(err))
	}

	cacheTTL := time.Duration(cfg.Matching.CacheTTLSeconds) * time.Second
	suggestionCache := services.NewSuggestionCache(redisClient, cacheTTL, logger)

	mergeService := services.NewMergeService(teamRepo, aliasRepo, gameRepo, mergeRepo, auditRepo, suggestionCache, clockwork.NewRealClock(), logger)
	suggestionService := services.NewSuggestionService(teamRepo, gameRepo, markers, suggestionCache, &cfg.Matching, logger)
	auditService := services.NewAuditService(auditRepo, logger)
	teamService := services.NewTeamService(teamRepo, aliasRepo, logger)

	mux := http.NewServeMux()
	scope := handlers.ScopeMiddleware(database.WithScope(db, logger))

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSuggestionHandler(suggestionService, logger).RegisterRoutes(mux, scope)
	handlers.NewMergeHandler(mergeService, logger).RegisterRoutes(mux, scope)
	handlers.NewTeamHandler(teamService, mergeService, auditService, logger).RegisterRoutes(mux, scope)
	handlers.NewAuditHandler(auditService, logger).RegisterRoutes(mux, scope)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"*"},
	})
	handler := c.Handler(middleware.RequestLogger(logger)(mux))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting pitchrank-engine",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown did not complete cleanly", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}
}
