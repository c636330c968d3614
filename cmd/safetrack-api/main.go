package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safetrack/common/database"
	"safetrack/common/logger"
	rediscommon "safetrack/common/redis"
	"safetrack/internal/auth"
	"safetrack/internal/config"
	httpapi "safetrack/internal/http"
	"safetrack/internal/repository"
	"safetrack/internal/service"
	"safetrack/internal/store"
	"safetrack/internal/upload"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "safetrack-api")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	if cfg.Auth.JWTSecret == "" {
		lg.Fatal("JWT_SECRET is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		lg.Fatal("Failed to open document store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if err := repository.InitSchema(ctx, db); err != nil {
		lg.Fatal("Failed to apply schema", zap.Error(err))
	}
	dialect := repository.DialectFor(cfg.Database.Driver)
	users := repository.NewSQLUsersRepository(db, dialect)
	reports := repository.NewSQLReportsRepository(db, dialect)
	responses := repository.NewSQLResponsesRepository(db, dialect)

	var redisClient *rediscommon.Client
	if cfg.Telemetry.Backend == "redis" {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
	}
	telemetryStore := store.NewTelemetryStore(ctx, cfg.Telemetry, redisClient, lg)

	files, localFiles, err := newUploadStore(cfg.Upload)
	if err != nil {
		lg.Fatal("Failed to initialize upload store", zap.String("backend", cfg.Upload.Backend), zap.Error(err))
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := service.NewAuthService(users, tokens, lg)
	if cfg.SeedAdmin.Enabled {
		if cfg.SeedAdmin.Password == "" {
			lg.Warn("SEED_ADMIN set without SEED_ADMIN_PASSWORD, skipping")
		} else if err := authSvc.SeedAdmin(ctx, cfg.SeedAdmin.Name, cfg.SeedAdmin.Email, cfg.SeedAdmin.Password); err != nil {
			lg.Error("Failed to seed admin account", zap.Error(err))
		}
	}

	router := httpapi.NewRouter(cfg.HTTP.APIPrefix, lg)
	mw := httpapi.NewAuthenticator(tokens, lg)
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(map[string]httpapi.Pinger{
		"database":  httpapi.PingFunc(db.PingContext),
		"telemetry": telemetryStore,
	}, lg))
	router.RegisterESP32Routes(httpapi.NewESP32Handler(
		service.NewTelemetryService(telemetryStore, cfg.Telemetry.Root, cfg.Telemetry.TestChangeInterval, lg), lg))
	router.RegisterAuthRoutes(
		httpapi.NewAuthHandler(authSvc, lg),
		httpapi.NewProfileHandler(service.NewProfileService(users, reports, responses, files, lg), cfg.Upload.MaxBytes, lg),
		mw,
	)
	router.RegisterReportRoutes(httpapi.NewReportHandler(
		service.NewReportService(users, reports, responses, lg),
		service.NewResponseService(users, reports, responses, lg),
		lg,
	), mw)
	if localFiles != nil {
		router.RegisterUploadRoutes(localFiles.BaseURL(), localFiles.Handler())
	}

	handler := httpapi.Recover(lg, httpapi.CORS(cfg.HTTP.AllowedOrigins, router))
	srv := service.NewServer(cfg.HTTP.Addr, handler, lg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		lg.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		lg.Warn("HTTP server shutdown", zap.Error(err))
	}
	_ = rediscommon.Close(redisClient)
	_ = database.Close(db)
}

// newUploadStore the second return value is set only for the local backend,
// whose files this process serves itself.
func newUploadStore(cfg config.UploadConfig) (upload.Store, *upload.LocalStore, error) {
	switch cfg.Backend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, errors.New("S3_BUCKET is required for the s3 upload backend")
		}
		s3, err := upload.NewS3Store(cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	default:
		local, err := upload.NewLocalStore(cfg.Dir, cfg.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	}
}
