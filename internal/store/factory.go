package store

import (
	"context"

	"safetrack/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// NewTelemetryStore picks the backend named in cfg. Only a backend that is not
// configured is replaced by NullTelemetryStore. An unreachable backend is kept:
// reads fail per request until it comes back.
func NewTelemetryStore(ctx context.Context, cfg config.TelemetryConfig, rc *redis.Client, logger *zap.Logger) TelemetryStore {
	var ts TelemetryStore
	switch cfg.Backend {
	case "redis":
		if rc == nil {
			logger.Warn("Telemetry backend redis selected without a client, using null store")
			return NullTelemetryStore{}
		}
		ts = NewRedisTelemetryStore(rc, cfg.HistoryMaxLen)
	case "firebase":
		if cfg.FirebaseURL == "" {
			logger.Warn("FIREBASE_DATABASE_URL not set, using null telemetry store")
			return NullTelemetryStore{}
		}
		ts = NewFirebaseTelemetryStore(cfg.FirebaseURL, cfg.FirebaseAuth, cfg.Root, cfg.RequestTimeout)
	case "null", "":
		return NullTelemetryStore{}
	default:
		logger.Warn("Unknown telemetry backend, using null store", zap.String("backend", cfg.Backend))
		return NullTelemetryStore{}
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if err := ts.Ping(pingCtx); err != nil {
		logger.Warn("Telemetry backend not answering yet",
			zap.String("backend", ts.Name()),
			zap.Error(err),
		)
		return ts
	}
	logger.Info("Telemetry backend ready", zap.String("backend", ts.Name()))
	return ts
}
