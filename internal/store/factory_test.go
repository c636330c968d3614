package store

import (
	"context"
	"testing"
	"time"

	"safetrack/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTelemetryStore_Selection(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	cfg := config.TelemetryConfig{Backend: "redis", RequestTimeout: time.Second}
	assert.Equal(t, "redis", NewTelemetryStore(ctx, cfg, rc, logger).Name())

	cfg.Backend = "firebase"
	assert.Equal(t, "null", NewTelemetryStore(ctx, cfg, rc, logger).Name(), "missing URL")

	cfg.Backend = "null"
	assert.Equal(t, "null", NewTelemetryStore(ctx, cfg, rc, logger).Name())

	cfg.Backend = "redis"
	assert.Equal(t, "null", NewTelemetryStore(ctx, cfg, nil, logger).Name(), "no client")
}

func TestNewTelemetryStore_KeepsUnreachableBackend(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	defer rc.Close()

	cfg := config.TelemetryConfig{Backend: "redis", RequestTimeout: 200 * time.Millisecond}
	ts := NewTelemetryStore(ctx, cfg, rc, zap.NewNop())
	require.Equal(t, "redis", ts.Name(), "configured backend survives a failed startup ping")

	_, err := ts.ReadLastValue(ctx, "health-tracker/latest-health")
	assert.Error(t, err, "reads surface the outage instead of reporting no data")

	// redis comes back on the same address
	mr2 := miniredis.NewMiniRedis()
	require.NoError(t, mr2.StartAddr(addr))
	defer mr2.Close()
	require.NoError(t, mr2.Set("health-tracker/latest-health", `{"bpm":75}`))

	doc, err := ts.ReadLastValue(ctx, "health-tracker/latest-health")
	require.NoError(t, err)
	assert.Equal(t, 75.0, doc["bpm"])
}
