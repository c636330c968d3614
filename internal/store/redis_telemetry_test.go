package store

import (
	"context"
	"testing"

	"safetrack/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisTelemetryStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisTelemetryStore(client, 100)
}

func TestRedisTelemetryStore_ReadLastValue(t *testing.T) {
	ctx := context.Background()
	mr, s := setupRedisStore(t)

	doc, err := s.ReadLastValue(ctx, "health-tracker/latest-health")
	require.NoError(t, err)
	assert.Nil(t, doc, "never written reads as nil")

	require.NoError(t, mr.Set("health-tracker/latest-health", `{"bpm":72,"valid_bpm":true}`))
	doc, err = s.ReadLastValue(ctx, "health-tracker/latest-health")
	require.NoError(t, err)
	assert.Equal(t, 72.0, doc["bpm"])

	again, err := s.ReadLastValue(ctx, "health-tracker/latest-health")
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestRedisTelemetryStore_ReadLastValue_BadJSON(t *testing.T) {
	mr, s := setupRedisStore(t)
	require.NoError(t, mr.Set("health-tracker/current-status", `{not json`))

	_, err := s.ReadLastValue(context.Background(), "health-tracker/current-status")
	assert.Error(t, err)
}

func TestRedisTelemetryStore_AppendAndReadLastN(t *testing.T) {
	ctx := context.Background()
	_, s := setupRedisStore(t)

	entries, err := s.ReadLastN(ctx, "health-tracker/gps", 10)
	require.NoError(t, err)
	assert.Nil(t, entries)

	for i := 0; i < 12; i++ {
		_, err := s.Append(ctx, "health-tracker/gps", telemetry.Document{"seq": i})
		require.NoError(t, err)
	}

	entries, err = s.ReadLastN(ctx, "health-tracker/gps", 10)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, 2.0, entries[0].Doc["seq"])
	assert.Equal(t, 11.0, entries[9].Doc["seq"])
	assert.NotEmpty(t, entries[0].Key)
}

func TestRedisTelemetryStore_PathsAndWrite(t *testing.T) {
	ctx := context.Background()
	_, s := setupRedisStore(t)

	require.NoError(t, s.WriteLastValue(ctx, "health-tracker/current-status", telemetry.Document{"wifi_connected": true}))
	_, err := s.Append(ctx, "health-tracker/heartbeat", telemetry.Document{"bpm": 70})
	require.NoError(t, err)
	require.NoError(t, s.WriteLastValue(ctx, "other/key", telemetry.Document{}))

	paths, err := s.Paths(ctx, "health-tracker")
	require.NoError(t, err)
	assert.Equal(t, []string{"current-status", "heartbeat"}, paths)

	doc, err := s.ReadLastValue(ctx, "health-tracker/current-status")
	require.NoError(t, err)
	assert.Equal(t, true, doc["wifi_connected"])
}

func TestNullTelemetryStore(t *testing.T) {
	var s TelemetryStore = NullTelemetryStore{}
	doc, err := s.ReadLastValue(context.Background(), "health-tracker/current-status")
	assert.NoError(t, err)
	assert.Nil(t, doc)
	entries, err := s.ReadLastN(context.Background(), "health-tracker/gps", 10)
	assert.NoError(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, "null", s.Name())
}
