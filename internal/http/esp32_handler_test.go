package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"safetrack/internal/service"
	"safetrack/internal/store"
	"safetrack/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newESP32(t *testing.T) (*ESP32Handler, *store.RedisTelemetryStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	ts := store.NewRedisTelemetryStore(rc, 100)
	return NewESP32Handler(service.NewTelemetryService(ts, "health-tracker", 0, zap.NewNop()), zap.NewNop()), ts
}

func call(t *testing.T, fn http.HandlerFunc) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	fn(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr.Code, out
}

func TestESP32Handler_EmptyStore(t *testing.T) {
	h, _ := newESP32(t)

	code, out := call(t, h.GetStatus)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["wifi"])
	assert.Equal(t, false, out["gps"])
	assert.Equal(t, false, out["heartbeat"])
	assert.NotEmpty(t, out["lastUpdate"])

	code, out = call(t, h.GetLatestData)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No ESP32 data found", out["message"])

	code, out = call(t, h.GetHealthData)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No heartbeat data found", out["message"])

	code, out = call(t, h.ValidateHeartRate)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, map[string]any{"valid": false, "message": "No heartbeat data found", "reason": "No data available"}, out)

	code, out = call(t, h.GetAverageHeartRate)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, float64(0), out["averageBPM"])

	code, out = call(t, h.GetCurrentHealthData)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, out, "data")
	assert.Nil(t, out["data"])

	code, out = call(t, h.GetHeartbeatHistory)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No heartbeat history found", out["message"])

	code, out = call(t, h.GetRawData)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["isNull"])
}

func TestESP32Handler_WithData(t *testing.T) {
	ctx := context.Background()
	h, ts := newESP32(t)

	require.NoError(t, ts.WriteLastValue(ctx, "health-tracker/current-status", telemetry.Document{
		"wifi_connected": true, "gps_valid": true, "latitude": 6.93, "longitude": 79.85, "satellites": 7.0,
	}))
	require.NoError(t, ts.WriteLastValue(ctx, "health-tracker/latest-health", telemetry.Document{
		"bpm": 45.0, "valid_bpm": true, "pulse_value": 2100.0,
	}))
	for i := 0; i < 3; i++ {
		_, err := ts.Append(ctx, "health-tracker/gps", telemetry.Document{"latitude": 6.9})
		require.NoError(t, err)
	}

	code, out := call(t, h.GetDataHistory)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), out["count"])

	code, out = call(t, h.GetHealthData)
	require.Equal(t, http.StatusOK, code)
	hr := out["data"].(map[string]any)["heartRate"].(map[string]any)
	assert.Equal(t, string(telemetry.RateSlow), hr["status"])

	code, out = call(t, h.GetCombinedData)
	require.Equal(t, http.StatusOK, code)
	gps := out["data"].(map[string]any)["gps"].(map[string]any)
	assert.Equal(t, 6.93, gps["latitude"])

	code, out = call(t, h.GetAverageHeartRate)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(45), out["averageBPM"])
	assert.Equal(t, float64(1), out["readingsCount"])

	require.NoError(t, ts.WriteLastValue(ctx, "health-tracker/latest-health", telemetry.Document{"bpm": 300.0, "valid_bpm": false}))
	code, out = call(t, h.GetAverageHeartRate)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Current heartbeat reading is not valid", out["message"])

	code, out = call(t, h.TestConnection)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["connected"])
	assert.Equal(t, "redis", out["backend"])
}

type brokenTelemetry struct{ service.TelemetryService }

func (brokenTelemetry) TestConnection(context.Context) (*service.ConnectionTest, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (brokenTelemetry) LatestData(context.Context) (telemetry.Document, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (brokenTelemetry) Backend() string { return "firebase" }

func TestESP32Handler_StoreFailure(t *testing.T) {
	h := NewESP32Handler(brokenTelemetry{}, zap.NewNop())

	code, out := call(t, h.TestConnection)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, out["connected"])
	assert.Equal(t, "Firebase connection test failed", out["message"])

	code, out = call(t, h.GetLatestData)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error", out["message"])
	assert.NotContains(t, out["message"], "refused")
}
