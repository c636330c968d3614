package httpapi

import (
	"errors"
	"net/http"

	"safetrack/internal/service"
	"safetrack/internal/telemetry"

	"go.uber.org/zap"
)

// ESP32Handler read-only telemetry endpoints for the tracker.
type ESP32Handler struct {
	svc    service.TelemetryService
	logger *zap.Logger
}

func NewESP32Handler(svc service.TelemetryService, logger *zap.Logger) *ESP32Handler {
	return &ESP32Handler{svc: svc, logger: logger}
}

// fail answers 404 with notFoundBody for ErrNotFound, otherwise a logged 500.
func (h *ESP32Handler) fail(w http.ResponseWriter, op string, err error, notFoundBody any) {
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, notFoundBody)
		return
	}
	h.logger.Error("Telemetry read failed", zap.String("op", op), zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "Server error")
}

func msg(s string) map[string]any { return map[string]any{"message": s} }

func history(docs []telemetry.Document) map[string]any {
	return map[string]any{"data": docs, "count": len(docs)}
}

func (h *ESP32Handler) GetLatestData(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.LatestData(r.Context())
	if err != nil {
		h.fail(w, "latest_data", err, msg("No ESP32 data found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": doc})
}

func (h *ESP32Handler) GetDataHistory(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.GPSHistory(r.Context())
	if err != nil {
		h.fail(w, "gps_history", err, msg("No ESP32 GPS history found"))
		return
	}
	writeJSON(w, http.StatusOK, history(docs))
}

// GetStatus always 200; an unreachable store reads as offline.
func (h *ESP32Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

func (h *ESP32Handler) GetHealthData(w http.ResponseWriter, r *http.Request) {
	hp, err := h.svc.Health(r.Context())
	if err != nil {
		h.fail(w, "health", err, msg("No heartbeat data found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": hp})
}

func (h *ESP32Handler) GetCombinedData(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Combined(r.Context())
	if err != nil {
		h.fail(w, "combined", err, msg("No ESP32 data found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *ESP32Handler) GetHeartbeatHistory(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.HeartbeatHistory(r.Context())
	if err != nil {
		h.fail(w, "heartbeat_history", err, msg("No heartbeat history found"))
		return
	}
	writeJSON(w, http.StatusOK, history(docs))
}

func (h *ESP32Handler) ValidateHeartRate(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.ValidateHeartRate(r.Context())
	if err != nil {
		h.fail(w, "validate_heart_rate", err, map[string]any{
			"valid":   false,
			"message": "No heartbeat data found",
			"reason":  "No data available",
		})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GetAverageHeartRate reports the current reading as the average.
func (h *ESP32Handler) GetAverageHeartRate(w http.ResponseWriter, r *http.Request) {
	avg, rejected, err := h.svc.AverageHeartRate(r.Context())
	if err != nil {
		h.fail(w, "average_heart_rate", err, map[string]any{
			"message":       "No heartbeat data found",
			"averageBPM":    0,
			"readingsCount": 0,
		})
		return
	}
	if rejected != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message":       "Current heartbeat reading is not valid",
			"averageBPM":    0,
			"readingsCount": 0,
			"debug":         rejected,
		})
		return
	}
	writeJSON(w, http.StatusOK, avg)
}

func (h *ESP32Handler) Debug(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Debug(r.Context())
	if err != nil {
		h.fail(w, "debug", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *ESP32Handler) GetCurrentHealthData(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.HealthData(r.Context())
	if err != nil {
		h.fail(w, "health_data", err, map[string]any{"message": "No health data found", "data": nil})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ESP32Handler) GetRawData(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.RawData(r.Context())
	if err != nil {
		h.fail(w, "raw_data", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ESP32Handler) TestDataChange(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.TestChange(r.Context())
	if err != nil {
		h.fail(w, "test_change", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ESP32Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.TestConnection(r.Context())
	if err != nil {
		h.logger.Error("Telemetry connection test failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message":   "Firebase connection test failed",
			"connected": false,
			"backend":   h.svc.Backend(),
		})
		return
	}
	writeJSON(w, http.StatusOK, v)
}
