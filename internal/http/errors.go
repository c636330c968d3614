package httpapi

import (
	"errors"
	"net/http"

	"safetrack/internal/service"

	"go.uber.org/zap"
)

// errorMessages per-resource wording for the service sentinels.
type errorMessages struct {
	NotFound  string
	Forbidden string
	InvalidID string
}

var (
	reportMessages = errorMessages{
		NotFound:  "Report not found",
		Forbidden: "Not authorized",
		InvalidID: "Invalid report ID",
	}
	responseMessages = errorMessages{
		NotFound:  "Response not found",
		Forbidden: "Not authorized",
		InvalidID: "Invalid response ID",
	}
	userMessages = errorMessages{NotFound: "User not found"}
)

func (m errorMessages) with(forbidden string) errorMessages {
	m.Forbidden = forbidden
	return m
}

// writeError maps service errors onto status codes. Unknown errors are logged
// and answered with a generic 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error, msgs errorMessages) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body := map[string]any{"message": verr.Message}
		if len(verr.Errors) > 0 {
			body["errors"] = verr.Errors
		}
		for k, v := range verr.Details {
			body[k] = v
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, service.ErrDuplicateEmail):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, orDefault(msgs.InvalidID, "Invalid ID"))
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, orDefault(msgs.NotFound, "Not found"))
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, orDefault(msgs.Forbidden, "Not authorized"))
	default:
		logger.Error("Request failed", zap.String("op", op), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
