package httpapi

import (
	"net/http"
	"time"

	"safetrack/internal/service"

	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

type AuthHandler struct {
	svc    service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "register", err, userMessages)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "login", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	u, err := h.svc.CurrentUser(r.Context(), who.ID)
	if err != nil {
		writeError(w, h.logger, "me", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Auth router is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
