package httpapi

import (
	"errors"
	"net/http"

	"safetrack/internal/service"

	"go.uber.org/zap"
)

type ProfileHandler struct {
	svc            service.ProfileService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewProfileHandler(svc service.ProfileService, maxUploadBytes int64, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	u, err := h.svc.GetProfile(r.Context(), who.ID)
	if err != nil {
		writeError(w, h.logger, "get_profile", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	fields := map[string]any{}
	if err := readBodyJSON(r, maxJSONBody, &fields); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), who.ID, fields)
	if err != nil {
		writeError(w, h.logger, "update_profile", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "data": u})
}

func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, hdr, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	u, err := h.svc.UploadImage(r.Context(), who.ID, service.ImageUpload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(w, h.logger, "upload_image", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Profile image uploaded successfully",
		"imageUrl": u.ProfileImage,
		"data":     u,
	})
}

func (h *ProfileHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	st, err := h.svc.Stats(r.Context(), who.ID)
	if err != nil {
		writeError(w, h.logger, "profile_stats", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": st})
}

func (h *ProfileHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	q := r.URL.Query()
	page, err := h.svc.Activity(r.Context(), who.ID, parseInt(q.Get("limit"), 10), parseInt(q.Get("offset"), 0))
	if err != nil {
		writeError(w, h.logger, "profile_activity", err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
