package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"safetrack/internal/domain"
	"safetrack/internal/service"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler reports and their nested responses.
type ReportHandler struct {
	reports   service.ReportService
	responses service.ResponseService
	logger    *zap.Logger
}

func NewReportHandler(reports service.ReportService, responses service.ResponseService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, responses: responses, logger: logger}
}

func filterFrom(r *http.Request) domain.ReportFilter {
	q := r.URL.Query()
	return domain.ReportFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
}

func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	fields := map[string]any{}
	if err := readBodyJSON(r, maxJSONBody, &fields); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return fields, true
}

func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	rep, err := h.reports.CreateReport(r.Context(), who, fields)
	if err != nil {
		writeError(w, h.logger, "create_report", err, reportMessages)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Report created successfully", "data": rep})
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.reports.ListReports(r.Context(), filterFrom(r))
	if err != nil {
		writeError(w, h.logger, "list_reports", err, reportMessages)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReportHandler) ListActiveReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.reports.ListActiveReports(r.Context(), filterFrom(r))
	if err != nil {
		writeError(w, h.logger, "list_active_reports", err, reportMessages)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.GetReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "get_report", err, reportMessages)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	rep, err := h.reports.UpdateReport(r.Context(), who, r.PathValue("id"), fields)
	if err != nil {
		writeError(w, h.logger, "update_report", err, reportMessages.with("Not authorized to update this report"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Report updated successfully", "data": rep})
}

func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	if err := h.reports.DeleteReport(r.Context(), who, r.PathValue("id")); err != nil {
		writeError(w, h.logger, "delete_report", err, reportMessages.with("Not authorized to delete this report"))
		return
	}
	writeMessage(w, http.StatusOK, "Report and associated responses deleted successfully")
}

func (h *ReportHandler) ExportReports(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	data, err := h.reports.ExportReports(r.Context(), who, filterFrom(r))
	if err != nil {
		writeError(w, h.logger, "export_reports", err, reportMessages.with("Admin access required"))
		return
	}
	name := fmt.Sprintf("reports_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ReportHandler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	resp, err := h.responses.CreateResponse(r.Context(), who, r.PathValue("reportId"), fields)
	if err != nil {
		writeError(w, h.logger, "create_response", err, reportMessages)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Response created successfully", "data": resp})
}

func (h *ReportHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	list, err := h.responses.ListResponses(r.Context(), r.PathValue("reportId"), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, h.logger, "list_responses", err, reportMessages)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReportHandler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	resp, err := h.responses.UpdateResponse(r.Context(), who, r.PathValue("responseId"), fields)
	if err != nil {
		writeError(w, h.logger, "update_response", err, responseMessages.with("Not authorized to update this response"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Response updated successfully", "data": resp})
}

func (h *ReportHandler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	who, _ := IdentityFrom(r.Context())
	if err := h.responses.DeleteResponse(r.Context(), who, r.PathValue("responseId")); err != nil {
		writeError(w, h.logger, "delete_response", err, responseMessages.with("Not authorized to delete this response"))
		return
	}
	writeMessage(w, http.StatusOK, "Response deleted successfully")
}
