package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps http.ServeMux; patterns use the method and wildcard syntax
// of net/http ("GET /api/reports/{id}").
type Router struct {
	mux    *http.ServeMux
	prefix string
	logger *zap.Logger
}

// NewRouter prefix is prepended to every API route ("/api").
func NewRouter(prefix string, logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		prefix: prefix,
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers a plain http.Handler (static files).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) api(method, path string) string {
	return method + " " + r.prefix + path
}

func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle(r.api(http.MethodGet, "/health"), h.APIHealth)
	r.Handle("GET /health", h.ServerHealth)
	r.Handle(r.api(http.MethodGet, "/users/test"), h.UsersTest)
}

func (r *Router) RegisterESP32Routes(h *ESP32Handler) {
	routes := map[string]http.HandlerFunc{
		"/data":               h.GetLatestData,
		"/history":            h.GetDataHistory,
		"/status":             h.GetStatus,
		"/health":             h.GetHealthData,
		"/combined":           h.GetCombinedData,
		"/heartbeat-history":  h.GetHeartbeatHistory,
		"/heartbeat/validate": h.ValidateHeartRate,
		"/heartbeat/average":  h.GetAverageHeartRate,
		"/debug":              h.Debug,
		"/health-data":        h.GetCurrentHealthData,
		"/raw-data":           h.GetRawData,
		"/test-change":        h.TestDataChange,
		"/test":               h.TestConnection,
	}
	for path, fn := range routes {
		r.Handle(r.api(http.MethodGet, "/esp32"+path), fn)
	}
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler, p *ProfileHandler, mw *Authenticator) {
	r.Handle(r.api(http.MethodPost, "/auth/register"), h.Register)
	r.Handle(r.api(http.MethodPost, "/auth/login"), h.Login)
	r.Handle(r.api(http.MethodGet, "/auth/test"), h.Test)
	r.Handle(r.api(http.MethodGet, "/auth/me"), mw.Require(h.Me))

	for _, base := range []string{"/auth/profile", "/profile"} {
		r.Handle(r.api(http.MethodGet, base), mw.Require(p.GetProfile))
		r.Handle(r.api(http.MethodPut, base), mw.Require(p.UpdateProfile))
	}
	r.Handle(r.api(http.MethodPost, "/auth/profile/image"), mw.Require(p.UploadImage))
	r.Handle(r.api(http.MethodGet, "/auth/profile/stats"), mw.Require(p.GetStats))
	r.Handle(r.api(http.MethodGet, "/auth/profile/activity"), mw.Require(p.GetActivity))
}

func (r *Router) RegisterReportRoutes(h *ReportHandler, mw *Authenticator) {
	r.Handle(r.api(http.MethodPost, "/reports"), mw.Require(h.CreateReport))
	r.Handle(r.api(http.MethodGet, "/reports"), h.ListReports)
	r.Handle(r.api(http.MethodGet, "/reports/active"), h.ListActiveReports)
	r.Handle(r.api(http.MethodGet, "/reports/export"), mw.Require(h.ExportReports))
	r.Handle(r.api(http.MethodGet, "/reports/{id}"), h.GetReport)
	r.Handle(r.api(http.MethodPut, "/reports/{id}"), mw.Require(h.UpdateReport))
	r.Handle(r.api(http.MethodDelete, "/reports/{id}"), mw.Require(h.DeleteReport))

	r.Handle(r.api(http.MethodPost, "/reports/{reportId}/responses"), mw.Require(h.CreateResponse))
	r.Handle(r.api(http.MethodGet, "/reports/{reportId}/responses"), h.ListResponses)
	r.Handle(r.api(http.MethodPut, "/reports/responses/{responseId}"), mw.Require(h.UpdateResponse))
	r.Handle(r.api(http.MethodDelete, "/reports/responses/{responseId}"), mw.Require(h.DeleteResponse))
}

// RegisterUploadRoutes serves locally stored uploads under baseURL.
func (r *Router) RegisterUploadRoutes(baseURL string, files http.Handler) {
	r.HandleHandler("GET "+baseURL+"/", files)
}
