// Package chi exposes the search API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/document"
	"github.com/gate-platform/rawi/internal/domain/search/mode"
	"github.com/gate-platform/rawi/internal/domain/search/request"
	"github.com/gate-platform/rawi/internal/domain/search/result"
	healthuc "github.com/gate-platform/rawi/internal/usecase/health"
	searchuc "github.com/gate-platform/rawi/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeModeUnavailable    = "mode_unavailable"
	codeBackendUnavailable = "backend_unavailable"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeInternalError      = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the search API handlers onto a chi router.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrModeUnavailable, http.StatusNotImplemented, codeModeUnavailable),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, codeBackendUnavailable),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, codeEmbeddingProvider),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes registers the API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.SearchSegments)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	Query string `json:"query"`
	Size  int    `json:"size,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

type searchResultItem struct {
	ID           string  `json:"id"`
	Score        float64 `json:"score"`
	Text         string  `json:"text"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	VideoLink    string  `json:"video_link,omitempty"`
	TimedLink    string  `json:"timed_link,omitempty"`
}

type searchResponse struct {
	Items    []searchResultItem `json:"items"`
	Total    int                `json:"total"`
	Returned int                `json:"returned"`
	ModeUsed string             `json:"mode_used"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchSegments handles POST /search.
func (s *Server) SearchSegments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := request.New(req.Query, mode.Mode(req.Mode), req.Size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:    items,
		Total:    resp.Total,
		Returned: len(items),
		ModeUsed: string(resp.ModeUsed),
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultToItem(r *result.Result) searchResultItem {
	item := searchResultItem{
		ID:           r.ID(),
		Score:        r.Score(),
		Text:         r.Text(),
		Start:        document.FormatTime(r.Start()),
		End:          document.FormatTime(r.End()),
		StartSeconds: r.Start(),
		EndSeconds:   r.End(),
		VideoLink:    r.VideoLink(),
	}
	if r.VideoLink() != "" {
		item.TimedLink = document.TimedLink(r.VideoLink(), int(r.Start()))
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrModeUnavailable,
		domain.ErrBackendUnavailable,
		domain.ErrModelUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
