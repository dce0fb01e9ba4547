// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/analytics"
	"github.com/okian/podium/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateAthlete(ctx context.Context, input service.NewAthlete) (model.Athlete, error)
	ListAthletes(ctx context.Context, term string, page, pageSize int) (service.AthleteList, error)
	GetAthlete(ctx context.Context, id string) (model.Athlete, error)

	Submit(ctx context.Context, input service.NewSubmission) (model.Video, error)
	ListVideos(ctx context.Context, status model.Status, athleteID string, page, pageSize int) (service.VideoList, error)
	GetVideo(ctx context.Context, id string) (model.Video, error)
	Decide(ctx context.Context, input service.Decision) (model.Video, error)

	Dashboard(ctx context.Context, windowDays, recentLimit int) (analytics.Dashboard, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	athletesHandler  *AthletesHandler
	videosHandler    *VideosHandler
	analyticsHandler *AnalyticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		athletesHandler:  NewAthletesHandler(deps),
		videosHandler:    NewVideosHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analytics", MetricsMiddleware(s.analyticsHandler.HandleAnalytics, "analytics"))
	mux.HandleFunc("/athletes", MetricsMiddleware(s.athletesHandler.HandleAthletes, "athletes"))
	mux.HandleFunc("/athletes/", MetricsMiddleware(s.athletesHandler.HandleAthleteByID, "athlete"))
	mux.HandleFunc("/videos", MetricsMiddleware(s.videosHandler.HandleVideos, "videos"))
	mux.HandleFunc("/videos/", MetricsMiddleware(s.videosHandler.HandleVideoByID, "video"))
}

// pagination mirrors the envelope returned by list endpoints.
type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service and store errors into HTTP
// responses. Store failures stay generic so driver detail never leaks.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, "already_reviewed", err)
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", err)
	case errors.Is(err, service.ErrDuplicateSubmission):
		writeError(w, http.StatusConflict, "duplicate_submission", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
