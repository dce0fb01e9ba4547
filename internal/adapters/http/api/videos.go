// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
)

// ReviewerHeader carries the opaque moderator identity on review calls.
const ReviewerHeader = "X-Reviewer-Id"

// VideosHandler handles video submission, listing, and review.
type VideosHandler struct {
	deps Dependencies
}

// NewVideosHandler creates a new videos handler.
func NewVideosHandler(deps Dependencies) *VideosHandler {
	return &VideosHandler{deps: deps}
}

// videoRequest mirrors the OpenAPI schema for POST /videos.
type videoRequest struct {
	AthleteID      string             `json:"athleteId"`
	TestType       string             `json:"testType"`
	VideoURL       string             `json:"videoUrl"`
	ThumbnailURL   string             `json:"thumbnailUrl"`
	SubmissionRef  string             `json:"submissionRef"`
	AIVerification model.Verification `json:"aiVerification"`
}

// reviewRequest mirrors the OpenAPI schema for PATCH /videos/{id}/status.
type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type videoListResponse struct {
	Videos     []model.Video `json:"videos"`
	Pagination pagination    `json:"pagination"`
}

// HandleVideos handles GET and POST /videos requests.
func (h *VideosHandler) HandleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.NotFound(w, r)
	}
}

// HandleVideoByID handles GET /videos/{id} and PATCH /videos/{id}/status.
func (h *VideosHandler) HandleVideoByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.video_by_id"
	rest := strings.TrimPrefix(r.URL.Path, "/videos/")

	switch {
	case r.Method == http.MethodGet && rest != "" && !strings.Contains(rest, "/"):
		video, err := h.deps.GetVideo(r.Context(), rest)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, video)
	case r.Method == http.MethodPatch && strings.HasSuffix(rest, "/status"):
		id := strings.TrimSuffix(rest, "/status")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		h.review(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *VideosHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_videos"
	page, size, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	query := r.URL.Query()
	list, err := h.deps.ListVideos(r.Context(),
		model.Status(query.Get("status")),
		query.Get("athlete_id"),
		page, size,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, videoListResponse{
		Videos: list.Videos,
		Pagination: pagination{
			Page:       list.Page,
			PageSize:   list.PageSize,
			Total:      list.Total,
			TotalPages: list.TotalPages,
		},
	})
}

func (h *VideosHandler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_video"
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	video, err := h.deps.Submit(r.Context(), service.NewSubmission{
		AthleteID:     req.AthleteID,
		TestType:      req.TestType,
		VideoURL:      req.VideoURL,
		ThumbnailURL:  req.ThumbnailURL,
		SubmissionRef: req.SubmissionRef,
		Verification:  req.AIVerification,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

func (h *VideosHandler) review(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.review_video"
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	video, err := h.deps.Decide(r.Context(), service.Decision{
		VideoID:    id,
		Status:     model.Status(req.Status),
		ReviewerID: r.Header.Get(ReviewerHeader),
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}
