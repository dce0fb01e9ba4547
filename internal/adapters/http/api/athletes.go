// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
)

// AthletesHandler handles athlete registration and listing.
type AthletesHandler struct {
	deps Dependencies
}

// NewAthletesHandler creates a new athletes handler.
func NewAthletesHandler(deps Dependencies) *AthletesHandler {
	return &AthletesHandler{deps: deps}
}

// athleteRequest mirrors the OpenAPI schema for POST /athletes.
type athleteRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Location     string `json:"location"`
	State        string `json:"state"`
	PhoneNumber  string `json:"phoneNumber"`
	ProfileImage string `json:"profileImage"`
}

type athleteListResponse struct {
	Athletes   []model.Athlete `json:"athletes"`
	Pagination pagination      `json:"pagination"`
}

// HandleAthletes handles GET and POST /athletes requests.
func (h *AthletesHandler) HandleAthletes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.NotFound(w, r)
	}
}

// HandleAthleteByID handles GET /athletes/{id} requests.
func (h *AthletesHandler) HandleAthleteByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	const op = "api.get_athlete"
	id := strings.TrimPrefix(r.URL.Path, "/athletes/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	athlete, err := h.deps.GetAthlete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

func (h *AthletesHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_athletes"
	page, size, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	list, err := h.deps.ListAthletes(r.Context(), r.URL.Query().Get("search"), page, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, athleteListResponse{
		Athletes: list.Athletes,
		Pagination: pagination{
			Page:       list.Page,
			PageSize:   list.PageSize,
			Total:      list.Total,
			TotalPages: list.TotalPages,
		},
	})
}

func (h *AthletesHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_athlete"
	var req athleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	athlete, err := h.deps.CreateAthlete(r.Context(), service.NewAthlete{
		Name:         req.Name,
		Email:        req.Email,
		Age:          req.Age,
		Gender:       model.Gender(req.Gender),
		Location:     req.Location,
		State:        req.State,
		PhoneNumber:  req.PhoneNumber,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, athlete)
}

// pageParams parses the optional page and limit query parameters.
// Missing values are reported as zero so the service applies defaults.
func pageParams(r *http.Request) (page, size int, err error) {
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, ErrBadRequest
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 {
			return 0, 0, ErrBadRequest
		}
	}
	return page, size, nil
}
