package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	api "github.com/okian/podium/internal/adapters/http/api"
	repository "github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/analytics"
	"github.com/okian/podium/internal/domain/model"
)

// mockDeps implements api.Dependencies with overridable function fields.
type mockDeps struct {
	createAthlete func(ctx context.Context, input service.NewAthlete) (model.Athlete, error)
	listAthletes  func(ctx context.Context, term string, page, pageSize int) (service.AthleteList, error)
	getAthlete    func(ctx context.Context, id string) (model.Athlete, error)
	submit        func(ctx context.Context, input service.NewSubmission) (model.Video, error)
	listVideos    func(ctx context.Context, status model.Status, athleteID string, page, pageSize int) (service.VideoList, error)
	getVideo      func(ctx context.Context, id string) (model.Video, error)
	decide        func(ctx context.Context, input service.Decision) (model.Video, error)
	dashboard     func(ctx context.Context, windowDays, recentLimit int) (analytics.Dashboard, error)
}

func (m *mockDeps) CreateAthlete(ctx context.Context, input service.NewAthlete) (model.Athlete, error) {
	return m.createAthlete(ctx, input)
}

func (m *mockDeps) ListAthletes(ctx context.Context, term string, page, pageSize int) (service.AthleteList, error) {
	return m.listAthletes(ctx, term, page, pageSize)
}

func (m *mockDeps) GetAthlete(ctx context.Context, id string) (model.Athlete, error) {
	return m.getAthlete(ctx, id)
}

func (m *mockDeps) Submit(ctx context.Context, input service.NewSubmission) (model.Video, error) {
	return m.submit(ctx, input)
}

func (m *mockDeps) ListVideos(ctx context.Context, status model.Status, athleteID string, page, pageSize int) (service.VideoList, error) {
	return m.listVideos(ctx, status, athleteID, page, pageSize)
}

func (m *mockDeps) GetVideo(ctx context.Context, id string) (model.Video, error) {
	return m.getVideo(ctx, id)
}

func (m *mockDeps) Decide(ctx context.Context, input service.Decision) (model.Video, error) {
	return m.decide(ctx, input)
}

func (m *mockDeps) Dashboard(ctx context.Context, windowDays, recentLimit int) (analytics.Dashboard, error) {
	return m.dashboard(ctx, windowDays, recentLimit)
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAthleteEndpoints(t *testing.T) {
	convey.Convey("Given the athlete routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("When registering a valid athlete", func() {
			deps.createAthlete = func(_ context.Context, input service.NewAthlete) (model.Athlete, error) {
				return model.Athlete{ID: "a1", Name: input.Name, Email: input.Email}, nil
			}

			rec := doRequest(mux, http.MethodPost, "/athletes",
				`{"name":"Priya Sharma","email":"priya@example.com","age":19,"gender":"female"}`, nil)

			convey.Convey("Then it responds 201 with the profile", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusCreated)

				var got model.Athlete
				convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
				convey.So(got.ID, convey.ShouldEqual, "a1")
				convey.So(got.Name, convey.ShouldEqual, "Priya Sharma")
			})
		})

		convey.Convey("When the body is not JSON", func() {
			rec := doRequest(mux, http.MethodPost, "/athletes", `{"name":`, nil)

			convey.Convey("Then it responds 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When the service rejects the payload", func() {
			deps.createAthlete = func(context.Context, service.NewAthlete) (model.Athlete, error) {
				return model.Athlete{}, service.ErrValidation
			}

			rec := doRequest(mux, http.MethodPost, "/athletes", `{"name":""}`, nil)

			convey.Convey("Then it responds 400 with the error code", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "bad_request")
			})
		})

		convey.Convey("When the email is already registered", func() {
			deps.createAthlete = func(context.Context, service.NewAthlete) (model.Athlete, error) {
				return model.Athlete{}, repository.ErrDuplicateEmail
			}

			rec := doRequest(mux, http.MethodPost, "/athletes", `{"name":"X"}`, nil)

			convey.Convey("Then it responds 409", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusConflict)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "duplicate_email")
			})
		})

		convey.Convey("When listing athletes with pagination", func() {
			var gotTerm string
			var gotPage, gotSize int
			deps.listAthletes = func(_ context.Context, term string, page, pageSize int) (service.AthleteList, error) {
				gotTerm, gotPage, gotSize = term, page, pageSize
				return service.AthleteList{
					Athletes:   []model.Athlete{{ID: "a1"}},
					Total:      7,
					Page:       2,
					PageSize:   3,
					TotalPages: 3,
				}, nil
			}

			rec := doRequest(mux, http.MethodGet, "/athletes?search=pune&page=2&limit=3", "", nil)

			convey.Convey("Then the query parameters reach the service and the envelope is returned", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(gotTerm, convey.ShouldEqual, "pune")
				convey.So(gotPage, convey.ShouldEqual, 2)
				convey.So(gotSize, convey.ShouldEqual, 3)

				var got struct {
					Athletes   []model.Athlete `json:"athletes"`
					Pagination struct {
						Page       int `json:"page"`
						PageSize   int `json:"pageSize"`
						Total      int `json:"total"`
						TotalPages int `json:"totalPages"`
					} `json:"pagination"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
				convey.So(got.Pagination.Total, convey.ShouldEqual, 7)
				convey.So(got.Pagination.TotalPages, convey.ShouldEqual, 3)
				convey.So(len(got.Athletes), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the page parameter is malformed", func() {
			rec := doRequest(mux, http.MethodGet, "/athletes?page=zero", "", nil)

			convey.Convey("Then it responds 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When fetching a single athlete", func() {
			deps.getAthlete = func(_ context.Context, id string) (model.Athlete, error) {
				if id == "a1" {
					return model.Athlete{ID: "a1"}, nil
				}
				return model.Athlete{}, repository.ErrNotFound
			}

			convey.Convey("Then a known id responds 200", func() {
				rec := doRequest(mux, http.MethodGet, "/athletes/a1", "", nil)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then an unknown id responds 404", func() {
				rec := doRequest(mux, http.MethodGet, "/athletes/missing", "", nil)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "not_found")
			})
		})

		convey.Convey("When using an unsupported method", func() {
			rec := doRequest(mux, http.MethodDelete, "/athletes", "", nil)

			convey.Convey("Then it responds 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestVideoEndpoints(t *testing.T) {
	convey.Convey("Given the video routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("When submitting a valid video", func() {
			var gotInput service.NewSubmission
			deps.submit = func(_ context.Context, input service.NewSubmission) (model.Video, error) {
				gotInput = input
				return model.Video{ID: "v1", Status: model.StatusPending}, nil
			}

			rec := doRequest(mux, http.MethodPost, "/videos", `{
				"athleteId": "a1",
				"testType": "Vertical Jump",
				"videoUrl": "https://cdn.example.com/v1.mp4",
				"submissionRef": "ref-1",
				"aiVerification": {"verified": true, "confidence": 0.92}
			}`, nil)

			convey.Convey("Then it responds 201 with the pending submission", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(gotInput.AthleteID, convey.ShouldEqual, "a1")
				convey.So(gotInput.SubmissionRef, convey.ShouldEqual, "ref-1")
				convey.So(gotInput.Verification.Confidence, convey.ShouldEqual, 0.92)

				var got model.Video
				convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
				convey.So(got.Status, convey.ShouldEqual, model.StatusPending)
			})
		})

		convey.Convey("When the athlete does not exist", func() {
			deps.submit = func(context.Context, service.NewSubmission) (model.Video, error) {
				return model.Video{}, repository.ErrNotFound
			}

			rec := doRequest(mux, http.MethodPost, "/videos", `{"athleteId":"missing"}`, nil)

			convey.Convey("Then it responds 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})

		convey.Convey("When the submission reference was already used", func() {
			deps.submit = func(context.Context, service.NewSubmission) (model.Video, error) {
				return model.Video{}, service.ErrDuplicateSubmission
			}

			rec := doRequest(mux, http.MethodPost, "/videos", `{"athleteId":"a1"}`, nil)

			convey.Convey("Then it responds 409", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusConflict)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "duplicate_submission")
			})
		})

		convey.Convey("When listing videos with filters", func() {
			var gotStatus model.Status
			var gotAthlete string
			deps.listVideos = func(_ context.Context, status model.Status, athleteID string, page, pageSize int) (service.VideoList, error) {
				gotStatus, gotAthlete = status, athleteID
				return service.VideoList{Videos: []model.Video{}, Page: 1, PageSize: 20}, nil
			}

			rec := doRequest(mux, http.MethodGet, "/videos?status=pending&athlete_id=a1", "", nil)

			convey.Convey("Then the filters reach the service", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(gotStatus, convey.ShouldEqual, model.StatusPending)
				convey.So(gotAthlete, convey.ShouldEqual, "a1")
			})
		})

		convey.Convey("When reviewing a pending video", func() {
			var gotDecision service.Decision
			deps.decide = func(_ context.Context, input service.Decision) (model.Video, error) {
				gotDecision = input
				now := time.Now().UTC()
				return model.Video{ID: input.VideoID, Status: input.Status, ReviewerID: input.ReviewerID, ReviewedAt: &now}, nil
			}

			rec := doRequest(mux, http.MethodPatch, "/videos/v1/status",
				`{"status":"approved","notes":"clean form"}`,
				map[string]string{api.ReviewerHeader: "coach-7"})

			convey.Convey("Then the decision carries the reviewer header", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(gotDecision.VideoID, convey.ShouldEqual, "v1")
				convey.So(gotDecision.Status, convey.ShouldEqual, model.StatusApproved)
				convey.So(gotDecision.ReviewerID, convey.ShouldEqual, "coach-7")
				convey.So(gotDecision.Notes, convey.ShouldEqual, "clean form")
			})
		})

		convey.Convey("When the video was already reviewed", func() {
			deps.decide = func(context.Context, service.Decision) (model.Video, error) {
				return model.Video{}, repository.ErrAlreadyReviewed
			}

			rec := doRequest(mux, http.MethodPatch, "/videos/v1/status",
				`{"status":"rejected"}`, map[string]string{api.ReviewerHeader: "coach-8"})

			convey.Convey("Then it responds 409", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusConflict)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "already_reviewed")
			})
		})

		convey.Convey("When the store is unavailable", func() {
			deps.decide = func(context.Context, service.Decision) (model.Video, error) {
				return model.Video{}, repository.ErrUnavailable
			}

			rec := doRequest(mux, http.MethodPatch, "/videos/v1/status",
				`{"status":"approved"}`, map[string]string{api.ReviewerHeader: "coach-7"})

			convey.Convey("Then it responds 500 without leaking detail", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusInternalServerError)
				convey.So(rec.Body.String(), convey.ShouldNotContainSubstring, "store unavailable")
			})
		})

		convey.Convey("When the review path is malformed", func() {
			rec := doRequest(mux, http.MethodPatch, "/videos//status", `{"status":"approved"}`, nil)

			convey.Convey("Then it responds 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	convey.Convey("Given the analytics route", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		convey.Convey("When requesting the dashboard", func() {
			var gotWindow, gotLimit int
			deps.dashboard = func(_ context.Context, windowDays, recentLimit int) (analytics.Dashboard, error) {
				gotWindow, gotLimit = windowDays, recentLimit
				return analytics.Dashboard{
					TotalAthletes: 3,
					TotalVideos:   5,
					VerifiedTests: 2,
					PendingReview: 3,
					PerformanceData: []analytics.DayBucket{
						{Date: "2025-03-01", Tests: 5, Verified: 2},
					},
					TestDistribution: []analytics.TypeCount{
						{TestType: "Push-ups", Count: 3},
						{TestType: "Sit-ups", Count: 2},
					},
					RecentActivity: []analytics.ActivityEntry{},
				}, nil
			}

			rec := doRequest(mux, http.MethodGet, "/analytics?window_days=7&limit=5", "", nil)

			convey.Convey("Then the overrides reach the service and the payload round-trips", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(gotWindow, convey.ShouldEqual, 7)
				convey.So(gotLimit, convey.ShouldEqual, 5)

				var got analytics.Dashboard
				convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
				convey.So(got.TotalVideos, convey.ShouldEqual, 5)
				convey.So(got.TestDistribution[0].TestType, convey.ShouldEqual, "Push-ups")
			})
		})

		convey.Convey("When window_days is malformed", func() {
			rec := doRequest(mux, http.MethodGet, "/analytics?window_days=-1", "", nil)

			convey.Convey("Then it responds 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When the method is not GET", func() {
			rec := doRequest(mux, http.MethodPost, "/analytics", "", nil)

			convey.Convey("Then it responds 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	convey.Convey("Given the stats route", t, func() {
		mux := newTestMux(&mockDeps{})

		convey.Convey("When requesting stats", func() {
			rec := doRequest(mux, http.MethodGet, "/stats", "", nil)

			convey.Convey("Then it responds 200 with the stats map", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "started")
			})
		})
	})
}
