package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// MemoryStore is the in-memory Store implementation. It is the default
// for tests and local development and mirrors the MongoDB store's
// contracts exactly, including the conditional review update.
type MemoryStore struct {
	mu         sync.RWMutex
	athletes   map[string]model.Athlete
	emails     map[string]string // lowercased email -> athlete id
	videos     map[string]model.Video
	activities []model.Activity
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		athletes: make(map[string]model.Athlete),
		emails:   make(map[string]string),
		videos:   make(map[string]model.Video),
	}
}

// observe records one store operation latency.
func observe(op string, start time.Time) {
	metrics.RecordStoreOpLatency(op, float64(time.Since(start).Milliseconds()))
}

// InsertAthlete persists a new athlete, enforcing email uniqueness.
func (s *MemoryStore) InsertAthlete(_ context.Context, athlete model.Athlete) error {
	defer observe("insert_athlete", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(athlete.Email)
	if _, taken := s.emails[email]; taken {
		return ErrDuplicateEmail
	}
	s.emails[email] = athlete.ID
	s.athletes[athlete.ID] = athlete
	return nil
}

// GetAthlete returns the athlete with the given id.
func (s *MemoryStore) GetAthlete(_ context.Context, id string) (model.Athlete, error) {
	defer observe("get_athlete", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	athlete, ok := s.athletes[id]
	if !ok {
		return model.Athlete{}, ErrNotFound
	}
	return athlete, nil
}

// SearchAthletes lists athletes matching term, newest first.
func (s *MemoryStore) SearchAthletes(_ context.Context, term string, page Page) ([]model.Athlete, int, error) {
	defer observe("search_athletes", time.Now())

	if err := page.validate(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(term))
	matched := make([]model.Athlete, 0, len(s.athletes))
	for _, a := range s.athletes {
		if needle == "" || athleteMatches(a, needle) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	return slicePage(matched, page), total, nil
}

// athleteMatches reports whether any searchable field contains needle.
func athleteMatches(a model.Athlete, needle string) bool {
	for _, field := range []string{a.Name, a.Email, a.Location, a.State} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// CountAthletes returns the total number of athletes.
func (s *MemoryStore) CountAthletes(_ context.Context) (int, error) {
	defer observe("count_athletes", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.athletes), nil
}

// IncrementTestsCompleted bumps an athlete's completed-test counter.
func (s *MemoryStore) IncrementTestsCompleted(_ context.Context, id string) error {
	defer observe("increment_tests_completed", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	athlete, ok := s.athletes[id]
	if !ok {
		return ErrNotFound
	}
	athlete.TestsCompleted++
	s.athletes[id] = athlete
	return nil
}

// InsertVideo persists a new submission.
func (s *MemoryStore) InsertVideo(_ context.Context, video model.Video) error {
	defer observe("insert_video", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.videos[video.ID] = cloneVideo(video)
	return nil
}

// GetVideo returns the submission with the given id.
func (s *MemoryStore) GetVideo(_ context.Context, id string) (model.Video, error) {
	defer observe("get_video", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	video, ok := s.videos[id]
	if !ok {
		return model.Video{}, ErrNotFound
	}
	return cloneVideo(video), nil
}

// ListVideos lists submissions matching the filter, newest first.
func (s *MemoryStore) ListVideos(_ context.Context, filter VideoFilter, page Page) ([]model.Video, int, error) {
	defer observe("list_videos", time.Now())

	if err := page.validate(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterVideosLocked(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	return slicePage(matched, page), total, nil
}

// CountVideos counts submissions matching the filter.
func (s *MemoryStore) CountVideos(_ context.Context, filter VideoFilter) (int, error) {
	defer observe("count_videos", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterVideosLocked(filter)), nil
}

// filterVideosLocked returns clones of submissions matching filter.
// Callers must hold at least a read lock.
func (s *MemoryStore) filterVideosLocked(filter VideoFilter) []model.Video {
	matched := make([]model.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.AthleteID != "" && v.AthleteID != filter.AthleteID {
			continue
		}
		matched = append(matched, cloneVideo(v))
	}
	return matched
}

// ApplyReview moves a pending submission to its terminal state. The
// status check and the write happen under one lock, which is the
// in-memory equivalent of the MongoDB conditional update: a concurrent
// second decision always observes the terminal state and loses.
func (s *MemoryStore) ApplyReview(_ context.Context, id string, review model.Review) (model.Video, error) {
	defer observe("apply_review", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[id]
	if !ok {
		return model.Video{}, ErrNotFound
	}
	if video.Status != model.StatusPending {
		return model.Video{}, ErrAlreadyReviewed
	}

	reviewedAt := review.ReviewedAt
	video.Status = review.Decision
	video.ReviewerID = review.ReviewerID
	video.ReviewerNotes = review.Notes
	video.ReviewedAt = &reviewedAt
	s.videos[id] = video

	return cloneVideo(video), nil
}

// ListVideosSince returns all submissions with submittedAt >= since.
func (s *MemoryStore) ListVideosSince(_ context.Context, since time.Time) ([]model.Video, error) {
	defer observe("list_videos_since", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if !v.SubmittedAt.Before(since) {
			matched = append(matched, cloneVideo(v))
		}
	}
	return matched, nil
}

// TestTypeCounts folds the all-time submission count per test type.
func (s *MemoryStore) TestTypeCounts(_ context.Context) (map[string]int, error) {
	defer observe("test_type_counts", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, v := range s.videos {
		counts[v.TestType]++
	}
	return counts, nil
}

// AppendActivity writes one feed entry.
func (s *MemoryStore) AppendActivity(_ context.Context, activity model.Activity) error {
	defer observe("append_activity", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activities = append(s.activities, activity)
	return nil
}

// RecentActivities returns up to limit entries, newest first.
func (s *MemoryStore) RecentActivities(_ context.Context, limit int) ([]model.Activity, error) {
	defer observe("recent_activities", time.Now())

	if limit < 0 {
		limit = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := make([]model.Activity, len(s.activities))
	copy(recent, s.activities)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

// Close releases nothing for the in-memory store.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// validate checks page bounds.
func (p Page) validate() error {
	if p.Number < 1 || p.Size < 1 {
		return ErrInvalidPage
	}
	return nil
}

// slicePage cuts one page out of records.
func slicePage[T any](records []T, page Page) []T {
	skip := page.Skip()
	if skip >= len(records) {
		return []T{}
	}
	end := skip + page.Size
	if end > len(records) {
		end = len(records)
	}
	return records[skip:end]
}

// cloneVideo deep-copies the mutable parts of a submission so the
// stored verification payload can never be changed from outside.
func cloneVideo(v model.Video) model.Video {
	if v.AIVerification.Anomalies != nil {
		anomalies := make([]string, len(v.AIVerification.Anomalies))
		copy(anomalies, v.AIVerification.Anomalies)
		v.AIVerification.Anomalies = anomalies
	}
	if v.AIVerification.Metrics != nil {
		m := make(map[string]float64, len(v.AIVerification.Metrics))
		for k, val := range v.AIVerification.Metrics {
			m[k] = val
		}
		v.AIVerification.Metrics = m
	}
	if v.ReviewedAt != nil {
		reviewedAt := *v.ReviewedAt
		v.ReviewedAt = &reviewedAt
	}
	return v
}
