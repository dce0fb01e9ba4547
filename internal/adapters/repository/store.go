// Package repository defines the persistence contracts for athletes,
// submissions, and the activity feed, with two implementations: an
// in-memory store for tests and development, and a MongoDB store for
// production.
package repository

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Page addresses one slice of a listing. Pages are 1-indexed; an
// out-of-range page yields an empty slice with the correct total.
type Page struct {
	Number int
	Size   int
}

// Skip returns the number of records preceding this page.
func (p Page) Skip() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// VideoFilter narrows submission listings. Zero values mean "any".
type VideoFilter struct {
	Status    model.Status
	AthleteID string
}

// AthleteStore provides access to athlete records.
type AthleteStore interface {
	// InsertAthlete persists a new athlete.
	// Returns ErrDuplicateEmail when the email is already registered.
	InsertAthlete(ctx context.Context, athlete model.Athlete) error

	// GetAthlete returns the athlete with the given id.
	GetAthlete(ctx context.Context, id string) (model.Athlete, error)

	// SearchAthletes lists athletes matching term (case-insensitive
	// substring over name, email, location, and state; empty term
	// matches all), newest first, with the page-independent total.
	SearchAthletes(ctx context.Context, term string, page Page) ([]model.Athlete, int, error)

	// CountAthletes returns the total number of athletes.
	CountAthletes(ctx context.Context) (int, error)

	// IncrementTestsCompleted bumps an athlete's completed-test counter.
	IncrementTestsCompleted(ctx context.Context, id string) error
}

// VideoStore provides access to submission records.
type VideoStore interface {
	// InsertVideo persists a new submission.
	InsertVideo(ctx context.Context, video model.Video) error

	// GetVideo returns the submission with the given id.
	GetVideo(ctx context.Context, id string) (model.Video, error)

	// ListVideos lists submissions matching the filter, newest first,
	// with the page-independent total.
	ListVideos(ctx context.Context, filter VideoFilter, page Page) ([]model.Video, int, error)

	// CountVideos counts submissions matching the filter.
	CountVideos(ctx context.Context, filter VideoFilter) (int, error)

	// ApplyReview moves a pending submission to its terminal state.
	// The write is conditioned on the status still being pending at the
	// moment of the update, so at most one review ever succeeds.
	// Returns ErrNotFound for unknown ids and ErrAlreadyReviewed when a
	// prior decision won.
	ApplyReview(ctx context.Context, id string, review model.Review) (model.Video, error)

	// ListVideosSince returns all submissions with submittedAt >= since.
	ListVideosSince(ctx context.Context, since time.Time) ([]model.Video, error)

	// TestTypeCounts returns the all-time submission count per test type.
	TestTypeCounts(ctx context.Context) (map[string]int, error)
}

// ActivityStore is the append-only activity feed. Entries are never
// updated or deleted once written.
type ActivityStore interface {
	// AppendActivity writes one feed entry.
	AppendActivity(ctx context.Context, activity model.Activity) error

	// RecentActivities returns up to limit entries, newest first.
	RecentActivities(ctx context.Context, limit int) ([]model.Activity, error)
}

// Store bundles all persistence contracts behind one dependency.
type Store interface {
	AthleteStore
	VideoStore
	ActivityStore

	// Close releases any underlying connections.
	Close(ctx context.Context) error
}
