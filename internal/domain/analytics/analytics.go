// Package analytics computes the read-side dashboard projection.
// Everything here is a pure fold over store snapshots: no state is
// kept, no cache exists, and repeated calls are independent.
package analytics

import (
	"sort"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// dayFormat is the calendar-day key for performance buckets.
// Bucketing always truncates submission times in UTC.
const dayFormat = "2006-01-02"

// DayBucket counts submissions of one calendar day inside the window.
// Days without submissions are omitted from the series.
type DayBucket struct {
	Date     string `json:"date"`
	Tests    int    `json:"tests"`
	Verified int    `json:"verified"`
}

// TypeCount is one row of the all-time test type distribution.
type TypeCount struct {
	TestType string `json:"test_type"`
	Count    int    `json:"count"`
}

// ActivityEntry is the reduced feed shape shown on dashboards.
type ActivityEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Dashboard is the full snapshot returned to the admin UI.
type Dashboard struct {
	TotalAthletes    int             `json:"total_athletes"`
	TotalVideos      int             `json:"total_videos"`
	VerifiedTests    int             `json:"verified_tests"`
	PendingReview    int             `json:"pending_review"`
	PerformanceData  []DayBucket     `json:"performance_data"`
	TestDistribution []TypeCount     `json:"test_distribution"`
	RecentActivity   []ActivityEntry `json:"recent_activity"`
}

// DayKey returns the UTC calendar day for ts.
func DayKey(ts time.Time) string {
	return ts.UTC().Format(dayFormat)
}

// BucketByDay folds submissions into per-day counts, ascending by date.
// A submission counts as verified when its moderation status is approved.
func BucketByDay(videos []model.Video) []DayBucket {
	byDay := make(map[string]*DayBucket)
	for i := range videos {
		key := DayKey(videos[i].SubmittedAt)
		b, ok := byDay[key]
		if !ok {
			b = &DayBucket{Date: key}
			byDay[key] = b
		}
		b.Tests++
		if videos[i].Status == model.StatusApproved {
			b.Verified++
		}
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// RankDistribution orders test type counts descending by count.
// Ties break ascending by test type so the order is deterministic.
func RankDistribution(counts map[string]int) []TypeCount {
	rows := make([]TypeCount, 0, len(counts))
	for testType, count := range counts {
		rows = append(rows, TypeCount{TestType: testType, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].TestType < rows[j].TestType
	})
	return rows
}

// ReduceActivities trims full activity records down to the feed shape.
func ReduceActivities(activities []model.Activity) []ActivityEntry {
	entries := make([]ActivityEntry, len(activities))
	for i, a := range activities {
		entries[i] = ActivityEntry{
			ID:          a.ID,
			Type:        string(a.Type),
			Description: a.Description,
			Timestamp:   a.Timestamp,
		}
	}
	return entries
}
