package analytics_test

import (
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/analytics"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func submission(day string, hour int, status model.Status) model.Video {
	ts, _ := time.Parse("2006-01-02", day)
	return model.Video{
		ID:          day + "/" + string(status),
		SubmittedAt: ts.Add(time.Duration(hour) * time.Hour),
		Status:      status,
	}
}

func TestBucketByDay(t *testing.T) {
	Convey("Given submissions spread over three days", t, func() {
		videos := []model.Video{
			submission("2026-08-03", 9, model.StatusApproved),
			submission("2026-08-03", 17, model.StatusPending),
			submission("2026-08-01", 12, model.StatusRejected),
			submission("2026-08-05", 1, model.StatusApproved),
		}

		buckets := analytics.BucketByDay(videos)

		Convey("Then only days with submissions appear, ascending", func() {
			So(buckets, ShouldHaveLength, 3)
			So(buckets[0].Date, ShouldEqual, "2026-08-01")
			So(buckets[1].Date, ShouldEqual, "2026-08-03")
			So(buckets[2].Date, ShouldEqual, "2026-08-05")
		})

		Convey("Then tests count every submission of the day", func() {
			So(buckets[1].Tests, ShouldEqual, 2)
			So(buckets[0].Tests, ShouldEqual, 1)
		})

		Convey("Then verified counts only approved submissions", func() {
			So(buckets[0].Verified, ShouldEqual, 0)
			So(buckets[1].Verified, ShouldEqual, 1)
			So(buckets[2].Verified, ShouldEqual, 1)
		})

		Convey("Then the tests sum matches the input size", func() {
			sum := 0
			for _, b := range buckets {
				sum += b.Tests
			}
			So(sum, ShouldEqual, len(videos))
		})
	})

	Convey("Given no submissions", t, func() {
		Convey("Then the series is empty", func() {
			So(analytics.BucketByDay(nil), ShouldBeEmpty)
		})
	})

	Convey("Given a submission just before UTC midnight", t, func() {
		ts := time.Date(2026, 8, 3, 23, 59, 59, 0, time.UTC)
		buckets := analytics.BucketByDay([]model.Video{{SubmittedAt: ts}})

		Convey("Then it lands on its own calendar day", func() {
			So(buckets[0].Date, ShouldEqual, "2026-08-03")
		})
	})
}

func TestRankDistribution(t *testing.T) {
	Convey("Given counts with a tie", t, func() {
		rows := analytics.RankDistribution(map[string]int{
			"Vertical Jump": 4,
			"Sit-ups":       7,
			"Push-ups":      4,
			"Flexibility":   1,
		})

		Convey("Then rows are ordered by count descending", func() {
			So(rows[0].TestType, ShouldEqual, "Sit-ups")
			So(rows[3].TestType, ShouldEqual, "Flexibility")
		})

		Convey("Then ties break lexically", func() {
			So(rows[1].TestType, ShouldEqual, "Push-ups")
			So(rows[2].TestType, ShouldEqual, "Vertical Jump")
		})

		Convey("Then the counts sum is preserved", func() {
			sum := 0
			for _, r := range rows {
				sum += r.Count
			}
			So(sum, ShouldEqual, 16)
		})
	})
}

func TestReduceActivities(t *testing.T) {
	Convey("Given a full activity record", t, func() {
		now := time.Now().UTC()
		entries := analytics.ReduceActivities([]model.Activity{{
			ID:          "act-1",
			Type:        model.ActivityReviewApproved,
			Description: "Approved Vertical Jump test for Priya Sharma",
			AthleteID:   "athlete-1",
			VideoID:     "video-1",
			Timestamp:   now,
			Metadata:    map[string]any{"confidence": 0.92},
		}})

		Convey("Then only the feed fields survive", func() {
			So(entries, ShouldHaveLength, 1)
			So(entries[0].ID, ShouldEqual, "act-1")
			So(entries[0].Type, ShouldEqual, "review_approved")
			So(entries[0].Description, ShouldContainSubstring, "Priya Sharma")
			So(entries[0].Timestamp, ShouldEqual, now)
		})
	})
}
