// Package model contains domain models passed between layers.
package model

import "time"

// Gender enumerates accepted athlete genders.
type Gender string

// Gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the accepted gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Status enumerates the moderation states of a submission.
// A submission starts pending and moves exactly once to a terminal state.
type Status string

// Status values.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether s is a terminal moderation state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// ActivityType enumerates known activity feed entry kinds.
// The set is open; readers must tolerate unknown values.
type ActivityType string

// ActivityType values.
const (
	ActivityVideoSubmitted ActivityType = "video_submitted"
	ActivityTestVerified   ActivityType = "test_verified"
	ActivityReviewApproved ActivityType = "review_approved"
	ActivityReviewRejected ActivityType = "review_rejected"
)

// Athlete is a registered program participant.
type Athlete struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	Age            int       `json:"age" bson:"age"`
	Gender         Gender    `json:"gender" bson:"gender"`
	Location       string    `json:"location" bson:"location"`
	State          string    `json:"state" bson:"state"`
	PhoneNumber    string    `json:"phone_number,omitempty" bson:"phoneNumber,omitempty"`
	ProfileImage   string    `json:"profile_image,omitempty" bson:"profileImage,omitempty"`
	TestsCompleted int       `json:"tests_completed" bson:"testsCompleted"`
	CreatedAt      time.Time `json:"created_at" bson:"createdAt"`
}

// Verification is the automated analysis attached to a submission.
// It is produced upstream and stored verbatim; the service never
// recomputes or reinterprets it.
type Verification struct {
	Verified   bool               `json:"verified" bson:"verified"`
	Confidence float64            `json:"confidence" bson:"confidence"`
	Anomalies  []string           `json:"anomalies" bson:"anomalies"`
	Metrics    map[string]float64 `json:"metrics" bson:"metrics"`
}

// Video is one athlete's fitness-test submission plus its verification
// result. The actual footage lives elsewhere; only URLs are kept.
type Video struct {
	ID             string       `json:"id" bson:"_id"`
	AthleteID      string       `json:"athlete_id" bson:"athleteId"`
	TestType       string       `json:"test_type" bson:"testType"`
	VideoURL       string       `json:"video_url,omitempty" bson:"videoUrl,omitempty"`
	ThumbnailURL   string       `json:"thumbnail_url,omitempty" bson:"thumbnailUrl,omitempty"`
	SubmittedAt    time.Time    `json:"submitted_at" bson:"submittedAt"`
	Status         Status       `json:"status" bson:"status"`
	AIVerification Verification `json:"ai_verification" bson:"aiVerification"`
	ReviewerID     string       `json:"reviewer_id,omitempty" bson:"reviewerId,omitempty"`
	ReviewerNotes  string       `json:"reviewer_notes,omitempty" bson:"reviewerNotes,omitempty"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty" bson:"reviewedAt,omitempty"`
}

// Review carries the terminal moderation decision applied to a video.
type Review struct {
	Decision   Status
	ReviewerID string
	Notes      string
	ReviewedAt time.Time
}

// Activity is one append-only feed entry. Entries are never mutated
// or deleted after being written.
type Activity struct {
	ID          string         `json:"id" bson:"_id"`
	Type        ActivityType   `json:"type" bson:"type"`
	Description string         `json:"description" bson:"description"`
	AthleteID   string         `json:"athlete_id,omitempty" bson:"athleteId,omitempty"`
	VideoID     string         `json:"video_id,omitempty" bson:"videoId,omitempty"`
	Timestamp   time.Time      `json:"timestamp" bson:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
