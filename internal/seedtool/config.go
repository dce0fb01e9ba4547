package seedtool

import "time"

// Config holds configuration for the seed run
type Config struct {
	BaseURL       string        // Base URL of the service
	NumAthletes   int           // Number of athletes to register
	VideosPerAth  int           // Number of video submissions per athlete
	ReviewPercent int           // Percentage of submissions to decide on
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	LogFile       string        // Log file for seed output
	Verbose       bool          // Enable verbose logging
}

// AthleteRequest is the registration payload
type AthleteRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Location     string `json:"location"`
	State        string `json:"state"`
	PhoneNumber  string `json:"phoneNumber"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Verification is the machine check attached to a submission
type Verification struct {
	Verified   bool               `json:"verified"`
	Confidence float64            `json:"confidence"`
	Anomalies  []string           `json:"anomalies"`
	Metrics    map[string]float64 `json:"metrics"`
}

// VideoRequest is the submission payload
type VideoRequest struct {
	AthleteID      string       `json:"athleteId"`
	TestType       string       `json:"testType"`
	VideoURL       string       `json:"videoUrl"`
	ThumbnailURL   string       `json:"thumbnailUrl"`
	SubmissionRef  string       `json:"submissionRef"`
	AIVerification Verification `json:"aiVerification"`
}

// ReviewRequest is the moderation decision payload
type ReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// Created carries the server-assigned identifier of a new record
type Created struct {
	ID string `json:"id"`
}

// TypeCount is one row of the dashboard test distribution
type TypeCount struct {
	TestType string `json:"test_type"`
	Count    int    `json:"count"`
}

// DayBucket is one day of the dashboard performance series
type DayBucket struct {
	Date     string `json:"date"`
	Tests    int    `json:"tests"`
	Verified int    `json:"verified"`
}

// Dashboard mirrors the analytics response
type Dashboard struct {
	TotalAthletes    int         `json:"total_athletes"`
	TotalVideos      int         `json:"total_videos"`
	VerifiedTests    int         `json:"verified_tests"`
	PendingReview    int         `json:"pending_review"`
	PerformanceData  []DayBucket `json:"performance_data"`
	TestDistribution []TypeCount `json:"test_distribution"`
}

// Stats holds seed run statistics
type Stats struct {
	AthletesGenerated int
	AthletesCreated   int
	AthletesDuplicate int
	AthletesFailed    int
	VideosGenerated   int
	VideosSubmitted   int
	VideosDuplicate   int
	VideosFailed      int
	ReviewsApplied    int
	ReviewsConflicted int
	ReviewsFailed     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
