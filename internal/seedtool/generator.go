package seedtool

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/podium/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	confidenceCaseMod  = 8
)

// Constants for generated athlete attributes.
const (
	minGeneratedAge = 10
	ageSpread       = 25
)

// Constants for verification confidence ranges.
const (
	strongPassMin   = 0.9
	strongPassRange = 0.1
	passMin         = 0.7
	passRange       = 0.2
	borderlineMin   = 0.5
	borderlineRange = 0.2
	failMin         = 0.1
	failRange       = 0.4
)

// Constants for confidence distribution cases.
const (
	caseStrongPass = iota
	caseStrongPass2
	caseStrongPass3
	casePass
	casePass2
	casePass3
	caseBorderline
	caseFail
)

// verifiedThreshold mirrors the cutoff the upstream analysis pipeline
// applies before flagging a submission as machine verified.
const verifiedThreshold = 0.7

var testTypes = []string{
	"Vertical Jump",
	"Sit-ups",
	"Push-ups",
	"100m Run",
	"Flexibility",
}

var firstNames = []string{
	"Priya", "Arjun", "Kavya", "Rohan", "Ananya", "Vikram", "Meera",
	"Aditya", "Sneha", "Karan", "Divya", "Rahul", "Ishita", "Sanjay",
}

var lastNames = []string{
	"Sharma", "Patel", "Reddy", "Iyer", "Singh", "Nair", "Das",
	"Kumar", "Menon", "Gupta", "Joshi", "Rao",
}

var locations = []struct {
	city  string
	state string
}{
	{"Kochi", "Kerala"},
	{"Pune", "Maharashtra"},
	{"Jaipur", "Rajasthan"},
	{"Bengaluru", "Karnataka"},
	{"Guwahati", "Assam"},
	{"Lucknow", "Uttar Pradesh"},
	{"Bhopal", "Madhya Pradesh"},
	{"Chennai", "Tamil Nadu"},
}

var genders = []string{"male", "female", "other"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pickIndex returns a random index below n using crypto/rand.
func pickIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateAthletes creates registration payloads with unique emails.
func generateAthletes(ctx context.Context, config *Config, stats *Stats) ([]AthleteRequest, error) {
	logger.Get().Info(ctx, "generating athletes", logger.Int("numAthletes", config.NumAthletes))

	athletes := make([]AthleteRequest, config.NumAthletes)
	for i := 0; i < config.NumAthletes; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during athlete generation: %w", ctx.Err())
		default:
		}
		athletes[i] = generateSingleAthlete(i)
	}

	stats.AthletesGenerated = len(athletes)
	logger.Get().Info(ctx, "generated athletes successfully", logger.Int("count", len(athletes)))

	return athletes, nil
}

// generateSingleAthlete creates one registration payload. The email
// carries the index plus a random suffix so repeated runs against the
// same instance do not collide on the unique email constraint.
func generateSingleAthlete(index int) AthleteRequest {
	first := firstNames[pickIndex(len(firstNames))]
	last := lastNames[pickIndex(len(lastNames))]
	loc := locations[pickIndex(len(locations))]

	suffix, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	email := fmt.Sprintf("%s.%s.%d.%d@seed.podium.test",
		first, last, index, suffix.Int64())

	return AthleteRequest{
		Name:        first + " " + last,
		Email:       email,
		Age:         minGeneratedAge + pickIndex(ageSpread),
		Gender:      genders[pickIndex(len(genders))],
		Location:    loc.city,
		State:       loc.state,
		PhoneNumber: "+91" + strconv.FormatInt(9000000000+int64(pickIndex(randomFloatDivisor)), 10),
	}
}

// generateVideos creates submission payloads for the registered athletes.
// Each payload carries a unique submissionRef so the run is idempotent
// from the service's point of view.
func generateVideos(ctx context.Context, config *Config, athleteIDs []string, stats *Stats) ([]VideoRequest, error) {
	total := len(athleteIDs) * config.VideosPerAth
	logger.Get().Info(ctx, "generating video submissions",
		logger.Int("athletes", len(athleteIDs)),
		logger.Int("perAthlete", config.VideosPerAth),
		logger.Int("total", total))

	videos := make([]VideoRequest, 0, total)
	for _, athleteID := range athleteIDs {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during video generation: %w", ctx.Err())
		default:
		}
		for i := 0; i < config.VideosPerAth; i++ {
			videos = append(videos, generateSingleVideo(athleteID, i))
		}
	}

	stats.VideosGenerated = len(videos)
	logger.Get().Info(ctx, "generated video submissions successfully", logger.Int("count", len(videos)))

	return videos, nil
}

// generateSingleVideo creates one submission payload for the athlete.
func generateSingleVideo(athleteID string, seq int) VideoRequest {
	testType := testTypes[pickIndex(len(testTypes))]
	confidence := generateVariedConfidence()
	ref := "seed_" + athleteID + "_" + strconv.Itoa(seq) + "_" + uuid.New().String()

	verification := Verification{
		Verified:   confidence >= verifiedThreshold,
		Confidence: confidence,
		Anomalies:  []string{},
		Metrics: map[string]float64{
			"frames_analyzed": float64(200 + pickIndex(400)),
			"motion_score":    getRandomFloat(),
		},
	}
	if !verification.Verified {
		verification.Anomalies = append(verification.Anomalies, "low_confidence")
	}

	return VideoRequest{
		AthleteID:      athleteID,
		TestType:       testType,
		VideoURL:       "https://cdn.podium.test/videos/" + uuid.New().String() + ".mp4",
		ThumbnailURL:   "https://cdn.podium.test/thumbs/" + uuid.New().String() + ".jpg",
		SubmissionRef:  ref,
		AIVerification: verification,
	}
}

// generateVariedConfidence creates a confidence score with a distribution
// skewed toward passing submissions, matching what a real analysis
// pipeline tends to produce.
func generateVariedConfidence() float64 {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(confidenceCaseMod))
	switch randNum.Int64() {
	case caseStrongPass, caseStrongPass2, caseStrongPass3:
		// Strong passes (0.9 - 1.0) - most common
		return strongPassMin + getRandomFloat()*strongPassRange
	case casePass, casePass2, casePass3:
		// Clear passes (0.7 - 0.9)
		return passMin + getRandomFloat()*passRange
	case caseBorderline:
		// Borderline (0.5 - 0.7)
		return borderlineMin + getRandomFloat()*borderlineRange
	case caseFail:
		// Failures (0.1 - 0.5) - rare
		return failMin + getRandomFloat()*failRange
	default:
		return passMin + getRandomFloat()*passRange
	}
}

// reviewNote builds a short note for a seeded moderation decision.
func reviewNote(status string, at time.Time) string {
	return "seeded " + status + " at " + at.UTC().Format(time.RFC3339)
}
