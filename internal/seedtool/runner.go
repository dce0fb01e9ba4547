package seedtool

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// Run executes the complete seed pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting podium seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("athletes", config.NumAthletes),
		logger.Int("videosPerAthlete", config.VideosPerAth),
		logger.Int("reviewPercent", config.ReviewPercent),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Register athletes
	athletes, err := generateAthletes(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("athlete generation failed: %w", err)
	}
	athleteIDs, err := submitAthletes(ctx, config, athletes, stats)
	if err != nil {
		return fmt.Errorf("athlete registration failed: %w", err)
	}

	// Step 3: Submit videos
	videos, err := generateVideos(ctx, config, athleteIDs, stats)
	if err != nil {
		return fmt.Errorf("video generation failed: %w", err)
	}
	videoIDs, err := submitVideos(ctx, config, videos, stats)
	if err != nil {
		return fmt.Errorf("video submission failed: %w", err)
	}

	// Step 4: Apply moderation decisions
	if err := reviewVideos(ctx, config, videoIDs, stats); err != nil {
		return fmt.Errorf("moderation decisions failed: %w", err)
	}

	// Step 5: Wait for the activity feed to drain
	logger.Get().Info(ctx, "waiting for activity recording to settle")
	time.Sleep(ActivityDrainDelay)

	// Step 6: Fetch the dashboard
	dashboard, err := fetchDashboard(ctx, config)
	if err != nil {
		return fmt.Errorf("dashboard retrieval failed: %w", err)
	}

	// Step 7: Verify the dashboard against what was written
	if err := verifyDashboard(ctx, config, dashboard, stats); err != nil {
		return fmt.Errorf("dashboard verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final seed statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, videosPerSecond float64

	attempted := stats.VideosSubmitted + stats.VideosDuplicate + stats.VideosFailed
	if attempted > 0 {
		acceptRate = float64(stats.VideosSubmitted) / float64(attempted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		videosPerSecond = float64(attempted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("athletesGenerated", stats.AthletesGenerated),
		logger.Int("athletesCreated", stats.AthletesCreated),
		logger.Int("athletesDuplicate", stats.AthletesDuplicate),
		logger.Int("athletesFailed", stats.AthletesFailed),
		logger.Int("videosGenerated", stats.VideosGenerated),
		logger.Int("videosAccepted", stats.VideosSubmitted),
		logger.Int("videosDuplicate", stats.VideosDuplicate),
		logger.Int("videosFailed", stats.VideosFailed),
		logger.Int("reviewsApplied", stats.ReviewsApplied),
		logger.Int("reviewsConflicted", stats.ReviewsConflicted),
		logger.Int("reviewsFailed", stats.ReviewsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("videosPerSecond", videosPerSecond))
}
