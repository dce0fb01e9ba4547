package seedtool

import (
	"context"
	"fmt"
	"log"
)

// fetchDashboard retrieves the analytics dashboard.
func fetchDashboard(ctx context.Context, config *Config) (*Dashboard, error) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/analytics"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("dashboard request failed with status: %d", resp.StatusCode)
	}

	var dashboard Dashboard
	if err := unmarshalJSON(body, &dashboard); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard: %w", err)
	}
	return &dashboard, nil
}

// verifyDashboard checks the dashboard counters against what the seed
// run wrote. The instance may hold data from earlier runs, so totals
// are checked as lower bounds while structural invariants are exact.
func verifyDashboard(ctx context.Context, config *Config, dashboard *Dashboard, stats *Stats) error {
	log.Println("Verifying dashboard...")

	if dashboard.TotalAthletes < stats.AthletesCreated {
		return fmt.Errorf("dashboard reports %d athletes, seed created %d",
			dashboard.TotalAthletes, stats.AthletesCreated)
	}
	if dashboard.TotalVideos < stats.VideosSubmitted {
		return fmt.Errorf("dashboard reports %d videos, seed submitted %d",
			dashboard.TotalVideos, stats.VideosSubmitted)
	}
	if dashboard.VerifiedTests+dashboard.PendingReview > dashboard.TotalVideos {
		return fmt.Errorf("dashboard counters inconsistent: verified %d + pending %d > total %d",
			dashboard.VerifiedTests, dashboard.PendingReview, dashboard.TotalVideos)
	}

	sum := 0
	for _, row := range dashboard.TestDistribution {
		sum += row.Count
	}
	if sum != dashboard.TotalVideos {
		return fmt.Errorf("test distribution sums to %d, dashboard reports %d videos",
			sum, dashboard.TotalVideos)
	}

	if err := verifyDistribution(dashboard.TestDistribution); err != nil {
		return err
	}
	if err := verifyPerformanceData(dashboard.PerformanceData); err != nil {
		return err
	}

	displayDashboard(dashboard, config.Verbose)

	log.Println("Dashboard verification completed")
	return nil
}

// verifyDistribution checks the test distribution ordering: counts
// descending, ties broken by test type ascending.
func verifyDistribution(distribution []TypeCount) error {
	for i := 1; i < len(distribution); i++ {
		prev, cur := distribution[i-1], distribution[i]
		if cur.Count > prev.Count {
			return fmt.Errorf("test distribution not sorted: %q (%d) after %q (%d)",
				cur.TestType, cur.Count, prev.TestType, prev.Count)
		}
		if cur.Count == prev.Count && cur.TestType < prev.TestType {
			return fmt.Errorf("test distribution tie not ordered: %q after %q",
				cur.TestType, prev.TestType)
		}
	}
	return nil
}

// verifyPerformanceData checks that day buckets are ascending by date
// and every bucket is internally consistent.
func verifyPerformanceData(buckets []DayBucket) error {
	for i, b := range buckets {
		if b.Verified > b.Tests {
			return fmt.Errorf("day %s has %d verified out of %d tests", b.Date, b.Verified, b.Tests)
		}
		if i > 0 && b.Date <= buckets[i-1].Date {
			return fmt.Errorf("performance data not ascending: %s after %s", b.Date, buckets[i-1].Date)
		}
	}
	return nil
}

// displayDashboard prints a summary of the retrieved dashboard.
func displayDashboard(dashboard *Dashboard, verbose bool) {
	log.Printf(`Dashboard summary:
   Athletes: %d
   Videos: %d
   Verified: %d
   Pending review: %d
`, dashboard.TotalAthletes, dashboard.TotalVideos, dashboard.VerifiedTests, dashboard.PendingReview)

	log.Printf("Test distribution (%d types):", len(dashboard.TestDistribution))
	for i, row := range dashboard.TestDistribution {
		log.Printf("   %d. %s - %d submissions", i+1, row.TestType, row.Count)
	}

	if verbose {
		log.Printf("Performance data (%d days):", len(dashboard.PerformanceData))
		for _, b := range dashboard.PerformanceData {
			log.Printf("   %s - tests: %d, verified: %d", b.Date, b.Tests, b.Verified)
		}
	}
}
