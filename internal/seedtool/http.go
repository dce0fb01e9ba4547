package seedtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, url, body, nil)
}

// Patch performs a PATCH request with JSON body and extra headers
func (c *HTTPClient) Patch(ctx context.Context, url string, body interface{}, headers map[string]string) (*http.Response, error) {
	return c.send(ctx, http.MethodPatch, url, body, headers)
}

func (c *HTTPClient) send(ctx context.Context, method, url string, body interface{}, headers map[string]string) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitAthletes registers athletes concurrently and returns the IDs
// the service assigned to them.
func submitAthletes(ctx context.Context, config *Config, athletes []AthleteRequest, stats *Stats) ([]string, error) {
	log.Printf("Registering %d athletes with %d workers...", len(athletes), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/athletes"

	var (
		created   int64
		duplicate int64
		failed    int64
		submitted int64
	)

	var mu sync.Mutex
	ids := make([]string, 0, len(athletes))

	athleteChan := make(chan AthleteRequest, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for athlete := range athleteChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				id, result := submitSingleAthlete(ctx, client, url, athlete)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case "created":
					atomic.AddInt64(&created, 1)
					mu.Lock()
					ids = append(ids, id)
					mu.Unlock()
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "failed":
					atomic.AddInt64(&failed, 1)
				}

				if config.Verbose {
					log.Printf("Progress: %d/%d athletes (created: %d, duplicate: %d, failed: %d)",
						atomic.LoadInt64(&submitted), len(athletes),
						atomic.LoadInt64(&created), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&failed))
				}
			}
		}()
	}

	go func() {
		defer close(athleteChan)
		for _, athlete := range athletes {
			select {
			case <-ctx.Done():
				return
			case athleteChan <- athlete:
			}
		}
	}()

	wg.Wait()

	stats.AthletesCreated = int(atomic.LoadInt64(&created))
	stats.AthletesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.AthletesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`Athlete registration completed:
   Created: %d
   Duplicate: %d
   Failed: %d
`, stats.AthletesCreated, stats.AthletesDuplicate, stats.AthletesFailed)

	if len(ids) == 0 {
		return nil, fmt.Errorf("no athletes were registered")
	}
	return ids, nil
}

// submitSingleAthlete registers one athlete and returns the assigned ID
// together with the outcome.
func submitSingleAthlete(ctx context.Context, client *HTTPClient, url string, athlete AthleteRequest) (string, string) {
	resp, err := client.Post(ctx, url, athlete)
	if err != nil {
		return "", "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "", "failed"
	}

	switch resp.StatusCode {
	case StatusCreated:
		var c Created
		if err := unmarshalJSON(body, &c); err != nil || c.ID == "" {
			return "", "failed"
		}
		return c.ID, "created"
	case StatusConflict:
		return "", "duplicate"
	default:
		return "", "failed"
	}
}

// submitVideos posts submissions concurrently and returns the IDs of
// the videos that were accepted.
func submitVideos(ctx context.Context, config *Config, videos []VideoRequest, stats *Stats) ([]string, error) {
	log.Printf("Submitting %d videos with %d workers...", len(videos), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/videos"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	var mu sync.Mutex
	ids := make([]string, 0, len(videos))

	videoChan := make(chan VideoRequest, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for video := range videoChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				id, result := submitSingleVideo(ctx, client, url, video)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case "accepted":
					atomic.AddInt64(&accepted, 1)
					mu.Lock()
					ids = append(ids, id)
					mu.Unlock()
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "failed":
					atomic.AddInt64(&failed, 1)
				}

				if config.Verbose {
					log.Printf("Progress: %d/%d videos (accepted: %d, duplicate: %d, failed: %d)",
						atomic.LoadInt64(&submitted), len(videos),
						atomic.LoadInt64(&accepted), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&failed))
				}
			}
		}()
	}

	go func() {
		defer close(videoChan)
		for _, video := range videos {
			select {
			case <-ctx.Done():
				return
			case videoChan <- video:
			}
		}
	}()

	wg.Wait()

	stats.VideosSubmitted = int(atomic.LoadInt64(&accepted))
	stats.VideosDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.VideosFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`Video submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.VideosSubmitted, stats.VideosDuplicate, stats.VideosFailed)

	return ids, nil
}

// submitSingleVideo posts one submission and returns the assigned video
// ID together with the outcome.
func submitSingleVideo(ctx context.Context, client *HTTPClient, url string, video VideoRequest) (string, string) {
	resp, err := client.Post(ctx, url, video)
	if err != nil {
		return "", "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "", "failed"
	}

	switch resp.StatusCode {
	case StatusCreated:
		var c Created
		if err := unmarshalJSON(body, &c); err != nil || c.ID == "" {
			return "", "failed"
		}
		return c.ID, "accepted"
	case StatusConflict:
		return "", "duplicate"
	default:
		return "", "failed"
	}
}

// reviewVideos applies moderation decisions to a slice of the accepted
// submissions. Roughly two thirds of the decided submissions are
// approved, the rest rejected.
func reviewVideos(ctx context.Context, config *Config, videoIDs []string, stats *Stats) error {
	toReview := len(videoIDs) * config.ReviewPercent / PercentageMultiplier
	if toReview == 0 {
		log.Println("Skipping moderation decisions")
		return nil
	}

	log.Printf("Deciding on %d of %d submissions with %d workers...", toReview, len(videoIDs), config.Workers)

	client := newHTTPClient(config.Timeout)
	reviewer := "seed-reviewer-" + time.Now().UTC().Format("150405")

	var (
		applied    int64
		conflicted int64
		failed     int64
	)

	idChan := make(chan string, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for id := range idChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				status := "approved"
				if pickIndex(3) == 0 {
					status = "rejected"
				}

				url := config.BaseURL + "/videos/" + id + "/status"
				review := ReviewRequest{
					Status: status,
					Notes:  reviewNote(status, time.Now()),
				}
				headers := map[string]string{"X-Reviewer-Id": reviewer}

				resp, err := client.Patch(ctx, url, review, headers)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				_, _ = readResponseBody(resp)

				switch resp.StatusCode {
				case StatusOK:
					atomic.AddInt64(&applied, 1)
				case StatusConflict:
					atomic.AddInt64(&conflicted, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(idChan)
		for _, id := range videoIDs[:toReview] {
			select {
			case <-ctx.Done():
				return
			case idChan <- id:
			}
		}
	}()

	wg.Wait()

	stats.ReviewsApplied = int(atomic.LoadInt64(&applied))
	stats.ReviewsConflicted = int(atomic.LoadInt64(&conflicted))
	stats.ReviewsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`Moderation decisions completed:
   Applied: %d
   Conflicted: %d
   Failed: %d
`, stats.ReviewsApplied, stats.ReviewsConflicted, stats.ReviewsFailed)

	return nil
}
