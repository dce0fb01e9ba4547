// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	activityqueue "github.com/okian/podium/internal/adapters/mq/queue"
	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/analytics"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/verification"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Field limits for incoming payloads.
const (
	maxNameLen  = 200
	maxNotesLen = 2000
	minAge      = 5
	maxAge      = 100
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NewAthlete is the input for registering an athlete.
type NewAthlete struct {
	Name         string
	Email        string
	Age          int
	Gender       model.Gender
	Location     string
	State        string
	PhoneNumber  string
	ProfileImage string
}

// NewSubmission is the input for submitting a fitness-test video.
type NewSubmission struct {
	AthleteID    string
	TestType     string
	VideoURL     string
	ThumbnailURL string
	// SubmissionRef is an optional client-chosen idempotency key. A
	// repeated reference is refused while it stays in the cache.
	SubmissionRef string
	Verification  model.Verification
}

// Decision is the input for reviewing a pending submission.
type Decision struct {
	VideoID    string
	Status     model.Status
	ReviewerID string
	Notes      string
}

// AthleteList is a page of athletes plus pagination totals.
type AthleteList struct {
	Athletes   []model.Athlete
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// VideoList is a page of submissions plus pagination totals.
type VideoList struct {
	Videos     []model.Video
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Service implements the moderation and analytics operations behind the
// HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store         repository.Store
	deduper       dedupe.Deduper
	activityQueue activityqueue.Queue
	recorderPool  *workerpool.Pool

	// Configuration
	recorderWorkers     int
	queueSize           int
	dedupeSize          int
	defaultPageSize     int
	maxPageSize         int
	dashboardWindowDays int
	recentActivityLimit int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store. Required before Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRecorderWorkers sets the number of activity recorder workers.
func WithRecorderWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.recorderWorkers = count
		}
	}
}

// WithQueueSize sets the maximum size of the activity queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission reference cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithPageSizes sets the default and maximum page sizes for list
// operations.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *Service) {
		if defaultSize > 0 && maxSize >= defaultSize {
			s.defaultPageSize = defaultSize
			s.maxPageSize = maxSize
		}
	}
}

// WithDashboardWindow sets the performance chart lookback in days.
func WithDashboardWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.dashboardWindowDays = days
		}
	}
}

// WithRecentActivityLimit caps the dashboard activity feed.
func WithRecentActivityLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.recentActivityLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		recorderWorkers:     runtime.NumCPU() * 2,
		queueSize:           10000,
		dedupeSize:          50000,
		defaultPageSize:     20,
		maxPageSize:         100,
		dashboardWindowDays: 30,
		recentActivityLimit: 20,
		stopCh:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return fmt.Errorf("%w: no store configured", ErrNotStarted)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting moderation service...")

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.activityQueue = activityqueue.NewInMemoryQueue(
		activityqueue.WithCapacity(s.queueSize),
	)

	s.recorderPool = workerpool.NewPool(s.recorderWorkers, s.activityQueue, s.store)
	s.recorderPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "moderation service started",
		logger.Int("recorderWorkers", s.recorderWorkers),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping moderation service...")

	// Closing the queue lets the recorders drain the backlog before the
	// store goes away.
	if s.recorderPool != nil {
		_ = s.recorderPool.Shutdown(ctx)
	}

	if s.store != nil {
		_ = s.store.Close(ctx)
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "moderation service stopped")
}

// CreateAthlete validates and registers a new athlete profile.
func (s *Service) CreateAthlete(ctx context.Context, input NewAthlete) (model.Athlete, error) {
	if err := validateAthlete(input); err != nil {
		metrics.RecordValidationFailure()
		return model.Athlete{}, err
	}

	athlete := model.Athlete{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Age:          input.Age,
		Gender:       input.Gender,
		Location:     strings.TrimSpace(input.Location),
		State:        strings.TrimSpace(input.State),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		ProfileImage: input.ProfileImage,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.InsertAthlete(ctx, athlete); err != nil {
		return model.Athlete{}, err
	}

	metrics.RecordAthleteRegistered()
	s.logger.Info(ctx, "athlete registered",
		logger.String("athleteID", athlete.ID),
		logger.String("state", athlete.State),
	)
	return athlete, nil
}

// ListAthletes returns a page of athletes matching the search term.
func (s *Service) ListAthletes(ctx context.Context, term string, pageNum, pageSize int) (AthleteList, error) {
	page, err := s.normalizePage(pageNum, pageSize)
	if err != nil {
		return AthleteList{}, err
	}

	athletes, total, err := s.store.SearchAthletes(ctx, strings.TrimSpace(term), page)
	if err != nil {
		return AthleteList{}, err
	}

	return AthleteList{
		Athletes:   athletes,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

// GetAthlete returns a single athlete profile.
func (s *Service) GetAthlete(ctx context.Context, id string) (model.Athlete, error) {
	return s.store.GetAthlete(ctx, id)
}

// Submit validates and persists a new video submission in the pending
// state, then records the feed activity asynchronously.
func (s *Service) Submit(ctx context.Context, input NewSubmission) (model.Video, error) {
	metrics.RecordSubmissionReceived()

	if err := validateSubmission(input); err != nil {
		metrics.RecordValidationFailure()
		return model.Video{}, err
	}
	if err := verification.Validate(input.Verification); err != nil {
		metrics.RecordValidationFailure()
		return model.Video{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ref := strings.TrimSpace(input.SubmissionRef)
	if ref != "" && s.deduper.SeenAndRecord(ctx, ref) {
		metrics.RecordSubmissionDuplicate()
		return model.Video{}, fmt.Errorf("%w: %s", ErrDuplicateSubmission, ref)
	}

	athlete, err := s.store.GetAthlete(ctx, input.AthleteID)
	if err != nil {
		s.unrecordRef(ctx, ref)
		return model.Video{}, err
	}

	video := model.Video{
		ID:             uuid.NewString(),
		AthleteID:      athlete.ID,
		TestType:       strings.TrimSpace(input.TestType),
		VideoURL:       strings.TrimSpace(input.VideoURL),
		ThumbnailURL:   strings.TrimSpace(input.ThumbnailURL),
		SubmittedAt:    time.Now().UTC(),
		Status:         model.StatusPending,
		AIVerification: verification.Normalize(input.Verification),
	}

	if err := s.store.InsertVideo(ctx, video); err != nil {
		s.unrecordRef(ctx, ref)
		return model.Video{}, err
	}

	s.recordActivity(ctx, model.Activity{
		Type:        model.ActivityVideoSubmitted,
		Description: fmt.Sprintf("%s submitted a %s video", athlete.Name, video.TestType),
		AthleteID:   athlete.ID,
		VideoID:     video.ID,
	})
	if video.AIVerification.Verified {
		s.recordActivity(ctx, model.Activity{
			Type:        model.ActivityTestVerified,
			Description: fmt.Sprintf("%s test verified for %s", video.TestType, athlete.Name),
			AthleteID:   athlete.ID,
			VideoID:     video.ID,
			Metadata: map[string]any{
				"confidence": video.AIVerification.Confidence,
			},
		})
	}

	s.logger.Info(ctx, "video submitted",
		logger.String("videoID", video.ID),
		logger.String("athleteID", athlete.ID),
		logger.String("testType", video.TestType),
	)
	return video, nil
}

// ListVideos returns a page of submissions matching the filter.
func (s *Service) ListVideos(ctx context.Context, status model.Status, athleteID string, pageNum, pageSize int) (VideoList, error) {
	if status != "" && !status.Valid() {
		metrics.RecordValidationFailure()
		return VideoList{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	page, err := s.normalizePage(pageNum, pageSize)
	if err != nil {
		return VideoList{}, err
	}

	filter := repository.VideoFilter{Status: status, AthleteID: strings.TrimSpace(athleteID)}
	videos, total, err := s.store.ListVideos(ctx, filter, page)
	if err != nil {
		return VideoList{}, err
	}

	return VideoList{
		Videos:     videos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

// GetVideo returns a single submission.
func (s *Service) GetVideo(ctx context.Context, id string) (model.Video, error) {
	return s.store.GetVideo(ctx, id)
}

// Decide moves a pending submission to approved or rejected. At most
// one decision ever succeeds for a given submission.
func (s *Service) Decide(ctx context.Context, input Decision) (model.Video, error) {
	if err := validateDecision(input); err != nil {
		metrics.RecordValidationFailure()
		return model.Video{}, err
	}

	review := model.Review{
		Decision:   input.Status,
		ReviewerID: strings.TrimSpace(input.ReviewerID),
		Notes:      strings.TrimSpace(input.Notes),
		ReviewedAt: time.Now().UTC(),
	}

	video, err := s.store.ApplyReview(ctx, input.VideoID, review)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			metrics.RecordDecisionConflict()
		}
		return model.Video{}, err
	}

	metrics.RecordDecision(string(input.Status))

	// The activity description names the athlete. A missed lookup falls
	// back to the id.
	athleteName := video.AthleteID
	if athlete, err := s.store.GetAthlete(ctx, video.AthleteID); err == nil {
		athleteName = athlete.Name
	} else {
		s.logger.Warn(ctx, "athlete lookup for review activity failed",
			logger.String("athleteID", video.AthleteID),
			logger.Error(err),
		)
	}

	activityType := model.ActivityReviewRejected
	verb := "rejected"
	if input.Status == model.StatusApproved {
		activityType = model.ActivityReviewApproved
		verb = "approved"

		// The profile counter is advisory. A failed increment is logged
		// and the decision stands.
		if err := s.store.IncrementTestsCompleted(ctx, video.AthleteID); err != nil {
			s.logger.Warn(ctx, "tests completed counter not updated",
				logger.String("athleteID", video.AthleteID),
				logger.Error(err),
			)
		}
	}

	s.recordActivity(ctx, model.Activity{
		Type:        activityType,
		Description: fmt.Sprintf("%s's %s submission %s by %s", athleteName, video.TestType, verb, review.ReviewerID),
		AthleteID:   video.AthleteID,
		VideoID:     video.ID,
		Metadata: map[string]any{
			"reviewerId": review.ReviewerID,
		},
	})

	s.logger.Info(ctx, "submission reviewed",
		logger.String("videoID", video.ID),
		logger.String("decision", string(input.Status)),
		logger.String("reviewerID", review.ReviewerID),
	)
	return video, nil
}

// Dashboard assembles the aggregated moderation dashboard from the
// current store contents. Non-positive windowDays and recentLimit fall
// back to the configured defaults.
func (s *Service) Dashboard(ctx context.Context, windowDays, recentLimit int) (analytics.Dashboard, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDashboardBuildDuration(float64(time.Since(start).Milliseconds()))
	}()

	if windowDays <= 0 {
		windowDays = s.dashboardWindowDays
	}
	if recentLimit <= 0 {
		recentLimit = s.recentActivityLimit
	}

	totalAthletes, err := s.store.CountAthletes(ctx)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	totalVideos, err := s.store.CountVideos(ctx, repository.VideoFilter{})
	if err != nil {
		return analytics.Dashboard{}, err
	}
	verified, err := s.store.CountVideos(ctx, repository.VideoFilter{Status: model.StatusApproved})
	if err != nil {
		return analytics.Dashboard{}, err
	}
	pending, err := s.store.CountVideos(ctx, repository.VideoFilter{Status: model.StatusPending})
	if err != nil {
		return analytics.Dashboard{}, err
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	windowed, err := s.store.ListVideosSince(ctx, since)
	if err != nil {
		return analytics.Dashboard{}, err
	}

	counts, err := s.store.TestTypeCounts(ctx)
	if err != nil {
		return analytics.Dashboard{}, err
	}

	recent, err := s.store.RecentActivities(ctx, recentLimit)
	if err != nil {
		return analytics.Dashboard{}, err
	}

	metrics.UpdateTotalAthletes(totalAthletes)
	metrics.UpdateTotalVideos(totalVideos)
	metrics.UpdatePendingReview(pending)

	return analytics.Dashboard{
		TotalAthletes:    totalAthletes,
		TotalVideos:      totalVideos,
		VerifiedTests:    verified,
		PendingReview:    pending,
		PerformanceData:  analytics.BucketByDay(windowed),
		TestDistribution: analytics.RankDistribution(counts),
		RecentActivity:   analytics.ReduceActivities(recent),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"recorderWorkers": s.recorderWorkers,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.activityQueue.Len(context.Background())
		stats["dedupeEntries"] = s.deduper.Size()
	}

	return stats
}

// recordActivity fills in identity fields and hands the entry to the
// recorder queue. A full queue drops the entry with a warning.
func (s *Service) recordActivity(ctx context.Context, activity model.Activity) {
	activity.ID = uuid.NewString()
	activity.Timestamp = time.Now().UTC()

	if !s.activityQueue.Enqueue(ctx, activity) {
		s.logger.Warn(ctx, "activity entry dropped",
			logger.String("type", string(activity.Type)),
			logger.String("videoID", activity.VideoID),
		)
	}
}

func (s *Service) unrecordRef(ctx context.Context, ref string) {
	if ref != "" {
		s.deduper.Unrecord(ctx, ref)
	}
}

// normalizePage applies defaults and caps to raw pagination input.
func (s *Service) normalizePage(number, size int) (repository.Page, error) {
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = s.defaultPageSize
	}
	if number < 0 || size < 0 {
		metrics.RecordValidationFailure()
		return repository.Page{}, fmt.Errorf("%w: page and page size must be positive", ErrValidation)
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	return repository.Page{Number: number, Size: size}, nil
}

func totalPages(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}

func validateAthlete(input NewAthlete) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLen {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	email := strings.TrimSpace(input.Email)
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: email %q is not valid", ErrValidation, email)
	}
	if input.Age < minAge || input.Age > maxAge {
		return fmt.Errorf("%w: age must be between %d and %d", ErrValidation, minAge, maxAge)
	}
	if !input.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrValidation, input.Gender)
	}
	return nil
}

func validateSubmission(input NewSubmission) error {
	if strings.TrimSpace(input.AthleteID) == "" {
		return fmt.Errorf("%w: athleteId is required", ErrValidation)
	}
	if strings.TrimSpace(input.TestType) == "" {
		return fmt.Errorf("%w: testType is required", ErrValidation)
	}
	return nil
}

func validateDecision(input Decision) error {
	if strings.TrimSpace(input.VideoID) == "" {
		return fmt.Errorf("%w: video id is required", ErrValidation)
	}
	if !input.Status.Terminal() {
		return fmt.Errorf("%w: decision must be %s or %s", ErrValidation, model.StatusApproved, model.StatusRejected)
	}
	if strings.TrimSpace(input.ReviewerID) == "" {
		return fmt.Errorf("%w: reviewer id is required", ErrValidation)
	}
	if len(input.Notes) > maxNotesLen {
		return fmt.Errorf("%w: notes too long", ErrValidation)
	}
	return nil
}
