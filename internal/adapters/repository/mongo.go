package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Collection names.
const (
	athletesCollection   = "athletes"
	videosCollection     = "videos"
	activitiesCollection = "activities"
)

// MongoStore is the document-store-backed Store implementation.
//
// The review update is a single FindOneAndUpdate conditioned on the
// status still being pending, so two concurrent decisions can never
// both succeed; the loser reads the record back and reports
// ErrAlreadyReviewed.
type MongoStore struct {
	client     *mongo.Client
	athletes   *mongo.Collection
	videos     *mongo.Collection
	activities *mongo.Collection

	connectTimeout time.Duration
}

// NewMongoStore connects to MongoDB, verifies the connection, and
// ensures the secondary indexes the listing and search contracts need.
func NewMongoStore(ctx context.Context, uri, database string, opts ...MongoOption) (*MongoStore, error) {
	s := &MongoStore{
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	db := client.Database(database)
	s.client = client
	s.athletes = db.Collection(athletesCollection)
	s.videos = db.Collection(videosCollection)
	s.activities = db.Collection(activitiesCollection)

	if err := s.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureIndexes creates the indexes backing uniqueness, filtering, and
// feed ordering.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	athleteIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	videoIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "athleteId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "submittedAt", Value: -1}}},
	}
	activityIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}

	if _, err := s.athletes.Indexes().CreateMany(ctx, athleteIndexes); err != nil {
		return fmt.Errorf("%w: athlete indexes: %v", ErrUnavailable, err)
	}
	if _, err := s.videos.Indexes().CreateMany(ctx, videoIndexes); err != nil {
		return fmt.Errorf("%w: video indexes: %v", ErrUnavailable, err)
	}
	if _, err := s.activities.Indexes().CreateMany(ctx, activityIndexes); err != nil {
		return fmt.Errorf("%w: activity indexes: %v", ErrUnavailable, err)
	}
	return nil
}

// unavailable wraps a driver error and counts it against op.
func unavailable(op string, err error) error {
	metrics.RecordStoreError(op)
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// InsertAthlete persists a new athlete, enforcing email uniqueness
// through the unique index.
func (s *MongoStore) InsertAthlete(ctx context.Context, athlete model.Athlete) error {
	defer observe("insert_athlete", time.Now())

	if _, err := s.athletes.InsertOne(ctx, athlete); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return unavailable("insert_athlete", err)
	}
	return nil
}

// GetAthlete returns the athlete with the given id.
func (s *MongoStore) GetAthlete(ctx context.Context, id string) (model.Athlete, error) {
	defer observe("get_athlete", time.Now())

	var athlete model.Athlete
	err := s.athletes.FindOne(ctx, bson.M{"_id": id}).Decode(&athlete)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Athlete{}, ErrNotFound
	}
	if err != nil {
		return model.Athlete{}, unavailable("get_athlete", err)
	}
	return athlete, nil
}

// SearchAthletes lists athletes matching term, newest first.
func (s *MongoStore) SearchAthletes(ctx context.Context, term string, page Page) ([]model.Athlete, int, error) {
	defer observe("search_athletes", time.Now())

	if err := page.validate(); err != nil {
		return nil, 0, err
	}

	filter := bson.M{}
	if term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"email": re},
			bson.M{"location": re},
			bson.M{"state": re},
		}
	}

	total, err := s.athletes.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, unavailable("search_athletes", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Size))
	cursor, err := s.athletes.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, unavailable("search_athletes", err)
	}

	athletes := []model.Athlete{}
	if err := cursor.All(ctx, &athletes); err != nil {
		return nil, 0, unavailable("search_athletes", err)
	}
	return athletes, int(total), nil
}

// CountAthletes returns the total number of athletes.
func (s *MongoStore) CountAthletes(ctx context.Context) (int, error) {
	defer observe("count_athletes", time.Now())

	total, err := s.athletes.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, unavailable("count_athletes", err)
	}
	return int(total), nil
}

// IncrementTestsCompleted bumps an athlete's completed-test counter.
func (s *MongoStore) IncrementTestsCompleted(ctx context.Context, id string) error {
	defer observe("increment_tests_completed", time.Now())

	res, err := s.athletes.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"testsCompleted": 1}},
	)
	if err != nil {
		return unavailable("increment_tests_completed", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertVideo persists a new submission.
func (s *MongoStore) InsertVideo(ctx context.Context, video model.Video) error {
	defer observe("insert_video", time.Now())

	if _, err := s.videos.InsertOne(ctx, video); err != nil {
		return unavailable("insert_video", err)
	}
	return nil
}

// GetVideo returns the submission with the given id.
func (s *MongoStore) GetVideo(ctx context.Context, id string) (model.Video, error) {
	defer observe("get_video", time.Now())

	var video model.Video
	err := s.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Video{}, ErrNotFound
	}
	if err != nil {
		return model.Video{}, unavailable("get_video", err)
	}
	return video, nil
}

// videoFilterQuery translates a VideoFilter to a document filter.
func videoFilterQuery(filter VideoFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AthleteID != "" {
		query["athleteId"] = filter.AthleteID
	}
	return query
}

// ListVideos lists submissions matching the filter, newest first.
func (s *MongoStore) ListVideos(ctx context.Context, filter VideoFilter, page Page) ([]model.Video, int, error) {
	defer observe("list_videos", time.Now())

	if err := page.validate(); err != nil {
		return nil, 0, err
	}

	query := videoFilterQuery(filter)
	total, err := s.videos.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, unavailable("list_videos", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Size))
	cursor, err := s.videos.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, unavailable("list_videos", err)
	}

	videos := []model.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, unavailable("list_videos", err)
	}
	return videos, int(total), nil
}

// CountVideos counts submissions matching the filter.
func (s *MongoStore) CountVideos(ctx context.Context, filter VideoFilter) (int, error) {
	defer observe("count_videos", time.Now())

	total, err := s.videos.CountDocuments(ctx, videoFilterQuery(filter))
	if err != nil {
		return 0, unavailable("count_videos", err)
	}
	return int(total), nil
}

// ApplyReview moves a pending submission to its terminal state with a
// conditional update on the current status.
func (s *MongoStore) ApplyReview(ctx context.Context, id string, review model.Review) (model.Video, error) {
	defer observe("apply_review", time.Now())

	update := bson.M{"$set": bson.M{
		"status":        review.Decision,
		"reviewerId":    review.ReviewerID,
		"reviewerNotes": review.Notes,
		"reviewedAt":    review.ReviewedAt,
	}}

	var video model.Video
	err := s.videos.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": model.StatusPending},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err == nil {
		return video, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return model.Video{}, unavailable("apply_review", err)
	}

	// No pending document matched: either the id is unknown or another
	// decision already won the conditional update.
	exists, err := s.videos.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return model.Video{}, unavailable("apply_review", err)
	}
	if exists == 0 {
		return model.Video{}, ErrNotFound
	}
	return model.Video{}, ErrAlreadyReviewed
}

// ListVideosSince returns all submissions with submittedAt >= since.
func (s *MongoStore) ListVideosSince(ctx context.Context, since time.Time) ([]model.Video, error) {
	defer observe("list_videos_since", time.Now())

	cursor, err := s.videos.Find(ctx, bson.M{"submittedAt": bson.M{"$gte": since}})
	if err != nil {
		return nil, unavailable("list_videos_since", err)
	}

	videos := []model.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, unavailable("list_videos_since", err)
	}
	return videos, nil
}

// TestTypeCounts groups the all-time submission count per test type
// with a native aggregation.
func (s *MongoStore) TestTypeCounts(ctx context.Context) (map[string]int, error) {
	defer observe("test_type_counts", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$testType"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, unavailable("test_type_counts", err)
	}

	var rows []struct {
		TestType string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, unavailable("test_type_counts", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TestType] = row.Count
	}
	return counts, nil
}

// AppendActivity writes one feed entry.
func (s *MongoStore) AppendActivity(ctx context.Context, activity model.Activity) error {
	defer observe("append_activity", time.Now())

	if _, err := s.activities.InsertOne(ctx, activity); err != nil {
		return unavailable("append_activity", err)
	}
	return nil
}

// RecentActivities returns up to limit entries, newest first.
func (s *MongoStore) RecentActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	defer observe("recent_activities", time.Now())

	if limit < 0 {
		limit = 0
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.activities.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, unavailable("recent_activities", err)
	}

	activities := []model.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, unavailable("recent_activities", err)
	}
	return activities, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%w: disconnect: %v", ErrUnavailable, err)
	}
	return nil
}
