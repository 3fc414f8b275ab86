package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, now: time.Now}
}

var recencySort = bson.D{
	{Key: "year", Value: -1},
	{Key: "month", Value: -1},
	{Key: "district", Value: 1},
}

// EnsureIndexes creates the unique natural-key index the upsert relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "district", Value: 1},
			{Key: "month", Value: 1},
			{Key: "year", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("district_month_year"),
	})
	if err != nil {
		return fmt.Errorf("%w: create index: %v", types.ErrPersistenceUnavailable, err)
	}
	return nil
}

func keyFilter(record *types.Record) bson.M {
	return bson.M{
		"district": record.District,
		"month":    record.Month,
		"year":     record.Year,
	}
}

// upsertUpdate replaces every payload field; createdAt is only written on insert.
func upsertUpdate(record *types.Record, now time.Time) bson.M {
	set := bson.M{
		"district":            record.District,
		"month":               record.Month,
		"year":                record.Year,
		"person_days":         record.PersonDays,
		"households":          record.Households,
		"funds_spent":         record.FundsSpent,
		"works_completed":     record.WorksCompleted,
		"average_wage":        record.AverageWage,
		"women_participation": record.WomenParticipation,
		"raw":                 record.Raw,
		"updatedAt":           now,
	}
	if !record.FetchedAt.IsZero() {
		set["fetched_at"] = record.FetchedAt
	}
	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
}

func districtFilter(district string) bson.M {
	return bson.M{
		"district": bson.M{
			"$regex":   regexp.QuoteMeta(district),
			"$options": "i",
		},
	}
}

func (s *MongoStore) Upsert(ctx context.Context, record *types.Record) error {
	now := s.now()
	_, err := s.coll.UpdateOne(ctx, keyFilter(record), upsertUpdate(record, now), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: upsert %s %d/%d: %v", types.ErrPersistenceUnavailable, record.District, record.Month, record.Year, err)
	}
	record.UpdatedAt = now
	return nil
}

func (s *MongoStore) QueryAll(ctx context.Context, limit int) ([]types.Record, error) {
	if limit <= 0 || limit > MaxQueryAll {
		limit = MaxQueryAll
	}
	opts := options.Find().SetSort(recencySort).SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoStore) QueryByDistrict(ctx context.Context, district string) ([]types.Record, error) {
	opts := options.Find().SetSort(recencySort)
	return s.find(ctx, districtFilter(district), opts)
}

func (s *MongoStore) DistinctDistricts(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "district", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: distinct districts: %v", types.ErrPersistenceUnavailable, err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	return CleanDistricts(names), nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]types.Record, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %v", types.ErrPersistenceUnavailable, err)
	}
	defer cursor.Close(ctx)

	var records []types.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", types.ErrPersistenceUnavailable, err)
	}
	return records, nil
}
