package store

import (
	"context"
	"sort"
	"strings"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxQueryAll bounds the size of an unfiltered read.
const MaxQueryAll = 1000

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// RecordStore persists records keyed by (district, month, year).
// Every error it returns wraps types.ErrPersistenceUnavailable.
type RecordStore interface {
	Upsert(ctx context.Context, record *types.Record) error
	// QueryAll returns at most limit records, newest (year, month) first.
	QueryAll(ctx context.Context, limit int) ([]types.Record, error)
	// QueryByDistrict matches district as a case-insensitive substring.
	QueryByDistrict(ctx context.Context, district string) ([]types.Record, error)
	DistinctDistricts(ctx context.Context) ([]string, error)
}

type Storage struct {
	Records RecordStore
	Source  types.Source
	Driver  string
}

func NewMongoStorage(db *mongo.Database, collection string) *Storage {
	return &Storage{
		Records: NewMongoStore(db.Collection(collection)),
		Source:  types.SourceMongo,
		Driver:  DriverMongo,
	}
}

func NewPostgresStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Records: &PostgresStore{db: db},
		Source:  types.SourcePostgres,
		Driver:  DriverPostgres,
	}
}

func NewMemoryStorage() *Storage {
	return &Storage{
		Records: NewMemoryStore(),
		Source:  types.SourceMemory,
		Driver:  DriverMemory,
	}
}

// SortByRecency orders records year desc, month desc, district asc.
func SortByRecency(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.District < b.District
	})
}

// CleanDistricts dedupes, drops blanks and "Unknown", and sorts.
func CleanDistricts(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || n == types.UnknownDistrict {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
