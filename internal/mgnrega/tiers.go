package mgnrega

import (
	"context"
	"strings"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/converter"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/files"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/generator"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/load"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/store"
)

const (
	NoteStoreFallback = "Using cached data because the live API and CSV file are unavailable"
	NoteGenerated     = "All real data sources are unavailable; using generated data"
)

// Result is what a tier produced for a query.
type Result struct {
	Records   []types.Record
	Districts []string
	Note      string
}

// Tier is one candidate source. Attempt reports false when the tier has
// nothing usable for the query; errors stay inside the tier.
type Tier interface {
	Name() string
	Source() types.Source
	Attempt(ctx context.Context, q types.Query) (Result, bool)
}

// shape turns a tier's records into an answer for q. Single-district
// queries need at least one case-insensitive substring match.
func shape(q types.Query, records []types.Record) (Result, bool) {
	switch q.Kind {
	case types.QueryDistricts:
		names := make([]string, 0, len(records))
		for _, r := range records {
			names = append(names, r.District)
		}
		districts := store.CleanDistricts(names)
		return Result{Districts: districts}, len(districts) > 0
	case types.QueryDistrict:
		matched := FilterByDistrict(records, q.District)
		return Result{Records: matched}, len(matched) > 0
	default:
		return Result{Records: records}, len(records) > 0
	}
}

// stripRaw drops the source payload, which is kept for persistence only.
func stripRaw(records []types.Record) {
	for i := range records {
		records[i].Raw = nil
	}
}

// FilterByDistrict returns a new slice of the records whose district contains
// name, ignoring case.
func FilterByDistrict(records []types.Record, name string) []types.Record {
	needle := strings.ToLower(strings.TrimSpace(name))
	out := make([]types.Record, 0)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.District), needle) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// Remote
// =============================================================================

type remoteTier struct {
	client  *downloader.Client
	storage *store.Storage
	log     *logger.Logger
	now     func() time.Time
}

func (t *remoteTier) Name() string         { return "remote" }
func (t *remoteTier) Source() types.Source { return types.SourceAPI }

func (t *remoteTier) Attempt(ctx context.Context, q types.Query) (Result, bool) {
	const component = "Tier-Remote"

	if !t.client.Configured() {
		t.log.Debug(component, "Skipping remote tier: credentials not configured")
		return Result{}, false
	}

	raws, memoized, err := t.client.FetchData(ctx)
	if err != nil {
		t.log.Warn(component, "Remote fetch failed: query=%s err=%v", q.Kind, err)
		return Result{}, false
	}

	records := converter.RawToRecords(raws, t.now())
	if !memoized {
		load.PersistBestEffort(ctx, records, t.storage, t.log)
	}

	stripRaw(records)
	return shape(q, records)
}

// =============================================================================
// CSV
// =============================================================================

type csvTier struct {
	cache *files.CSVCache
	log   *logger.Logger
}

func (t *csvTier) Name() string         { return "csv" }
func (t *csvTier) Source() types.Source { return types.SourceCSV }

func (t *csvTier) Attempt(ctx context.Context, q types.Query) (Result, bool) {
	const component = "Tier-CSV"

	records, err := t.cache.Load()
	if err != nil {
		t.log.Warn(component, "CSV load failed: query=%s path=%s err=%v", q.Kind, t.cache.Path(), err)
		return Result{}, false
	}
	return shape(q, records)
}

// =============================================================================
// Persistent store
// =============================================================================

type storeTier struct {
	storage *store.Storage
	log     *logger.Logger
}

func (t *storeTier) Name() string         { return "store" }
func (t *storeTier) Source() types.Source { return t.storage.Source }

func (t *storeTier) Attempt(ctx context.Context, q types.Query) (Result, bool) {
	const component = "Tier-Store"

	var (
		res Result
		ok  bool
		err error
	)

	switch q.Kind {
	case types.QueryDistricts:
		var names []string
		names, err = t.storage.Records.DistinctDistricts(ctx)
		districts := store.CleanDistricts(names)
		res, ok = Result{Districts: districts}, len(districts) > 0
	case types.QueryDistrict:
		var records []types.Record
		records, err = t.storage.Records.QueryByDistrict(ctx, q.District)
		res, ok = shape(q, records)
	default:
		var records []types.Record
		records, err = t.storage.Records.QueryAll(ctx, store.MaxQueryAll)
		res, ok = shape(q, records)
	}

	if err != nil {
		t.log.Warn(component, "Store read failed: driver=%s query=%s err=%v", t.storage.Driver, q.Kind, err)
		return Result{}, false
	}
	if ok {
		stripRaw(res.Records)
		res.Note = NoteStoreFallback
	}
	return res, ok
}

// =============================================================================
// Generator
// =============================================================================

type generatorTier struct {
	gen *generator.Generator
}

func (t *generatorTier) Name() string         { return "generator" }
func (t *generatorTier) Source() types.Source { return types.SourceGenerated }

func (t *generatorTier) Attempt(ctx context.Context, q types.Query) (Result, bool) {
	switch q.Kind {
	case types.QueryDistricts:
		return Result{Districts: t.gen.Districts(), Note: NoteGenerated}, true
	case types.QueryDistrict:
		return Result{Records: t.gen.GenerateForDistrict(q.District), Note: NoteGenerated}, true
	default:
		return Result{Records: t.gen.GenerateAll(), Note: NoteGenerated}, true
	}
}
