package mgnrega

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/files"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/generator"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "district,month,year,person_days,households,funds_spent,works_completed,average_wage,women_participation\n"

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type downStore struct{}

func (downStore) Upsert(context.Context, *types.Record) error {
	return fmt.Errorf("%w: connection refused", types.ErrPersistenceUnavailable)
}
func (downStore) QueryAll(context.Context, int) ([]types.Record, error) {
	return nil, fmt.Errorf("%w: connection refused", types.ErrPersistenceUnavailable)
}
func (downStore) QueryByDistrict(context.Context, string) ([]types.Record, error) {
	return nil, fmt.Errorf("%w: connection refused", types.ErrPersistenceUnavailable)
}
func (downStore) DistinctDistricts(context.Context) ([]string, error) {
	return nil, fmt.Errorf("%w: connection refused", types.ErrPersistenceUnavailable)
}

type countingStore struct {
	*store.MemoryStore
	upserts int
}

func (c *countingStore) Upsert(ctx context.Context, r *types.Record) error {
	c.upserts++
	return c.MemoryStore.Upsert(ctx, r)
}

type panicTier struct{}

func (panicTier) Name() string         { return "panic" }
func (panicTier) Source() types.Source { return "panic" }
func (panicTier) Attempt(context.Context, types.Query) (Result, bool) {
	panic("tier exploded")
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mgnrega.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func missingCSV(t *testing.T) *files.CSVCache {
	return files.NewCSVCache(filepath.Join(t.TempDir(), "absent.csv"), files.DefaultFreshness, files.WithClock(clock))
}

func unconfiguredRemote() *downloader.Client {
	return downloader.NewClient(downloader.Config{}, logger.Discard())
}

func TestGetAllData_AllSourcesDownFallsBackToGenerated(t *testing.T) {
	o := NewOrchestrator(Options{
		Remote:    unconfiguredRemote(),
		CSV:       missingCSV(t),
		Storage:   &store.Storage{Records: downStore{}, Source: types.SourceMongo, Driver: store.DriverMongo},
		Generator: generator.New(generator.WithSeed(7), generator.WithClock(clock)),
		Logger:    logger.Discard(),
		Clock:     clock,
	})

	env, err := o.GetAllData(context.Background())
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Equal(t, types.SourceGenerated, env.Source)
	assert.Equal(t, 72, env.Count)
	assert.Len(t, env.Data, 72)
	assert.Equal(t, NoteGenerated, env.Note)
	assert.Equal(t, "2025-03-10T12:00:00.000Z", env.Timestamp)
	for _, r := range env.Data {
		assert.Positive(t, r.PersonDays)
		assert.Positive(t, r.Households)
		assert.Positive(t, r.FundsSpent)
		assert.Positive(t, r.WorksCompleted)
		assert.Positive(t, r.AverageWage)
		assert.Positive(t, r.WomenParticipation)
	}
}

func TestGetDistricts_FromCSV(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"North Goa,1,2024,100,10,1000,1,300,50\n"+
		"North Goa,2,2024,110,11,1100,2,300,51\n"+
		"North Goa,3,2024,120,12,1200,3,300,52\n")

	o := NewOrchestrator(Options{
		CSV:     files.NewCSVCache(path, files.DefaultFreshness, files.WithClock(clock)),
		Storage: store.NewMemoryStorage(),
		Logger:  logger.Discard(),
		Clock:   clock,
	})

	env, err := o.GetDistricts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.SourceCSV, env.Source)
	assert.Equal(t, []string{"North Goa"}, env.Districts)
	assert.Equal(t, 1, env.Count)
	assert.Empty(t, env.Note)
}

func TestGetAllData_RemoteNormalizesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[
			{"district_name":"North Goa","month":"1","year":"2024","persondays_generated":"1500","total_households":"90"},
			{"district_name":"North Goa","month":"2","year":"2024","persondays_generated":1600},
			{"district_name":"South Goa","month":"Jan","fin_year":"2023-2024","persondays_generated":"1,700","total_expenditure":"45000.5"}
		]}`))
	}))
	defer srv.Close()

	remote := downloader.NewClient(downloader.Config{BaseURL: srv.URL, ResourceID: "res", APIKey: "key"}, logger.Discard())
	storage := store.NewMemoryStorage()

	o := NewOrchestrator(Options{
		Remote:  remote,
		CSV:     missingCSV(t),
		Storage: storage,
		Logger:  logger.Discard(),
		Clock:   clock,
	})

	env, err := o.GetAllData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.SourceAPI, env.Source)
	require.Equal(t, 3, env.Count)
	assert.Equal(t, int64(1500), env.Data[0].PersonDays)
	assert.Equal(t, int64(90), env.Data[0].Households)
	assert.Equal(t, int64(1600), env.Data[1].PersonDays)
	assert.Equal(t, int64(1700), env.Data[2].PersonDays)
	assert.Equal(t, 2023, env.Data[2].Year)
	assert.Equal(t, 1, env.Data[2].Month)
	assert.InDelta(t, 45000.5, env.Data[2].FundsSpent, 1e-9)
	for _, r := range env.Data {
		assert.Nil(t, r.Raw)
	}

	mem := storage.Records.(*store.MemoryStore)
	assert.Equal(t, 3, mem.Len())

	// The persisted copies keep the raw payload.
	stored, err := storage.Records.QueryByDistrict(context.Background(), "south")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "2023-2024", stored[0].Raw["fin_year"])
}

func TestGetAllData_MemoizedRemoteIsNotPersistedAgain(t *testing.T) {
	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Write([]byte(`{"records":[
			{"district_name":"North Goa","month":"1","year":"2024"},
			{"district_name":"North Goa","month":"2","year":"2024"},
			{"district_name":"South Goa","month":"1","year":"2024"}
		]}`))
	}))
	defer srv.Close()

	counter := &countingStore{MemoryStore: store.NewMemoryStore()}
	o := NewOrchestrator(Options{
		Remote:  downloader.NewClient(downloader.Config{BaseURL: srv.URL, ResourceID: "res", APIKey: "key", CacheTTL: time.Minute}, logger.Discard()),
		CSV:     missingCSV(t),
		Storage: &store.Storage{Records: counter, Source: types.SourceMemory, Driver: store.DriverMemory},
		Logger:  logger.Discard(),
		Clock:   clock,
	})

	for i := 0; i < 3; i++ {
		env, err := o.GetAllData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.SourceAPI, env.Source)
		assert.Equal(t, 3, env.Count)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.Equal(t, 3, counter.upserts)
	assert.Equal(t, 3, counter.Len())
}

func TestGetAllData_RemoteFailureFallsThroughToCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	path := writeCSV(t, csvHeader+"South Goa,4,2024,100,10,1000,1,300,50\n")
	o := NewOrchestrator(Options{
		Remote: downloader.NewClient(downloader.Config{BaseURL: srv.URL, ResourceID: "res", APIKey: "key"}, logger.Discard()),
		CSV:    files.NewCSVCache(path, files.DefaultFreshness, files.WithClock(clock)),
		Logger: logger.Discard(),
		Clock:  clock,
	})

	env, err := o.GetAllData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.SourceCSV, env.Source)
	assert.Equal(t, 1, env.Count)
}

func TestGetDistrictData_MissingParameter(t *testing.T) {
	o := NewOrchestrator(Options{Logger: logger.Discard(), Clock: clock})

	for _, name := range []string{"", "   "} {
		_, err := o.GetDistrictData(context.Background(), name)
		assert.ErrorIs(t, err, types.ErrMissingParameter)
		assert.Equal(t, types.KindMissingParameter, types.KindOf(err))
	}
}

func TestGetDistrictData_SubstringMatchAcrossTiers(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"North Goa,1,2024,100,10,1000,1,300,50\n"+
		"North Goa,2,2024,110,11,1100,2,300,51\n")

	storage := store.NewMemoryStorage()
	require.NoError(t, storage.Records.Upsert(context.Background(), &types.Record{District: "South Goa", Month: 5, Year: 2023, PersonDays: 10}))

	o := NewOrchestrator(Options{
		CSV:       files.NewCSVCache(path, files.DefaultFreshness, files.WithClock(clock)),
		Storage:   storage,
		Generator: generator.New(generator.WithSeed(1), generator.WithClock(clock)),
		Logger:    logger.Discard(),
		Clock:     clock,
	})
	ctx := context.Background()

	env, err := o.GetDistrictData(ctx, "north")
	require.NoError(t, err)
	assert.Equal(t, types.SourceCSV, env.Source)
	assert.Equal(t, 2, env.Count)

	// CSV has no match, so the store answers.
	env, err = o.GetDistrictData(ctx, "SOUTH")
	require.NoError(t, err)
	assert.Equal(t, types.SourceMemory, env.Source)
	assert.Equal(t, NoteStoreFallback, env.Note)
	require.Equal(t, 1, env.Count)
	assert.Equal(t, "South Goa", env.Data[0].District)

	// Nobody knows this district: generated data under the requested name.
	env, err = o.GetDistrictData(ctx, "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, types.SourceGenerated, env.Source)
	assert.Equal(t, 36, env.Count)
	for _, r := range env.Data {
		assert.Equal(t, "Atlantis", r.District)
	}
}

func TestStoreTier_DropsRawPayload(t *testing.T) {
	storage := store.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.Records.Upsert(ctx, &types.Record{
		District: "North Goa", Month: 4, Year: 2024, PersonDays: 5,
		Raw: types.RawRecord{"api_key_echo": "secret"},
	}))

	o := NewOrchestrator(Options{CSV: missingCSV(t), Storage: storage, Logger: logger.Discard(), Clock: clock})

	all, err := o.GetAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.SourceMemory, all.Source)

	one, err := o.GetDistrictData(ctx, "north")
	require.NoError(t, err)
	assert.Equal(t, types.SourceMemory, one.Source)

	for _, r := range append(all.Data, one.Data...) {
		assert.Nil(t, r.Raw)
	}

	// The stored copy is untouched.
	stored, err := storage.Records.QueryAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "secret", stored[0].Raw["api_key_echo"])
}

func TestGetDistricts_StoreFallbackExcludesUnknown(t *testing.T) {
	storage := store.NewMemoryStorage()
	ctx := context.Background()
	for _, d := range []string{"South Goa", types.UnknownDistrict, "North Goa"} {
		require.NoError(t, storage.Records.Upsert(ctx, &types.Record{District: d, Month: 1, Year: 2024}))
	}

	o := NewOrchestrator(Options{CSV: missingCSV(t), Storage: storage, Logger: logger.Discard(), Clock: clock})

	env, err := o.GetDistricts(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.SourceMemory, env.Source)
	assert.Equal(t, []string{"North Goa", "South Goa"}, env.Districts)
	assert.Equal(t, 2, env.Count)
}

func TestGetDistricts_GeneratedWhenNothingElse(t *testing.T) {
	o := NewOrchestrator(Options{CSV: missingCSV(t), Logger: logger.Discard(), Clock: clock})

	env, err := o.GetDistricts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.SourceGenerated, env.Source)
	assert.Equal(t, []string{"North Goa", "South Goa"}, env.Districts)
}

func TestResolve_PanickingTierIsSkipped(t *testing.T) {
	gen := &generatorTier{gen: generator.New(generator.WithSeed(3), generator.WithClock(clock))}
	o := NewWithTiers([]Tier{panicTier{}, gen}, nil, logger.Discard(), clock)

	env, err := o.GetAllData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.SourceGenerated, env.Source)
}

func TestResolve_NoTiers(t *testing.T) {
	o := NewWithTiers(nil, nil, logger.Discard(), clock)

	_, err := o.GetAllData(context.Background())
	assert.ErrorIs(t, err, ErrNoTierAnswered)
}

func TestClearCache_ForcesReread(t *testing.T) {
	path := writeCSV(t, csvHeader+"North Goa,1,2024,100,10,1000,1,300,50\n")
	o := NewOrchestrator(Options{
		CSV:    files.NewCSVCache(path, files.DefaultFreshness, files.WithClock(clock)),
		Logger: logger.Discard(),
		Clock:  clock,
	})
	ctx := context.Background()

	env, err := o.GetAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Count)

	require.NoError(t, os.WriteFile(path, []byte(csvHeader+
		"North Goa,1,2024,100,10,1000,1,300,50\n"+
		"South Goa,1,2024,100,10,1000,1,300,50\n"), 0o600))

	env, err = o.GetAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Count, "served from memory inside the freshness window")

	o.ClearCache()
	o.ClearCache()

	env, err = o.GetAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, env.Count)
}

func TestTierNames(t *testing.T) {
	o := NewOrchestrator(Options{
		Remote:  unconfiguredRemote(),
		CSV:     missingCSV(t),
		Storage: store.NewMemoryStorage(),
		Logger:  logger.Discard(),
	})
	assert.Equal(t, []string{"remote", "csv", "store", "generator"}, o.TierNames())

	bare := NewOrchestrator(Options{})
	assert.Equal(t, []string{"generator"}, bare.TierNames())
}

func TestFilterByDistrict(t *testing.T) {
	records := []types.Record{{District: "North Goa"}, {District: "South Goa"}, {District: "Unknown"}}

	assert.Len(t, FilterByDistrict(records, "goa"), 2)
	assert.Len(t, FilterByDistrict(records, " north "), 1)
	assert.Empty(t, FilterByDistrict(records, "panaji"))
}
