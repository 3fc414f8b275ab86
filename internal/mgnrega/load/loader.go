package load

import (
	"context"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/store"
)

type Result struct {
	Attempted int
	Stored    int
	Failed    int
	LastError error
}

// LoadRecords upserts every record, continuing past individual failures.
func LoadRecords(ctx context.Context, records []types.Record, storage *store.Storage, appLogger *logger.Logger) Result {
	const component = "Loader"
	var res Result

	if storage == nil || storage.Records == nil {
		return res
	}

	appLogger.Debug(component, "Starting load: driver=%s records=%d", storage.Driver, len(records))

	for i := range records {
		record := records[i]
		res.Attempted++
		if err := storage.Records.Upsert(ctx, &record); err != nil {
			res.Failed++
			res.LastError = err
			appLogger.Error(component, "Failed to upsert record: district=%s month=%d year=%d err=%v", record.District, record.Month, record.Year, err)
			continue
		}
		res.Stored++
	}

	appLogger.Info(component, "Load completed: driver=%s stored=%d failed=%d", storage.Driver, res.Stored, res.Failed)
	return res
}

// PersistBestEffort attempts the load and discards any failure, panics included.
// Callers never see persistence errors through this path.
func PersistBestEffort(ctx context.Context, records []types.Record, storage *store.Storage, appLogger *logger.Logger) {
	const component = "Loader"
	defer func() {
		if r := recover(); r != nil {
			appLogger.Error(component, "Recovered from panic during best-effort persist: %v", r)
		}
	}()

	res := LoadRecords(ctx, records, storage, appLogger)
	if res.Failed > 0 {
		appLogger.Warn(component, "Best-effort persist incomplete, ignoring: failed=%d of %d lastErr=%v", res.Failed, res.Attempted, res.LastError)
	}
}
