package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/converter"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/files"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/load"
	"github.com/farxc/mgnrega-goa/internal/store"
	"github.com/spf13/cobra"
)

var errNoStore = errors.New("no persistent store configured")

func openStore(appLogger *logger.Logger) (*store.Storage, func(), error) {
	cfg := store.ConfigFromEnv()
	cfg.Driver = storeDriver

	storage, closer, err := store.Open(cfg, appLogger)
	if err != nil {
		closer()
		return nil, nil, err
	}
	if storage == nil {
		return nil, nil, errNoStore
	}
	return storage, closer, nil
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	appLogger := newLogger()
	storage, closer, err := openStore(appLogger)
	if err != nil {
		return err
	}
	defer closer()

	res, err := importCSV(cmd.Context(), csvFile, csvEncoding, storage, appLogger, time.Now())
	if err != nil {
		return err
	}
	return report(cmd, res)
}

func runFetch(cmd *cobra.Command, args []string) error {
	appLogger := newLogger()
	storage, closer, err := openStore(appLogger)
	if err != nil {
		return err
	}
	defer closer()

	client := downloader.NewClient(remoteConfig(), appLogger)
	res, err := fetchRemote(cmd.Context(), client, storage, appLogger, time.Now())
	if err != nil {
		return err
	}
	return report(cmd, res)
}

func importCSV(ctx context.Context, path, encoding string, storage *store.Storage, appLogger *logger.Logger, now time.Time) (load.Result, error) {
	const component = "ImportCSV"

	records, err := files.LoadCSV(path, encoding, now)
	if err != nil {
		return load.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	appLogger.Info(component, "CSV parsed: path=%s records=%d", path, len(records))

	return load.LoadRecords(ctx, records, storage, appLogger), nil
}

func fetchRemote(ctx context.Context, client *downloader.Client, storage *store.Storage, appLogger *logger.Logger, now time.Time) (load.Result, error) {
	const component = "Fetch"

	raws, _, err := client.FetchData(ctx)
	if err != nil {
		return load.Result{}, err
	}
	records := converter.RawToRecords(raws, now)
	appLogger.Info(component, "Remote records normalized: endpoint=%s records=%d", client.Endpoint(), len(records))

	return load.LoadRecords(ctx, records, storage, appLogger), nil
}

func report(cmd *cobra.Command, res load.Result) error {
	fmt.Fprintf(cmd.OutOrStdout(), "attempted=%d stored=%d failed=%d\n", res.Attempted, res.Stored, res.Failed)
	if res.Attempted > 0 && res.Stored == 0 {
		return fmt.Errorf("no record was stored: %w", res.LastError)
	}
	return nil
}
