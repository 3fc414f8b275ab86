package main

import (
	"log"
	"os"

	"github.com/farxc/mgnrega-goa/internal/env"
	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/files"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "etl",
		Short: "Loads MGNREGA Goa records into the persistent cache",
		Long: `Reads records from the CSV file or the data.gov.in resource, normalizes
them and upserts them into the configured store (STORE_DRIVER).`,
		SilenceUsage: true,
	}
	logLevel    string
	storeDriver string

	importCSVCmd = &cobra.Command{
		Use:   "import-csv",
		Short: "Upsert every row of a CSV file into the store",
		RunE:  runImportCSV,
	}
	csvFile     string
	csvEncoding string

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the remote resource and upsert the normalized records",
		RunE:  runFetch,
	}
	stateFilter string
)

func init() {
	if err := env.Load(".env"); err != nil {
		log.Printf("Could not read .env: %v", err)
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", env.GetString("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "driver", env.GetString("STORE_DRIVER", "mongo"), "Store driver: mongo, postgres, memory")

	importCSVCmd.Flags().StringVarP(&csvFile, "file", "f", env.GetString("CSV_PATH", "data/mgnrega_goa.csv"), "CSV file to import")
	importCSVCmd.Flags().StringVar(&csvEncoding, "encoding", env.GetString("CSV_ENCODING", files.EncodingUTF8), "CSV charset: utf-8 or windows-1252")

	fetchCmd.Flags().StringVar(&stateFilter, "state", env.GetString("MGNREGA_STATE_FILTER", ""), "Optional state_name filter")

	rootCmd.AddCommand(importCSVCmd, fetchCmd)
}

func newLogger() *logger.Logger {
	return logger.New(logger.ParseLevel(logLevel), os.Stdout)
}

func remoteConfig() downloader.Config {
	return downloader.Config{
		BaseURL:     env.GetString("DATA_GOV_API_URL", downloader.DataGovURL),
		ResourceID:  env.GetString("MGNREGA_RESOURCE_ID", ""),
		APIKey:      env.GetString("DATA_GOV_API_KEY", ""),
		StateFilter: stateFilter,
		Timeout:     env.GetDuration("REMOTE_TIMEOUT", downloader.DefaultTimeout),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
