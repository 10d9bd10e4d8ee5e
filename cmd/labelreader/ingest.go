package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laxmi8801/data-extractor/config"
	"github.com/laxmi8801/data-extractor/internal/domain"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/store"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/tabular"
	"github.com/laxmi8801/data-extractor/internal/usecase"
)

var (
	ingestInput       string
	ingestConcurrency int
	ingestStoreURI    string
	ingestStoreDriver string
	ingestDryRun      bool
	ingestHeader      bool
	ingestSheet       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [input]",
	Short: "Extract and store a product record for every row of a CSV or XLSX file",
	Long: `Each row of the input lists the label image references of one product:
http(s) URLs, data URLs or local file paths. Rows are processed concurrently
and a failed row never stops the batch.

Examples:
  labelreader ingest products.csv
  labelreader ingest --input products.xlsx --sheet Labels --header
  labelreader ingest products.csv --concurrency 10 --store-driver sqlite --store-uri labels.db
  labelreader ingest products.csv --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyIngestFlags(cmd, args, cfg)
		return runIngest(ctx, cfg)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestInput, "input", "", "path to the CSV or XLSX input (or pass it as the first argument)")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", usecase.DefaultConcurrency, "max rows processed concurrently")
	ingestCmd.Flags().StringVar(&ingestStoreURI, "store-uri", "", "document store URI (default from config)")
	ingestCmd.Flags().StringVar(&ingestStoreDriver, "store-driver", "", "document store driver: mongo, postgres or sqlite (default from config)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "extract but log records instead of storing them")
	ingestCmd.Flags().BoolVar(&ingestHeader, "header", false, "skip the first line of the input")
	ingestCmd.Flags().StringVar(&ingestSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	rootCmd.AddCommand(ingestCmd)
}

// applyIngestFlags overrides config values with flags given on the command line
func applyIngestFlags(cmd *cobra.Command, args []string, c *config.Config) {
	flags := cmd.Flags()
	if len(args) > 0 {
		c.Ingest.Input = args[0]
	}
	if flags.Changed("input") {
		c.Ingest.Input = ingestInput
	}
	if flags.Changed("concurrency") {
		c.Ingest.Concurrency = ingestConcurrency
	}
	if flags.Changed("store-uri") {
		c.Store.URI = ingestStoreURI
	}
	if flags.Changed("store-driver") {
		c.Store.Driver = ingestStoreDriver
	}
	if flags.Changed("dry-run") {
		c.Ingest.DryRun = ingestDryRun
	}
	if flags.Changed("header") {
		c.Ingest.HasHeader = ingestHeader
	}
	if flags.Changed("sheet") {
		c.Ingest.Sheet = ingestSheet
	}
}

func runIngest(ctx context.Context, c *config.Config) error {
	logger := zap.L()

	if c.Ingest.Input == "" {
		return eris.New("ingest: an input file is required (--input or first argument)")
	}
	if c.Ingest.Concurrency < 1 {
		return eris.Errorf("ingest: concurrency must be at least 1, got %d", c.Ingest.Concurrency)
	}

	extractor, err := newExtractor(ctx, c)
	if err != nil {
		return err
	}

	var sink domain.DocumentSink
	if c.Ingest.DryRun {
		sink = store.NewDryRunSink(logger)
	} else {
		if err := c.ValidateStore(); err != nil {
			return err
		}
		s, err := store.Open(ctx, c.Store, logger)
		if err != nil {
			return eris.Wrap(err, "ingest: open store")
		}
		defer func() {
			if err := s.Close(context.Background()); err != nil {
				logger.Warn("store.close.failed", zap.Error(err))
			}
		}()
		sink = s
	}

	source, err := tabular.Open(c.Ingest.Input, tabular.Options{
		HasHeader: c.Ingest.HasHeader,
		Sheet:     c.Ingest.Sheet,
	})
	if err != nil {
		return err
	}
	defer source.Close()

	logger.Info("ingest.start",
		zap.String("input", c.Ingest.Input),
		zap.String("provider", c.Inference.Provider),
		zap.Int("concurrency", c.Ingest.Concurrency),
		zap.Bool("dry_run", c.Ingest.DryRun),
	)

	service := usecase.NewIngestionService(extractor, sink, usecase.IngestionConfig{
		Concurrency: c.Ingest.Concurrency,
	}, logger)

	return service.Run(ctx, source)
}
