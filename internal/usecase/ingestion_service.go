package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// DefaultConcurrency is the number of rows processed at once when none is configured
const DefaultConcurrency = 5

// Failure reasons attached to ingest.row.failed log entries
const (
	ReasonEmptyRow     = "empty_row"
	ReasonInvalidImage = "invalid_image"
	ReasonTransport    = "transport"
	ReasonRefusal      = "refusal"
	ReasonParse        = "parse"
	ReasonStore        = "store"
	ReasonUnknown      = "unknown"
)

// IngestionConfig holds configuration for the ingestion service
type IngestionConfig struct {
	Concurrency int
}

// IngestionService turns label rows into stored product records
type IngestionService struct {
	extractor   domain.Extractor
	sink        domain.DocumentSink
	concurrency int
	logger      *zap.Logger
}

// NewIngestionService creates a new ingestion service with dependencies
func NewIngestionService(
	extractor domain.Extractor,
	sink domain.DocumentSink,
	config IngestionConfig,
	logger *zap.Logger,
) *IngestionService {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.L()
	}

	return &IngestionService{
		extractor:   extractor,
		sink:        sink,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run drains source and processes every row with bounded concurrency.
// Row failures are logged and never abort the batch. Run returns an error
// only when the source fails or ctx is cancelled, and in both cases waits for
// rows already in flight.
func (s *IngestionService) Run(ctx context.Context, source domain.RowSource) error {
	rows, errs := source.Rows(ctx)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	var dispatched int
	for row := range rows {
		dispatched++
		g.Go(func() error {
			s.processAndLog(ctx, row)
			return nil // don't abort batch
		})
	}

	_ = g.Wait()

	// errs is closed together with rows, so this never blocks
	if err := <-errs; err != nil {
		s.logger.Error("ingest.aborted", zap.Int("dispatched", dispatched), zap.Error(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "ingest: cancelled")
	}

	s.logger.Info("ingest.complete", zap.Int("rows", dispatched))
	return nil
}

// Process runs one row through extraction, decoding and storage and returns
// the id of the inserted document.
func (s *IngestionService) Process(ctx context.Context, row domain.ProductRow) (string, error) {
	id, _, err := s.process(ctx, row)
	return id, err
}

func (s *IngestionService) process(ctx context.Context, row domain.ProductRow) (string, *domain.ProductRecord, error) {
	if len(row.Images) == 0 {
		return "", nil, eris.Wrapf(domain.ErrEmptyRow, "line %d", row.Line)
	}

	result, err := s.extractor.Extract(ctx, row)
	if err != nil {
		return "", nil, err
	}

	if result.Refused() {
		return "", nil, eris.Wrapf(domain.ErrRefusal, "%s", result.Refusal)
	}

	record, err := result.Decode()
	if err != nil {
		return "", nil, err
	}

	id, err := s.sink.Insert(ctx, record)
	if err != nil {
		return "", nil, err
	}
	return id, record, nil
}

func (s *IngestionService) processAndLog(ctx context.Context, row domain.ProductRow) {
	start := time.Now()

	id, record, err := s.process(ctx, row)
	if err != nil {
		s.logger.Error("ingest.row.failed",
			zap.Int("line", row.Line),
			zap.Int("images", len(row.Images)),
			zap.String("reason", FailureReason(err)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("ingest.row.ok",
		zap.Int("line", row.Line),
		zap.String("id", id),
		zap.String("product", record.ProductName),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// FailureReason maps a row error to a short, stable label for logs
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyRow):
		return ReasonEmptyRow
	case errors.Is(err, domain.ErrInvalidImageRef):
		return ReasonInvalidImage
	case errors.Is(err, domain.ErrRefusal):
		return ReasonRefusal
	case errors.Is(err, domain.ErrParse):
		return ReasonParse
	case errors.Is(err, domain.ErrTransport):
		return ReasonTransport
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ReasonStore
	default:
		return ReasonUnknown
	}
}
