package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// DryRunID is returned for every record a DryRunSink accepts
const DryRunID = "dry-run"

// DryRunSink logs records instead of storing them
type DryRunSink struct {
	logger *zap.Logger
}

// NewDryRunSink creates a sink that only logs
func NewDryRunSink(logger *zap.Logger) *DryRunSink {
	if logger == nil {
		logger = zap.L()
	}
	return &DryRunSink{logger: logger.Named("dry_run")}
}

// Insert logs the record and stores nothing.
func (s *DryRunSink) Insert(_ context.Context, record *domain.ProductRecord) (string, error) {
	s.logger.Info("store.insert.skipped",
		zap.String("product", record.ProductName),
		zap.String("brand", record.BrandName),
		zap.Int("ingredients", len(record.Ingredients)),
		zap.Any("record", record),
	)
	return DryRunID, nil
}
