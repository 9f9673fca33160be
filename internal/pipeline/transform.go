package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

// GridTransformer implements Transformer by decoding the record's binary
// payload and cross-checking the decoded geometry against the expected grid
// shape.
type GridTransformer struct {
	expectedRows int
	expectedCols int
	logger       *slog.Logger
}

// NewTransformer creates a GridTransformer. expectedRows/expectedCols of 0
// disable the shape cross-check.
func NewTransformer(expectedRows, expectedCols int, logger *slog.Logger) *GridTransformer {
	return &GridTransformer{
		expectedRows: expectedRows,
		expectedCols: expectedCols,
		logger:       logger,
	}
}

func (t *GridTransformer) Transform(_ context.Context, raw domain.RawRecord) (domain.DecodedRecord, error) {
	grid, geom, err := grib.Decode(raw.Data)
	if err != nil {
		return domain.DecodedRecord{}, err
	}

	if t.expectedRows > 0 && (geom.Rows != t.expectedRows || geom.Cols != t.expectedCols) {
		return domain.DecodedRecord{}, fmt.Errorf("record %s: decoded grid %dx%d does not match configured %dx%d",
			raw.Observed, geom.Rows, geom.Cols, t.expectedRows, t.expectedCols)
	}

	return domain.NewDecodedRecord(grid, geom, raw), nil
}
