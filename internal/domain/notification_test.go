package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

func TestSummarize(t *testing.T) {
	processed := time.Date(2024, time.April, 26, 15, 12, 0, 0, time.UTC)
	rec := domain.DecodedRecord{
		Grid: grib.RiskGrid{
			Rows:   2,
			Cols:   3,
			Levels: []uint8{0, 2, grib.SentinelLevel, 4, 0, 1},
		},
		Observed:    domain.ObservationTime{Year: 2024, Month: 4, Day: 26, Hour: 15, Minute: 10},
		SourcePath:  "/data/rec.bin",
		ProcessedAt: processed,
	}

	summary := domain.Summarize(rec)

	assert.Equal(t, "202404261510", summary.Observed)
	assert.Equal(t, "/data/rec.bin", summary.SourceFile)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 3, summary.Cols)
	assert.Equal(t, uint8(4), summary.MaxLevel)
	assert.Equal(t, 3, summary.CellsAtRisk)
	assert.Equal(t, processed, summary.ProcessedAt)
}

func TestSummarize_AllSentinel(t *testing.T) {
	rec := domain.DecodedRecord{
		Grid: grib.RiskGrid{
			Rows:   1,
			Cols:   2,
			Levels: []uint8{grib.SentinelLevel, grib.SentinelLevel},
		},
	}

	summary := domain.Summarize(rec)

	assert.Equal(t, uint8(0), summary.MaxLevel)
	assert.Equal(t, 0, summary.CellsAtRisk)
}
