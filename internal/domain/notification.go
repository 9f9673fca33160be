package domain

import (
	"time"

	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

// Notification is the compact summary published per stored record when the
// Kafka notifier is enabled. It carries enough for downstream alerting to
// decide whether to fetch the full grid.
type Notification struct {
	Observed    string    `json:"observed"` // YYYYMMDDHHNN
	SourceFile  string    `json:"source_file"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	MaxLevel    uint8     `json:"max_level"`     // highest non-sentinel level, 0 if none
	CellsAtRisk int       `json:"cells_at_risk"` // cells with a level above 0
	ProcessedAt time.Time `json:"processed_at"`
}

// Summarize reduces a decoded record to its notification form.
func Summarize(rec DecodedRecord) Notification {
	var maxLevel uint8
	atRisk := 0
	for _, l := range rec.Grid.Levels {
		if l == grib.SentinelLevel {
			continue
		}
		if l > 0 {
			atRisk++
		}
		if l > maxLevel {
			maxLevel = l
		}
	}
	return Notification{
		Observed:    rec.Observed.Stamp(),
		SourceFile:  rec.SourcePath,
		Rows:        rec.Grid.Rows,
		Cols:        rec.Grid.Cols,
		MaxLevel:    maxLevel,
		CellsAtRisk: atRisk,
		ProcessedAt: rec.ProcessedAt,
	}
}
