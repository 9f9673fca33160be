package domain_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

const testPrefix = "Z__C_RJTD_"

func TestParseObservationTime(t *testing.T) {
	name := "Z__C_RJTD_202404261510" + "00_MET_INF_Jdosha_Ggis5km_ANAL_grib2.bin"

	observed, err := domain.ParseObservationTime(name, testPrefix)
	require.NoError(t, err)

	assert.Equal(t, 2024, observed.Year)
	assert.Equal(t, 4, observed.Month)
	assert.Equal(t, 26, observed.Day)
	assert.Equal(t, 15, observed.Hour)
	assert.Equal(t, 10, observed.Minute)
}

func TestParseObservationTime_Errors(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
	}{
		{name: "too short", fileName: "Z__C_RJTD_2024"},
		{name: "wrong prefix", fileName: "X__C_RJTD_202404261510_rest.bin"},
		{name: "non-numeric year", fileName: "Z__C_RJTD_2O2404261510_rest.bin"},
		{name: "non-numeric minute", fileName: "Z__C_RJTD_2024042615xx_rest.bin"},
		{name: "empty", fileName: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.ParseObservationTime(tc.fileName, testPrefix)
			assert.Error(t, err)
		})
	}
}

func TestObservationTime_Renderings(t *testing.T) {
	observed := domain.ObservationTime{Year: 2024, Month: 4, Day: 26, Hour: 15, Minute: 10}

	assert.Equal(t, "202404261510", observed.Stamp())
	assert.Equal(t, "2024/04/26 15:10", observed.String())
	assert.Equal(t, time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC), observed.Time())
}

func TestNewDecodedRecord_StampsProcessedAt(t *testing.T) {
	frozen := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	defer domain.SetClock(nil)

	raw := domain.RawRecord{
		Path:     "/data/20240426/rec.bin",
		Observed: domain.ObservationTime{Year: 2024, Month: 4, Day: 26, Hour: 15, Minute: 10},
	}
	grid := grib.RiskGrid{Rows: 1, Cols: 1, Levels: []uint8{0}}

	rec := domain.NewDecodedRecord(grid, grib.GridGeometry{Rows: 1, Cols: 1}, raw)

	assert.Equal(t, frozen, rec.ProcessedAt)
	assert.Equal(t, raw.Path, rec.SourcePath)
	assert.Equal(t, raw.Observed, rec.Observed)
}
