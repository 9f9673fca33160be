// Package integration wires the real adapters together: synthetic record
// files on disk, through the scanner and decoder, into a store file that is
// read back and verified.
package integration

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizulab/dosha-risk-etl/internal/adapter/filescan"
	"github.com/mizulab/dosha-risk-etl/internal/adapter/gridstore"
	"github.com/mizulab/dosha-risk-etl/internal/config"
	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
	"github.com/mizulab/dosha-risk-etl/internal/grib/gribtest"
	"github.com/mizulab/dosha-risk-etl/internal/observability"
	"github.com/mizulab/dosha-risk-etl/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeRecordFile(t *testing.T, dir, stamp string, raw []int) {
	t.Helper()
	name := config.FileNamePrefix + stamp + "00_MET_INF_Jdosha_Ggis5km_ANAL_grib2.bin"
	data := gribtest.Grid(2, 2, raw).Bytes()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	storePath := filepath.Join(t.TempDir(), "store.dgs")

	// Three records ten minutes apart, plus a corrupt file and a foreign one.
	writeRecordFile(t, dir, "202404261500", []int{5, 5, 7, 7})   // levels 2,2,4,4
	writeRecordFile(t, dir, "202404261510", []int{0, 3, 4, 101}) // sentinel, 0, 1, 98
	writeRecordFile(t, dir, "202404261520", []int{3, 3, 3, 3})   // all zero
	corrupt := config.FileNamePrefix + "202404261530" + "00_MET_INF_Jdosha_Ggis5km_ANAL_grib2.bin"
	require.NoError(t, os.WriteFile(filepath.Join(dir, corrupt), []byte("GRIB but truncated"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	logger := testLogger()
	metrics := observability.NewMetricsForTesting()

	scanner := filescan.New([]string{dir}, config.FileNamePrefix, logger)
	transformer := pipeline.NewTransformer(2, 2, logger)
	store, err := gridstore.Create(storePath, logger, metrics)
	require.NoError(t, err)

	p := pipeline.New(scanner, transformer, store, nil, logger, metrics, pipeline.Options{
		BatchSize: 2,
	})
	require.NoError(t, p.Run(ctx))
	require.True(t, p.Ready())

	assert.Equal(t, uint64(3), store.Count())
	require.NoError(t, store.Close())

	r, err := gridstore.Open(storePath)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, uint64(3), r.Count())
	geom, ok := r.Geometry()
	require.True(t, ok)
	assert.Equal(t, 2, geom.Rows)
	assert.Equal(t, 2, geom.Cols)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, domain.ObservationTime{Year: 2024, Month: 4, Day: 26, Hour: 15, Minute: 0}, first.Observed)
	assert.Equal(t, []uint8{2, 2, 4, 4}, first.Grid.Levels)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 10, second.Observed.Minute)
	assert.Equal(t, []uint8{grib.SentinelLevel, 0, 1, 98}, second.Grid.Levels)

	third, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 20, third.Observed.Minute)
	assert.Equal(t, []uint8{0, 0, 0, 0}, third.Grid.Levels)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)

	// The corrupt record was skipped, not stored, and a rescan finds nothing
	// new: every file including the corrupt and foreign ones is settled.
	records, err := scanner.ExtractBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
