package gridstore_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizulab/dosha-risk-etl/internal/adapter/gridstore"
	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
	"github.com/mizulab/dosha-risk-etl/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testGeometry() grib.GridGeometry {
	return grib.GridGeometry{
		FirstLat: 36.0, FirstLon: 138.0,
		LastLat: 35.95, LastLon: 138.0625,
		LatStep: 0.05, LonStep: 0.0625,
		Rows: 2, Cols: 2,
	}
}

func testRecord(minute int, levels []uint8) domain.DecodedRecord {
	return domain.DecodedRecord{
		Grid:     grib.RiskGrid{Rows: 2, Cols: 2, Levels: levels},
		Geometry: testGeometry(),
		Observed: domain.ObservationTime{Year: 2024, Month: 4, Day: 26, Hour: 15, Minute: minute},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "store.dgs")

	w, err := gridstore.Create(path, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	records := []domain.DecodedRecord{
		testRecord(10, []uint8{0, 2, grib.SentinelLevel, 4}),
		testRecord(20, []uint8{1, 1, 1, 1}),
	}
	require.NoError(t, w.LoadBatch(ctx, records))
	assert.Equal(t, uint64(2), w.Count())
	require.NoError(t, w.Close())

	r, err := gridstore.Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, uint64(2), r.Count())
	geom, ok := r.Geometry()
	require.True(t, ok)
	assert.Equal(t, testGeometry(), geom)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, records[0].Observed, first.Observed)
	assert.Equal(t, records[0].Grid, first.Grid)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, records[1].Observed, second.Observed)
	assert.Equal(t, records[1].Grid, second.Grid)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dgs")

	w, err := gridstore.Create(path, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := gridstore.Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, uint64(0), r.Count())
	_, ok := r.Geometry()
	assert.False(t, ok)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGeometryMismatchRejected(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "store.dgs")

	w, err := gridstore.Create(path, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.LoadBatch(ctx, []domain.DecodedRecord{
		testRecord(10, []uint8{0, 0, 0, 0}),
	}))

	other := testRecord(20, []uint8{0, 0, 0, 0})
	other.Geometry.Rows = 4
	other.Geometry.LastLat = 35.85
	err = w.LoadBatch(ctx, []domain.DecodedRecord{other})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match store geometry")
	assert.Equal(t, uint64(1), w.Count())
}

func TestOpen_RejectsForeignFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notastore.bin")
	require.NoError(t, os.WriteFile(path, []byte("GRIB but not a store file at all"), 0o644))

	_, err := gridstore.Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

func TestOpen_RejectsTruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.dgs")
	require.NoError(t, os.WriteFile(path, []byte{0x31, 0x53}, 0o644))

	_, err := gridstore.Open(path)
	assert.Error(t, err)
}

func TestCreate_TruncatesExisting(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "store.dgs")

	w, err := gridstore.Create(path, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, w.LoadBatch(ctx, []domain.DecodedRecord{
		testRecord(10, []uint8{3, 3, 3, 3}),
	}))
	require.NoError(t, w.Close())

	w, err = gridstore.Create(path, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := gridstore.Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint64(0), r.Count())
}
