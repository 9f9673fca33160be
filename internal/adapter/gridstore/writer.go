package gridstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang/snappy"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
	"github.com/mizulab/dosha-risk-etl/internal/observability"
)

// Writer appends decoded records to a grid store file. It implements
// pipeline.BatchLoader. The first appended record fixes the store's geometry;
// later records must match it exactly, so one store file always holds a
// single mesh. Not safe for concurrent use; the pipeline appends from a
// single goroutine.
type Writer struct {
	f       *os.File
	logger  *slog.Logger
	metrics *observability.Metrics

	geom     grib.GridGeometry
	haveGeom bool
	count    uint64
}

// Create opens a new store file, truncating any existing file at path.
func Create(path string, logger *slog.Logger, metrics *observability.Metrics) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create grid store: %w", err)
	}

	header := make([]byte, fileHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], magic)
	binary.LittleEndian.PutUint32(header[4:], formatVersion)
	// record count at recordCountOffset stays zero until Close
	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write grid store header: %w", err)
	}

	return &Writer{f: f, logger: logger, metrics: metrics}, nil
}

// LoadBatch appends a batch of decoded records in order.
func (w *Writer) LoadBatch(_ context.Context, recs []domain.DecodedRecord) error {
	for _, rec := range recs {
		if err := w.append(rec); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) append(rec domain.DecodedRecord) error {
	if !w.haveGeom {
		if _, err := w.f.Write(marshalGeometry(rec.Geometry)); err != nil {
			return fmt.Errorf("write geometry block: %w", err)
		}
		w.geom = rec.Geometry
		w.haveGeom = true
		w.logger.Info("grid store geometry fixed",
			"rows", rec.Geometry.Rows, "cols", rec.Geometry.Cols)
	} else if !geometryEqual(rec.Geometry, w.geom) {
		return fmt.Errorf("record %s: geometry %dx%d does not match store geometry %dx%d",
			rec.Observed, rec.Geometry.Rows, rec.Geometry.Cols, w.geom.Rows, w.geom.Cols)
	}

	block := snappy.Encode(nil, rec.Grid.Levels)

	row := make([]byte, timeRowSize+4)
	binary.LittleEndian.PutUint16(row[0:], uint16(rec.Observed.Year))
	row[2] = byte(rec.Observed.Month)
	row[3] = byte(rec.Observed.Day)
	row[4] = byte(rec.Observed.Hour)
	row[5] = byte(rec.Observed.Minute)
	binary.LittleEndian.PutUint32(row[timeRowSize:], uint32(len(block)))

	if _, err := w.f.Write(row); err != nil {
		return fmt.Errorf("write record row: %w", err)
	}
	if _, err := w.f.Write(block); err != nil {
		return fmt.Errorf("write grid block: %w", err)
	}

	w.count++
	if w.metrics != nil {
		w.metrics.StoreBytesWritten.Add(float64(len(row) + len(block)))
	}
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() uint64 { return w.count }

// Close patches the record count into the header and closes the file.
func (w *Writer) Close() error {
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], w.count)
	if _, err := w.f.WriteAt(countBuf[:], recordCountOffset); err != nil {
		w.f.Close()
		return fmt.Errorf("update record count: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync grid store: %w", err)
	}
	return w.f.Close()
}
