package gridstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

// StoredRecord is one record read back from a store file.
type StoredRecord struct {
	Observed domain.ObservationTime
	Grid     grib.RiskGrid
}

// Reader iterates over a grid store file in append order.
type Reader struct {
	f     *os.File
	r     *bufio.Reader
	geom  grib.GridGeometry
	count uint64
	read  uint64
}

// Open validates the store header and positions the reader at the first
// record.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid store: %w", err)
	}

	r := bufio.NewReader(f)
	header := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("read grid store header: %w", err)
	}
	if m := binary.LittleEndian.Uint32(header[0:]); m != magic {
		f.Close()
		return nil, fmt.Errorf("bad magic %#x: not a grid store file or corrupted", m)
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != formatVersion {
		f.Close()
		return nil, fmt.Errorf("unsupported grid store version %d (want %d)", v, formatVersion)
	}

	reader := &Reader{
		f:     f,
		r:     r,
		count: binary.LittleEndian.Uint64(header[recordCountOffset:]),
	}

	if reader.count > 0 {
		geomBuf := make([]byte, geometryBlockSize)
		if _, err := io.ReadFull(r, geomBuf); err != nil {
			f.Close()
			return nil, fmt.Errorf("read geometry block: %w", err)
		}
		reader.geom, err = unmarshalGeometry(geomBuf)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return reader, nil
}

// Count returns the number of records the header declares.
func (r *Reader) Count() uint64 { return r.count }

// Geometry returns the store's shared grid geometry. The second return is
// false for an empty store.
func (r *Reader) Geometry() (grib.GridGeometry, bool) {
	return r.geom, r.count > 0
}

// Next returns the next record, or io.EOF after the last declared record.
func (r *Reader) Next() (StoredRecord, error) {
	if r.read >= r.count {
		return StoredRecord{}, io.EOF
	}

	row := make([]byte, timeRowSize+4)
	if _, err := io.ReadFull(r.r, row); err != nil {
		return StoredRecord{}, fmt.Errorf("read record row: %w", err)
	}
	observed := domain.ObservationTime{
		Year:   int(binary.LittleEndian.Uint16(row[0:])),
		Month:  int(row[2]),
		Day:    int(row[3]),
		Hour:   int(row[4]),
		Minute: int(row[5]),
	}

	blockLen := binary.LittleEndian.Uint32(row[timeRowSize:])
	block := make([]byte, blockLen)
	if _, err := io.ReadFull(r.r, block); err != nil {
		return StoredRecord{}, fmt.Errorf("read grid block: %w", err)
	}
	levels, err := snappy.Decode(nil, block)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("decompress grid block: %w", err)
	}
	if len(levels) != r.geom.Rows*r.geom.Cols {
		return StoredRecord{}, fmt.Errorf("grid block holds %d cells, geometry says %d",
			len(levels), r.geom.Rows*r.geom.Cols)
	}

	r.read++
	return StoredRecord{
		Observed: observed,
		Grid:     grib.RiskGrid{Rows: r.geom.Rows, Cols: r.geom.Cols, Levels: levels},
	}, nil
}

func (r *Reader) Close() error { return r.f.Close() }
