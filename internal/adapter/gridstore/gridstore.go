// Package gridstore persists decoded risk grids in an append-only binary
// store, one file per ingest run.
//
// File layout (all integers little-endian):
//
//	header   16 B   magic, format version, record count
//	geometry 56 B   rows, cols, six float64 grid scalars (written once,
//	                with the first record)
//	records  ...    per record: 6 B observation time (year u16, month, day,
//	                hour, minute u8), u32 block length, snappy-compressed
//	                row-major level bytes
//
// The record count in the header is patched on Close, so a crash mid-append
// leaves a readable store covering the records written before the crash.
package gridstore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

const (
	magic         = 0x44475331 // "DGS1"
	formatVersion = 1

	fileHeaderSize    = 16
	geometryBlockSize = 56
	timeRowSize       = 6

	recordCountOffset = 8 // position of the u64 record count in the header
)

// geometryEqual reports whether two geometries describe the same lattice.
// Scalars come from the same fixed-point division on every record, so exact
// comparison is intended.
func geometryEqual(a, b grib.GridGeometry) bool {
	return a == b
}

func marshalGeometry(g grib.GridGeometry) []byte {
	buf := make([]byte, geometryBlockSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.Rows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.Cols))
	for i, v := range [6]float64{g.FirstLat, g.LastLat, g.LatStep, g.FirstLon, g.LastLon, g.LonStep} {
		binary.LittleEndian.PutUint64(buf[8+8*i:], math.Float64bits(v))
	}
	return buf
}

func unmarshalGeometry(buf []byte) (grib.GridGeometry, error) {
	if len(buf) < geometryBlockSize {
		return grib.GridGeometry{}, fmt.Errorf("geometry block too short: %d bytes", len(buf))
	}
	var scalars [6]float64
	for i := range scalars {
		scalars[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8+8*i:]))
	}
	return grib.GridGeometry{
		Rows:     int(binary.LittleEndian.Uint32(buf[0:])),
		Cols:     int(binary.LittleEndian.Uint32(buf[4:])),
		FirstLat: scalars[0],
		LastLat:  scalars[1],
		LatStep:  scalars[2],
		FirstLon: scalars[3],
		LastLon:  scalars[4],
		LonStep:  scalars[5],
	}, nil
}
