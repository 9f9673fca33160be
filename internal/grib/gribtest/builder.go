// Package gribtest builds synthetic landslide-risk records for tests and
// mock-data generation. It is fixture support, not a product encoder: the
// pipeline itself is decode-only.
package gribtest

import (
	"encoding/binary"
	"math"

	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

// Record describes a synthetic record to assemble. Zero values are valid;
// NewRecord fills in the defaults used across the test suite.
type Record struct {
	FirstLat float64
	FirstLon float64
	LastLat  float64
	LastLon  float64
	LatStep  float64
	LonStep  float64

	BitDepth   int
	MaxLiteral int

	// Payload is the compressed sequence, one value per datum.
	Payload []uint32
}

// NewRecord returns a record with a small 2x2 grid and 8-bit packing, the
// shape most tests start from.
func NewRecord() Record {
	return Record{
		FirstLat:   36.0,
		FirstLon:   138.0,
		LastLat:    35.95,
		LastLon:    138.0625,
		LatStep:    0.05,
		LonStep:    0.0625,
		BitDepth:   8,
		MaxLiteral: 250,
	}
}

// Section lengths mirrored from the decoder's framing contract.
const (
	sec0Len = 16
	sec1Len = 21
	sec3Len = 72
	sec4Len = 42
	sec5Len = 23
	sec6Len = 6

	sec3GridSpecOffset   = 46
	sec5BitDepthOffset   = 11
	sec5MaxLiteralOffset = 13
	sec7HeaderLen        = 5
)

// Bytes assembles the record into its binary form.
func (r Record) Bytes() []byte {
	bytesPerDatum := r.BitDepth / 8
	if bytesPerDatum < 1 {
		bytesPerDatum = 1
	}
	sec7Len := sec7HeaderLen + len(r.Payload)*bytesPerDatum

	var buf []byte

	// Section 0: "GRIB" plus reserved octets.
	sec0 := make([]byte, sec0Len)
	copy(sec0, "GRIB")
	buf = append(buf, sec0...)

	// Section 1: identification; only the framing matters to the decoder.
	buf = append(buf, section(1, sec1Len)...)

	// Section 3: grid definition with the corner/increment block.
	sec3 := section(3, sec3Len)
	off := sec3GridSpecOffset
	putMicrodegrees(sec3, off, r.FirstLat)
	putMicrodegrees(sec3, off+4, r.FirstLon)
	sec3[off+8] = 0x30 // resolution/component flags octet
	putMicrodegrees(sec3, off+9, r.LastLat)
	putMicrodegrees(sec3, off+13, r.LastLon)
	putMicrodegrees(sec3, off+17, r.LonStep)
	putMicrodegrees(sec3, off+21, r.LatStep)
	buf = append(buf, sec3...)

	// Section 4: product definition.
	buf = append(buf, section(4, sec4Len)...)

	// Section 5: data representation with the packing parameters.
	sec5 := section(5, sec5Len)
	sec5[sec5BitDepthOffset] = byte(r.BitDepth)
	binary.BigEndian.PutUint16(sec5[sec5MaxLiteralOffset:], uint16(r.MaxLiteral))
	buf = append(buf, sec5...)

	// Section 6: bitmap section, bitmap absent.
	sec6 := section(6, sec6Len)
	sec6[5] = 255 // bitmap indicator: none
	buf = append(buf, sec6...)

	// Section 7: packed payload.
	sec7 := section(7, sec7Len)
	pos := sec7HeaderLen
	for _, v := range r.Payload {
		for i := bytesPerDatum - 1; i >= 0; i-- {
			sec7[pos+i] = byte(v)
			v >>= 8
		}
		pos += bytesPerDatum
	}
	buf = append(buf, sec7...)

	buf = append(buf, "7777"...)
	return buf
}

// CompressRuns run-length encodes a raw value sequence using the record's
// packing parameters, producing the payload the decoder would expand back to
// values. Repeat counts above 1 become mixed-radix digits, least significant
// first, shifted up by MaxLiteral+1.
func CompressRuns(values []int, params grib.CompressionParams) []uint32 {
	radix := uint64(params.Radix())
	shift := uint32(params.MaxLiteral + 1)

	var out []uint32
	for i := 0; i < len(values); {
		v := values[i]
		run := uint64(1)
		for i+int(run) < len(values) && values[i+int(run)] == v {
			run++
		}
		i += int(run)

		out = append(out, uint32(v))
		for rem := run - 1; rem > 0; rem /= radix {
			out = append(out, shift+uint32(rem%radix))
		}
	}
	return out
}

// Grid convenience: assemble a record whose payload expands to the given raw
// values on a rows x cols grid anchored at the default corner.
func Grid(rows, cols int, raw []int) Record {
	r := NewRecord()
	r.LastLat = r.FirstLat - float64(rows-1)*r.LatStep
	r.LastLon = r.FirstLon + float64(cols-1)*r.LonStep
	r.Payload = CompressRuns(raw, grib.CompressionParams{BitDepth: r.BitDepth, MaxLiteral: r.MaxLiteral})
	return r
}

func section(number, length int) []byte {
	s := make([]byte, length)
	binary.BigEndian.PutUint32(s, uint32(length))
	s[4] = byte(number)
	return s
}

func putMicrodegrees(b []byte, off int, deg float64) {
	binary.BigEndian.PutUint32(b[off:], uint32(math.Round(deg*1e6)))
}
