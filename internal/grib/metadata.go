package grib

import "encoding/binary"

// Field positions inside sections 3 and 5. The product's binary schema is
// documented only in JMA Technical Report 374; there is no machine-readable
// definition to derive these from.
const (
	sec5BitDepthOffset   = 11 // one octet: bits per packed datum
	sec5MaxLiteralOffset = 13 // two octets: largest value that is a literal

	sec3GridSpecOffset = 46 // start of the corner/increment block

	degreeScale   = 1e-6 // all coordinate fields are fixed-point microdegrees
	degreeEpsilon = 1e-4 // tolerance when stepping to the far grid edge
)

// CompressionParams are the packing parameters read from section 5.
type CompressionParams struct {
	BitDepth   int // bits per compressed datum (NBIT), a multiple of 8
	MaxLiteral int // largest literal value (MAXV); larger values are continuation codes
}

// Radix returns the base of the mixed-radix run-length encoding,
// 2^NBIT - 1 - MAXV. It is at least 1 for any valid parameter pair.
func (p CompressionParams) Radix() int {
	return (1 << p.BitDepth) - 1 - p.MaxLiteral
}

// GridGeometry describes the lat/lon lattice of one record. Latitudes run
// north to south, longitudes west to east. Immutable once computed.
type GridGeometry struct {
	FirstLat float64 // northernmost row, degrees
	FirstLon float64 // westernmost column, degrees
	LastLat  float64
	LastLon  float64
	LatStep  float64 // positive; rows descend by this much
	LonStep  float64 // positive; columns ascend by this much
	Rows     int
	Cols     int
}

// ReadCompressionParams extracts the packing parameters from section 5.
// Framing has already been validated, so the reads are unconditional.
func ReadCompressionParams(data []byte, sections SectionTable) CompressionParams {
	off := sections.Offsets[5]
	return CompressionParams{
		BitDepth:   int(data[off+sec5BitDepthOffset]),
		MaxLiteral: int(binary.BigEndian.Uint16(data[off+sec5MaxLiteralOffset:])),
	}
}

// ReadGridGeometry extracts the grid corners and increments from section 3
// and derives the row and column counts by stepping from the first corner to
// the last with a small tolerance at the far edge.
func ReadGridGeometry(data []byte, sections SectionTable) GridGeometry {
	off := sections.Offsets[3] + sec3GridSpecOffset

	firstLat := microdegrees(data, off)
	firstLon := microdegrees(data, off+4)
	// One octet of resolution/component flags sits between the corners.
	lastLat := microdegrees(data, off+9)
	lastLon := microdegrees(data, off+13)
	lonStep := microdegrees(data, off+17) // i-direction increment
	latStep := microdegrees(data, off+21) // j-direction increment

	g := GridGeometry{
		FirstLat: firstLat,
		FirstLon: firstLon,
		LastLat:  lastLat,
		LastLon:  lastLon,
		LatStep:  latStep,
		LonStep:  lonStep,
	}
	g.Rows = descendingSteps(firstLat, lastLat, latStep)
	g.Cols = ascendingSteps(firstLon, lastLon, lonStep)
	return g
}

func microdegrees(data []byte, off int) float64 {
	return float64(binary.BigEndian.Uint32(data[off:off+4])) * degreeScale
}

func descendingSteps(first, last, step float64) int {
	if step <= 0 {
		return 0
	}
	n := 0
	for v := first; v >= last-degreeEpsilon; v -= step {
		n++
	}
	return n
}

func ascendingSteps(first, last, step float64) int {
	if step <= 0 {
		return 0
	}
	n := 0
	for v := first; v <= last+degreeEpsilon; v += step {
		n++
	}
	return n
}
