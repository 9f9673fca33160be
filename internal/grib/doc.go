// Package grib decodes the JMA landslide-risk mesh product, a fixed-layout
// GRIB2-derived binary encoding of categorical risk levels on a 5 km grid.
//
// # Record layout
//
// Each record is framed as nine contiguous sections, numbered 0-8 following
// the GRIB2 convention (JMA Technical Report 374, in Japanese:
// http://www.data.jma.go.jp/add/suishin/jyouhou/pdf/374.pdf). Unlike general
// GRIB2, the layout here is closed and versionless: this product always uses
// the same section lengths and field positions, so decoding is a matter of
// validating the framing and reading fixed offsets.
//
//	section  length  content
//	0        16      indicator, begins with ASCII "GRIB"
//	1        21      identification
//	2        0       absent in this product
//	3        72      grid definition (lat/lon corners and increments)
//	4        42      product definition
//	5        var     data representation (bit depth, max literal value)
//	6        6       bitmap (unused)
//	7        var     run-length compressed payload
//	8        4       end marker, ASCII "7777"
//
// All multi-octet integers are big-endian and unsigned. Coordinates are
// fixed-point microdegrees.
//
// # Compression
//
// The payload is a sequence of NBIT-wide values. A value at or below MAXV is
// a literal risk code for one grid cell; a value above MAXV extends the run
// of the preceding literal. Consecutive continuation values form a
// mixed-radix repeat count in base 2^NBIT-1-MAXV, least significant digit
// first. See Decompress.
//
// # Output
//
// Decoded cells carry a +3 bias: raw values below 3 mean "no data" and map
// to the sentinel level 99; everything else maps to raw-3. Row 0 of the grid
// is the northernmost latitude, columns run west to east.
//
// Decoding is all-or-nothing per record and free of shared state; records
// may be decoded concurrently.
package grib
