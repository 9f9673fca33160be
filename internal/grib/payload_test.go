package grib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizulab/dosha-risk-etl/internal/grib"
	"github.com/mizulab/dosha-risk-etl/internal/grib/gribtest"
)

func TestReadCompressedSequence_8Bit(t *testing.T) {
	rec := gribtest.NewRecord()
	rec.Payload = []uint32{5, 252, 7, 0, 255}
	data := rec.Bytes()

	sections, err := grib.ScanSections(data)
	require.NoError(t, err)
	params := grib.ReadCompressionParams(data, sections)

	seq, err := grib.ReadCompressedSequence(data, sections, params)
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 252, 7, 0, 255}, seq)
}

func TestReadCompressedSequence_16Bit(t *testing.T) {
	rec := gribtest.NewRecord()
	rec.BitDepth = 16
	rec.MaxLiteral = 65000
	rec.Payload = []uint32{64000, 65100, 12}
	data := rec.Bytes()

	sections, err := grib.ScanSections(data)
	require.NoError(t, err)
	params := grib.ReadCompressionParams(data, sections)
	require.Equal(t, 16, params.BitDepth)

	seq, err := grib.ReadCompressedSequence(data, sections, params)
	require.NoError(t, err)
	assert.Equal(t, []uint32{64000, 65100, 12}, seq)
}

func TestReadCompressedSequence_UnsupportedBitDepth(t *testing.T) {
	rec := gribtest.NewRecord()
	rec.Payload = []uint32{5}
	data := rec.Bytes()

	sections, err := grib.ScanSections(data)
	require.NoError(t, err)

	for _, bits := range []int{0, 12, 40} {
		_, err := grib.ReadCompressedSequence(data, sections, grib.CompressionParams{BitDepth: bits, MaxLiteral: 250})
		assert.ErrorIs(t, err, grib.ErrUnsupportedBitDepth, "bit depth %d", bits)
	}
}

func TestReadCompressedSequence_TruncatedPayload(t *testing.T) {
	// Three 8-bit datums are not a whole number of 16-bit datums.
	rec := gribtest.NewRecord()
	rec.Payload = []uint32{5, 6, 7}
	data := rec.Bytes()

	sections, err := grib.ScanSections(data)
	require.NoError(t, err)

	_, err = grib.ReadCompressedSequence(data, sections, grib.CompressionParams{BitDepth: 16, MaxLiteral: 65000})
	assert.ErrorIs(t, err, grib.ErrTruncatedPayload)
}
