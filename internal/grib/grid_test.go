package grib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

func TestAssembleGrid_BiasAndSentinel(t *testing.T) {
	geom := grib.GridGeometry{Rows: 2, Cols: 3}

	grid, err := grib.AssembleGrid([]int{0, 1, 2, 3, 4, 101}, geom)
	require.NoError(t, err)

	assert.Equal(t, 2, grid.Rows)
	assert.Equal(t, 3, grid.Cols)

	// Raw values below the +3 bias become the no-data sentinel.
	assert.Equal(t, uint8(grib.SentinelLevel), grid.At(0, 0))
	assert.Equal(t, uint8(grib.SentinelLevel), grid.At(0, 1))
	assert.Equal(t, uint8(grib.SentinelLevel), grid.At(0, 2))

	// Raw 3 is the lowest level; raw 101 the highest.
	assert.Equal(t, uint8(0), grid.At(1, 0))
	assert.Equal(t, uint8(1), grid.At(1, 1))
	assert.Equal(t, uint8(98), grid.At(1, 2))
}

func TestAssembleGrid_RowMajorOrder(t *testing.T) {
	geom := grib.GridGeometry{Rows: 2, Cols: 2}

	grid, err := grib.AssembleGrid([]int{3, 4, 5, 6}, geom)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), grid.At(0, 0))
	assert.Equal(t, uint8(1), grid.At(0, 1))
	assert.Equal(t, uint8(2), grid.At(1, 0))
	assert.Equal(t, uint8(3), grid.At(1, 1))
}

func TestAssembleGrid_SizeMismatch(t *testing.T) {
	geom := grib.GridGeometry{Rows: 2, Cols: 2}

	_, err := grib.AssembleGrid([]int{3, 4, 5}, geom)
	require.ErrorIs(t, err, grib.ErrGridSizeMismatch)

	var decodeErr *grib.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Expected, "4 cells")
	assert.Contains(t, decodeErr.Found, "3 cells")
}

func TestAssembleGrid_LevelOutOfRange(t *testing.T) {
	geom := grib.GridGeometry{Rows: 1, Cols: 1}

	// Raw 102 would bias to 99 and collide with the sentinel; anything that
	// far up is corruption, not risk.
	_, err := grib.AssembleGrid([]int{102}, geom)
	assert.ErrorIs(t, err, grib.ErrRiskLevelOutOfRange)

	_, err = grib.AssembleGrid([]int{250}, geom)
	assert.ErrorIs(t, err, grib.ErrRiskLevelOutOfRange)
}
