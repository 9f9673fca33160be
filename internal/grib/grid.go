package grib

import "strconv"

const (
	// levelBias is subtracted from every raw cell value; raw values below it
	// mean "no data / below reporting threshold".
	levelBias = 3

	// SentinelLevel marks a cell with no risk data.
	SentinelLevel = 99

	// maxLevel is the largest valid risk level after the bias. Anything above
	// it signals a corrupted stream, not a bigger risk.
	maxLevel = 98
)

// RiskGrid is a dense row-major grid of risk-level codes. Row 0 is the
// northernmost latitude, column 0 the westernmost longitude. Cells hold
// either a risk level in [0, 98] or SentinelLevel. Immutable once returned.
type RiskGrid struct {
	Rows   int
	Cols   int
	Levels []uint8 // len Rows*Cols, cell (r, c) at Levels[r*Cols+c]
}

// At returns the level at (row, col).
func (g RiskGrid) At(row, col int) uint8 {
	return g.Levels[row*g.Cols+col]
}

// AssembleGrid reshapes the decompressed sequence into the grid described by
// geom, applying the level bias and sentinel substitution. A sequence length
// other than Rows*Cols, or a biased value outside the valid level range,
// fails the record: the valid range is small enough that anything wider is
// corruption, not a level worth narrowing into a byte.
func AssembleGrid(values []int, geom GridGeometry) (RiskGrid, error) {
	want := geom.Rows * geom.Cols
	if len(values) != want {
		return RiskGrid{}, &DecodeError{
			Kind: ErrGridSizeMismatch, Section: 7, Offset: -1,
			Expected: strconv.Itoa(want) + " cells (" + strconv.Itoa(geom.Rows) + "x" + strconv.Itoa(geom.Cols) + ")",
			Found:    strconv.Itoa(len(values)) + " cells",
		}
	}

	levels := make([]uint8, len(values))
	for i, v := range values {
		switch {
		case v < levelBias:
			levels[i] = SentinelLevel
		case v-levelBias > maxLevel:
			return RiskGrid{}, &DecodeError{
				Kind: ErrRiskLevelOutOfRange, Section: 7, Offset: -1,
				Expected: "a level in [0, " + strconv.Itoa(maxLevel) + "]",
				Found:    strconv.Itoa(v - levelBias),
			}
		default:
			levels[i] = uint8(v - levelBias)
		}
	}
	return RiskGrid{Rows: geom.Rows, Cols: geom.Cols, Levels: levels}, nil
}
