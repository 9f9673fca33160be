package grib

// Decode turns one binary record into its risk grid and geometry. It is
// all-or-nothing: any structural, payload, or range failure aborts the whole
// record with an error matching one of the package's sentinel kinds. The
// input buffer is only read, never retained; Decode may be called
// concurrently for independent records.
func Decode(data []byte) (RiskGrid, GridGeometry, error) {
	sections, err := ScanSections(data)
	if err != nil {
		return RiskGrid{}, GridGeometry{}, err
	}

	params := ReadCompressionParams(data, sections)
	geom := ReadGridGeometry(data, sections)

	seq, err := ReadCompressedSequence(data, sections, params)
	if err != nil {
		return RiskGrid{}, GridGeometry{}, err
	}

	grid, err := AssembleGrid(Decompress(seq, params), geom)
	if err != nil {
		return RiskGrid{}, GridGeometry{}, err
	}
	return grid, geom, nil
}
