package grib

// Decompress expands the run-length compressed sequence into one raw value
// per grid cell. A value at or below MaxLiteral starts a new group; a larger
// value is one more digit of the open group's repeat count. The stream always
// ends with an open group, which is flushed with the same logic used
// mid-stream.
func Decompress(seq []uint32, params CompressionParams) []int {
	maxLiteral := uint32(params.MaxLiteral)

	out := make([]int, 0, len(seq))
	var literal uint32
	haveLiteral := false
	var codes []uint32

	flush := func() {
		n := repeatCount(codes, params)
		for ; n > 0; n-- {
			out = append(out, int(literal))
		}
		codes = codes[:0]
	}

	for _, v := range seq {
		switch {
		case !haveLiteral:
			// Stream start: the encoder guarantees the first value is a literal.
			literal = v
			haveLiteral = true
		case v <= maxLiteral:
			flush()
			literal = v
		default:
			codes = append(codes, v)
		}
	}
	if haveLiteral {
		flush()
	}
	return out
}

// repeatCount evaluates a group's mixed-radix run length: digits are base
// Radix, least significant first, each continuation code shifted down by
// MaxLiteral+1. No digits means the literal appeared exactly once.
func repeatCount(codes []uint32, params CompressionParams) uint64 {
	base := uint64(params.Radix())
	shift := uint64(params.MaxLiteral + 1)

	n := uint64(1)
	weight := uint64(1)
	for _, c := range codes {
		n += weight * (uint64(c) - shift)
		weight *= base
	}
	return n
}
