package grib

import "strconv"

// sec7HeaderLen is the four-octet length field plus the one-octet section
// number that precede the packed data in section 7.
const sec7HeaderLen = 5

// ReadCompressedSequence reads section 7's payload as fixed-width big-endian
// unsigned integers of params.BitDepth bits each. The datum count is the
// payload length divided by the datum width, so no read crosses into the end
// section.
func ReadCompressedSequence(data []byte, sections SectionTable, params CompressionParams) ([]uint32, error) {
	if params.BitDepth <= 0 || params.BitDepth%8 != 0 || params.BitDepth > 32 {
		return nil, &DecodeError{
			Kind: ErrUnsupportedBitDepth, Section: 5,
			Offset:   sections.Offsets[5] + sec5BitDepthOffset,
			Expected: "a multiple of 8 no larger than 32",
			Found:    strconv.Itoa(params.BitDepth) + " bits",
		}
	}
	bytesPerDatum := params.BitDepth / 8

	payloadLen := sections.Lengths[7] - sec7HeaderLen
	start := sections.Offsets[7] + sec7HeaderLen
	if payloadLen < 0 || payloadLen%bytesPerDatum != 0 || start+payloadLen > len(data) {
		return nil, &DecodeError{
			Kind: ErrTruncatedPayload, Section: 7, Offset: start,
			Expected: "a whole number of " + strconv.Itoa(bytesPerDatum) + "-octet datums",
			Found:    strconv.Itoa(payloadLen) + " payload octets",
		}
	}

	seq := make([]uint32, 0, payloadLen/bytesPerDatum)
	for off := start; off < start+payloadLen; off += bytesPerDatum {
		var v uint32
		for _, b := range data[off : off+bytesPerDatum] {
			v = v<<8 | uint32(b)
		}
		seq = append(seq, v)
	}
	return seq, nil
}
