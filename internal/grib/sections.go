package grib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// Fixed section lengths of the landslide-risk product. Sections 5 and 7
// declare their own length in their first four octets; section 2 never
// appears and contributes zero bytes.
const (
	numSections = 9

	sec0Len = 16 // indicator section, begins with "GRIB"
	sec1Len = 21 // identification section
	sec3Len = 72 // grid definition section
	sec4Len = 42 // product definition section
	sec6Len = 6  // bitmap section (bitmap not used)
	sec8Len = 4  // end section, "7777"
)

var (
	headMarker = []byte("GRIB")
	endMarker  = []byte("7777")
)

// SectionTable holds the byte length and cumulative start offset of each of
// the nine sections of one validated record. Offsets are contiguous:
// Offsets[i+1] = Offsets[i] + Lengths[i].
type SectionTable struct {
	Lengths [numSections]int
	Offsets [numSections]int
}

// ScanSections validates the fixed section framing of one record and returns
// the section table. Validation is a straight sequence of byte-offset checks;
// the first mismatch aborts with the section, offset, and expected-vs-found
// values, since any deviation means a wrong or corrupted file rather than a
// variant layout.
func ScanSections(data []byte) (SectionTable, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], headMarker) {
		return SectionTable{}, &DecodeError{
			Kind: ErrMalformedHeader, Section: 0, Offset: 0,
			Expected: `"GRIB"`, Found: foundBytes(data, 0, 4),
		}
	}

	off := sec0Len
	if err := checkFixedLength(data, 1, off, sec1Len); err != nil {
		return SectionTable{}, err
	}
	off += sec1Len

	// Section 2 is absent in this product; section 3 follows directly.
	if err := checkFixedLength(data, 3, off, sec3Len); err != nil {
		return SectionTable{}, err
	}
	off += sec3Len

	if err := checkFixedLength(data, 4, off, sec4Len); err != nil {
		return SectionTable{}, err
	}
	off += sec4Len

	s5Len, err := sectionLength(data, 5, off)
	if err != nil {
		return SectionTable{}, err
	}
	if err := checkSectionNumber(data, 5, off+4); err != nil {
		return SectionTable{}, err
	}
	off += s5Len

	if err := checkFixedLength(data, 6, off, sec6Len); err != nil {
		return SectionTable{}, err
	}
	off += sec6Len

	s7Len, err := sectionLength(data, 7, off)
	if err != nil {
		return SectionTable{}, err
	}
	if err := checkSectionNumber(data, 7, off+4); err != nil {
		return SectionTable{}, err
	}
	off += s7Len

	if off+4 > len(data) || !bytes.Equal(data[off:off+4], endMarker) {
		return SectionTable{}, &DecodeError{
			Kind: ErrMissingEndMarker, Section: 8, Offset: off,
			Expected: `"7777"`, Found: foundBytes(data, off, 4),
		}
	}

	t := SectionTable{
		Lengths: [numSections]int{sec0Len, sec1Len, 0, sec3Len, sec4Len, s5Len, sec6Len, s7Len, sec8Len},
	}
	for i := 1; i < numSections; i++ {
		t.Offsets[i] = t.Offsets[i-1] + t.Lengths[i-1]
	}
	return t, nil
}

// sectionLength reads the four-octet big-endian length a section declares
// for itself.
func sectionLength(data []byte, section, off int) (int, error) {
	if off+4 > len(data) {
		return 0, &DecodeError{
			Kind: ErrTruncatedPayload, Section: section, Offset: off,
			Expected: "4-octet section length", Found: "end of record",
		}
	}
	return int(binary.BigEndian.Uint32(data[off : off+4])), nil
}

// checkFixedLength verifies that a section declares the length this product
// always uses for it.
func checkFixedLength(data []byte, section, off, want int) error {
	got, err := sectionLength(data, section, off)
	if err != nil {
		return err
	}
	if got != want {
		return &DecodeError{
			Kind: ErrUnexpectedSectionLength, Section: section, Offset: off,
			Expected: strconv.Itoa(want), Found: strconv.Itoa(got),
		}
	}
	return nil
}

// checkSectionNumber verifies the one-octet section number that follows the
// length field of the variable-length sections.
func checkSectionNumber(data []byte, section, off int) error {
	if off >= len(data) {
		return &DecodeError{
			Kind: ErrTruncatedPayload, Section: section, Offset: off,
			Expected: "section number octet", Found: "end of record",
		}
	}
	if int(data[off]) != section {
		return &DecodeError{
			Kind: ErrUnexpectedSectionNumber, Section: section, Offset: off,
			Expected: strconv.Itoa(section), Found: strconv.Itoa(int(data[off])),
		}
	}
	return nil
}

// foundBytes renders up to n bytes at off for error messages, tolerating
// short buffers.
func foundBytes(data []byte, off, n int) string {
	if off >= len(data) {
		return "end of record"
	}
	end := off + n
	if end > len(data) {
		end = len(data)
	}
	return fmt.Sprintf("%q", data[off:end])
}
