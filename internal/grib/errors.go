package grib

import (
	"errors"
	"fmt"
)

// Decode failure kinds. Every error returned by this package wraps exactly
// one of these, so callers can classify failures with errors.Is without
// parsing messages. All of them are fatal for the record being decoded.
var (
	ErrMalformedHeader         = errors.New("malformed header")
	ErrUnexpectedSectionLength = errors.New("unexpected section length")
	ErrUnexpectedSectionNumber = errors.New("unexpected section number")
	ErrMissingEndMarker        = errors.New("missing end marker")
	ErrUnsupportedBitDepth     = errors.New("unsupported bit depth")
	ErrTruncatedPayload        = errors.New("truncated payload")
	ErrGridSizeMismatch        = errors.New("grid size mismatch")
	ErrRiskLevelOutOfRange     = errors.New("risk level out of range")
)

// DecodeError pins a decode failure to a section and byte offset of the
// record, with the expected and found values where that is meaningful.
// Section is -1 when the failure is not tied to a single section, Offset is
// -1 when no byte position applies.
type DecodeError struct {
	Kind     error
	Section  int
	Offset   int
	Expected string
	Found    string
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Section >= 0 {
		msg += fmt.Sprintf(": section %d", e.Section)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Expected != "" {
		msg += fmt.Sprintf(": expected %s, found %s", e.Expected, e.Found)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Kind }

// ErrorKind returns a short stable name for a decode failure, suitable as a
// metrics label. Errors not produced by this package map to "other".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrUnexpectedSectionLength):
		return "unexpected_section_length"
	case errors.Is(err, ErrUnexpectedSectionNumber):
		return "unexpected_section_number"
	case errors.Is(err, ErrMissingEndMarker):
		return "missing_end_marker"
	case errors.Is(err, ErrUnsupportedBitDepth):
		return "unsupported_bit_depth"
	case errors.Is(err, ErrTruncatedPayload):
		return "truncated_payload"
	case errors.Is(err, ErrGridSizeMismatch):
		return "grid_size_mismatch"
	case errors.Is(err, ErrRiskLevelOutOfRange):
		return "risk_level_out_of_range"
	default:
		return "other"
	}
}
