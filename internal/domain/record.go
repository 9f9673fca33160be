package domain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

// observationStampLen is the YYYYMMDDHHNN run in a record file name.
const observationStampLen = 12

// ObservationTime is the (year, month, day, hour, minute) tuple a record's
// file name carries. It is stored as a parallel metadata row alongside each
// grid in the array store.
type ObservationTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// ParseObservationTime extracts the observation timestamp from a record file
// name: the twelve digits that follow the fixed center prefix, with field
// widths 4/2/2/2/2.
func ParseObservationTime(name, prefix string) (ObservationTime, error) {
	if len(name) < len(prefix)+observationStampLen {
		return ObservationTime{}, fmt.Errorf("file name %q too short for a %q timestamp", name, prefix+"YYYYMMDDHHNN")
	}
	if name[:len(prefix)] != prefix {
		return ObservationTime{}, fmt.Errorf("file name %q does not start with prefix %q", name, prefix)
	}

	stamp := name[len(prefix) : len(prefix)+observationStampLen]
	widths := [5]int{4, 2, 2, 2, 2}
	var fields [5]int
	pos := 0
	for i, w := range widths {
		v, err := strconv.Atoi(stamp[pos : pos+w])
		if err != nil {
			return ObservationTime{}, fmt.Errorf("file name %q: timestamp field %d is not numeric: %w", name, i, err)
		}
		fields[i] = v
		pos += w
	}

	return ObservationTime{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
	}, nil
}

// Stamp renders the tuple back into its twelve-digit file-name form.
func (o ObservationTime) Stamp() string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d", o.Year, o.Month, o.Day, o.Hour, o.Minute)
}

// String formats the tuple for logs and reports, e.g. "2024/04/26 15:10".
func (o ObservationTime) String() string {
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d", o.Year, o.Month, o.Day, o.Hour, o.Minute)
}

// Time converts the tuple to a UTC time.Time.
func (o ObservationTime) Time() time.Time {
	return time.Date(o.Year, time.Month(o.Month), o.Day, o.Hour, o.Minute, 0, 0, time.UTC)
}

// RawRecord is one undecoded record: the file's full contents read eagerly,
// its path, and the observation time derived from the name. Commit, when
// set, marks the record as durably handled so discovery will not hand it out
// again.
type RawRecord struct {
	Path     string
	Data     []byte
	Observed ObservationTime
	Commit   func(ctx context.Context) error
}

// DecodedRecord pairs a decoded grid with its metadata, ready for the store.
type DecodedRecord struct {
	Grid        grib.RiskGrid
	Geometry    grib.GridGeometry
	Observed    ObservationTime
	SourcePath  string
	ProcessedAt time.Time
}

// NewDecodedRecord assembles a DecodedRecord, stamping ProcessedAt from the
// package clock.
func NewDecodedRecord(grid grib.RiskGrid, geom grib.GridGeometry, raw RawRecord) DecodedRecord {
	return DecodedRecord{
		Grid:        grid,
		Geometry:    geom,
		Observed:    raw.Observed,
		SourcePath:  raw.Path,
		ProcessedAt: clock.Now(),
	}
}
