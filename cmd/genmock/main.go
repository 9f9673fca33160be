// Command genmock writes synthetic landslide-risk record files for tests and
// demos. It uses the same fixture builder as the decoder's test suite, so the
// generated files exercise real decode behavior, including run-length groups
// that span multiple continuation digits.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -count 6 -rows 8 -cols 8
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/mizulab/dosha-risk-etl/internal/config"
	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib/gribtest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for generated record files")
	count := flag.Int("count", 6, "number of records to generate, ten minutes apart")
	rows := flag.Int("rows", 8, "grid rows")
	cols := flag.Int("cols", 8, "grid columns")
	seed := flag.Int64("seed", 1, "random seed for reproducible grids")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	observed := time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)

	for i := 0; i < *count; i++ {
		rec := gribtest.Grid(*rows, *cols, mockLevels(rng, *rows**cols))
		name := mockFileName(observed)
		path := filepath.Join(*out, name)
		if err := os.WriteFile(path, rec.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("wrote %s (%dx%d)", path, *rows, *cols)
		observed = observed.Add(10 * time.Minute)
	}

	log.Printf("generated %d records", *count)
	return nil
}

// mockLevels produces raw cell values with long quiet runs broken by small
// risk pockets, roughly the texture of real records: mostly sea/quiet cells
// (raw 0, decoded to the no-data sentinel) with occasional levels 1-5
// (raw 4-8).
func mockLevels(rng *rand.Rand, n int) []int {
	values := make([]int, n)
	i := 0
	for i < n {
		run := 1 + rng.Intn(n/4+1)
		if i+run > n {
			run = n - i
		}
		v := 0
		if rng.Intn(3) == 0 {
			v = 4 + rng.Intn(5)
		}
		for j := 0; j < run; j++ {
			values[i+j] = v
		}
		i += run
	}
	return values
}

// mockFileName renders the agency naming convention for a given observation
// time.
func mockFileName(t time.Time) string {
	observed := domain.ObservationTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
	return config.FileNamePrefix + observed.Stamp() + "00_MET_INF_Jdosha_Ggis5km_ANAL_grib2.bin"
}
