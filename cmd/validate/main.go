// Command validate decodes one or more landslide-risk record files and
// reports their structure: section layout, packing parameters, grid geometry,
// and a risk-level histogram. It also cross-checks each decoded grid against
// the configured production geometry.
//
// Usage:
//
//	go run ./cmd/validate Z__C_RJTD_202404261510*.bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mizulab/dosha-risk-etl/internal/config"
	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: validate <record file>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range os.Args[1:] {
		if err := validateFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: FAIL: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d files failed\n", failed, len(os.Args)-1)
		os.Exit(1)
	}
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", path)

	if observed, err := domain.ParseObservationTime(filepath.Base(path), config.FileNamePrefix); err != nil {
		fmt.Printf("  observed:  (no timestamp in file name: %v)\n", err)
	} else {
		fmt.Printf("  observed:  %s\n", observed)
	}

	sections, err := grib.ScanSections(data)
	if err != nil {
		return err
	}
	fmt.Print("  sections:  ")
	for i, l := range sections.Lengths {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Printf("%d@%d", l, sections.Offsets[i])
	}
	fmt.Println()

	params := grib.ReadCompressionParams(data, sections)
	fmt.Printf("  packing:   %d bits/datum, max literal %d, radix %d\n",
		params.BitDepth, params.MaxLiteral, params.Radix())

	grid, geom, err := grib.Decode(data)
	if err != nil {
		return err
	}
	fmt.Printf("  geometry:  %dx%d, lat %.6f..%.6f step %.6f, lon %.6f..%.6f step %.6f\n",
		geom.Rows, geom.Cols,
		geom.FirstLat, geom.LastLat, geom.LatStep,
		geom.FirstLon, geom.LastLon, geom.LonStep)

	hist := make(map[uint8]int)
	for _, l := range grid.Levels {
		hist[l]++
	}
	fmt.Print("  levels:    ")
	first := true
	for l := 0; l <= 255; l++ {
		if n, ok := hist[uint8(l)]; ok {
			if !first {
				fmt.Print(", ")
			}
			if l == grib.SentinelLevel {
				fmt.Printf("no-data: %d", n)
			} else {
				fmt.Printf("%d: %d", l, n)
			}
			first = false
		}
	}
	fmt.Println()

	if geom.Rows != config.ExpectedRows || geom.Cols != config.ExpectedCols {
		return fmt.Errorf("grid %dx%d does not match configured %dx%d",
			geom.Rows, geom.Cols, config.ExpectedRows, config.ExpectedCols)
	}

	fmt.Println("  PASS")
	return nil
}
