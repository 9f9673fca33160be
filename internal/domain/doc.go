// Package domain models the JMA landslide-risk (dosha) mesh product as it
// moves through the pipeline.
//
// # Data source
//
// The Japan Meteorological Agency publishes landslide-risk ("dosha saigai")
// analyses every ten minutes as binary records in a fixed GRIB2-derived
// encoding (JMA Technical Report 374). Each record covers the whole
// archipelago on a 5 km mesh: in the production configuration 560 latitude
// rows from 47.975°N down to 20.025°N and 512 longitude columns from
// 118.03125°E to 149.96875°E.
//
// # File naming
//
// Record files follow the agency convention
//
//	Z__C_RJTD_YYYYMMDDHHNN00_MET_INF_Jdosha_Ggis5km_ANAL_grib2.bin
//
// The observation timestamp is carried only in the name, at a fixed position
// after the ten-character center prefix, with field widths 4/2/2/2/2
// (year, month, day, hour, minute). See [ParseObservationTime].
//
// # Risk levels
//
// Decoded cells are small categorical risk levels; 99 is the sentinel for
// "no data / below reporting threshold" (sea cells and quiet land). The
// decode itself lives in the grib package; domain carries the decoded grid
// together with its observation time and provenance.
package domain
