// Package detection locates horizontal staff lines in a sheet-music pixel grid.
//
// The package is pure computation: it consumes decoded pixel intensities and
// produces line geometry. Image decoding lives in the imaging package.
//
// # Pipeline
//
// Detection runs in three stages:
//
//  1. Row profiling: each row is reduced to its mean intensity (RowValues, or
//     RowProfiler when rows arrive one at a time).
//  2. Classification and grouping: rows at or below mean - stddev of all row
//     values are dark (ClassifyRows); consecutive dark rows are run-length
//     encoded into Segments (GroupDarkRuns).
//  3. Staff validation: five consecutive segments form a regular staff when
//     their line thickness and spacing each vary by at most the thinnest
//     sampled line (IsRegularStaff). FindStaves applies it over a sliding
//     window.
//
// Analyze chains the three stages and returns every intermediate result.
//
// # Coordinate System
//
// Row indices are 0-based from the top of the grid. A Segment covers rows
// [Start, Start+Thickness).
//
// # Intensity Encoding
//
// Lower values are darker. Staff lines are expected to be ink on a light
// background and to occupy a minority of rows; scans with light ink on a
// dark background must be inverted first.
//
// # Limitations
//
// Only horizontal lines are detected. Skewed or rotated staves are not
// corrected and the threshold is global, not per region.
//
// # Concurrency
//
// All functions are pure and safe for concurrent use on different inputs.
// RowProfiler holds state and must not be shared between goroutines.
package detection
