// Package fileinfo mines slicer metadata out of the head and tail of a
// print file without scanning its middle: it runs a gcode.Tokenizer over a
// bounded prefix (forward) and a bounded suffix (via a ReverseLineReader),
// applying configured regex extractors to comment text and tracking the
// absolute-mode Z moves that reveal layer heights.
package fileinfo

import (
	"github.com/duet3d/gcode/internal/grainedtime"
)

// ParsedFileInfo is the output record spec.md calls "Parsed file
// information". It's a plain record; encoding it for a transport is out of
// scope here.
type ParsedFileInfo struct {
	FileName     string // virtual path, as passed to Parse
	Size         int64
	LastModified grainedtime.Time

	FirstLayerHeight float64
	LayerHeight      float64
	Height           float64
	NumLayers        int

	Filament    []float64 // mm of filament, one entry per extruder the slicer reported
	GeneratedBy string

	PrintTimeSeconds     float64
	SimulatedTimeSeconds float64
}

// IsComplete reports whether every field the scan loop's early-stop
// heuristic cares about has been found: height, first_layer_height,
// layer_height, filament, and generated_by (spec.md 4.E's completeness
// predicate). Zero/empty is treated as "not yet found" for each of these —
// a real slicer-reported height, layer height, or filament length is always
// strictly positive, so this avoids needing a parallel set of "have X"
// booleans alongside the record itself.
func (info ParsedFileInfo) IsComplete() bool {
	return info.Height > 0 &&
		info.FirstLayerHeight > 0 &&
		info.LayerHeight > 0 &&
		len(info.Filament) > 0 &&
		info.GeneratedBy != ""
}

// finalizeNumLayers fills NumLayers from the derived invariant in spec.md's
// data model, when all three inputs are known and positive.
func finalizeNumLayers(info *ParsedFileInfo) {
	if info.FirstLayerHeight > 0 && info.LayerHeight > 0 && info.Height > 0 {
		info.NumLayers = roundToInt((info.Height-info.FirstLayerHeight)/info.LayerHeight) + 1
	}
}

func roundToInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
