package fileinfo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/duet3d/gcode/config"
)

// firstMatch tries each pattern against line in order and returns the first
// one that matches, along with its submatches. Spec.md 4.E: "the first
// match wins".
func firstMatch(patterns []*regexp.Regexp, line string) (*regexp.Regexp, []string) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return re, m
		}
	}
	return nil, nil
}

func namedGroup(re *regexp.Regexp, m []string, name string) (string, bool) {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return "", false
	}
	return m[idx], true
}

// extractLayerHeight applies the configured LayerHeightFilters, reading the
// "mm" named group.
func extractLayerHeight(patterns []*regexp.Regexp, line string) (float64, bool) {
	re, m := firstMatch(patterns, line)
	if re == nil {
		return 0, false
	}
	raw, ok := namedGroup(re, m, "mm")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractFilament applies the configured FilamentFilters. The "mm" group
// holds a comma-separated list of millimeter lengths (one per extruder);
// the "m" group holds the same in meters, scaled ×1000 to millimeters.
func extractFilament(patterns []*regexp.Regexp, line string) ([]float64, bool) {
	re, m := firstMatch(patterns, line)
	if re == nil {
		return nil, false
	}
	if raw, ok := namedGroup(re, m, "mm"); ok {
		return splitFloatList(raw, 1), true
	}
	if raw, ok := namedGroup(re, m, "m"); ok {
		return splitFloatList(raw, 1000), true
	}
	return nil, false
}

func splitFloatList(s string, scale float64) []float64 {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if v, err := strconv.ParseFloat(p, 64); err == nil {
			out = append(out, v*scale)
		}
	}
	return out
}

// extractGeneratedBy applies the configured GeneratedByFilters, reading
// capture group 1 as the slicer name.
func extractGeneratedBy(patterns []*regexp.Regexp, line string) (string, bool) {
	re, m := firstMatch(patterns, line)
	if re == nil || len(m) < 2 {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// extractDuration applies a PrintTimeFilters/SimulatedTimeFilters-shaped
// pattern list, summing whichever of the optional "h"/"m"/"s" named groups
// matched into a total number of seconds.
func extractDuration(patterns []*regexp.Regexp, line string) (float64, bool) {
	re, m := firstMatch(patterns, line)
	if re == nil {
		return 0, false
	}
	var total float64
	found := false
	for _, unit := range []struct {
		name  string
		scale float64
	}{
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	} {
		raw, ok := namedGroup(re, m, unit.name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue
		}
		total += v * unit.scale
		found = true
	}
	if !found {
		return 0, false
	}
	return total, true
}

// applyCommentExtractors tries each still-unset field's extractor against
// comment, in the order spec.md 4.E mandates: layer_height, filament_used,
// generated_by, print_time, simulated_time. It returns true if any field
// was newly populated.
func applyCommentExtractors(comment string, cfg *config.Compiled, info *ParsedFileInfo) bool {
	progressed := false

	if info.LayerHeight == 0 {
		if v, ok := extractLayerHeight(cfg.LayerHeightFilters, comment); ok {
			info.LayerHeight = v
			progressed = true
		}
	}
	if len(info.Filament) == 0 {
		if v, ok := extractFilament(cfg.FilamentFilters, comment); ok {
			info.Filament = v
			progressed = true
		}
	}
	if info.GeneratedBy == "" {
		if v, ok := extractGeneratedBy(cfg.GeneratedByFilters, comment); ok {
			info.GeneratedBy = v
			progressed = true
		}
	}
	if info.PrintTimeSeconds == 0 {
		if v, ok := extractDuration(cfg.PrintTimeFilters, comment); ok {
			info.PrintTimeSeconds = v
			progressed = true
		}
	}
	if info.SimulatedTimeSeconds == 0 {
		if v, ok := extractDuration(cfg.SimulatedTimeFilters, comment); ok {
			info.SimulatedTimeSeconds = v
			progressed = true
		}
	}

	return progressed
}
