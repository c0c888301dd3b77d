package fileinfo_test

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet3d/gcode/config"
	"github.com/duet3d/gcode/fileinfo"
)

type nopCloserReaderAt struct{ *bytes.Reader }

func (nopCloserReaderAt) Close() error { return nil }

func testConfig() *config.Compiled {
	return &config.Compiled{
		Config: config.Config{
			FileInfoReadBufferSize:  64,
			FileInfoReadLimitHeader: 4096,
			FileInfoReadLimitFooter: 4096,
			MaxLayerHeight:          0.5,
		},
		LayerHeightFilters:   []*regexp.Regexp{regexp.MustCompile(`(?i)layer height\s*=\s*(?P<mm>[0-9.]+)`)},
		FilamentFilters:      []*regexp.Regexp{regexp.MustCompile(`(?i)filament used \[mm\]\s*=\s*(?P<mm>[0-9.,\s]+)`)},
		GeneratedByFilters:   []*regexp.Regexp{regexp.MustCompile(`(?i)generated by (.+)`)},
		PrintTimeFilters:     []*regexp.Regexp{regexp.MustCompile(`(?i)estimated printing time.*?(?P<h>\d+)h\s*(?P<m>\d+)m\s*(?P<s>\d+)s`)},
		SimulatedTimeFilters: []*regexp.Regexp{regexp.MustCompile(`(?i)simulated printing time.*?(?P<h>\d+)h\s*(?P<m>\d+)m\s*(?P<s>\d+)s`)},
	}
}

const sampleFile = `; generated by PrusaSlicer 2.6.0 on 2024-01-01 at 00:00:00
; filament used [mm] = 1234.5, 10.0
; layer height = 0.2
G28 ; home
G90
G1 Z0.2 F600
G1 X10 Y10 E1 ; extrude
G1 X20 Y20 E2
G1 Z10 ; raise
G1 Z10.2
G1 X0 Y0
M107
; estimated printing time (normal mode) = 1h 2m 3s
`

func TestParse_headerAndFooterExtraction(t *testing.T) {
	src := nopCloserReaderAt{bytes.NewReader([]byte(sampleFile))}
	info, err := fileinfo.Parse(context.Background(), src, int64(len(sampleFile)), 0, "0:/sample.gcode", testConfig())
	require.NoError(t, err)

	assert.Equal(t, "0:/sample.gcode", info.FileName)
	assert.InDelta(t, 0.2, info.FirstLayerHeight, 1e-9)
	assert.InDelta(t, 0.2, info.LayerHeight, 1e-9)
	assert.Equal(t, []float64{1234.5, 10.0}, info.Filament)
	assert.Contains(t, info.GeneratedBy, "PrusaSlicer")
	assert.InDelta(t, 3723, info.PrintTimeSeconds, 1e-9)
	assert.InDelta(t, 10.2, info.Height, 1e-9)
	assert.True(t, info.IsComplete())
	assert.Equal(t, 51, info.NumLayers)
}

func TestParse_footerExcludesRelativeModeZMove(t *testing.T) {
	const footerOnly = `G91
G1 Z5
G90
M84
`
	src := nopCloserReaderAt{bytes.NewReader([]byte(footerOnly))}
	info, err := fileinfo.Parse(context.Background(), src, int64(len(footerOnly)), 0, "0:/footer.gcode", testConfig())
	require.NoError(t, err)
	assert.Equal(t, float64(0), info.Height)
}

func TestParse_footerExcludesLeadingEComment(t *testing.T) {
	const footerOnly = `G90
G1 Z0.4 ; E-compensation
M84
`
	src := nopCloserReaderAt{bytes.NewReader([]byte(footerOnly))}
	info, err := fileinfo.Parse(context.Background(), src, int64(len(footerOnly)), 0, "0:/footer.gcode", testConfig())
	require.NoError(t, err)
	assert.Equal(t, float64(0), info.Height)
}

func TestParse_cancelledContextAborts(t *testing.T) {
	src := nopCloserReaderAt{bytes.NewReader([]byte(sampleFile))}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fileinfo.Parse(ctx, src, int64(len(sampleFile)), 0, "0:/sample.gcode", testConfig())
	require.Error(t, err)
}
