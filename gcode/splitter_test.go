package gcode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet3d/gcode/gcode"
	"github.com/duet3d/gcode/internal/textutil"
)

func TestSplitter_implementsErrScanner(t *testing.T) {
	var _ textutil.ErrScanner = (*gcode.Splitter)(nil)
}

func TestSplitter_CopyScannerWithJoinsRenderedCodes(t *testing.T) {
	sp := gcode.NewSplitter(strings.NewReader("G1 X1\nG1 X2\n"))
	var buf bytes.Buffer
	n, err := textutil.CopyScannerWith(&buf, sp, []byte("|"))
	require.NoError(t, err)
	assert.Equal(t, "G1 X1|G1 X2", buf.String())
	assert.EqualValues(t, buf.Len(), n)
}

func TestSplitter_ErrNilWhenClean(t *testing.T) {
	sp := gcode.NewSplitter(strings.NewReader("G1 X1\n"))
	for sp.Scan() {
	}
	assert.NoError(t, sp.Err())
}
