package gcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet3d/gcode/gcode"
)

func mustSplit(t *testing.T, src string) []gcode.Code {
	t.Helper()
	codes, err := gcode.Split(src)
	require.NoError(t, err)
	return codes
}

func TestSplit_bareAxisLetters(t *testing.T) {
	codes := mustSplit(t, "G28 X Y\n")
	require.Len(t, codes, 1)
	c := codes[0]
	assert.Equal(t, gcode.TypeGCode, c.Type)
	assert.Equal(t, 28, c.MajorNumber)
	require.Len(t, c.Parameters, 2)
	assert.Equal(t, byte('X'), c.Parameters[0].Letter)
	assert.Equal(t, byte('Y'), c.Parameters[1].Letter)
	v, err := c.Parameters[0].AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestSplit_trailingSemicolonComment(t *testing.T) {
	codes := mustSplit(t, "G29 S1 ; load heightmap\n")
	require.Len(t, codes, 1)
	assert.Equal(t, " load heightmap", codes[0].Comment)
	p, ok := codes[0].Param('S')
	require.True(t, ok)
	n, err := p.AsInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSplit_minorNumber(t *testing.T) {
	codes := mustSplit(t, "G54.6\n")
	require.Len(t, codes, 1)
	assert.Equal(t, 54, codes[0].MajorNumber)
	assert.Equal(t, 6, codes[0].MinorNumber)
}

func TestSplit_bareG53PropagatesAcrossSiblings(t *testing.T) {
	codes := mustSplit(t, "G53 G1 X100 G0 Y200\nG1 Z50\n")
	require.Len(t, codes, 3)

	assert.Equal(t, 1, codes[0].MajorNumber)
	assert.True(t, codes[0].Flags.Has(gcode.FlagEnforceAbsolutePosition))
	x, _ := codes[0].Param('X')
	xv, err := x.AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 100.0, xv)

	assert.Equal(t, 0, codes[1].MajorNumber)
	assert.True(t, codes[1].Flags.Has(gcode.FlagEnforceAbsolutePosition))

	assert.Equal(t, 1, codes[2].MajorNumber)
	assert.False(t, codes[2].Flags.Has(gcode.FlagEnforceAbsolutePosition))
}

func TestSplit_quotedStringWithDoubledQuoteEscape(t *testing.T) {
	codes := mustSplit(t, `M106 P1 C"Fancy "" Fan" H-1 S0.5`+"\n")
	require.Len(t, codes, 1)
	c := codes[0]
	assert.Equal(t, gcode.TypeMCode, c.Type)
	assert.Equal(t, 106, c.MajorNumber)

	cp, ok := c.Param('C')
	require.True(t, ok)
	s, err := cp.AsString()
	require.NoError(t, err)
	assert.Equal(t, `Fancy " Fan`, s)

	hp, ok := c.Param('H')
	require.True(t, ok)
	hv, err := hp.AsInteger()
	require.NoError(t, err)
	assert.EqualValues(t, -1, hv)
}

func TestSplit_dottedDriverIDParam(t *testing.T) {
	codes := mustSplit(t, "M569 P1.2 S1 T0.5\n")
	require.Len(t, codes, 1)
	c := codes[0]

	pp, ok := c.Param('P')
	require.True(t, ok)
	id, err := pp.AsDriverID()
	require.NoError(t, err)
	assert.Equal(t, gcode.DriverID{Board: 1, Driver: 2}, id)

	tp, ok := c.Param('T')
	require.True(t, ok)
	tv, err := tp.AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 0.5, tv)
}

func TestSplit_colonSeparatedDriverIDArrayParam(t *testing.T) {
	codes := mustSplit(t, "M915 P2:0.3:1.4 S22\n")
	require.Len(t, codes, 1)
	pp, ok := codes[0].Param('P')
	require.True(t, ok)
	arr, err := pp.AsDriverIDArray()
	require.NoError(t, err)
	require.Len(t, arr, 3)
	assert.EqualValues(t, 2, arr[0].Pack())
	assert.EqualValues(t, 3, arr[1].Pack())
	assert.EqualValues(t, (1<<16)|4, arr[2].Pack())

	sp, ok := codes[0].Param('S')
	require.True(t, ok)
	sv, err := sp.AsInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 22, sv)
}

func TestSplit_keywordLine(t *testing.T) {
	codes := mustSplit(t, "  if machine.tool.is.great <= 0.03 (some nice) ; comment\n")
	require.Len(t, codes, 1)
	c := codes[0]
	assert.Equal(t, gcode.TypeKeyword, c.Type)
	assert.Equal(t, gcode.KeywordIf, c.Keyword)
	assert.Equal(t, "machine.tool.is.great <= 0.03", c.Condition)
	assert.Equal(t, "some nice comment", c.Comment)
	assert.Equal(t, 2, c.Indent)
}

func TestSplit_noSpaceBeforeQuotedValue(t *testing.T) {
	codes := mustSplit(t, `M302D"dummy"P1`+"\n")
	require.Len(t, codes, 1)
	c := codes[0]
	dp, ok := c.Param('D')
	require.True(t, ok)
	s, err := dp.AsString()
	require.NoError(t, err)
	assert.Equal(t, "dummy", s)
	pp, ok := c.Param('P')
	require.True(t, ok)
	pv, err := pp.AsInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 1, pv)
}

func TestSplit_leadingWhitespaceAndLineNumber(t *testing.T) {
	codes := mustSplit(t, "  N123 G1 X5 Y3\n")
	require.Len(t, codes, 1)
	c := codes[0]
	assert.EqualValues(t, 123, c.LineNumber)
	assert.Equal(t, 1, c.MajorNumber)
	assert.Equal(t, 2, c.Indent)
}

func TestSplit_wholeLineComment(t *testing.T) {
	codes := mustSplit(t, "; just a comment\n")
	require.Len(t, codes, 1)
	assert.Equal(t, gcode.TypeComment, codes[0].Type)
	assert.Equal(t, " just a comment", codes[0].Comment)
}

func TestSplit_asyncMarker(t *testing.T) {
	codes := mustSplit(t, "&G4 P500\n")
	require.Len(t, codes, 1)
	assert.True(t, codes[0].Flags.Has(gcode.FlagAsynchronous))
}

func TestSplit_blankLinesProduceTypeNone(t *testing.T) {
	codes := mustSplit(t, "G1 X1\n\n\nG1 X2\n")
	require.Len(t, codes, 4)
	assert.Equal(t, gcode.TypeGCode, codes[0].Type)
	assert.Equal(t, gcode.TypeNone, codes[1].Type)
	assert.Equal(t, gcode.TypeNone, codes[2].Type)
	assert.Equal(t, gcode.TypeGCode, codes[3].Type)
}

func TestSplit_lineNumberOnlyLineProducesTypeNone(t *testing.T) {
	codes := mustSplit(t, "  N123\n")
	require.Len(t, codes, 1)
	c := codes[0]
	assert.Equal(t, gcode.TypeNone, c.Type)
	assert.EqualValues(t, 123, c.LineNumber)
	assert.Equal(t, 2, c.Indent)
}

func TestSplit_unrecognizedCommandLetterIsParseError(t *testing.T) {
	_, err := gcode.Split("Q123\n")
	require.Error(t, err)
	var perr *gcode.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestReusableTokenizer_resetBetweenParses(t *testing.T) {
	tok := gcode.NewReusableTokenizer(strings.NewReader("G1 X1\nG1 X2\n"))
	var a, b gcode.Code
	// A reusable tokenizer's Code is only valid until the next Parse, so a
	// is read before b is parsed.
	require.NoError(t, tok.Parse(&a))
	xa, _ := a.Param('X')
	av, _ := xa.AsFloat()
	require.NoError(t, tok.Parse(&b))
	xb, _ := b.Param('X')
	bv, _ := xb.AsFloat()
	assert.Equal(t, 1.0, av)
	assert.Equal(t, 2.0, bv)
}
