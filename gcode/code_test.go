package gcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duet3d/gcode/gcode"
)

func TestFlags_Has(t *testing.T) {
	var f gcode.Flags
	assert.False(t, f.Has(gcode.FlagAsynchronous))
	f |= gcode.FlagAsynchronous
	assert.True(t, f.Has(gcode.FlagAsynchronous))
	assert.False(t, f.Has(gcode.FlagEnforceAbsolutePosition))
	f |= gcode.FlagEnforceAbsolutePosition
	assert.True(t, f.Has(gcode.FlagAsynchronous|gcode.FlagEnforceAbsolutePosition))
}

func TestCode_ResetRetainsParametersBackingArray(t *testing.T) {
	codes, err := gcode.Split("G1 X1 Y2\n")
	if err != nil {
		t.Fatal(err)
	}
	c := codes[0]
	before := cap(c.Parameters)
	c.Reset()
	assert.Equal(t, gcode.TypeNone, c.Type)
	assert.Empty(t, c.Parameters)
	assert.Equal(t, before, cap(c.Parameters))
}

func TestCode_String(t *testing.T) {
	codes, err := gcode.Split("G1 X1 ; move\n")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "G1 X1 ; move", codes[0].String())
}

func TestCodeType_String(t *testing.T) {
	assert.Equal(t, "GCode", gcode.TypeGCode.String())
	assert.Equal(t, "MCode", gcode.TypeMCode.String())
	assert.Equal(t, "Keyword", gcode.TypeKeyword.String())
}

func TestKeyword_String(t *testing.T) {
	assert.Equal(t, "if", gcode.KeywordIf.String())
	assert.Equal(t, "continue", gcode.KeywordContinue.String())
}
