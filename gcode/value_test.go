package gcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet3d/gcode/gcode"
)

func param(t *testing.T, letter byte, raw string) gcode.Parameter {
	t.Helper()
	codes, err := gcode.Split("G1 " + string(letter) + raw + "\n")
	require.NoError(t, err)
	require.Len(t, codes, 1)
	p, ok := codes[0].Param(letter)
	require.True(t, ok)
	return p
}

func TestParameter_AsIntegerTruncatesFloat(t *testing.T) {
	p := param(t, 'X', "3.9")
	v, err := p.AsInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}

func TestParameter_AsUnsignedRejectsNegative(t *testing.T) {
	p := param(t, 'X', "-1")
	_, err := p.AsUnsigned()
	require.Error(t, err)
	var mismatch *gcode.TypeMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestParameter_AsBoolFromNumeric(t *testing.T) {
	p := param(t, 'S', "0")
	v, err := p.AsBool()
	require.NoError(t, err)
	assert.False(t, v)

	p = param(t, 'S', "1")
	v, err = p.AsBool()
	require.NoError(t, err)
	assert.True(t, v)
}

func TestParameter_ExpressionRejectsNumericCoercion(t *testing.T) {
	p := param(t, 'S', "{state.nozzle.temp}")
	assert.True(t, p.IsExpression())
	_, err := p.AsFloat()
	require.Error(t, err)
}

func TestParameter_AsIntArrayRejectsTrailingColon(t *testing.T) {
	p := param(t, 'P', "1:2:")
	_, err := p.AsIntArray()
	require.Error(t, err)
}

func TestParameter_AsIntArraySingleton(t *testing.T) {
	p := param(t, 'P', "5")
	arr, err := p.AsIntArray()
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, arr)
}

func TestParameter_AsDriverIDFromPackedInteger(t *testing.T) {
	p := param(t, 'P', "65538") // board 1, driver 2
	id, err := p.AsDriverID()
	require.NoError(t, err)
	assert.Equal(t, gcode.DriverID{Board: 1, Driver: 2}, id)
}

func TestDriverID_StringRoundTrips(t *testing.T) {
	id := gcode.DriverID{Board: 2, Driver: 7}
	assert.Equal(t, "2.7", id.String())
	assert.EqualValues(t, 2<<16|7, id.Pack())
}
