package fileinfo_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duet3d/gcode/fileinfo"
)

func TestReverseLineReader_yieldsLinesBackward(t *testing.T) {
	data := []byte("a\nb\nc")
	rr := fileinfo.NewReverseLineReader(bytes.NewReader(data), int64(len(data)), 64)

	var got []string
	for {
		line, err := rr.ReadLine()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, line)
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestReverseLineReader_stripsSingleTrailingNewline(t *testing.T) {
	data := []byte("a\nb\n")
	rr := fileinfo.NewReverseLineReader(bytes.NewReader(data), int64(len(data)), 64)

	line, err := rr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "b", line)

	line, err = rr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "a", line)

	_, err = rr.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestReverseLineReader_stripsCRLF(t *testing.T) {
	data := []byte("a\r\nb\r\n")
	rr := fileinfo.NewReverseLineReader(bytes.NewReader(data), int64(len(data)), 64)

	line, err := rr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "b", line)

	line, err = rr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "a", line)
}

func TestReverseLineReader_truncatesLinesLongerThanBuffer(t *testing.T) {
	long := string(bytes.Repeat([]byte("x"), 10))
	rr := fileinfo.NewReverseLineReader(bytes.NewReader([]byte(long)), int64(len(long)), 4)

	var total int
	for {
		line, err := rr.ReadLine()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.LessOrEqual(t, len(line), 4)
		total += len(line)
	}
	assert.Equal(t, len(long), total)
}

func TestLineFeed_feedsReversedLinesToAReader(t *testing.T) {
	data := []byte("G1 X1\nG1 X2\nG1 X3")
	rr := fileinfo.NewReverseLineReader(bytes.NewReader(data), int64(len(data)), 64)
	feed := fileinfo.NewLineFeed(rr)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(feed)
	require.NoError(t, err)
	assert.Equal(t, "G1 X3\nG1 X2\nG1 X1\n", buf.String())
}
