package fileinfo

import (
	"bytes"
	"io"
)

// ReverseLineReader yields lines from a seekable byte source starting at
// end-of-data and working toward the beginning, per spec.md 4.F. It reads
// in fixed-size chunks positioned immediately before whatever has already
// been buffered, so it never needs the whole tail of a large file in
// memory at once.
type ReverseLineReader struct {
	r       io.ReaderAt
	bufSize int
	filePos int64  // file offset of pending[0]; data before this is unread
	pending []byte // buffered, not-yet-returned bytes at [filePos, filePos+len(pending))
}

// NewReverseLineReader returns a reader over the first size bytes of r,
// scanning backward with bufSize-sized fill reads. A single trailing
// newline (the common end-of-file terminator) is stripped up front so it
// doesn't surface as a spurious empty final line.
func NewReverseLineReader(r io.ReaderAt, size int64, bufSize int) *ReverseLineReader {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &ReverseLineReader{r: r, bufSize: bufSize, filePos: trimTrailingNewline(r, size)}
}

func trimTrailingNewline(r io.ReaderAt, size int64) int64 {
	if size == 0 {
		return 0
	}
	var b [1]byte
	if _, err := r.ReadAt(b[:], size-1); err != nil || b[0] != '\n' {
		return size
	}
	size--
	if size == 0 {
		return 0
	}
	if _, err := r.ReadAt(b[:], size-1); err == nil && b[0] == '\r' {
		size--
	}
	return size
}

// ReadLine returns the next line, scanning toward the start of the data,
// with its line terminator stripped (both "\n" and a preceding "\r"). It
// returns io.EOF once both the buffer is drained and the cursor has
// reached byte 0. Lines longer than bufSize are truncated: the contract is
// that lines up to bufSize bytes are delivered intact, longer ones may be
// split across multiple ReadLine calls.
func (rr *ReverseLineReader) ReadLine() (string, error) {
	for {
		if i := bytes.LastIndexByte(rr.pending, '\n'); i >= 0 {
			line := rr.pending[i+1:]
			rr.pending = rr.pending[:i]
			return trimCR(string(line)), nil
		}
		if len(rr.pending) >= rr.bufSize {
			line := rr.pending[len(rr.pending)-rr.bufSize:]
			rr.pending = rr.pending[:len(rr.pending)-rr.bufSize]
			return trimCR(string(line)), nil
		}
		if rr.filePos == 0 {
			if len(rr.pending) == 0 {
				return "", io.EOF
			}
			line := rr.pending
			rr.pending = nil
			return trimCR(string(line)), nil
		}
		if err := rr.fill(); err != nil {
			return "", err
		}
	}
}

func (rr *ReverseLineReader) fill() error {
	n := rr.bufSize
	if int64(n) > rr.filePos {
		n = int(rr.filePos)
	}
	start := rr.filePos - int64(n)
	chunk := make([]byte, n)
	if _, err := rr.r.ReadAt(chunk, start); err != nil && err != io.EOF {
		return err
	}
	rr.pending = append(chunk, rr.pending...)
	rr.filePos = start
	return nil
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

// LineFeed adapts a ReverseLineReader into an io.Reader that yields whole
// lines, each followed by a single "\n", in the reverse reader's delivery
// order. This is what lets the footer scan drive the same gcode.Tokenizer
// the header scan uses (component E wired to F feeding B, per spec.md's
// data-flow description) instead of needing a second tokenizing path.
type LineFeed struct {
	rr  *ReverseLineReader
	buf []byte
	err error
}

// NewLineFeed wraps rr as an io.Reader.
func NewLineFeed(rr *ReverseLineReader) *LineFeed {
	return &LineFeed{rr: rr}
}

// Read implements io.Reader.
func (f *LineFeed) Read(p []byte) (int, error) {
	for len(f.buf) == 0 {
		if f.err != nil {
			return 0, f.err
		}
		line, err := f.rr.ReadLine()
		if err != nil {
			f.err = err
			continue
		}
		f.buf = append(f.buf[:0], line...)
		f.buf = append(f.buf, '\n')
	}
	n := copy(p, f.buf)
	f.buf = f.buf[n:]
	return n, nil
}
