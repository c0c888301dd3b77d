// Package arena provides a byte arena and range-handle ("Token") pair, so
// that a tokenizer can hand out references to parsed text (a parameter's raw
// value) without allocating a separate Go string per field. This is what backs the gcode.Tokenizer "reset" contract used by
// fileinfo's header/footer scan loops, which parse one line at a time and
// would otherwise allocate on every single code.
package arena

import "fmt"

// Arena implements an io.Writer that stores bytes in an internal buffer,
// allowing Token handles to be taken against them.
type Arena struct {
	buf []byte // internal buffer
	cur int    // write cursor
}

// Write stores p bytes into the internal buffer, returning len(p) and nil error.
func (a *Arena) Write(p []byte) (int, error) {
	a.buf = append(a.buf, p...)
	return len(p), nil
}

// WriteString stores s bytes into the internal buffer, returning len(s) and nil error.
func (a *Arena) WriteString(s string) (int, error) {
	a.buf = append(a.buf, s...)
	return len(s), nil
}

// WriteByte stores a single byte into the internal buffer.
func (a *Arena) WriteByte(c byte) error {
	a.buf = append(a.buf, c)
	return nil
}

// Take returns a Token referencing any bytes written into the arena since
// the last taken token.
func (a *Arena) Take() (token Token) {
	token.arena = a
	token.start = a.cur
	token.end = len(a.buf)
	a.cur = token.end
	return token
}

// Reset discards all bytes from the arena, resetting the internal buffer for reuse.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
	a.cur = 0
}

// PruneTo discards any bytes from the arena that aren't referenced by a
// token in remain: callers pass the tokens they still need, and everything
// written after the last of them is dropped. (gcode.Tokenizer does not call
// this; it Resets the arena before each physical line.)
func (a *Arena) PruneTo(remain []Token) {
	offset := 0
	for _, token := range remain {
		if token.arena == a && offset < token.end {
			offset = token.end
		}
	}
	a.buf = a.buf[:offset]
	a.cur = offset
}

// Truncate discards arena bytes from the given token's start onward.
// It does not check whether the token's bytes were already discarded; a
// stale token must not be truncated.
func (token Token) Truncate() {
	token.arena.buf = token.arena.buf[:token.start]
	token.arena.cur = token.start
}

// byteRange is a half-open [start,end) span within an Arena's buffer.
type byteRange struct{ start, end int }

func (r byteRange) Len() int { return r.end - r.start }

// Token is a handle to a range of bytes written into an Arena.
//
// NOTE it may become invalid when the arena is Reset() or when an earlier
// token is Truncate()d, and it must not be retained past such a call.
type Token struct {
	byteRange
	arena *Arena
}

// Len returns the number of bytes referenced by the token.
func (token Token) Len() int { return token.byteRange.Len() }

// Empty returns true if the token references zero bytes.
func (token Token) Empty() bool { return token.start == token.end }

// Bytes returns a reference to the token bytes within the internal arena
// buffer.
//
// NOTE this is a slice into the arena's internal buffer, so the caller MUST
// not retain the returned slice past the next arena mutation; copy out of it
// instead if necessary.
func (token Token) Bytes() []byte {
	if token.arena != nil {
		if buf := token.arena.buf; token.start <= len(buf) && token.end <= len(buf) {
			return buf[token.start:token.end]
		}
	}
	return nil
}

// Text returns a string copy of the token bytes from the internal arena buffer.
func (token Token) Text() string {
	if token.arena != nil {
		if buf := token.arena.buf; token.start <= len(buf) && token.end <= len(buf) {
			return string(buf[token.start:token.end])
		}
	}
	return ""
}

// String supports fmt printing of a token as its text content.
func (token Token) String() string { return token.Text() }

// Slice returns a sub-token of the receiver, acting similarly to token[i:j].
// Both i and j are token-relative; j may be negative to count back from the
// end of the token (as in token[i:len+1+j]).
// Panics if the token has no arena, or if the resulting range is invalid.
func (token Token) Slice(i, j int) Token {
	if token.arena == nil {
		panic("cannot slice zero valued token")
	}
	if j < 0 {
		token.end = token.end + 1 + j
	} else {
		token.end = token.start + j
	}
	token.start += i
	if n := len(token.arena.buf); token.end < token.start ||
		token.start < 0 ||
		token.start > n ||
		token.end > n {
		panic(fmt.Sprintf(
			"token slice [%v:%v] out of range [%v:%v] vs %v",
			i, j, token.start, token.end, n))
	}
	return token
}
