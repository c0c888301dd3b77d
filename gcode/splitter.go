package gcode

import (
	"io"
	"strings"
)

// Splitter adapts a Tokenizer to the textutil.Scanner / textutil.ErrScanner
// interfaces, so the command layer can be driven by the same CopyScanner
// helper used elsewhere for bufio.Scanner-based loops.
type Splitter struct {
	tok *Tokenizer
	cur Code
	raw []byte
	err error
}

// NewSplitter returns a Splitter reading G-code text from r, allocating a
// string per parsed field (see NewTokenizer).
func NewSplitter(r io.Reader) *Splitter {
	return &Splitter{tok: NewTokenizer(r)}
}

// Scan advances to the next Code, returning false at EOF or on error.
func (s *Splitter) Scan() bool {
	// A fresh Code per scan, so a Code handed out earlier keeps its own
	// Parameters array instead of sharing it with the next one.
	s.cur = Code{}
	err := s.tok.Parse(&s.cur)
	if err != nil {
		if err != io.EOF {
			s.err = err
		}
		return false
	}
	s.raw = []byte(s.cur.String())
	return true
}

// Code returns the most recently scanned Code.
func (s *Splitter) Code() Code { return s.cur }

// Bytes returns the current Code's approximate source text, satisfying
// textutil.Scanner.
func (s *Splitter) Bytes() []byte { return s.raw }

// Err returns any error encountered by the underlying Tokenizer, satisfying
// textutil.ErrScanner.
func (s *Splitter) Err() error { return s.err }

// Split tokenizes the whole of src and returns every Code in order. It is a
// convenience wrapper over Splitter for tests and small inputs; callers
// parsing a large or ongoing stream should drive a Splitter directly.
func Split(src string) ([]Code, error) {
	sp := NewSplitter(strings.NewReader(src))
	var codes []Code
	for sp.Scan() {
		codes = append(codes, sp.Code())
	}
	return codes, sp.Err()
}
