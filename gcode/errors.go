package gcode

import "fmt"

// ParseError reports malformed G-code syntax at a given byte offset within
// the source the tokenizer was reading. The tokenizer is expected to run
// against trusted streams, so on a ParseError it reports and stops rather
// than attempting recovery; callers that need best-effort behavior across
// untrusted lines (the file-info parser) catch it and skip the line.
type ParseError struct {
	Offset  int64
	Message string
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("gcode: parse error at offset %d: %s", e.Offset, e.Message)
}

// TypeMismatch reports a failed Parameter coercion: the caller asked for a
// type the parameter's raw text cannot be represented as.
type TypeMismatch struct {
	Letter    byte
	Requested string
	Stored    string
}

// Error implements error.
func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("gcode: parameter %c: cannot coerce %s to %s", e.Letter, e.Stored, e.Requested)
}
