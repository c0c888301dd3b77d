package gcode

import "fmt"

// CodeType classifies what kind of command a Code represents.
type CodeType byte

// CodeType values.
const (
	// TypeNone marks a Code produced from a blank physical line, or one
	// holding only an N-prefixed line number with nothing else on it.
	TypeNone CodeType = iota
	TypeComment
	TypeGCode
	TypeMCode
	TypeTCode
	TypeKeyword
)

// String renders the CodeType's name.
func (t CodeType) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeComment:
		return "Comment"
	case TypeGCode:
		return "GCode"
	case TypeMCode:
		return "MCode"
	case TypeTCode:
		return "TCode"
	case TypeKeyword:
		return "Keyword"
	default:
		return fmt.Sprintf("CodeType(%d)", byte(t))
	}
}

// Keyword identifies a meta-command control-flow keyword, valid only when
// Code.Type is TypeKeyword.
type Keyword byte

// Keyword values.
const (
	KeywordNone Keyword = iota
	KeywordIf
	KeywordElseIf
	KeywordElse
	KeywordWhile
	KeywordBreak
	KeywordContinue
	KeywordReturn
	KeywordAbort
	KeywordVar
	KeywordSet
)

// String renders the Keyword's source spelling.
func (k Keyword) String() string {
	switch k {
	case KeywordNone:
		return ""
	case KeywordIf:
		return "if"
	case KeywordElseIf:
		return "elif"
	case KeywordElse:
		return "else"
	case KeywordWhile:
		return "while"
	case KeywordBreak:
		return "break"
	case KeywordContinue:
		return "continue"
	case KeywordReturn:
		return "return"
	case KeywordAbort:
		return "abort"
	case KeywordVar:
		return "var"
	case KeywordSet:
		return "set"
	default:
		return fmt.Sprintf("Keyword(%d)", byte(k))
	}
}

// keywords maps reserved words to their Keyword constant, checked against
// the first identifier token of a non G/M/T physical line.
var keywords = map[string]Keyword{
	"if":       KeywordIf,
	"elif":     KeywordElseIf,
	"else":     KeywordElse,
	"while":    KeywordWhile,
	"break":    KeywordBreak,
	"continue": KeywordContinue,
	"return":   KeywordReturn,
	"abort":    KeywordAbort,
	"var":      KeywordVar,
	"set":      KeywordSet,
}

// Flags carries bits that are not intrinsic to a single physical line's own
// text but are either derived from context (EnforceAbsolutePosition, carried
// over from a preceding bare G53 on the same line), from a leading marker
// character (Asynchronous), or set by the caller (IsFromMacro).
type Flags uint8

// Flags bits.
const (
	// FlagEnforceAbsolutePosition is set on every code that follows a bare
	// G53 opening the same physical line; reset at the next newline. A G53
	// later in the line is emitted as an ordinary code and sets nothing.
	FlagEnforceAbsolutePosition Flags = 1 << iota
	// FlagIsFromMacro marks a code read from a macro file rather than a
	// direct channel; Tokenizer itself never sets it, a caller does after
	// Parse returns, so it is carried here only for callers who want to
	// stash it alongside the rest of a Code's flags.
	FlagIsFromMacro
	// FlagAsynchronous is set when the physical line begins with '&',
	// requesting that the command not block the input channel pending its
	// completion.
	FlagAsynchronous
)

// Has reports whether all bits of other are set in the receiver.
func (f Flags) Has(other Flags) bool { return f&other == other }

// Code is a single parsed G-code command or control-flow keyword. A Code
// obtained from a NewReusableTokenizer is only valid until the next call to
// Parse; copy out any fields you need to retain across that boundary, or use
// NewTokenizer instead.
type Code struct {
	Type    CodeType
	Keyword Keyword

	// MajorNumber and MinorNumber hold e.g. 54 and 6 for "G54.6"; MinorNumber
	// is -1 when the code had no ".minor" suffix.
	MajorNumber int
	MinorNumber int

	// LineNumber is the N-prefixed line number on the physical line, or -1
	// if none was given.
	LineNumber int64

	// Indent is the count of leading spaces/tabs on the physical line this
	// code came from (a tab counts as one), applied to every code produced
	// from that line.
	Indent int

	Flags Flags

	Parameters []Parameter
	Comment    string

	// Condition holds the raw expression text of a TypeKeyword code (the
	// "machine.tool.is.great <= 0.03" in "if machine.tool.is.great <= 0.03"),
	// unparsed: evaluating meta-command expressions is out of scope here.
	Condition string
}

// Reset clears the receiver back to its zero value, retaining the
// Parameters slice's backing array (truncated to length 0) for reuse by a
// caller pooling Code values across Parse calls.
func (c *Code) Reset() {
	params := c.Parameters[:0]
	*c = Code{Parameters: params}
}

// Param returns the first parameter with the given letter and true, or the
// zero Parameter and false if none is present.
func (c *Code) Param(letter byte) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Letter == letter {
			return p, true
		}
	}
	return Parameter{}, false
}

// HasParam reports whether the receiver carries a parameter with the given
// letter.
func (c *Code) HasParam(letter byte) bool {
	_, ok := c.Param(letter)
	return ok
}

// String renders the code approximately as it would appear in source, for
// diagnostics; it is not guaranteed to round-trip byte for byte.
func (c *Code) String() string {
	switch c.Type {
	case TypeNone:
		return ""
	case TypeComment:
		return "; " + c.Comment
	case TypeKeyword:
		return c.Keyword.String()
	}
	letter := "G"
	if c.Type == TypeMCode {
		letter = "M"
	} else if c.Type == TypeTCode {
		letter = "T"
	}
	out := fmt.Sprintf("%s%d", letter, c.MajorNumber)
	if c.MinorNumber >= 0 {
		out += fmt.Sprintf(".%d", c.MinorNumber)
	}
	for _, p := range c.Parameters {
		out += fmt.Sprintf(" %c%s", p.Letter, p.Raw())
	}
	if c.Comment != "" {
		// A ";" comment keeps its own leading space; add one only if it has none.
		out += " ;"
		if c.Comment[0] != ' ' && c.Comment[0] != '\t' {
			out += " "
		}
		out += c.Comment
	}
	return out
}
