package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/duet3d/gcode/internal/arena"
	"github.com/duet3d/gcode/internal/textutil"
)

// Tokenizer pulls Code values one at a time from an underlying text stream,
// tokenizing one physical line at a time and queuing any sibling codes that
// line contains (e.g. the codes following a bare G53) for subsequent Parse
// calls.
//
// A Tokenizer built by NewReusableTokenizer backs every Parameter's raw text
// with an internal byte arena rather than an allocated string, so that
// repeated Parse calls across many lines (the file-info header/footer scan)
// do not allocate per field; the returned Code and its Parameters are only
// valid until the next Parse call. A Tokenizer built by NewTokenizer
// allocates a string per field and has no such lifetime restriction.
type Tokenizer struct {
	br     *bufio.Reader
	arena  *arena.Arena
	offset int64
	queue  []queuedCode
	eof    bool
}

// NewTokenizer returns a Tokenizer that allocates a Go string for every
// parsed field; its Code values may be retained indefinitely.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{br: bufio.NewReader(r)}
}

// NewReusableTokenizer returns a Tokenizer backed by an internal byte
// arena; Code values it returns must be consumed (or copied out field by
// field) before the next Parse call.
func NewReusableTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{br: bufio.NewReader(r), arena: &arena.Arena{}}
}

// queuedCode is the line-scoped intermediate form parseLine builds; Parse
// copies one of these into the caller's *Code per call.
type queuedCode struct {
	typ       CodeType
	keyword   Keyword
	major     int
	minor     int
	lineNum   int64
	flags     Flags
	params    []Parameter
	comment   string
	condition string
	indent    int
}

// Parse fills dst with the next Code from the stream, reusing dst.Parameters'
// backing array. It returns io.EOF once the stream is exhausted.
func (t *Tokenizer) Parse(dst *Code) error {
	for len(t.queue) == 0 {
		if t.eof {
			return io.EOF
		}
		lineOffset := t.offset
		line, err := t.readLine()
		if err != nil && err != io.EOF {
			return err
		}
		if err == io.EOF {
			t.eof = true
		}
		if line == "" && t.eof {
			return io.EOF
		}
		if t.arena != nil {
			t.arena.Reset()
		}
		queue, perr := parseLine(line, t.arena, lineOffset)
		if perr != nil {
			return perr
		}
		t.queue = queue
	}

	q := t.queue[0]
	t.queue = t.queue[1:]

	dst.Type = q.typ
	dst.Keyword = q.keyword
	dst.MajorNumber = q.major
	dst.MinorNumber = q.minor
	dst.LineNumber = q.lineNum
	dst.Indent = q.indent
	dst.Flags = q.flags
	dst.Comment = q.comment
	dst.Condition = q.condition
	dst.Parameters = append(dst.Parameters[:0], q.params...)
	return nil
}

// readLine reads one physical line (without its terminator) from the
// stream, tracking the byte offset Parse-time errors report against.
func (t *Tokenizer) readLine() (string, error) {
	line, err := t.br.ReadString('\n')
	t.offset += int64(len(line))
	line = strings.TrimRight(line, "\r\n")
	if err != nil {
		if err == io.EOF {
			return line, io.EOF
		}
		return "", err
	}
	return line, nil
}

// bareAxisLetters are the letters that, bare (no following value), expand
// to a synthesized zero value (spec rule: "G92 XYZ" means X=0, Y=0, Z=0).
const bareAxisLetters = "XYZUVWABCD"

func isBareAxisLetter(c byte) bool { return strings.IndexByte(bareAxisLetters, c) >= 0 }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isValueStart(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.' || c == '"' || c == '{'
}

// isCommandStart reports whether line[i] begins a new G/M/T command: the
// letter immediately followed by a digit. Used to recognize a command word
// wherever one may legally start (line start, or right after a preceding
// command has fully closed).
func isCommandStart(line string, i int) bool {
	if i >= len(line) {
		return false
	}
	c := line[i]
	if c != 'G' && c != 'M' && c != 'T' {
		return false
	}
	return i+1 < len(line) && isDigit(line[i+1])
}

// isGMBoundary reports whether line[i] begins a new G or M command. Used
// inside a parameter list to detect a further command riding on the same
// physical line (e.g. the G1 in "G53 G1 X5", or the G0 in "G1 X1 G0 Y2"),
// which ends the current code's parameters. T is
// deliberately excluded here, since T is a legitimate parameter letter in
// several M-codes (e.g. "M569 ... T0.5"); a tool-change T-code is never
// seen riding alongside a preceding command in practice.
func isGMBoundary(line string, i int) bool {
	if i >= len(line) {
		return false
	}
	c := line[i]
	if c != 'G' && c != 'M' {
		return false
	}
	return i+1 < len(line) && isDigit(line[i+1])
}

// parseLine tokenizes one physical line into zero or more queuedCodes. When
// a is non-nil, parameter values are written through it (arena mode);
// otherwise they're kept as plain allocated strings. lineOffset is the
// stream byte offset this physical line begins at, used to report a
// ParseError's Offset.
//
// A blank line, or one holding only an N-prefixed line number, yields a
// single TypeNone queuedCode rather than none at all (data model invariant
// 12: "empty lines ... produce a Code with type = None"); a letter at
// command position that isn't G/M/T and doesn't start a recognized keyword
// is a ParseError (rule 5), not a silently dropped line.
func parseLine(line string, a *arena.Arena, lineOffset int64) ([]queuedCode, error) {
	var codes []queuedCode
	n := len(line)
	i := 0

	skipSpace := func() {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}

	indent := 0
	for indent < n && (line[indent] == ' ' || line[indent] == '\t') {
		indent++
	}

	skipSpace()

	var lineFlags Flags
	if i < n && line[i] == '&' {
		lineFlags |= FlagAsynchronous
		i++
		skipSpace()
	}

	lineNumber := int64(-1)
	if i < n && line[i] == 'N' && i+1 < n && isDigit(line[i+1]) {
		j := i + 1
		for j < n && isDigit(line[j]) {
			j++
		}
		if v, err := strconv.ParseInt(line[i+1:j], 10, 64); err == nil {
			lineNumber = v
		}
		i = j
		skipSpace()
	}

	if i >= n {
		return append(codes, queuedCode{
			typ:     TypeNone,
			lineNum: lineNumber,
			indent:  indent,
			flags:   lineFlags,
		}), nil
	}

	if line[i] == ';' {
		return append(codes, queuedCode{
			typ:     TypeComment,
			lineNum: lineNumber,
			indent:  indent,
			flags:   lineFlags,
			comment: line[i+1:],
		}), nil
	}

	if !isCommandStart(line, i) && isLetter(line[i]) {
		wordStart := i
		j := i
		for j < n && isIdentByte(line[j]) {
			j++
		}
		word := line[wordStart:j]
		if kw, ok := keywords[strings.ToLower(word)]; ok {
			i = j
			skipSpace()
			condStart := i
			for i < n && line[i] != '(' && line[i] != ';' {
				i++
			}
			condition := strings.TrimRight(textutil.UnprecedentedString(line[condStart:i]), " \t")
			comment := scanTrailingComments(line, &i)
			return append(codes, queuedCode{
				typ:       TypeKeyword,
				keyword:   kw,
				lineNum:   lineNumber,
				indent:    indent,
				flags:     lineFlags,
				condition: condition,
				comment:   comment,
			}), nil
		}
		// A letter at command position that isn't G/M/T and doesn't start a
		// recognized keyword word: rule 5.
		return nil, &ParseError{
			Offset:  lineOffset + int64(wordStart),
			Message: fmt.Sprintf("unexpected %q at command position", word),
		}
	}

	enforcingAbs := false
	first := true

	for i < n {
		skipSpace()
		if i >= n {
			break
		}
		if line[i] == ';' || line[i] == '(' {
			comment := scanTrailingComments(line, &i)
			if len(codes) > 0 {
				codes[len(codes)-1].comment = joinCommentSpacing(codes[len(codes)-1].comment, comment)
			}
			break
		}
		if !isCommandStart(line, i) {
			if isLetter(line[i]) {
				return nil, &ParseError{
					Offset:  lineOffset + int64(i),
					Message: fmt.Sprintf("unexpected %q at command position", string(line[i])),
				}
			}
			break
		}

		letter := line[i]
		i++
		majStart := i
		for i < n && isDigit(line[i]) {
			i++
		}
		major, _ := strconv.Atoi(line[majStart:i])
		minor := -1
		if i < n && line[i] == '.' {
			i++
			minStart := i
			for i < n && isDigit(line[i]) {
				i++
			}
			minor, _ = strconv.Atoi(line[minStart:i])
		}

		var params []Parameter
		for {
			skipSpace()
			if i >= n || line[i] == ';' || line[i] == '(' || isGMBoundary(line, i) {
				break
			}
			pl := line[i]
			i++

			if isBareAxisLetter(pl) && (i >= n || !isValueStart(line[i])) {
				if a != nil {
					a.WriteString("0")
					params = append(params, newParameterToken(pl, a.Take()))
				} else {
					params = append(params, newParameter(pl, "0"))
				}
				continue
			}

			var val string
			switch {
			case i < n && line[i] == '"':
				start := i
				i++
				for i < n {
					if line[i] == '"' {
						if i+1 < n && line[i+1] == '"' {
							i += 2
							continue
						}
						i++
						break
					}
					i++
				}
				val = line[start:i]
			case i < n && line[i] == '{':
				start := i
				depth := 1
				i++
				for i < n && depth > 0 {
					switch line[i] {
					case '{':
						depth++
					case '}':
						depth--
					}
					i++
				}
				val = line[start:i]
			default:
				start := i
				for i < n && line[i] != ' ' && line[i] != '\t' && line[i] != ';' && line[i] != '(' && !isGMBoundary(line, i) {
					i++
				}
				val = line[start:i]
			}

			if a != nil {
				a.WriteString(val)
				params = append(params, newParameterToken(pl, a.Take()))
			} else {
				params = append(params, newParameter(pl, val))
			}
		}

		typ := TypeGCode
		switch letter {
		case 'M':
			typ = TypeMCode
		case 'T':
			typ = TypeTCode
		}

		if letter == 'G' && major == 53 && minor == -1 && len(params) == 0 && first {
			save := i
			skipSpace()
			hasMore := i < n && line[i] != ';' && line[i] != '('
			i = save
			if hasMore {
				enforcingAbs = true
				continue
			}
		}

		flags := lineFlags
		if enforcingAbs {
			flags |= FlagEnforceAbsolutePosition
		}
		codes = append(codes, queuedCode{
			typ:     typ,
			major:   major,
			minor:   minor,
			lineNum: lineNumber,
			indent:  indent,
			flags:   flags,
			params:  params,
		})
		first = false
	}

	return codes, nil
}

// joinCommentSpacing joins a and b with a single separating space, unless one side
// is empty or b already supplies its own leading whitespace (the raw text
// following a ";" is kept verbatim per spec.md rule 10, so it typically
// already starts with the space the source had after the semicolon).
func joinCommentSpacing(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b[0] == ' ' || b[0] == '\t' {
		return a + b
	}
	return a + " " + b
}

// scanTrailingComments consumes any run of "(...)" and/or "; ..." comments
// starting at *i, advancing *i to the end of the line, and returns their
// joined text. A ";" comment's text is kept verbatim (including any leading
// space after the semicolon, per spec.md's concrete G29 scenario); a "(...)"
// comment's text is trimmed of its surrounding whitespace, since the parens
// themselves (not whitespace) mark its extent.
func scanTrailingComments(line string, i *int) string {
	n := len(line)
	var comment string
	for *i < n {
		for *i < n && (line[*i] == ' ' || line[*i] == '\t') {
			*i++
		}
		if *i >= n {
			break
		}
		switch line[*i] {
		case '(':
			rest := line[*i+1:]
			if j := strings.IndexByte(rest, ')'); j >= 0 {
				comment = joinCommentSpacing(comment, strings.TrimSpace(rest[:j]))
				*i += 1 + j + 1
				continue
			}
			comment = joinCommentSpacing(comment, strings.TrimSpace(rest))
			*i = n
			return comment
		case ';':
			comment = joinCommentSpacing(comment, line[*i+1:])
			*i = n
			return comment
		default:
			return comment
		}
	}
	return comment
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '.' || c == '_'
}
