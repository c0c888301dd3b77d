package gcode

import (
	"strconv"
	"strings"

	"github.com/duet3d/gcode/internal/arena"
)

// Parameter is a single letter-tagged value within a Code's parameter list.
// Its raw text is stored verbatim and parsed on demand by the As* methods
// (deferred parsing), rather than eagerly classified into a stored type.
type Parameter struct {
	Letter byte

	raw string
	tok arena.Token
}

// newParameter builds a Parameter over a plain allocated string.
func newParameter(letter byte, raw string) Parameter {
	return Parameter{Letter: letter, raw: raw}
}

// newParameterToken builds a Parameter over an arena-backed token, used by
// a reusable Tokenizer to avoid a per-field allocation.
func newParameterToken(letter byte, tok arena.Token) Parameter {
	return Parameter{Letter: letter, tok: tok}
}

// Raw returns the parameter's original source text, exactly as written
// (including surrounding quotes or braces).
func (p Parameter) Raw() string {
	if p.tok != (arena.Token{}) {
		return p.tok.Text()
	}
	return p.raw
}

// IsExpression returns true when the raw text is a `{...}` expression
// placeholder; any numeric coercion on such a value fails.
func (p Parameter) IsExpression() bool {
	raw := p.Raw()
	return len(raw) > 0 && raw[0] == '{'
}

func (p Parameter) mismatch(requested string) error {
	stored := "string"
	switch {
	case p.IsExpression():
		stored = "expression"
	case p.isQuoted():
		stored = "string"
	default:
		stored = "numeric"
	}
	return &TypeMismatch{Letter: p.Letter, Requested: requested, Stored: stored}
}

func (p Parameter) isQuoted() bool {
	raw := p.Raw()
	return len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"'
}

// unquote strips one layer of surrounding quotes, unescaping any doubled
// `""` into a single literal quote.
func unquote(raw string) string {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	if strings.IndexByte(inner, '"') < 0 {
		return inner
	}
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '"' && i+1 < len(inner) && inner[i+1] == '"' {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// numericText returns the text to feed numeric parsers: the raw text
// itself, or the unquoted content of a quoted string (numeric coercion of a
// quoted numeral, e.g. S"5", is permitted the same way strconv would treat
// it after stripping quotes).
func (p Parameter) numericText() (string, error) {
	if p.IsExpression() {
		return "", p.mismatch("numeric")
	}
	if p.isQuoted() {
		return unquote(p.Raw()), nil
	}
	return p.Raw(), nil
}

// AsInteger coerces the parameter to a signed integer. A float-looking raw
// value is truncated (lossy numeric<->numeric conversion is allowed).
func (p Parameter) AsInteger() (int64, error) {
	text, err := p.numericText()
	if err != nil {
		return 0, err
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return int64(f), nil
	}
	return 0, p.mismatch("integer")
}

// AsUnsigned coerces the parameter to an unsigned integer. Fails if the
// value is negative.
func (p Parameter) AsUnsigned() (uint64, error) {
	i, err := p.AsInteger()
	if err != nil {
		return 0, p.mismatch("unsigned")
	}
	if i < 0 {
		return 0, p.mismatch("unsigned")
	}
	return uint64(i), nil
}

// AsFloat coerces the parameter to a floating point number.
func (p Parameter) AsFloat() (float64, error) {
	text, err := p.numericText()
	if err != nil {
		return 0, err
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return float64(i), nil
	}
	return 0, p.mismatch("float")
}

// AsBool coerces the parameter to a boolean: zero/"false" is false, any
// other numeric value or "true" is true.
func (p Parameter) AsBool() (bool, error) {
	text, err := p.numericText()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(text) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return false, p.mismatch("bool")
	}
	return f != 0, nil
}

// AsString coerces the parameter to a string. A quoted raw value is
// unescaped; an expression's braces are preserved verbatim (it is opaque,
// not parsed); any other value is returned exactly as written, which is
// already its canonical numeric formatting since the raw text was never
// resolved to a different internal representation.
func (p Parameter) AsString() (string, error) {
	raw := p.Raw()
	if p.IsExpression() {
		return raw, nil
	}
	if p.isQuoted() {
		return unquote(raw), nil
	}
	return raw, nil
}

// AsIntArray coerces the parameter to a slice of integers. A scalar value
// becomes a singleton array. A raw value is colon-separated; a trailing
// empty element is an error.
func (p Parameter) AsIntArray() ([]int64, error) {
	parts, err := p.arrayParts()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(parts))
	for i, part := range parts {
		v, err := (Parameter{Letter: p.Letter, raw: part}).AsInteger()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AsUnsignedArray coerces the parameter to a slice of unsigned integers.
func (p Parameter) AsUnsignedArray() ([]uint64, error) {
	parts, err := p.arrayParts()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(parts))
	for i, part := range parts {
		v, err := (Parameter{Letter: p.Letter, raw: part}).AsUnsigned()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AsFloatArray coerces the parameter to a slice of floats.
func (p Parameter) AsFloatArray() ([]float64, error) {
	parts, err := p.arrayParts()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(parts))
	for i, part := range parts {
		v, err := (Parameter{Letter: p.Letter, raw: part}).AsFloat()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AsDriverID coerces the parameter to a single DriverID, accepting either
// "b.d" or a bare packed integer.
func (p Parameter) AsDriverID() (DriverID, error) {
	if p.IsExpression() {
		return DriverID{}, p.mismatch("DriverId")
	}
	text := p.Raw()
	if p.isQuoted() {
		text = unquote(text)
	}
	id, err := parseDriverID(text)
	if err != nil {
		return DriverID{}, p.mismatch("DriverId")
	}
	return id, nil
}

// AsDriverIDArray coerces the parameter to a slice of DriverIDs. Colon
// separated, each element "b.d" or a packed integer; a scalar becomes a
// singleton array.
func (p Parameter) AsDriverIDArray() ([]DriverID, error) {
	parts, err := p.arrayParts()
	if err != nil {
		return nil, err
	}
	out := make([]DriverID, len(parts))
	for i, part := range parts {
		id, err := parseDriverID(part)
		if err != nil {
			return nil, p.mismatch("DriverIdArray")
		}
		out[i] = id
	}
	return out, nil
}

// arrayParts splits the raw text on ':' for the As*Array methods. A scalar
// (no colon) becomes a single-element slice. A trailing empty element
// (e.g. "1:2:") is a TypeMismatch.
func (p Parameter) arrayParts() ([]string, error) {
	if p.IsExpression() {
		return nil, p.mismatch("array")
	}
	raw := p.Raw()
	if p.isQuoted() {
		raw = unquote(raw)
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		return nil, p.mismatch("array")
	}
	return parts, nil
}
