// Package jsonrepair recovers a single JSON object from the free-form text
// an LLM returns. Replies are routinely wrapped in prose, fenced in
// markdown, or carry small syntax defects; this package isolates all of that
// tolerance behind a narrow contract so no repair heuristic leaks into the
// code that consumes the parsed result.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrNoJSONObject means the text contains no {...} span at all.
	ErrNoJSONObject = errors.New("no JSON object found in reply")
	// ErrUnrepairable means a span was found but could not be made parseable.
	ErrUnrepairable = errors.New("reply could not be repaired into valid JSON")
)

// Extract returns the first brace-delimited object span in raw. It scans for
// the matching close brace of the first '{', tracking string literals and
// escapes, so prose containing additional braces after the object does not
// widen the span. If the object never closes, it falls back to the last '}'
// in the text, leaving the truncation for Repair to deal with.
func Extract(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}

	// Unbalanced. Take everything up to the last close brace; a trailing
	// truncation is sometimes still repairable.
	end := strings.LastIndexByte(raw, '}')
	if end <= start {
		return "", ErrNoJSONObject
	}
	return raw[start : end+1], nil
}

// Repair fixes the defects LLMs commonly introduce: smart quotes, single
// quoted strings, raw control characters inside strings, trailing commas,
// and missing commas between adjacent members. Well-formed input passes
// through unchanged.
func Repair(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	inString := false
	quote := rune(0) // the delimiter that opened the current string
	escaped := false
	lastSig := rune(0) // last significant rune emitted outside strings

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteRune(r)
			case r == '\\':
				escaped = true
				b.WriteRune(r)
			case r == quote:
				inString = false
				lastSig = '"'
				b.WriteRune('"')
			case quote == '"' && isSmartDoubleQuote(r):
				// Chinese prose uses these as ordinary punctuation, so a
				// smart quote only closes the string when the string is
				// syntactically finished; otherwise it is content.
				if next := nextSignificant(runes, i+1); next == ',' || next == ':' || next == '}' || next == ']' {
					inString = false
					lastSig = '"'
					b.WriteRune('"')
				} else {
					b.WriteRune(r)
				}
			case quote == '\'' && r == '"':
				// literal double quote inside a single-quoted string
				b.WriteString(`\"`)
			case r == '\n':
				b.WriteString(`\n`)
			case r == '\t':
				b.WriteString(`\t`)
			case r == '\r':
				b.WriteString(`\r`)
			case r < 0x20:
				b.WriteString(fmt.Sprintf(`\u%04x`, r))
			default:
				b.WriteRune(r)
			}
			continue
		}

		switch {
		case unicode.IsSpace(r):
			b.WriteRune(r)
			continue
		case r == '"' || isSmartDoubleQuote(r):
			maybeInsertComma(&b, lastSig)
			inString = true
			quote = '"'
			b.WriteRune('"')
			continue
		case r == '\'' || isSmartSingleQuote(r):
			maybeInsertComma(&b, lastSig)
			inString = true
			quote = '\''
			b.WriteRune('"')
			continue
		case r == ',':
			// Drop trailing commas before a closing bracket.
			if next := nextSignificant(runes, i+1); next == '}' || next == ']' {
				continue
			}
			lastSig = r
			b.WriteRune(r)
			continue
		case r == '{' || r == '[':
			maybeInsertComma(&b, lastSig)
			lastSig = r
			b.WriteRune(r)
			continue
		default:
			lastSig = r
			b.WriteRune(r)
			continue
		}
	}

	// An unterminated string leaves the output unparseable in an obvious
	// way; close it so truncated replies get one more chance at parsing.
	if inString {
		b.WriteRune('"')
	}

	return b.String()
}

// maybeInsertComma inserts the separator an LLM dropped between two members:
// value-terminator immediately followed by the start of the next key/value.
func maybeInsertComma(b *strings.Builder, lastSig rune) {
	switch lastSig {
	case '"', '}', ']':
		b.WriteRune(',')
	default:
		if unicode.IsDigit(lastSig) {
			b.WriteRune(',')
		}
	}
}

func nextSignificant(runes []rune, from int) rune {
	for i := from; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return runes[i]
		}
	}
	return 0
}

func isSmartDoubleQuote(r rune) bool {
	return r == '“' || r == '”' || r == '„' || r == '«' || r == '»'
}

func isSmartSingleQuote(r rune) bool {
	return r == '‘' || r == '’'
}

// DecodeObject extracts the object span from raw and unmarshals it into v.
// A well-formed span is parsed as-is; otherwise the repaired text is tried.
// Unexpected or missing fields are not an error here; that is the caller's
// concern.
func DecodeObject(raw string, v interface{}) error {
	span, err := Extract(raw)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(span), v); err == nil {
		return nil
	}

	repaired := Repair(span)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnrepairable, err)
	}
	return nil
}
