package store

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

// ContextHeader opens every non-empty context block. The leading blank line
// separates the block from the user request it is appended to.
const ContextHeader = "\n\n[Current Design State]\n"

// ContextBlock summarizes every feature as "- <id>: <json>", one per line, in
// insertion order. It is empty when there are no features.
func ContextBlock(f *Features) string {
	if f == nil || f.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(ContextHeader)
	for id, data := range f.All() {
		sb.WriteString("- ")
		sb.WriteString(id)
		sb.WriteString(": ")
		if len(data) == 0 {
			sb.WriteString("null")
		} else {
			writeSpaced(&sb, data)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Prompt appends the context block for f to a user request.
func Prompt(request string, f *Features) string {
	return request + ContextBlock(f)
}

// writeSpaced writes a JSON value on one line as `{"a": 1, "b": [1, 2]}`:
// insignificant whitespace is dropped, every ',' and ':' is followed by a
// single space, and non-ASCII characters in strings are written as \uXXXX.
func writeSpaced(sb *strings.Builder, data []byte) {
	inString, escaped := false, false
	for _, r := range string(data) {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			if r > unicode.MaxASCII {
				writeUnicodeEscape(sb, r)
			} else {
				sb.WriteRune(r)
			}
			continue
		}
		switch r {
		case ' ', '\t', '\n', '\r':
		case '"':
			inString = true
			sb.WriteRune(r)
		case ',', ':':
			sb.WriteRune(r)
			sb.WriteByte(' ')
		default:
			sb.WriteRune(r)
		}
	}
}

func writeUnicodeEscape(sb *strings.Builder, r rune) {
	if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar {
		fmt.Fprintf(sb, `\u%04x\u%04x`, r1, r2)
		return
	}
	fmt.Fprintf(sb, `\u%04x`, r)
}
