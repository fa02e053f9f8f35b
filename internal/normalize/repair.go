// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"strings"
)

// repair rewrites a located payload region into well-formed JSON where
// possible. It handles the malformations local models actually produce:
// unescaped control characters inside strings, trailing commas,
// single-quoted strings, and brackets left open by truncation.
//
// repair is field-name-preserving by construction: bytes inside string
// literals are never deleted, only escaped or re-quoted. Deletions are
// limited to punctuation between tokens (trailing commas, unmatched
// closers, junk control bytes outside strings). closedAtEOF reports
// whether the region ended inside an open string or delimiter, i.e. the
// payload was truncated.
func repair(region string) (out string, closedAtEOF bool) {
	var b strings.Builder
	b.Grow(len(region) + 8)

	var stack []byte
	inString := false
	var quote byte
	escaped := false
	pendingComma := false

	for i := 0; i < len(region); i++ {
		c := region[i]

		if inString {
			switch {
			case escaped:
				b.WriteByte(c)
				escaped = false
			case c == '\\':
				// \' is not a valid JSON escape; unwrap it when
				// converting single-quoted strings.
				if quote == '\'' && i+1 < len(region) && region[i+1] == '\'' {
					b.WriteByte('\'')
					i++
					continue
				}
				b.WriteByte('\\')
				escaped = true
			case c == quote:
				b.WriteByte('"')
				inString = false
			case c == '"':
				// Bare double quote inside a single-quoted string.
				b.WriteString(`\"`)
			case c == '\n':
				b.WriteString(`\n`)
			case c == '\t':
				b.WriteString(`\t`)
			case c == '\r':
				b.WriteString(`\r`)
			case c < 0x20:
				fmt.Fprintf(&b, `\u%04x`, c)
			default:
				b.WriteByte(c)
			}
			continue
		}

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			b.WriteByte(c)
			continue
		}

		// A held comma is dropped when the next token closes the
		// enclosing object or array (trailing comma repair).
		if pendingComma {
			if c != '}' && c != ']' {
				b.WriteByte(',')
			}
			pendingComma = false
		}

		switch c {
		case ',':
			pendingComma = true
		case '{', '[':
			stack = append(stack, c)
			b.WriteByte(c)
		case '}', ']':
			opener := byte('{')
			if c == ']' {
				opener = '['
			}
			if len(stack) > 0 && stack[len(stack)-1] == opener {
				stack = stack[:len(stack)-1]
				b.WriteByte(c)
			}
			// Unmatched closer: dropped.
		case '"':
			inString = true
			quote = '"'
			b.WriteByte('"')
		case '\'':
			inString = true
			quote = '\''
			b.WriteByte('"')
		default:
			if c < 0x20 {
				continue // junk control byte between tokens
			}
			b.WriteByte(c)
		}
	}

	if inString {
		if escaped {
			b.WriteByte('\\') // complete a dangling escape before closing
		}
		b.WriteByte('"')
		closedAtEOF = true
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
		closedAtEOF = true
	}

	return b.String(), closedAtEOF
}
