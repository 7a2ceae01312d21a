package ast

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// DecodeString decodes the body of a quoted JavaScript string literal (the
// text between the quotes). It returns false on a malformed escape.
func DecodeString(body string) (string, bool) {
	return decodeEscapes(body, false)
}

// DecodeTemplate decodes the body of a template literal without
// substitutions. Line terminators are normalized to \n.
func DecodeTemplate(body string) (string, bool) {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return decodeEscapes(body, true)
}

func decodeEscapes(body string, template bool) (string, bool) {
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var b strings.Builder
	b.Grow(len(body))

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}

		c = body[i]
		switch c {
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '\n':
			// Line continuation.
			i++
		case '\r':
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			if i+3 > len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 3
		case 'u':
			r, n, ok := decodeUnicodeEscape(body[i:])
			if !ok {
				return "", false
			}
			i += n
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i:], `\u`) {
				if low, m, ok := decodeUnicodeEscape(body[i+1:]); ok {
					if combined := utf16.DecodeRune(r, low); combined != utf8.RuneError {
						r = combined
						i += m + 1
					}
				}
			}
			if utf16.IsSurrogate(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			if template && !(c == '0' && (i+1 >= len(body) || !isDigit(body[i+1]))) {
				return "", false
			}
			// Legacy octal escape: up to three digits, max \377.
			j := i
			limit := i + 3
			if c > '3' {
				limit = i + 2
			}
			for j < len(body) && j < limit && body[j] >= '0' && body[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(body[i:j], 8, 16)
			b.WriteRune(rune(v))
			i = j
		default:
			// \' \" \\ \` and identity escapes. An escaped U+2028 or U+2029 is
			// a line continuation.
			r, size := utf8.DecodeRuneInString(body[i:])
			if r != '\u2028' && r != '\u2029' {
				b.WriteRune(r)
			}
			i += size
		}
	}

	return b.String(), true
}

// decodeUnicodeEscape decodes s, which starts at the 'u' of \uXXXX or
// \u{X...}. It returns the rune and the number of bytes consumed.
func decodeUnicodeEscape(s string) (rune, int, bool) {
	if len(s) < 2 || s[0] != 'u' {
		return 0, 0, false
	}
	if s[1] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 3 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[2:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	if len(s) < 5 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[1:5], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 5, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
