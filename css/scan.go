package css

import "strings"

// Lexical helpers over raw CSS text. None of them allocate a token stream:
// callers (variable expansion, inline style rewriting, dark conversion)
// work on byte offsets into the original text so that everything they do
// not touch is preserved byte for byte.
//
// All helpers are total: malformed input yields -1 or unsplit text.

// FindNextVarStart returns the index of the first "var(" at or after from
// which is not inside a quoted string, or -1. A backslash escapes the next
// byte so an escaped quote never toggles string state.
func FindNextVarStart(text string, from int) int {
	if from < 0 {
		from = 0
	}
	var quote byte
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case (c == 'v' || c == 'V') && hasFoldPrefix(text[i:], "var(") && !isIdentByte(text, i-1):
			return i
		}
	}
	return -1
}

// MentionsVar reports whether "var(" appears anywhere in text in any letter
// case, quoted strings included. It works on markup as well as on CSS and
// is used to skip text with nothing to resolve.
func MentionsVar(text string) bool {
	for i := 0; i < len(text); i++ {
		if c := text[i]; (c == 'v' || c == 'V') && hasFoldPrefix(text[i:], "var(") && !isIdentByte(text, i-1) {
			return true
		}
	}
	return false
}

// FindMatchingParen returns the index of the ")" matching the "(" at open,
// honoring nested parentheses, quoted strings and escapes. Returns -1 when
// text[open] is not "(" or the parentheses are unbalanced.
func FindMatchingParen(text string, open int) int {
	if open < 0 || open >= len(text) || text[open] != '(' {
		return -1
	}
	var (
		quote byte
		depth int
	)
	for i := open; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitVarArgs splits the inside of var(...) on the first top-level comma.
// Name and fallback are trimmed. hasFallback reports whether a comma was
// present at all, so "var(--x,)" yields an empty but present fallback.
func SplitVarArgs(args string) (name, fallback string, hasFallback bool) {
	idx := indexTopLevel(args, 0, ',')
	if idx < 0 {
		return strings.TrimSpace(args), "", false
	}
	return strings.TrimSpace(args[:idx]), strings.TrimSpace(args[idx+1:]), true
}

// SplitTopLevel splits text on sep occurrences which are outside of quotes,
// parentheses and brackets. Empty pieces are kept.
func SplitTopLevel(text string, sep byte) []string {
	var (
		parts []string
		start int
	)
	for {
		idx := indexTopLevel(text, start, sep)
		if idx < 0 {
			return append(parts, text[start:])
		}
		parts = append(parts, text[start:idx])
		start = idx + 1
	}
}

// Fields splits a value on top-level whitespace: "calc(1px + 2px) 0" is two
// fields.
func Fields(text string) []string {
	var (
		fields []string
		quote  byte
		depth  int
		start  = -1
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote == 0 && depth == 0 && isSpace(c) {
			if start >= 0 {
				fields = append(fields, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case (c == ')' || c == ']') && depth > 0:
			depth--
		}
	}
	if start >= 0 {
		fields = append(fields, text[start:])
	}
	return fields
}

// StripComments removes /* ... */ comments which are outside of quoted
// strings. An unterminated comment swallows the rest of the text, the same
// way a browser would.
func StripComments(text string) string {
	if !strings.Contains(text, "/*") {
		return text
	}
	var (
		sb    strings.Builder
		quote byte
		last  int
	)
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			sb.WriteString(text[last:i])
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return sb.String()
			}
			i += end + 3
			last = i + 1
		}
	}
	if last < len(text) {
		sb.WriteString(text[last:])
	}
	return sb.String()
}

// indexTopLevel returns the index of the first sep at or after from which is
// outside quotes, parentheses and brackets, or -1.
func indexTopLevel(text string, from int, sep byte) int {
	var (
		quote byte
		depth int
	)
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case (c == ')' || c == ']') && depth > 0:
			depth--
		case c == sep && depth == 0:
			return i
		}
	}
	return -1
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// isIdentByte reports whether text[i] may continue a CSS identifier.
func isIdentByte(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c == '-' || c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
