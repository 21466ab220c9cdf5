package dark

import (
	"strings"

	"wemd/color"
	"wemd/css"
)

// rewriteColors calls fn for every color literal in value and replaces the
// literal with the returned text. Quoted strings and var() references are
// copied as is, a value containing url() is returned unchanged.
func rewriteColors(value string, fn func(lit color.Literal) string) string {
	if strings.Contains(strings.ToLower(value), "url(") {
		return value
	}

	var sb strings.Builder
	sb.Grow(len(value))
	for i := 0; i < len(value); {
		c := value[i]
		switch {
		case c == '\\':
			end := min(i+2, len(value))
			sb.WriteString(value[i:end])
			i = end
		case c == '"' || c == '\'':
			end := skipString(value, i)
			sb.WriteString(value[i:end])
			i = end
		case c == '#':
			end := i + 1
			for end < len(value) && isIdentChar(value[end]) {
				end++
			}
			sb.WriteString(replaceLiteral(value[i:end], fn))
			i = end
		case isIdentStart(c) && (i == 0 || !isIdentChar(value[i-1])):
			end := i
			for end < len(value) && isIdentChar(value[end]) {
				end++
			}
			if end >= len(value) || value[end] != '(' {
				sb.WriteString(value[i:end])
				i = end
				continue
			}
			switch strings.ToLower(value[i:end]) {
			case "rgb", "rgba", "hsl", "hsla":
				closing := css.FindMatchingParen(value, end)
				if closing < 0 {
					sb.WriteString(value[i:])
					return sb.String()
				}
				sb.WriteString(replaceLiteral(value[i:closing+1], fn))
				i = closing + 1
			case "var":
				closing := css.FindMatchingParen(value, end)
				if closing < 0 {
					sb.WriteString(value[i:])
					return sb.String()
				}
				sb.WriteString(value[i : closing+1])
				i = closing + 1
			default:
				// gradients and such: keep scanning arguments for stops
				sb.WriteString(value[i : end+1])
				i = end + 1
			}
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

func replaceLiteral(text string, fn func(lit color.Literal) string) string {
	lit, ok := color.Parse(text)
	if !ok {
		return text
	}
	return fn(lit)
}

// skipString returns index right after the string starting at value[open].
func skipString(value string, open int) int {
	quote := value[open]
	for i := open + 1; i < len(value); i++ {
		switch value[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(value)
}

func isIdentStart(c byte) bool {
	return c == '-' || c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
