package css

import (
	"strings"

	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into a tree of rules and at-rules.
//
// This is intentionally not a conforming CSS parser: it only understands
// enough structure (blocks, strings, escapes, parentheses) to find rule
// boundaries and declarations, and keeps everything else as raw text.
// Malformed input never fails, the unparsable remainder is preserved.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Comments are expected to be
// removed by the caller (see StripComments), comments left in place end up
// being part of selectors or values.
func (p *Parser) Parse(text string) *Stylesheet {
	sheet := &Stylesheet{}
	sheet.Nodes, sheet.Trailing = p.parseNodes(text, 0)
	p.log.Debug("Parsed stylesheet", zap.Int("bytes", len(text)), zap.Int("nodes", len(sheet.Nodes)), zap.Bool("truncated", sheet.Trailing != ""))
	return sheet
}

// parseNodes parses a list of rules and at-rules. It returns the nodes and
// any trailing text which could not be parsed.
func (p *Parser) parseNodes(text string, depth int) ([]Node, string) {
	nodes := make([]Node, 0)
	pos := 0
	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			return nodes, ""
		}

		switch text[pos] {
		case '}', ';':
			// stray terminator, nothing to attach it to
			p.log.Debug("Skipping stray terminator", zap.Int("offset", pos), zap.Int("depth", depth))
			pos++
			continue
		}

		end, term := scanPrelude(text, pos)
		if end < 0 {
			p.log.Debug("Unterminated prelude, keeping remainder as is", zap.Int("offset", pos))
			return nodes, text[pos:]
		}
		prelude := strings.TrimSpace(text[pos:end])

		if term == ';' {
			if strings.HasPrefix(prelude, "@") {
				nodes = append(nodes, &AtRule{Prelude: prelude, Standalone: true})
			} else {
				// declaration outside of any block
				p.log.Debug("Skipping declaration outside of block", zap.String("text", prelude))
			}
			pos = end + 1
			continue
		}

		closing := FindMatchingBrace(text, end)
		if closing < 0 {
			p.log.Debug("Unbalanced block, keeping remainder as is", zap.String("prelude", prelude))
			return nodes, text[pos:]
		}
		body := text[end+1 : closing]
		pos = closing + 1

		if !strings.HasPrefix(prelude, "@") {
			nodes = append(nodes, &Rule{Selector: prelude, Declarations: ParseDeclarations(body)})
			continue
		}

		at := &AtRule{Prelude: prelude}
		if hasNestedBlock(body) {
			children, trailing := p.parseNodes(body, depth+1)
			if trailing != "" {
				// keep the at-rule intact rather than loose part of it
				p.log.Debug("Malformed at-rule body, passing through", zap.String("prelude", prelude))
				at.Body = body
			} else {
				at.Children = children
			}
		} else {
			at.Body = body
		}
		nodes = append(nodes, at)
	}
}

// ParseDeclarations splits a declaration block body (or an inline style
// attribute) on top-level semicolons. Pieces without a colon or without a
// property name are dropped.
func ParseDeclarations(body string) []Declaration {
	var decls []Declaration
	for _, piece := range SplitTopLevel(body, ';') {
		prop, value, found := strings.Cut(piece, ":")
		if !found {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		value, important := splitImportant(strings.TrimSpace(value))
		decls = append(decls, Declaration{Property: prop, Value: value, Important: important})
	}
	return decls
}

// splitImportant removes a trailing !important flag ("! important" too).
func splitImportant(value string) (string, bool) {
	const flag = "important"
	if len(value) < len(flag)+1 || !strings.EqualFold(value[len(value)-len(flag):], flag) {
		return value, false
	}
	rest := strings.TrimRight(value[:len(value)-len(flag)], " \t\r\n\f")
	if !strings.HasSuffix(rest, "!") {
		return value, false
	}
	return strings.TrimSpace(rest[:len(rest)-1]), true
}

// FindMatchingBrace returns the index of the "}" matching the "{" at open,
// honoring nesting, quoted strings and escapes, or -1.
func FindMatchingBrace(text string, open int) int {
	if open < 0 || open >= len(text) || text[open] != '{' {
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
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scanPrelude finds the end of a selector or at-rule prelude starting at
// pos: the index of the first top-level "{" or ";" and which one it was.
func scanPrelude(text string, pos int) (int, byte) {
	var (
		quote byte
		depth int
	)
	for i := pos; i < len(text); i++ {
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
		case depth == 0 && (c == '{' || c == ';'):
			return i, c
		case depth == 0 && c == '}':
			// block closed before prelude ended
			return -1, 0
		}
	}
	return -1, 0
}

// hasNestedBlock reports whether an at-rule body contains blocks of its own
// (@media) as opposed to being a plain declaration list (@font-face).
func hasNestedBlock(body string) bool {
	return indexTopLevel(body, 0, '{') >= 0
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	return pos
}
