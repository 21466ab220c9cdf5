package css

import (
	"bytes"
	"fmt"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// FindingKind classifies leftovers reported by Lint.
type FindingKind int

const (
	FindingVarReference   FindingKind = iota // var(...) function call
	FindingCustomProperty                    // --name: declaration
)

func (k FindingKind) String() string {
	switch k {
	case FindingVarReference:
		return "var-reference"
	case FindingCustomProperty:
		return "custom-property"
	default:
		return fmt.Sprintf("FindingKind(%d)", int(k))
	}
}

// Finding is a single construct the publishing target cannot render.
type Finding struct {
	Kind   FindingKind
	Offset int    // byte offset in the linted text
	Text   string // "var(" or the custom property name
}

// Lint tokenizes text with a conforming CSS tokenizer and reports every
// var() call and custom property declaration still present. Strings,
// comments and url() tokens are opaque to the tokenizer, so quoted
// "var(--x)" is not reported.
//
// Lint is a second opinion on the output of the variable resolvers, which
// work on raw text with their own scanner.
func Lint(text string) []Finding {
	var (
		findings []Finding
		offset   int
		// custom property name waiting for a colon
		pending    *Finding
		pendingEnd int
	)

	lexer := css.NewLexer(parse.NewInputString(text))
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		start := offset
		offset += len(data)

		switch tt {
		case css.FunctionToken:
			if bytes.EqualFold(data, []byte("var(")) {
				findings = append(findings, Finding{Kind: FindingVarReference, Offset: start, Text: "var("})
			}
			pending = nil
		case css.IdentToken, css.CustomPropertyNameToken:
			pending = nil
			if bytes.HasPrefix(data, []byte("--")) {
				pending = &Finding{Kind: FindingCustomProperty, Offset: start, Text: string(data)}
				pendingEnd = offset
			}
		case css.WhitespaceToken, css.CommentToken:
			// keep pending name
		case css.ColonToken:
			if pending != nil && pendingEnd <= start {
				findings = append(findings, *pending)
			}
			pending = nil
		default:
			pending = nil
		}
	}
	return findings
}
