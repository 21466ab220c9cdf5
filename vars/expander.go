package vars

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"wemd/css"
)

// Expander flattens custom properties of a whole stylesheet.
//
// All custom property declarations of the document are collected into a
// single global scope, the last declaration of a name wins regardless of
// selector or nesting. This is not how the cascade works: it is meant for
// single theme stylesheets where variable names are unique in practice.
// Use dom.Resolver when scoping matters.
type Expander struct {
	log    *zap.Logger
	parser *css.Parser
}

// NewExpander creates a new static variable expander.
func NewExpander(log *zap.Logger) *Expander {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expander{log: log.Named("vars-expander"), parser: css.NewParser(log)}
}

// Expansion is the result of Expand.
type Expansion struct {
	Text       string
	Variables  int      // number of distinct custom properties found
	Unresolved []string // references kept as literal var() text
	FellBack   []string // references replaced by their fallback
}

// Expand returns cssText with every var() reference replaced and every
// custom property declaration removed. Rules which only held custom
// properties are removed altogether. Text without "var(" in any letter
// case is returned unchanged, so Expand is idempotent.
func (e *Expander) Expand(cssText string) Expansion {
	if !css.MentionsVar(cssText) {
		return Expansion{Text: cssText}
	}

	sheet := e.parser.Parse(css.StripComments(cssText))

	scope := make(Scope)
	collect(sheet.Nodes, scope)

	rw := &rewriter{scope: scope}
	sheet.Nodes = rw.nodes(sheet.Nodes)
	sheet.Trailing = rw.text(sheet.Trailing)

	res := Expansion{
		Text:       sheet.String(),
		Variables:  len(scope),
		Unresolved: compact(rw.unresolved),
		FellBack:   compact(rw.fellBack),
	}
	e.log.Debug("Expanded custom properties",
		zap.Int("variables", res.Variables),
		zap.Strings("unresolved", res.Unresolved),
		zap.Strings("fallback", res.FellBack))
	return res
}

// collect gathers custom properties in document order, later declarations
// overwrite earlier ones.
func collect(nodes []css.Node, scope Scope) {
	add := func(decls []css.Declaration) {
		for _, d := range decls {
			if d.IsCustom() {
				scope[d.Property] = d.Value
			}
		}
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case *css.Rule:
			add(n.Declarations)
		case *css.AtRule:
			if n.HasChildren() {
				collect(n.Children, scope)
			} else if !n.Standalone {
				add(css.ParseDeclarations(n.Body))
			}
		}
	}
}

type rewriter struct {
	scope      Scope
	unresolved []string
	fellBack   []string
}

func (rw *rewriter) text(s string) string {
	res := Substitute(s, rw.scope.Lookup)
	rw.unresolved = append(rw.unresolved, res.Unresolved...)
	rw.fellBack = append(rw.fellBack, res.FellBack...)
	return res.Text
}

// nodes rewrites a node list in place and drops nodes emptied by removing
// custom properties.
func (rw *rewriter) nodes(nodes []css.Node) []css.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		switch n := n.(type) {
		case *css.Rule:
			if rw.rule(n) {
				kept = append(kept, n)
			}
		case *css.AtRule:
			n.Prelude = rw.text(n.Prelude)
			switch {
			case n.Standalone:
			case n.HasChildren():
				hadChildren := len(n.Children) > 0
				n.Children = rw.nodes(n.Children)
				if hadChildren && len(n.Children) == 0 {
					continue
				}
			case !strings.Contains(n.Body, "--"):
				n.Body = rw.text(n.Body)
			default:
				// declaration list of @font-face, @page and such
				r := &css.Rule{Declarations: css.ParseDeclarations(n.Body)}
				if !rw.rule(r) {
					continue
				}
				n.Body = css.FormatDeclarations(r.Declarations)
			}
			kept = append(kept, n)
		default:
			kept = append(kept, n)
		}
	}
	return kept
}

// rule rewrites declarations of a single rule, returns false when the rule
// became empty.
func (rw *rewriter) rule(r *css.Rule) bool {
	decls := make([]css.Declaration, 0, len(r.Declarations))
	for _, d := range r.Declarations {
		if d.IsCustom() {
			continue
		}
		d.Value = rw.text(d.Value)
		decls = append(decls, d)
	}
	removed := len(decls) < len(r.Declarations)
	r.Declarations = decls
	return !removed || len(decls) > 0
}

func compact(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	return slices.Compact(names)
}
