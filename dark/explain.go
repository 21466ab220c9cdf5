package dark

import (
	"strings"

	"wemd/color"
	"wemd/css"
	"wemd/utils/debug"
)

// Explain describes conversion of every color literal in cssText: element
// type of the rule, classification of each use and the resulting color.
// Rules without colors are omitted.
func Explain(cssText string) string {
	tw := debug.NewTreeWriter()
	sheet := css.NewParser(nil).Parse(css.StripComments(cssText))
	explainNodes(tw, 0, sheet.Nodes, func() {})
	return tw.String()
}

// once wraps header output so enclosing at-rules are printed only when
// something inside them has colors.
func once(fn func()) func() {
	done := false
	return func() {
		if !done {
			done = true
			fn()
		}
	}
}

func explainNodes(tw *debug.TreeWriter, depth int, nodes []css.Node, open func()) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *css.Rule:
			explainDeclarations(tw, depth, n.Selector, n.Declarations, open)
		case *css.AtRule:
			switch {
			case n.Standalone:
			case n.HasChildren():
				explainNodes(tw, depth+1, n.Children, once(func() {
					open()
					tw.Line(depth, "%s", n.Prelude)
				}))
			case strings.Contains(n.Body, ":"):
				explainDeclarations(tw, depth, n.Prelude, css.ParseDeclarations(n.Body), open)
			}
		}
	}
}

func explainDeclarations(tw *debug.TreeWriter, depth int, selector string, decls []css.Declaration, open func()) {
	base := ClassifySelector(selector)
	header := once(func() {
		open()
		tw.Line(depth, "%s (%s)", selector, base)
	})
	for _, d := range decls {
		if d.IsCustom() {
			continue
		}
		property := d.Name()
		var uses []string
		converted := rewriteColors(d.Value, func(lit color.Literal) string {
			cls := refine(base, property, lit.Color)
			from := lit.Format()
			lit.Color = Remap(lit.Color, cls)
			uses = append(uses, from+" -> "+lit.Format()+" ["+cls.String()+"]")
			return lit.Format()
		})
		if len(uses) == 0 {
			continue
		}
		header()
		tw.Field(depth+1, d.Property, converted)
		for _, u := range uses {
			tw.Line(depth+2, "%s", u)
		}
	}
}
