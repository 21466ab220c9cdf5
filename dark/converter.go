// Package dark derives a dark mode stylesheet from a light theme by
// classifying every color use and remapping it in HSL space.
package dark

import (
	"strings"

	"go.uber.org/zap"

	"wemd/cache"
	"wemd/color"
	"wemd/css"
)

// Marker is prepended to converted stylesheets. Input carrying it is
// returned as is, which makes conversion idempotent.
const Marker = "/* wemd-wechat-dark-converted */"

// Converter converts light stylesheets into dark ones. Results are cached by
// content, the cache must be cleared whenever conversion inputs change
// meaning (theme set or custom CSS edited). Converter is safe for concurrent
// use.
type Converter struct {
	log    *zap.Logger
	parser *css.Parser
	cache  *cache.FIFO[uint64, string]
}

// NewConverter creates a converter using results cache c. When c is nil a
// private cache of default capacity is created.
func NewConverter(c *cache.FIFO[uint64, string], log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if c == nil {
		c = cache.NewFIFO[uint64, string](cache.DefaultCapacity)
	}
	return &Converter{
		log:    log.Named("dark-converter"),
		parser: css.NewParser(log),
		cache:  c,
	}
}

// ClearCache drops all cached conversions.
func (c *Converter) ClearCache() {
	c.cache.Clear()
	c.log.Debug("Conversion cache cleared")
}

// Convert returns dark mode version of cssText prefixed with Marker.
func (c *Converter) Convert(cssText string) string {
	if strings.Contains(cssText, Marker) {
		return cssText
	}

	key := cache.Key(cssText)
	if out, ok := c.cache.Get(key); ok {
		c.log.Debug("Conversion cache hit", zap.Uint64("key", key))
		return out
	}

	sheet := c.parser.Parse(css.StripComments(cssText))
	var rewritten int
	convertNodes(sheet.Nodes, &rewritten)

	out := Marker + "\n" + sheet.String()
	c.cache.Put(key, out)
	c.log.Debug("Converted stylesheet", zap.Uint64("key", key), zap.Int("colors", rewritten))
	return out
}

func convertNodes(nodes []css.Node, counter *int) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *css.Rule:
			convertDeclarations(ClassifySelector(n.Selector), n.Declarations, counter)
		case *css.AtRule:
			switch {
			case n.Standalone:
			case n.HasChildren():
				convertNodes(n.Children, counter)
			case strings.Contains(n.Body, ":"):
				// @font-face, @page: declarations without selector
				decls := css.ParseDeclarations(n.Body)
				before := *counter
				convertDeclarations(ClassifySelector(n.Prelude), decls, counter)
				if *counter != before {
					n.Body = css.FormatDeclarations(decls)
				}
			}
		}
	}
}

func convertDeclarations(base ElementType, decls []css.Declaration, counter *int) {
	for i, d := range decls {
		if d.IsCustom() {
			continue
		}
		property := d.Name()
		decls[i].Value = rewriteColors(d.Value, func(lit color.Literal) string {
			*counter++
			lit.Color = Remap(lit.Color, refine(base, property, lit.Color))
			return lit.Format()
		})
	}
}

// ConvertColor converts a single color literal as if it was used in a rule
// with selector for property. Text which is not a color literal is returned
// unchanged.
func ConvertColor(selector, property, text string) string {
	lit, ok := color.Parse(text)
	if !ok {
		return text
	}
	lit.Color = Remap(lit.Color, Classify(selector, property, lit.Color))
	return lit.Format()
}
