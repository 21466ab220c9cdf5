package dark

import (
	"regexp"
	"strings"

	"wemd/color"
)

// word matches one of the alternatives as a whole selector token. Short
// tags use it since "tr" or "pre" would misfire inside "trend" or "preview".
func word(alternatives string) string {
	return `(?:^|[^\w-])(?:` + alternatives + `)(?:$|[^\w-])`
}

// prefix matches a token starting with one of the alternatives, so
// "multiquote-1", "callout-title" and "codeblock" keep their role.
func prefix(alternatives string) string {
	return `(?:^|[^\w-])(?:` + alternatives + `)[\w-]*`
}

func either(patterns ...string) *regexp.Regexp {
	return regexp.MustCompile(strings.Join(patterns, "|"))
}

var (
	reSelection  = regexp.MustCompile(`::?selection`)
	rePseudo     = regexp.MustCompile(`::?(?:before|after|marker|backdrop|placeholder)`)
	reTable      = either(prefix(`table|thead|tbody|tfoot`), word(`tr|th|td`))
	reCode       = either(prefix(`code|hljs|language-`), word(`pre`), prefix(`pre-`))
	reBlockquote = either(prefix(`blockquote|callout|multiquote|tip|note|warning|important|caution|info|alert|admonition`))
	reHeading    = either(word(`h[1-6]`))
	reBody       = either(word(`p|li|section|span|ul|ol|strong|em|a`))
	reBackground = either(word(`wemd|body|html|root|background|bg|container|wrapper|card|article`))
)

// ClassifySelector derives the base element type of a rule from its
// selector text. Checks run from the most to the least specific role, so
// "#wemd blockquote p" is a blockquote and "#wemd p" is body text.
func ClassifySelector(selector string) ElementType {
	s := strings.ToLower(selector)
	switch {
	case reSelection.MatchString(s):
		return TypeSelection
	case rePseudo.MatchString(s):
		return TypeDecorativeDark
	case reTable.MatchString(s):
		return TypeTable
	case reCode.MatchString(s):
		return TypeCode
	case reBlockquote.MatchString(s):
		return TypeBlockquote
	case reHeading.MatchString(s):
		return TypeHeading
	case reBody.MatchString(s):
		return TypeBody
	case reBackground.MatchString(s):
		return TypeBackground
	}
	return TypeOther
}

// Classify returns the role of color c used as property in a rule with the
// given selector. The color only matters for border, outline and shadow
// properties, where the decision depends on the color itself.
func Classify(selector, property string, c color.RGB) Classification {
	return refine(ClassifySelector(selector), property, c)
}

func refine(base ElementType, property string, c color.RGB) Classification {
	switch p := strings.ToLower(property); {
	case isEdgeProperty(p):
		if color.Luminance(c) < 20 {
			return Classification{Type: TypeDecorativeDark}
		}
		if color.RGBToHSL(c).S > 15 {
			return Classification{Type: TypeVibrant}
		}
		return textVariant(base)
	case isTextProperty(p):
		return textVariant(base)
	default:
		return Classification{Type: backgroundVariant(base)}
	}
}

func isEdgeProperty(p string) bool {
	return strings.HasPrefix(p, "border") ||
		strings.HasPrefix(p, "outline") ||
		strings.HasPrefix(p, "column-rule") ||
		strings.HasSuffix(p, "shadow")
}

func isTextProperty(p string) bool {
	switch p {
	case "color", "fill", "stroke":
		return true
	}
	return strings.HasSuffix(p, "color") && !strings.HasPrefix(p, "background")
}

func textVariant(base ElementType) Classification {
	switch base {
	case TypeTable:
		return Classification{Type: TypeTableText, Text: true}
	case TypeBlockquote:
		return Classification{Type: TypeBlockquoteText, Text: true}
	case TypeCode:
		return Classification{Type: TypeCodeText, Text: true}
	case TypeSelection:
		return Classification{Type: TypeSelectionText, Text: true}
	}
	return Classification{Type: base, Text: true}
}

func backgroundVariant(base ElementType) ElementType {
	switch base {
	case TypeHeading, TypeBody, TypeBackground:
		return TypeBackground
	}
	return base
}
