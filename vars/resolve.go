// Package vars removes CSS custom properties from stylesheets by textual
// substitution of var() references.
package vars

import (
	"strings"

	"wemd/css"
)

// Lookup returns the raw (possibly var()-containing) value of a custom
// property.
type Lookup func(name string) (string, bool)

// Scope is a flat set of custom properties, name -> raw value.
type Scope map[string]string

// Lookup implements Lookup over the scope.
func (s Scope) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Result describes what happened during substitution.
type Result struct {
	Text string
	// Unresolved lists names which were kept as literal var() text because
	// they had neither a usable value nor a fallback.
	Unresolved []string
	// FellBack lists names which were replaced with their fallback text.
	FellBack []string
}

// Substitute replaces every var() in text using lookup. Values are resolved
// recursively; self references, direct or through other variables, are
// detected and treated as unresolvable. When a reference cannot be resolved
// its fallback (itself substituted) is used; without a fallback the var()
// text is kept as is.
func Substitute(text string, lookup Lookup) Result {
	r := &resolver{lookup: lookup, visiting: make(map[string]bool)}
	res := Result{Text: r.substitute(text)}
	res.Unresolved = r.unresolved
	res.FellBack = r.fellBack
	return res
}

// ResolveName returns the fully substituted value of a single custom
// property. ok is false when the property is missing, part of a reference
// cycle, or still contains var() after substitution.
func ResolveName(name string, lookup Lookup) (string, bool) {
	r := &resolver{lookup: lookup, visiting: make(map[string]bool)}
	return r.resolveName(name)
}

type resolver struct {
	lookup   Lookup
	visiting map[string]bool

	unresolved []string
	fellBack   []string
}

func (r *resolver) substitute(text string) string {
	start := css.FindNextVarStart(text, 0)
	if start < 0 {
		return text
	}

	var (
		sb  strings.Builder
		pos int
	)
	sb.Grow(len(text))
	for start >= 0 {
		open := start + len("var")
		end := css.FindMatchingParen(text, open)
		if end < 0 {
			// unbalanced, nothing sensible can be done with the rest
			break
		}

		sb.WriteString(text[pos:start])
		name, fallback, hasFallback := css.SplitVarArgs(text[open+1 : end])
		if value, ok := r.resolveName(name); ok {
			sb.WriteString(value)
		} else if hasFallback {
			r.note(&r.fellBack, name)
			sb.WriteString(r.substitute(fallback))
		} else {
			r.note(&r.unresolved, name)
			sb.WriteString(text[start : end+1])
		}

		pos = end + 1
		start = css.FindNextVarStart(text, pos)
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

// note records outcome of top-level references only, failures inside
// variable values are reported through the reference which used them.
func (r *resolver) note(list *[]string, name string) {
	if len(r.visiting) == 0 {
		*list = append(*list, name)
	}
}

func (r *resolver) resolveName(name string) (string, bool) {
	if !strings.HasPrefix(name, "--") || r.visiting[name] {
		return "", false
	}
	raw, ok := r.lookup(name)
	if !ok {
		return "", false
	}

	r.visiting[name] = true
	value := strings.TrimSpace(r.substitute(raw))
	delete(r.visiting, name)

	if css.FindNextVarStart(value, 0) >= 0 {
		return "", false
	}
	return value, true
}
