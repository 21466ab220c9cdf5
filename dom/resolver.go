// Package dom resolves CSS custom properties used in inline styles of an
// HTML fragment, honoring the scope chain of the element tree.
package dom

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"wemd/css"
	"wemd/vars"
)

// Resolver replaces var() references in inline styles. Unlike
// vars.Expander every element sees the custom properties of its own
// ancestors only, nearer declarations shadowing farther ones.
type Resolver struct {
	log      *zap.Logger
	computer StyleComputer
}

// NewResolver creates a resolver. computer is optional, when present it is
// asked for computed values first.
func NewResolver(computer StyleComputer, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log.Named("dom-resolver"), computer: computer}
}

// Report summarizes a single resolution.
type Report struct {
	Elements    int // elements with inline custom properties or var()
	Computed    int // values taken from the style computer
	Substituted int // values produced by textual substitution
	Invalid     int // custom properties which failed to resolve
	Unresolved  int // references left as literal var()
}

type walkState struct {
	report   Report
	index    map[*html.Node]int
	computed map[Query]string
}

// Resolve returns fragment with all resolvable var() references in style
// attributes replaced and custom property declarations removed. Fragment
// without "var(" is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, fragment string) (string, error) {
	out, _, err := r.ResolveWithReport(ctx, fragment)
	return out, err
}

// ResolveWithReport is Resolve which also returns resolution statistics.
func (r *Resolver) ResolveWithReport(ctx context.Context, fragment string) (out string, report Report, err error) {
	if !css.MentionsVar(fragment) {
		return fragment, report, nil
	}

	stg, err := newStage(fragment)
	if err != nil {
		return "", report, err
	}
	defer stg.release()
	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("panic while resolving variables: %v", p)
		}
	}()

	container := stg.selection()
	st := &walkState{index: make(map[*html.Node]int)}

	r.compute(ctx, container, st)
	container.Children().Each(func(_ int, s *goquery.Selection) {
		r.walk(s, nil, st)
	})
	container.Find("[" + NodeAttr + "]").RemoveAttr(NodeAttr)

	out, err = container.Html()
	if err != nil {
		return "", st.report, fmt.Errorf("unable to render resolved html: %w", err)
	}
	r.log.Debug("Resolved inline variables",
		zap.Int("elements", st.report.Elements),
		zap.Int("computed", st.report.Computed),
		zap.Int("substituted", st.report.Substituted),
		zap.Int("invalid", st.report.Invalid),
		zap.Int("unresolved", st.report.Unresolved))
	return out, st.report, nil
}

// compute marks elements using var() and asks the style computer for their
// values in a single round trip.
func (r *Resolver) compute(ctx context.Context, container *goquery.Selection, st *walkState) {
	if r.computer == nil {
		return
	}

	var queries []Query
	container.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		if !css.MentionsVar(style) {
			return
		}
		idx := len(st.index)
		added := false
		for _, d := range css.ParseDeclarations(style) {
			if d.IsCustom() || css.FindNextVarStart(d.Value, 0) < 0 {
				continue
			}
			queries = append(queries, Query{Node: idx, Property: d.Name()})
			added = true
		}
		if added {
			st.index[s.Get(0)] = idx
			s.SetAttr(NodeAttr, strconv.Itoa(idx))
		}
	})
	if len(queries) == 0 {
		return
	}

	fragment, err := container.Html()
	if err != nil {
		r.log.Warn("Unable to render fragment for style computer", zap.Error(err))
		return
	}
	computed, err := r.computer.ComputeStyles(ctx, fragment, queries)
	if err != nil {
		r.log.Warn("Unable to get computed styles, using textual substitution", zap.Error(err))
		return
	}
	st.computed = computed
}

func (r *Resolver) walk(s *goquery.Selection, inherited vars.Scope, st *walkState) {
	current := inherited
	if style, ok := s.Attr("style"); ok && (strings.Contains(style, "--") || css.MentionsVar(style)) {
		st.report.Elements++
		current = r.rewrite(s, style, inherited, st)
	}
	s.Children().Each(func(_ int, c *goquery.Selection) {
		r.walk(c, current, st)
	})
}

// rewrite resolves inline style of a single element and returns the scope
// its children inherit.
func (r *Resolver) rewrite(s *goquery.Selection, style string, inherited vars.Scope, st *walkState) vars.Scope {
	decls := css.ParseDeclarations(style)

	local := make(vars.Scope)
	for _, d := range decls {
		if d.IsCustom() {
			local[d.Property] = d.Value
		}
	}

	current := inherited
	if len(local) > 0 {
		current = make(vars.Scope, len(inherited)+len(local))
		maps.Copy(current, inherited)
		lookup := func(name string) (string, bool) {
			if v, ok := local[name]; ok {
				return v, true
			}
			return inherited.Lookup(name)
		}
		for name := range local {
			if v, ok := vars.ResolveName(name, lookup); ok {
				current[name] = v
				continue
			}
			// invalid at computed value time, shadows inherited value
			delete(current, name)
			st.report.Invalid++
			r.log.Debug("Invalid custom property", zap.String("name", name), zap.String("element", goquery.NodeName(s)))
		}
	}

	kept := make([]css.Declaration, 0, len(decls))
	marginTouched := false
	for _, d := range decls {
		if d.IsCustom() {
			continue
		}
		if css.FindNextVarStart(d.Value, 0) >= 0 {
			d.Value = r.value(s, d, current, st)
			marginTouched = marginTouched || isMargin(d.Name())
		}
		kept = append(kept, d)
	}
	if marginTouched && goquery.NodeName(s) == "p" {
		kept = expandMargins(kept)
	}

	if len(kept) == 0 {
		s.RemoveAttr("style")
	} else {
		s.SetAttr("style", css.FormatDeclarations(kept))
	}
	return current
}

func (r *Resolver) value(s *goquery.Selection, d css.Declaration, current vars.Scope, st *walkState) string {
	if st.computed != nil {
		if idx, ok := st.index[s.Get(0)]; ok {
			v := strings.TrimSpace(st.computed[Query{Node: idx, Property: d.Name()}])
			if v != "" && !css.MentionsVar(v) {
				st.report.Computed++
				return v
			}
		}
	}
	res := vars.Substitute(d.Value, current.Lookup)
	st.report.Substituted++
	st.report.Unresolved += len(res.Unresolved)
	return res.Text
}
