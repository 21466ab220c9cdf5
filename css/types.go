package css

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single "property: value [!important]" pair.
type Declaration struct {
	Property  string // Property name as written (custom properties are case sensitive)
	Value     string // Raw value text without the !important flag
	Important bool
}

// IsCustom returns true for custom property declarations (--name).
func (d Declaration) IsCustom() bool {
	return strings.HasPrefix(d.Property, "--")
}

// Name returns lower-cased property name for non-custom properties and the
// name as is for custom ones.
func (d Declaration) Name() string {
	if d.IsCustom() {
		return d.Property
	}
	return strings.ToLower(d.Property)
}

// String returns the CSS representation without the trailing semicolon.
func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// Node is an element of a parsed stylesheet: either *Rule or *AtRule.
type Node interface {
	writeTo(w io.Writer, indent string) (int, error)
}

// Rule is a qualified rule: selector list followed by a declaration block.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// AtRule is an @-rule. Exactly one of the following shapes is used:
//   - Standalone: terminated by ";" (@import, @charset), Prelude only;
//   - block with nested rules (@media, @supports): Children;
//   - block with a declaration list (@font-face, @page): raw Body.
type AtRule struct {
	Prelude    string // everything from "@" up to "{" or ";", trimmed
	Children   []Node
	Body       string
	Standalone bool
}

// HasChildren reports whether the at-rule body was parsed into nodes.
func (a *AtRule) HasChildren() bool {
	return !a.Standalone && a.Children != nil
}

// Stylesheet is a parsed stylesheet in source order.
type Stylesheet struct {
	Nodes []Node
	// Trailing keeps unparsable text found after the last complete node
	// (unbalanced braces and such), it is written back verbatim.
	Trailing string
}

// Walk calls fn for every rule in the stylesheet including rules nested in
// at-rule blocks, in source order.
func (s *Stylesheet) Walk(fn func(rule *Rule)) {
	walkNodes(s.Nodes, fn)
}

func walkNodes(nodes []Node, fn func(rule *Rule)) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Rule:
			fn(n)
		case *AtRule:
			walkNodes(n.Children, fn)
		}
	}
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := writeNodes(w, s.Nodes, "")
	total += int64(n)
	if err != nil {
		return total, err
	}
	if trailing := strings.TrimSpace(s.Trailing); trailing != "" {
		n, err = fmt.Fprintf(w, "%s\n", trailing)
		total += int64(n)
	}
	return total, err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeNodes(w io.Writer, nodes []Node, indent string) (int, error) {
	var total int
	for i, node := range nodes {
		n, err := node.writeTo(w, indent)
		total += n
		if err != nil {
			return total, err
		}
		// Blank line between top-level items
		if indent == "" && i < len(nodes)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func (r *Rule) writeTo(w io.Writer, indent string) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, r.Selector)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range r.Declarations {
		n, err = fmt.Fprintf(w, "%s  %s;\n", indent, d)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

func (a *AtRule) writeTo(w io.Writer, indent string) (int, error) {
	if a.Standalone {
		return fmt.Fprintf(w, "%s%s;\n", indent, a.Prelude)
	}
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, a.Prelude)
	total += n
	if err != nil {
		return total, err
	}
	if a.Children != nil {
		n, err = writeNodes(w, a.Children, indent+"  ")
	} else if body := strings.TrimSpace(a.Body); body != "" {
		n, err = fmt.Fprintf(w, "%s  %s\n", indent, body)
	} else {
		n = 0
	}
	total += n
	if err != nil {
		return total, err
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// FormatDeclarations renders declarations as an inline style attribute
// value: "a: 1; b: 2;".
func FormatDeclarations(decls []Declaration) string {
	var sb strings.Builder
	for i, d := range decls {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(d.String())
		sb.WriteByte(';')
	}
	return sb.String()
}
