package dom

import (
	"slices"

	"wemd/css"
)

var marginSides = [4]string{"margin-top", "margin-right", "margin-bottom", "margin-left"}

func isMargin(name string) bool {
	return name == "margin" || slices.Contains(marginSides[:], name)
}

// expandMargins replaces margin declarations with explicit longhands placed
// where the first margin declaration was. Declarations are returned
// unchanged when the shorthand has a form we do not understand.
func expandMargins(decls []css.Declaration) []css.Declaration {
	var (
		sides [4]*css.Declaration
		first = -1
	)
	set := func(i int, value string, important bool) {
		// normal declaration cannot override an important one
		if sides[i] != nil && sides[i].Important && !important {
			return
		}
		sides[i] = &css.Declaration{Property: marginSides[i], Value: value, Important: important}
	}

	for i, d := range decls {
		name := d.Name()
		if !isMargin(name) {
			continue
		}
		if first < 0 {
			first = i
		}
		if name != "margin" {
			set(slices.Index(marginSides[:], name), d.Value, d.Important)
			continue
		}
		values, ok := expandBox(d.Value)
		if !ok {
			return decls
		}
		for j, v := range values {
			set(j, v, d.Important)
		}
	}
	if first < 0 {
		return decls
	}

	out := make([]css.Declaration, 0, len(decls)+len(sides))
	for i, d := range decls {
		if i == first {
			for _, s := range sides {
				if s != nil {
					out = append(out, *s)
				}
			}
		}
		if !isMargin(d.Name()) {
			out = append(out, d)
		}
	}
	return out
}

// expandBox expands 1 to 4 value box shorthand into top, right, bottom, left.
func expandBox(value string) ([4]string, bool) {
	f := css.Fields(value)
	switch len(f) {
	case 1:
		return [4]string{f[0], f[0], f[0], f[0]}, true
	case 2:
		return [4]string{f[0], f[1], f[0], f[1]}, true
	case 3:
		return [4]string{f[0], f[1], f[2], f[1]}, true
	case 4:
		return [4]string{f[0], f[1], f[2], f[3]}, true
	}
	return [4]string{}, false
}
