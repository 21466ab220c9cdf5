package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Notation is the syntax a color literal was written in.
type Notation int

const (
	NotationHex Notation = iota
	NotationRGB
	NotationHSL
)

// Literal is a parsed CSS color literal.
type Literal struct {
	Color    RGB
	Alpha    float64 // 0..1
	Notation Notation
}

// Parse parses a single color literal: #hex (3, 4, 6 or 8 digits),
// rgb()/rgba() or hsl()/hsla() in either comma or space/slash syntax.
// Keywords (named colors, currentColor, transparent) are not literals.
func Parse(s string) (Literal, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, a, ok := ParseHex(s)
		if !ok {
			return Literal{}, false
		}
		return Literal{Color: c, Alpha: a, Notation: NotationHex}, true
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Literal{}, false
	}
	fn := strings.ToLower(strings.TrimSpace(s[:open]))
	args, ok := splitArgs(s[open+1 : len(s)-1])
	if !ok {
		return Literal{}, false
	}

	switch fn {
	case "rgb", "rgba":
		return parseRGB(args)
	case "hsl", "hsla":
		return parseHSL(args)
	}
	return Literal{}, false
}

// Format renders the literal back in its own notation family. Hex colors
// with transparency are written as rgba() since the publishing target does
// not understand 8 digit hex.
func (l Literal) Format() string {
	c := l.Color.Clamped()
	alpha := clamp(l.Alpha, 0, 1)
	opaque := alpha >= 1

	switch l.Notation {
	case NotationHSL:
		h := RGBToHSL(c)
		if opaque {
			return fmt.Sprintf("hsl(%s, %s%%, %s%%)", formatNumber(h.H), formatNumber(h.S), formatNumber(h.L))
		}
		return fmt.Sprintf("hsla(%s, %s%%, %s%%, %s)", formatNumber(h.H), formatNumber(h.S), formatNumber(h.L), formatNumber(alpha))
	case NotationRGB:
		if opaque {
			return fmt.Sprintf("rgb(%d, %d, %d)", int(c.R), int(c.G), int(c.B))
		}
	default:
		if opaque {
			return FormatHex(c)
		}
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", int(c.R), int(c.G), int(c.B), formatNumber(alpha))
}

// splitArgs returns 3 or 4 color function arguments from either
// "a, b, c[, d]" or "a b c[ / d]".
func splitArgs(s string) ([]string, bool) {
	var args []string
	if strings.Contains(s, ",") {
		for a := range strings.SplitSeq(s, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	} else {
		main, alpha, hasAlpha := strings.Cut(s, "/")
		args = strings.Fields(main)
		if hasAlpha {
			args = append(args, strings.TrimSpace(alpha))
		}
	}
	if len(args) != 3 && len(args) != 4 {
		return nil, false
	}
	for _, a := range args {
		if a == "" {
			return nil, false
		}
	}
	return args, true
}

func parseRGB(args []string) (Literal, bool) {
	var ch [3]float64
	for i := range 3 {
		v, ok := parseChannel(args[i])
		if !ok {
			return Literal{}, false
		}
		ch[i] = v
	}
	alpha, ok := parseAlpha(args)
	if !ok {
		return Literal{}, false
	}
	return Literal{Color: RGB{R: ch[0], G: ch[1], B: ch[2]}.Clamped(), Alpha: alpha, Notation: NotationRGB}, true
}

func parseHSL(args []string) (Literal, bool) {
	h, ok := parseHue(args[0])
	if !ok {
		return Literal{}, false
	}
	s, ok1 := parsePercent(args[1])
	l, ok2 := parsePercent(args[2])
	if !ok1 || !ok2 {
		return Literal{}, false
	}
	alpha, ok := parseAlpha(args)
	if !ok {
		return Literal{}, false
	}
	return Literal{Color: HSLToRGB(HSL{H: h, S: s, L: l}), Alpha: alpha, Notation: NotationHSL}, true
}

// parseChannel parses an rgb() channel: 0..255 number or percentage.
func parseChannel(s string) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp(v, 0, 100) * 255 / 100, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v, 0, 255), true
}

func parseAlpha(args []string) (float64, bool) {
	if len(args) < 4 {
		return 1, true
	}
	s := args[3]
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp(v/100, 0, 1), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v, 0, 1), true
}

// parsePercent accepts "50%" and bare "50".
func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return clamp(v, 0, 100), true
}

func parseHue(s string) (float64, bool) {
	s = strings.ToLower(s)
	factor := 1.0
	for _, unit := range []struct {
		suffix string
		factor float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	} {
		if v, ok := strings.CutSuffix(s, unit.suffix); ok {
			s, factor = v, unit.factor
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * factor, true
}

// formatNumber prints at most 3 decimals without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
