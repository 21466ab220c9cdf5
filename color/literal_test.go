package color

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		want     RGB
		alpha    float64
		notation Notation
	}{
		{"#333", RGB{51, 51, 51}, 1, NotationHex},
		{"rgb(1, 2, 3)", RGB{1, 2, 3}, 1, NotationRGB},
		{"RGBA(0,0,0,0.5)", RGB{0, 0, 0}, 0.5, NotationRGB},
		{"rgb(255 0 0 / 25%)", RGB{255, 0, 0}, 0.25, NotationRGB},
		{"rgb(100%, 0%, 50%)", RGB{255, 0, 128}, 1, NotationRGB},
		{"hsl(0, 100%, 50%)", RGB{255, 0, 0}, 1, NotationHSL},
		{"hsla(120deg, 100%, 50%, .5)", RGB{0, 255, 0}, 0.5, NotationHSL},
		{"hsl(0.5turn 100% 50%)", RGB{0, 255, 255}, 1, NotationHSL},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if !ok {
			t.Errorf("Parse(%q) failed", tt.in)
			continue
		}
		if got.Color.Clamped() != tt.want || math.Abs(got.Alpha-tt.alpha) > 1e-9 || got.Notation != tt.notation {
			t.Errorf("Parse(%q) = %+v, want %v alpha %v notation %v", tt.in, got, tt.want, tt.alpha, tt.notation)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"red", "currentColor", "transparent", "rgb(1, 2)", "rgb(a, b, c)", "var(--x)", "url(a.png)", "#12"} {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q) unexpectedly succeeded", in)
		}
	}
}

func TestLiteralFormat(t *testing.T) {
	tests := []struct {
		lit  Literal
		want string
	}{
		{Literal{Color: RGB{7, 193, 96}, Alpha: 1, Notation: NotationHex}, "#07c160"},
		{Literal{Color: RGB{0, 0, 0}, Alpha: 0.5, Notation: NotationHex}, "rgba(0, 0, 0, 0.5)"},
		{Literal{Color: RGB{1, 2, 3}, Alpha: 1, Notation: NotationRGB}, "rgb(1, 2, 3)"},
		{Literal{Color: RGB{1, 2, 3}, Alpha: 0.25, Notation: NotationRGB}, "rgba(1, 2, 3, 0.25)"},
		{Literal{Color: RGB{255, 0, 0}, Alpha: 1, Notation: NotationHSL}, "hsl(0, 100%, 50%)"},
	}
	for _, tt := range tests {
		if got := tt.lit.Format(); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.lit, got, tt.want)
		}
	}
}
