package dark

import (
	"math"
	"regexp"
	"testing"

	"wemd/color"
)

var hex6 = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func allClassifications() []Classification {
	var out []Classification
	for _, t := range ElementTypes() {
		out = append(out, Classification{Type: t}, Classification{Type: t, Text: true})
	}
	return out
}

func lightnessOf(c color.RGB) float64 {
	return color.RGBToHSL(c).L
}

func TestRemapVibrantProtected(t *testing.T) {
	green, _, _ := color.ParseHex("#07C160")
	for _, cls := range allClassifications() {
		got := Remap(green, cls)
		if l := lightnessOf(got); l < 35-0.5 || l > 55+0.5 {
			t.Errorf("Remap(#07C160, %v) lightness = %.2f, want within [35, 55]", cls, l)
		}
		if h := color.RGBToHSL(got).H; math.Abs(h-color.RGBToHSL(green).H) > 2 {
			t.Errorf("Remap(#07C160, %v) changed hue to %.2f", cls, h)
		}
	}
}

func TestRemapRoundTrip(t *testing.T) {
	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 51 {
				in := color.RGB{R: float64(r), G: float64(g), B: float64(b)}
				for _, cls := range allClassifications() {
					out := color.FormatHex(Remap(in, cls))
					if !hex6.MatchString(out) {
						t.Fatalf("Remap(%v, %v) = %q, not a 6 digit hex", in, cls, out)
					}
					if _, _, ok := color.ParseHex(out); !ok {
						t.Fatalf("cannot parse %q back", out)
					}
				}
			}
		}
	}
}

func TestRemapDecorativeDark(t *testing.T) {
	got := Remap(color.RGB{}, Classification{Type: TypeDecorativeDark})
	if l := lightnessOf(got); l < 10-0.5 || l > 15+0.5 {
		t.Errorf("decorative black lightness = %.2f, want within [10, 15]", l)
	}
}

func TestRemapBackgrounds(t *testing.T) {
	white := color.RGB{R: 255, G: 255, B: 255}
	tests := []struct {
		in   color.RGB
		t    ElementType
		want float64
	}{
		{white, TypeBackground, 12},
		{white, TypeTable, 10},
		{white, TypeBlockquote, 14},
		{white, TypeCode, 10},
		{white, TypeOther, 12},
		{white, TypeHeading, 10},
		{color.RGB{R: 179, G: 179, B: 179}, TypeTable, 24},
		{color.RGB{}, TypeBackground, 18},
	}
	for _, tt := range tests {
		if l := lightnessOf(Remap(tt.in, Classification{Type: tt.t})); math.Abs(l-tt.want) > 0.5 {
			t.Errorf("Remap(%v, %v) lightness = %.2f, want %.0f", tt.in, tt.t, l, tt.want)
		}
	}

	// near-white cells stay darker than tinted ones
	lWhite := lightnessOf(Remap(white, Classification{Type: TypeTable}))
	lGray := lightnessOf(Remap(color.RGB{R: 230, G: 230, B: 230}, Classification{Type: TypeTable}))
	if lWhite >= lGray {
		t.Errorf("table falloff not monotonic: white %.2f, light gray %.2f", lWhite, lGray)
	}
}

func TestRemapAnchorsDarkSaturated(t *testing.T) {
	navy, _, _ := color.ParseHex("#0a0a30")
	for _, cls := range allClassifications() {
		if l := lightnessOf(Remap(navy, cls)); math.Abs(l-22) > 0.5 {
			t.Errorf("Remap(#0a0a30, %v) lightness = %.2f, want 22", cls, l)
		}
	}
}

func TestRemapText(t *testing.T) {
	body := Classification{Type: TypeBody, Text: true}

	near := color.RGB{R: 238, G: 238, B: 238}
	if got := Remap(near, body); got != near {
		t.Errorf("near-white text changed: %v", got)
	}

	black := color.Luminance(Remap(color.RGB{}, body))
	gray := color.Luminance(Remap(color.RGB{R: 102, G: 102, B: 102}, body))
	for _, l := range []float64{black, gray} {
		if l < 90-1 || l > 205+1 {
			t.Errorf("body text luminance %.2f outside [90, 205]", l)
		}
	}
	if black <= gray {
		t.Errorf("darker text should end up brighter: black %.2f, gray %.2f", black, gray)
	}

	bands := map[ElementType][2]float64{
		TypeTableText:      {191, 224},
		TypeBlockquoteText: {191, 224},
		TypeCodeText:       {179, 217},
		TypeSelectionText:  {230, 250},
	}
	for et, b := range bands {
		for _, c := range []color.RGB{{}, {R: 100, G: 100, B: 100}, {R: 200, G: 200, B: 200}} {
			l := color.Luminance(Remap(c, Classification{Type: et, Text: true}))
			if l < b[0]-1 || l > b[1]+1 {
				t.Errorf("Remap(%v, %v) luminance %.2f outside %v", c, et, l, b)
			}
		}
	}
}
