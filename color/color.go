// Package color implements the small amount of color math needed to derive
// dark palettes: RGB/HSL conversion, a brightness proxy and two remapping
// helpers.
//
// RGB channels are 0..255 floats, hue is in degrees, saturation and
// lightness are in percent, which is what CSS authors read and write.
package color

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a color with 0..255 channels.
type RGB struct {
	R, G, B float64
}

// HSL is a color with hue in [0, 360), saturation and lightness in [0, 100].
type HSL struct {
	H, S, L float64
}

// ParseHex parses "#rgb", "#rgba", "#rrggbb" and "#rrggbbaa" (leading "#"
// optional). Alpha, when present, is returned separately in [0, 1];
// otherwise alpha is 1.
func ParseHex(s string) (RGB, float64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return RGB{}, 0, false
		}
	}

	alpha := 1.0
	switch len(s) {
	case 3, 4:
		var sb strings.Builder
		for i := 0; i < len(s); i++ {
			sb.WriteByte(s[i])
			sb.WriteByte(s[i])
		}
		s = sb.String()
	case 6, 8:
	default:
		return RGB{}, 0, false
	}
	if len(s) == 8 {
		alpha = float64(hexByte(s[6], s[7])) / 255
		s = s[:6]
	}

	c, err := colorful.Hex("#" + s)
	if err != nil {
		return RGB{}, 0, false
	}
	return fromColorful(c), alpha, true
}

// FormatHex returns lower-case "#rrggbb", channels are rounded and clamped.
func FormatHex(c RGB) string {
	return c.Clamped().colorful().Hex()
}

// Clamped returns the color with channels rounded into 0..255.
func (c RGB) Clamped() RGB {
	return RGB{R: clampChannel(c.R), G: clampChannel(c.G), B: clampChannel(c.B)}
}

// RGBToHSL converts a color to HSL. Achromatic colors get hue 0.
func RGBToHSL(c RGB) HSL {
	h, s, l := c.Clamped().colorful().Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSL{H: math.Mod(h, 360), S: s * 100, L: l * 100}
}

// HSLToRGB converts HSL back to RGB, out of range input is clamped.
func HSLToRGB(c HSL) RGB {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsl(h, clamp(c.S, 0, 100)/100, clamp(c.L, 0, 100)/100)).Clamped()
}

// Luminance is a monotonic brightness proxy (BT.601 luma), 0..255. It is not
// colorimetric luminance and should only be used for ordering and targeting.
func Luminance(c RGB) float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// AdjustToLuminance scales c so that its Luminance becomes target while
// keeping channel ratios. When scaling would push a channel past 255 the
// remaining luminance is made up by blending toward white, so the result
// never changes channel order.
func AdjustToLuminance(target float64, c RGB) RGB {
	target = clamp(target, 0, 255)
	lum := Luminance(c)
	if lum <= 0 {
		return RGB{R: target, G: target, B: target}.Clamped()
	}

	k := target / lum
	scaled := RGB{R: math.Min(c.R*k, 255), G: math.Min(c.G*k, 255), B: math.Min(c.B*k, 255)}

	got := Luminance(scaled)
	if got < target && got < 255 {
		t := (target - got) / (255 - got)
		scaled = RGB{
			R: scaled.R + t*(255-scaled.R),
			G: scaled.G + t*(255-scaled.G),
			B: scaled.B + t*(255-scaled.B),
		}
	}
	return scaled.Clamped()
}

// MapBackgroundRange inverts lightness into [minL, maxL] (white lands on
// minL, black on maxL) and multiplies saturation by sFactor. Hue is kept.
func MapBackgroundRange(c HSL, minL, maxL, sFactor float64) HSL {
	t := 1 - clamp(c.L, 0, 100)/100
	return HSL{
		H: c.H,
		S: clamp(c.S*sFactor, 0, 100),
		L: minL + (maxL-minL)*t,
	}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}
}

func fromColorful(c colorful.Color) RGB {
	return RGB{R: c.R * 255, G: c.G * 255, B: c.B * 255}
}

func clampChannel(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(clamp(v, 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func hexByte(hi, lo byte) int {
	return hexValue(hi)<<4 | hexValue(lo)
}

func hexValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}
