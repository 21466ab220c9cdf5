package dark

import (
	"math"

	"wemd/color"
)

// Remapping constants were tuned by eye against the publishing target's dark
// surface. Keep them as they are unless there is new reference output to
// compare with.
const (
	// Luminance of the dark surface the output is shown on (#191919).
	darkBackgroundLuminance = 25

	vibrantMinL    = 35
	vibrantMaxL    = 55
	vibrantDamping = 0.85

	anchorMaxL      = 15
	anchorMinS      = 8
	anchorL         = 22
	vibrantMinS     = 15
	vibrantMaxInput = 95

	// Text at or above this luminance is already readable on dark surface.
	textPassLuminance = 220
	// Table backgrounds lighter than this fall off exponentially.
	tableFalloffL = 85
)

type lightness struct {
	minL, maxL, sFactor float64
}

var remapTable = [...]lightness{
	TypeOther:          {12, 20, 0.7},
	TypeHeading:        {10, 10, 0},
	TypeBody:           {10, 10, 0},
	TypeBackground:     {12, 18, 0.5},
	TypeTable:          {10, 24, 0.6},
	TypeBlockquote:     {14, 22, 0.7},
	TypeCode:           {10, 20, 0.5},
	TypeDecorativeDark: {10, 15, 0},
	TypeVibrant:        {vibrantMinL, vibrantMaxL, 1},
	TypeSelection:      {45, 65, 0.6},
	// foreground types are only reached through the table when a caller
	// asks for a non-text remap of them
	TypeTableText:      {10, 24, 0.6},
	TypeBlockquoteText: {14, 22, 0.7},
	TypeCodeText:       {10, 20, 0.5},
	TypeSelectionText:  {45, 65, 0.6},
}

// luminance band for foreground colors
type band struct {
	lo, hi float64
}

var (
	bodyTextBand = band{darkBackgroundLuminance + 65, darkBackgroundLuminance + 180}
	textBands    = map[ElementType]band{
		TypeTableText:      {191, 224},
		TypeBlockquoteText: {191, 224},
		TypeCodeText:       {179, 217},
		TypeSelectionText:  {230, 250},
	}
)

// Remap returns the dark mode counterpart of c for the given role.
//
// Two overrides run before anything else: saturated mid-lightness colors
// are treated as vibrant accents (hue kept, lightness clamped to [35, 55])
// and very dark saturated colors are anchored at lightness 22. Foreground
// colors are then moved into a luminance band readable on the dark surface,
// everything else gets its lightness inverted into the range of its type.
func Remap(c color.RGB, cls Classification) color.RGB {
	c = c.Clamped()
	hsl := color.RGBToHSL(c)

	switch {
	case hsl.S > vibrantMinS && hsl.L > anchorMaxL && hsl.L < vibrantMaxInput:
		return color.HSLToRGB(vibrant(hsl))
	case hsl.L < anchorMaxL && hsl.S > anchorMinS:
		hsl.L = anchorL
		return color.HSLToRGB(hsl)
	}

	if cls.Text || cls.Type.IsText() {
		return retargetText(c, cls.Type)
	}

	t := TypeOther
	if cls.Type >= 0 && int(cls.Type) < len(remapTable) {
		t = cls.Type
	}
	p := remapTable[t]
	switch {
	case t == TypeVibrant:
		return color.HSLToRGB(vibrant(hsl))
	case t == TypeTable && hsl.L > tableFalloffL:
		return color.HSLToRGB(color.HSL{H: hsl.H, S: hsl.S * p.sFactor, L: tableFalloff(hsl.L, p)})
	case t == TypeTable:
		return color.HSLToRGB(color.HSL{H: hsl.H, S: hsl.S * p.sFactor, L: p.maxL})
	}
	return color.HSLToRGB(color.MapBackgroundRange(hsl, p.minL, p.maxL, p.sFactor))
}

func vibrant(c color.HSL) color.HSL {
	c.L = math.Max(vibrantMinL, math.Min(vibrantMaxL, c.L*vibrantDamping))
	return c
}

// tableFalloff maps (85, 100] onto [maxL, minL) along an exponential curve,
// so near-white cells stay close to each other while tinted ones separate.
func tableFalloff(l float64, p lightness) float64 {
	t := (100 - l) / (100 - tableFalloffL)
	k := (1 - math.Exp(-3*t)) / (1 - math.Exp(-3))
	return p.minL + (p.maxL-p.minL)*k
}

// retargetText moves c into the luminance band of its type. Darker originals
// land higher in the band, so the most contrasting light mode text stays the
// most contrasting in dark mode.
func retargetText(c color.RGB, t ElementType) color.RGB {
	lum := color.Luminance(c)
	if lum > textPassLuminance {
		return c
	}
	b, ok := textBands[t]
	if !ok {
		b = bodyTextBand
	}
	pos := 1 - lum/textPassLuminance
	return color.AdjustToLuminance(b.lo+(b.hi-b.lo)*pos, c)
}
