package dark_test

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"wemd/cache"
	"wemd/color"
	"wemd/dark"
)

const lightTheme = `/* light theme */
#wemd { background-color: #ffffff; color: #333333; }
#wemd p { box-shadow: 0 1px 2px rgba(0,0,0,0.5); border-left: 3px solid #07C160; }
#wemd a { background: url("x.png") #fff; }
.x { content: "#fff"; color: var(--c, #fff) !important; }
@import url("fonts.css");
@media (max-width: 600px) { #wemd h1 { color: hsl(0, 0%, 20%); } }
@font-face { font-family: "X"; src: url(x.woff); }`

func TestConvert(t *testing.T) {
	conv := dark.NewConverter(nil, zaptest.NewLogger(t))

	out := conv.Convert(lightTheme)

	if !strings.HasPrefix(out, dark.Marker+"\n") {
		t.Fatalf("output does not start with marker:\n%s", out)
	}
	for _, want := range []string{
		"background-color: #1f1f1f;",
		"color: #b2b2b2;",
		`background: url("x.png") #fff;`,
		`content: "#fff";`,
		"color: var(--c, #fff) !important;",
		"@import url(\"fonts.css\");",
		"@media (max-width: 600px) {",
		"color: hsl(0, 0%, 69.804%);",
		"src: url(x.woff);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"#ffffff", "#07C160", "#07c160", "light theme", "rgba(0,0,0,0.5)"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("unexpected %q in output:\n%s", unwanted, out)
		}
	}
}

func TestConvertIdempotent(t *testing.T) {
	conv := dark.NewConverter(nil, nil)

	once := conv.Convert(lightTheme)
	if twice := conv.Convert(once); twice != once {
		t.Errorf("second conversion changed output:\n%s\n---\n%s", once, twice)
	}
	if again := conv.Convert(lightTheme); again != once {
		t.Error("conversion is not deterministic")
	}
}

func TestConvertCache(t *testing.T) {
	fifo := cache.NewFIFO[uint64, string](4)
	conv := dark.NewConverter(fifo, zaptest.NewLogger(t))

	conv.Convert("p { color: #000; }")
	if fifo.Len() != 1 {
		t.Fatalf("cache Len() = %d, want 1", fifo.Len())
	}

	fifo.Put(cache.Key("a { color: red; }"), "cached")
	if got := conv.Convert("a { color: red; }"); got != "cached" {
		t.Errorf("expected cached value, got %q", got)
	}

	conv.ClearCache()
	if fifo.Len() != 0 {
		t.Errorf("cache Len() after clear = %d", fifo.Len())
	}
	if got := conv.Convert("a { color: red; }"); got == "cached" {
		t.Error("stale cached value returned after clear")
	}
}

func TestConvertColor(t *testing.T) {
	out := dark.ConvertColor("#wemd p", "box-shadow", "rgba(0,0,0,0.5)")
	lit, ok := color.Parse(out)
	if !ok {
		t.Fatalf("cannot parse converted shadow color %q", out)
	}
	if l := color.RGBToHSL(lit.Color).L; l < 10-0.5 || l > 15+0.5 {
		t.Errorf("shadow lightness = %.2f, want within [10, 15] (%s)", l, out)
	}
	if lit.Alpha != 0.5 {
		t.Errorf("alpha = %v, want 0.5", lit.Alpha)
	}

	for _, et := range []string{"#wemd", "#wemd p", "#wemd table td", "#wemd pre", "::selection", "#wemd p::after"} {
		for _, prop := range []string{"color", "background-color", "border-color", "box-shadow"} {
			lit, ok := color.Parse(dark.ConvertColor(et, prop, "#07C160"))
			if !ok {
				t.Fatalf("cannot parse converted color for %s %s", et, prop)
			}
			if l := color.RGBToHSL(lit.Color).L; l < 35-0.5 || l > 55+0.5 {
				t.Errorf("%s %s: vibrant lightness = %.2f", et, prop, l)
			}
		}
	}

	if got := dark.ConvertColor("p", "color", "currentColor"); got != "currentColor" {
		t.Errorf("keyword changed: %q", got)
	}
}
