package dom

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func resolve(t *testing.T, r *Resolver, in string) string {
	t.Helper()
	out, err := r.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", in, err)
	}
	return out
}

func TestResolveScopes(t *testing.T) {
	r := NewResolver(nil, zaptest.NewLogger(t))

	in := `<section style="--text-color:#111111">` +
		`<blockquote style="--text-color:#222222"><p style="color:var(--text-color)">a</p></blockquote>` +
		`<p style="color:var(--text-color)">b</p>` +
		`</section>`
	want := `<section>` +
		`<blockquote><p style="color: #222222;">a</p></blockquote>` +
		`<p style="color: #111111;">b</p>` +
		`</section>`

	if got := resolve(t, r, in); got != want {
		t.Errorf("Resolve() =\n%s\nwant\n%s", got, want)
	}
}

func TestResolveNoVarIsByteIdentical(t *testing.T) {
	r := NewResolver(nil, nil)
	for _, in := range []string{"", "<p>unclosed", `<p style="--x: 1px; color:red">a</p>`, `<P STYLE='color:red'>`} {
		if got := resolve(t, r, in); got != in {
			t.Errorf("Resolve(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestResolveInlineStyles(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			"cycle uses fallback",
			`<div style="--a:var(--b);--b:var(--a)"><span style="color:var(--a, #334455)">x</span></div>`,
			`<div><span style="color: #334455;">x</span></div>`,
		},
		{
			"invalid local shadows inherited",
			`<div style="--x:red"><div style="--x:var(--x)"><i style="color:var(--x, blue)">x</i></div></div>`,
			`<div><div><i style="color: blue;">x</i></div></div>`,
		},
		{
			"local reference to local and inherited",
			`<div style="--base:2px"><span style="--a:var(--base);--b:var(--a) solid;border:var(--b)">x</span></div>`,
			`<div><span style="border: 2px solid;">x</span></div>`,
		},
		{
			"unresolved kept",
			`<span style="color:var(--missing)">x</span>`,
			`<span style="color: var(--missing);">x</span>`,
		},
		{
			"important kept",
			`<span style="--c:red;color:var(--c) !important">x</span>`,
			`<span style="color: red !important;">x</span>`,
		},
		{
			"paragraph margin shorthand expanded",
			`<p style="--m:8px;margin:var(--m) 0;color:red">x</p>`,
			`<p style="margin-top: 8px; margin-right: 0; margin-bottom: 8px; margin-left: 0; color: red;">x</p>`,
		},
		{
			"upper case reference",
			`<span style="--c:red;color:VAR(--c)">x</span>`,
			`<span style="color: red;">x</span>`,
		},
		{
			"local declared after its use",
			`<p style="--b:var(--a);--a:red;color:var(--b)">x</p>`,
			`<p style="color: red;">x</p>`,
		},
		{
			"paragraph margin longhand overrides",
			`<p style="--m:4px;margin:var(--m);margin-left:0">x</p>`,
			`<p style="margin-top: 4px; margin-right: 4px; margin-bottom: 4px; margin-left: 0;">x</p>`,
		},
		{
			"paragraph margin untouched",
			`<p style="--c:red;margin:0 auto;color:var(--c)">x</p>`,
			`<p style="margin: 0 auto; color: red;">x</p>`,
		},
		{
			"other element margin not expanded",
			`<div style="--m:4px;margin:var(--m)">x</div>`,
			`<div style="margin: 4px;">x</div>`,
		},
	}
	r := NewResolver(nil, zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(t, r, tt.in); got != tt.want {
				t.Errorf("Resolve() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

type fakeComputer struct {
	fragment string
	values   map[Query]string
	err      error
	panic    bool
}

func (f *fakeComputer) ComputeStyles(_ context.Context, fragment string, _ []Query) (map[Query]string, error) {
	if f.panic {
		panic("renderer crashed")
	}
	f.fragment = fragment
	return f.values, f.err
}

const computedInput = `<p style="--c:red;color:var(--c);background:var(--c)">x</p><span style="color:var(--c, blue)">y</span>`

func TestResolveComputedFastPath(t *testing.T) {
	fc := &fakeComputer{values: map[Query]string{
		{Node: 0, Property: "color"}:      "rgb(1, 2, 3)",
		{Node: 0, Property: "background"}: "",
		{Node: 1, Property: "color"}:      "var(--c)",
	}}
	r := NewResolver(fc, zaptest.NewLogger(t))

	out, report, err := r.ResolveWithReport(context.Background(), computedInput)
	if err != nil {
		t.Fatal(err)
	}

	want := `<p style="color: rgb(1, 2, 3); background: red;">x</p><span style="color: blue;">y</span>`
	if out != want {
		t.Errorf("Resolve() =\n%s\nwant\n%s", out, want)
	}
	if !strings.Contains(fc.fragment, NodeAttr+`="0"`) || !strings.Contains(fc.fragment, NodeAttr+`="1"`) {
		t.Errorf("style computer got unmarked fragment: %s", fc.fragment)
	}
	if report.Computed != 1 || report.Substituted != 2 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestResolveComputerErrorFallsBack(t *testing.T) {
	r := NewResolver(&fakeComputer{err: errors.New("no browser")}, zaptest.NewLogger(t))

	want := `<p style="color: red; background: red;">x</p><span style="color: blue;">y</span>`
	if got := resolve(t, r, computedInput); got != want {
		t.Errorf("Resolve() =\n%s\nwant\n%s", got, want)
	}
}

func TestResolveRecoversPanic(t *testing.T) {
	r := NewResolver(&fakeComputer{panic: true}, zaptest.NewLogger(t))

	out, err := r.Resolve(context.Background(), computedInput)
	if err == nil || !strings.Contains(err.Error(), "renderer crashed") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output on failure, got %q", out)
	}
}

func TestStageRelease(t *testing.T) {
	s, err := newStage(`<p>a</p><p>b</p>`)
	if err != nil {
		t.Fatal(err)
	}
	sel := s.selection()
	if sel.Length() != 1 {
		t.Fatalf("container not found in staging document")
	}
	if html, _ := sel.Html(); html != "<p>a</p><p>b</p>" {
		t.Errorf("staged html = %q", html)
	}
	if !s.attached() {
		t.Fatal("container is not attached")
	}

	s.release()
	s.release()
	if s.attached() {
		t.Error("container still attached after release")
	}
	if s.selection().Length() != 0 {
		t.Error("released container is still reachable from staging document")
	}
}
