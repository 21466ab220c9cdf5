package css_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"wemd/css"
)

func TestFindNextVarStart(t *testing.T) {
	tests := []struct {
		name string
		text string
		from int
		want int
	}{
		{"simple", "color: var(--x);", 0, 7},
		{"none", "color: red;", 0, -1},
		{"double quoted", `content: "var(--x)"; color: var(--y);`, 0, 28},
		{"single quoted", `content: 'var(--x)';`, 0, -1},
		{"escaped quote inside string", `content: "a\"var(--x)"; color: var(--y)`, 0, 31},
		{"escaped quote outside string", `content: \"var(--x)`, 0, 11},
		{"from skips earlier", "var(--a) var(--b)", 1, 9},
		{"upper case", "VAR(--a)", 0, 0},
		{"identifier tail", "myvar(--a)", 0, -1},
		{"negative from", "var(--a)", -5, 0},
		{"from past end", "var(--a)", 100, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := css.FindNextVarStart(tt.text, tt.from); got != tt.want {
				t.Errorf("FindNextVarStart(%q, %d) = %d, want %d", tt.text, tt.from, got, tt.want)
			}
		})
	}
}

func TestMentionsVar(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"color: var(--x);", true},
		{"color: VAR(--x);", true},
		{"color: Var(--x);", true},
		{`<p style="color: var(--x)">x</p>`, true},
		{`content: "var(--x)";`, true},
		{"color: red;", false},
		{"myvar(--a)", false},
		{"var", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := css.MentionsVar(tt.text); got != tt.want {
			t.Errorf("MentionsVar(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFindMatchingParen(t *testing.T) {
	tests := []struct {
		name string
		text string
		open int
		want int
	}{
		{"simple", "var(--a)", 3, 7},
		{"nested", "var(--a, calc(1px + 2px))", 3, 24},
		{"quoted paren", `var(--a, ")")`, 3, 12},
		{"escaped paren", `var(--a, \))`, 3, 11},
		{"unbalanced", "var(--a, calc(1px)", 3, -1},
		{"not a paren", "var(--a)", 0, -1},
		{"out of range", "var(--a)", 42, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := css.FindMatchingParen(tt.text, tt.open); got != tt.want {
				t.Errorf("FindMatchingParen(%q, %d) = %d, want %d", tt.text, tt.open, got, tt.want)
			}
		})
	}
}

func TestSplitVarArgs(t *testing.T) {
	tests := []struct {
		args         string
		wantName     string
		wantFallback string
		wantHas      bool
	}{
		{"--a", "--a", "", false},
		{" --a , #fff ", "--a", "#fff", true},
		{"--a, rgb(1, 2, 3)", "--a", "rgb(1, 2, 3)", true},
		{"--a, var(--b, 1px, 2px)", "--a", "var(--b, 1px, 2px)", true},
		{`--a, "x, y"`, "--a", `"x, y"`, true},
		{"--a,", "--a", "", true},
	}
	for _, tt := range tests {
		name, fallback, has := css.SplitVarArgs(tt.args)
		if name != tt.wantName || fallback != tt.wantFallback || has != tt.wantHas {
			t.Errorf("SplitVarArgs(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.args, name, fallback, has, tt.wantName, tt.wantFallback, tt.wantHas)
		}
	}
}

func TestSplitTopLevel(t *testing.T) {
	got := css.SplitTopLevel(`color: red; background: url(data:image/png;base64,AA); content: "a;b"`, ';')
	want := []string{"color: red", " background: url(data:image/png;base64,AA)", ` content: "a;b"`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SplitTopLevel mismatch (-want +got):\n%s", diff)
	}
}

func TestFields(t *testing.T) {
	got := css.Fields("  calc(1px + 2px)\t0 var(--a, 1px 2px) auto ")
	want := []string{"calc(1px + 2px)", "0", "var(--a, 1px 2px)", "auto"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
	if got := css.Fields("   "); len(got) != 0 {
		t.Errorf("expected no fields for blank input, got %q", got)
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comments", "p { color: red; }", "p { color: red; }"},
		{"block comment", "p { /* c */color: red; }", "p { color: red; }"},
		{"comment in string", `p { content: "/* keep */"; }`, `p { content: "/* keep */"; }`},
		{"multiple", "/*a*/p/*b*/{}", "p{}"},
		{"unterminated", "p {} /* open", "p {} "},
		{"adjacent stars", "a/***/b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := css.StripComments(tt.in); got != tt.want {
				t.Errorf("StripComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
