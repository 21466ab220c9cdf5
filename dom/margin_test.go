package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"wemd/css"
)

func TestExpandMargins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"one value", "margin: 1px; color: red", "margin-top: 1px; margin-right: 1px; margin-bottom: 1px; margin-left: 1px; color: red;"},
		{"three values", "color: red; margin: 1px auto 2px", "color: red; margin-top: 1px; margin-right: auto; margin-bottom: 2px; margin-left: auto;"},
		{"four values", "margin: 1px 2px 3px 4px", "margin-top: 1px; margin-right: 2px; margin-bottom: 3px; margin-left: 4px;"},
		{"longhands only", "margin-bottom: 1em; color: red; margin-top: 0", "margin-top: 0; margin-bottom: 1em; color: red;"},
		{"important shorthand wins", "margin: 1px !important; margin-left: 0", "margin-top: 1px !important; margin-right: 1px !important; margin-bottom: 1px !important; margin-left: 1px !important;"},
		{"calc value", "margin: calc(1px + 2px) 0", "margin-top: calc(1px + 2px); margin-right: 0; margin-bottom: calc(1px + 2px); margin-left: 0;"},
		{"not understood", "margin: 1px 2px 3px 4px 5px", "margin: 1px 2px 3px 4px 5px;"},
		{"no margins", "color: red", "color: red;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := css.FormatDeclarations(expandMargins(css.ParseDeclarations(tt.in)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("expandMargins(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
