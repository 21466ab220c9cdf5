package main

import "testing"

func TestPosition(t *testing.T) {
	text := "a {\n  color: var(--x);\n}\n"
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{13, 2, 10},
		{len(text), 4, 1},
		{len(text) + 10, 4, 1},
	}
	for _, tt := range tests {
		line, col := position(text, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("position(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestReportName(t *testing.T) {
	tests := []struct{ kind, name, want string }{
		{"source", "", "source/stdio"},
		{"source", "-", "source/stdio"},
		{"result", "/tmp/out/theme.css", "result/theme.css"},
	}
	for _, tt := range tests {
		if got := reportName(tt.kind, tt.name); got != tt.want {
			t.Errorf("reportName(%q, %q) = %q, want %q", tt.kind, tt.name, got, tt.want)
		}
	}
}
