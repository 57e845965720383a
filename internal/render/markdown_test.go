package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    []string
		notWant []string
	}{
		{
			name:   "basic formatting",
			source: "# Heading\n\nSome **bold** text.",
			want:   []string{"<h1", "Heading", "<strong>bold</strong>"},
		},
		{
			name:   "gfm table",
			source: "| a | b |\n|---|---|\n| 1 | 2 |",
			want:   []string{"<table>", "<td>1</td>"},
		},
		{
			name:    "script stripped",
			source:  "hello <script>alert(1)</script> world",
			want:    []string{"hello", "world"},
			notWant: []string{"<script>", "alert(1)"},
		},
		{
			name:   "arabic content preserved",
			source: "## مرحبا بالعالم\n\nنص **عريض** هنا.",
			want:   []string{"مرحبا بالعالم", "<strong>عريض</strong>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Markdown(tt.source)
			if err != nil {
				t.Fatalf("Markdown: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(got, notWant) {
					t.Errorf("output contains %q:\n%s", notWant, got)
				}
			}
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	got := SanitizeHTML(`<p onclick="evil()">ok</p><iframe src="x"></iframe>`)
	if strings.Contains(got, "onclick") || strings.Contains(got, "iframe") {
		t.Errorf("unsafe markup survived: %q", got)
	}
	if !strings.Contains(got, "<p>ok</p>") {
		t.Errorf("safe markup stripped: %q", got)
	}
}
