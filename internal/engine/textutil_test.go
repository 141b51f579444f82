package engine

import "testing"

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<b>bold</b> text", "bold text"},
		{"  <p>para</p>  ", "para"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  a\n\n b\t\tc  ")
	if got != "a b c" {
		t.Errorf("CollapseWhitespace = %q, want %q", got, "a b c")
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{" one  two\nthree ", 3},
	}
	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
