package services

import "testing"

func TestDescriptionText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"plain   text\n here", "plain text here"},
		{"<p>Hello</p><p>World</p>", "Hello World"},
		{"<script>track()</script><b>Go</b> &amp; SQL", "Go & SQL"},
		{"<style>p { color: red }</style><div>Hi</div>there", "Hi there"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DescriptionText(tt.raw); got != tt.want {
			t.Errorf("DescriptionText(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
