package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"angle brackets", "a < b > c", "a &lt; b &gt; c"},
		{"quotes", `say "it's"`, "say &quot;it&#39;s&quot;"},
		{"newline kept", "a\nb", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeHTML(tt.input); got != tt.expected {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a\tb", "a&#9;b"},
		{"a\r\nb", "a&#13;&#10;b"},
		{`x="y"`, "x=&quot;y&quot;"},
	}
	for _, tt := range tests {
		if got := escapeAttr(tt.input); got != tt.expected {
			t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
