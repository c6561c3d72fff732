package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**Tomato Soup**", "Tomato Soup"},
		{"italic", "a *light* meal", "a light meal"},
		{"heading", "## Ingredients:\n- 2 eggs", "Ingredients:\n2 eggs"},
		{"bullet glyphs", "• salt\n* pepper\n  - oil", "salt\npepper\noil"},
		{"stacked bullets", "- * - cheese", "cheese"},
		{"numbered steps untouched", "1. Chop\n2. Cook", "1. Chop\n2. Cook"},
		{"blank lines kept", "Title\n\nINGREDIENTS:\n\n- rice", "Title\n\nINGREDIENTS:\n\nrice"},
		{"hyphen inside words kept", "stir-fry the half-cut beans", "stir-fry the half-cut beans"},
		{"crlf", "Title\r\n- rice", "Title\nrice"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"**Bold** and *italic*\n# Heading\n- item\n• other",
		"### **Pasta**\n\n* - 200g spaghetti\n\n1. Boil **water**",
		"**unclosed bold\n*single",
		"#no-space heading\n-dash",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeNoLeadingGlyph(t *testing.T) {
	in := "• a\n  * b\n- - c\n# d\n##   e\n•• f"
	for _, line := range strings.Split(Normalize(in), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		assert.NotContains(t, "•*-", string([]rune(trimmed)[0]), "line %q", line)
		assert.False(t, strings.HasPrefix(trimmed, "# "), "line %q", line)
	}
}
