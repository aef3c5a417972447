package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraphs",
			in:   "Hello\n\nWorld",
			want: "<p>Hello</p><p>World</p>",
		},
		{
			name: "headings",
			in:   "# One\n## Two\n### Three",
			want: "<h1>One</h1>\n<h2>Two</h2>\n<h3>Three</h3>",
		},
		{
			name: "bold inside paragraph",
			in:   "Visit **Goa** in winter",
			want: "<p>Visit <strong>Goa</strong> in winter</p>",
		},
		{
			name: "list followed by paragraph",
			in:   "## Tips\n- **Pack** light\n- Stay safe\n\nEnjoy",
			want: "<h2>Tips</h2>\n<ul><li><strong>Pack</strong> light</li>\n<li>Stay safe</li></ul><p>Enjoy",
		},
		{
			name: "windows line endings",
			in:   "Hello\r\n\r\nWorld",
			want: "<p>Hello</p><p>World</p>",
		},
		{
			name: "trailing newline yields empty paragraph",
			in:   "Hello\n",
			want: "<p>Hello</p>\n<p></p>",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTML(tc.in))
		})
	}
}

func TestToPlainText(t *testing.T) {
	in := "# Forecast\n\n**Weather:** sunny\n- Bring water\n* Avoid night travel\n\n\n\nDone\n"
	want := "Forecast\n\nWeather: sunny\n• Bring water\n• Avoid night travel\n\nDone"

	assert.Equal(t, want, ToPlainText(in))
}
