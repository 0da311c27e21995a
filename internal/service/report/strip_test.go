package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "no markup here", "no markup here"},
		{"simple tags", "<p>Heap <b>overflow</b></p>", "Heap overflow"},
		{"attributes", `<a href="https://x.example/?a=1&b=2">link</a>`, "link"},
		{"self closing", "line<br/>break", "linebreak"},
		{"empty brackets kept", "a <> b", "a <> b"},
		{"unterminated", "x < y and <b", "x < y and <b"},
		{"stray close", "5 > 3", "5 > 3"},
		{"comparison then tag", "a < b <i>c</i>", "a < b c"},
		{"nested exposure", "<<a>b>", ""},
		{"bracket content", "<>x>", ""},
		{"utf8", "<em>résumé</em> – ok", "résumé – ok"},
		{"entities untouched", "a &amp; b", "a &amp; b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestStripTags_Idempotent(t *testing.T) {
	inputs := []string{
		"<p>Heap <b>overflow</b></p>",
		"<<a>b>",
		"<<<x>y>z>",
		"a < b <i>c</i> > d",
		"<>>",
		"<<>>",
		"< <a> >",
		"<script>alert(1)</script>",
		"x<y>z<",
		"<a<b>c>d>e",
	}

	for _, in := range inputs {
		once := StripTags(in)
		assert.Equal(t, once, StripTags(once), "input %q", in)
	}
}
