package style

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"color: red", "color:red;"},
		{"COLOR:Red; Padding : 4px 2px ;", "color:Red; padding:4px 2px;"},
		{"margin:0; padding:0; color:red;", "margin:0; padding:0; color:red;"},
		{"color: blue !important", "color:blue !important;"},
		{"font-family: Arial,\n   sans-serif", "font-family:Arial, sans-serif;"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in).String())
		})
	}
}

func TestParseFallsBackOnMalformedInput(t *testing.T) {
	decls := Parse("color:red;; ;margin:0")
	assert.True(t, decls.Has("color"))
	assert.True(t, decls.Has("margin"))
}

func TestDeclarationsHelpers(t *testing.T) {
	decls := Parse("margin:4px; color:red; margin:2px")

	d, ok := decls.Get("margin")
	require.True(t, ok)
	assert.Equal(t, "2px", d.Value)

	assert.Equal(t, "color:red;", decls.Without("margin").String())
	assert.Equal(t, "margin:0; color:red;", decls.Set("margin", "0").String())
	assert.Equal(t, "margin:4px; color:red; margin:2px; width:5px;", decls.Set("width", "5px").String())
	assert.Equal(t, []string{"margin", "color"}, decls.Properties())
}

func TestPrefixedRequiredValueWins(t *testing.T) {
	decls := Parse("color:red; padding:8px; margin:4px !important")
	got := decls.Prefixed(BoxReset).String()
	assert.Equal(t, "margin:0; padding:0; color:red;", got)

	// already normalized input is untouched
	assert.Equal(t, got, Parse(got).Prefixed(BoxReset).String())
}

func normalizeFragment(t *testing.T, src, accent string) (string, Stats) {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	st := Normalize(root, accent)

	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, root))
	return buf.String(), st
}

func TestNormalizeRoles(t *testing.T) {
	out, st := normalizeFragment(t,
		`<a href="/x" style="color:red">x</a><img src="a.jpg"><table style="border-collapse:separate; width:100%"><tr><td style="padding:4px; border:1px solid">X</td></tr></table>`,
		"#103040")

	assert.Contains(t, out, `<a href="/x" style="margin:0; padding:0; color:red;">`)
	assert.Contains(t, out, `<img src="a.jpg" style="margin:0; padding:0;"/>`)
	assert.Contains(t, out, `<table style="border-collapse:collapse; width:100%;">`)
	assert.Contains(t, out, `<td style="border:none; padding:4px;">`)
	assert.Equal(t, Stats{Anchors: 1, Images: 1, Tables: 1, Cells: 1}, st)
}

func TestNormalizeTableAppendsCollapse(t *testing.T) {
	out, _ := normalizeFragment(t, `<table style="width:100%"><tr><td>X</td></tr></table>`, "#103040")
	assert.Contains(t, out, `<table style="width:100%; border-collapse:collapse;">`)
}

func TestNormalizeButtons(t *testing.T) {
	out, st := normalizeFragment(t,
		`<a class="btn-primary" href="/rsvp">RSVP</a><a role="button" style="color:#000;background-color:red">Go</a><a class="link">Plain</a>`,
		"#1F6AA5")

	assert.Contains(t, out, `style="margin:0; padding:0; background-color:#1F6AA5; color:#ffffff;"`)
	assert.Contains(t, out, `style="margin:0; padding:0; color:#000; background-color:#1F6AA5;"`)
	assert.Contains(t, out, `<a class="link" style="margin:0; padding:0;">Plain</a>`)
	assert.Equal(t, 2, st.Buttons)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first, st := normalizeFragment(t,
		`<a class="cta" style="padding:3px">Go</a><table><tr><td>X</td></tr></table>`, "#103040")
	assert.Equal(t, 3, st.Changed())

	second, st := normalizeFragment(t, first, "#103040")
	assert.Equal(t, first, second)
	assert.Zero(t, st.Changed())
}
