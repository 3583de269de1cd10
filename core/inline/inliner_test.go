package inline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func inlineHTML(t *testing.T, src string, extra ...string) (string, Result) {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	res := Styles(root, extra...)

	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, root))
	return buf.String(), res
}

func TestStylesInlinesBodyBlocks(t *testing.T) {
	out, res := inlineHTML(t, `<div><style>.x{color:red} p{margin:4px}</style><p class="x">Hi</p></div>`)

	assert.Contains(t, out, `<p class="x" style="color:red; margin:4px;">Hi</p>`)
	assert.NotContains(t, out, "<style")
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 1, res.Elements)
}

func TestStylesExistingDeclarationsWin(t *testing.T) {
	out, _ := inlineHTML(t,
		`<style>a{margin:8px !important; color:blue; text-decoration:none}</style><a href="/" style="margin:0; padding:0; color:red;">Go</a>`)

	assert.Contains(t, out, `style="margin:0; padding:0; color:red; text-decoration:none;"`)
}

func TestStylesCascade(t *testing.T) {
	out, _ := inlineHTML(t, `<style>
#lead{color:green}
p.note{color:blue}
p{color:black; font-size:14px}
.note{font-size:12px !important}
p{font-size:16px}
</style><p id="lead" class="note">x</p>`)

	assert.Contains(t, out, `style="color:green; font-size:12px !important;"`)
}

func TestStylesKeepsBlocksWithAtRules(t *testing.T) {
	css := `.x{color:red}@media (max-width:600px){.x{color:blue}}a:hover{color:green}`
	out, res := inlineHTML(t, `<style>`+css+`</style><span class="x">s</span>`)

	assert.Contains(t, out, `<style>`+css+`</style>`)
	assert.Contains(t, out, `<span class="x" style="color:red;">s</span>`)
	assert.Equal(t, 1, res.Kept)
	assert.Zero(t, res.Removed)
	assert.Empty(t, res.Issues)
}

func TestStylesDetachedSheets(t *testing.T) {
	out, res := inlineHTML(t, `<a class="x" href="/">Go</a>`,
		`.x{color:red} .x::before{content:"*"} @media print{.x{display:none}}`)

	assert.Contains(t, out, `style="color:red;"`)
	require.Len(t, res.Issues, 2)
	for _, iss := range res.Issues {
		assert.Equal(t, CodeDropped, iss.Code)
	}
}

func TestStylesUnparsableSelector(t *testing.T) {
	out, res := inlineHTML(t, `<style>p[{color:red} .ok{color:blue}</style><b class="ok">b</b>`)

	assert.Contains(t, out, "<style>")
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, CodeUnparsable, res.Issues[0].Code)
}

func TestStylesIdempotent(t *testing.T) {
	src := `<style>.x{color:red}@media screen{.x{color:blue}}</style><span class="x" style="margin:0;">s</span>`
	first, _ := inlineHTML(t, src)
	second, res := inlineHTML(t, first)

	assert.Equal(t, first, second)
	assert.Zero(t, res.Elements)
}

func TestStylesNoRules(t *testing.T) {
	out, res := inlineHTML(t, `<style>  </style><p>x</p>`)
	assert.NotContains(t, out, "<style")
	assert.Equal(t, 1, res.Removed)
	assert.Zero(t, res.Rules)
}
