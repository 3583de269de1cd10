package validate

import (
	"testing"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(r *report.Report) []string {
	out := make([]string, 0, len(r.Issues))
	for _, iss := range r.Issues {
		out = append(out, iss.Code)
	}
	return out
}

func TestValidateRejectsUnknownProfile(t *testing.T) {
	_, err := Validate("<p>x</p>", core.Profile("print"))
	assert.ErrorIs(t, err, core.ErrInvalidProfile)
}

func TestValidateCleanEmail(t *testing.T) {
	src := `<html><body><a href="https://example.com" class="x" style="margin:0; padding:0; color:red;">Go</a>` +
		`<img src="a.jpg" alt="" style="margin:0;padding:0;">` +
		`<p>Tee times for Saturday and Sunday mornings are now posted at the clubhouse.</p>` +
		`<table role="presentation" style="border-collapse:collapse;"><tbody><tr><td style="border:none;">X</td></tr></tbody></table></body></html>`
	rep, err := Validate(src, core.ProfileEmail)
	require.NoError(t, err)
	assert.True(t, rep.Passed())
	assert.Empty(t, rep.Issues)
}

func TestValidateEmailErrors(t *testing.T) {
	src := "<!DOCTYPE html>\n<html><head><link rel=\"stylesheet\" href=\"a.css\"></head>\n" +
		`<body onload="x()"><script>1</script><a href="http://example.com">a</a>` +
		`<img src="p.avif" style="padding:0"><table><tr><td style="padding:0">X</td></tr></table></body></html>`
	rep, err := Validate(src, core.ProfileEmail)
	require.NoError(t, err)
	assert.False(t, rep.Passed())

	for _, code := range []string{
		CodeDoctypePresent, CodeHeadPresent, CodeStylesheetLink, CodeEventHandler, CodeScriptPresent,
		CodeMixedContent, CodeAnchorStylePrefix, CodeAVIFReference, CodeImageStylePrefix,
		CodeTableCollapse, CodeCellStylePrefix, CodeImgAltMissing,
	} {
		assert.True(t, rep.Has(code), code)
	}

	first := rep.Issues[0]
	assert.Equal(t, CodeDoctypePresent, first.Code)
	assert.Equal(t, "1:1", first.Location)

	link := rep.ByCode(CodeStylesheetLink)
	require.Len(t, link, 1)
	assert.Equal(t, "2:13", link[0].Location)
}

func TestValidateOrdersByPositionThenCode(t *testing.T) {
	src := `<a href="http://example.com" onclick="go()">x</a>`
	rep, err := Validate(src, core.ProfileEmail)
	require.NoError(t, err)
	assert.Equal(t, []string{CodeAnchorStylePrefix, CodeEventHandler, CodeMixedContent}, codes(rep))

	again, err := Validate(src, core.ProfileEmail)
	require.NoError(t, err)
	assert.Equal(t, rep, again)
}

func TestValidateEmailWarnings(t *testing.T) {
	src := `<style>.a{display:flex}</style><div style="position:absolute; float:left">d</div>` +
		`<iframe src="https://maps.example.com"></iframe><video src="v.mp4"></video>` +
		`<div><div><div><div><p>unclosed`
	rep, err := Validate(src, core.ProfileEmail)
	require.NoError(t, err)
	assert.True(t, rep.Passed())

	for _, code := range []string{CodeStyleBlock, CodeCSSLayout, CodeCSSPosition, CodeCSSFloat, CodeIframe, CodeEmbeddedMedia, CodeUnbalanced} {
		assert.True(t, rep.Has(code), code)
	}
	assert.Equal(t, CodeUnbalanced, rep.Issues[len(rep.Issues)-1].Code)
}

func TestValidateInsecureURLPolicy(t *testing.T) {
	src := `<a style="margin:0; padding:0;" href="http://legacy.example.org/x">x</a>`
	policy := urls.Policy{Mode: urls.ModeAll, InsecureHosts: []string{"legacy.example.org"}}
	rep, err := Validate(src, core.ProfileEmail, WithURLPolicy(policy))
	require.NoError(t, err)
	assert.True(t, rep.Passed())
	assert.Equal(t, []string{CodeInsecureURL}, codes(rep))
}

func TestValidateWeb(t *testing.T) {
	rep, err := Validate(`<p><a href="http://example.com/x">x</a></p>`, core.ProfileWeb)
	require.NoError(t, err)
	assert.False(t, rep.Passed())
	assert.Equal(t, []string{CodeDoctypeMissing, CodeHeadMissing, CodeMixedContent}, codes(rep))

	ok := `<!DOCTYPE html><html><head><script>x()</script></head><body><img src="a.avif">` +
		`<h3 class="event-card__title"> </h3><h3 class="event-card__title"><span>Gala</span></h3></body></html>`
	rep, err = Validate(ok, core.ProfileWeb)
	require.NoError(t, err)
	assert.True(t, rep.Passed())
	assert.Equal(t, []string{CodeEventTitleEmpty, CodeHeadingEmpty, CodeHeadingStart}, codes(rep))
}

func TestRules(t *testing.T) {
	assert.Len(t, Rules(core.ProfileWeb), len(webRules)+len(accessibilityRules))
	assert.Len(t, Rules(core.ProfileEmail), len(emailRules)+len(accessibilityRules)+len(spamRules))
	assert.Nil(t, Rules(core.Profile("x")))

	errors := 0
	for _, r := range Rules(core.ProfileEmail) {
		if r.Severity == report.Error {
			errors++
		}
	}
	assert.Equal(t, 11, errors)
}

func TestValidateAVIFMentionsInLinks(t *testing.T) {
	src := `<a style="margin:0; padding:0;" href="https://example.com/blog/image/avif-support">AVIF support notes</a>` +
		`<img style="margin:0; padding:0;" alt="p" src="https://cdn.example.com/photo.avif-large.png">`
	rep, err := Validate(src, core.ProfileEmail)
	require.NoError(t, err)
	assert.False(t, rep.Has(CodeAVIFReference))

	rep, err = Validate(`<picture><source type="image/avif" srcset="x.png"></picture>`, core.ProfileEmail)
	require.NoError(t, err)
	assert.True(t, rep.Has(CodeAVIFReference))
}

func TestValidateHeadings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"ordered", `<h1>News</h1><h2>Golf</h2><h3>Sat</h3><h2>Pool</h2>`, nil},
		{"starts low", `<h2>News</h2><h3>Golf</h3>`, []string{CodeHeadingStart}},
		{"skips", `<h1>News</h1><h4>Golf</h4>`, []string{CodeHeadingSkip}},
		{"empty", `<h1>News</h1><h2> </h2>`, []string{CodeHeadingEmpty}},
		{"image label", `<h1><img src="logo.png" alt="Lake News"></h1>`, nil},
		{"unclosed", `<h1>`, []string{CodeHeadingEmpty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Validate(`<!DOCTYPE html><html><head></head><body>`+tt.src+`</body></html>`, core.ProfileWeb)
			require.NoError(t, err)
			assert.Equal(t, tt.want, nonNil(codes(rep)))
		})
	}
}

func TestValidateLinks(t *testing.T) {
	src := `<a href="https://example.com/golf">Golf schedule</a>` +
		`<a href="https://example.com/a">Click here</a>` +
		`<a href="#">Top</a>` +
		`<a>Nowhere</a>` +
		`<a name="top"></a>` +
		`<a href="https://example.com/map"><img src="m.png" alt="Course map"></a>` +
		`<a href="https://example.com/b"> </a>`
	rep, err := Validate(`<!DOCTYPE html><html><head></head><body>`+src+`</body></html>`, core.ProfileWeb)
	require.NoError(t, err)
	assert.True(t, rep.Passed())
	assert.Len(t, rep.ByCode(CodeLinkText), 2)
	assert.Len(t, rep.ByCode(CodeLinkDestination), 2)
}

func TestValidateTableHeaders(t *testing.T) {
	src := `<table><tr><th>Day</th></tr><tr><td>Sat</td></tr></table>` +
		`<table role="presentation"><tr><td><table><tr><td>Sat</td></tr></table></td></tr></table>`
	rep, err := Validate(`<!DOCTYPE html><html><head></head><body>`+src+`</body></html>`, core.ProfileWeb)
	require.NoError(t, err)
	require.Len(t, rep.ByCode(CodeTableHeaders), 1)
	assert.Equal(t, "1:133", rep.ByCode(CodeTableHeaders)[0].Location)
}

func TestValidateSpamSignals(t *testing.T) {
	loud := `<p>FREE CASH PRIZE FOR EVERY WINNER!! ACT NOW!! BUY NOW!! Limited time, urgent, apply now. ` +
		`Are you in?? Really?? Truly??</p>` +
		`<a style="margin:0; padding:0;" href="https://bit.ly/x1">Claim your prize</a>`
	rep, err := Validate(loud, core.ProfileEmail)
	require.NoError(t, err)
	assert.True(t, rep.Passed())
	for _, code := range []string{CodeSpamCaps, CodeSpamWords, CodeSpamPunctuation, CodeURLShortener} {
		assert.True(t, rep.Has(code), code)
	}
	assert.False(t, rep.Has(CodeSpamImages))

	gallery := `<img style="margin:0; padding:0;" src="a.jpg" alt="a"><img style="margin:0; padding:0;" src="b.jpg" alt="b"><p>Photos</p>`
	rep, err = Validate(gallery, core.ProfileEmail)
	require.NoError(t, err)
	assert.Equal(t, []string{CodeSpamImages}, codes(rep))

	calm := `<p>The pool opens Saturday. Freedom Day parade starts at NOON on Main Street.</p>` +
		`<a style="margin:0; padding:0;" href="https://art.com/show">Art show details</a>`
	rep, err = Validate(calm, core.ProfileEmail)
	require.NoError(t, err)
	assert.Empty(t, rep.Issues)
}

func TestSpamRulesAreEmailOnly(t *testing.T) {
	src := `<!DOCTYPE html><html><head></head><body><p>FREE CASH NOW!! YES!! NOW!!</p><a href="https://bit.ly/x">Deal details</a></body></html>`
	rep, err := Validate(src, core.ProfileWeb)
	require.NoError(t, err)
	assert.Empty(t, rep.Issues)
}

func TestIsShouted(t *testing.T) {
	assert.True(t, isShouted("FREE"))
	assert.True(t, isShouted("NOW!!"))
	assert.False(t, isShouted("OK"))
	assert.False(t, isShouted("Free"))
	assert.False(t, isShouted("100%"))
}

func nonNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
