package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"golang.org/x/net/html"
)

// Thresholds above which mail filters tend to score a message as spam.
const (
	maxShoutedRatio   = 0.3
	maxTriggerPhrases = 5
	maxPunctuationRun = 2
	maxImagesPer100   = 2
)

var triggerPhrases = []string{
	"free", "winner", "congratulations", "urgent", "act now", "limited time",
	"click here", "buy now", "order now", "subscribe", "apply now",
	"cash", "prize", "money back", "100% free", "risk free", "satisfaction guaranteed",
	"dear friend", "special promotion", "once in lifetime", "exclusive deal",
}

var triggerPatterns = compileTriggers(triggerPhrases)

var shortenerHosts = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"goo.gl":      true,
	"t.co":        true,
}

var (
	exclaimRun  = regexp.MustCompile(`!{2,}`)
	questionRun = regexp.MustCompile(`\?{2,}`)
)

func compileTriggers(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)(?:^|\W)` + regexp.QuoteMeta(p) + `(?:\W|$)`)
	}
	return out
}

func (c *checker) startSpam(tok html.Token, off int) {
	switch tok.Data {
	case "img":
		c.images++
	case "a":
		href := strings.TrimSpace(attr(tok, "href"))
		if isShortened(href) {
			c.add(report.Warning, CodeURLShortener,
				fmt.Sprintf("link %q uses a URL shortener; use the full URL", href), off)
		}
	}
}

// finishSpam scores the visible text of the whole message.
func (c *checker) finishSpam(end int) {
	text := c.visible.String()
	words := strings.Fields(text)

	if len(words) > 0 {
		shouted := 0
		for _, w := range words {
			if isShouted(w) {
				shouted++
			}
		}
		if ratio := float64(shouted) / float64(len(words)); ratio > maxShoutedRatio {
			c.add(report.Warning, CodeSpamCaps,
				fmt.Sprintf("%d%% of words are ALL CAPS", int(ratio*100)), end)
		}
	}

	var found []string
	for i, re := range triggerPatterns {
		if re.MatchString(text) {
			found = append(found, triggerPhrases[i])
		}
	}
	if len(found) > maxTriggerPhrases {
		c.add(report.Warning, CodeSpamWords,
			fmt.Sprintf("%d spam trigger phrases: %s", len(found), strings.Join(found, ", ")), end)
	}

	bangs := len(exclaimRun.FindAllStringIndex(text, -1))
	asks := len(questionRun.FindAllStringIndex(text, -1))
	if bangs > maxPunctuationRun || asks > maxPunctuationRun {
		c.add(report.Warning, CodeSpamPunctuation,
			fmt.Sprintf("repeated punctuation: %d runs of !!, %d runs of ??", bangs, asks), end)
	}

	if chars := nonSpace(text); c.images > 0 && c.images*100 > maxImagesPer100*chars {
		c.add(report.Warning, CodeSpamImages,
			fmt.Sprintf("%d images for %d characters of text", c.images, chars), end)
	}
}

// isShouted reports whether w is an all-caps word longer than two runes.
func isShouted(w string) bool {
	if utf8.RuneCountInString(w) <= 2 {
		return false
	}
	cased := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func isShortened(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return shortenerHosts[host]
}

func nonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
