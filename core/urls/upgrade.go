package urls

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Attributes carrying resource URLs.
var Attributes = map[string]bool{
	"href":       true,
	"src":        true,
	"srcset":     true,
	"background": true,
	"poster":     true,
}

// cssURL matches an absolute http:// URL opening a CSS url() value.
var cssURL = regexp.MustCompile(`(?i)url\(\s*['"]?(http://[^'")\s]+)`)

// Upgrade rewrites qualifying http:// URLs under root to https:// and
// returns the number of URLs changed. URL attributes, style attributes and
// <style> text are covered. Relative and secure URLs are left alone.
func Upgrade(root *html.Node, p Policy) int {
	changed := 0
	goquery.NewDocumentFromNode(root).Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		for i, a := range node.Attr {
			if a.Namespace != "" {
				continue
			}
			var val string
			var n int
			switch {
			case a.Key == "style":
				val, n = UpgradeCSS(a.Val, p)
			case !Attributes[a.Key]:
				continue
			case a.Key == "srcset":
				val, n = upgradeSrcset(a.Val, p)
			default:
				if secure, ok := p.Secure(a.Val); ok {
					val, n = secure, 1
				}
			}
			if n > 0 {
				node.Attr[i].Val = val
				changed += n
			}
		}
		if node.Data != "style" {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				var n int
				c.Data, n = UpgradeCSS(c.Data, p)
				changed += n
			}
		}
	})
	return changed
}

// UpgradeCSS rewrites the qualifying http:// URLs of CSS url() values in css.
func UpgradeCSS(css string, p Policy) (string, int) {
	n := 0
	out := cssURL.ReplaceAllStringFunc(css, func(m string) string {
		raw := cssURL.FindStringSubmatch(m)[1]
		secure, ok := p.Secure(raw)
		if !ok {
			return m
		}
		n++
		return m[:len(m)-len(raw)] + secure
	})
	return out, n
}

// SrcsetURLs returns the URL of each srcset candidate.
func SrcsetURLs(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if fields := strings.Fields(part); len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

func upgradeSrcset(v string, p Policy) (string, int) {
	parts := strings.Split(v, ",")
	n := 0
	for i, part := range parts {
		trimmed := strings.TrimLeft(part, " \t\n\r\f")
		lead := part[:len(part)-len(trimmed)]
		end := strings.IndexAny(trimmed, " \t\n\r\f")
		if end < 0 {
			end = len(trimmed)
		}
		if secure, ok := p.Secure(trimmed[:end]); ok {
			parts[i] = lead + secure + trimmed[end:]
			n++
		}
	}
	return strings.Join(parts, ","), n
}
