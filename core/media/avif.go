// Package media substitutes image formats that email clients cannot display.
// AVIF references are rewritten to a sibling raster asset; references that
// cannot be resolved are dropped and reported.
package media

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"golang.org/x/net/html"
)

var (
	// avifExt matches an .avif extension ending a reference: end of text,
	// a query, a fragment, a quote, a closing paren, a comma or whitespace.
	avifExt      = regexp.MustCompile(`(?i)\.avif($|[?#"'),\s])`)
	avifType     = regexp.MustCompile(`(?i)^\s*image/avif\s*(?:;|$)`)
	avifData     = regexp.MustCompile(`(?i)data:image/avif`)
	avifDataURI  = regexp.MustCompile(`(?i)^\s*data:image/avif`)
	avifCSSData  = regexp.MustCompile(`(?i)url\(\s*['"]?data:image/avif[^)]*\)`)
	imageAttrs   = map[string]bool{"src": true, "srcset": true}
	unresolvedID = "media-unresolved"
)

// ReferencesAVIF reports whether s points at an .avif file or embeds AVIF
// data. A path that merely contains "image/avif" is not a reference.
func ReferencesAVIF(s string) bool {
	return avifExt.MatchString(s) || avifData.MatchString(s)
}

// IsAVIFType reports whether a type attribute value names the AVIF media type.
func IsAVIFType(s string) bool {
	return avifType.MatchString(s)
}

// AttrReferencesAVIF reports whether the attribute key=val references AVIF.
func AttrReferencesAVIF(key, val string) bool {
	if key == "type" && IsAVIFType(val) {
		return true
	}
	return ReferencesAVIF(val)
}

// Resolver maps a value referencing AVIF assets to one that does not.
type Resolver interface {
	Resolve(ref string) (string, bool)
}

// SiblingResolver assumes a raster sibling sits next to every AVIF asset
// under the same name, e.g. photo.avif -> photo.jpg.
type SiblingResolver struct {
	Extension string
}

// DefaultResolver rewrites .avif to .jpg.
func DefaultResolver() SiblingResolver {
	return SiblingResolver{Extension: ".jpg"}
}

// Resolve rewrites every .avif extension in ref. Inline AVIF data has no
// sibling and cannot be resolved.
func (r SiblingResolver) Resolve(ref string) (string, bool) {
	if avifDataURI.MatchString(ref) {
		return ref, false
	}
	ext := r.Extension
	if ext == "" {
		ext = ".jpg"
	}
	return avifExt.ReplaceAllString(ref, strings.ReplaceAll(ext, "$", "$$")+"${1}"), true
}

// Result reports the substitution outcome.
type Result struct {
	Rewritten int
	Dropped   int
	Issues    []report.Issue
}

// DowngradeAVIF removes AVIF from the tree rooted at root: <picture> is
// collapsed to its <img>, AVIF <source> elements are dropped and every
// remaining reference is passed through resolver.
func DowngradeAVIF(root *html.Node, resolver Resolver) Result {
	if resolver == nil {
		resolver = DefaultResolver()
	}
	var res Result
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("source").Each(func(_ int, s *goquery.Selection) {
		if IsAVIFType(s.AttrOr("type", "")) || ReferencesAVIF(s.AttrOr("srcset", "")) || ReferencesAVIF(s.AttrOr("src", "")) {
			s.Remove()
			res.Dropped++
		}
	})

	doc.Find("picture").Each(func(_ int, s *goquery.Selection) {
		if img := s.Find("img").First(); img.Length() > 0 {
			s.ReplaceWithSelection(img)
		} else {
			s.Remove()
			res.Dropped++
		}
	})

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !ReferencesAVIF(text) {
			return
		}
		setRawText(s.Get(0), res.rewriteCSS(text, resolver, "<style> block"))
	})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if res.dropUnresolvedImage(s, node, resolver) {
			return
		}
		kept := node.Attr[:0]
		for _, a := range node.Attr {
			if a.Key == "type" && IsAVIFType(a.Val) {
				res.Dropped++
				continue
			}
			if !ReferencesAVIF(a.Val) {
				kept = append(kept, a)
				continue
			}
			if a.Key == "style" {
				a.Val = res.rewriteCSS(a.Val, resolver, "<"+node.Data+"> style")
				kept = append(kept, a)
				continue
			}
			val, ok := resolver.Resolve(a.Val)
			if !ok || ReferencesAVIF(val) {
				res.Dropped++
				res.warn(fmt.Sprintf("<%s %s> references AVIF with no raster substitute; attribute dropped", node.Data, a.Key))
				continue
			}
			a.Val = val
			res.Rewritten++
			kept = append(kept, a)
		}
		node.Attr = kept
	})
	return res
}

// DowngradeStylesheet removes AVIF from stylesheet text that is no longer
// part of the tree, such as the <style> blocks of a removed head.
func DowngradeStylesheet(css string, resolver Resolver) (string, Result) {
	var res Result
	if !ReferencesAVIF(css) {
		return css, res
	}
	if resolver == nil {
		resolver = DefaultResolver()
	}
	out := res.rewriteCSS(css, resolver, "<head> stylesheet")
	return out, res
}

// dropUnresolvedImage removes an <img> whose image source cannot be resolved.
func (res *Result) dropUnresolvedImage(s *goquery.Selection, node *html.Node, resolver Resolver) bool {
	if node.Data != "img" {
		return false
	}
	for _, a := range node.Attr {
		if !imageAttrs[a.Key] || !ReferencesAVIF(a.Val) {
			continue
		}
		if val, ok := resolver.Resolve(a.Val); !ok || ReferencesAVIF(val) {
			s.Remove()
			res.Dropped++
			res.warn(fmt.Sprintf("image %s has no raster substitute; image dropped", describe(a.Val)))
			return true
		}
	}
	return false
}

// rewriteCSS neutralizes inline AVIF data and resolves file references.
func (res *Result) rewriteCSS(css string, resolver Resolver, where string) string {
	if n := len(avifCSSData.FindAllStringIndex(css, -1)); n > 0 {
		css = avifCSSData.ReplaceAllLiteralString(css, "none")
		res.Dropped += n
		res.warn(fmt.Sprintf("%s embeds AVIF data with no raster substitute; replaced with none", where))
	}
	if !avifExt.MatchString(css) {
		return css
	}
	if val, ok := resolver.Resolve(css); ok && !avifExt.MatchString(val) {
		res.Rewritten++
		return val
	}
	res.warn(fmt.Sprintf("%s references AVIF that could not be resolved", where))
	return css
}

func (res *Result) warn(msg string) {
	res.Issues = append(res.Issues, report.Warn(unresolvedID, msg))
}

// setRawText replaces the children of a raw text element such as <style>.
func setRawText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func describe(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 40 {
		return v[:40] + "..."
	}
	return v
}
