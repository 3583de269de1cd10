package style

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Required leading declarations per element role.
var (
	BoxReset  = Declarations{{Property: "margin", Value: "0"}, {Property: "padding", Value: "0"}}
	CellReset = Declarations{{Property: "border", Value: "none"}}
	Collapse  = Declaration{Property: "border-collapse", Value: "collapse"}
)

// ButtonText is the text color given to CTA buttons that set none.
const ButtonText = "#ffffff"

// buttonClassPrefixes mark an anchor as a call-to-action button.
var buttonClassPrefixes = []string{"btn", "button", "cta"}

// Stats counts the elements whose style attribute changed.
type Stats struct {
	Anchors int
	Images  int
	Tables  int
	Cells   int
	Buttons int
}

// Changed returns the total number of rewritten elements.
func (s Stats) Changed() int {
	return s.Anchors + s.Images + s.Tables + s.Cells
}

// Normalize applies the email-safe style rules to every a, img, table and
// td under root. accent is the CTA background color. Re-running it on its
// own output changes nothing.
func Normalize(root *html.Node, accent string) Stats {
	var st Stats
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("a, img, table, td").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		decls := Parse(attr(node, "style"))

		switch node.Data {
		case "a":
			decls = decls.Prefixed(BoxReset)
			if isButton(s) {
				decls = decls.Set("background-color", accent)
				if !decls.Has("color") {
					decls = append(decls, Declaration{Property: "color", Value: ButtonText})
				}
				st.Buttons++
			}
		case "img":
			decls = decls.Prefixed(BoxReset)
		case "table":
			if d, ok := decls.Get(Collapse.Property); !ok || d.Value != Collapse.Value || d.Important {
				decls = decls.Set(Collapse.Property, Collapse.Value)
			}
		case "td":
			decls = decls.Prefixed(CellReset)
		}

		if setAttr(node, "style", decls.String()) {
			switch node.Data {
			case "a":
				st.Anchors++
			case "img":
				st.Images++
			case "table":
				st.Tables++
			case "td":
				st.Cells++
			}
		}
	})
	return st
}

// isButton reports whether an anchor is styled as a call-to-action.
func isButton(s *goquery.Selection) bool {
	if role, ok := s.Attr("role"); ok && strings.EqualFold(strings.TrimSpace(role), "button") {
		return true
	}
	class, _ := s.Attr("class")
	for _, token := range strings.Fields(strings.ToLower(class)) {
		for _, prefix := range buttonClassPrefixes {
			if strings.HasPrefix(token, prefix) {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr writes key=val and reports whether the node changed.
func setAttr(n *html.Node, key, val string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == val {
				return false
			}
			n.Attr[i].Val = val
			return true
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	return true
}
