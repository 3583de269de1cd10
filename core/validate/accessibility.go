package validate

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"golang.org/x/net/html"
)

// vagueLinkText lists link texts that say nothing out of context.
var vagueLinkText = map[string]bool{
	"":           true,
	"click here": true,
	"here":       true,
	"link":       true,
	"read more":  true,
}

type headingState struct {
	level  int
	offset int
	text   strings.Builder
}

type linkState struct {
	href   string
	offset int
	text   strings.Builder
}

type tableState struct {
	offset int
	headed bool
	layout bool
}

// headingLevel returns 1-6 for h1-h6 and 0 for any other element.
func headingLevel(name string) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

func (c *checker) startA11y(tok html.Token, off int) {
	if level := headingLevel(tok.Data); level > 0 {
		c.openHeading(level, off)
		return
	}
	switch tok.Data {
	case "a":
		c.closeLink()
		href, ok := attrOK(tok, "href")
		if !ok && (hasAttr(tok, "name") || hasAttr(tok, "id")) {
			// a named anchor is a target, not a link
			return
		}
		c.link = &linkState{href: strings.TrimSpace(href), offset: off}
		if c.link.href == "" || c.link.href == "#" {
			c.add(report.Warning, CodeLinkDestination, fmt.Sprintf("<a> has no destination (href=%q)", href), off)
		}
	case "img":
		// screen readers announce the alt text in place of the image
		c.textA11y(" " + attr(tok, "alt") + " ")
	case "table":
		role := strings.ToLower(strings.TrimSpace(attr(tok, "role")))
		c.tables = append(c.tables, tableState{offset: off, layout: role == "presentation" || role == "none"})
	case "th":
		if n := len(c.tables); n > 0 {
			c.tables[n-1].headed = true
		}
	}
}

func (c *checker) endA11y(name string) {
	if headingLevel(name) > 0 {
		if c.heading != nil {
			c.closeHeading()
		}
		return
	}
	switch name {
	case "a":
		c.closeLink()
	case "table":
		if len(c.tables) > 0 {
			c.closeTable()
		}
	}
}

func (c *checker) textA11y(data string) {
	if c.heading != nil {
		c.heading.text.WriteString(data)
	}
	if c.link != nil {
		c.link.text.WriteString(data)
	}
}

func (c *checker) finishA11y() {
	if c.heading != nil {
		c.closeHeading()
	}
	c.closeLink()
	for len(c.tables) > 0 {
		c.closeTable()
	}
}

func (c *checker) openHeading(level, off int) {
	if c.heading != nil {
		c.closeHeading()
	}
	switch {
	case c.lastLevel == 0 && level != 1:
		c.add(report.Warning, CodeHeadingStart, fmt.Sprintf("first heading is <h%d>; start with <h1>", level), off)
	case c.lastLevel > 0 && level > c.lastLevel+1:
		c.add(report.Warning, CodeHeadingSkip, fmt.Sprintf("heading level skips from <h%d> to <h%d>", c.lastLevel, level), off)
	}
	c.lastLevel = level
	c.heading = &headingState{level: level, offset: off}
}

func (c *checker) closeHeading() {
	if strings.TrimSpace(c.heading.text.String()) == "" {
		c.add(report.Warning, CodeHeadingEmpty, fmt.Sprintf("empty <h%d>", c.heading.level), c.heading.offset)
	}
	c.heading = nil
}

func (c *checker) closeLink() {
	if c.link == nil {
		return
	}
	text := strings.Join(strings.Fields(c.link.text.String()), " ")
	if vagueLinkText[strings.ToLower(text)] {
		c.add(report.Warning, CodeLinkText,
			fmt.Sprintf("link text %q does not describe its destination %q", text, c.link.href), c.link.offset)
	}
	c.link = nil
}

func (c *checker) closeTable() {
	n := len(c.tables)
	t := c.tables[n-1]
	c.tables = c.tables[:n-1]
	if !t.headed && !t.layout {
		c.add(report.Warning, CodeTableHeaders, `<table> has no <th> cells; mark layout tables role="presentation"`, t.offset)
	}
}

func hasAttr(tok html.Token, key string) bool {
	_, ok := attrOK(tok, key)
	return ok
}
