package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/bulletinpipe/core"
)

var headingLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// Section is the text under one heading of the digest.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Link is one outbound link of the bulletin.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Digest is the structured form of a bulletin, for feeds and archives.
type Digest struct {
	Metadata core.BulletinMeta `json:"metadata"`
	Sections []Section         `json:"sections"`
	Links    []Link            `json:"links"`
	Markdown string            `json:"markdown"`
}

// JSONRenderer produces a Digest from the Markdown form of a bulletin.
type JSONRenderer struct {
	md *MarkdownRenderer
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{md: NewMarkdownRenderer()}
}

// Render converts html into an indented JSON digest.
func (r *JSONRenderer) Render(html string, meta core.BulletinMeta) ([]byte, error) {
	markdown, err := r.md.convert(html)
	if err != nil {
		return nil, err
	}
	d := Digest{
		Metadata: meta,
		Sections: sections(markdown),
		Links:    links(markdown),
		Markdown: markdown,
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling digest: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// sections splits markdown at its headings. Text before the first heading
// is dropped.
func sections(md string) []Section {
	out := []Section{}
	var cur *Section
	var body []string
	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(strings.Join(body, "\n"))
			out = append(out, *cur)
		}
	}
	for _, line := range strings.Split(md, "\n") {
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			if cur != nil {
				body = append(body, line)
			}
			continue
		}
		flush()
		cur = &Section{Heading: strings.TrimSpace(m[2]), Level: len(m[1])}
		body = nil
	}
	flush()
	return out
}

// links lists the Markdown links in md, skipping images.
func links(md string) []Link {
	out := []Link{}
	for _, m := range linkSpan.FindAllStringSubmatchIndex(md, -1) {
		if m[0] > 0 && md[m[0]-1] == '!' {
			continue
		}
		out = append(out, Link{Text: md[m[2]:m[3]], Href: md[m[4]:m[5]]})
	}
	return out
}
