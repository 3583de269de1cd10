package export

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/microcosm-cc/bluemonday"
)

// MarkdownRenderer converts a bulletin into a Markdown digest. Inline
// styles and leftover <style> blocks are sanitized away before conversion.
type MarkdownRenderer struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Render returns the Markdown digest, headed by the bulletin title.
func (r *MarkdownRenderer) Render(html string, meta core.BulletinMeta) ([]byte, error) {
	md, err := r.convert(html)
	if err != nil {
		return nil, err
	}
	if meta.Title != "" && !strings.HasPrefix(md, "# ") {
		md = "# " + meta.Title + "\n\n" + md
	}
	return []byte(md + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func (r *MarkdownRenderer) convert(html string) (string, error) {
	clean := r.policy.Sanitize(html)
	md, err := r.conv.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
