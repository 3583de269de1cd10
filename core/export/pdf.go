package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/jung-kurt/gofpdf"
)

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s`)
	italicSpan   = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	codeSpan     = regexp.MustCompile("`([^`]+)`")
	linkSpan     = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	imageSpan    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	tableRule    = regexp.MustCompile(`^\|[-:| ]+\|$`)
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}

// PDFRenderer produces an archival PDF of a bulletin. The layout follows
// the Markdown digest: headings, paragraphs and list items. Images are not
// embedded; their alt text is kept.
type PDFRenderer struct {
	md *MarkdownRenderer
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{md: NewMarkdownRenderer()}
}

// Render converts html into PDF bytes.
func (r *PDFRenderer) Render(html string, meta core.BulletinMeta) ([]byte, error) {
	markdown, err := r.md.convert(html)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(meta.Title), "", "L", false)
	pdf.Ln(2)
	if meta.Source != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr("Source: "+meta.Source), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	titled := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)

		case tableRule.MatchString(trimmed):
			continue

		case strings.HasPrefix(trimmed, "|"):
			cells := strings.Split(strings.Trim(trimmed, "|"), "|")
			for i := range cells {
				cells[i] = cleanInline(cells[i])
			}
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(strings.Join(cells, "   ")), "", "L", false)

		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			text := cleanInline(strings.TrimLeft(trimmed, "# "))
			// the first h1 usually repeats the title
			if level == 1 && !titled && text == meta.Title {
				titled = true
				continue
			}
			heading(pdf, tr(text), level)

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInline(trimmed[2:])), "", "L", false)

		case numberedItem.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInline(trimmed)), "", "L", false)

		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInline(trimmed)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func heading(pdf *gofpdf.Fpdf, text string, level int) {
	size, ok := headingSizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(2)
}

// cleanInline strips inline Markdown. Links keep their text followed by
// the target so the printed copy stays usable.
func cleanInline(text string) string {
	text = imageSpan.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicSpan.ReplaceAllString(text, " $1 ")
	text = codeSpan.ReplaceAllString(text, "$1")
	text = linkSpan.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkSpan.FindStringSubmatch(m)
		if sub[1] == "" || sub[1] == sub[2] {
			return sub[2]
		}
		return sub[1] + " (" + sub[2] + ")"
	})
	return strings.TrimSpace(text)
}
