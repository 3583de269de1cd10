package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/export"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	web       bool
	email     bool
	text      bool
	markdown  bool
	pdf       bool
	json      bool
	outputDir string
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	eo := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <file> [flags]",
		Short: "Normalize a bulletin and write it in one export format",
		Long: `Export normalizes a bulletin and writes a single file named after its title.
Every format except --web is built from the email rendering, and is refused
when that rendering fails an error rule.

Examples:
  bulletinpipe export weekly.html --email --output_dir ./out
  bulletinpipe export weekly.html --text
  bulletinpipe export weekly.html --pdf --settings theme.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, eo, args[0])
		},
	}

	cmd.Flags().BoolVar(&eo.web, "web", false, "Web page HTML")
	cmd.Flags().BoolVar(&eo.email, "email", false, "Email body HTML")
	cmd.Flags().BoolVar(&eo.text, "text", false, "Plain-text email alternative")
	cmd.Flags().BoolVar(&eo.markdown, "markdown", false, "Markdown digest")
	cmd.Flags().BoolVar(&eo.pdf, "pdf", false, "Archival PDF")
	cmd.Flags().BoolVar(&eo.json, "json", false, "Structured JSON digest")
	cmd.Flags().StringVar(&eo.outputDir, "output_dir", "", "Output directory (default: current directory)")
	return cmd
}

func runExport(cmd *cobra.Command, opts *rootOptions, eo *exportOptions, path string) error {
	if err := eo.validate(); err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	src, err := readInput(path)
	if err != nil {
		return err
	}

	profile, renderer := eo.selectRenderer()
	errOut := cmd.ErrOrStderr()
	log := opts.logger(errOut).With("file", path)

	res, err := opts.pipeline(cmd.Context(), cfg, src, log).Run(src, profile, cfg.Theme())
	if err != nil {
		return fmt.Errorf("normalizing %s: %w", path, err)
	}
	if !res.Report.Passed() {
		res.Report.WriteText(errOut)
		if profile == core.ProfileEmail {
			fmt.Fprintln(errOut, "export blocked: the email rendering fails its compatibility rules")
			return errChecksFailed
		}
	}

	// the email rendering has no <head>, so the title is read from the input
	meta := export.Meta(src, profile, path)
	data, err := renderer.Render(res.HTML, meta)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}

	writer, err := export.NewWriter(eo.outputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	written, err := writer.Write(meta, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", written)
	return nil
}

// validate checks that exactly one export format is chosen.
func (eo *exportOptions) validate() error {
	n := 0
	for _, set := range []bool{eo.web, eo.email, eo.text, eo.markdown, eo.pdf, eo.json} {
		if set {
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("exactly one export format is required: --web, --email, --text, --markdown, --pdf, or --json")
	}
	if n > 1 {
		return fmt.Errorf("only one export format allowed per run (got %d)", n)
	}
	return nil
}

// selectRenderer returns the profile the export is built from and its renderer.
func (eo *exportOptions) selectRenderer() (core.Profile, core.Renderer) {
	switch {
	case eo.web:
		return core.ProfileWeb, export.NewHTMLRenderer(core.ProfileWeb)
	case eo.text:
		return core.ProfileEmail, export.NewTextRenderer()
	case eo.markdown:
		return core.ProfileEmail, export.NewMarkdownRenderer()
	case eo.pdf:
		return core.ProfileEmail, export.NewPDFRenderer()
	case eo.json:
		return core.ProfileEmail, export.NewJSONRenderer()
	default:
		return core.ProfileEmail, export.NewHTMLRenderer(core.ProfileEmail)
	}
}
