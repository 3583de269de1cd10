package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/spf13/cobra"
)

type normalizeOptions struct {
	profile string
	output  string
	report  string
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	no := &normalizeOptions{}
	cmd := &cobra.Command{
		Use:   "normalize --profile web|email <file>",
		Short: "Rewrite a bulletin for a delivery profile",
		Long: `Normalize runs the profile pipeline over a bulletin and validates the result.
The HTML goes to --output (stdout by default); the report goes to stderr.
The exit status is non-zero when the output fails an error rule.

Examples:
  bulletinpipe normalize --profile email weekly.html --output weekly_email.html
  bulletinpipe normalize --profile web weekly.html --report json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, opts, no, args[0])
		},
	}
	cmd.Flags().StringVar(&no.profile, "profile", "", "Delivery profile: web or email")
	cmd.Flags().StringVar(&no.output, "output", "", "Write HTML to this file instead of stdout")
	cmd.Flags().StringVar(&no.report, "report", "text", "Report format on stderr: text or json")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func runNormalize(cmd *cobra.Command, opts *rootOptions, no *normalizeOptions, path string) error {
	profile, err := core.ParseProfile(no.profile)
	if err != nil {
		return err
	}
	if no.report != "text" && no.report != "json" {
		return fmt.Errorf("--report must be text or json (got %q)", no.report)
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	src, err := readInput(path)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	log := opts.logger(errOut).With("file", path)
	res, err := opts.pipeline(cmd.Context(), cfg, src, log).Run(src, profile, cfg.Theme())
	if err != nil {
		return fmt.Errorf("normalizing %s: %w", path, err)
	}

	if no.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), res.HTML)
	} else if err := os.WriteFile(no.output, []byte(res.HTML), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", no.output, err)
	}

	if no.report == "json" {
		if err := res.Report.WriteJSON(errOut); err != nil {
			return err
		}
	} else {
		res.Report.WriteText(errOut)
	}

	if !res.Report.Passed() {
		return errChecksFailed
	}
	return nil
}
