package cmd

import (
	"fmt"
	"io"

	"github.com/gaurav-prasanna/bulletinpipe/collect"
	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"github.com/gaurav-prasanna/bulletinpipe/core/validate"
	"github.com/spf13/cobra"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "audit --mode web|email <path...>",
		Short: "Check bulletin files against a profile's compatibility rules",
		Long: `Audit validates finished bulletin HTML without changing it. Directories are
searched for .html and .htm files. Each file gets one PASS/FAIL line per
error rule and PASS/WARN per warning rule, then a verdict.

The exit status is 0 only when every file passes every error rule.

Examples:
  bulletinpipe audit --mode email out/weekly_email.html
  bulletinpipe audit --mode web site/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, opts, mode, args)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Profile to check against: web or email")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}

func runAudit(cmd *cobra.Command, opts *rootOptions, mode string, args []string) error {
	profile, err := core.ParseProfile(mode)
	if err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	log := opts.logger(errOut)

	files, walkErr := collect.Files(args)
	failed := walkErr != nil
	if walkErr != nil {
		fmt.Fprintf(errOut, "FAIL  %v\n", walkErr)
	}
	if len(files) == 0 && walkErr == nil {
		return fmt.Errorf("no .html or .htm files found in %v", args)
	}

	for _, path := range files {
		src, err := readInput(path)
		if err != nil {
			fmt.Fprintf(out, "FAIL  %s: %v\n", path, err)
			failed = true
			continue
		}
		policy := opts.policy(cmd.Context(), cfg, src, log)
		rep, err := validate.Validate(src, profile, validate.WithURLPolicy(policy))
		if err != nil {
			return err
		}
		log.Debug("file audited", "path", path, "errors", rep.ErrorCount(), "warnings", rep.WarningCount())
		writeAudit(out, path, rep)
		if !rep.Passed() {
			failed = true
		}
	}

	if failed {
		return errChecksFailed
	}
	return nil
}

// writeAudit prints one line per rule of the report's profile followed by
// the issues behind it and a verdict for the file.
func writeAudit(w io.Writer, path string, rep *report.Report) {
	fmt.Fprintf(w, "== %s (%s)\n", path, rep.Profile)
	for _, rule := range validate.Rules(rep.Profile) {
		found := rep.ByCode(rule.Code)
		status := "PASS"
		if len(found) > 0 {
			status = "FAIL"
			if rule.Severity == report.Warning {
				status = "WARN"
			}
		}
		fmt.Fprintf(w, "%-5s %-22s %s\n", status, rule.Code, rule.Description)
		for _, iss := range found {
			fmt.Fprintf(w, "      %s\n", iss)
		}
	}

	verdict := "PASS"
	if !rep.Passed() {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "%s: %s (%d errors, %d warnings)\n", verdict, path, rep.ErrorCount(), rep.WarningCount())
}
