// Package cmd implements the BulletinPipe CLI using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gaurav-prasanna/bulletinpipe/core/config"
	"github.com/gaurav-prasanna/bulletinpipe/core/pipeline"
	"github.com/gaurav-prasanna/bulletinpipe/core/probe"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
	"github.com/spf13/cobra"
)

// errChecksFailed signals a failed compatibility check. The command has
// already printed why, so Execute only sets the exit code.
var errChecksFailed = errors.New("compatibility check failed")

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	settings string
	verbose  bool
	probeTLS bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "bulletinpipe",
		Short: "BulletinPipe: normalize community bulletins for the web and for email",
		Long: `BulletinPipe rewrites bulletin HTML for one of two delivery profiles and
checks the result against that profile's compatibility rules.

  web    full document with doctype and head, secure URLs, CTA styling
  email  body-only markup, inlined CSS, no AVIF, table and link resets

Usage:
  bulletinpipe audit --mode email bulletins/
  bulletinpipe normalize --profile email bulletin.html
  bulletinpipe export --pdf bulletin.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.settings, "settings", "", "YAML settings file (colors, URL policy, media)")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log pipeline stages to stderr")
	root.PersistentFlags().BoolVar(&opts.probeTLS, "probe-tls", false, "Probe http:// hosts and leave those without HTTPS unchanged")

	root.AddCommand(newAuditCmd(opts), newNormalizeCmd(opts), newExportCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) config() (*config.Config, error) {
	if o.settings == "" {
		return config.Default(), nil
	}
	return config.Load(o.settings)
}

// policy returns the configured URL policy. With --probe-tls, hosts in
// src that do not answer over HTTPS are added to its insecure list.
func (o *rootOptions) policy(ctx context.Context, cfg *config.Config, src string, log *slog.Logger) urls.Policy {
	p := cfg.URLPolicy()
	if !o.probeTLS {
		return p
	}
	dead := probe.Unreachable(ctx, probe.New(), src)
	if len(dead) > 0 {
		log.Info("hosts without HTTPS kept on http://", "hosts", dead)
	}
	p.InsecureHosts = append(p.InsecureHosts, dead...)
	return p
}

// pipeline builds a pipeline for src from the settings file and flags.
func (o *rootOptions) pipeline(ctx context.Context, cfg *config.Config, src string, log *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.WithLogger(log),
		pipeline.WithURLPolicy(o.policy(ctx, cfg, src, log)),
		pipeline.WithMediaResolver(cfg.Resolver()),
	)
}

func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
