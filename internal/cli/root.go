// Package cli holds the promoavail commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/promoavail/internal/app"
	"github.com/MrSnakeDoc/promoavail/internal/config"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

type rootOptions struct {
	cfgFile  string
	verbose  bool
	noColor  bool
	jsonOut  bool
	useRedis bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "promoavail",
		Short: "Answer product availability questions against the promotional catalog",
		Long: `promoavail resolves free-text customer questions ("do you have 500 navy hoodies?")
against the curated product catalog and recommends a local or overseas source.

Run "promoavail serve" for the HTTP API, or ask one-off questions from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (defaults to $PROMOAVAIL_CONFIG)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured level instead of warn")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newServeCmd(opts),
		newQueryCmd(opts),
		newMultiCmd(opts),
		newResolveCmd(opts),
		newImportCmd(opts),
		newTemplateCmd(),
		newTokenCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree.
func Execute() error {
	return NewRootCmd().Execute()
}

// addOutputFlags registers the flags shared by the one-shot query commands.
func addOutputFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the raw JSON result")
	cmd.Flags().BoolVar(&opts.useRedis, "redis", false, "use the configured redis extraction cache")
}

func loadConfig(opts *rootOptions) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if opts.verbose {
		level = cfg.Log.Level
	}
	return cfg, logger.New(level, cfg.Log.Pretty), nil
}

// withPipeline builds the resolution stack, optionally loads the catalog, runs fn and
// releases everything.
func withPipeline(cmd *cobra.Command, opts *rootOptions, load bool, fn func(ctx context.Context, p *app.Pipeline) error) error {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	p, err := app.NewPipeline(ctx, cfg, log, app.PipelineOptions{UseRedis: opts.useRedis})
	if err != nil {
		return err
	}
	defer p.Close()

	if load {
		if _, err := p.LoadCatalog(ctx, cfg.Catalog); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	return fn(ctx, p)
}
