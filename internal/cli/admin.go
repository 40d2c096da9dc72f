package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/promoavail/internal/app"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
	"github.com/MrSnakeDoc/promoavail/internal/ingest"
	"github.com/MrSnakeDoc/promoavail/internal/sources/workbook"
	"github.com/MrSnakeDoc/promoavail/internal/utils"
	"github.com/MrSnakeDoc/promoavail/internal/version"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <feed.xlsx|feed.csv>",
		Short: "Import a product feed into the catalog store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return withPipeline(cmd, opts, false, func(ctx context.Context, p *app.Pipeline) error {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open feed: %w", err)
				}
				defer utils.Close(f)

				report, err := p.Importer.Import(ctx, filepath.Base(path), f, ingest.Options{DryRun: dryRun})
				if err != nil {
					return err
				}
				out := newPrinter(cmd.OutOrStdout())
				if opts.jsonOut {
					return out.json(report)
				}
				out.importReport(report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and diff without writing")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the raw JSON report")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "template <catalog.xlsx>",
		Short: "Write an empty catalog workbook with the expected columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := workbook.Create(path, nil, nil); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}
			newPrinter(cmd.OutOrStdout()).ok("template written to %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		subject string
		admin   bool
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API bearer token with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			role := mw.RoleUser
			if admin {
				role = mw.RoleAdmin
			}
			tok, err := mw.IssueToken([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer, subject, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "token subject, usually an email (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "promoavail %s (commit=%s, built=%s, go=%s)\n",
				version.Version, version.Commit, version.BuildDate, version.GoVersion)
		},
	}
}
