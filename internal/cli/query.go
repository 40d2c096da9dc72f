package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/promoavail/internal/app"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var (
		quantity int
		urgent   bool
	)
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Check availability for a single product question",
		Example: `  promoavail query "do you have a badge case in black?"
  promoavail query "navy hoodies" --quantity 1000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				qty *int
				urg *bool
			)
			if cmd.Flags().Changed("quantity") {
				qty = &quantity
			}
			if cmd.Flags().Changed("urgent") {
				urg = &urgent
			}
			return withPipeline(cmd, opts, true, func(ctx context.Context, p *app.Pipeline) error {
				res, err := p.Service.CheckAvailability(ctx, strings.Join(args, " "), qty, urg)
				if err != nil {
					return err
				}
				out := newPrinter(cmd.OutOrStdout())
				if opts.jsonOut {
					return out.json(res)
				}
				out.availability(res)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "explicit order quantity")
	cmd.Flags().BoolVarP(&urgent, "urgent", "u", false, "explicit urgency")
	addOutputFlags(cmd, opts)
	return cmd
}

func newMultiCmd(opts *rootOptions) *cobra.Command {
	var urgent bool
	cmd := &cobra.Command{
		Use:     "multi <message>",
		Short:   "Check availability for every product named in a message",
		Example: `  promoavail multi "500 pcs hoodies, 200 black mugs and 50 lanyards"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urg *bool
			if cmd.Flags().Changed("urgent") {
				urg = &urgent
			}
			return withPipeline(cmd, opts, true, func(ctx context.Context, p *app.Pipeline) error {
				res, err := p.Service.CheckMultiAvailability(ctx, strings.Join(args, " "), urg)
				if err != nil {
					return err
				}
				out := newPrinter(cmd.OutOrStdout())
				if opts.jsonOut {
					return out.json(res)
				}
				out.multi(res)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&urgent, "urgent", "u", false, "mark every item urgent")
	addOutputFlags(cmd, opts)
	return cmd
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resolve <term>...",
		Short:   "Map customer terms to catalog product names",
		Example: `  promoavail resolve "badge case" jumper tote`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, opts, true, func(ctx context.Context, p *app.Pipeline) error {
				res, err := p.Service.ResolveTerms(ctx, args)
				if err != nil {
					return err
				}
				out := newPrinter(cmd.OutOrStdout())
				if opts.jsonOut {
					return out.json(res)
				}
				out.resolutions(res)
				return nil
			})
		},
	}
	addOutputFlags(cmd, opts)
	return cmd
}
