package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"carrinho/internal/model"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Month string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List carts, newest first",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Month, "month", "", "restrict to a month (YYYY-MM)")
	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	carts, err := a.svc.History(cmd.Context(), opts.Month)
	if err != nil {
		return WrapExitError(ExitCommandError, "load history", err)
	}

	if out.JSON() {
		return out.Success(carts)
	}
	if len(carts) == 0 {
		fmt.Fprintln(out.Writer, "No carts")
		return nil
	}
	for _, cart := range carts {
		fmt.Fprintf(out.Writer, "%s  %-6s %10s  (%d items)\n",
			cart.Date, cart.Status, model.FormatCents(cart.TotalCents), cart.ItemsCount)
	}
	return nil
}

// InsightsOptions holds flags for the insights command.
type InsightsOptions struct {
	*RootOptions
	Month string
}

// NewInsightsCommand creates the insights command.
func NewInsightsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsightsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "insights",
		Short:         "Monthly spending insights over closed carts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsights(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Month, "month", time.Now().Format("2006-01"), "month to analyze (YYYY-MM)")
	return cmd
}

func runInsights(opts *InsightsOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ins, err := a.svc.Insights(cmd.Context(), opts.Month)
	if err != nil {
		return WrapExitError(ExitCommandError, "compute insights", err)
	}

	if out.JSON() {
		return out.Success(ins)
	}

	fmt.Fprintf(out.Writer, "Month %s: %s across %d carts (%d items)\n",
		ins.Month, model.FormatCents(ins.TotalCents), ins.CartCount, ins.ItemCount)

	if len(ins.TopByValue) > 0 {
		fmt.Fprintln(out.Writer, "\nTop products by value:")
		for _, p := range ins.TopByValue {
			fmt.Fprintf(out.Writer, "  %-30s %10s  (%dx)\n", p.ProductName, model.FormatCents(p.TotalCents), p.Purchases)
		}
	}
	if len(ins.TopByQuantity) > 0 {
		fmt.Fprintln(out.Writer, "\nTop products by quantity:")
		for _, p := range ins.TopByQuantity {
			fmt.Fprintf(out.Writer, "  %-30s %10s\n", p.ProductName, model.FormatQuantity(p.QuantityThousandths))
		}
	}
	if len(ins.TopCategories) > 0 {
		fmt.Fprintln(out.Writer, "\nTop categories:")
		for _, c := range ins.TopCategories {
			fmt.Fprintf(out.Writer, "  %-30s %10s\n", c.Category, model.FormatCents(c.TotalCents))
		}
	}
	return nil
}
