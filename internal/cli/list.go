package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carrinho/internal/model"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Date string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List a day's cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", today(), "cart date (YYYY-MM-DD)")

	return cmd
}

type listResult struct {
	Cart  model.Cart   `json:"cart"`
	Items []model.Item `json:"items"`
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	cart, err := a.store.CartByDate(ctx, opts.Date)
	if err != nil {
		return WrapExitError(ExitCommandError, "look up cart", err)
	}
	if cart == nil {
		if out.JSON() {
			return out.Success(nil)
		}
		fmt.Fprintf(out.Writer, "No cart for %s\n", opts.Date)
		return nil
	}

	items, err := a.store.ItemsByCart(ctx, cart.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "load items", err)
	}

	if out.JSON() {
		return out.Success(listResult{Cart: *cart, Items: items})
	}

	fmt.Fprintf(out.Writer, "Cart %s [%s]\n", cart.Date, cart.Status)
	for _, item := range items {
		label := item.ProductName
		if item.Brand != "" {
			label += " (" + item.Brand + ")"
		}
		fmt.Fprintf(out.Writer, "  %-12s  %-30s %6s x %10s = %10s\n",
			item.ID[:min(12, len(item.ID))],
			label,
			model.FormatQuantity(item.QuantityThousandths),
			model.FormatCents(item.UnitPriceCents),
			model.FormatCents(item.TotalCents),
		)
	}
	fmt.Fprintf(out.Writer, "Total: %s (%d items)\n", model.FormatCents(cart.TotalCents), cart.ItemsCount)
	return nil
}
