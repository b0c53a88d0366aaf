package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carrinho/internal/model"
)

// RemoveOptions holds flags for the remove command.
type RemoveOptions struct {
	*RootOptions
	Date string
	Item string
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "remove",
		Short:         "Remove an item from a day's cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", today(), "cart date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Item, "id", "", "item id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runRemove(opts *RemoveOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	cartID, err := a.cartForDate(cmd, opts.Date)
	if err != nil {
		return err
	}

	removed, err := a.svc.DeleteItem(cmd.Context(), cartID, opts.Item)
	if err != nil {
		return WrapExitError(ExitFailure, "remove item", err)
	}

	if out.JSON() {
		return out.Success(removed)
	}
	fmt.Fprintf(out.Writer, "Removed %s (%s)\n", removed.ProductName, model.FormatCents(removed.TotalCents))
	return nil
}
