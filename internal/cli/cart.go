package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carrinho/internal/model"
)

// CartOptions holds flags for the close and reopen commands.
type CartOptions struct {
	*RootOptions
	Date string
}

// NewCloseCommand creates the close command.
func NewCloseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "close",
		Short:         "Close a day's cart",
		Long:          "Close a cart, freezing its items and stamping the closing time.\nClosed carts count toward monthly insights.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartTransition(opts, cmd, true)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", today(), "cart date (YYYY-MM-DD)")
	return cmd
}

// NewReopenCommand creates the reopen command.
func NewReopenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "reopen",
		Short:         "Reopen a closed cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartTransition(opts, cmd, false)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", today(), "cart date (YYYY-MM-DD)")
	return cmd
}

func runCartTransition(opts *CartOptions, cmd *cobra.Command, close bool) error {
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

	var cart model.Cart
	if close {
		cart, err = a.svc.CloseCart(cmd.Context(), cartID)
	} else {
		cart, err = a.svc.ReopenCart(cmd.Context(), cartID)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "update cart", err)
	}

	if out.JSON() {
		return out.Success(cart)
	}
	fmt.Fprintf(out.Writer, "Cart %s is now %s (%s, %d items)\n",
		cart.Date, cart.Status, model.FormatCents(cart.TotalCents), cart.ItemsCount)
	return nil
}
