package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carrinho/internal/model"
	"carrinho/internal/service"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Date     string
	Name     string
	Brand    string
	Category string
	Store    string
	Price    string
	Quantity string
	Weight   bool
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to a day's cart",
		Long: `Add an item to the cart for a date, creating the cart if needed.

Price and quantity accept pt-BR decimals ("12,90", "1,5").

Examples:
  carrinho add --name "Café Torrado" --brand "Pilão" --price 12,90
  carrinho add --name Picanha --price 69,90 --qty 1,2 --weight --date 2026-08-28`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", today(), "cart date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "product name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.Brand, "brand", "", "brand")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category")
	cmd.Flags().StringVar(&opts.Store, "store", "", "store name")
	cmd.Flags().StringVar(&opts.Price, "price", "", "unit price, e.g. 12,90")
	cmd.Flags().StringVar(&opts.Quantity, "qty", "", "quantity, e.g. 2 or 1,5 (default 1)")
	cmd.Flags().BoolVar(&opts.Weight, "weight", false, "quantity is a weight in kg, not a unit count")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	cart, err := a.svc.OpenDay(ctx, opts.Date)
	if err != nil {
		return WrapExitError(ExitCommandError, "open cart", err)
	}

	qtyType := model.QuantityUnit
	if opts.Weight {
		qtyType = model.QuantityWeight
	}
	item, err := a.svc.AddItem(ctx, cart.ID, service.ItemInput{
		ProductName:  opts.Name,
		Brand:        opts.Brand,
		Category:     opts.Category,
		Store:        opts.Store,
		Price:        opts.Price,
		Quantity:     opts.Quantity,
		QuantityType: qtyType,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "add item", err)
	}

	if out.JSON() {
		return out.Success(item)
	}
	fmt.Fprintf(out.Writer, "Added %s: %s x %s = %s\n",
		item.ProductName,
		model.FormatQuantity(item.QuantityThousandths),
		model.FormatCents(item.UnitPriceCents),
		model.FormatCents(item.TotalCents),
	)
	out.VerboseLog("cart %s queued for sync (item %s)", cart.Date, item.ID)
	return nil
}
