package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/quantity"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quote",
		Short:        "Check quantities and price totals the way the storefront does",
		SilenceUsage: true,
	}
	root.AddCommand(newTotalCmd(), newCheckCmd())
	return root
}

func newTotalCmd() *cobra.Command {
	var (
		price string
		count int
	)
	cmd := &cobra.Command{
		Use:   "total",
		Short: "Print price × count rounded to cents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("--price: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pricing.FormatTotal(pricing.Total(p, count)))
			return nil
		},
	}
	cmd.Flags().StringVar(&price, "price", "0", "unit price")
	cmd.Flags().IntVar(&count, "count", 1, "quantity")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var lo, hi float64
	cmd := &cobra.Command{
		Use:   "check <value>",
		Short: "Validate a quantity field value against bounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loPtr, hiPtr *float64
			if cmd.Flags().Changed("min") {
				loPtr = &lo
			}
			if cmd.Flags().Changed("max") {
				hiPtr = &hi
			}
			in := &quantity.Input{
				Bounds: quantity.NewBounds(loPtr, hiPtr),
				Notifier: notify.Func(func(_ context.Context, message string) {
					fmt.Fprintln(cmd.ErrOrStderr(), message)
				}),
			}
			n, err := in.Change(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, quantity.ErrOutOfRange) {
					return errRejected
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lo, "min", 1, "smallest accepted value")
	cmd.Flags().Float64Var(&hi, "max", 0, "largest accepted value (unbounded when omitted)")
	return cmd
}

var errRejected = errors.New("value rejected")
