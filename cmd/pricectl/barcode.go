package main

import (
	"github.com/savetide/backend/internal/domain"
	"github.com/spf13/cobra"
)

func newBarcodeCommand(opts *options) *cobra.Command {
	var compare bool

	cmd := &cobra.Command{
		Use:   "barcode <code>",
		Short: "Resolve an EAN/UPC barcode to a product title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.services()
			if err != nil {
				return err
			}
			defer services.Close()

			product, err := services.Barcode.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := opts.renderer(cmd)
			if !compare {
				return r.product(product)
			}

			result, err := services.Comparison.Compare(cmd.Context(), &domain.CompareRequest{Query: product.Title})
			if err != nil {
				return err
			}
			return r.resultSet(result)
		},
	}
	cmd.Flags().BoolVar(&compare, "compare", false, "run a price comparison for the resolved product")
	return cmd
}
