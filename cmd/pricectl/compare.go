package main

import (
	"strings"

	"github.com/savetide/backend/internal/domain"
	"github.com/spf13/cobra"
)

func newCompareCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "compare <query>",
		Short:   "Compare prices for a product across trusted merchants",
		Example: `  pricectl compare "ninja air fryer af101"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.services()
			if err != nil {
				return err
			}
			defer services.Close()

			result, err := services.Comparison.Compare(cmd.Context(), &domain.CompareRequest{
				Query: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			return opts.renderer(cmd).resultSet(result)
		},
	}
}
