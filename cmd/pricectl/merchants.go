package main

import (
	"github.com/spf13/cobra"
)

func newMerchantsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "merchants",
		Short: "List the trusted merchant catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			merchants, err := cfg.LoadMerchants()
			if err != nil {
				return err
			}
			return opts.renderer(cmd).merchants(merchants)
		},
	}
}
