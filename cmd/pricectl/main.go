// Command pricectl runs price comparisons, barcode lookups and offline
// ranking of saved provider responses from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/savetide/backend/config"
	"github.com/savetide/backend/internal/bootstrap"
	"github.com/savetide/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand
type options struct {
	configFile string
	jsonOutput bool
	debug      bool
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "pricectl",
		Short:         "SaveTide price comparison toolkit",
		Long:          `Query trusted merchant prices, resolve barcodes and re-rank saved shopping results.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"config file (default is ./config.yaml, ./config/config.yaml or /etc/savetide/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log debug output to stderr")

	root.AddCommand(
		newCompareCommand(opts),
		newRankCommand(opts),
		newBarcodeCommand(opts),
		newMerchantsCommand(opts),
	)
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// logger writes to stderr so table and JSON output stay clean
func (o *options) logger() logger.Logger {
	level := "error"
	if o.debug {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, OutputPaths: []string{"stderr"}})
	if err != nil {
		return logger.NewNop()
	}
	return log
}

// services wires the full application graph for commands that talk to upstreams
func (o *options) services() (*bootstrap.Services, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.NewServices(cfg, o.logger())
}

func (o *options) renderer(cmd *cobra.Command) *renderer {
	return &renderer{out: cmd.OutOrStdout(), json: o.jsonOutput}
}
