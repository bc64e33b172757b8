// Package main implements shuffleplanctl, a companion CLI for the
// shuffleplan module: given a plan-description document describing one or
// two exchanges' already-gathered map-output statistics, it runs the
// coordinator and renders the resulting post-shuffle plan(s).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// CLI holds the cobra command tree and the flag values shared across its
// subcommands, grounded on the teacher pack's CLI struct (RootCmd plus
// persistent flag fields set up once in setupRootCommand).
type CLI struct {
	RootCmd *cobra.Command
	logger  *slog.Logger

	configFile string
	verbose    bool
}

// NewCLI builds the command tree.
func NewCLI(logger *slog.Logger) *CLI {
	c := &CLI{logger: logger}
	c.setupRootCommand()
	c.RootCmd.AddCommand(c.newPlanCommand(), c.newValidateCommand())
	return c
}

func (c *CLI) setupRootCommand() {
	c.RootCmd = &cobra.Command{
		Use:     "shuffleplanctl",
		Short:   "Inspect and validate adaptive post-shuffle partition plans",
		Version: "0.1.0",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
		},
	}
	c.RootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "",
		"path to a plan-description document (yaml/json/toml)")
	c.RootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false,
		"enable verbose logging")
}

// Execute runs the command tree, printing a formatted error to stderr on
// failure.
func (c *CLI) Execute() error {
	if err := c.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
