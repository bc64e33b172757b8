package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohanmmit/shuffleplan/internal/planconfig"
)

// newValidateCommand checks a plan-description document for structural and
// cross-field validity without running the coordinator, useful in CI before
// a document is wired into a real pipeline.
func (c *CLI) newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a plan-description document without computing a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := planconfig.NewLoader(c.configFile)
			if err != nil {
				return err
			}
			doc, err := loader.Load()
			if err != nil {
				return err
			}
			if _, err := doc.ToCoordinatorConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "document valid: %d exchange(s)\n", len(doc.Exchanges))
			return nil
		},
	}
}
