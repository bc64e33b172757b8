package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohanmmit/shuffleplan"
	"github.com/rohanmmit/shuffleplan/internal/display"
	"github.com/rohanmmit/shuffleplan/internal/planconfig"
)

func (c *CLI) newPlanCommand() *cobra.Command {
	var targetBytesOverride uint64

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute and print the post-shuffle plan(s) for a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := planconfig.NewLoader(c.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("target-bytes") {
				loader.Set("coordinator.target_bytes", targetBytesOverride)
			}

			doc, err := loader.Load()
			if err != nil {
				return err
			}

			coord, ids, err := buildCoordinator(doc)
			if err != nil {
				return err
			}
			return renderPlans(cmd, coord, ids)
		},
	}
	cmd.Flags().Uint64Var(&targetBytesOverride, "target-bytes", 0,
		"override the document's coordinator.target_bytes")
	return cmd
}

// buildCoordinator wires a shuffleplan.Coordinator to the document's
// exchanges via planconfig's static Exchange/Scheduler adapters, registering
// every exchange and logging each estimation pass through an OnEstimation
// hook. It returns the coordinator alongside the ExchangeID actually
// assigned to each document exchange, in document order — IDs left blank in
// the document are minted fresh by NewStaticExchange, so callers must not
// re-derive them from the document themselves.
func buildCoordinator(doc planconfig.PlanDocument) (*shuffleplan.Coordinator, []shuffleplan.ExchangeID, error) {
	cfg, err := doc.ToCoordinatorConfig()
	if err != nil {
		return nil, nil, err
	}

	exchanges := make([]*planconfig.StaticExchange, len(doc.Exchanges))
	ids := make([]shuffleplan.ExchangeID, len(doc.Exchanges))
	for i, spec := range doc.Exchanges {
		exchanges[i] = planconfig.NewStaticExchange(spec)
		ids[i] = exchanges[i].ID()
	}
	sched, err := planconfig.NewStaticScheduler(doc.Exchanges, exchanges)
	if err != nil {
		return nil, nil, err
	}

	cfg.OnEstimation = func(rep shuffleplan.EstimationReport) {
		display.RenderEstimationReport(os.Stderr, rep)
	}

	coord, err := shuffleplan.NewCoordinator(cfg, sched)
	if err != nil {
		return nil, nil, err
	}
	for _, exch := range exchanges {
		if err := coord.RegisterExchange(exch); err != nil {
			return nil, nil, err
		}
	}
	return coord, ids, nil
}

func renderPlans(cmd *cobra.Command, coord *shuffleplan.Coordinator, ids []shuffleplan.ExchangeID) error {
	ctx := context.Background()
	for _, id := range ids {
		plan, err := coord.PlanFor(ctx, id)
		if err != nil {
			return fmt.Errorf("planning exchange %q: %w", id, err)
		}
		if err := display.RenderPlan(cmd.OutOrStdout(), id, plan); err != nil {
			return err
		}
	}
	return nil
}
