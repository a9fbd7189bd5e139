package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/mapping"
	"github.com/stwalsh4118/reclaim/internal/pipeline"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the pipeline steps in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mapper, err := mapping.Default()
			if err != nil {
				return err
			}
			index, err := postalcode.NewIndex(nil)
			if err != nil {
				return err
			}
			// Listing never touches the stores, so empty in-memory ones suffice.
			p, err := pipeline.New(pipeline.Options{
				Store:  repository.NewMemoryStore(),
				Source: legacy.NewMemorySource(),
				Index:  index,
				Mapper: mapper,
				Log:    logger.Nop(),
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, s := range p.Steps() {
				fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
			}
			return tw.Flush()
		},
	}
}
