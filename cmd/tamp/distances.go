package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/tamp-planner/pkg/graph"
)

func distancesCmd() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "distances",
		Short: "Print shortest distances over the configured map",
		Long: `Print the all-pairs shortest distance matrix, or with --from and --to
the shortest path between two nodes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			g, err := cfg.BuildGraph()
			if err != nil {
				return err
			}

			r := renderer{pretty: pretty}
			out := cmd.OutOrStdout()
			if from < 0 && to < 0 {
				fmt.Fprint(out, r.distances(g))
				return nil
			}
			for _, n := range []int{from, to} {
				if !g.Has(graph.Node(n)) {
					return fmt.Errorf("node %d is not on the map", n)
				}
			}
			fmt.Fprintln(out, r.path(g, graph.Node(from), graph.Node(to)))
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", -1, "Path start")
	cmd.Flags().IntVar(&to, "to", -1, "Path end")
	return cmd
}
