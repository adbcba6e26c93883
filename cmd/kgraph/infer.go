package kgraph

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInferCmd() *cobra.Command {
	var input, output string
	var materialize, explain bool

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run forward chaining over a saved graph",
		Long: `Load a JSON graph, run the enabled inference rules to a fixpoint and
print the derived triples. With --materialize the triples are added as edges
and the graph is written to --output (or back to --input).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kg, _, flush, err := openGraph(cmd.Context(), input)
			if err != nil {
				return err
			}
			defer flush()

			triples := kg.RunInference()
			out := cmd.OutOrStdout()
			for _, t := range triples {
				if explain {
					fmt.Fprintln(out, kg.Explain(t))
					continue
				}
				fmt.Fprintln(out, t.String())
			}
			fmt.Fprintf(out, "%d triples inferred\n", len(triples))

			if !materialize {
				return nil
			}
			added := kg.MaterializeInferred()
			dst := output
			if dst == "" {
				dst = input
			}
			if err := kg.Save(cmd.Context(), dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d edges materialized, saved to %s\n", added, dst)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON graph file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file for the materialized graph (default is --input)")
	cmd.Flags().BoolVar(&materialize, "materialize", false, "add inferred triples as edges and save")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the rule behind each triple")
	cmd.MarkFlagRequired("input")
	return cmd
}
