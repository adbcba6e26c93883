package kgraph

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var input string
	var infer bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print statistics of a saved graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			kg, _, flush, err := openGraph(cmd.Context(), input)
			if err != nil {
				return err
			}
			defer flush()

			if infer {
				kg.RunInference()
			}
			st := kg.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:       %d\n", st.NodeCount)
			fmt.Fprintf(out, "edges:       %d\n", st.EdgeCount)
			fmt.Fprintf(out, "triples:     %d\n", st.TripleCount)
			fmt.Fprintf(out, "inferred:    %d\n", st.InferredCount)
			fmt.Fprintf(out, "avg degree:  %.2f\n", st.AvgDegree)
			fmt.Fprintf(out, "clustering:  %.3f\n", st.ClusteringCoefficient)
			for _, line := range sortedCounts(st.NodesByType) {
				fmt.Fprintf(out, "  node %s\n", line)
			}
			for _, line := range sortedCounts(st.EdgesByType) {
				fmt.Fprintf(out, "  edge %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON graph file")
	cmd.Flags().BoolVar(&infer, "infer", false, "run inference before counting")
	cmd.MarkFlagRequired("input")
	return cmd
}

func sortedCounts[K ~string](m map[K]int) []string {
	lines := make([]string, 0, len(m))
	for k, n := range m {
		lines = append(lines, fmt.Sprintf("%-12s %d", string(k)+":", n))
	}
	sort.Strings(lines)
	return lines
}
