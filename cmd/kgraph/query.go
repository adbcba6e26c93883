package kgraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/kgraph/pkg/types"
)

func newQueryCmd() *cobra.Command {
	var (
		input, subject, predicate, object, filter string
		limit                                     int
		asJSON, infer                             bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Match a triple pattern against a saved graph",
		Long: `Match a single subject/predicate/object pattern against node labels.
Empty or ?variable terms match anything. --filter takes a CEL expression over
subject, predicate, object, confidence, weight and props.`,
		Example: `  kgraph query -i graph.json --predicate IS_A --object Human
  kgraph query -i graph.json --filter 'confidence > 0.8' --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kg, _, flush, err := openGraph(cmd.Context(), input)
			if err != nil {
				return err
			}
			defer flush()

			if infer {
				kg.RunInference()
				kg.MaterializeInferred()
			}

			pattern := types.QueryPattern{Subject: subject, Object: object}
			if predicate != "" && !types.IsVariable(predicate) {
				pattern.Predicate = types.ParseEdgeType(predicate).Ptr()
			}
			q := types.GraphQuery{Patterns: []types.QueryPattern{pattern}, Filter: filter}
			if limit > 0 {
				q.Limit = &limit
			}
			if err := q.Validate(); err != nil {
				return err
			}
			res := kg.Query(q)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			for _, b := range res.Bindings {
				fmt.Fprintln(out, formatBinding(b))
			}
			fmt.Fprintf(out, "%d of %d matches\n", len(res.Bindings), res.TotalMatches)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON graph file")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject label or ?variable")
	cmd.Flags().StringVarP(&predicate, "predicate", "p", "", "edge type")
	cmd.Flags().StringVarP(&object, "object", "o", "", "object label or ?variable")
	cmd.Flags().StringVar(&filter, "filter", "", "CEL filter expression")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of bindings")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&infer, "infer", false, "materialize inferred triples before matching")
	cmd.MarkFlagRequired("input")
	return cmd
}

func formatBinding(b map[string]string) string {
	return strings.Join([]string{b["subject"], b["predicate"], b["object"]}, " ")
}
