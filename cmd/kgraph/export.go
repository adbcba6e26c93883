package kgraph

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/export"
)

const formatParquet = "parquet"

func newExportCmd() *cobra.Command {
	var input, output, format string
	var neo4j, infer bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved graph",
		Long: `Export a JSON graph as turtle, json, cypher, owl or parquet. Parquet
writes nodes, edges and triples tables into the --output directory; the other
formats go to --output or stdout. --neo4j pushes the graph to the configured
Neo4j database instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kg, log, flush, err := openGraph(ctx, input)
			if err != nil {
				return err
			}
			defer flush()

			if infer {
				kg.RunInference()
			}

			if neo4j {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				exporter, err := export.NewNeo4jExporter(cfg.Neo4j, log)
				if err != nil {
					return err
				}
				defer exporter.Close(ctx)
				nodes, edges, err := kg.PushNeo4j(ctx, exporter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pushed %d nodes and %d edges to %s\n", nodes, edges, cfg.Neo4j.URI)
				return nil
			}

			if strings.EqualFold(format, formatParquet) {
				if output == "" {
					return fmt.Errorf("parquet export requires --output directory")
				}
				if err := kg.WriteParquet(ctx, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote parquet tables to %s\n", output)
				return nil
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return kg.Export(w, format)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON graph file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or directory for parquet")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatTurtle), "turtle, json, cypher, owl or parquet")
	cmd.Flags().BoolVar(&neo4j, "neo4j", false, "push to the configured Neo4j database")
	cmd.Flags().BoolVar(&infer, "infer", false, "include inferred triples in parquet output")
	cmd.MarkFlagRequired("input")
	return cmd
}
