package kgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/logger"
	"github.com/soundprediction/kgraph/pkg/telemetry"
)

var cfgFile string

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kgraph",
		Short: "kgraph: in-memory knowledge graph with inference",
		Long: `kgraph stores typed nodes and edges, answers pattern queries, derives
new facts by forward chaining and exports graphs as Turtle, JSON, Cypher,
OWL or Parquet.

Run "kgraph server" to expose a graph over HTTP, or use the infer, query,
export and stats commands against a saved JSON graph.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kgraph.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json, charm)")

	viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(
		newServerCmd(),
		newInferCmd(),
		newQueryCmd(),
		newExportCmd(),
		newStatsCmd(),
	)
	return root
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kgraph")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger. When a telemetry directory is
// configured, error records are also archived as Parquet; the returned
// flush writes any buffered records.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	handler := logger.NewHandler(cfg.Log, os.Stderr)
	if cfg.Telemetry.ParquetPath == "" {
		return slog.New(handler), func() {}, nil
	}
	ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath, telemetry.DefaultBatchSize)
	if err != nil {
		return nil, nil, err
	}
	l := slog.New(ph)
	return l, func() {
		if err := ph.Flush(); err != nil {
			l.Warn("Failed to flush telemetry", "error", err)
		}
	}, nil
}

// openGraph loads the configuration and a graph saved at input. Offline
// commands use a plain in-memory graph; an empty input yields an empty
// graph.
func openGraph(ctx context.Context, input string) (*kgraph.KnowledgeGraph, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, flush, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	kg := kgraph.New(kgraph.ConfigFrom(cfg), log)
	if input != "" {
		if err := kg.Load(ctx, input); err != nil {
			flush()
			return nil, nil, nil, err
		}
	}
	return kg, log, flush, nil
}
