package kgraph

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/server"
)

const shutdownTimeout = 30 * time.Second

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the kgraph HTTP server",
		Long: `Start the kgraph HTTP server to provide REST API access to the knowledge graph.

The server provides endpoints for:
- Node, edge and triple management
- Pattern queries, path search and traversal
- Inference, validation and analytics
- Snapshots, import and export
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
		RunE: runServer,
	}

	cmd.Flags().String("host", "localhost", "Server host")
	cmd.Flags().Int("port", 8080, "Server port")
	cmd.Flags().String("mode", "debug", "Server mode (debug, release, test)")

	cmd.Flags().String("storage-path", "", "JSON file loaded at startup and used by save")
	cmd.Flags().String("snapshot-dir", "", "Badger directory for persisted snapshots")
	cmd.Flags().String("ontology", "", "YAML ontology file")

	cmd.Flags().String("embedding-provider", "hash", "Embedding provider (hash, openai, embedeverything)")
	cmd.Flags().String("embedding-model", "", "Embedding model")
	cmd.Flags().String("embedding-api-key", "", "Embedding API key")
	cmd.Flags().String("embedding-base-url", "", "Embedding base URL")

	cmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, flush, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	kg, err := kgraph.NewFromConfig(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize graph: %w", err)
	}
	defer kg.Close()

	if cfg.Storage.Path != "" {
		if _, err := os.Stat(cfg.Storage.Path); err == nil {
			if err := kg.Load(ctx, ""); err != nil {
				return err
			}
			log.Info("Loaded graph", "path", cfg.Storage.Path, "nodes", kg.NodeCount(), "edges", kg.EdgeCount())
		}
	}

	srv := server.New(cfg, kg, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Start()
	}()

	select {
	case err := <-serverErrChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("mode") {
		cfg.Server.Mode, _ = flags.GetString("mode")
	}

	if flags.Changed("storage-path") {
		cfg.Storage.Path, _ = flags.GetString("storage-path")
	}
	if flags.Changed("snapshot-dir") {
		cfg.Storage.SnapshotDir, _ = flags.GetString("snapshot-dir")
	}
	if flags.Changed("ontology") {
		cfg.Graph.OntologyFile, _ = flags.GetString("ontology")
	}

	if flags.Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = flags.GetString("embedding-provider")
	}
	if flags.Changed("embedding-model") {
		cfg.Embedding.Model, _ = flags.GetString("embedding-model")
	}
	if flags.Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = flags.GetString("embedding-api-key")
	}
	if flags.Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = flags.GetString("embedding-base-url")
	}

	if flags.Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = flags.GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Graph.InferenceDepth < 0 {
		return fmt.Errorf("invalid inference depth: %d", cfg.Graph.InferenceDepth)
	}
	return nil
}
