package main

import (
	"log/slog"
	"os"

	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/logger"
)

func main() {
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("kgraph logger demo")
	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Saved graph to disk - green!", "path", "~/.kgraph/graph.json")
	log.Info("Snapshot created - also green!", "id", "3f2a", "nodes", 42)
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log = log.With("component", "store").WithGroup("graph")
	log.Info("Grouped attributes", "nodes", 12, "edges", 30)

	for _, format := range []string{logger.FormatJSON, logger.FormatCharm} {
		l := logger.New(config.LogConfig{Level: "debug", Format: format}, os.Stderr)
		l.Info("Same record through another handler", "format", format)
	}
}
