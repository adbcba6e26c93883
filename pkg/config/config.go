package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Graph behaviour flags and limits
	Graph GraphConfig `mapstructure:"graph"`

	// Storage configuration for saved graphs and snapshots
	Storage StorageConfig `mapstructure:"storage"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// Neo4j export target
	Neo4j Neo4jConfig `mapstructure:"neo4j"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json, charm
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// GraphConfig holds the knowledge graph settings.
type GraphConfig struct {
	Name             string `mapstructure:"name"`
	EnableInference  bool   `mapstructure:"enable_inference"`
	EnableVersioning bool   `mapstructure:"enable_versioning"`
	EnableProvenance bool   `mapstructure:"enable_provenance"`
	CacheSize        int    `mapstructure:"cache_size"`
	InferenceDepth   int    `mapstructure:"inference_depth"`
	// OntologyFile optionally names a YAML ontology loaded at startup.
	OntologyFile string `mapstructure:"ontology_file"`
	Namespace    string `mapstructure:"namespace"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	// Path is the default JSON file used by save and load.
	Path string `mapstructure:"path"`
	// SnapshotDir is the Badger directory for named snapshots. Empty keeps
	// snapshots in memory.
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // hash, openai, embedeverything
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// Neo4jConfig holds the connection used by the Neo4j exporter
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	// ParquetPath is the directory for archived error records. Empty
	// disables archiving.
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Graph defaults
	viper.SetDefault("graph.name", "default")
	viper.SetDefault("graph.enable_inference", true)
	viper.SetDefault("graph.enable_versioning", true)
	viper.SetDefault("graph.enable_provenance", true)
	viper.SetDefault("graph.cache_size", 10000)
	viper.SetDefault("graph.inference_depth", 3)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "hash")
	viper.SetDefault("embedding.dimensions", 128)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	viper.SetDefault("alert.smtp_port", 587)

	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.database", "neo4j")

	// Storage defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("storage.path", filepath.Join(home, ".kgraph", "graph.json"))
		viper.SetDefault("storage.snapshot_dir", filepath.Join(home, ".kgraph", "snapshots"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.Embedding.APIKey == "" {
		config.Embedding.APIKey = apiKey
	}

	// Neo4j credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Neo4j.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Neo4j.Password = pass
	}

	if path := os.Getenv("KGRAPH_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
		config.Server.Port = viper.GetInt("server.port")
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
