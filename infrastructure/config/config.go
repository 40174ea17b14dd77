package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Store backends selectable via GRAPH_STORE.
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// TraversalConfig holds the safety bounds for graph traversal
type TraversalConfig struct {
	// MaxDepth is the deepest BFS level still included in results
	MaxDepth int `yaml:"max_depth"`
	// MaxVisited is the maximum number of reachable nodes per traversal
	MaxVisited int `yaml:"max_visited"`
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Graph store selection
	GraphStore string `yaml:"graph_store"`

	// AWS configuration (dynamodb backend)
	AWSRegion       string `yaml:"aws_region"`
	DynamoDBTable   string `yaml:"dynamodb_table"`
	SourceIndexName string `yaml:"source_index_name"` // GSI - edge lookups by source node
	TargetIndexName string `yaml:"target_index_name"` // GSI - reverse edge lookups by target node

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`

	// TracingEndpoint is the OTLP gRPC collector address
	TracingEndpoint string `yaml:"tracing_endpoint"`

	// ConfigFile is an optional YAML overlay; when set it is also watched
	// for changes so traversal bounds can be tuned without a restart
	ConfigFile string `yaml:"-"`

	// Traversal bounds
	Traversal TraversalConfig `yaml:"traversal"`
}

// LoadConfig loads configuration from environment variables, then applies
// the optional YAML overlay named by CONFIG_FILE.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		GraphStore: getEnv("GRAPH_STORE", StoreMemory),

		AWSRegion:       getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:   getEnv("TABLE_NAME", "graphnav"),
		SourceIndexName: getEnv("SOURCE_INDEX_NAME", "SourceIndex"),
		TargetIndexName: getEnv("TARGET_INDEX_NAME", "TargetIndex"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),

		ConfigFile: getEnv("CONFIG_FILE", ""),

		Traversal: TraversalConfig{
			MaxDepth:   getEnvInt("TRAVERSAL_MAX_DEPTH", 100),
			MaxVisited: getEnvInt("TRAVERSAL_MAX_VISITED", 100000),
		},
	}

	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays values from a YAML file onto the config
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.GraphStore {
	case StoreMemory, StoreDynamoDB:
	default:
		return fmt.Errorf("unknown graph store backend %q", c.GraphStore)
	}

	if c.GraphStore == StoreDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("TABLE_NAME is required for the dynamodb store")
	}

	if c.Traversal.MaxDepth <= 0 {
		return fmt.Errorf("TRAVERSAL_MAX_DEPTH must be positive")
	}
	if c.Traversal.MaxVisited <= 0 {
		return fmt.Errorf("TRAVERSAL_MAX_VISITED must be positive")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
