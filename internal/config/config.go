package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Parser    ParserConfig    `yaml:"parser"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// OracleConfig configures the text-generation and embedding oracle.
type OracleConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	FastModel      string `yaml:"fast_model"`
	EmbedModel     string `yaml:"embed_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// ParserConfig holds the empirically tuned pipeline knobs. The similarity
// thresholds are product decisions, so they live in config rather than in
// code.
type ParserConfig struct {
	ConfidenceCutoff    float64 `yaml:"confidence_cutoff"`
	FuzzyThreshold      float64 `yaml:"fuzzy_threshold"`
	SemanticThreshold   float64 `yaml:"semantic_threshold"`
	MaxRepairIterations int     `yaml:"max_repair_iterations"`
	ResolveConcurrency  int     `yaml:"resolve_concurrency"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTSCRIBE_ and underscore-separated
// paths:
//
//	LIFTSCRIBE_SERVER_HOST, LIFTSCRIBE_SERVER_PORT,
//	LIFTSCRIBE_DB_HOST, LIFTSCRIBE_DB_PORT, LIFTSCRIBE_DB_NAME,
//	LIFTSCRIBE_DB_USER, LIFTSCRIBE_DB_PASSWORD, LIFTSCRIBE_DB_SSLMODE,
//	LIFTSCRIBE_AUTH_API_KEY,
//	LIFTSCRIBE_ORACLE_BASE_URL, LIFTSCRIBE_ORACLE_API_KEY,
//	LIFTSCRIBE_ORACLE_MODEL, LIFTSCRIBE_ORACLE_FAST_MODEL,
//	LIFTSCRIBE_ORACLE_EMBED_MODEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTSCRIBE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTSCRIBE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTSCRIBE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTSCRIBE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTSCRIBE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTSCRIBE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTSCRIBE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTSCRIBE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTSCRIBE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTSCRIBE_ORACLE_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := os.Getenv("LIFTSCRIBE_ORACLE_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := os.Getenv("LIFTSCRIBE_ORACLE_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}
	if v := os.Getenv("LIFTSCRIBE_ORACLE_FAST_MODEL"); v != "" {
		cfg.Oracle.FastModel = v
	}
	if v := os.Getenv("LIFTSCRIBE_ORACLE_EMBED_MODEL"); v != "" {
		cfg.Oracle.EmbedModel = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Oracle.BaseURL == "" {
		cfg.Oracle.BaseURL = "https://api.openai.com"
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "gpt-4o"
	}
	if cfg.Oracle.FastModel == "" {
		cfg.Oracle.FastModel = "gpt-4o-mini"
	}
	if cfg.Oracle.EmbedModel == "" {
		cfg.Oracle.EmbedModel = "text-embedding-3-small"
	}
	if cfg.Oracle.TimeoutSeconds <= 0 {
		cfg.Oracle.TimeoutSeconds = 120
	}
	if cfg.Oracle.MaxRetries <= 0 {
		cfg.Oracle.MaxRetries = 3
	}
	if cfg.Parser.ConfidenceCutoff <= 0 {
		cfg.Parser.ConfidenceCutoff = 0.6
	}
	if cfg.Parser.FuzzyThreshold <= 0 {
		cfg.Parser.FuzzyThreshold = 0.3
	}
	if cfg.Parser.SemanticThreshold <= 0 {
		cfg.Parser.SemanticThreshold = 0.5
	}
	if cfg.Parser.MaxRepairIterations <= 0 {
		cfg.Parser.MaxRepairIterations = 3
	}
	if cfg.Parser.ResolveConcurrency <= 0 {
		cfg.Parser.ResolveConcurrency = 4
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("oracle.api_key is required")
	}
	return nil
}
