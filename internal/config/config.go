package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Campaign CampaignConfig `yaml:"campaign"`
	SMTPTest SMTPTestConfig `yaml:"smtp_test"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// StorageConfig selects and configures the key-value persistence backend.
type StorageConfig struct {
	Type          string `yaml:"type"` // memory, local, sqlite, postgres, redis, s3, dynamodb
	KeyPrefix     string `yaml:"key_prefix"`
	LocalPath     string `yaml:"local_path"`
	SQLitePath    string `yaml:"sqlite_path"`
	DatabaseURL   string `yaml:"database_url"`
	RedisURL      string `yaml:"redis_url"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3Prefix      string `yaml:"s3_prefix"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	AWSAccessKey  string `yaml:"aws_access_key"`
	AWSSecretKey  string `yaml:"aws_secret_key"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return "" // Use default credential chain (IAM role)
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// CampaignConfig holds the simulated dispatch parameters
type CampaignConfig struct {
	BaseLatencyMS int     `yaml:"base_latency_ms"`
	JitterMS      int     `yaml:"jitter_ms"`
	FailureRate   float64 `yaml:"failure_rate"`
	LogCap        int     `yaml:"log_cap"`
	LockTTLSecs   int     `yaml:"lock_ttl_seconds"`
}

// BaseLatency returns the fixed part of the simulated dispatch delay
func (c CampaignConfig) BaseLatency() time.Duration {
	return time.Duration(c.BaseLatencyMS) * time.Millisecond
}

// Jitter returns the random part of the simulated dispatch delay
func (c CampaignConfig) Jitter() time.Duration {
	return time.Duration(c.JitterMS) * time.Millisecond
}

// LockTTL returns how long a run lock survives without release
func (c CampaignConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSecs) * time.Second
}

// SMTPTestConfig holds the simulated connection test settings
type SMTPTestConfig struct {
	DelayMS int `yaml:"delay_ms"`
}

// Delay returns the simulated handshake delay
func (c SMTPTestConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// AIConfig holds the assistant backend configuration
type AIConfig struct {
	Provider       string `yaml:"provider"` // gemini, openai, bedrock
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	Region         string `yaml:"region"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AuthConfig holds the login flag configuration
type AuthConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"` // bcrypt; wins over Password when set
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII bool   `yaml:"redact_pii"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Logging: LoggingConfig{RedactPII: true}, Auth: AuthConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{Logging: LoggingConfig{RedactPII: true}, Auth: AuthConfig{Enabled: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "mailflow_"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "./data/mailflow.db"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-west-2"
	}
	if cfg.Campaign.BaseLatencyMS == 0 {
		cfg.Campaign.BaseLatencyMS = 800
	}
	if cfg.Campaign.JitterMS == 0 {
		cfg.Campaign.JitterMS = 1000
	}
	if cfg.Campaign.FailureRate == 0 {
		cfg.Campaign.FailureRate = 0.1
	}
	if cfg.Campaign.LogCap == 0 {
		cfg.Campaign.LogCap = 1000
	}
	if cfg.Campaign.LockTTLSecs == 0 {
		cfg.Campaign.LockTTLSecs = 3600
	}
	if cfg.SMTPTest.DelayMS == 0 {
		cfg.SMTPTest.DelayMS = 2000
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case "openai":
			cfg.AI.Model = "gpt-4o"
		case "bedrock":
			cfg.AI.Model = "anthropic.claude-3-sonnet-20240229-v1:0"
		default:
			cfg.AI.Model = "gemini-2.5-flash"
		}
	}
	if cfg.AI.Region == "" {
		cfg.AI.Region = "us-east-1"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Auth.Password == "" && cfg.Auth.PasswordHash == "" {
		cfg.Auth.Password = "admin123"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in containers.
// A missing config file is not an error here; defaults are used instead.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MAILFLOW_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = strings.ToLower(v)
	}
	if v := os.Getenv("MAILFLOW_DATA_DIR"); v != "" {
		cfg.Storage.LocalPath = v
	}
	// Database override (critical for container deployment where config.yaml has local defaults)
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("MAILFLOW_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
	if v := os.Getenv("MAILFLOW_DYNAMODB_TABLE"); v != "" {
		cfg.Storage.DynamoDBTable = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Storage.AWSRegion = v
	}

	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = strings.ToLower(v)
	}
	switch cfg.AI.Provider {
	case "gemini":
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		} else if v := os.Getenv("API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}

	if v := os.Getenv("AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
		cfg.Auth.PasswordHash = ""
	}
	if v := os.Getenv("AUTH_PASSWORD_HASH"); v != "" {
		cfg.Auth.PasswordHash = v
	}
	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.Enabled = enabled
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
