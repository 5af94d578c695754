package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
)

// Config holds all configuration for yardsketch-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Generative AI service configuration
	AI AIConfig `yaml:"ai"`

	// Object storage configuration
	Storage StorageConfig `yaml:"storage"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT tokens are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// Issuer is the accepted token issuer.
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:""`

	// JWKSURL is the JWKS endpoint used to verify token signatures.
	JWKSURL string `yaml:"jwks_url" env:"AUTH_JWKS_URL" env-default:""`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"yardsketch"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"yardsketch_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// AIConfig holds generative service configuration. The service exposes two
// capabilities: chat-style completion (optionally with an image reference)
// and standalone image generation.
type AIConfig struct {
	Endpoint    string `yaml:"endpoint" env:"OPENAI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	APIKey      string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
	TextModel   string `yaml:"text_model" env:"AI_TEXT_MODEL" env-default:"gpt-4"`
	VisionModel string `yaml:"vision_model" env:"AI_VISION_MODEL" env-default:"gpt-4o"`
	ImageModel  string `yaml:"image_model" env:"AI_IMAGE_MODEL" env-default:"dall-e-3"`
	ImageCount  int    `yaml:"image_count" env:"AI_IMAGE_COUNT" env-default:"3"`
}

// Validate returns a ConfigurationError if required AI settings are absent.
func (c *AIConfig) Validate() error {
	if c.APIKey == "" {
		return &apperrors.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	if c.Endpoint == "" {
		return &apperrors.ConfigurationError{Setting: "OPENAI_ENDPOINT"}
	}
	return nil
}

// StorageConfig holds S3-compatible object storage configuration.
type StorageConfig struct {
	Bucket    string `yaml:"bucket" env:"STORAGE_BUCKET" env-default:""`
	Region    string `yaml:"region" env:"STORAGE_REGION" env-default:"us-east-1"`
	Endpoint  string `yaml:"endpoint" env:"STORAGE_ENDPOINT" env-default:""` // Empty for AWS S3
	AccessKey string `yaml:"-" env:"STORAGE_ACCESS_KEY"`                     // Secret - not in YAML
	SecretKey string `yaml:"-" env:"STORAGE_SECRET_KEY"`                     // Secret - not in YAML
	// PublicBaseURL overrides the derived object URL prefix, for stores
	// fronted by a CDN. Empty derives the standard S3 URL.
	PublicBaseURL string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL" env-default:""`
}

// Validate returns a ConfigurationError if required storage settings are absent.
func (c *StorageConfig) Validate() error {
	if c.Bucket == "" {
		return &apperrors.ConfigurationError{Setting: "STORAGE_BUCKET"}
	}
	return nil
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
