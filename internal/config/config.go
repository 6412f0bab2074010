package config

import (
	"fmt"
	"os"
	"time"

	"grape-monitor/internal/gemini"
	"grape-monitor/internal/llm"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is set
const DefaultPath = "configs/config.yml"

// Config holds application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Multiple providers configuration
	Providers []llm.ProviderConfig `yaml:"providers"`

	// Single provider config, used when no providers are listed
	Gemini struct {
		APIKey     string        `yaml:"api_key"`
		ModelName  string        `yaml:"model_name"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		JSONMode   bool          `yaml:"json_mode"`
	} `yaml:"gemini"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Uploads struct {
		Dir      string `yaml:"dir"`
		MaxBytes int64  `yaml:"max_bytes"`
	} `yaml:"uploads"`

	Weather struct {
		APIKey  string        `yaml:"api_key"`
		City    string        `yaml:"city"`
		Country string        `yaml:"country"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"weather"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`
}

// ResolvePath picks the config file: flag value, then CONFIG_PATH, then
// DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return DefaultPath
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	// Expand environment variables in secrets
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)
	config.Weather.APIKey = os.ExpandEnv(config.Weather.APIKey)
	config.Auth.JWTSecret = os.ExpandEnv(config.Auth.JWTSecret)

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}

	if c.Gemini.ModelName == "" {
		c.Gemini.ModelName = "gemini-1.5-flash"
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 3
	}

	if c.Database.Path == "" {
		c.Database.Path = "./data/grape_monitor.db"
	}

	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "./data/uploads"
	}

	if c.Weather.City == "" {
		c.Weather.City = "Izmir"
	}
	if c.Weather.Country == "" {
		c.Weather.Country = "TR"
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	if c.MaxFailuresBeforeSwitch == 0 {
		c.MaxFailuresBeforeSwitch = 3
	}
}

// GeminiConfig is the single-provider fallback client config
func (c *Config) GeminiConfig() gemini.Config {
	return gemini.Config{
		APIKey:     c.Gemini.APIKey,
		ModelName:  c.Gemini.ModelName,
		MaxRetries: c.Gemini.MaxRetries,
		RetryDelay: c.Gemini.RetryDelay,
		JSONMode:   c.Gemini.JSONMode,
	}
}
