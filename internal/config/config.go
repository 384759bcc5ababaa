package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Training  TrainingConfig  `yaml:"training"`
	Docstore  DocstoreConfig  `yaml:"docstore"`

	location *time.Location
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

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// TrainingConfig holds defaults for load calculations.
type TrainingConfig struct {
	DefaultBodyweightKg float64 `yaml:"default_bodyweight_kg"`
	Timezone            string  `yaml:"timezone"`
}

// DocstoreConfig points at the Firestore project logs are imported from.
type DocstoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	LogsCollection  string `yaml:"logs_collection"`
	UsersCollection string `yaml:"users_collection"`
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

// Location returns the timezone used for week boundaries and chart labels.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix CARGA_ and underscore-separated paths:
//
//	CARGA_SERVER_HOST, CARGA_SERVER_PORT,
//	CARGA_DB_HOST, CARGA_DB_PORT, CARGA_DB_NAME,
//	CARGA_DB_USER, CARGA_DB_PASSWORD, CARGA_DB_SSLMODE,
//	CARGA_AUTH_API_KEY, CARGA_TS_ENABLED, CARGA_TS_HOSTNAME,
//	CARGA_DEFAULT_BODYWEIGHT_KG, CARGA_TIMEZONE,
//	CARGA_FIRESTORE_PROJECT, CARGA_FIRESTORE_CREDENTIALS
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Tailscale: TailscaleConfig{Hostname: "carga", StateDir: "tsnet-state"},
		Training: TrainingConfig{
			DefaultBodyweightKg: 70,
			Timezone:            "UTC",
		},
		Docstore: DocstoreConfig{
			LogsCollection:  "logs",
			UsersCollection: "usuarios",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CARGA_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CARGA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CARGA_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("CARGA_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("CARGA_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("CARGA_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("CARGA_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CARGA_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("CARGA_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("CARGA_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("CARGA_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("CARGA_DEFAULT_BODYWEIGHT_KG"); v != "" {
		if kg, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Training.DefaultBodyweightKg = kg
		}
	}
	if v := os.Getenv("CARGA_TIMEZONE"); v != "" {
		cfg.Training.Timezone = v
	}
	if v := os.Getenv("CARGA_FIRESTORE_PROJECT"); v != "" {
		cfg.Docstore.ProjectID = v
	}
	if v := os.Getenv("CARGA_FIRESTORE_CREDENTIALS"); v != "" {
		cfg.Docstore.CredentialsFile = v
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
	if kg := c.Training.DefaultBodyweightKg; !(kg > 0) || math.IsInf(kg, 0) {
		return fmt.Errorf("training.default_bodyweight_kg must be positive")
	}
	loc, err := time.LoadLocation(c.Training.Timezone)
	if err != nil {
		return fmt.Errorf("training.timezone: %w", err)
	}
	c.location = loc
	return nil
}
