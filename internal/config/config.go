package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backoffice holds all configuration for the admin server and the
// shop-item importer.
type Backoffice struct {
	// HTTP API
	BindAddress    string   `yaml:"bind_address"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Game data sheets. The importer reads
	// <share_root>/shopitems/<language>/{StrSheet_Item,ItemData,ItemConversion}.
	ShareRoot string `yaml:"share_root"`

	// Importer
	ImportWorkers int `yaml:"import_workers"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Benefit catalog, keyed by locale.
	Benefits map[string][]BenefitEntry `yaml:"benefits"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// BenefitEntry describes one grantable benefit for a locale.
type BenefitEntry struct {
	ID          int32  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// DefaultBackoffice returns Backoffice config with sensible defaults.
func DefaultBackoffice() Backoffice {
	return Backoffice{
		BindAddress:    "0.0.0.0",
		Port:           8083,
		AllowedOrigins: []string{"http://localhost:*"},
		ShareRoot:      "share",
		ImportWorkers:  8,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "backoffice",
			Password: "backoffice",
			DBName:   "backoffice",
			SSLMode:  "disable",
		},
		Benefits: map[string][]BenefitEntry{
			"eng": {
				{ID: 333, Name: "TERA Club", Description: "Monthly subscription benefits"},
				{ID: 533, Name: "Founder", Description: "Founder reward package"},
			},
		},
	}
}

// LoadBackoffice loads back-office config from a YAML file, then applies
// environment overrides. If the file doesn't exist, returns defaults.
func LoadBackoffice(path string) (Backoffice, error) {
	cfg := DefaultBackoffice()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides database parameters from the environment. These
// variable names are the deployment contract of the hosting scripts.
func (c *Backoffice) applyEnv() {
	if v := os.Getenv("DB_DATABASE"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("DB_USERNAME"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
}
