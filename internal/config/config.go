package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the game daemon.
type Server struct {
	LogLevel string `yaml:"log_level"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Admin account ensured at boot. The in-game admin address is derived
	// from the login.
	AdminLogin    string `yaml:"admin_login"`
	AdminPassword string `yaml:"admin_password"`

	// Treasury account login; its derived address receives mint fees and
	// market tax.
	FederationLogin string `yaml:"federation_login"`

	// Economy parameters applied on first boot (afterwards the persisted
	// registry values win and the admin tunes them in-game).
	SalesTax       int32 `yaml:"sales_tax"`        // percent
	StartingCred   int64 `yaml:"starting_cred"`    // CRED per minted clone
	BasePriceCents int64 `yaml:"base_price_cents"` // fiat cents per base token

	// Autosave
	AutosaveInterval time.Duration `yaml:"autosave_interval"`

	// Skill catalog seed file, applied when the catalog is empty.
	SkillsFile string `yaml:"skills_file"`
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

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:         "info",
		AdminLogin:       "admin",
		AdminPassword:    "admin",
		FederationLogin:  "federation",
		SalesTax:         5,
		StartingCred:     10000,
		BasePriceCents:   2000,
		AutosaveInterval: 5 * time.Minute,
		SkillsFile:       "data/skills.yaml",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "starseekers",
			Password: "starseekers",
			DBName:   "starseekers",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads game daemon config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
