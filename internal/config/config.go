package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need from the environment.
type Config struct {
	// SpreadsheetID identifies the backing spreadsheet.
	SpreadsheetID string
	// ServiceAccountEmail and PrivateKey authenticate the Sheets client.
	ServiceAccountEmail string
	PrivateKey          string

	// Bucket, when set, enables archival of uploaded CSV exports to GCS.
	Bucket string

	// Port for the HTTP server.
	Port string
}

// Load reads configuration from the environment, loading a .env file first if
// one is present (missing .env is not an error).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SpreadsheetID:       os.Getenv("GOOGLE_SPREADSHEET_ID"),
		ServiceAccountEmail: os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
		// Private keys pasted into env vars usually arrive with literal \n.
		PrivateKey: strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n"),
		Bucket:     os.Getenv("GCS_BUCKET"),
		Port:       os.Getenv("PORT"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the store credentials are present.
func (c *Config) Validate() error {
	var missing []string
	if c.SpreadsheetID == "" {
		missing = append(missing, "GOOGLE_SPREADSHEET_ID")
	}
	if c.ServiceAccountEmail == "" {
		missing = append(missing, "GOOGLE_SERVICE_ACCOUNT_EMAIL")
	}
	if c.PrivateKey == "" {
		missing = append(missing, "GOOGLE_PRIVATE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
