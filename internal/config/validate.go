package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalid is wrapped by every ConfigError.
var ErrInvalid = eris.New("config: invalid")

// ConfigError reports missing or invalid settings. It is raised before any
// remote call is made.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalid
}

func missing(fields ...string) error {
	return &ConfigError{Field: strings.Join(fields, ", "), Reason: "is required"}
}

// ValidateMedia checks media store credentials.
func (c *Config) ValidateMedia() error {
	var absent []string
	if c.Media.CloudName == "" {
		absent = append(absent, "media.cloud_name")
	}
	if c.Media.APIKey == "" {
		absent = append(absent, "media.api_key")
	}
	if c.Media.APISecret == "" {
		absent = append(absent, "media.api_secret")
	}
	if len(absent) > 0 {
		return missing(absent...)
	}
	if c.Media.MaxResults < 0 {
		return &ConfigError{Field: "media.max_results", Reason: "must not be negative"}
	}
	return nil
}

// ValidateSheets checks that a spreadsheet can be located and read. A local
// export needs no credentials.
func (c *Config) ValidateSheets() error {
	s := c.Sheets
	if s.File != "" {
		return nil
	}
	if s.SpreadsheetID == "" && s.FolderID == "" {
		return missing("sheets.spreadsheet_id or sheets.folder_id")
	}
	if s.CredentialsFile == "" && s.APIKey == "" && s.Endpoint == "" {
		return missing("sheets.credentials_file or sheets.api_key")
	}
	if s.FolderID != "" && s.SpreadsheetID == "" && s.CredentialsFile == "" && s.Endpoint == "" {
		return &ConfigError{Field: "sheets.folder_id", Reason: "requires sheets.credentials_file"}
	}
	return nil
}

// ValidatePrune checks media credentials and batching settings.
func (c *Config) ValidatePrune() error {
	if err := c.ValidateMedia(); err != nil {
		return err
	}
	if c.Prune.BatchSize < 1 || c.Prune.BatchSize > 100 {
		return &ConfigError{Field: "prune.batch_size", Reason: fmt.Sprintf("must be between 1 and 100, got %d", c.Prune.BatchSize)}
	}
	if c.Prune.Delay < 0 {
		return &ConfigError{Field: "prune.delay", Reason: "must not be negative"}
	}
	return nil
}

// ValidateStore checks the database settings.
func (c *Config) ValidateStore() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return &ConfigError{Field: "store.driver", Reason: fmt.Sprintf("must be sqlite or postgres, got %q", c.Store.Driver)}
	}
	if c.Store.DatabaseURL == "" {
		return missing("store.database_url")
	}
	return nil
}
