// Package config loads dish-catalog settings from config.yaml and
// DISHSYNC_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/dish-catalog/internal/classify"
	"github.com/sells-group/dish-catalog/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Media      MediaConfig      `yaml:"media" mapstructure:"media"`
	Sheets     SheetsConfig     `yaml:"sheets" mapstructure:"sheets"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Prune      PruneConfig      `yaml:"prune" mapstructure:"prune"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MediaConfig holds media store credentials and listing settings.
type MediaConfig struct {
	CloudName  string `yaml:"cloud_name" mapstructure:"cloud_name"`
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	APISecret  string `yaml:"api_secret" mapstructure:"api_secret"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Prefix     string `yaml:"prefix" mapstructure:"prefix"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
	// RequestsPerSecond throttles Admin API calls. Zero disables throttling.
	RequestsPerSecond float64     `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Retry             RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig tunes retries of remote reads.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
}

// Policy converts the settings into a resilience policy.
func (r RetryConfig) Policy() resilience.RetryConfig {
	return resilience.FromSettings(r.MaxAttempts, r.InitialBackoff, r.MaxBackoff)
}

// SheetsConfig locates the dish metadata spreadsheet. File, when set, reads
// a local CSV or XLSX export instead of calling the API.
type SheetsConfig struct {
	SpreadsheetID   string      `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	Range           string      `yaml:"range" mapstructure:"range"`
	FolderID        string      `yaml:"folder_id" mapstructure:"folder_id"`
	CredentialsFile string      `yaml:"credentials_file" mapstructure:"credentials_file"`
	APIKey          string      `yaml:"api_key" mapstructure:"api_key"`
	Endpoint        string      `yaml:"endpoint" mapstructure:"endpoint"`
	File            string      `yaml:"file" mapstructure:"file"`
	SheetName       string      `yaml:"sheet_name" mapstructure:"sheet_name"`
	Retry           RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ClassifierConfig selects and tunes the classification rules.
type ClassifierConfig struct {
	Preset         string   `yaml:"preset" mapstructure:"preset"`
	RulesFile      string   `yaml:"rules_file" mapstructure:"rules_file"`
	ExtraKeywords  []string `yaml:"extra_keywords" mapstructure:"extra_keywords"`
	MinDimension   int      `yaml:"min_dimension" mapstructure:"min_dimension"`
	SquareMaxBytes int64    `yaml:"square_max_bytes" mapstructure:"square_max_bytes"`
	MinAspect      float64  `yaml:"min_aspect" mapstructure:"min_aspect"`
	MaxAspect      float64  `yaml:"max_aspect" mapstructure:"max_aspect"`
}

// Rules resolves the preset, then the rules file, then the overrides.
func (c ClassifierConfig) Rules() (classify.Rules, error) {
	rules, err := classify.Preset(c.Preset)
	if err != nil {
		return classify.Rules{}, &ConfigError{Field: "classifier.preset", Reason: err.Error()}
	}
	if c.RulesFile != "" {
		if rules, err = classify.LoadRules(c.RulesFile, rules); err != nil {
			return classify.Rules{}, err
		}
	}
	rules = rules.WithOverrides(classify.Overrides{
		ExtraKeywords:  c.ExtraKeywords,
		MinDimension:   c.MinDimension,
		SquareMaxBytes: c.SquareMaxBytes,
		MinAspect:      c.MinAspect,
		MaxAspect:      c.MaxAspect,
	})
	if err := rules.Validate(); err != nil {
		return classify.Rules{}, &ConfigError{Field: "classifier", Reason: err.Error()}
	}
	return rules, nil
}

// MatchConfig configures spreadsheet row matching. Aliases map a dish name
// to the canonical name used in the media store.
type MatchConfig struct {
	Aliases map[string]string `yaml:"aliases" mapstructure:"aliases"`
}

// CatalogConfig names the generated artifacts.
type CatalogConfig struct {
	SourceFile string `yaml:"source_file" mapstructure:"source_file"`
	Identifier string `yaml:"identifier" mapstructure:"identifier"`
	DataFile   string `yaml:"data_file" mapstructure:"data_file"`
}

// PruneConfig configures bulk deletion.
type PruneConfig struct {
	BatchSize int           `yaml:"batch_size" mapstructure:"batch_size"`
	Delay     time.Duration `yaml:"delay" mapstructure:"delay"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MonitoringConfig configures run health alerting.
type MonitoringConfig struct {
	WebhookURL           string        `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64       `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	ErrorThreshold       int           `yaml:"error_threshold" mapstructure:"error_threshold"`
	StaleAfter           time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
	LookbackWindowHours  int           `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	CheckIntervalSecs    int           `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISHSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "dish-catalog.db")
	v.SetDefault("media.cloud_name", "")
	v.SetDefault("media.api_key", "")
	v.SetDefault("media.api_secret", "")
	v.SetDefault("media.base_url", "https://api.cloudinary.com/v1_1")
	v.SetDefault("media.prefix", "")
	v.SetDefault("media.max_results", 500)
	v.SetDefault("media.requests_per_second", 2)
	v.SetDefault("media.retry.max_attempts", 3)
	v.SetDefault("media.retry.initial_backoff", "500ms")
	v.SetDefault("media.retry.max_backoff", "30s")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.range", "A:Z")
	v.SetDefault("sheets.folder_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.api_key", "")
	v.SetDefault("sheets.endpoint", "")
	v.SetDefault("sheets.file", "")
	v.SetDefault("sheets.sheet_name", "")
	v.SetDefault("sheets.retry.max_attempts", 3)
	v.SetDefault("sheets.retry.initial_backoff", "500ms")
	v.SetDefault("sheets.retry.max_backoff", "30s")
	v.SetDefault("classifier.preset", classify.PresetDefault)
	v.SetDefault("classifier.rules_file", "")
	v.SetDefault("catalog.source_file", "")
	v.SetDefault("catalog.identifier", "dishImages")
	v.SetDefault("catalog.data_file", "")
	v.SetDefault("prune.batch_size", 100)
	v.SetDefault("prune.delay", "250ms")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)
	v.SetDefault("monitoring.error_threshold", 50)
	v.SetDefault("monitoring.stale_after", "2h")
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
