package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shanehull/kabuscraper/internal/extract"
)

// DefaultConfigFile is picked up from the working directory when no -config is given.
const DefaultConfigFile = "kabuscraper.toml"

// Config represents the application configuration
type Config struct {
	Scrape  ScrapeConfig   `toml:"scrape"`
	Output  OutputConfig   `toml:"output"`
	Cache   CacheConfig    `toml:"cache"`
	Logging LoggingConfig  `toml:"logging"`
	Email   EmailConfig    `toml:"email"`
	Layout  extract.Layout `toml:"layout"`
}

type ScrapeConfig struct {
	BaseURL       string   `toml:"base_url" validate:"required,url"`
	From          int      `toml:"from" validate:"gte=0"`
	To            int      `toml:"to" validate:"gte=0"`
	Codes         []string `toml:"codes"` // Explicit codes, overrides from/to when set
	Workers       int      `toml:"workers" validate:"gte=1,lte=64"`
	RatePerSecond float64  `toml:"rate_per_second" validate:"gt=0"`
	Timeout       string   `toml:"timeout"` // e.g. "30s"
	RetryCount    int      `toml:"retry_count" validate:"gte=0,lte=10"`
	UserAgent     string   `toml:"user_agent" validate:"required"`
	ProgressEvery int      `toml:"progress_every" validate:"gte=1"`
}

type OutputConfig struct {
	Dir         string `toml:"dir" validate:"required"`
	ProfileFile string `toml:"profile_file" validate:"required"`
	HistoryFile string `toml:"history_file" validate:"required"`
	SkipFile    string `toml:"skip_file" validate:"required"`
	BOM         bool   `toml:"bom"` // Prefix tables with a UTF-8 byte order mark
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path" validate:"required_if=Enabled true"`
	TTL     string `toml:"ttl"` // e.g. "12h"; empty or "0" keeps pages forever
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
	File   string   `toml:"file"`
}

type EmailConfig struct {
	SMTPServer string `toml:"smtp_server"`
	SMTPPort   int    `toml:"smtp_port" validate:"gte=0,lte=65535"`
	SMTPUser   string `toml:"smtp_user"`
	SMTPPass   string `toml:"smtp_pass"`
	FromEmail  string `toml:"from_email" validate:"omitempty,email"`
	ToEmail    string `toml:"to_email" validate:"omitempty,email"`
}

// Enabled reports whether enough SMTP settings are present to send a summary.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.SMTPUser != "" && e.SMTPPass != "" && e.ToEmail != ""
}

func NewDefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			BaseURL:       "https://kabutan.jp",
			From:          1300,
			To:            9997,
			Workers:       4,
			RatePerSecond: 1,
			Timeout:       "30s",
			RetryCount:    2,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ProgressEvery: 100,
		},
		Output: OutputConfig{
			Dir:         "data",
			ProfileFile: "basic_info.csv",
			HistoryFile: "performance_trend.csv",
			SkipFile:    "skipped.json",
			BOM:         true,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".cache/kabuscraper",
			TTL:     "12h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
			File:   "logs/kabuscraper.log",
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		Layout: extract.DefaultLayout(),
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files. CLI flags are applied by the caller afterwards.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("KABU_BASE_URL"); v != "" {
		config.Scrape.BaseURL = v
	}
	if v := os.Getenv("KABU_FROM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scrape.From = n
		}
	}
	if v := os.Getenv("KABU_TO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scrape.To = n
		}
	}
	if v := os.Getenv("KABU_CODES"); v != "" {
		config.Scrape.Codes = ParseCodes(v)
	}
	if v := os.Getenv("KABU_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scrape.Workers = n
		}
	}
	if v := os.Getenv("KABU_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Scrape.RatePerSecond = f
		}
	}
	if v := os.Getenv("KABU_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	if v := os.Getenv("KABU_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Cache.Enabled = b
		}
	}
	if v := os.Getenv("KABU_CACHE_PATH"); v != "" {
		config.Cache.Path = v
	}
	if v := os.Getenv("KABU_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("KABU_SMTP_SERVER"); v != "" {
		config.Email.SMTPServer = v
	}
	if v := os.Getenv("KABU_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Email.SMTPPort = n
		}
	}
	if v := os.Getenv("KABU_SMTP_USER"); v != "" {
		config.Email.SMTPUser = v
	}
	if v := os.Getenv("KABU_SMTP_PASS"); v != "" {
		config.Email.SMTPPass = v
	}
	if v := os.Getenv("KABU_TO_EMAIL"); v != "" {
		config.Email.ToEmail = v
	}
	if v := os.Getenv("KABU_FROM_EMAIL"); v != "" {
		config.Email.FromEmail = v
	}
}

// Validate checks struct constraints plus the rules that span fields.
func (c *Config) Validate() error {
	var errs []error

	if err := validator.New().Struct(c); err != nil {
		errs = append(errs, err)
	}
	if len(c.Scrape.Codes) == 0 && c.Scrape.From > c.Scrape.To {
		errs = append(errs, fmt.Errorf("scrape.from (%d) must not exceed scrape.to (%d)", c.Scrape.From, c.Scrape.To))
	}
	if d, err := time.ParseDuration(c.Scrape.Timeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("scrape.timeout %q must be a positive duration", c.Scrape.Timeout))
	}
	if c.Cache.TTL != "" {
		if d, err := time.ParseDuration(c.Cache.TTL); err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("cache.ttl %q must be a non-negative duration", c.Cache.TTL))
		}
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// TimeoutDuration returns the per-request timeout, falling back to 30s.
func (s ScrapeConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// TTLDuration returns the cache TTL; zero means entries never expire.
func (c CacheConfig) TTLDuration() time.Duration {
	if c.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ParseCodes splits a comma separated code list, upper-casing each code and
// dropping blanks. Both KABU_CODES and --codes go through it.
func ParseCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
