package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shanehull/kabuscraper/internal/common"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type flags struct {
	configFiles []string
	from        int
	to          int
	codes       string
	out         string
	workers     int
	rate        float64
	cache       bool
	logLevel    string

	smtpServer string
	smtpPort   int
	smtpUser   string
	smtpPass   string
	toEmail    string
	fromEmail  string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&flags{})
}

func newRootCmd(f *flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kabuscraper",
		Short: "Scrape kabutan.jp snapshot pages into profile and results tables",
		Long: `kabuscraper walks a range of Tokyo Stock Exchange codes, fetches each instrument's
kabutan.jp snapshot page and writes two CSV tables: one profile row per instrument and
the periodic results history.`,
		Example: `  kabuscraper
  kabuscraper --from 7200 --to 7299 -o out
  kabuscraper --codes 7203,6758 --log-level debug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, configFiles, err := loadConfig(cmd, f)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}

			runID := uuid.NewString()
			logger := common.SetupLogger(config).WithCorrelationId(runID)

			logger.Debug().
				Strs("config_files", configFiles).
				Str("base_url", config.Scrape.BaseURL).
				Int("workers", config.Scrape.Workers).
				Str("rate", fmt.Sprintf("%.2f/s", config.Scrape.RatePerSecond)).
				Str("output_dir", config.Output.Dir).
				Bool("cache_enabled", config.Cache.Enabled).
				Bool("email_enabled", config.Email.Enabled()).
				Str("log_level", config.Logging.Level).
				Msg("Resolved configuration (sanitized)")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, config, logger, runID, cmd.OutOrStdout()); err != nil {
				logger.Error().Err(err).Msg("Scrape run failed")
				return err
			}
			return nil
		},
	}

	fs := rootCmd.Flags()
	fs.StringSliceVarP(&f.configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	fs.IntVar(&f.from, "from", 0, "First instrument code of the range (inclusive)")
	fs.IntVar(&f.to, "to", 0, "Last instrument code of the range (inclusive)")
	fs.StringVar(&f.codes, "codes", "", "Comma-separated list of codes, overrides --from/--to")
	fs.StringVarP(&f.out, "out", "o", "", "Output directory")
	fs.IntVar(&f.workers, "workers", 0, "Number of concurrent workers")
	fs.Float64Var(&f.rate, "rate", 0, "Maximum requests per second")
	fs.BoolVar(&f.cache, "cache", false, "Cache fetched page text on disk")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	fs.StringVar(&f.smtpServer, "smtp-server", "", "SMTP server address")
	fs.IntVar(&f.smtpPort, "smtp-port", 0, "SMTP server port")
	fs.StringVar(&f.smtpUser, "smtp-user", "", "SMTP username (email address)")
	fs.StringVar(&f.smtpPass, "smtp-pass", "", "SMTP password or App Password")
	fs.StringVar(&f.toEmail, "to-email", "", "Recipient email address for the run summary")
	fs.StringVar(&f.fromEmail, "from-email", "", "Sender email address (default: smtp-user)")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kabuscraper version %s\n", version)
		},
	}
}

// loadConfig resolves defaults -> config files -> .env -> environment -> flags and
// validates the result.
func loadConfig(cmd *cobra.Command, f *flags) (*common.Config, []string, error) {
	configFiles := f.configFiles
	if len(configFiles) == 0 {
		if _, err := os.Stat(common.DefaultConfigFile); err == nil {
			configFiles = append(configFiles, common.DefaultConfigFile)
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		return nil, configFiles, err
	}

	applyFlagOverrides(cmd, f, config)

	if err := config.Validate(); err != nil {
		return nil, configFiles, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, configFiles, nil
}

// applyFlagOverrides copies only the flags the user actually set.
func applyFlagOverrides(cmd *cobra.Command, f *flags, config *common.Config) {
	changed := cmd.Flags().Changed

	if changed("from") {
		config.Scrape.From = f.from
	}
	if changed("to") {
		config.Scrape.To = f.to
	}
	if changed("codes") {
		config.Scrape.Codes = common.ParseCodes(f.codes)
	}
	if changed("out") {
		config.Output.Dir = f.out
	}
	if changed("workers") {
		config.Scrape.Workers = f.workers
	}
	if changed("rate") {
		config.Scrape.RatePerSecond = f.rate
	}
	if changed("cache") {
		config.Cache.Enabled = f.cache
	}
	if changed("log-level") {
		config.Logging.Level = strings.ToLower(f.logLevel)
	}

	if changed("smtp-server") {
		config.Email.SMTPServer = f.smtpServer
	}
	if changed("smtp-port") {
		config.Email.SMTPPort = f.smtpPort
	}
	if changed("smtp-user") {
		config.Email.SMTPUser = f.smtpUser
	}
	if changed("smtp-pass") {
		config.Email.SMTPPass = f.smtpPass
	}
	if changed("to-email") {
		config.Email.ToEmail = f.toEmail
	}
	if changed("from-email") {
		config.Email.FromEmail = f.fromEmail
	}
}
