package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/shanehull/kabuscraper/internal/audit"
	"github.com/shanehull/kabuscraper/internal/cache"
	"github.com/shanehull/kabuscraper/internal/common"
	"github.com/shanehull/kabuscraper/internal/extract"
	"github.com/shanehull/kabuscraper/internal/kabutan"
	"github.com/shanehull/kabuscraper/internal/notify"
	"github.com/shanehull/kabuscraper/internal/output"
	"github.com/shanehull/kabuscraper/internal/pipeline"
)

// run performs one full scrape and persists its tables and skip ledger. Any returned
// error means nothing usable was written.
func run(ctx context.Context, config *common.Config, logger arbor.ILogger, runID string, stdout io.Writer) error {
	if err := ensureWritable(config.Output.Dir); err != nil {
		return err
	}

	engine, err := extract.NewEngine(config.Layout)
	if err != nil {
		return err
	}

	opts := kabutan.Options{
		BaseURL:       config.Scrape.BaseURL,
		UserAgent:     config.Scrape.UserAgent,
		Timeout:       config.Scrape.TimeoutDuration(),
		RetryCount:    config.Scrape.RetryCount,
		RatePerSecond: config.Scrape.RatePerSecond,
	}

	if config.Cache.Enabled {
		store, err := cache.Open(logger, config.Cache.Path, config.Cache.TTLDuration())
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close page cache")
			}
		}()
		opts.Cache = store
	}

	client := kabutan.NewClient(logger, opts)
	ledger := audit.NewLedger(logger, filepath.Join(config.Output.Dir, config.Output.SkipFile), runID)
	runner := pipeline.NewRunner(logger, client, engine, ledger, pipeline.Options{
		Workers:       config.Scrape.Workers,
		ProgressEvery: config.Scrape.ProgressEvery,
	})

	codes := pipeline.ResolveCodes(config.Scrape.Codes, config.Scrape.From, config.Scrape.To)

	result, err := runner.Run(ctx, codes)
	if err != nil {
		return err
	}

	paths, err := output.WriteTables(config.Output.Dir, result.Profiles, result.History, output.Options{
		ProfileFile: config.Output.ProfileFile,
		HistoryFile: config.Output.HistoryFile,
		BOM:         config.Output.BOM,
	})
	if err != nil {
		return err
	}
	logger.Info().
		Str("profiles", paths.Profile).
		Int("profile_rows", len(result.Profiles)).
		Str("history", paths.History).
		Int("history_rows", len(result.History)).
		Msg("Tables written")

	report := ledger.Finish(result.Summary.Requested, result.Summary.Extracted, result.Summary.HistoryRows)
	if err := ledger.Save(); err != nil {
		return err
	}

	runReport := notify.RunReport{
		RunID:       runID,
		StartedAt:   report.StartedAt,
		Duration:    result.Summary.Duration,
		Requested:   result.Summary.Requested,
		Extracted:   result.Summary.Extracted,
		Skipped:     result.Summary.Skipped,
		HistoryRows: result.Summary.HistoryRows,
		SkipKinds:   notify.SortKinds(report.SkipsByKind),
		ProfilePath: paths.Profile,
		HistoryPath: paths.History,
		LedgerPath:  ledger.FilePath(),
	}

	notify.ReportSummary(stdout, runReport)
	emailSummary(logger, config.Email, runReport)

	return nil
}

// emailSummary logs send failures instead of returning them.
func emailSummary(logger arbor.ILogger, cfg common.EmailConfig, report notify.RunReport) {
	if !cfg.Enabled() {
		return
	}

	msg, err := notify.NewHTMLEmailRenderer().Render(report)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to render run summary email")
		return
	}

	sender := notify.NewEmailSender(logger, notify.EmailConfig{
		SMTPServer: cfg.SMTPServer,
		SMTPPort:   cfg.SMTPPort,
		SMTPUser:   cfg.SMTPUser,
		SMTPPass:   cfg.SMTPPass,
		FromEmail:  cfg.FromEmail,
		ToEmail:    cfg.ToEmail,
		Enabled:    true,
	})
	if err := sender.Send(msg); err != nil {
		logger.Warn().Err(err).Msg("Failed to email run summary")
	}
}

// ensureWritable checks that files can be created in dir.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".kabuscraper-check-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}
