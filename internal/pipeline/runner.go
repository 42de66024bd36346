/*
Package pipeline drives a scrape run: it hands codes to a bounded set of workers, each of
which fetches and extracts one instrument, and funnels every outcome to a single collector
that owns the output tables.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/shanehull/kabuscraper/internal/extract"
	"github.com/shanehull/kabuscraper/internal/kabutan"
	"github.com/shanehull/kabuscraper/internal/types"
)

const (
	DefaultWorkers       = 4
	DefaultProgressEvery = 100
)

// Fetcher returns the flattened page text for one instrument code.
type Fetcher interface {
	FetchText(ctx context.Context, code string) (string, error)
}

type Extractor interface {
	Extract(tokens extract.Tokens) (types.Fragment, error)
}

// SkipRecorder is told about every instrument left out of the tables.
type SkipRecorder interface {
	RecordSkip(code string, err error)
}

type Options struct {
	Workers       int
	ProgressEvery int
}

type Runner struct {
	logger        arbor.ILogger
	fetcher       Fetcher
	extractor     Extractor
	skips         SkipRecorder
	workers       int
	progressEvery int
}

// Summary counts what happened to the requested codes.
type Summary struct {
	Requested   int
	Processed   int
	Extracted   int
	Skipped     int
	HistoryRows int
	Duration    time.Duration
}

type Result struct {
	Profiles []types.ProfileRow
	History  []types.HistoryRow
	Summary  Summary
}

type outcome struct {
	code     string
	fragment types.Fragment
	err      error
}

func NewRunner(logger arbor.ILogger, fetcher Fetcher, extractor Extractor, skips SkipRecorder, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Runner{
		logger:        logger,
		fetcher:       fetcher,
		extractor:     extractor,
		skips:         skips,
		workers:       opts.Workers,
		progressEvery: opts.ProgressEvery,
	}
}

// Run processes every code and returns the sorted tables. A cancelled context or a
// history shape defect aborts the run and no tables are returned.
func (r *Runner) Run(ctx context.Context, codes []string) (*Result, error) {
	started := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)
	outcomes := make(chan outcome)

	go func() {
		defer close(jobs)
		for _, code := range codes {
			select {
			case jobs <- code:
			case <-runCtx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				if runCtx.Err() != nil {
					return
				}
				o := r.process(runCtx, code)
				select {
				case outcomes <- o:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	r.logger.Info().Int("codes", len(codes)).Int("workers", r.workers).Msg("Starting scrape run")

	var (
		acc     Accumulator
		summary = Summary{Requested: len(codes)}
		defect  error
	)

	for o := range outcomes {
		if defect != nil || runCtx.Err() != nil {
			continue
		}

		summary.Processed++

		switch {
		case o.err == nil:
			acc.Add(o.fragment)
			summary.Extracted++
			summary.HistoryRows += len(o.fragment.History)
		case errors.Is(o.err, extract.ErrShapeMismatch):
			r.logger.Error().Str("code", o.code).Err(o.err).Msg("History shape defect, aborting run")
			defect = fmt.Errorf("code %s: %w", o.code, o.err)
			cancel()
		default:
			summary.Skipped++
			r.skips.RecordSkip(o.code, o.err)
		}

		if summary.Processed%r.progressEvery == 0 {
			r.logger.Info().
				Int("processed", summary.Processed).
				Int("total", summary.Requested).
				Int("extracted", summary.Extracted).
				Int("skipped", summary.Skipped).
				Msg("Scrape progress")
		}
	}

	summary.Duration = time.Since(started)

	if defect != nil {
		return nil, defect
	}
	if err := ctx.Err(); err != nil {
		r.logger.Warn().Int("processed", summary.Processed).Msg("Scrape run cancelled, discarding results")
		return nil, fmt.Errorf("scrape run cancelled: %w", err)
	}

	profiles, history := acc.Tables()

	r.logger.Info().
		Int("extracted", summary.Extracted).
		Int("skipped", summary.Skipped).
		Int("history_rows", summary.HistoryRows).
		Str("duration", summary.Duration.Round(time.Millisecond).String()).
		Msg("Scrape run finished")

	return &Result{
		Profiles: profiles,
		History:  history,
		Summary:  summary,
	}, nil
}

func (r *Runner) process(ctx context.Context, code string) outcome {
	text, err := r.fetcher.FetchText(ctx, code)
	if err != nil {
		if !errors.Is(err, kabutan.ErrFetchFailure) {
			err = fmt.Errorf("%w: code %s: %w", kabutan.ErrFetchFailure, code, err)
		}
		return outcome{code: code, err: err}
	}

	fragment, err := r.extractor.Extract(extract.Tokenize(text))
	if err != nil {
		return outcome{code: code, err: err}
	}

	r.logger.Debug().Str("code", code).Int("history_rows", len(fragment.History)).Msg("Extracted instrument")
	return outcome{code: code, fragment: fragment}
}
