/*
Package audit records why instruments were skipped during a run, so the skip decisions
can be reviewed after the tables are written.
*/
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/shanehull/kabuscraper/internal/extract"
	"github.com/shanehull/kabuscraper/internal/kabutan"
)

// Skip kinds, in the order they are checked.
const (
	KindFetchFailure       = "fetch_failure"
	KindListingUnavailable = "listing_unavailable"
	KindSectorLabelMissing = "sector_label_missing"
	KindRatioCluster       = "ratio_cluster_malformed"
	KindProfileUnavailable = "profile_unavailable"
	KindTrendTruncated     = "trend_window_truncated"
	KindShapeMismatch      = "shape_mismatch"
	KindOther              = "other"
)

var kinds = []struct {
	err  error
	kind string
}{
	{kabutan.ErrFetchFailure, KindFetchFailure},
	{extract.ErrListingUnavailable, KindListingUnavailable},
	{extract.ErrSectorLabelMissing, KindSectorLabelMissing},
	{extract.ErrRatioClusterMalformed, KindRatioCluster},
	{extract.ErrProfileUnavailable, KindProfileUnavailable},
	{extract.ErrAnchorNotFound, KindProfileUnavailable},
	{extract.ErrTrendWindowTruncated, KindTrendTruncated},
	{extract.ErrShapeMismatch, KindShapeMismatch},
}

// Classify maps a skip error to its kind label.
func Classify(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindOther
}

type Skip struct {
	Code   string `json:"code"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Report is the persisted form of one run.
type Report struct {
	RunID       string         `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Requested   int            `json:"requested"`
	Extracted   int            `json:"extracted"`
	HistoryRows int            `json:"history_rows"`
	SkipsByKind map[string]int `json:"skips_by_kind"`
	Skipped     []Skip         `json:"skipped"`
}

type Ledger struct {
	report   Report
	mutex    sync.Mutex
	filePath string
	logger   arbor.ILogger
}

func NewLedger(logger arbor.ILogger, filePath, runID string) *Ledger {
	return &Ledger{
		report: Report{
			RunID:       runID,
			StartedAt:   time.Now(),
			SkipsByKind: make(map[string]int),
		},
		filePath: filePath,
		logger:   logger,
	}
}

// RecordSkip logs and stores one skip decision.
func (l *Ledger) RecordSkip(code string, err error) {
	kind := Classify(err)

	l.mutex.Lock()
	l.report.Skipped = append(l.report.Skipped, Skip{Code: code, Kind: kind, Reason: err.Error()})
	l.report.SkipsByKind[kind]++
	l.mutex.Unlock()

	// Codes without a listing page are the common case across the range.
	event := l.logger.Warn()
	if kind == KindListingUnavailable {
		event = l.logger.Debug()
	}
	event.Str("code", code).Str("kind", kind).Err(err).Msg("Skipping instrument")
}

// Finish stamps the run totals.
func (l *Ledger) Finish(requested, extracted, historyRows int) Report {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.report.FinishedAt = time.Now()
	l.report.Requested = requested
	l.report.Extracted = extracted
	l.report.HistoryRows = historyRows

	sort.SliceStable(l.report.Skipped, func(i, j int) bool {
		return l.report.Skipped[i].Code < l.report.Skipped[j].Code
	})

	return l.snapshot()
}

func (l *Ledger) Report() Report {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.snapshot()
}

func (l *Ledger) snapshot() Report {
	r := l.report
	r.Skipped = append([]Skip(nil), l.report.Skipped...)
	r.SkipsByKind = make(map[string]int, len(l.report.SkipsByKind))
	for k, v := range l.report.SkipsByKind {
		r.SkipsByKind[k] = v
	}
	return r
}

// Save writes the ledger as indented JSON.
func (l *Ledger) Save() error {
	l.mutex.Lock()
	data, err := json.MarshalIndent(l.report, "", "  ")
	l.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal skip ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	if err := os.WriteFile(l.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write skip ledger %s: %w", l.filePath, err)
	}

	l.logger.Info().Str("path", l.filePath).Msg("Saved skip ledger")
	return nil
}

func (l *Ledger) FilePath() string {
	return l.filePath
}
