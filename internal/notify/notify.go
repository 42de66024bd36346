/*
Package notify reports the outcome of a scrape run on the console and, when SMTP is
configured, by email.
*/
package notify

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// RunReport is everything a run summary shows.
type RunReport struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Requested   int
	Extracted   int
	Skipped     int
	HistoryRows int
	SkipKinds   []KindCount
	ProfilePath string
	HistoryPath string
	LedgerPath  string
}

type KindCount struct {
	Kind  string
	Count int
}

// RenderedMessage is a ready-to-send email.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// SortKinds turns per-kind skip counts into a list, largest first.
func SortKinds(counts map[string]int) []KindCount {
	kinds := make([]KindCount, 0, len(counts))
	for kind, n := range counts {
		if n > 0 {
			kinds = append(kinds, KindCount{Kind: kind, Count: n})
		}
	}
	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i].Count != kinds[j].Count {
			return kinds[i].Count > kinds[j].Count
		}
		return kinds[i].Kind < kinds[j].Kind
	})
	return kinds
}

func formatKinds(kinds []KindCount) string {
	if len(kinds) == 0 {
		return "\t- none\n"
	}
	var sb strings.Builder
	for _, k := range kinds {
		sb.WriteString(fmt.Sprintf("\t- %-26s %d\n", k.Kind, k.Count))
	}
	return sb.String()
}

// ReportSummary prints the run summary to w.
func ReportSummary(w io.Writer, r RunReport) {
	if r.Extracted == 0 {
		fmt.Fprintln(w, "\n-------------------------------------------")
		fmt.Fprintf(w, "No instruments extracted out of %d requested.\n", r.Requested)
		fmt.Fprintln(w, "-------------------------------------------")
	} else {
		fmt.Fprintln(w, "\n===========================================")
		fmt.Fprintf(w, "✅ %d INSTRUMENTS EXTRACTED\n", r.Extracted)
		fmt.Fprintln(w, "===========================================")
	}

	out := fmt.Sprintf("Run:          %s\n", r.RunID) +
		fmt.Sprintf("Started:      %s\n", r.StartedAt.Format("2006-01-02 15:04:05")) +
		fmt.Sprintf("Duration:     %s\n", r.Duration.Round(time.Second)) +
		fmt.Sprintf("Requested:    %d\n", r.Requested) +
		fmt.Sprintf("Skipped:      %d\n", r.Skipped) +
		fmt.Sprintf("History rows: %d\n", r.HistoryRows) +
		fmt.Sprintf("Skips by kind:\n%s", formatKinds(r.SkipKinds))

	fmt.Fprint(w, out)

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "Tables saved to %s and %s.\n", r.ProfilePath, r.HistoryPath)
	fmt.Fprintf(w, "Skip ledger saved to %s.\n", r.LedgerPath)
	fmt.Fprintln(w, "===========================================")
}
