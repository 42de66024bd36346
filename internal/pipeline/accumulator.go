package pipeline

import (
	"sort"
	"strings"

	"github.com/shanehull/kabuscraper/internal/types"
)

// Accumulator collects fragments for the two output tables. It is owned by the
// collector goroutine and is not safe for concurrent use.
type Accumulator struct {
	profiles []types.ProfileRow
	history  []types.HistoryRow
}

func (a *Accumulator) Add(f types.Fragment) {
	a.profiles = append(a.profiles, f.Profile)
	a.history = append(a.history, f.History...)
}

func (a *Accumulator) Len() int {
	return len(a.profiles)
}

// Tables returns both tables ordered by code. History rows of one instrument keep their
// page order.
func (a *Accumulator) Tables() ([]types.ProfileRow, []types.HistoryRow) {
	profiles := append([]types.ProfileRow(nil), a.profiles...)
	history := append([]types.HistoryRow(nil), a.history...)

	sort.SliceStable(profiles, func(i, j int) bool {
		return lessCode(profiles[i].Code, profiles[j].Code)
	})
	sort.SliceStable(history, func(i, j int) bool {
		return lessCode(history[i].Code, history[j].Code)
	})

	return profiles, history
}

// lessCode orders codes as if left-padded with zeros to a common width, so
// digit-only codes sort numerically and mixed codes keep one total order.
func lessCode(a, b string) bool {
	if n := len(b) - len(a); n > 0 {
		a = strings.Repeat("0", n) + a
	} else if n < 0 {
		b = strings.Repeat("0", -n) + b
	}
	return a < b
}
