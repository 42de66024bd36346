package extract

import "fmt"

// HistoryRecord is one periodic result row:
// period, revenue, operating income, net income, EPS, DPS, announcement date.
type HistoryRecord [HistoryWidth]string

// HistoryColumns is the fixed column order of a HistoryRecord.
var HistoryColumns = []string{"period", "revenue", "operating_income", "net_income", "eps", "dps", "announcement_date"}

// History slices the results run between the announcement-date label and the latest
// earnings report label. Pages without a results block are common, so any missing or
// misordered anchor gives Absent.
func (e *Engine) History(tokens Tokens) Result[[]HistoryRecord] {
	run, err := tokens.Between(e.layout.HistoryStartAnchor, e.layout.HistoryEndAnchor)
	if err != nil {
		return AbsentResult[[]HistoryRecord]()
	}

	run = FilterNoise(run, e.noise)
	if len(run) == 0 {
		return AbsentResult[[]HistoryRecord]()
	}

	rows, err := Reshape(Pad(run, HistoryWidth), HistoryWidth)
	if err != nil {
		return Malformed[[]HistoryRecord](err)
	}

	records := make([]HistoryRecord, len(rows))
	for i, row := range rows {
		copy(records[i][:], row)
	}
	return Present(records)
}

// FilterNoise drops the single-character forecast/consolidated/parent-only/change markers
// interleaved with the values. Filtering twice is the same as filtering once.
func FilterNoise(run []string, noise map[string]struct{}) []string {
	out := make([]string, 0, len(run))
	for _, tok := range run {
		if _, skip := noise[tok]; skip {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Pad right-pads with Absent until the length is a multiple of width.
// Existing values are never touched.
func Pad(run []string, width int) []string {
	out := make([]string, len(run), len(run)+width)
	copy(out, run)
	for len(out)%width != 0 {
		out = append(out, Absent)
	}
	return out
}

// Reshape groups run row-major into rows of width.
func Reshape(run []string, width int) ([][]string, error) {
	if width <= 0 || len(run)%width != 0 {
		return nil, fmt.Errorf("%w: %d values do not fill rows of %d", ErrShapeMismatch, len(run), width)
	}
	rows := make([][]string, 0, len(run)/width)
	for i := 0; i < len(run); i += width {
		rows = append(rows, run[i:i+width:i+width])
	}
	return rows, nil
}
