package extract

import (
	"fmt"

	"github.com/shanehull/kabuscraper/internal/types"
)

// Engine runs the profile, trend and history extractors over one page. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	layout Layout
	noise  map[string]struct{}
}

func NewEngine(layout Layout) (*Engine, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &Engine{
		layout: layout,
		noise:  layout.noiseSet(),
	}, nil
}

func (e *Engine) Layout() Layout {
	return e.layout
}

// Extract turns one page into the instrument's profile row and history rows.
// The returned error tells the caller why the instrument has to be skipped.
func (e *Engine) Extract(tokens Tokens) (types.Fragment, error) {
	if !tokens.Has(e.layout.ListingAnchor) {
		return types.Fragment{}, fmt.Errorf("%w: %q not on page", ErrListingUnavailable, e.layout.ListingAnchor)
	}

	profile := e.Profile(tokens)
	p, ok := profile.Value()
	if !ok {
		return types.Fragment{}, profile.Err()
	}

	trend := e.Trend(tokens)
	if trend.Kind() == KindMalformed {
		return types.Fragment{}, trend.Err()
	}

	history := e.History(tokens)
	if history.Kind() == KindMalformed {
		return types.Fragment{}, history.Err()
	}
	records, _ := history.Value()

	return Assemble(p, trend, records), nil
}

// Assemble joins a profile with its trend into one wide row and stamps the code on
// every history row. It never fails.
func Assemble(p Profile, trend Result[Trend], history []HistoryRecord) types.Fragment {
	// Absent trend leaves the zero Trend, i.e. four Absent columns.
	t, _ := trend.Value()

	row := types.ProfileRow{
		Code:        p.Code,
		Name:        p.Name,
		Market:      p.Market,
		Sector:      p.Sector,
		PER:         p.PER,
		PBR:         p.PBR,
		Yield:       p.Yield,
		CreditRatio: p.CreditRatio,
		MarketCap:   p.MarketCap,
		MA5:         t[0],
		MA25:        t[1],
		MA75:        t[2],
		MA200:       t[3],
	}

	rows := make([]types.HistoryRow, 0, len(history))
	for _, h := range history {
		rows = append(rows, types.HistoryRow{
			Code:             p.Code,
			Period:           h[0],
			Revenue:          h[1],
			OperatingIncome:  h[2],
			NetIncome:        h[3],
			EPS:              h[4],
			DPS:              h[5],
			AnnouncementDate: h[6],
		})
	}

	return types.Fragment{Profile: row, History: rows}
}
