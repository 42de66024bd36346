package extract

import (
	"errors"
	"fmt"
)

// Trend holds the 5, 25, 75 and 200 day moving averages.
type Trend [TrendWidth]string

// Trend reads the moving-average window after the 5-day label. Many instruments show no
// trend block at all, so a missing anchor is Absent rather than an error.
func (e *Engine) Trend(tokens Tokens) Result[Trend] {
	if !tokens.Has(e.layout.TrendAnchor) {
		return AbsentResult[Trend]()
	}

	window, err := tokens.Window(e.layout.TrendAnchor, e.layout.TrendOffset, TrendWidth)
	if err != nil {
		if errors.Is(err, ErrWindowOutOfRange) {
			return Malformed[Trend](fmt.Errorf("%w: %w", ErrTrendWindowTruncated, err))
		}
		return Malformed[Trend](err)
	}

	var t Trend
	copy(t[:], window)
	return Present(t)
}
