package extract

import "errors"

var (
	ErrAnchorNotFound   = errors.New("anchor not found")
	ErrAnchorOrder      = errors.New("anchors out of order")
	ErrWindowOutOfRange = errors.New("window out of range")

	// ErrListingUnavailable means the code has no live listing page.
	ErrListingUnavailable    = errors.New("listing unavailable")
	ErrProfileUnavailable    = errors.New("profile unavailable")
	ErrSectorLabelMissing    = errors.New("sector label missing")
	ErrRatioClusterMalformed = errors.New("ratio cluster malformed")
	ErrTrendWindowTruncated  = errors.New("trend window truncated")

	// ErrShapeMismatch is a defect: padding guarantees whole rows.
	ErrShapeMismatch = errors.New("history shape mismatch")
)
