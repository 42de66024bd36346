package extract

import (
	"fmt"
	"slices"
)

const profileRatioFields = 5

// Profile is the descriptive and valuation snapshot of one instrument.
// Values are kept as they appear on the page; no numeric coercion happens here.
type Profile struct {
	Code        string
	Name        string
	Market      string
	Sector      string
	PER         string
	PBR         string
	Yield       string
	CreditRatio string
	MarketCap   string
}

// ProfileColumns is the fixed field order of a Profile.
var ProfileColumns = []string{"code", "name", "market", "sector", "per", "pbr", "yield", "credit_ratio", "market_cap"}

// Fields returns the nine profile values in ProfileColumns order.
func (p Profile) Fields() []string {
	return []string{p.Code, p.Name, p.Market, p.Sector, p.PER, p.PBR, p.Yield, p.CreditRatio, p.MarketCap}
}

// Profile slices the field pool between the realtime quote and compared issues anchors.
// A missing anchor skips the instrument; no partial profile is ever returned.
func (e *Engine) Profile(tokens Tokens) Result[Profile] {
	pool, err := tokens.Between(e.layout.ProfileStartAnchor, e.layout.ProfileEndAnchor)
	if err != nil {
		return Malformed[Profile](fmt.Errorf("%w: %w", ErrProfileUnavailable, err))
	}

	minPool := ProfileHeadFields + e.layout.RatioClusterSize
	if len(pool) < minPool {
		return Malformed[Profile](fmt.Errorf("%w: field pool has %d tokens, need at least %d", ErrProfileUnavailable, len(pool), minPool))
	}

	sector, err := e.sector(pool)
	if err != nil {
		return Malformed[Profile](err)
	}

	ratios, err := e.ratios(pool)
	if err != nil {
		return Malformed[Profile](err)
	}

	return Present(Profile{
		Code:        pool[0],
		Name:        pool[1],
		Market:      pool[2],
		Sector:      sector,
		PER:         ratios[0],
		PBR:         ratios[1],
		Yield:       ratios[2],
		CreditRatio: ratios[3],
		MarketCap:   ratios[4],
	})
}

// sector is the token right after the results label. Its absolute position moves with
// the preceding content, its position relative to the label does not.
func (e *Engine) sector(pool []string) (string, error) {
	at := slices.Index(pool, e.layout.SectorLabel)
	if at < 0 {
		return "", fmt.Errorf("%w: %q not in field pool", ErrSectorLabelMissing, e.layout.SectorLabel)
	}
	if at+1 >= len(pool) {
		return "", fmt.Errorf("%w: %q is the last pool token", ErrSectorLabelMissing, e.layout.SectorLabel)
	}
	return pool[at+1], nil
}

// ratios takes the trailing cluster and drops the stray market-cap label duplicated into it.
func (e *Engine) ratios(pool []string) ([]string, error) {
	cluster := slices.Clone(pool[len(pool)-e.layout.RatioClusterSize:])

	at := slices.Index(cluster, e.layout.StrayRatioLabel)
	if at < 0 {
		return nil, fmt.Errorf("%w: %q not in trailing %d tokens %v", ErrRatioClusterMalformed, e.layout.StrayRatioLabel, e.layout.RatioClusterSize, cluster)
	}
	cluster = slices.Delete(cluster, at, at+1)

	if len(cluster) != profileRatioFields {
		return nil, fmt.Errorf("%w: %d ratio values, want %d", ErrRatioClusterMalformed, len(cluster), profileRatioFields)
	}
	return cluster, nil
}
