package extract

import (
	"errors"
	"fmt"
)

// Layout holds every landmark and offset the engine relies on. The values are tied to
// the current kabutan page layout and are expected to drift, so they are configuration
// rather than literals.
type Layout struct {
	ListingAnchor string `toml:"listing_anchor"`

	ProfileStartAnchor string `toml:"profile_start_anchor"`
	ProfileEndAnchor   string `toml:"profile_end_anchor"`
	SectorLabel        string `toml:"sector_label"`
	StrayRatioLabel    string `toml:"stray_ratio_label"`
	RatioClusterSize   int    `toml:"ratio_cluster_size"`

	TrendAnchor string `toml:"trend_anchor"`
	TrendOffset int    `toml:"trend_offset"`

	HistoryStartAnchor string   `toml:"history_start_anchor"`
	HistoryEndAnchor   string   `toml:"history_end_anchor"`
	NoiseTokens        []string `toml:"noise_tokens"`
}

const (
	// ProfileHeadFields are the leading pool tokens: code, name, market.
	ProfileHeadFields = 3
	// TrendWidth is the number of moving-average values on a page.
	TrendWidth = 4
	// HistoryWidth is the number of columns in one periodic result row.
	HistoryWidth = 7
)

func DefaultLayout() Layout {
	return Layout{
		ListingAnchor:      "大株主",
		ProfileStartAnchor: "リアルタイムに変更",
		ProfileEndAnchor:   "比較される銘柄",
		SectorLabel:        "業績",
		StrayRatioLabel:    "時価総額",
		RatioClusterSize:   6,
		TrendAnchor:        "5日線",
		TrendOffset:        4,
		HistoryStartAnchor: "発表日",
		HistoryEndAnchor:   "直近の決算短信",
		NoiseTokens:        []string{"予", "I", "単", "連", "変"},
	}
}

// Validate rejects layouts the extractors cannot work with.
func (l Layout) Validate() error {
	var errs []error

	anchors := []struct {
		name  string
		value string
	}{
		{"listing_anchor", l.ListingAnchor},
		{"profile_start_anchor", l.ProfileStartAnchor},
		{"profile_end_anchor", l.ProfileEndAnchor},
		{"sector_label", l.SectorLabel},
		{"stray_ratio_label", l.StrayRatioLabel},
		{"trend_anchor", l.TrendAnchor},
		{"history_start_anchor", l.HistoryStartAnchor},
		{"history_end_anchor", l.HistoryEndAnchor},
	}
	for _, anchor := range anchors {
		if anchor.value == "" {
			errs = append(errs, fmt.Errorf("layout %s must not be empty", anchor.name))
		}
	}

	if l.ProfileStartAnchor != "" && l.ProfileStartAnchor == l.ProfileEndAnchor {
		errs = append(errs, errors.New("layout profile anchors must differ"))
	}
	if l.HistoryStartAnchor != "" && l.HistoryStartAnchor == l.HistoryEndAnchor {
		errs = append(errs, errors.New("layout history anchors must differ"))
	}
	// The cluster always carries the stray label plus the five ratio values.
	if l.RatioClusterSize != profileRatioFields+1 {
		errs = append(errs, fmt.Errorf("layout ratio_cluster_size must be %d, got %d", profileRatioFields+1, l.RatioClusterSize))
	}
	if l.TrendOffset < 1 {
		errs = append(errs, fmt.Errorf("layout trend_offset must be positive, got %d", l.TrendOffset))
	}
	for _, tok := range l.NoiseTokens {
		if tok == "" {
			errs = append(errs, errors.New("layout noise_tokens must not contain empty tokens"))
			break
		}
	}

	return errors.Join(errs...)
}

func (l Layout) noiseSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l.NoiseTokens))
	for _, tok := range l.NoiseTokens {
		set[tok] = struct{}{}
	}
	return set
}
