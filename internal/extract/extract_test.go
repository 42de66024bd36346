package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pageHead    = "株探 トップ 銘柄探検 リアルタイムに変更"
	profilePool = "7203 トヨタ自動車 東証Ｐ 決算 業績 輸送用機器 PER PBR 利回り 信用倍率 9.8倍 1.1倍 2.9% 3.2倍 時価総額 46.2兆円"
	compared    = "比較される銘柄 ホンダ 日産自"
	trendBlock  = "5日線 25日線 75日線 200日線 2,950 2,900 2,800 2,700"
	historyRun  = "決算期 売上高 発表日 2023.03 連 37,154,298 2,725,025 2,451,318 179.5 60 23/05/10 2024.03 予 連 45,095,325 5,352,934 4,944,933 370.9 75 24/05/08 直近の決算短信"
	pageTail    = "大株主 日本マスタートラスト信託銀行"
)

func page(parts ...string) Tokens {
	return Tokenize(strings.Join(parts, "\n  "))
}

func fullPage() Tokens {
	return page(pageHead, profilePool, compared, trendBlock, historyRun, pageTail)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultLayout())
	require.NoError(t, err)
	return e
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "only whitespace", text: " \n\t　 ", want: 0},
		{name: "mixed whitespace", text: "  a\n\nb\t c　d e ", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text).Len())
		})
	}
}

func TestLocateFirstOccurrence(t *testing.T) {
	tokens := NewTokens("a", "b", "a", "c")

	at, err := tokens.Locate("a")
	require.NoError(t, err)
	assert.Equal(t, 0, at)

	_, err = tokens.Locate("z")
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestBetweenRequiresOrder(t *testing.T) {
	tokens := NewTokens("end", "x", "start", "y")

	_, err := tokens.Between("start", "end")
	assert.ErrorIs(t, err, ErrAnchorOrder)

	got, err := tokens.Between("end", "start")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}

func TestSliceCopies(t *testing.T) {
	tokens := NewTokens("a", "b", "c")
	s := tokens.Slice(0, 2)
	s[0] = "mutated"

	at, err := tokens.Locate("a")
	require.NoError(t, err)
	assert.Equal(t, 0, at)
	assert.Nil(t, tokens.Slice(2, 1))
	assert.Equal(t, []string{"b", "c"}, tokens.Slice(1, 99))
}

func TestProfile(t *testing.T) {
	e := newTestEngine(t)

	res := e.Profile(fullPage())
	p, ok := res.Value()
	require.True(t, ok, "profile error: %v", res.Err())

	assert.Equal(t, Profile{
		Code:        "7203",
		Name:        "トヨタ自動車",
		Market:      "東証Ｐ",
		Sector:      "輸送用機器",
		PER:         "9.8倍",
		PBR:         "1.1倍",
		Yield:       "2.9%",
		CreditRatio: "3.2倍",
		MarketCap:   "46.2兆円",
	}, p)
	assert.Len(t, p.Fields(), len(ProfileColumns))
	assert.Equal(t, []string{"7203", "トヨタ自動車", "東証Ｐ", "輸送用機器", "9.8倍", "1.1倍", "2.9%", "3.2倍", "46.2兆円"}, p.Fields())
}

func TestProfileRatioClusterExample(t *testing.T) {
	e := newTestEngine(t)
	tokens := page(pageHead, "3382 セブン＆アイ 東証Ｐ 業績 小売業 PER 時価総額 12.3 4.5 2.1 80 900", compared, pageTail)

	p, ok := e.Profile(tokens).Value()
	require.True(t, ok)
	assert.Equal(t, "小売業", p.Sector)
	assert.Equal(t, []string{"12.3", "4.5", "2.1", "80", "900"}, p.Fields()[4:])
}

func TestProfileFailures(t *testing.T) {
	tests := []struct {
		name    string
		tokens  Tokens
		wantErr error
	}{
		{
			name:    "missing start anchor",
			tokens:  page(profilePool, compared, pageTail),
			wantErr: ErrProfileUnavailable,
		},
		{
			name:    "missing end anchor",
			tokens:  page(pageHead, profilePool, pageTail),
			wantErr: ErrProfileUnavailable,
		},
		{
			name:    "anchors reversed",
			tokens:  page(compared, profilePool, pageHead),
			wantErr: ErrProfileUnavailable,
		},
		{
			name:    "pool too short",
			tokens:  page(pageHead, "7203 トヨタ 東証Ｐ", compared),
			wantErr: ErrProfileUnavailable,
		},
		{
			name:    "no sector label",
			tokens:  page(pageHead, strings.Replace(profilePool, "業績", "実績", 1), compared),
			wantErr: ErrSectorLabelMissing,
		},
		{
			name:    "stray label outside cluster",
			tokens:  page(pageHead, "7203 トヨタ 東証Ｐ 業績 輸送用機器 時価総額 9.8倍 1.1倍 2.9% 3.2倍 46.2兆円 x", compared),
			wantErr: ErrRatioClusterMalformed,
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Profile(tt.tokens)
			_, ok := res.Value()
			assert.False(t, ok)
			assert.Equal(t, KindMalformed, res.Kind())
			assert.ErrorIs(t, res.Err(), tt.wantErr)
		})
	}
}

func TestProfileMissingAnchorKeepsCause(t *testing.T) {
	e := newTestEngine(t)
	res := e.Profile(page(pageHead, profilePool))
	assert.ErrorIs(t, res.Err(), ErrProfileUnavailable)
	assert.ErrorIs(t, res.Err(), ErrAnchorNotFound)
}

func TestTrend(t *testing.T) {
	e := newTestEngine(t)

	t.Run("present", func(t *testing.T) {
		tokens := NewTokens("a", "5日線", "x", "y", "z", "12.3", "45.6", "78.9", "100.1", "b")
		tr, ok := e.Trend(tokens).Value()
		require.True(t, ok)
		assert.Equal(t, Trend{"12.3", "45.6", "78.9", "100.1"}, tr)
	})

	t.Run("absent anchor", func(t *testing.T) {
		res := e.Trend(page(pageHead, profilePool, compared))
		assert.Equal(t, KindAbsent, res.Kind())
		assert.NoError(t, res.Err())
	})

	t.Run("truncated window", func(t *testing.T) {
		res := e.Trend(NewTokens("5日線", "x", "y", "z", "12.3", "45.6"))
		assert.Equal(t, KindMalformed, res.Kind())
		assert.ErrorIs(t, res.Err(), ErrTrendWindowTruncated)
	})
}

func TestHistory(t *testing.T) {
	e := newTestEngine(t)

	rows, ok := e.History(fullPage()).Value()
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, HistoryRecord{"2023.03", "37,154,298", "2,725,025", "2,451,318", "179.5", "60", "23/05/10"}, rows[0])
	assert.Equal(t, HistoryRecord{"2024.03", "45,095,325", "5,352,934", "4,944,933", "370.9", "75", "24/05/08"}, rows[1])
}

func TestHistoryPadsLastRow(t *testing.T) {
	e := newTestEngine(t)
	run := "発表日 1 2 3 4 5 6 7 8 9 10 11 12 13 直近の決算短信"

	rows, ok := e.History(page(run)).Value()
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, HistoryRecord{"8", "9", "10", "11", "12", "13", Absent}, rows[1])
}

func TestHistoryAbsent(t *testing.T) {
	tests := []struct {
		name   string
		tokens Tokens
	}{
		{name: "no anchors", tokens: page(pageHead, profilePool, compared)},
		{name: "only start", tokens: page("発表日 1 2 3")},
		{name: "reversed", tokens: page("直近の決算短信 1 2 3 発表日")},
		{name: "only noise between", tokens: page("発表日 予 連 I 直近の決算短信")},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.History(tt.tokens)
			assert.Equal(t, KindAbsent, res.Kind())
			assert.NoError(t, res.Err())
		})
	}
}

func TestFilterNoiseIdempotent(t *testing.T) {
	noise := DefaultLayout().noiseSet()
	run := []string{"予", "2024.03", "連", "1", "I", "単", "2", "変", "予想"}

	once := FilterNoise(run, noise)
	twice := FilterNoise(once, noise)

	assert.Equal(t, []string{"2024.03", "1", "2", "予想"}, once)
	assert.Equal(t, once, twice)
}

func TestPadAndReshape(t *testing.T) {
	for n := 0; n <= 3*HistoryWidth; n++ {
		run := make([]string, n)
		for i := range run {
			run[i] = string(rune('a' + i%26))
		}

		padded := Pad(run, HistoryWidth)
		assert.Zero(t, len(padded)%HistoryWidth)
		assert.Equal(t, run, padded[:n], "padding must not alter the prefix")
		for _, v := range padded[n:] {
			assert.Equal(t, Absent, v)
		}

		rows, err := Reshape(padded, HistoryWidth)
		require.NoError(t, err)
		assert.Equal(t, len(padded), len(rows)*HistoryWidth)
	}

	padded := Pad(make([]string, 13), HistoryWidth)
	assert.Len(t, padded, 14)

	_, err := Reshape(make([]string, 13), HistoryWidth)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestExtract(t *testing.T) {
	e := newTestEngine(t)

	frag, err := e.Extract(fullPage())
	require.NoError(t, err)

	assert.Equal(t, "7203", frag.Profile.Code)
	assert.Equal(t, "輸送用機器", frag.Profile.Sector)
	assert.Equal(t, "2,950", frag.Profile.MA5)
	assert.Equal(t, "2,700", frag.Profile.MA200)
	require.Len(t, frag.History, 2)
	for _, row := range frag.History {
		assert.Equal(t, "7203", row.Code)
	}
}

func TestExtractWithoutTrendOrHistory(t *testing.T) {
	e := newTestEngine(t)

	frag, err := e.Extract(page(pageHead, profilePool, compared, pageTail))
	require.NoError(t, err)

	assert.Equal(t, "トヨタ自動車", frag.Profile.Name)
	assert.Equal(t, Absent, frag.Profile.MA5)
	assert.Equal(t, Absent, frag.Profile.MA25)
	assert.Equal(t, Absent, frag.Profile.MA75)
	assert.Equal(t, Absent, frag.Profile.MA200)
	assert.Empty(t, frag.History)
}

func TestExtractSkips(t *testing.T) {
	tests := []struct {
		name    string
		tokens  Tokens
		wantErr error
	}{
		{name: "no listing", tokens: page(pageHead, profilePool, compared), wantErr: ErrListingUnavailable},
		{name: "no profile", tokens: page(trendBlock, pageTail), wantErr: ErrProfileUnavailable},
		{name: "empty page", tokens: Tokenize(""), wantErr: ErrListingUnavailable},
		{name: "truncated trend", tokens: page(pageHead, profilePool, compared, pageTail, "5日線 25日線 75日線 200日線 1"), wantErr: ErrTrendWindowTruncated},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(tt.tokens)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAssembleAbsentTrend(t *testing.T) {
	p := Profile{Code: "1301", Name: "極洋"}
	frag := Assemble(p, AbsentResult[Trend](), []HistoryRecord{{"2024.03"}, {"2025.03"}})

	assert.Equal(t, "1301", frag.Profile.Code)
	assert.Equal(t, Absent, frag.Profile.MA5)
	require.Len(t, frag.History, 2)
	assert.Equal(t, "1301", frag.History[1].Code)
	assert.Equal(t, "2025.03", frag.History[1].Period)
}

func TestLayoutValidate(t *testing.T) {
	require.NoError(t, DefaultLayout().Validate())

	l := DefaultLayout()
	l.TrendAnchor = ""
	l.TrendOffset = 0
	l.RatioClusterSize = 4
	l.NoiseTokens = append(l.NoiseTokens, "")
	err := l.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trend_anchor")
	assert.Contains(t, err.Error(), "trend_offset")
	assert.Contains(t, err.Error(), "ratio_cluster_size")
	assert.Contains(t, err.Error(), "noise_tokens")

	_, err = NewEngine(l)
	assert.Error(t, err)
}

func TestLayoutValidateReportsInFieldOrder(t *testing.T) {
	l := DefaultLayout()
	l.HistoryEndAnchor = ""
	l.TrendAnchor = ""
	l.ListingAnchor = ""

	first := l.Validate()
	require.Error(t, first)
	msg := first.Error()
	for i := 0; i < 20; i++ {
		assert.Equal(t, msg, l.Validate().Error())
	}

	assert.Equal(t, "layout listing_anchor must not be empty\n"+
		"layout trend_anchor must not be empty\n"+
		"layout history_end_anchor must not be empty", msg)
}
