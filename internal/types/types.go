package types

// ProfileRow is one line of the profile table: the profile record joined with its
// moving-average trend. Trend columns are empty when the page had no trend block.
type ProfileRow struct {
	Code        string `csv:"code"`
	Name        string `csv:"name"`
	Market      string `csv:"market"`
	Sector      string `csv:"sector"`
	PER         string `csv:"per"`
	PBR         string `csv:"pbr"`
	Yield       string `csv:"yield"`
	CreditRatio string `csv:"credit_ratio"`
	MarketCap   string `csv:"market_cap"`
	MA5         string `csv:"ma5"`
	MA25        string `csv:"ma25"`
	MA75        string `csv:"ma75"`
	MA200       string `csv:"ma200"`
}

// HistoryRow is one periodic result line, denormalised with the instrument code.
type HistoryRow struct {
	Code             string `csv:"code"`
	Period           string `csv:"period"`
	Revenue          string `csv:"revenue"`
	OperatingIncome  string `csv:"operating_income"`
	NetIncome        string `csv:"net_income"`
	EPS              string `csv:"eps"`
	DPS              string `csv:"dps"`
	AnnouncementDate string `csv:"announcement_date"`
}

// Fragment is everything one instrument contributes to the two tables.
type Fragment struct {
	Profile ProfileRow
	History []HistoryRow
}
