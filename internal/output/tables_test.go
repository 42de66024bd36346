package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/kabuscraper/internal/types"
)

func testOptions(withBOM bool) Options {
	return Options{
		ProfileFile: "basic_info.csv",
		HistoryFile: "performance_trend.csv",
		BOM:         withBOM,
	}
}

func readCSV(t *testing.T, path string) (string, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	raw := string(data)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, bom))).ReadAll()
	require.NoError(t, err)
	return raw, records
}

func TestWriteTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	profiles := []types.ProfileRow{{
		Code: "7203", Name: "トヨタ自動車", Market: "東証Ｐ", Sector: "輸送用機器",
		PER: "9.8倍", PBR: "1.1倍", Yield: "2.9%", CreditRatio: "3.2倍", MarketCap: "46.2兆円",
		MA5: "2,950", MA25: "2,900", MA75: "2,800", MA200: "2,700",
	}, {
		Code: "1301", Name: "極洋",
	}}
	history := []types.HistoryRow{{
		Code: "7203", Period: "2024.03", Revenue: "45,095,325", OperatingIncome: "5,352,934",
		NetIncome: "4,944,933", EPS: "370.9", DPS: "75", AnnouncementDate: "24/05/08",
	}}

	paths, err := WriteTables(dir, profiles, history, testOptions(true))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "basic_info.csv"), paths.Profile)

	raw, records := readCSV(t, paths.Profile)
	assert.True(t, strings.HasPrefix(raw, bom))
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"code", "name", "market", "sector", "per", "pbr", "yield", "credit_ratio", "market_cap",
		"ma5", "ma25", "ma75", "ma200",
	}, records[0])
	assert.Equal(t, "2,950", records[1][9])
	assert.Equal(t, "", records[2][12])

	_, records = readCSV(t, paths.History)
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"code", "period", "revenue", "operating_income", "net_income", "eps", "dps", "announcement_date",
	}, records[0])
	assert.Equal(t, "24/05/08", records[1][7])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestWriteTablesEmpty(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteTables(dir, nil, nil, testOptions(false))
	require.NoError(t, err)

	raw, records := readCSV(t, paths.Profile)
	assert.False(t, strings.HasPrefix(raw, bom))
	require.Len(t, records, 1)
	assert.Equal(t, "code", records[0][0])

	_, records = readCSV(t, paths.History)
	require.Len(t, records, 1)
}

func TestWriteTablesOverwrites(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteTables(dir, []types.ProfileRow{{Code: "1"}, {Code: "2"}}, nil, testOptions(false))
	require.NoError(t, err)
	paths, err := WriteTables(dir, []types.ProfileRow{{Code: "3"}}, nil, testOptions(false))
	require.NoError(t, err)

	_, records := readCSV(t, paths.Profile)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[1][0])
}

func TestWriteTablesUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := WriteTables(filepath.Join(file, "data"), nil, nil, testOptions(true))
	assert.Error(t, err)
}
