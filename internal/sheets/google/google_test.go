package google

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"burnrate/internal/runway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleSummary() runway.Summary {
	return runway.Summary{
		Series: []runway.Entry{
			{
				Date: "2024-01", Assets: amt("9000"), Spending: amt("1000"), Revenue: amt("0"),
				NewAssets: []runway.NewAsset{{Amount: amt("10000"), Category: "Equity", Color: "#111111"}},
			},
			{Date: "2024-02", Assets: amt("8200"), Spending: amt("1000"), Revenue: amt("200")},
		},
		AvgMonthlySpend: amt("1000"),
		RemainingAssets: amt("8200"),
		Runway:          8.2,
	}
}

func TestSeriesRows(t *testing.T) {
	rows := SeriesRows(sampleSummary())

	require.Len(t, rows, 8)
	assert.Equal(t, seriesHeader, rows[0])
	assert.Equal(t, []any{"Jan 2024", "9000.00", "1000.00", "0.00", "1000.00", "10000.00"}, rows[1])
	assert.Equal(t, []any{"Feb 2024", "8200.00", "1000.00", "200.00", "800.00", "0.00"}, rows[2])
	assert.Empty(t, rows[3])
	assert.Equal(t, []any{"Runway (months)", "8.2"}, rows[6])
	assert.Equal(t, []any{"Runway ends", "Oct 2024"}, rows[7])
}

func TestSeriesRows_InfiniteRunway(t *testing.T) {
	rows := SeriesRows(runway.Summary{Runway: math.Inf(1)})

	require.Len(t, rows, 6)
	assert.Equal(t, []any{"Runway (months)", "N/A"}, rows[4])
	assert.Equal(t, []any{"Runway ends", "N/A"}, rows[5])
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing spreadsheet ID")

	_, err = New(context.Background(), Config{SpreadsheetID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = New(context.Background(), Config{SpreadsheetID: "abc", CredentialsFile: t.TempDir() + "/missing.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestPublishSeries(t *testing.T) {
	type call struct {
		method string
		path   string
		query  string
		body   []byte
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			dec := json.NewDecoder(r.Body)
			var raw json.RawMessage
			_ = dec.Decode(&raw)
			body = raw
		}
		mu.Lock()
		calls = append(calls, call{r.Method, r.URL.Path, r.URL.RawQuery, body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx, goption.WithEndpoint(ts.URL+"/"), goption.WithoutAuthentication())
	require.NoError(t, err)
	c := newClient(svc, Config{SpreadsheetID: "sheet-id"})

	ref, err := c.PublishSeries(ctx, sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, "Runway!A1:F8", ref)

	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.True(t, strings.HasSuffix(calls[0].path, ":clear"), calls[0].path)
	assert.Contains(t, calls[0].path, "sheet-id")

	assert.Equal(t, http.MethodPut, calls[1].method)
	assert.Contains(t, calls[1].query, "valueInputOption=USER_ENTERED")

	var vr gsheet.ValueRange
	require.NoError(t, json.Unmarshal(calls[1].body, &vr))
	require.Len(t, vr.Values, 8)
	assert.Equal(t, "Jan 2024", vr.Values[1][0])
}

func TestPublishSeries_NoService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: DefaultSheetName}
	_, err := c.PublishSeries(context.Background(), runway.Summary{})
	require.Error(t, err)
}
