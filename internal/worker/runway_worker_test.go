package worker

import (
	"context"
	"errors"
	"testing"

	"burnrate/internal/amqp"
	"burnrate/internal/core"
	"burnrate/internal/ledger/memory"
	"burnrate/internal/runway"
	sheetsmem "burnrate/internal/sheets/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(t *testing.T, spend string) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	_, err := store.CreateAsset(ctx, core.Asset{Name: "Seed", Amount: amt("10000"), Date: "2024-01-05", Category: "Equity"})
	require.NoError(t, err)
	if spend != "" {
		_, err = store.CreateSpending(ctx, core.Spending{Amount: amt(spend), Date: "2024-01"})
		require.NoError(t, err)
	}
	return store
}

type failingPublisher struct{}

func (failingPublisher) PublishSeries(context.Context, runway.Summary) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestCheckRunway_AlertsBelowThreshold(t *testing.T) {
	pub := sheetsmem.New()
	w := NewRunwayWorker(seed(t, "2000"), pub, 6)

	var got []Alert
	w.OnAlert(func(_ context.Context, a Alert) { got = append(got, a) })

	res, err := w.CheckRunway(context.Background())
	require.NoError(t, err)

	require.NotNil(t, res.Alert)
	assert.Equal(t, 4.0, res.Alert.Runway)
	assert.Equal(t, "May 2024", res.Alert.EndDate)
	assert.True(t, res.Alert.RemainingAssets.Equal(amt("8000")))
	require.Len(t, got, 1)

	assert.Equal(t, "mem:1", res.SheetRef)
	last, ok := pub.Last()
	require.True(t, ok)
	assert.Len(t, last.Series, 1)

	checks, alerts := w.Stats()
	assert.Equal(t, int64(1), checks)
	assert.Equal(t, int64(1), alerts)
}

func TestCheckRunway_NoAlert(t *testing.T) {
	tests := []struct {
		name      string
		spend     string
		threshold float64
	}{
		{name: "healthy runway", spend: "500", threshold: 6},
		{name: "no spend means unbounded runway", spend: "", threshold: 6},
		{name: "alerts disabled", spend: "2000", threshold: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewRunwayWorker(seed(t, tt.spend), nil, tt.threshold)
			res, err := w.CheckRunway(context.Background())
			require.NoError(t, err)
			assert.Nil(t, res.Alert)
			assert.Empty(t, res.SheetRef)
		})
	}
}

func TestCheckRunway_PublishFailureIsNotFatal(t *testing.T) {
	w := NewRunwayWorker(seed(t, "2000"), failingPublisher{}, 6)

	res, err := w.CheckRunway(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.SheetRef)
	assert.NotNil(t, res.Alert)
}

func TestHandleLedgerEvent(t *testing.T) {
	pub := sheetsmem.New()
	w := NewRunwayWorker(seed(t, "500"), pub, 6)

	_, ok := w.LastCheck()
	assert.False(t, ok)

	err := w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent(amqp.KindSpending, amqp.ActionCreated, 1, "2024-01"))
	require.NoError(t, err)

	last, ok := w.LastCheck()
	require.True(t, ok)
	assert.Equal(t, 19.0, last.Summary.Runway)
	assert.Equal(t, 1, pub.Count())
}

func TestSchedule(t *testing.T) {
	w := NewRunwayWorker(memory.New(), nil, 6)

	c, err := w.Schedule(context.Background(), "@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = w.Schedule(context.Background(), "not a schedule")
	assert.Error(t, err)
}
