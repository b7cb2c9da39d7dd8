// Package worker keeps an eye on the runway: it recomputes the financial
// series when the ledgers change and on a schedule, warns when the runway
// drops below a threshold, and mirrors the series to a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"burnrate/internal/amqp"
	"burnrate/internal/ledger"
	applog "burnrate/internal/log"
	"burnrate/internal/runway"
	"burnrate/internal/sheets"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const checkTimeout = 2 * time.Minute

// Alert describes a runway below the configured threshold.
type Alert struct {
	Runway          float64
	Threshold       float64
	RemainingAssets decimal.Decimal
	AvgMonthlySpend decimal.Decimal
	EndDate         string
}

// CheckResult is the outcome of one runway check.
type CheckResult struct {
	Summary   runway.Summary
	Alert     *Alert
	SheetRef  string
	CheckedAt time.Time
}

type RunwayWorker struct {
	ledger      ledger.Snapshotter
	publisher   sheets.SeriesPublisher
	alertMonths float64
	onAlert     func(context.Context, Alert)
	logger      *applog.Logger
	now         func() time.Time

	// One check at a time; events arriving in a burst queue up behind it.
	checkMu sync.Mutex

	mu     sync.Mutex
	last   *CheckResult
	checks int64
	alerts int64
}

// NewRunwayWorker builds a worker. publisher may be nil to skip the
// spreadsheet mirror.
func NewRunwayWorker(l ledger.Snapshotter, publisher sheets.SeriesPublisher, alertMonths float64) *RunwayWorker {
	return &RunwayWorker{
		ledger:      l,
		publisher:   publisher,
		alertMonths: alertMonths,
		logger:      applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentWorker}),
		now:         time.Now,
	}
}

// OnAlert registers a callback run for every low-runway check.
func (w *RunwayWorker) OnAlert(fn func(context.Context, Alert)) {
	w.onAlert = fn
}

// HandleLedgerEvent recomputes the runway after a ledger change.
func (w *RunwayWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		"kind", ev.Kind,
		"action", ev.Action,
		"id", ev.ID)

	if _, err := w.CheckRunway(ctx); err != nil {
		return fmt.Errorf("check runway after %s: %w", ev, err)
	}
	return nil
}

// CheckRunway aggregates the ledgers, raises an alert when the runway is
// finite and below the threshold, and publishes the series. A failed
// publish is logged and does not fail the check.
func (w *RunwayWorker) CheckRunway(ctx context.Context) (CheckResult, error) {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	snap, err := w.ledger.Snapshot(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("load ledger snapshot: %w", err)
	}
	summary := runway.Aggregate(snap)
	res := CheckResult{Summary: summary, CheckedAt: w.now()}

	fields := applog.NewFields().
		WithOperation(applog.OpCheck).
		WithRunway(summary.Runway, summary.RemainingAssets.String(), summary.AvgMonthlySpend.String())

	if a, low := w.evaluate(summary); low {
		res.Alert = &a
		w.logger.WarnContext(ctx, "Runway below alert threshold",
			append(fields.ToSlice(), "threshold_months", a.Threshold, "end_date", a.EndDate)...)
		if w.onAlert != nil {
			w.onAlert(ctx, a)
		}
	} else {
		w.logger.InfoContext(ctx, "Runway checked", fields.ToSlice()...)
	}

	if w.publisher != nil {
		ref, err := w.publisher.PublishSeries(ctx, summary)
		if err != nil {
			applog.LogError(ctx, "Failed to publish series", err, applog.OpPublish,
				applog.NewFields().WithComponent(applog.ComponentSheets))
		} else {
			res.SheetRef = ref
		}
	}

	w.mu.Lock()
	w.last = &res
	w.checks++
	if res.Alert != nil {
		w.alerts++
	}
	w.mu.Unlock()

	return res, nil
}

func (w *RunwayWorker) evaluate(s runway.Summary) (Alert, bool) {
	if w.alertMonths <= 0 || math.IsInf(s.Runway, 0) || math.IsNaN(s.Runway) {
		return Alert{}, false
	}
	if s.Runway >= w.alertMonths {
		return Alert{}, false
	}
	return Alert{
		Runway:          s.Runway,
		Threshold:       w.alertMonths,
		RemainingAssets: s.RemainingAssets,
		AvgMonthlySpend: s.AvgMonthlySpend,
		EndDate:         runway.EndDate(s.Series, s.Runway),
	}, true
}

// Schedule registers the periodic check on a new cron scheduler. The
// caller starts and stops it.
func (w *RunwayWorker) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		if _, err := w.CheckRunway(checkCtx); err != nil {
			applog.LogError(checkCtx, "Scheduled runway check failed", err, applog.OpCheck, nil)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule runway check %q: %w", spec, err)
	}
	return c, nil
}

// LastCheck returns the most recent check result.
func (w *RunwayWorker) LastCheck() (CheckResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return CheckResult{}, false
	}
	return *w.last, true
}

// Stats reports how many checks ran and how many of them alerted.
func (w *RunwayWorker) Stats() (checks, alerts int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checks, w.alerts
}
