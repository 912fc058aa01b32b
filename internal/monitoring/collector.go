// Package monitoring watches recent sync runs and raises webhook alerts when
// they fail, stall or accumulate item errors.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/internal/store"
)

const collectPageSize = 500

// MetricsSnapshot holds a point-in-time view of sync health.
type MetricsSnapshot struct {
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsRunning  int     `json:"runs_running"`
	StaleRuns    int     `json:"stale_runs"`
	FailRate     float64 `json:"fail_rate"`

	// Summed from the reports of finished runs.
	ItemErrors int `json:"item_errors"`
	Deleted    int `json:"deleted"`

	LastFailure   string     `json:"last_failure,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers run metrics from the store.
type Collector struct {
	store      store.Store
	staleAfter time.Duration
	now        func() time.Time
}

// NewCollector creates a metrics collector. Runs still running after
// staleAfter are counted as stale; zero disables the check.
func NewCollector(st store.Store, staleAfter time.Duration) *Collector {
	return &Collector{store: st, staleAfter: staleAfter, now: time.Now}
}

// Collect gathers a snapshot of the runs created within the lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	// Runs come newest first, so paging stops at the first run before cutoff.
	for offset := 0; ; offset += collectPageSize {
		runs, err := c.store.ListRuns(ctx, store.RunFilter{Limit: collectPageSize, Offset: offset})
		if err != nil {
			return nil, eris.Wrap(err, "monitoring: list runs")
		}
		for i := range runs {
			if runs[i].CreatedAt.Before(cutoff) {
				finish(snap)
				return snap, nil
			}
			c.add(snap, &runs[i], now)
		}
		if len(runs) < collectPageSize {
			break
		}
	}
	finish(snap)
	return snap, nil
}

func (c *Collector) add(snap *MetricsSnapshot, r *model.SyncRun, now time.Time) {
	snap.RunsTotal++
	switch r.Status {
	case model.RunStatusComplete:
		snap.RunsComplete++
		if snap.LastSuccessAt == nil {
			at := r.UpdatedAt
			snap.LastSuccessAt = &at
		}
	case model.RunStatusFailed:
		snap.RunsFailed++
		if snap.LastFailure == "" {
			snap.LastFailure = r.Error
		}
	case model.RunStatusRunning:
		snap.RunsRunning++
		if c.staleAfter > 0 && now.Sub(r.CreatedAt) > c.staleAfter {
			snap.StaleRuns++
		}
	}
	if r.Report != nil {
		snap.ItemErrors += r.Report.Errored
		snap.Deleted += r.Report.Deleted
	}
}

func finish(snap *MetricsSnapshot) {
	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
}
