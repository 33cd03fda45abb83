// Package jobs holds the periodic background jobs run by the reservations service.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/room-reservations/internal/application"
)

// StatsSource reports the current reservation counters.
type StatsSource interface {
	Stats(ctx context.Context) (application.Stats, error)
}

// StatsReporter logs the pending, approved and room counts.
type StatsReporter struct {
	source  StatsSource
	logger  *slog.Logger
	timeout time.Duration
}

// NewStatsReporter constructs a reporter reading from source.
func NewStatsReporter(source StatsSource, logger *slog.Logger) *StatsReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsReporter{source: source, logger: logger.With("job", "stats"), timeout: 10 * time.Second}
}

// Report reads the counters once and logs them.
func (r *StatsReporter) Report(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stats, err := r.source.Stats(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "stats job failed", "error", err, "error_kind", application.ErrorKind(err))
		return err
	}
	r.logger.InfoContext(ctx, "reservation stats",
		"pending", stats.Pending,
		"approved", stats.Approved,
		"total_rooms", stats.TotalRooms,
	)
	return nil
}

// Schedule registers the reporter on c under spec. ctx bounds every run.
func Schedule(ctx context.Context, c *cron.Cron, spec string, reporter *StatsReporter) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		_ = reporter.Report(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule stats job %q: %w", spec, err)
	}
	reporter.logger.InfoContext(ctx, "stats job scheduled", "schedule", spec)
	return id, nil
}
