package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/robfig/cron/v3"

	"github.com/example/room-reservations/internal/application"
)

type statsSourceStub struct {
	stats application.Stats
	err   error
	calls int
}

func (s *statsSourceStub) Stats(context.Context) (application.Stats, error) {
	s.calls++
	return s.stats, s.err
}

func TestStatsReporter_Report(t *testing.T) {
	t.Parallel()

	t.Run("logs counters", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		source := &statsSourceStub{stats: application.Stats{Pending: 3, Approved: 2, TotalRooms: 5}}
		reporter := NewStatsReporter(source, slog.New(slog.NewJSONHandler(&buf, nil)))

		if err := reporter.Report(context.Background()); err != nil {
			t.Fatalf("Report returned error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{`"job":"stats"`, `"pending":3`, `"approved":2`, `"total_rooms":5`} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %s in %s", want, out)
			}
		}
	})

	t.Run("returns and logs source failures", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		failure := &application.StoreError{Op: "count bookings", Err: errors.New("disk full")}
		reporter := NewStatsReporter(&statsSourceStub{err: failure}, slog.New(slog.NewJSONHandler(&buf, nil)))

		if err := reporter.Report(context.Background()); !errors.Is(err, application.ErrStore) {
			t.Fatalf("expected store error, got %v", err)
		}
		if !strings.Contains(buf.String(), `"error_kind":"store"`) {
			t.Fatalf("expected error kind in %s", buf.String())
		}
	})
}

func TestSchedule(t *testing.T) {
	t.Parallel()

	reporter := NewStatsReporter(&statsSourceStub{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	c := cron.New()

	if _, err := Schedule(context.Background(), c, "@every 1m", reporter); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatalf("expected one entry, got %d", len(c.Entries()))
	}

	if _, err := Schedule(context.Background(), c, "not a schedule", reporter); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}
