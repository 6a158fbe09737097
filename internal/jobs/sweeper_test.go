package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakePurger struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
	calls           int
}

func (f *fakePurger) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	f.calls++
	if f.deleteExpiredFn == nil {
		panic("DeleteExpiredSessions not configured")
	}
	return f.deleteExpiredFn(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionSweeperRun(t *testing.T) {
	p := &fakePurger{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Fatalf("expected deadline on sweep context")
			}
			return 2, nil
		},
	}

	NewSessionSweeper(p, discardLogger(), time.Second).Run()
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
}

func TestSessionSweeperRun_ErrorIsLogged(t *testing.T) {
	p := &fakePurger{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("db down")
		},
	}

	NewSessionSweeper(p, discardLogger(), 0).Run()
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
}

func TestSchedule(t *testing.T) {
	sweeper := NewSessionSweeper(&fakePurger{}, discardLogger(), time.Second)

	c, err := Schedule("@every 1h", sweeper)
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if n := len(c.Entries()); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}

	if _, err := Schedule("not a schedule", sweeper); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}
