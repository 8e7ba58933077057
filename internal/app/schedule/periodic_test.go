package schedule_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelquote/internal/app/schedule"
)

func TestPeriodicRequiresJobAndInterval(t *testing.T) {
	require.ErrorIs(t, (&schedule.Periodic{Interval: time.Second}).Run(context.Background()), schedule.ErrNotConfigured)
	job := func(context.Context) error { return nil }
	require.ErrorIs(t, (&schedule.Periodic{Job: job}).Run(context.Background()), schedule.ErrNotConfigured)
}

func TestPeriodicRunsOnStart(t *testing.T) {
	var runs atomic.Int32
	p := &schedule.Periodic{
		Name:       "test",
		Interval:   time.Hour,
		RunOnStart: true,
		Job: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	require.Equal(t, int32(1), runs.Load())
}

func TestPeriodicKeepsRunningAfterJobError(t *testing.T) {
	var runs atomic.Int32
	p := &schedule.Periodic{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Job: func(context.Context) error {
			runs.Add(1)
			return errors.New("store unavailable")
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
}

func TestPeriodicNeverOverlaps(t *testing.T) {
	var active, maxActive, runs atomic.Int32
	p := &schedule.Periodic{
		Interval: time.Millisecond,
		Job: func(context.Context) error {
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			runs.Add(1)
			return nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-errc
	require.Equal(t, int32(1), maxActive.Load())
}
