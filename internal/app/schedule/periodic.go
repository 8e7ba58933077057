package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrNotConfigured = errors.New("schedule: periodic job missing interval or job")

// Job is one execution of a scheduled task.
type Job func(ctx context.Context) error

// Periodic runs Job every Interval until the context is cancelled. Runs never
// overlap: a tick that arrives while a run is in flight is dropped by the
// ticker. Job errors are logged and do not stop the schedule.
type Periodic struct {
	Name       string
	Interval   time.Duration
	Job        Job
	RunOnStart bool
	Logger     *slog.Logger
}

func (p *Periodic) Run(ctx context.Context) error {
	if p.Job == nil || p.Interval <= 0 {
		return ErrNotConfigured
	}
	log := p.logger()
	log.Info("schedule started", "job", p.Name, "interval", p.Interval)
	if p.RunOnStart {
		p.runOnce(ctx, log)
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("schedule stopped", "job", p.Name)
			return ctx.Err()
		case <-ticker.C:
			p.runOnce(ctx, log)
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context, log *slog.Logger) {
	start := time.Now()
	if err := p.Job(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("scheduled job failed", "job", p.Name, "error", err, "duration", time.Since(start))
		return
	}
	log.Debug("scheduled job finished", "job", p.Name, "duration", time.Since(start))
}

func (p *Periodic) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
