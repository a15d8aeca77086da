package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJanitorSchedule runs the janitor every fifteen minutes.
const DefaultJanitorSchedule = "*/15 * * * *"

// Janitor deletes expired sessions from a store on a cron schedule.
type Janitor struct {
	store  Store
	logger *slog.Logger
	cron   *cron.Cron
}

// NewJanitor creates a janitor for store. schedule is a five field cron
// expression; empty means DefaultJanitorSchedule.
func NewJanitor(store Store, schedule string, logger *slog.Logger) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	j := &Janitor{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
	if _, err := j.cron.AddFunc(schedule, func() { _, _ = j.Sweep(context.Background()) }); err != nil {
		return nil, errors.Join(ErrSchedule, err)
	}
	return j, nil
}

// Sweep deletes expired sessions once.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.ErrorContext(ctx, "session sweep failed", slog.Any("error", err))
		return 0, err
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "expired sessions deleted", slog.Int64("count", n))
	}
	return n, nil
}

// Start runs the schedule in the background. It fits a server startup hook.
func (j *Janitor) Start(context.Context) error {
	j.cron.Start()
	return nil
}

// Shutdown stops the schedule and waits for a running sweep or ctx.
func (j *Janitor) Shutdown(ctx context.Context) error {
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
