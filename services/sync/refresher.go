package syncsvc

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core"
)

// Source is reloaded periodically. Refresh reports whether a reload happened.
type Source interface {
	Refresh(ctx context.Context) (bool, error)
}

// Refresher periodically reloads the forest (and so the local cache) from the settings
// store, so learner sessions see published changes without a restart.
type Refresher struct {
	scheduler *gocron.Scheduler
	source    Source
	logger    core.Logger
	timeout   time.Duration
}

func NewRefresher(source Source, logger core.Logger) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		logger:    logger,
		timeout:   30 * time.Second,
	}
}

// Start schedules the refresh every interval, first run after one interval.
func (r *Refresher) Start(interval time.Duration) error {
	if interval <= 0 {
		return errors.Errorf("invalid refresh interval %s", interval)
	}
	if _, err := r.scheduler.Every(interval).WaitForSchedule().SingletonMode().Do(r.run); err != nil {
		return errors.Wrap(err, "scheduling refresh")
	}
	r.scheduler.StartAsync()
	return nil
}

func (r *Refresher) Stop() {
	r.scheduler.Stop()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	reloaded, err := r.source.Refresh(ctx)
	switch {
	case err != nil:
		r.logger.Warn("refreshing forest", err)
	case reloaded:
		r.logger.Debug("forest refreshed")
	default:
		r.logger.Debug("forest refresh skipped, unsaved edits or save in flight")
	}
}
