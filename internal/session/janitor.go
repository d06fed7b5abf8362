package session

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Janitor periodically sweeps idle sessions out of a Store.
type Janitor struct {
	scheduler gocron.Scheduler
	store     *Store
	logger    *zap.Logger
}

// NewJanitor schedules a sweep of store every interval. Call Start to run it.
func NewJanitor(store *Store, interval time.Duration, logger *zap.Logger) (*Janitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid sweep interval %s", interval)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	j := &Janitor{scheduler: s, store: store, logger: logger}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.sweep),
		gocron.WithName("session-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("creating sweep job: %w", err)
	}

	return j, nil
}

func (j *Janitor) Start() {
	j.logger.Info("starting session janitor")
	j.scheduler.Start()
}

// Stop waits for a running sweep to finish and shuts the scheduler down.
func (j *Janitor) Stop() error {
	j.logger.Info("stopping session janitor")
	return j.scheduler.Shutdown()
}

func (j *Janitor) sweep() {
	removed := j.store.Sweep()
	if removed == 0 {
		return
	}

	j.logger.Info("evicted idle sessions",
		zap.Int("evicted", removed),
		zap.Int("active", j.store.Len()),
	)
}
