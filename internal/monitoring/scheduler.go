package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// How often the stat collector refreshes its snapshot.
const statsSchedule = "@every 15s"

// EventPruner deletes activity events older than a given age.
type EventPruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Scheduler runs the background jobs: activity log pruning and system stat
// sampling.
type Scheduler struct {
	cron      *cron.Cron
	events    EventPruner
	retention time.Duration
	stats     *StatCollector
}

// NewScheduler registers the jobs. pruneSpec is a standard cron expression or
// descriptor such as "@daily". stats may be nil.
func NewScheduler(events EventPruner, retention time.Duration, pruneSpec string, stats *StatCollector) (*Scheduler, error) {
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		events:    events,
		retention: retention,
		stats:     stats,
	}

	if _, err := s.cron.AddFunc(pruneSpec, s.pruneEvents); err != nil {
		return nil, fmt.Errorf("schedule event pruning %q: %w", pruneSpec, err)
	}
	if stats != nil {
		if _, err := s.cron.AddFunc(statsSchedule, func() { stats.Collect() }); err != nil {
			return nil, fmt.Errorf("schedule stat collection: %w", err)
		}
	}
	return s, nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting background scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		log.Info().Msg("Background scheduler stopped")
	case <-ctx.Done():
		log.Warn().Msg("Background scheduler did not stop in time")
	}
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.events.PruneOlderThan(ctx, s.retention)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: Failed to prune events")
		return
	}
	log.Info().Int64("deleted", n).Dur("retention", s.retention).Msg("Scheduler: Pruned old events")
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg(msg)
}
