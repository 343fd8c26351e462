package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (p *fakePruner) PruneOlderThan(_ context.Context, age time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, age)
	return 3, p.err
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(&fakePruner{}, time.Hour, "whenever", nil)
	assert.Error(t, err)
}

func TestScheduler_PruneEventsUsesRetention(t *testing.T) {
	pruner := &fakePruner{}
	s, err := NewScheduler(pruner, 72*time.Hour, "@daily", nil)
	require.NoError(t, err)

	s.pruneEvents()
	pruner.err = errors.New("db down")
	s.pruneEvents() // logged, not fatal

	assert.Equal(t, []time.Duration{72 * time.Hour, 72 * time.Hour}, pruner.calls)
}

func TestScheduler_RegistersJobs(t *testing.T) {
	s, err := NewScheduler(&fakePruner{}, time.Hour, "0 3 * * *", NewStatCollector())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestStatCollector(t *testing.T) {
	c := NewStatCollector()

	first := c.Latest()
	assert.False(t, first.CollectedAt.IsZero())
	assert.Greater(t, first.Goroutines, 0)
	assert.GreaterOrEqual(t, first.UptimeSeconds, 0.0)

	assert.Equal(t, first, c.Latest(), "latest is cached")

	time.Sleep(5 * time.Millisecond)
	second := c.Collect()
	assert.True(t, second.CollectedAt.After(first.CollectedAt))
}
