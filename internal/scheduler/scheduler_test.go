package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/registry"
	"go-content-retention/internal/service"
)

func newSweepService() *service.SweepService {
	contents := content.NewMemory("site")
	store := registry.NewMemory()
	bus := event.NewBus()
	log := service.NewDeletionLogService(store, contents, 30, 90)
	return service.NewSweepService(contents, log, bus, "marked-for-deletion")
}

func TestStartWithEmptyScheduleIsNoop(t *testing.T) {
	t.Parallel()

	s := New(newSweepService(), "")
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	s := New(newSweepService(), "not a cron expression")
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	s := New(newSweepService(), "0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())

	// Stop is safe to call again.
	s.Stop()
}
