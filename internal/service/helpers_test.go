package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/model"
	"go-content-retention/internal/registry"
)

const testQuarantineID = "marked-for-deletion"

type fixture struct {
	contents    *content.Memory
	store       *registry.Memory
	bus         *event.InMemoryBus
	log         *DeletionLogService
	interceptor *InterceptorService
	restore     *RestoreService
	sweep       *SweepService
	settings    *SettingsService
}

func newFixture(t *testing.T, withQuarantine bool) *fixture {
	t.Helper()

	contents := content.NewMemory("site")
	store := registry.NewMemory()
	bus := event.NewBus()

	log := NewDeletionLogService(store, contents, 30, 90)
	f := &fixture{
		contents:    contents,
		store:       store,
		bus:         bus,
		log:         log,
		interceptor: NewInterceptorService(contents, log, store, bus, testQuarantineID),
		restore:     NewRestoreService(contents, log, bus),
		sweep:       NewSweepService(contents, log, bus, testQuarantineID),
		settings:    NewSettingsService(store, contents, log, bus, testQuarantineID),
	}

	if withQuarantine {
		require.NoError(t, f.settings.EnsureQuarantineContainer(context.Background()))
	}

	return f
}

func (f *fixture) root(t *testing.T) content.Node {
	t.Helper()

	root, err := f.contents.Root(context.Background())
	require.NoError(t, err)
	return root
}

func (f *fixture) createNode(t *testing.T, parentUID string, id string, title string) content.Node {
	t.Helper()

	node, err := f.contents.Create(context.Background(), parentUID, content.Node{
		ID:          id,
		Title:       title,
		PortalType:  "Document",
		ReviewState: "published",
	})
	require.NoError(t, err)
	return node
}

// backdateEntry rewrites the stored timestamp of the entry for uid so
// retention-expiry behavior can be exercised without waiting.
func (f *fixture) backdateEntry(t *testing.T, uid string, age time.Duration) {
	t.Helper()

	log, err := f.log.GetLog(context.Background())
	require.NoError(t, err)

	found := false
	for i := range log {
		if log[i].UID == uid {
			log[i].Datetime = time.Now().Add(-age).Format(time.RFC3339Nano)
			found = true
		}
	}
	require.True(t, found, "no log entry for uid %s", uid)
	require.NoError(t, f.log.SetLog(context.Background(), log))
}

func testEntry(uid string, status string, datetime string) model.LogEntry {
	return model.LogEntry{
		UID:             uid,
		Datetime:        datetime,
		Title:           "Entry " + uid,
		PortalType:      "Document",
		OriginalPath:    "/site/" + uid,
		UserID:          "tester",
		Status:          status,
		StatusChanged:   datetime,
		StatusChangedBy: "tester",
	}
}
