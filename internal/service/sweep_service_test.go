package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-content-retention/internal/model"
)

func TestSweepDeletesExpiredEntries(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	doc := f.createNode(t, root.UID, "stale", "Stale Doc")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"stale"}, true, "alice")
	require.NoError(t, err)
	f.backdateEntry(t, doc.UID, 40*24*time.Hour)

	count, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.contents.GetByUID(ctx, doc.UID)
	assert.ErrorIs(t, err, model.ErrNodeNotFound)

	entries, err := f.log.GetEntriesByStatus(ctx, model.StatusDeleted)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "system", entries[0].StatusChangedBy)
}

func TestSweepLeavesFreshEntriesAlone(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	doc := f.createNode(t, root.UID, "fresh", "Fresh Doc")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"fresh"}, true, "alice")
	require.NoError(t, err)

	count, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	entry, err := f.log.GetPendingEntryByUID(ctx, doc.UID)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestSweepMarksMissingObjectsDeleted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	doc := f.createNode(t, root.UID, "ghost", "Ghost Doc")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"ghost"}, true, "alice")
	require.NoError(t, err)
	f.backdateEntry(t, doc.UID, 40*24*time.Hour)

	// The quarantined copy vanished out-of-band.
	require.NoError(t, f.contents.Delete(ctx, doc.UID))

	count, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entry, err := f.log.GetPendingEntryByUID(ctx, doc.UID)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSweepSkipsObjectsMovedOutOfQuarantine(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	doc := f.createNode(t, root.UID, "rescued", "Rescued Doc")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"rescued"}, true, "alice")
	require.NoError(t, err)
	f.backdateEntry(t, doc.UID, 40*24*time.Hour)

	// The object was hauled out of quarantine without touching the log.
	_, err = f.contents.Move(ctx, doc.UID, root.UID)
	require.NoError(t, err)

	count, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Both the object and its pending entry survive.
	_, err = f.contents.GetByUID(ctx, doc.UID)
	require.NoError(t, err)
	entry, err := f.log.GetPendingEntryByUID(ctx, doc.UID)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestSweepWithoutQuarantineContainer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)

	count, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSweepIsolatesPerEntryFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	docA := f.createNode(t, root.UID, "doc-a", "Doc A")
	docB := f.createNode(t, root.UID, "doc-b", "Doc B")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"doc-a", "doc-b"}, true, "alice")
	require.NoError(t, err)
	f.backdateEntry(t, docA.UID, 40*24*time.Hour)
	f.backdateEntry(t, docB.UID, 40*24*time.Hour)

	// One of the two was moved out; the other is still swept.
	_, err = f.contents.Move(ctx, docA.UID, root.UID)
	require.NoError(t, err)

	count, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.contents.GetByUID(ctx, docA.UID)
	require.NoError(t, err)
	_, err = f.contents.GetByUID(ctx, docB.UID)
	assert.ErrorIs(t, err, model.ErrNodeNotFound)
}
