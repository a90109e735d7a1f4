package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-content-retention/internal/model"
	"go-content-retention/pkg/apierror"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestSettingsDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)

	settings, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.MarkedDeletionEnabled)
	assert.Equal(t, 30, settings.RetentionDays)
	assert.Equal(t, 90, settings.DisplayDays)
	assert.Equal(t, 0, settings.PendingDeletionsCount)
}

func TestSettingsUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)

	settings, err := f.settings.Set(context.Background(), model.SettingsUpdateRequest{
		RetentionDays: intPtr(7),
		DisplayDays:   intPtr(30),
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 7, settings.RetentionDays)
	assert.Equal(t, 30, settings.DisplayDays)
	assert.True(t, settings.MarkedDeletionEnabled)
}

func TestSettingsUpdateRejectsEmptyRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)

	_, err := f.settings.Set(context.Background(), model.SettingsUpdateRequest{}, "admin")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestSettingsUpdateRejectsNonPositiveDays(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)

	_, err := f.settings.Set(context.Background(), model.SettingsUpdateRequest{RetentionDays: intPtr(0)}, "admin")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)

	_, err = f.settings.Set(context.Background(), model.SettingsUpdateRequest{DisplayDays: intPtr(-5)}, "admin")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestDisableRefusedWhilePendingDeletionsExist(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	doc := f.createNode(t, root.UID, "doc", "Doc")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"doc"}, true, "alice")
	require.NoError(t, err)

	_, err = f.settings.Set(ctx, model.SettingsUpdateRequest{MarkedDeletionEnabled: boolPtr(false)}, "admin")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)

	// Resolving the pending entry unblocks the toggle.
	_, err = f.restore.Withdraw(ctx, doc.UID, "alice")
	require.NoError(t, err)

	settings, err := f.settings.Set(ctx, model.SettingsUpdateRequest{MarkedDeletionEnabled: boolPtr(false)}, "admin")
	require.NoError(t, err)
	assert.False(t, settings.MarkedDeletionEnabled)
}

func TestEnableCreatesQuarantineContainer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	ctx := context.Background()
	root := f.root(t)

	_, err := f.contents.GetChild(ctx, root.UID, testQuarantineID)
	require.ErrorIs(t, err, model.ErrNodeNotFound)

	_, err = f.settings.Set(ctx, model.SettingsUpdateRequest{MarkedDeletionEnabled: boolPtr(true)}, "admin")
	require.NoError(t, err)

	container, err := f.contents.GetChild(ctx, root.UID, testQuarantineID)
	require.NoError(t, err)
	assert.Equal(t, "Marked for Deletion", container.Title)
	assert.Equal(t, "Folder", container.PortalType)
}

func TestEnsureQuarantineContainerIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.settings.EnsureQuarantineContainer(ctx))
	require.NoError(t, f.settings.EnsureQuarantineContainer(ctx))

	root := f.root(t)
	ids, err := f.contents.ChildIDs(ctx, root.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{testQuarantineID}, ids)
}

func TestSettingsReportPendingCount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	ctx := context.Background()
	root := f.root(t)
	f.createNode(t, root.UID, "a", "A")
	f.createNode(t, root.UID, "b", "B")

	_, err := f.interceptor.Delete(ctx, root.UID, []string{"a", "b"}, true, "alice")
	require.NoError(t, err)

	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, settings.PendingDeletionsCount)
}
