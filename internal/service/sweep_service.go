package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/model"
)

// SweepService permanently erases quarantined content whose retention window
// has elapsed. Per-entry failures are logged and skipped so one bad object
// cannot abort the sweep.
type SweepService struct {
	contents     content.Repository
	log          *DeletionLogService
	bus          *event.InMemoryBus
	quarantineID string
}

func NewSweepService(contents content.Repository, log *DeletionLogService, bus *event.InMemoryBus, quarantineID string) *SweepService {
	return &SweepService{
		contents:     contents,
		log:          log,
		bus:          bus,
		quarantineID: quarantineID,
	}
}

// Run performs one sweep pass and returns the number of entries
// transitioned to deleted.
func (s *SweepService) Run(ctx context.Context) (int, error) {
	quarantine, err := resolveQuarantine(ctx, s.contents, s.quarantineID)
	if errors.Is(err, model.ErrQuarantineMissing) {
		slog.Warn("quarantine container not found, cannot run scheduled deletion")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	expired, err := s.log.GetExpiredPendingEntries(ctx)
	if err != nil {
		return 0, err
	}

	retentionDays := s.log.RetentionDays(ctx)
	if len(expired) == 0 {
		slog.Debug("no expired pending deletions found", "retention_days", retentionDays)
		return 0, nil
	}

	slog.Info("found expired pending deletions", "count", len(expired), "retention_days", retentionDays)

	quarantinePath, err := s.contents.Path(ctx, quarantine.UID)
	if err != nil {
		return 0, err
	}

	deletedCount := 0
	for _, entry := range expired {
		node, err := s.contents.GetByUID(ctx, entry.UID)
		if errors.Is(err, model.ErrNodeNotFound) {
			// Nothing left to erase; the log should still reflect reality.
			slog.Warn("object not found, marking as deleted", "uid", entry.UID)
			if _, err := s.log.UpdateEntryStatus(ctx, entry.UID, model.StatusDeleted, ""); err != nil {
				slog.Error("error updating log entry", "uid", entry.UID, "error", err)
				continue
			}
			deletedCount++
			continue
		}
		if err != nil {
			slog.Error("error resolving object", "uid", entry.UID, "error", err)
			continue
		}

		objectPath, err := s.contents.Path(ctx, node.UID)
		if err != nil {
			slog.Error("error resolving object path", "uid", entry.UID, "error", err)
			continue
		}

		// The entry's object may have been moved out of quarantine since it
		// was marked; such objects must not be erased.
		if objectPath != quarantinePath && !strings.HasPrefix(objectPath, quarantinePath+"/") {
			slog.Warn("object is not in quarantine container, skipping", "uid", entry.UID, "path", objectPath)
			continue
		}

		if err := s.contents.Delete(ctx, node.UID); err != nil {
			slog.Error("error deleting object", "uid", entry.UID, "error", err)
			continue
		}

		slog.Info("object permanently deleted",
			"uid", entry.UID,
			"title", entry.Title,
			"original_path", entry.OriginalPath,
		)

		if _, err := s.log.UpdateEntryStatus(ctx, entry.UID, model.StatusDeleted, ""); err != nil {
			slog.Error("error updating log entry", "uid", entry.UID, "error", err)
			continue
		}

		deletedCount++
		s.bus.Emit(event.TypeDeletionPurged, "system", map[string]string{"uid": entry.UID, "title": entry.Title})
	}

	slog.Info("scheduled deletion completed", "deleted_count", deletedCount)
	s.bus.Emit(event.TypeSweepCompleted, "system", model.SweepResult{DeletedCount: deletedCount})

	return deletedCount, nil
}
