package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-content-retention/internal/content"
	"go-content-retention/internal/model"
	"go-content-retention/internal/registry"
)

// DeletionLogService is the single source of truth for the delete-lifecycle
// audit trail. The whole log is persisted as one JSON array under a registry
// key; every mutation is a read-modify-write of that array, serialized
// through a per-service mutex so concurrent writers cannot lose updates.
type DeletionLogService struct {
	store    registry.Store
	contents content.Repository

	defaultRetentionDays int
	defaultDisplayDays   int

	mu sync.Mutex
}

func NewDeletionLogService(store registry.Store, contents content.Repository, defaultRetentionDays int, defaultDisplayDays int) *DeletionLogService {
	if defaultRetentionDays < 1 {
		defaultRetentionDays = 30
	}
	if defaultDisplayDays < 1 {
		defaultDisplayDays = 90
	}

	return &DeletionLogService{
		store:                store,
		contents:             contents,
		defaultRetentionDays: defaultRetentionDays,
		defaultDisplayDays:   defaultDisplayDays,
	}
}

// GetLog returns the complete deletion log, empty when never written.
func (s *DeletionLogService) GetLog(ctx context.Context) ([]model.LogEntry, error) {
	raw, err := s.store.Get(ctx, registry.KeyDeletionLog)
	if err != nil {
		return nil, fmt.Errorf("read deletion log: %w", err)
	}
	if raw == nil {
		return []model.LogEntry{}, nil
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode deletion log: %w", err)
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return entries, nil
}

// SetLog replaces the stored log wholesale after schema validation.
func (s *DeletionLogService) SetLog(ctx context.Context, entries []model.LogEntry) error {
	if err := model.ValidateLog(entries); err != nil {
		return err
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode deletion log: %w", err)
	}
	if err := s.store.Set(ctx, registry.KeyDeletionLog, raw); err != nil {
		return fmt.Errorf("write deletion log: %w", err)
	}
	return nil
}

// RetentionDays returns the configured retention window in days.
func (s *DeletionLogService) RetentionDays(ctx context.Context) int {
	days, _ := registry.GetInt(ctx, s.store, registry.KeyRetentionDays, s.defaultRetentionDays)
	if days < 1 {
		return s.defaultRetentionDays
	}
	return days
}

// DisplayDays returns the dashboard display window in days.
func (s *DeletionLogService) DisplayDays(ctx context.Context) int {
	days, _ := registry.GetInt(ctx, s.store, registry.KeyDisplayDays, s.defaultDisplayDays)
	if days < 1 {
		return s.defaultDisplayDays
	}
	return days
}

// AddEntry snapshots the node's metadata and appends a new entry with the
// given status. Optional metadata that cannot be resolved falls back to
// empty/zero values; the entry itself is always written.
func (s *DeletionLogService) AddEntry(ctx context.Context, node content.Node, status string, userID string) (model.LogEntry, error) {
	if userID == "" {
		userID = "system"
	}
	now := time.Now().Format(time.RFC3339Nano)

	originalPath, err := s.contents.Path(ctx, node.UID)
	if err != nil {
		originalPath = "/" + node.ID
	}

	subobjectCount := 0
	if childIDs, err := s.contents.ChildIDs(ctx, node.UID); err == nil {
		subobjectCount = len(childIDs)
	}

	entry := model.LogEntry{
		UID:             node.UID,
		Datetime:        now,
		Title:           node.TitleOrID(),
		PortalType:      node.PortalType,
		OriginalPath:    originalPath,
		UserID:          userID,
		SubobjectCount:  subobjectCount,
		ReviewState:     node.ReviewState,
		Status:          status,
		StatusChanged:   now,
		StatusChangedBy: userID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.GetLog(ctx)
	if err != nil {
		return model.LogEntry{}, err
	}

	log = append(log, entry)
	if err := s.SetLog(ctx, log); err != nil {
		return model.LogEntry{}, err
	}

	slog.Info("deletion log entry added",
		"uid", entry.UID,
		"title", entry.Title,
		"portal_type", entry.PortalType,
		"original_path", entry.OriginalPath,
		"user_id", entry.UserID,
		"subobject_count", entry.SubobjectCount,
		"review_state", entry.ReviewState,
		"status", entry.Status,
	)

	return entry, nil
}

// UpdateEntryStatus transitions the most recent pending entry for uid to
// newStatus and returns it. When no pending entry exists (already
// transitioned, or unknown uid) it returns nil without error, so repeat
// calls are safe no-ops.
func (s *DeletionLogService) UpdateEntryStatus(ctx context.Context, uid string, newStatus string, userID string) (*model.LogEntry, error) {
	if userID == "" {
		userID = "system"
	}
	now := time.Now().Format(time.RFC3339Nano)

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.GetLog(ctx)
	if err != nil {
		return nil, err
	}

	for i := len(log) - 1; i >= 0; i-- {
		if log[i].UID != uid || log[i].Status != model.StatusPending {
			continue
		}

		oldStatus := log[i].Status
		log[i].Status = newStatus
		log[i].StatusChanged = now
		log[i].StatusChangedBy = userID

		if err := s.SetLog(ctx, log); err != nil {
			return nil, err
		}

		slog.Info("deletion log entry status updated",
			"uid", uid,
			"title", log[i].Title,
			"old_status", oldStatus,
			"new_status", newStatus,
			"changed_by", userID,
		)

		entry := log[i]
		return &entry, nil
	}

	return nil, nil
}

// GetEntriesByStatus returns all entries currently in the given status.
func (s *DeletionLogService) GetEntriesByStatus(ctx context.Context, status string) ([]model.LogEntry, error) {
	log, err := s.GetLog(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]model.LogEntry, 0)
	for _, entry := range log {
		if entry.Status == status {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// GetPendingEntryByUID returns the most recent pending entry for uid,
// scanning from the end of the log, or nil when none exists.
func (s *DeletionLogService) GetPendingEntryByUID(ctx context.Context, uid string) (*model.LogEntry, error) {
	log, err := s.GetLog(ctx)
	if err != nil {
		return nil, err
	}

	for i := len(log) - 1; i >= 0; i-- {
		if log[i].UID == uid && log[i].Status == model.StatusPending {
			entry := log[i]
			return &entry, nil
		}
	}
	return nil, nil
}

// GetEntriesForDisplay filters entries to the last days days. Entries with
// unparsable timestamps are kept: silently hiding an audit record is worse
// than mis-filtering it.
func (s *DeletionLogService) GetEntriesForDisplay(ctx context.Context, days int) ([]model.LogEntry, error) {
	if days < 1 {
		days = s.DisplayDays(ctx)
	}

	log, err := s.GetLog(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	filtered := make([]model.LogEntry, 0, len(log))
	for _, entry := range log {
		entryTime, err := model.ParseEntryTime(entry.Datetime)
		if err != nil || !entryTime.Before(cutoff) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// EnrichCurrentPaths annotates pending entries with the object's present
// location (inside quarantine). Entries whose object cannot be resolved are
// returned untouched.
func (s *DeletionLogService) EnrichCurrentPaths(ctx context.Context, entries []model.LogEntry) []model.LogEntry {
	enriched := make([]model.LogEntry, len(entries))
	copy(enriched, entries)

	for i := range enriched {
		if enriched[i].Status != model.StatusPending {
			continue
		}
		if currentPath, err := s.contents.Path(ctx, enriched[i].UID); err == nil {
			enriched[i].CurrentPath = currentPath
		}
	}
	return enriched
}

// GetExpiredPendingEntries returns pending entries older than the retention
// window. Entries whose timestamp cannot be parsed are dropped with a
// warning: erasing content whose age is unknown is unsafe.
func (s *DeletionLogService) GetExpiredPendingEntries(ctx context.Context) ([]model.LogEntry, error) {
	pending, err := s.GetEntriesByStatus(ctx, model.StatusPending)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays(ctx))
	expired := make([]model.LogEntry, 0)
	for _, entry := range pending {
		entryTime, err := model.ParseEntryTime(entry.Datetime)
		if err != nil {
			slog.Warn("could not parse datetime for deletion log entry", "uid", entry.UID)
			continue
		}
		if entryTime.Before(cutoff) {
			expired = append(expired, entry)
		}
	}
	return expired, nil
}
