package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/model"
	"go-content-retention/pkg/apierror"
)

// RestoreService reverses or finalizes pending quarantine moves: Withdraw
// puts an object back at its original location, PermanentDelete erases it
// before the retention window elapses.
type RestoreService struct {
	contents content.Repository
	log      *DeletionLogService
	bus      *event.InMemoryBus
}

func NewRestoreService(contents content.Repository, log *DeletionLogService, bus *event.InMemoryBus) *RestoreService {
	return &RestoreService{contents: contents, log: log, bus: bus}
}

// Withdraw restores the pending object identified by uid to the location
// recorded in its log entry and transitions the entry to withdrawn. The
// entry stays pending when the move fails, so the operation can be retried.
func (s *RestoreService) Withdraw(ctx context.Context, uid string, actor string) (model.WithdrawResult, error) {
	if strings.TrimSpace(uid) == "" {
		return model.WithdrawResult{}, apierror.New("BAD_REQUEST", "uid is required", "uid", http.StatusBadRequest)
	}

	entry, err := s.log.GetPendingEntryByUID(ctx, uid)
	if err != nil {
		return model.WithdrawResult{}, err
	}
	if entry == nil {
		return model.WithdrawResult{}, apierror.New("NOT_FOUND", "no pending deletion log entry found", uid, http.StatusNotFound)
	}

	node, err := s.contents.GetByUID(ctx, uid)
	if errors.Is(err, model.ErrNodeNotFound) {
		// The object may have been removed out-of-band since it was marked.
		return model.WithdrawResult{}, apierror.New("NOT_FOUND", "object not found", uid, http.StatusNotFound)
	}
	if err != nil {
		return model.WithdrawResult{}, err
	}

	parentSegments, originalID, err := splitOriginalPath(entry.OriginalPath)
	if err != nil {
		return model.WithdrawResult{}, apierror.New("BAD_REQUEST", "invalid original path", entry.OriginalPath, http.StatusBadRequest)
	}

	target, err := s.resolveParent(ctx, parentSegments)
	if err != nil {
		return model.WithdrawResult{}, apierror.New("NOT_FOUND",
			"original parent container not found", "/"+strings.Join(parentSegments, "/"), http.StatusNotFound)
	}

	// Restore must never silently overwrite whatever now occupies the slot.
	if _, err := s.contents.GetChild(ctx, target.UID, originalID); err == nil {
		return model.WithdrawResult{}, apierror.New("CONFLICT",
			fmt.Sprintf("an object with id %q already exists at the original location", originalID),
			entry.OriginalPath, http.StatusConflict)
	}

	pasted, err := s.contents.Move(ctx, node.UID, target.UID)
	if err != nil {
		slog.Error("error during withdrawal", "uid", uid, "title", entry.Title, "original_path", entry.OriginalPath, "error", err)
		return model.WithdrawResult{}, apierror.New("INTERNAL_ERROR", "error restoring object", "", http.StatusInternalServerError)
	}

	// The repository may still have assigned a different id on paste.
	if pasted.ID != originalID {
		if err := s.contents.Rename(ctx, node.UID, originalID); err != nil {
			slog.Error("error renaming restored object", "uid", uid, "pasted_id", pasted.ID, "original_id", originalID, "error", err)
			return model.WithdrawResult{}, apierror.New("INTERNAL_ERROR", "error restoring object", "", http.StatusInternalServerError)
		}
	}

	if _, err := s.log.UpdateEntryStatus(ctx, uid, model.StatusWithdrawn, actor); err != nil {
		slog.Error("error updating log entry after withdrawal", "uid", uid, "error", err)
		return model.WithdrawResult{}, apierror.New("INTERNAL_ERROR", "error restoring object", "", http.StatusInternalServerError)
	}

	restoredPath := "/" + strings.Join(append(parentSegments, originalID), "/")
	result := model.WithdrawResult{UID: uid, Title: entry.Title, RestoredPath: restoredPath}

	s.bus.Emit(event.TypeDeletionWithdrawn, actor, result)
	slog.Info("withdrawal successful", "uid", uid, "title", entry.Title, "restored_path", restoredPath)

	return result, nil
}

// PermanentDelete erases a pending object ahead of its retention expiry and
// transitions the entry to deleted.
func (s *RestoreService) PermanentDelete(ctx context.Context, uid string, actor string) (*model.LogEntry, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apierror.New("BAD_REQUEST", "uid is required", "uid", http.StatusBadRequest)
	}

	entry, err := s.log.GetPendingEntryByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apierror.New("NOT_FOUND", "no pending deletion log entry found", uid, http.StatusNotFound)
	}

	node, err := s.contents.GetByUID(ctx, uid)
	if errors.Is(err, model.ErrNodeNotFound) {
		return nil, apierror.New("NOT_FOUND", "object not found", uid, http.StatusNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.contents.Delete(ctx, node.UID); err != nil {
		slog.Error("error during permanent deletion", "uid", uid, "title", entry.Title, "error", err)
		return nil, apierror.New("INTERNAL_ERROR", "error deleting object", "", http.StatusInternalServerError)
	}

	updated, err := s.log.UpdateEntryStatus(ctx, uid, model.StatusDeleted, actor)
	if err != nil {
		return nil, err
	}

	s.bus.Emit(event.TypeDeletionPurged, actor, map[string]string{"uid": uid, "title": entry.Title})
	slog.Info("permanent deletion successful", "uid", uid, "title", entry.Title)

	return updated, nil
}

// splitOriginalPath splits a stored absolute path into its parent segments
// and final id. Paths with fewer than two segments are invalid: an object
// can never have lived at the repository root itself.
func splitOriginalPath(originalPath string) ([]string, string, error) {
	trimmed := strings.Trim(originalPath, "/")
	if trimmed == "" {
		return nil, "", model.ErrInvalidOriginalPath
	}

	segments := strings.Split(trimmed, "/")
	if len(segments) < 2 {
		return nil, "", model.ErrInvalidOriginalPath
	}

	return segments[:len(segments)-1], segments[len(segments)-1], nil
}

// resolveParent resolves the recorded parent path to a live container. The
// first segment may be the root's own id (strip it and walk the remainder);
// a single-segment path equal to the root id resolves to the root itself.
func (s *RestoreService) resolveParent(ctx context.Context, segments []string) (content.Node, error) {
	root, err := s.contents.Root(ctx)
	if err != nil {
		return content.Node{}, err
	}

	if segments[0] == root.ID {
		if len(segments) == 1 {
			return root, nil
		}
		return s.contents.Resolve(ctx, root.UID, segments[1:])
	}

	return s.contents.Resolve(ctx, root.UID, segments)
}
