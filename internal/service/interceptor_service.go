package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/model"
	"go-content-retention/internal/registry"
	"go-content-retention/pkg/apierror"
)

// InterceptorService is the single choke point content removal passes
// through. Depending on the feature flag and the per-request move flag it
// either deletes directly (still logging the deletion) or relocates the
// objects into the quarantine container with a pending log entry.
type InterceptorService struct {
	contents     content.Repository
	log          *DeletionLogService
	store        registry.Store
	bus          *event.InMemoryBus
	quarantineID string
}

func NewInterceptorService(contents content.Repository, log *DeletionLogService, store registry.Store, bus *event.InMemoryBus, quarantineID string) *InterceptorService {
	return &InterceptorService{
		contents:     contents,
		log:          log,
		store:        store,
		bus:          bus,
		quarantineID: quarantineID,
	}
}

// FeatureEnabled reports whether quarantine-on-delete is switched on.
// Defaults to true when the registry record has never been written.
func (s *InterceptorService) FeatureEnabled(ctx context.Context) bool {
	enabled, _ := registry.GetBool(ctx, s.store, registry.KeyMarkedDeletionEnabled, true)
	return enabled
}

// QuarantineContainer resolves the quarantine container under the root.
// Returns model.ErrQuarantineMissing when it does not exist.
func (s *InterceptorService) QuarantineContainer(ctx context.Context) (content.Node, error) {
	return resolveQuarantine(ctx, s.contents, s.quarantineID)
}

func resolveQuarantine(ctx context.Context, contents content.Repository, quarantineID string) (content.Node, error) {
	root, err := contents.Root(ctx)
	if err != nil {
		return content.Node{}, err
	}

	container, err := contents.GetChild(ctx, root.UID, quarantineID)
	if errors.Is(err, model.ErrNodeNotFound) {
		return content.Node{}, model.ErrQuarantineMissing
	}
	if err != nil {
		return content.Node{}, err
	}
	return container, nil
}

// Delete handles a removal request for ids under containerUID. moveRequested
// is scoped to this single call; it is never stored on the service.
func (s *InterceptorService) Delete(ctx context.Context, containerUID string, ids []string, moveRequested bool, actor string) (model.DeleteOutcome, error) {
	if len(ids) == 0 {
		return model.DeleteOutcome{}, apierror.New("BAD_REQUEST", "ids are required", "ids", http.StatusBadRequest)
	}

	container, err := s.contents.GetByUID(ctx, containerUID)
	if err != nil {
		return model.DeleteOutcome{}, err
	}

	if !s.FeatureEnabled(ctx) {
		return s.directDelete(ctx, container, ids, actor, true)
	}

	if !moveRequested {
		return s.directDelete(ctx, container, ids, actor, false)
	}

	quarantine, err := s.QuarantineContainer(ctx)
	if errors.Is(err, model.ErrQuarantineMissing) {
		slog.Warn("quarantine container not found, using direct deletion")
		return s.directDelete(ctx, container, ids, actor, false)
	}
	if err != nil {
		// Unexpected repository failure resolving the quarantine container:
		// fall back to direct deletion so nothing is left unlogged.
		slog.Error("resolving quarantine container failed, falling back to direct deletion", "error", err)
		return s.directDelete(ctx, container, ids, actor, false)
	}

	outcome := model.DeleteOutcome{Moved: []string{}, Deleted: []string{}, Failed: []model.DeleteFailure{}}

	for _, id := range ids {
		node, err := s.contents.GetChild(ctx, container.UID, id)
		if err != nil {
			outcome.Failed = append(outcome.Failed, model.DeleteFailure{ID: id, Reason: err.Error()})
			slog.Error("error moving object to quarantine", "id", id, "error", err)
			continue
		}

		// The log entry is written before the move so it captures the
		// original path.
		entry, err := s.log.AddEntry(ctx, node, model.StatusPending, actor)
		if err != nil {
			outcome.Failed = append(outcome.Failed, model.DeleteFailure{ID: id, Reason: err.Error()})
			slog.Error("error logging pending deletion", "id", id, "error", err)
			continue
		}

		if _, err := s.contents.Move(ctx, node.UID, quarantine.UID); err != nil {
			outcome.Failed = append(outcome.Failed, model.DeleteFailure{ID: id, Reason: err.Error()})
			slog.Error("error moving object to quarantine", "id", id, "uid", node.UID, "error", err)
			continue
		}

		outcome.Moved = append(outcome.Moved, id)
		s.bus.Emit(event.TypeDeletionMarked, actor, entry)
		slog.Info("object moved to quarantine container", "id", id, "uid", node.UID, "title", node.TitleOrID())
	}

	return outcome, nil
}

// directDelete erases the objects immediately, logging each as deleted.
// When skipQuarantined is set, objects already inside the quarantine
// container are deleted without a fresh entry to avoid double-logging.
func (s *InterceptorService) directDelete(ctx context.Context, container content.Node, ids []string, actor string, skipQuarantined bool) (model.DeleteOutcome, error) {
	outcome := model.DeleteOutcome{Moved: []string{}, Deleted: []string{}, Failed: []model.DeleteFailure{}}

	for _, id := range ids {
		node, err := s.contents.GetChild(ctx, container.UID, id)
		if err != nil {
			outcome.Failed = append(outcome.Failed, model.DeleteFailure{ID: id, Reason: err.Error()})
			continue
		}

		logged := true
		if skipQuarantined && s.insideQuarantine(ctx, node) {
			logged = false
		}

		if logged {
			if _, err := s.log.AddEntry(ctx, node, model.StatusDeleted, actor); err != nil {
				slog.Error("error logging deletion", "id", id, "error", err)
			}
		}

		if err := s.contents.Delete(ctx, node.UID); err != nil {
			outcome.Failed = append(outcome.Failed, model.DeleteFailure{ID: id, Reason: err.Error()})
			slog.Error("error deleting object", "id", id, "uid", node.UID, "error", err)
			continue
		}

		outcome.Deleted = append(outcome.Deleted, id)
		s.bus.Emit(event.TypeDeletionDirect, actor, map[string]string{"uid": node.UID, "id": id})
	}

	return outcome, nil
}

func (s *InterceptorService) insideQuarantine(ctx context.Context, node content.Node) bool {
	quarantine, err := s.QuarantineContainer(ctx)
	if err != nil {
		return false
	}

	quarantinePath, err := s.contents.Path(ctx, quarantine.UID)
	if err != nil {
		return false
	}

	nodePath, err := s.contents.Path(ctx, node.UID)
	if err != nil {
		return false
	}

	return strings.HasPrefix(nodePath, quarantinePath+"/") || nodePath == quarantinePath
}
