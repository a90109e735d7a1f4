package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/model"
	"go-content-retention/internal/registry"
	"go-content-retention/pkg/apierror"
)

const quarantineTitle = "Marked for Deletion"

// SettingsService reads and updates the retention feature configuration in
// the registry. Disabling the feature is refused while pending deletions
// exist, and enabling it makes sure the quarantine container is in place.
type SettingsService struct {
	store        registry.Store
	contents     content.Repository
	log          *DeletionLogService
	bus          *event.InMemoryBus
	quarantineID string
}

func NewSettingsService(store registry.Store, contents content.Repository, log *DeletionLogService, bus *event.InMemoryBus, quarantineID string) *SettingsService {
	return &SettingsService{
		store:        store,
		contents:     contents,
		log:          log,
		bus:          bus,
		quarantineID: quarantineID,
	}
}

func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	enabled, err := registry.GetBool(ctx, s.store, registry.KeyMarkedDeletionEnabled, true)
	if err != nil {
		return model.Settings{}, err
	}

	pending, err := s.log.GetEntriesByStatus(ctx, model.StatusPending)
	if err != nil {
		return model.Settings{}, err
	}

	return model.Settings{
		MarkedDeletionEnabled: enabled,
		RetentionDays:         s.log.RetentionDays(ctx),
		DisplayDays:           s.log.DisplayDays(ctx),
		PendingDeletionsCount: len(pending),
	}, nil
}

func (s *SettingsService) Set(ctx context.Context, req model.SettingsUpdateRequest, actor string) (model.Settings, error) {
	if req.MarkedDeletionEnabled == nil && req.RetentionDays == nil && req.DisplayDays == nil {
		return model.Settings{}, apierror.New("BAD_REQUEST", "no settings provided", "", http.StatusBadRequest)
	}

	if req.RetentionDays != nil && *req.RetentionDays < 1 {
		return model.Settings{}, apierror.New("BAD_REQUEST", "retention_days must be at least 1",
			fmt.Sprintf("%d", *req.RetentionDays), http.StatusBadRequest)
	}
	if req.DisplayDays != nil && *req.DisplayDays < 1 {
		return model.Settings{}, apierror.New("BAD_REQUEST", "display_days must be at least 1",
			fmt.Sprintf("%d", *req.DisplayDays), http.StatusBadRequest)
	}

	if req.MarkedDeletionEnabled != nil && !*req.MarkedDeletionEnabled {
		// Disabling with in-flight quarantine state would orphan it.
		pending, err := s.log.GetEntriesByStatus(ctx, model.StatusPending)
		if err != nil {
			return model.Settings{}, err
		}
		if len(pending) > 0 {
			return model.Settings{}, apierror.New("CONFLICT",
				"pending deletions exist; resolve them before disabling the feature",
				fmt.Sprintf("pending_count=%d", len(pending)), http.StatusConflict)
		}
	}

	if req.MarkedDeletionEnabled != nil {
		if err := registry.Set(ctx, s.store, registry.KeyMarkedDeletionEnabled, *req.MarkedDeletionEnabled); err != nil {
			return model.Settings{}, err
		}
		slog.Info("marked deletion feature toggled", "enabled", *req.MarkedDeletionEnabled, "actor", actor)
	}
	if req.RetentionDays != nil {
		if err := registry.Set(ctx, s.store, registry.KeyRetentionDays, *req.RetentionDays); err != nil {
			return model.Settings{}, err
		}
	}
	if req.DisplayDays != nil {
		if err := registry.Set(ctx, s.store, registry.KeyDisplayDays, *req.DisplayDays); err != nil {
			return model.Settings{}, err
		}
	}

	if req.MarkedDeletionEnabled != nil && *req.MarkedDeletionEnabled {
		if err := s.EnsureQuarantineContainer(ctx); err != nil {
			return model.Settings{}, err
		}
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	s.bus.Emit(event.TypeSettingsChanged, actor, settings)
	return settings, nil
}

// EnsureQuarantineContainer creates the quarantine container under the root
// when it does not exist yet.
func (s *SettingsService) EnsureQuarantineContainer(ctx context.Context) error {
	root, err := s.contents.Root(ctx)
	if err != nil {
		return err
	}

	_, err = s.contents.GetChild(ctx, root.UID, s.quarantineID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNodeNotFound) {
		return err
	}

	_, err = s.contents.Create(ctx, root.UID, content.Node{
		ID:         s.quarantineID,
		Title:      quarantineTitle,
		PortalType: "Folder",
	})
	if err != nil {
		return fmt.Errorf("create quarantine container: %w", err)
	}

	slog.Info("quarantine container created", "id", s.quarantineID)
	return nil
}
