// Package registry is the key/value settings store backing feature flags and
// the serialized deletion log. Values are stored as raw JSON so the log can
// live under a single key as one array.
package registry

import (
	"context"
	"encoding/json"
)

// Record names used by the retention services.
const (
	KeyMarkedDeletionEnabled = "marked_deletion_enabled"
	KeyRetentionDays         = "retention_days"
	KeyDisplayDays           = "display_days"
	KeyDeletionLog           = "deletion_log"
)

type Store interface {
	// Get returns the raw JSON value for name, or nil when the record
	// has never been set.
	Get(ctx context.Context, name string) (json.RawMessage, error)
	Set(ctx context.Context, name string, value json.RawMessage) error
}

// GetBool decodes a boolean record, returning fallback when the record is
// unset or does not decode.
func GetBool(ctx context.Context, store Store, name string, fallback bool) (bool, error) {
	raw, err := store.Get(ctx, name)
	if err != nil {
		return fallback, err
	}
	if raw == nil {
		return fallback, nil
	}

	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback, nil
	}
	return value, nil
}

// GetInt decodes an integer record, returning fallback when the record is
// unset or does not decode.
func GetInt(ctx context.Context, store Store, name string, fallback int) (int, error) {
	raw, err := store.Get(ctx, name)
	if err != nil {
		return fallback, err
	}
	if raw == nil {
		return fallback, nil
	}

	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback, nil
	}
	return value, nil
}

// Set marshals value and stores it under name.
func Set(ctx context.Context, store Store, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, name, raw)
}
