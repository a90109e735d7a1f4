package model

import (
	"fmt"
	"time"
)

// Entry statuses. An entry starts as pending (quarantine case) or deleted
// (direct-delete case) and only ever moves pending -> deleted or
// pending -> withdrawn. Both targets are terminal.
const (
	StatusPending   = "pending"
	StatusDeleted   = "deleted"
	StatusWithdrawn = "withdrawn"
)

// LogEntry is one record in the deletion log. The metadata fields are a
// snapshot taken at interception time and are never recomputed afterwards;
// only Status, StatusChanged and StatusChangedBy mutate.
type LogEntry struct {
	UID             string `json:"uid"`
	Datetime        string `json:"datetime"`
	Title           string `json:"title"`
	PortalType      string `json:"portal_type"`
	OriginalPath    string `json:"original_path"`
	UserID          string `json:"user_id"`
	SubobjectCount  int    `json:"subobject_count"`
	ReviewState     string `json:"review_state"`
	Status          string `json:"status"`
	StatusChanged   string `json:"status_changed"`
	StatusChangedBy string `json:"status_changed_by"`

	// CurrentPath is only populated when listing the log: for pending
	// entries it holds the object's present location in quarantine.
	CurrentPath string `json:"current_path,omitempty"`
}

// ValidStatus reports whether status is one of the three lifecycle values.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusDeleted, StatusWithdrawn:
		return true
	}
	return false
}

// Validate checks the entry against the persisted log schema: required
// fields present and status constrained to the enum.
func (e LogEntry) Validate() error {
	if e.UID == "" {
		return fmt.Errorf("%w: uid is required", ErrInvalidLogEntry)
	}
	if e.Datetime == "" {
		return fmt.Errorf("%w: datetime is required", ErrInvalidLogEntry)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidLogEntry)
	}
	if e.PortalType == "" {
		return fmt.Errorf("%w: portal_type is required", ErrInvalidLogEntry)
	}
	if e.OriginalPath == "" {
		return fmt.Errorf("%w: original_path is required", ErrInvalidLogEntry)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidLogEntry)
	}
	if !ValidStatus(e.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidLogEntry, e.Status)
	}
	return nil
}

// ValidateLog validates every entry of a log about to be persisted.
func ValidateLog(entries []LogEntry) error {
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// ParseEntryTime parses the timestamp format written by the log service,
// accepting the second-precision form for entries written by older builds.
func ParseEntryTime(raw string) (time.Time, error) {
	if value, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return value, nil
	}
	return time.Parse(time.RFC3339, raw)
}
