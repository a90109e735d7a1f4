package model

// Settings is the feature configuration kept in the registry, plus the
// derived pending count reported alongside it.
type Settings struct {
	MarkedDeletionEnabled bool `json:"marked_deletion_enabled"`
	RetentionDays         int  `json:"retention_days"`
	DisplayDays           int  `json:"display_days"`
	PendingDeletionsCount int  `json:"pending_deletions_count"`
}

// DeleteOutcome reports how an intercepted removal request was handled.
type DeleteOutcome struct {
	Moved   []string        `json:"moved"`
	Deleted []string        `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}

type DeleteFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// WithdrawResult is returned by a successful withdraw.
type WithdrawResult struct {
	UID          string `json:"uid"`
	Title        string `json:"title"`
	RestoredPath string `json:"restored_path"`
}

// SweepResult summarises one sweep invocation.
type SweepResult struct {
	DeletedCount int `json:"deleted_count"`
}
