package model

type DeleteRequest struct {
	IDs              []string `json:"ids"`
	MoveToQuarantine bool     `json:"move_to_quarantine"`
}

type SettingsUpdateRequest struct {
	MarkedDeletionEnabled *bool `json:"marked_deletion_enabled"`
	RetentionDays         *int  `json:"retention_days"`
	DisplayDays           *int  `json:"display_days"`
}
