package event

type Type string

const (
	TypeDeletionMarked    Type = "deletion.marked"    // moved to quarantine, entry pending
	TypeDeletionDirect    Type = "deletion.direct"    // deleted immediately, entry deleted
	TypeDeletionWithdrawn Type = "deletion.withdrawn" // restored to original location
	TypeDeletionPurged    Type = "deletion.purged"    // permanently erased from quarantine
	TypeSweepCompleted    Type = "sweep.completed"
	TypeSettingsChanged   Type = "settings.changed"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"` // Who triggered the event
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
