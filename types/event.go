package types

import "time"

// StudentEventType names a change to a student record.
type StudentEventType string

const (
	StudentCreated StudentEventType = "student.created"
	StudentUpdated StudentEventType = "student.updated"
	StudentDeleted StudentEventType = "student.deleted"
)

// StudentEvent is published after a student record changes.
type StudentEvent struct {
	// Type identifies the kind of change.
	Type StudentEventType `json:"type"`

	// StudentID is the identifier of the affected record.
	StudentID string `json:"student_id"`

	// Student is the record after the change. It is nil for deletions.
	Student *Student `json:"student,omitempty"`

	// OccurredAt is the time the change was committed to the store.
	OccurredAt time.Time `json:"occurred_at"`
}
