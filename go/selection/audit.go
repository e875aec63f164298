package selection

import "time"

// AuditAction tags the operation recorded by an AuditEvent.
type AuditAction string

const (
	ActionPeriodCreated    AuditAction = "PERIOD_CREATED"
	ActionPeriodOpened     AuditAction = "PERIOD_OPENED"
	ActionPeriodClosed     AuditAction = "PERIOD_CLOSED"
	ActionPeriodEdited     AuditAction = "PERIOD_EDITED"
	ActionPeriodDeleted    AuditAction = "PERIOD_DELETED"
	ActionPeriodCompleted  AuditAction = "PERIOD_COMPLETED"
	ActionCommitAborted    AuditAction = "COMMIT_ABORTED"
	ActionPreferenceSaved  AuditAction = "PREFERENCE_SAVED"
	ActionManualAssignment AuditAction = "MANUAL_ASSIGNMENT"
	ActionNotificationSent AuditAction = "NOTIFICATION_SENT"
	ActionNotificationFail AuditAction = "NOTIFICATION_FAILED"
	ActionErrorSurfaced    AuditAction = "ERROR_SURFACED"
)

// AuditEvent is one append-only record of a state transition, preference
// mutation, assignment event, or notification attempt. Events are never
// mutated after insertion.
type AuditEvent struct {
	ID        int64
	Timestamp time.Time
	UserID    string
	Action    AuditAction
	Resource  string
	Details   string
}
