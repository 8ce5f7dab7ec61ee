package models

// EventKind identifies what a notification event is about.
type EventKind string

const (
	EventHighRiskAlert        EventKind = "high_risk_alert"
	EventReviewCompleted      EventKind = "review_completed"
	EventAppointmentConfirmed EventKind = "appointment_confirmed"
)

// Priority orders notifications in the inbox.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NotificationEvent is emitted by the workflow when a transition calls
// for user-facing notice. The workflow returns emitted events from each
// operation and also forwards them to the configured dispatcher; it
// never stores them itself.
type NotificationEvent struct {
	Kind      EventKind `json:"kind"`
	UserID    string    `json:"user_id"`
	RelatedID string    `json:"related_id,omitempty"`
	Priority  Priority  `json:"priority"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
}
