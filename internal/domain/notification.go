package domain

import "time"

// ============================================================
// Callback notifications
// ============================================================

// NotificationState is the lifecycle of a callback notification.
//
//	Pending -> Due (callback time <= now) -> Dismissed (user interaction)
type NotificationState string

const (
	NotificationPending   NotificationState = "pending"
	NotificationDue       NotificationState = "due"
	NotificationDismissed NotificationState = "dismissed"
)

// CallbackNotification is the view model of one scheduled callback.
type CallbackNotification struct {
	ActivityID       string            `json:"activityId"`
	CompanyName      string            `json:"companyName"`
	ReferenceID      string            `json:"referenceId"`
	AgentName        string            `json:"agentName,omitempty"`
	Callback         time.Time         `json:"callback"`
	State            NotificationState `json:"state"`
	RemainingSeconds int64             `json:"remainingSeconds"`
	Remaining        string            `json:"remaining"`
}

// CallbackDueEvent is published once when a callback becomes due.
type CallbackDueEvent struct {
	EventID     string    `json:"eventId"`
	UserID      string    `json:"userId"`
	ReferenceID string    `json:"referenceId"`
	ActivityID  string    `json:"activityId"`
	CompanyName string    `json:"companyName"`
	Callback    time.Time `json:"callback"`
	DetectedAt  time.Time `json:"detectedAt"`
}
