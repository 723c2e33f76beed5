package audit

import "time"

// EntryResponse is an audit entry resolved against the user store for
// admin review. Entries whose owner was deleted render "Unknown User";
// unattributed entries render "System".
type EntryResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserEmail string    `json:"user_email"`
	Action    string    `json:"action"`
	Status    Status    `json:"status"`
	Details   string    `json:"details"`
}

// NotificationResponse is a humanized recent-activity feed item.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
