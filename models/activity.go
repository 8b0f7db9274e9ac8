package models

import "time"

// ============================================================================
// ACTIVITY MODEL (append-only audit trail)
// ============================================================================

// ActivityType is a closed set. NotificationFromActivity switches over it
// exhaustively; add new kinds there as well.
type ActivityType string

const (
	ActivityEventCreated   ActivityType = "event_created"
	ActivityEventUpdated   ActivityType = "event_updated"
	ActivityEventCancelled ActivityType = "event_cancelled"
	ActivityEventDeleted   ActivityType = "event_deleted"
	ActivityGuestAdded     ActivityType = "guest_added"
	ActivityGuestResponded ActivityType = "guest_responded"
	ActivityGuestRemoved   ActivityType = "guest_removed"
	ActivityContactAdded   ActivityType = "contact_added"
	ActivityContactUpdated ActivityType = "contact_updated"
	ActivityContactRemoved ActivityType = "contact_removed"
)

type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	EventID   string       `json:"event_id,omitempty"`
	GuestID   string       `json:"guest_id,omitempty"`
	ContactID string       `json:"contact_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
