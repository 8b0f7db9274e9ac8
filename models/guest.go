package models

import "time"

// ============================================================================
// GUEST MODEL
// ============================================================================

type GuestStatus string

const (
	GuestStatusPending  GuestStatus = "pending"
	GuestStatusAccepted GuestStatus = "accepted"
	GuestStatusDeclined GuestStatus = "declined"
	GuestStatusMaybe    GuestStatus = "maybe"
)

func (s GuestStatus) Valid() bool {
	switch s {
	case GuestStatusPending, GuestStatusAccepted, GuestStatusDeclined, GuestStatusMaybe:
		return true
	}
	return false
}

type Guest struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	EventID     string      `json:"event_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Status      GuestStatus `json:"status"`
	InvitedAt   time.Time   `json:"invited_at"`
	RespondedAt *time.Time  `json:"responded_at,omitempty"`
	PlusOne     *PlusOne    `json:"plus_one,omitempty"`
	Dietary     string      `json:"dietary,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	RSVPToken   string      `json:"-"` // Opaque token for the public response link
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type PlusOne struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ============================================================================
// GUEST REQUESTS
// ============================================================================

type CreateGuestRequest struct {
	Name    string   `json:"name" binding:"required"`
	Email   string   `json:"email" binding:"required,email"`
	Phone   string   `json:"phone"`
	PlusOne *PlusOne `json:"plus_one,omitempty"`
	Dietary string   `json:"dietary"`
	Notes   string   `json:"notes"`
}

type UpdateGuestRequest struct {
	Name    *string      `json:"name,omitempty"`
	Email   *string      `json:"email,omitempty"`
	Phone   *string      `json:"phone,omitempty"`
	Status  *GuestStatus `json:"status,omitempty"`
	PlusOne *PlusOne     `json:"plus_one,omitempty"`
	Dietary *string      `json:"dietary,omitempty"`
	Notes   *string      `json:"notes,omitempty"`
}

// RSVPRequest is the body of the public, token-authenticated response link.
type RSVPRequest struct {
	Status  GuestStatus `json:"status" binding:"required"`
	PlusOne *PlusOne    `json:"plus_one,omitempty"`
	Dietary string      `json:"dietary"`
	Notes   string      `json:"notes"`
}

// RSVPView is what the invitation link shows before the guest responds.
type RSVPView struct {
	GuestName     string      `json:"guest_name"`
	Status        GuestStatus `json:"status"`
	EventTitle    string      `json:"event_title"`
	EventDate     time.Time   `json:"event_date"`
	EventLocation string      `json:"event_location,omitempty"`
	DressCode     string      `json:"dress_code,omitempty"`
}
