package models

import "time"

// ============================================================================
// EVENT MODEL
// ============================================================================

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusActive, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Date           time.Time   `json:"date"`
	Location       string      `json:"location,omitempty"`
	Capacity       int         `json:"capacity"`
	Status         EventStatus `json:"status"`
	Category       string      `json:"category,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	IsPublic       bool        `json:"is_public"`
	DressCode      string      `json:"dress_code,omitempty"`
	AdditionalInfo string      `json:"additional_info,omitempty"`
	ImageURL       string      `json:"image_url,omitempty"`
	GuestCount     int         `json:"guest_count"`
	AcceptedCount  int         `json:"accepted_count"`
	DeclinedCount  int         `json:"declined_count"`
	PendingCount   int         `json:"pending_count"`
	MaybeCount     int         `json:"maybe_count"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ============================================================================
// EVENT REQUESTS
// ============================================================================

type CreateEventRequest struct {
	Title          string    `json:"title" binding:"required"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date" binding:"required"`
	Location       string    `json:"location"`
	Capacity       int       `json:"capacity"`
	Category       string    `json:"category"`
	Tags           []string  `json:"tags"`
	IsPublic       bool      `json:"is_public"`
	DressCode      string    `json:"dress_code"`
	AdditionalInfo string    `json:"additional_info"`
	ImageURL       string    `json:"image_url"`
}

type UpdateEventRequest struct {
	Title          *string     `json:"title,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Date           *time.Time  `json:"date,omitempty"`
	Location       *string     `json:"location,omitempty"`
	Capacity       *int        `json:"capacity,omitempty"`
	Status         *EventStatus `json:"status,omitempty"`
	Category       *string     `json:"category,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	IsPublic       *bool       `json:"is_public,omitempty"`
	DressCode      *string     `json:"dress_code,omitempty"`
	AdditionalInfo *string     `json:"additional_info,omitempty"`
	ImageURL       *string     `json:"image_url,omitempty"`
}
