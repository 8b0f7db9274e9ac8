package models

import "time"

// ============================================================================
// CONTACT MODEL (personal address book, independent of events)
// ============================================================================

type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Dietary   string    `json:"dietary,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateContactRequest struct {
	FirstName string   `json:"first_name" binding:"required"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email" binding:"omitempty,email"`
	Phone     string   `json:"phone"`
	Dietary   string   `json:"dietary"`
	Notes     string   `json:"notes"`
	Tags      []string `json:"tags"`
}

type UpdateContactRequest struct {
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	Dietary   *string  `json:"dietary,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type ImportContactsResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
