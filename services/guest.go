package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"partypass-api/models"
	"partypass-api/utils"

	"github.com/google/uuid"
)

type GuestService struct {
	db            *sql.DB
	activities    *ActivityService
	notifications *NotificationService
}

func NewGuestService(db *sql.DB, activities *ActivityService, notifications *NotificationService) *GuestService {
	return &GuestService{db: db, activities: activities, notifications: notifications}
}

const guestColumns = `
	id, user_id, event_id, name, email, phone, status, invited_at, responded_at,
	plus_one_name, plus_one_email, dietary, notes, rsvp_token, created_at, updated_at
`

func scanGuest(row interface{ Scan(...any) error }) (*models.Guest, error) {
	var g models.Guest
	var plusOneName, plusOneEmail string
	err := row.Scan(
		&g.ID, &g.UserID, &g.EventID, &g.Name, &g.Email, &g.Phone, &g.Status,
		&g.InvitedAt, &g.RespondedAt, &plusOneName, &plusOneEmail,
		&g.Dietary, &g.Notes, &g.RSVPToken, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if plusOneName != "" {
		g.PlusOne = &models.PlusOne{Name: plusOneName, Email: plusOneEmail}
	}
	return &g, nil
}

// statusCounterColumn maps an RSVP status to the event counter it occupies.
func statusCounterColumn(status models.GuestStatus) string {
	switch status {
	case models.GuestStatusAccepted:
		return "accepted_count"
	case models.GuestStatusDeclined:
		return "declined_count"
	case models.GuestStatusMaybe:
		return "maybe_count"
	default:
		return "pending_count"
	}
}

// Create adds a pending guest to an owned event. The guest insert and the
// counter increments commit in the same transaction so the event counters
// stay consistent with the guest set.
func (s *GuestService) Create(ctx context.Context, userID, eventID string, req models.CreateGuestRequest) (*models.Guest, error) {
	var eventTitle string
	err := s.db.QueryRowContext(ctx,
		`SELECT title FROM events WHERE id = $1 AND user_id = $2`, eventID, userID).Scan(&eventTitle)
	if err != nil {
		return nil, err
	}

	guest := &models.Guest{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    models.GuestStatusPending,
		InvitedAt: time.Now(),
		PlusOne:   req.PlusOne,
		Dietary:   req.Dietary,
		Notes:     req.Notes,
		RSVPToken: uuid.New().String(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	var plusOneName, plusOneEmail string
	if guest.PlusOne != nil {
		plusOneName = guest.PlusOne.Name
		plusOneEmail = guest.PlusOne.Email
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO guests (id, user_id, event_id, name, email, phone, status, invited_at,
				plus_one_name, plus_one_email, dietary, notes, rsvp_token, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		if _, err := tx.ExecContext(ctx, insert,
			guest.ID, guest.UserID, guest.EventID, guest.Name, guest.Email, guest.Phone,
			guest.Status, guest.InvitedAt, plusOneName, plusOneEmail,
			guest.Dietary, guest.Notes, guest.RSVPToken, guest.CreatedAt, guest.UpdatedAt,
		); err != nil {
			return err
		}

		counters := `
			UPDATE events
			SET guest_count = guest_count + 1, pending_count = pending_count + 1, updated_at = NOW()
			WHERE id = $1
		`
		_, err := tx.ExecContext(ctx, counters, eventID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	s.recordActivity(ctx, &models.Activity{
		UserID:  userID,
		Type:    models.ActivityGuestAdded,
		Message: fmt.Sprintf("%s was invited to %q", guest.Name, eventTitle),
		EventID: eventID,
		GuestID: guest.ID,
	})

	return guest, nil
}

func (s *GuestService) GetByID(ctx context.Context, id, userID string) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1 AND user_id = $2`
	return scanGuest(s.db.QueryRowContext(ctx, query, id, userID))
}

func (s *GuestService) ListByEvent(ctx context.Context, eventID, userID string) ([]models.Guest, error) {
	query := `SELECT ` + guestColumns + `
		FROM guests
		WHERE event_id = $1 AND user_id = $2
		ORDER BY invited_at
	`

	rows, err := s.db.QueryContext(ctx, query, eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := []models.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}

	return guests, rows.Err()
}

// Update applies non-nil fields. A status change moves one unit between the
// event's status counters in the same transaction; guest_count is untouched.
func (s *GuestService) Update(ctx context.Context, id, userID string, req models.UpdateGuestRequest) (*models.Guest, error) {
	guest, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	oldStatus := guest.Status
	if req.Name != nil {
		guest.Name = *req.Name
	}
	if req.Email != nil {
		guest.Email = *req.Email
	}
	if req.Phone != nil {
		guest.Phone = *req.Phone
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("invalid RSVP status: %s", *req.Status)
		}
		guest.Status = *req.Status
	}
	if req.PlusOne != nil {
		guest.PlusOne = req.PlusOne
	}
	if req.Dietary != nil {
		guest.Dietary = *req.Dietary
	}
	if req.Notes != nil {
		guest.Notes = *req.Notes
	}
	guest.UpdatedAt = time.Now()

	statusChanged := guest.Status != oldStatus
	if statusChanged && guest.Status != models.GuestStatusPending {
		now := time.Now()
		guest.RespondedAt = &now
	}

	var plusOneName, plusOneEmail string
	if guest.PlusOne != nil {
		plusOneName = guest.PlusOne.Name
		plusOneEmail = guest.PlusOne.Email
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		update := `
			UPDATE guests
			SET name = $1, email = $2, phone = $3, status = $4, responded_at = $5,
				plus_one_name = $6, plus_one_email = $7, dietary = $8, notes = $9, updated_at = $10
			WHERE id = $11 AND user_id = $12
		`
		if _, err := tx.ExecContext(ctx, update,
			guest.Name, guest.Email, guest.Phone, guest.Status, guest.RespondedAt,
			plusOneName, plusOneEmail, guest.Dietary, guest.Notes, guest.UpdatedAt,
			id, userID,
		); err != nil {
			return err
		}

		if statusChanged {
			return shiftStatusCounter(ctx, tx, guest.EventID, oldStatus, guest.Status)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}

	if statusChanged {
		s.recordActivity(ctx, &models.Activity{
			UserID:  userID,
			Type:    models.ActivityGuestResponded,
			Message: fmt.Sprintf("%s responded: %s", guest.Name, guest.Status),
			EventID: guest.EventID,
			GuestID: guest.ID,
		})
	}

	return guest, nil
}

// Delete removes a guest and releases its counters, floored at zero.
func (s *GuestService) Delete(ctx context.Context, id, userID string) error {
	guest, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	column := statusCounterColumn(guest.Status)
	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM guests WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
			return err
		}

		counters := fmt.Sprintf(`
			UPDATE events
			SET guest_count = GREATEST(guest_count - 1, 0),
				%s = GREATEST(%s - 1, 0),
				updated_at = NOW()
			WHERE id = $1
		`, column, column)
		_, err := tx.ExecContext(ctx, counters, guest.EventID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}

	s.recordActivity(ctx, &models.Activity{
		UserID:  userID,
		Type:    models.ActivityGuestRemoved,
		Message: fmt.Sprintf("%s was removed from the guest list", guest.Name),
		EventID: guest.EventID,
	})

	return nil
}

// ============================================================================
// PUBLIC RSVP (token-authenticated, no account required)
// ============================================================================

// GetByToken resolves an RSVP token to the view shown on the response page.
func (s *GuestService) GetByToken(ctx context.Context, token string) (*models.RSVPView, error) {
	query := `
		SELECT g.name, g.status, e.title, e.date, COALESCE(e.location, ''), COALESCE(e.dress_code, '')
		FROM guests g
		JOIN events e ON g.event_id = e.id
		WHERE g.rsvp_token = $1
	`

	var view models.RSVPView
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&view.GuestName, &view.Status, &view.EventTitle, &view.EventDate,
		&view.EventLocation, &view.DressCode,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// RespondByToken records an external RSVP response. Counter movement and the
// guest update share one transaction, as with owner-side updates.
func (s *GuestService) RespondByToken(ctx context.Context, token string, req models.RSVPRequest) (*models.Guest, error) {
	if !req.Status.Valid() || req.Status == models.GuestStatusPending {
		return nil, fmt.Errorf("invalid RSVP status: %s", req.Status)
	}

	query := `SELECT ` + guestColumns + ` FROM guests WHERE rsvp_token = $1`
	guest, err := scanGuest(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, err
	}

	oldStatus := guest.Status
	guest.Status = req.Status
	now := time.Now()
	guest.RespondedAt = &now
	if req.PlusOne != nil {
		guest.PlusOne = req.PlusOne
	}
	if req.Dietary != "" {
		guest.Dietary = req.Dietary
	}
	if req.Notes != "" {
		guest.Notes = req.Notes
	}
	guest.UpdatedAt = now

	var plusOneName, plusOneEmail string
	if guest.PlusOne != nil {
		plusOneName = guest.PlusOne.Name
		plusOneEmail = guest.PlusOne.Email
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		update := `
			UPDATE guests
			SET status = $1, responded_at = $2, plus_one_name = $3, plus_one_email = $4,
				dietary = $5, notes = $6, updated_at = $7
			WHERE id = $8
		`
		if _, err := tx.ExecContext(ctx, update,
			guest.Status, guest.RespondedAt, plusOneName, plusOneEmail,
			guest.Dietary, guest.Notes, guest.UpdatedAt, guest.ID,
		); err != nil {
			return err
		}

		if guest.Status != oldStatus {
			return shiftStatusCounter(ctx, tx, guest.EventID, oldStatus, guest.Status)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record RSVP: %w", err)
	}

	if guest.Status != oldStatus {
		s.recordActivity(ctx, &models.Activity{
			UserID:  guest.UserID,
			Type:    models.ActivityGuestResponded,
			Message: fmt.Sprintf("%s responded: %s", guest.Name, guest.Status),
			EventID: guest.EventID,
			GuestID: guest.ID,
		})
	}

	return guest, nil
}

// shiftStatusCounter moves one unit from the old status counter to the new
// one. Decrements are floored at zero; guest_count never changes here.
func shiftStatusCounter(ctx context.Context, tx *sql.Tx, eventID string, from, to models.GuestStatus) error {
	fromCol := statusCounterColumn(from)
	toCol := statusCounterColumn(to)
	query := fmt.Sprintf(`
		UPDATE events
		SET %s = GREATEST(%s - 1, 0), %s = %s + 1, updated_at = NOW()
		WHERE id = $1
	`, fromCol, fromCol, toCol, toCol)
	_, err := tx.ExecContext(ctx, query, eventID)
	return err
}

func (s *GuestService) recordActivity(ctx context.Context, activity *models.Activity) {
	if err := s.activities.Log(ctx, activity); err != nil {
		utils.SafeWarn("failed to log activity %s: %v", activity.Type, err)
		return
	}
	if _, err := s.notifications.CreateFromActivity(ctx, activity); err != nil {
		utils.SafeWarn("failed to create notification for %s: %v", activity.Type, err)
	}
}
