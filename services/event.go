package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"partypass-api/models"
	"partypass-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type EventService struct {
	db            *sql.DB
	cache         *SearchCache
	activities    *ActivityService
	notifications *NotificationService
}

func NewEventService(db *sql.DB, cache *SearchCache, activities *ActivityService, notifications *NotificationService) *EventService {
	return &EventService{db: db, cache: cache, activities: activities, notifications: notifications}
}

const eventColumns = `
	id, user_id, title, description, date, location, capacity, status,
	category, tags, is_public, dress_code, additional_info, image_url,
	guest_count, accepted_count, declined_count, pending_count, maybe_count,
	created_at, updated_at
`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.Capacity, &e.Status, &e.Category, pq.Array(&e.Tags), &e.IsPublic,
		&e.DressCode, &e.AdditionalInfo, &e.ImageURL,
		&e.GuestCount, &e.AcceptedCount, &e.DeclinedCount, &e.PendingCount, &e.MaybeCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new draft event and logs the activity.
func (s *EventService) Create(ctx context.Context, userID string, req models.CreateEventRequest) (*models.Event, error) {
	event := &models.Event{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		Location:       req.Location,
		Capacity:       req.Capacity,
		Status:         models.EventStatusDraft,
		Category:       req.Category,
		Tags:           req.Tags,
		IsPublic:       req.IsPublic,
		DressCode:      req.DressCode,
		AdditionalInfo: req.AdditionalInfo,
		ImageURL:       req.ImageURL,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	query := `
		INSERT INTO events (id, user_id, title, description, date, location, capacity, status,
			category, tags, is_public, dress_code, additional_info, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.UserID, event.Title, event.Description, event.Date, event.Location,
		event.Capacity, event.Status, event.Category, pq.Array(event.Tags), event.IsPublic,
		event.DressCode, event.AdditionalInfo, event.ImageURL, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.cache.Clear()
	s.recordActivity(ctx, &models.Activity{
		UserID:  userID,
		Type:    models.ActivityEventCreated,
		Message: fmt.Sprintf("Event %q was created", event.Title),
		EventID: event.ID,
	})

	return event, nil
}

// GetByID returns an event owned by userID.
func (s *EventService) GetByID(ctx context.Context, id, userID string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`
	return scanEvent(s.db.QueryRowContext(ctx, query, id, userID))
}

// List returns the user's events, optionally filtered by status and category.
func (s *EventService) List(ctx context.Context, userID string, status, category string) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY date DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, status, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

// Update applies the non-nil fields of req to an owned event.
func (s *EventService) Update(ctx context.Context, id, userID string, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	statusChanged := false
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("invalid event status: %s", *req.Status)
		}
		statusChanged = event.Status != *req.Status
		event.Status = *req.Status
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Tags != nil {
		event.Tags = req.Tags
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}
	if req.DressCode != nil {
		event.DressCode = *req.DressCode
	}
	if req.AdditionalInfo != nil {
		event.AdditionalInfo = *req.AdditionalInfo
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}
	event.UpdatedAt = time.Now()

	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, location = $4, capacity = $5,
			status = $6, category = $7, tags = $8, is_public = $9, dress_code = $10,
			additional_info = $11, image_url = $12, updated_at = $13
		WHERE id = $14 AND user_id = $15
	`
	_, err = s.db.ExecContext(ctx, query,
		event.Title, event.Description, event.Date, event.Location, event.Capacity,
		event.Status, event.Category, pq.Array(event.Tags), event.IsPublic, event.DressCode,
		event.AdditionalInfo, event.ImageURL, event.UpdatedAt, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.cache.Clear()

	activityType := models.ActivityEventUpdated
	message := fmt.Sprintf("Event %q was updated", event.Title)
	if statusChanged && event.Status == models.EventStatusCancelled {
		activityType = models.ActivityEventCancelled
		message = fmt.Sprintf("Event %q was cancelled", event.Title)
	}
	s.recordActivity(ctx, &models.Activity{
		UserID:  userID,
		Type:    activityType,
		Message: message,
		EventID: event.ID,
	})

	return event, nil
}

// Delete removes an event and everything scoped under it in one transaction.
func (s *EventService) Delete(ctx context.Context, id, userID string) error {
	event, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE event_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE event_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM notifications WHERE user_id = $1 AND action_url LIKE '/events/' || $2 || '%'`,
			userID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.cache.Clear()
	s.recordActivity(ctx, &models.Activity{
		UserID:  userID,
		Type:    models.ActivityEventDeleted,
		Message: fmt.Sprintf("Event %q was deleted", event.Title),
	})

	return nil
}

// recordActivity logs the audit row and derives a notification. Both are
// best-effort side operations: failures never block the primary write.
func (s *EventService) recordActivity(ctx context.Context, activity *models.Activity) {
	if err := s.activities.Log(ctx, activity); err != nil {
		utils.SafeWarn("failed to log activity %s: %v", activity.Type, err)
		return
	}
	if _, err := s.notifications.CreateFromActivity(ctx, activity); err != nil {
		utils.SafeWarn("failed to create notification for %s: %v", activity.Type, err)
	}
}
