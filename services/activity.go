package services

import (
	"context"
	"database/sql"
	"time"

	"partypass-api/models"

	"github.com/google/uuid"
)

type ActivityService struct {
	db *sql.DB
}

func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Log appends an activity row. The audit trail is append-only; activities are
// never updated, only cascaded away with their owning user or event.
func (s *ActivityService) Log(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	activity.CreatedAt = time.Now()

	query := `
		INSERT INTO activities (id, user_id, type, message, event_id, guest_id, contact_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		activity.ID, activity.UserID, activity.Type, activity.Message,
		activity.EventID, activity.GuestID, activity.ContactID, activity.CreatedAt,
	)
	return err
}

// List returns the newest activities for a user, capped at limit.
func (s *ActivityService) List(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, user_id, type, message,
		       COALESCE(event_id::text, ''), COALESCE(guest_id::text, ''), COALESCE(contact_id::text, ''),
		       created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Message, &a.EventID, &a.GuestID, &a.ContactID, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}
