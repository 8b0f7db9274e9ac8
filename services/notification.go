package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"partypass-api/models"

	"github.com/google/uuid"
)

type NotificationService struct {
	db        *sql.DB
	broadcast func(userID string, n *models.Notification)
}

func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{db: db}
}

// SetBroadcast registers a push hook called after each stored notification.
// Wired to the websocket hub at startup; nil means no push.
func (s *NotificationService) SetBroadcast(fn func(userID string, n *models.Notification)) {
	s.broadcast = fn
}

// NotificationFromActivity derives a notification from an audit activity.
// The switch is exhaustive over models.ActivityType; an unknown type is an
// error, not a silent default.
func NotificationFromActivity(activity *models.Activity) (*models.Notification, error) {
	n := &models.Notification{
		ID:      uuid.New().String(),
		UserID:  activity.UserID,
		Message: activity.Message,
	}

	switch activity.Type {
	case models.ActivityEventCreated:
		n.Type = models.NotificationSuccess
		n.Priority = models.PriorityMedium
		n.Title = "Event created"
		n.ActionURL = "/events/" + activity.EventID
	case models.ActivityEventUpdated:
		n.Type = models.NotificationInfo
		n.Priority = models.PriorityLow
		n.Title = "Event updated"
		n.ActionURL = "/events/" + activity.EventID
		n.ExpiresAt = expiryIn(7 * 24 * time.Hour)
	case models.ActivityEventCancelled:
		n.Type = models.NotificationWarning
		n.Priority = models.PriorityHigh
		n.Title = "Event cancelled"
		n.ActionURL = "/events/" + activity.EventID
	case models.ActivityEventDeleted:
		n.Type = models.NotificationInfo
		n.Priority = models.PriorityLow
		n.Title = "Event deleted"
		n.ExpiresAt = expiryIn(24 * time.Hour)
	case models.ActivityGuestAdded:
		n.Type = models.NotificationInfo
		n.Priority = models.PriorityLow
		n.Title = "Guest invited"
		n.ActionURL = "/events/" + activity.EventID + "/guests"
		n.ExpiresAt = expiryIn(7 * 24 * time.Hour)
	case models.ActivityGuestResponded:
		n.Type = models.NotificationSuccess
		n.Priority = models.PriorityMedium
		n.Title = "New RSVP response"
		n.ActionURL = "/events/" + activity.EventID + "/guests"
	case models.ActivityGuestRemoved:
		n.Type = models.NotificationInfo
		n.Priority = models.PriorityLow
		n.Title = "Guest removed"
		n.ExpiresAt = expiryIn(24 * time.Hour)
	case models.ActivityContactAdded, models.ActivityContactUpdated, models.ActivityContactRemoved:
		n.Type = models.NotificationInfo
		n.Priority = models.PriorityLow
		n.Title = "Contacts updated"
		n.ActionURL = "/contacts"
		n.ExpiresAt = expiryIn(24 * time.Hour)
	default:
		return nil, fmt.Errorf("unknown activity type: %s", activity.Type)
	}

	return n, nil
}

func expiryIn(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

// Create persists a notification.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now()

	query := `
		INSERT INTO notifications (id, user_id, type, priority, title, message, read, action_url, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Priority, n.Title, n.Message, n.ActionURL, n.ExpiresAt, n.CreatedAt,
	)
	if err != nil {
		return err
	}

	if s.broadcast != nil {
		s.broadcast(n.UserID, n)
	}
	return nil
}

// CreateFromActivity derives and stores a notification for an activity.
// Callers treat failures as non-critical: log and move on.
func (s *NotificationService) CreateFromActivity(ctx context.Context, activity *models.Activity) (*models.Notification, error) {
	n, err := NotificationFromActivity(activity)
	if err != nil {
		return nil, err
	}
	if err := s.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the user's notifications newest first, skipping expired ones.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, user_id, type, priority, title, message, read, action_url, expires_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message, &n.Read, &n.ActionURL, &n.ExpiresAt, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND read = FALSE AND (expires_at IS NULL OR expires_at > NOW())
	`
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	return err
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteExpired removes notifications past their expiry. Run from the cron job.
func (s *NotificationService) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
