package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partypass-api/models"
)

func newEventServiceMock(t *testing.T) (*EventService, *SearchCache, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cache := NewSearchCache()
	svc := NewEventService(db, cache, NewActivityService(db), NewNotificationService(db))
	return svc, cache, mock, db
}

func eventRow(id, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "date", "location", "capacity", "status",
		"category", "tags", "is_public", "dress_code", "additional_info", "image_url",
		"guest_count", "accepted_count", "declined_count", "pending_count", "maybe_count",
		"created_at", "updated_at",
	}).AddRow(
		id, "user-1", "Garden Party", "", now, "Backyard", 50, status,
		"birthday", "{}", false, "", "", "",
		0, 0, 0, 0, 0,
		now, now,
	)
}

func TestCreateEventStartsAsDraftAndClearsCache(t *testing.T) {
	svc, cache, mock, db := newEventServiceMock(t)
	defer db.Close()

	cache.Set("stale", []models.SearchResult{{ID: "old"}})

	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event, err := svc.Create(context.Background(), "user-1", models.CreateEventRequest{
		Title: "Garden Party",
		Date:  time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 0, cache.Len(), "event writes must invalidate cached searches")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventClearsCache(t *testing.T) {
	svc, cache, mock, db := newEventServiceMock(t)
	defer db.Close()

	cache.Set("stale", nil)

	mock.ExpectQuery("FROM events WHERE id =").
		WithArgs("event-1", "user-1").
		WillReturnRows(eventRow("event-1", "draft"))
	mock.ExpectExec("UPDATE events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	title := "Garden Party 2.0"
	event, err := svc.Update(context.Background(), "event-1", "user-1", models.UpdateEventRequest{
		Title: &title,
	})
	require.NoError(t, err)

	assert.Equal(t, "Garden Party 2.0", event.Title)
	assert.Equal(t, 0, cache.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventToCancelledLogsCancellation(t *testing.T) {
	svc, _, mock, db := newEventServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM events WHERE id =").
		WithArgs("event-1", "user-1").
		WillReturnRows(eventRow("event-1", "active"))
	mock.ExpectExec("UPDATE events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activities").
		WithArgs(sqlmock.AnyArg(), "user-1", string(models.ActivityEventCancelled),
			sqlmock.AnyArg(), "event-1", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	cancelled := models.EventStatusCancelled
	event, err := svc.Update(context.Background(), "event-1", "user-1", models.UpdateEventRequest{
		Status: &cancelled,
	})
	require.NoError(t, err)

	assert.Equal(t, models.EventStatusCancelled, event.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventRejectsInvalidStatus(t *testing.T) {
	svc, _, mock, db := newEventServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM events WHERE id =").
		WithArgs("event-1", "user-1").
		WillReturnRows(eventRow("event-1", "draft"))

	bogus := models.EventStatus("archived")
	_, err := svc.Update(context.Background(), "event-1", "user-1", models.UpdateEventRequest{
		Status: &bogus,
	})
	assert.Error(t, err)
}

func TestDeleteEventCascadesInOneTransaction(t *testing.T) {
	svc, cache, mock, db := newEventServiceMock(t)
	defer db.Close()

	cache.Set("stale", nil)

	mock.ExpectQuery("FROM events WHERE id =").
		WithArgs("event-1", "user-1").
		WillReturnRows(eventRow("event-1", "active"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM guests WHERE event_id =").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM activities WHERE event_id =").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM notifications").
		WithArgs("user-1", "event-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM events WHERE id =").
		WithArgs("event-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Delete(context.Background(), "event-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 0, cache.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventRollsBackAndKeepsCache(t *testing.T) {
	svc, cache, mock, db := newEventServiceMock(t)
	defer db.Close()

	cache.Set("fresh", nil)

	mock.ExpectQuery("FROM events WHERE id =").
		WithArgs("event-1", "user-1").
		WillReturnRows(eventRow("event-1", "active"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM guests WHERE event_id =").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM activities WHERE event_id =").
		WithArgs("event-1").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), "event-1", "user-1")
	assert.Error(t, err)

	assert.Equal(t, 1, cache.Len(), "a failed delete must not invalidate the cache")
	assert.NoError(t, mock.ExpectationsWereMet())
}
