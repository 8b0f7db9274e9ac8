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

func newGuestServiceMock(t *testing.T) (*GuestService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewGuestService(db, NewActivityService(db), NewNotificationService(db))
	return svc, mock, db
}

func guestRow(id, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "event_id", "name", "email", "phone", "status", "invited_at",
		"responded_at", "plus_one_name", "plus_one_email", "dietary", "notes", "rsvp_token",
		"created_at", "updated_at",
	}).AddRow(
		id, "user-1", "event-1", "Anna Nowak", "anna@example.com", "", status, now,
		nil, "", "", "", "", "token-1", now, now,
	)
}

func TestCreateGuestIncrementsCountersInOneTransaction(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("SELECT title FROM events").
		WithArgs("event-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("Garden Party"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO guests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET guest_count = guest_count").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Best-effort audit trail after commit.
	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	guest, err := svc.Create(context.Background(), "user-1", "event-1", models.CreateGuestRequest{
		Name:  "Anna Nowak",
		Email: "anna@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.GuestStatusPending, guest.Status)
	assert.NotEmpty(t, guest.ID)
	assert.NotEmpty(t, guest.RSVPToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGuestUnknownEvent(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("SELECT title FROM events").
		WithArgs("missing", "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Create(context.Background(), "user-1", "missing", models.CreateGuestRequest{
		Name:  "Anna",
		Email: "anna@example.com",
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateGuestStatusShiftsCounters(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM guests WHERE id =").
		WithArgs("guest-1", "user-1").
		WillReturnRows(guestRow("guest-1", "pending"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE guests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET pending_count = GREATEST").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	accepted := models.GuestStatusAccepted
	guest, err := svc.Update(context.Background(), "guest-1", "user-1", models.UpdateGuestRequest{
		Status: &accepted,
	})
	require.NoError(t, err)

	assert.Equal(t, models.GuestStatusAccepted, guest.Status)
	require.NotNil(t, guest.RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateGuestWithoutStatusChangeSkipsCounters(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM guests WHERE id =").
		WithArgs("guest-1", "user-1").
		WillReturnRows(guestRow("guest-1", "pending"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE guests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	name := "Anna Kowalska"
	guest, err := svc.Update(context.Background(), "guest-1", "user-1", models.UpdateGuestRequest{
		Name: &name,
	})
	require.NoError(t, err)

	assert.Equal(t, "Anna Kowalska", guest.Name)
	assert.Nil(t, guest.RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateGuestRejectsInvalidStatus(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM guests WHERE id =").
		WithArgs("guest-1", "user-1").
		WillReturnRows(guestRow("guest-1", "pending"))

	bogus := models.GuestStatus("attending")
	_, err := svc.Update(context.Background(), "guest-1", "user-1", models.UpdateGuestRequest{
		Status: &bogus,
	})
	assert.Error(t, err)
}

func TestDeleteGuestDecrementsCountersFloored(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM guests WHERE id =").
		WithArgs("guest-1", "user-1").
		WillReturnRows(guestRow("guest-1", "accepted"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM guests").
		WithArgs("guest-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("accepted_count = GREATEST").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Delete(context.Background(), "guest-1", "user-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGuestRollsBackOnCounterFailure(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM guests WHERE id =").
		WithArgs("guest-1", "user-1").
		WillReturnRows(guestRow("guest-1", "accepted"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM guests").
		WithArgs("guest-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("accepted_count = GREATEST").
		WithArgs("event-1").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), "guest-1", "user-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================================
// PUBLIC RSVP
// ============================================================================

func TestRespondByTokenRejectsPending(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	_, err := svc.RespondByToken(context.Background(), "token-1", models.RSVPRequest{
		Status: models.GuestStatusPending,
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondByTokenMovesCounters(t *testing.T) {
	svc, mock, db := newGuestServiceMock(t)
	defer db.Close()

	mock.ExpectQuery("FROM guests WHERE rsvp_token =").
		WithArgs("token-1").
		WillReturnRows(guestRow("guest-1", "pending"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE guests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET pending_count = GREATEST").
		WithArgs("event-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	guest, err := svc.RespondByToken(context.Background(), "token-1", models.RSVPRequest{
		Status:  models.GuestStatusDeclined,
		Dietary: "vegan",
	})
	require.NoError(t, err)

	assert.Equal(t, models.GuestStatusDeclined, guest.Status)
	assert.Equal(t, "vegan", guest.Dietary)
	require.NotNil(t, guest.RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
