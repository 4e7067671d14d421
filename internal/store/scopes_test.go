package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)
	return New(db), mock
}

func TestEventsScopedToAdmin(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE admin_id = \$1 AND "events"."deleted_at" IS NULL ORDER BY begin_date DESC`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "admin_id"}).AddRow(1, "Summer Camp", 7))

	events, err := s.ListEvents(context.Background(), Actor{UserID: 7})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Summer Camp", events[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuperuserIsNotScoped(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE "events"."deleted_at" IS NULL ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Summer Camp").AddRow(2, "Winter Cup"))

	events, err := s.ListEvents(context.Background(), Actor{UserID: 7, IsSuperuser: true})
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingsScopedThroughEvents(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE event_id IN \(SELECT .?id.? FROM "events" WHERE admin_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	bookings, err := s.ListBookings(context.Background(), Actor{UserID: 7}, BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
