package database

import (
	"testing"

	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DatabasePath: "test.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DatabaseDriver: "postgres", DatabaseDSN: "host=localhost dbname=test"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(&config.Config{DatabaseDriver: "postgres"})
	assert.Error(t, err)

	_, err = Dialector(&config.Config{DatabaseDriver: "oracle"})
	assert.Error(t, err)
}

func TestOpenMigratesAllModels(t *testing.T) {
	db, err := Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"))
	require.NoError(t, err)

	for _, model := range []any{
		&models.Event{}, &models.Rate{}, &models.Price{}, &models.Booking{},
		&models.Transaction{}, &models.Attachment{}, &models.WebPage{},
	} {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
	assert.True(t, db.Migrator().HasTable("booking_disciplines"))
	assert.True(t, db.Migrator().HasTable("rate_disciplines"))
	assert.True(t, db.Migrator().HasIndex(&models.Attachment{}, "idx_booking_document"))
}
