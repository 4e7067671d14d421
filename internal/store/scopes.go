package store

import (
	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/gorm"
)

func eventsOf(a Actor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.IsSuperuser {
			return db
		}
		return db.Where("admin_id = ?", a.UserID)
	}
}

func eventIDsOf(db *gorm.DB, a Actor) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Event{}).
		Select("id").
		Where("admin_id = ?", a.UserID)
}

// ofEvents scopes any table with an event_id column.
func ofEvents(a Actor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.IsSuperuser {
			return db
		}
		return db.Where("event_id IN (?)", eventIDsOf(db, a))
	}
}

func transactionsOf(a Actor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.IsSuperuser {
			return db
		}
		bookings := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Booking{}).
			Select("id").
			Where("event_id IN (?)", eventIDsOf(db, a))
		return db.Where("booking_id IN (?)", bookings)
	}
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order")
}
