package store

import (
	"context"

	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/pricing"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSlugLength = 50

func (s *Store) ListEvents(ctx context.Context, a Actor) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Scopes(eventsOf(a)).
		Order("begin_date DESC, end_date DESC").
		Find(&events).
		Error
	return events, err
}

// LoadEvents returns events with their full configuration, for the public API.
func (s *Store) LoadEvents(ctx context.Context, a Actor) ([]models.Event, error) {
	var events []models.Event
	err := preloadEvent(s.db.WithContext(ctx)).
		Scopes(eventsOf(a)).
		Order("begin_date DESC, end_date DESC").
		Find(&events).
		Error
	if err != nil {
		return nil, err
	}
	for i := range events {
		sortRatePrices(&events[i])
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, a Actor, id uint) (*models.Event, error) {
	var event models.Event
	err := preloadEvent(s.db.WithContext(ctx)).
		Scopes(eventsOf(a)).
		First(&event, id).
		Error
	if err != nil {
		return nil, notFound(err)
	}
	sortRatePrices(&event)
	return &event, nil
}

func preloadEvent(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, day") }).
		Preload("Disciplines", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, code") }).
		Preload("Rates", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, label") }).
		Preload("Rates.Disciplines").
		Preload("Rates.Prices").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, name") }).
		Preload("Products.Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, name") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, name") }).
		Preload("WebPages", ordered)
}

func sortRatePrices(e *models.Event) {
	for i := range e.Rates {
		pricing.SortPrices(e.Rates[i].Prices)
	}
}

// CreateEvent fills in the slug from the name when it is empty. Only
// superusers may hand the event to another administrator.
func (s *Store) CreateEvent(ctx context.Context, a Actor, event *models.Event) error {
	if !a.IsSuperuser || event.AdminID == 0 {
		event.AdminID = a.UserID
	}
	if event.Slug == "" {
		event.Slug = slug.Make(event.Name)
	}
	if len(event.Slug) > maxSlugLength {
		event.Slug = event.Slug[:maxSlugLength]
	}
	if !slug.IsSlug(event.Slug) {
		return invalid("slug", "Enter a valid slug consisting of letters, numbers and hyphens.")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := slugFree(tx, event.Slug, 0); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(event).Error
	})
}

// SaveEvent updates the event's own columns. The admin is read-only for
// everyone but superusers.
func (s *Store) SaveEvent(ctx context.Context, a Actor, event *models.Event) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Event
		if err := tx.Scopes(eventsOf(a)).First(&current, event.ID).Error; err != nil {
			return notFound(err)
		}
		if !a.IsSuperuser {
			event.AdminID = current.AdminID
		}
		if event.Slug == "" {
			event.Slug = slug.Make(event.Name)
		}
		if err := slugFree(tx, event.Slug, event.ID); err != nil {
			return err
		}
		event.CreatedAt = current.CreatedAt
		return tx.Omit(clause.Associations).Save(event).Error
	})
}

func slugFree(tx *gorm.DB, s string, id uint) error {
	var count int64
	err := tx.Model(&models.Event{}).Where("slug = ? AND id <> ?", s, id).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return invalid("slug", "event with this short name already exists.")
	}
	return nil
}

// DeleteEvent removes the event and everything it owns.
func (s *Store) DeleteEvent(ctx context.Context, a Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Scopes(eventsOf(a)).First(&event, id).Error; err != nil {
			return notFound(err)
		}

		var bookingIDs []uint
		if err := tx.Model(&models.Booking{}).Where("event_id = ?", id).Pluck("id", &bookingIDs).Error; err != nil {
			return err
		}
		if err := deleteBookings(tx, bookingIDs); err != nil {
			return err
		}

		var rateIDs []uint
		if err := tx.Model(&models.Rate{}).Where("event_id = ?", id).Pluck("id", &rateIDs).Error; err != nil {
			return err
		}
		if err := deleteRates(tx, rateIDs); err != nil {
			return err
		}

		var productIDs []uint
		if err := tx.Model(&models.Product{}).Where("event_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.ProductVariant{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []any{&models.Product{}, &models.Document{}, &models.Day{}, &models.Discipline{}, &models.WebPage{}} {
			if err := tx.Where("event_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		// hard delete, the slug is unique
		return tx.Unscoped().Delete(&event).Error
	})
}

// ownsEvent fails with ErrNotFound when the event is outside the actor's scope.
func ownsEvent(tx *gorm.DB, a Actor, eventID uint) error {
	var count int64
	if err := tx.Model(&models.Event{}).Scopes(eventsOf(a)).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// eventOf looks up the owning event of a child row and checks the scope.
func eventOf(tx *gorm.DB, a Actor, model any, id uint) (uint, error) {
	var eventIDs []uint
	if err := tx.Model(model).Where("id = ?", id).Pluck("event_id", &eventIDs).Error; err != nil {
		return 0, err
	}
	if len(eventIDs) == 0 {
		return 0, ErrNotFound
	}
	if err := ownsEvent(tx, a, eventIDs[0]); err != nil {
		return 0, err
	}
	return eventIDs[0], nil
}
