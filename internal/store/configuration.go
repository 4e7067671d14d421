package store

import (
	"context"

	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/gorm"
)

func (s *Store) AddDay(ctx context.Context, a Actor, day *models.Day) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownsEvent(tx, a, day.EventID); err != nil {
			return err
		}
		return tx.Create(day).Error
	})
}

// DeleteDay clears the day from bookings that picked it as arrival or departure.
func (s *Store) DeleteDay(ctx context.Context, a Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.Day{}, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).Where("arrival_id = ?", id).Update("arrival_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).Where("departure_id = ?", id).Update("departure_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Day{}, id).Error
	})
}

func (s *Store) AddDiscipline(ctx context.Context, a Actor, d *models.Discipline) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownsEvent(tx, a, d.EventID); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
}

func (s *Store) DeleteDiscipline(ctx context.Context, a Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.Discipline{}, id); err != nil {
			return err
		}
		for _, table := range []string{"booking_disciplines", "rate_disciplines"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE discipline_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Discipline{}, id).Error
	})
}

// AddRate creates the rate with its prices. Disciplines are referenced by id
// and must belong to the same event.
func (s *Store) AddRate(ctx context.Context, a Actor, rate *models.Rate, disciplineIDs []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownsEvent(tx, a, rate.EventID); err != nil {
			return err
		}
		disciplines, err := eventDisciplines(tx, rate.EventID, disciplineIDs)
		if err != nil {
			return err
		}
		rate.Disciplines = disciplines
		return tx.Omit("Disciplines.*").Create(rate).Error
	})
}

func (s *Store) DeleteRate(ctx context.Context, a Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.Rate{}, id); err != nil {
			return err
		}
		return deleteRates(tx, []uint{id})
	})
}

// AddPrice appends a price to an existing rate.
func (s *Store) AddPrice(ctx context.Context, a Actor, price *models.Price) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.Rate{}, price.RateID); err != nil {
			return err
		}
		return tx.Create(price).Error
	})
}

func deleteRates(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Model(&models.Booking{}).Where("rate_id IN ?", ids).Update("rate_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM rate_disciplines WHERE rate_id IN ?", ids).Error; err != nil {
		return err
	}
	if err := tx.Where("rate_id IN ?", ids).Delete(&models.Price{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Rate{}, ids).Error
}

func eventDisciplines(tx *gorm.DB, eventID uint, ids []uint) ([]models.Discipline, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var disciplines []models.Discipline
	if err := tx.Where("event_id = ? AND id IN ?", eventID, ids).Find(&disciplines).Error; err != nil {
		return nil, err
	}
	if len(disciplines) != len(uniq(ids)) {
		return nil, invalid("disciplines", "Unknown discipline for this event.")
	}
	return disciplines, nil
}

// AddProduct creates the product together with its variants.
func (s *Store) AddProduct(ctx context.Context, a Actor, product *models.Product) error {
	if !product.Kind.Valid() {
		return invalid("kind", "\""+string(product.Kind)+"\" is not a valid choice.")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownsEvent(tx, a, product.EventID); err != nil {
			return err
		}
		return tx.Create(product).Error
	})
}

func (s *Store) DeleteProduct(ctx context.Context, a Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.Product{}, id); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

func (s *Store) AddDocument(ctx context.Context, a Actor, doc *models.Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownsEvent(tx, a, doc.EventID); err != nil {
			return err
		}
		return tx.Create(doc).Error
	})
}

// DeleteDocument returns the removed document and its attachments so the
// caller can clean up the stored files.
func (s *Store) DeleteDocument(ctx context.Context, a Actor, id uint) (*models.Document, []models.Attachment, error) {
	var doc models.Document
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.Document{}, id); err != nil {
			return err
		}
		if err := tx.First(&doc, id).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("document_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &doc, attachments, nil
}

func (s *Store) ListWebPages(ctx context.Context, a Actor) ([]models.WebPage, error) {
	var pages []models.WebPage
	err := s.db.WithContext(ctx).Scopes(ofEvents(a)).Order("event_id, sort_order").Find(&pages).Error
	return pages, err
}

func (s *Store) AddWebPage(ctx context.Context, a Actor, page *models.WebPage) error {
	if page.Slug == "" {
		page.Slug = "home"
	}
	if page.Icon == "" {
		page.Icon = "home"
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownsEvent(tx, a, page.EventID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.WebPage{}).Where("event_id = ? AND slug = ?", page.EventID, page.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalid("slug", "page with this slug already exists for the event.")
		}
		return tx.Create(page).Error
	})
}

func (s *Store) DeleteWebPage(ctx context.Context, a Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := eventOf(tx, a, &models.WebPage{}, id); err != nil {
			return err
		}
		// hard delete, the slug has to become free again
		return tx.Unscoped().Delete(&models.WebPage{}, id).Error
	})
}

func uniq(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
