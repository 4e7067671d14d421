package store

import (
	"context"
	"errors"

	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListAttachments(ctx context.Context, a Actor, bookingID uint) ([]models.Attachment, error) {
	if err := ownsBooking(s.db.WithContext(ctx), a, bookingID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).
		Preload("Document").
		Where("booking_id = ?", bookingID).
		Order("date").
		Find(&attachments).
		Error
	return attachments, err
}

// CreateAttachment fails with ErrAttachmentExists when the booking already
// has a file for the document.
func (s *Store) CreateAttachment(ctx context.Context, a Actor, att *models.Attachment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Scopes(ofEvents(a)).First(&booking, att.BookingID).Error; err != nil {
			return notFound(err)
		}
		var doc models.Document
		if err := tx.Where("event_id = ?", booking.EventID).First(&doc, att.DocumentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("document", invalidChoice)
			}
			return err
		}

		var count int64
		err := tx.Model(&models.Attachment{}).
			Where("booking_id = ? AND document_id = ?", att.BookingID, att.DocumentID).
			Count(&count).
			Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAttachmentExists
		}
		if err := tx.Omit(clause.Associations).Create(att).Error; err != nil {
			return err
		}
		att.Document = doc
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAttachmentExists
	}
	return err
}

// DeleteAttachment returns the removed row so the caller can delete its file.
func (s *Store) DeleteAttachment(ctx context.Context, a Actor, id uint) (*models.Attachment, error) {
	var att models.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&att, id).Error; err != nil {
			return notFound(err)
		}
		if err := ownsBooking(tx, a, att.BookingID); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&att).Error
	})
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func ownsBooking(tx *gorm.DB, a Actor, bookingID uint) error {
	var count int64
	if err := tx.Model(&models.Booking{}).Scopes(ofEvents(a)).Where("id = ?", bookingID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
