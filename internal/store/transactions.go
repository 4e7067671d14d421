package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListTransactions returns the newest transactions first. A zero eventID
// lists all events in scope.
func (s *Store) ListTransactions(ctx context.Context, a Actor, eventID uint) ([]models.Transaction, error) {
	db := s.db.WithContext(ctx).Scopes(transactionsOf(a)).Preload("Booking")
	if eventID != 0 {
		bookings := s.db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Booking{}).
			Select("id").
			Where("event_id = ?", eventID)
		db = db.Where("booking_id IN (?)", bookings)
	}
	var transactions []models.Transaction
	err := db.Order("date DESC, id DESC").Find(&transactions).Error
	return transactions, err
}

// CreateTransaction records a payment. An empty date means now.
func (s *Store) CreateTransaction(ctx context.Context, a Actor, t *models.Transaction) error {
	ve := &ValidationError{}
	if t.Type == "" {
		t.Type = models.TransactionIncoming
	}
	if !t.Type.Valid() {
		ve.Add("type", fmt.Sprintf("%q is not a valid choice.", t.Type))
	}
	if !t.Method.Valid() {
		ve.Add("method", fmt.Sprintf("%q is not a valid choice.", t.Method))
	}
	if err := ve.orNil(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Scopes(ofEvents(a)).First(&booking, t.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("booking", invalidChoice)
			}
			return err
		}
		return tx.Omit(clause.Associations).Create(t).Error
	})
}

func (s *Store) DeleteTransaction(ctx context.Context, a Actor, id uint) error {
	res := s.db.WithContext(ctx).Scopes(transactionsOf(a)).Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
