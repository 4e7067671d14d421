package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultCountry = "DE"

type BookingFilter struct {
	EventID   uint
	State     models.BookingState
	Food      models.Food
	Club      string
	CheckedIn *bool
	// Search matches names, email, club and code case-insensitively.
	Search string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (f BookingFilter) apply(db *gorm.DB) *gorm.DB {
	if f.EventID != 0 {
		db = db.Where("event_id = ?", f.EventID)
	}
	if f.State != "" {
		db = db.Where("state = ?", f.State)
	}
	if f.Food != "" {
		db = db.Where("food = ?", f.Food)
	}
	if f.Club != "" {
		db = db.Where("club = ?", f.Club)
	}
	if f.CheckedIn != nil {
		if *f.CheckedIn {
			db = db.Where("checkin_date IS NOT NULL")
		} else {
			db = db.Where("checkin_date IS NULL")
		}
	}
	if f.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		db = db.Where(
			`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(club) LIKE ? ESCAPE '\' OR code LIKE ? ESCAPE '\'`,
			like, like, like, like, like,
		)
	}
	return db
}

// ListBookings returns the newest bookings first, with everything the list
// view needs to show paid and open amounts.
func (s *Store) ListBookings(ctx context.Context, a Actor, f BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Scopes(ofEvents(a), f.apply).
		Preload("Event").
		Preload("Transactions").
		Preload("Rate").
		Preload("Arrival").
		Preload("Departure").
		Preload("Disciplines", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, code") }).
		Order("created_at DESC, id DESC").
		Find(&bookings).
		Error
	return bookings, err
}

func (s *Store) GetBooking(ctx context.Context, a Actor, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Scopes(ofEvents(a)).
		Preload("Event.Documents", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, name") }).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		Preload("Attachments.Document").
		Preload("Rate").
		Preload("Arrival").
		Preload("Departure").
		Preload("Disciplines", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, code") }).
		First(&booking, id).
		Error
	if err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

// MissingDocuments lists the event documents the participant still has to
// upload. The booking needs Event.Documents and Attachments loaded.
func MissingDocuments(b models.Booking) []models.Document {
	fullAge := pricing.FullAge(pricing.AgeAtEvent(b.DateOfBirth, b.Event))
	uploaded := make(map[uint]bool, len(b.Attachments))
	for _, att := range b.Attachments {
		uploaded[att.DocumentID] = true
	}
	var missing []models.Document
	for _, doc := range b.Event.Documents {
		if doc.RequiredFor(fullAge) && !uploaded[doc.ID] {
			missing = append(missing, doc)
		}
	}
	return missing
}

// NewBooking is what a participant submits to register for an event.
type NewBooking struct {
	EventID       uint        `json:"event" validate:"required"`
	Code          string      `json:"code" validate:"omitempty,len=8,alphanum,lowercase"`
	FirstName     string      `json:"firstName" validate:"required,max=100"`
	LastName      string      `json:"lastName" validate:"required,max=100"`
	Email         string      `json:"email" validate:"required,email,max=254"`
	Club          string      `json:"club" validate:"max=100"`
	DateOfBirth   time.Time   `json:"dateOfBirth"`
	Sex           *models.Sex `json:"sex" validate:"omitempty,oneof=f m"`
	Address       *string     `json:"address" validate:"omitempty,max=255"`
	Zipcode       *string     `json:"zipcode" validate:"omitempty,max=20"`
	City          *string     `json:"city" validate:"omitempty,max=100"`
	Country       *string     `json:"country" validate:"omitempty,len=2"`
	Phone         *string     `json:"phone" validate:"omitempty,max=20"`
	Food          models.Food `json:"food" validate:"omitempty,oneof=all v vv"`
	ArrivalID     *uint       `json:"arrival"`
	DepartureID   *uint       `json:"departure"`
	RateID        *uint       `json:"rate"`
	DisciplineIDs []uint      `json:"disciplines"`
	Notes         string      `json:"notes"`
}

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// CreateBooking registers a participant. It is the public path and takes no
// actor. Field problems come back as a *ValidationError.
func (s *Store) CreateBooking(ctx context.Context, in NewBooking) (*models.Booking, error) {
	ve := &ValidationError{}
	if err := validateStruct(ve, in); err != nil {
		return nil, err
	}
	if in.DateOfBirth.IsZero() {
		ve.Add("dateOfBirth", "This field is required.")
	}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Preload("Days").First(&event, in.EventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.Add("event", invalidChoice)
			return ve
		}
		if err != nil {
			return err
		}

		refs, err := s.loadReferences(tx, ve, in)
		if err != nil {
			return err
		}
		if s.strict {
			checkBooking(ve, event, refs, in)
		}

		code := in.Code
		if code != "" {
			taken, err := codeTaken(tx, code)
			if err != nil {
				return err
			}
			if taken {
				ve.Add("code", "booking with this code already exists.")
			}
		}
		if err := ve.orNil(); err != nil {
			return err
		}
		if code == "" {
			if code, err = uniqueCode(tx, s.codes); err != nil {
				return err
			}
		}

		booking = &models.Booking{
			EventID:     event.ID,
			Code:        code,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			Sex:         in.Sex,
			Email:       in.Email,
			Club:        in.Club,
			DateOfBirth: in.DateOfBirth,
			Address:     in.Address,
			Zipcode:     in.Zipcode,
			City:        in.City,
			Country:     in.Country,
			Phone:       in.Phone,
			Food:        in.Food,
			ArrivalID:   in.ArrivalID,
			DepartureID: in.DepartureID,
			RateID:      in.RateID,
			Disciplines: refs.disciplines,
			Notes:       in.Notes,
			State:       models.StateOpen,
		}
		if booking.Food == "" {
			booking.Food = models.FoodAll
		}
		if booking.Country == nil {
			country := defaultCountry
			booking.Country = &country
		}
		booking.Amount = pricing.BookingAmount(event, refs.rate, *booking, s.now())

		if err := tx.Omit("Disciplines.*").Create(booking).Error; err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}
		booking.Event = event
		booking.Rate = refs.rate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

type bookingReferences struct {
	rate        *models.Rate
	arrival     *models.Day
	departure   *models.Day
	disciplines []models.Discipline
}

// loadReferences resolves the ids of the input. Unknown ids are field errors.
func (s *Store) loadReferences(tx *gorm.DB, ve *ValidationError, in NewBooking) (bookingReferences, error) {
	var refs bookingReferences
	if in.RateID != nil {
		var rate models.Rate
		err := tx.Preload("Prices").Preload("Disciplines").First(&rate, *in.RateID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add("rate", invalidChoice)
		case err != nil:
			return refs, err
		default:
			refs.rate = &rate
		}
	}
	for field, id := range map[string]*uint{"arrival": in.ArrivalID, "departure": in.DepartureID} {
		if id == nil {
			continue
		}
		var day models.Day
		err := tx.First(&day, *id).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ve.Add(field, invalidChoice)
		case err != nil:
			return refs, err
		case field == "arrival":
			refs.arrival = &day
		default:
			refs.departure = &day
		}
	}
	if ids := uniq(in.DisciplineIDs); len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&refs.disciplines).Error; err != nil {
			return refs, err
		}
		if len(refs.disciplines) != len(ids) {
			ve.Add("disciplines", invalidChoice)
		}
	}
	return refs, nil
}

// checkBooking applies the consistency rules of strict mode.
func checkBooking(ve *ValidationError, event models.Event, refs bookingReferences, in NewBooking) {
	const foreign = "This choice does not belong to the event."
	if refs.rate != nil && refs.rate.EventID != event.ID {
		ve.Add("rate", foreign)
	}
	if refs.arrival != nil && refs.arrival.EventID != event.ID {
		ve.Add("arrival", foreign)
	}
	if refs.departure != nil && refs.departure.EventID != event.ID {
		ve.Add("departure", foreign)
	}
	for _, d := range refs.disciplines {
		if d.EventID != event.ID {
			ve.Add("disciplines", foreign)
			break
		}
	}
	if refs.arrival != nil && refs.departure != nil && refs.arrival.Order > refs.departure.Order {
		ve.Add("departure", "Departure must not be before arrival.")
	}
	if refs.rate != nil && !in.DateOfBirth.IsZero() && !pricing.RateEligible(*refs.rate, in.DateOfBirth, in.DisciplineIDs) {
		ve.Add("rate", "The rate is not available for this date of birth and disciplines.")
	}

	if event.AddressIsRequired && (empty(in.Address) || empty(in.Zipcode) || empty(in.City)) {
		ve.Add("address", "This field is required.")
	}
	if event.PhoneIsRequired && empty(in.Phone) {
		ve.Add("phone", "This field is required.")
	}
	if event.SexIsRequired && in.Sex == nil {
		ve.Add("sex", "This field is required.")
	}
}

func empty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// UpdateBooking saves an administrator's edit and recomputes the amount.
// The code, the booking date and the check-in date never change.
func (s *Store) UpdateBooking(ctx context.Context, a Actor, b *models.Booking, disciplineIDs []uint) error {
	if !b.State.Valid() {
		return invalid("state", fmt.Sprintf("%q is not a valid choice.", b.State))
	}
	if !b.Food.Valid() {
		return invalid("food", fmt.Sprintf("%q is not a valid choice.", b.Food))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Booking
		if err := tx.Scopes(ofEvents(a)).First(&current, b.ID).Error; err != nil {
			return notFound(err)
		}
		if err := ownsEvent(tx, a, b.EventID); err != nil {
			return invalid("event", invalidChoice)
		}

		var event models.Event
		if err := tx.Preload("Days").First(&event, b.EventID).Error; err != nil {
			return err
		}
		var rate *models.Rate
		if b.RateID != nil {
			rate = &models.Rate{}
			if err := tx.Preload("Prices").Where("event_id = ?", b.EventID).First(rate, *b.RateID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("rate", invalidChoice)
				}
				return err
			}
		}
		if b.ArrivalID != nil && !hasDay(event.Days, *b.ArrivalID) {
			return invalid("arrival", invalidChoice)
		}
		if b.DepartureID != nil && !hasDay(event.Days, *b.DepartureID) {
			return invalid("departure", invalidChoice)
		}
		disciplines, err := eventDisciplines(tx, b.EventID, disciplineIDs)
		if err != nil {
			return err
		}

		b.Code = current.Code
		b.CreatedAt = current.CreatedAt
		b.CheckinDate = current.CheckinDate
		b.Amount = pricing.BookingAmount(event, rate, *b, s.now())
		if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
			return err
		}
		if err := setBookingDisciplines(tx, b.ID, disciplines); err != nil {
			return err
		}
		b.Disciplines = disciplines
		return nil
	})
}

func hasDay(days []models.Day, id uint) bool {
	for _, d := range days {
		if d.ID == id {
			return true
		}
	}
	return false
}

func setBookingDisciplines(tx *gorm.DB, bookingID uint, disciplines []models.Discipline) error {
	if err := tx.Exec("DELETE FROM booking_disciplines WHERE booking_id = ?", bookingID).Error; err != nil {
		return err
	}
	for _, d := range disciplines {
		err := tx.Exec("INSERT INTO booking_disciplines (booking_id, discipline_id) VALUES (?, ?)", bookingID, d.ID).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SetState moves a booking to any state. Transitions are not enforced.
func (s *Store) SetState(ctx context.Context, a Actor, id uint, state models.BookingState) error {
	if !state.Valid() {
		return invalid("state", fmt.Sprintf("%q is not a valid choice.", state))
	}
	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Scopes(ofEvents(a)).
		Where("id = ?", id).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckIn stamps the check-in date on the given bookings and reports how
// many were updated. The state is left alone.
func (s *Store) CheckIn(ctx context.Context, a Actor, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Scopes(ofEvents(a)).
		Where("id IN ?", ids).
		Update("checkin_date", s.now())
	return res.RowsAffected, res.Error
}

// DeleteBooking returns the removed attachments so their files can be deleted.
func (s *Store) DeleteBooking(ctx context.Context, a Actor, id uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Scopes(ofEvents(a)).First(&booking, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("booking_id = ?", id).Find(&attachments).Error; err != nil {
			return err
		}
		return deleteBookings(tx, []uint{id})
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func deleteBookings(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("booking_id IN ?", ids).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("booking_id IN ?", ids).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM booking_disciplines WHERE booking_id IN ?", ids).Error; err != nil {
		return err
	}
	// hard delete, the code is unique
	return tx.Unscoped().Delete(&models.Booking{}, ids).Error
}
