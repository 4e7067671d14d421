package graph

import (
	"context"
	"errors"
	"sort"

	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/sirupsen/logrus"
)

type CreateBookingInput struct {
	Event            int32
	Code             *string
	FirstName        string
	LastName         string
	Email            string
	Club             *string
	DateOfBirth      Date
	Sex              *string
	Food             *string
	Address          *string
	Zipcode          *string
	City             *string
	Country          *string
	Phone            *string
	Arrival          *int32
	Departure        *int32
	Rate             *int32
	Disciplines      *[]int32
	Notes            *string
	ClientMutationID *string
}

func (in CreateBookingInput) newBooking() store.NewBooking {
	nb := store.NewBooking{
		EventID:     id(in.Event),
		Code:        value(in.Code),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Club:        value(in.Club),
		DateOfBirth: in.DateOfBirth.Time,
		Address:     in.Address,
		Zipcode:     in.Zipcode,
		City:        in.City,
		Country:     in.Country,
		Phone:       in.Phone,
		Food:        models.Food(value(in.Food)),
		ArrivalID:   idPtr(in.Arrival),
		DepartureID: idPtr(in.Departure),
		RateID:      idPtr(in.Rate),
		Notes:       value(in.Notes),
	}
	if in.Sex != nil {
		sex := models.Sex(*in.Sex)
		nb.Sex = &sex
	}
	if in.Disciplines != nil {
		for _, d := range *in.Disciplines {
			nb.DisciplineIDs = append(nb.DisciplineIDs, id(d))
		}
	}
	return nb
}

type fieldError struct {
	Field    string
	Messages []string
}

type createBookingPayload struct {
	ID               *int32
	Code             *string
	Errors           []*fieldError
	ClientMutationID *string
}

// CreateBooking is the public registration path. Invalid input is reported
// in the payload errors, not as a GraphQL error.
func (r *Resolver) CreateBooking(ctx context.Context, args struct{ Input CreateBookingInput }) (*createBookingPayload, error) {
	payload := &createBookingPayload{
		Errors:           []*fieldError{},
		ClientMutationID: args.Input.ClientMutationID,
	}

	booking, err := r.store.CreateBooking(ctx, args.Input.newBooking())
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		payload.Errors = fieldErrors(ve)
		return payload, nil
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to create booking")
		return nil, errors.New("failed to create booking")
	}

	bookingID := int32(booking.ID)
	payload.ID = &bookingID
	payload.Code = &booking.Code
	logrus.WithFields(logrus.Fields{"event": booking.Event.Slug, "booking": booking.Code}).Info("Booking created")

	if r.notifier != nil {
		if err := r.notifier.NotifyBooking(booking.Event, *booking); err != nil {
			logrus.WithError(err).WithField("booking", booking.Code).Warn("Failed to notify about booking")
		}
	}
	return payload, nil
}

func fieldErrors(ve *store.ValidationError) []*fieldError {
	res := make([]*fieldError, 0, len(ve.Fields))
	for field, messages := range ve.Fields {
		res = append(res, &fieldError{Field: field, Messages: messages})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Field < res[j].Field })
	return res
}

func id(v int32) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}

func idPtr(v *int32) *uint {
	if v == nil {
		return nil
	}
	u := id(*v)
	return &u
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
