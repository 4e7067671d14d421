package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/pricing"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	store       *store.Store
	files       storage.Storage
	authHandler *auth.AuthHandler
}

func NewBookingHandler(s *store.Store, files storage.Storage, authHandler *auth.AuthHandler) *BookingHandler {
	return &BookingHandler{store: s, files: files, authHandler: authHandler}
}

func ageColor(fullAge bool) string {
	if fullAge {
		return "green"
	}
	return "red"
}

func stateColor(s models.BookingState) string {
	switch s {
	case models.StateConfirmed:
		return "darkgreen"
	case models.StateProblem, models.StateCanceled:
		return "darkred"
	}
	return "orange"
}

// BookingRow is one line of the booking list.
type BookingRow struct {
	ID          uint       `json:"id"`
	Code        string     `json:"code"`
	EventID     uint       `json:"event_id"`
	Event       string     `json:"event"`
	Date        time.Time  `json:"date"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Club        string     `json:"club"`
	Age         int        `json:"age" doc:"Age in years at the start of the event"`
	AgeColor    string     `json:"age_color" enum:"green,red"`
	Rate        string     `json:"rate"`
	State       string     `json:"state"`
	StateLabel  string     `json:"state_label"`
	StateColor  string     `json:"state_color" enum:"darkgreen,darkred,orange"`
	Food        string     `json:"food"`
	Amount      string     `json:"amount"`
	Paid        string     `json:"paid"`
	Open        string     `json:"open"`
	CheckinDate *time.Time `json:"checkin_date"`
}

func bookingRow(b models.Booking) BookingRow {
	age := pricing.AgeAtEvent(b.DateOfBirth, b.Event)
	row := BookingRow{
		ID:          b.ID,
		Code:        b.Code,
		EventID:     b.EventID,
		Event:       b.Event.Name,
		Date:        b.CreatedAt,
		FirstName:   b.FirstName,
		LastName:    b.LastName,
		Email:       b.Email,
		Club:        b.Club,
		Age:         age.Years,
		AgeColor:    ageColor(pricing.FullAge(age)),
		State:       string(b.State),
		StateLabel:  b.State.Label(),
		StateColor:  stateColor(b.State),
		Food:        string(b.Food),
		Amount:      money(b.Amount),
		Paid:        money(b.Paid()),
		Open:        money(b.Open()),
		CheckinDate: b.CheckinDate,
	}
	if b.Rate != nil {
		row.Rate = b.Rate.Label
	}
	return row
}

type BookingFilterInput struct {
	EventID   uint   `query:"event" doc:"Only bookings of this event"`
	State     string `query:"state" enum:"open,progress,confirmed,problem,canceled" doc:"Workflow state"`
	Food      string `query:"food" enum:"all,v,vv"`
	Club      string `query:"club"`
	CheckedIn string `query:"checked_in" enum:"true,false" doc:"Filter by check-in"`
	Search    string `query:"q" doc:"Search names, email, club and code"`
}

func (f BookingFilterInput) filter() store.BookingFilter {
	out := store.BookingFilter{
		EventID: f.EventID,
		State:   models.BookingState(f.State),
		Food:    models.Food(f.Food),
		Club:    f.Club,
		Search:  f.Search,
	}
	if f.CheckedIn != "" {
		checkedIn := f.CheckedIn == "true"
		out.CheckedIn = &checkedIn
	}
	return out
}

type ListBookingsInput struct {
	auth.AuthInput
	BookingFilterInput
}

type ListBookingsOutput struct {
	Body []BookingRow
}

func (h *BookingHandler) HandleList(ctx context.Context, input *ListBookingsInput) (*ListBookingsOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	bookings, err := h.store.ListBookings(ctx, actor, input.filter())
	if err != nil {
		return nil, storeError(err, "list bookings")
	}
	res := &ListBookingsOutput{Body: make([]BookingRow, 0, len(bookings))}
	for _, b := range bookings {
		res.Body = append(res.Body, bookingRow(b))
	}
	return res, nil
}

type TransactionResponse struct {
	ID          uint      `json:"id"`
	BookingID   uint      `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	Type        string    `json:"type"`
	Method      string    `json:"method"`
	Number      string    `json:"number"`
	Amount      string    `json:"amount"`
	Fee         string    `json:"fee"`
	Reason      string    `json:"reason"`
	Date        time.Time `json:"date"`
}

func transactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		BookingID:   t.BookingID,
		BookingCode: t.Booking.Code,
		Type:        string(t.Type),
		Method:      string(t.Method),
		Number:      t.Number,
		Amount:      money(t.Amount),
		Fee:         money(t.Fee),
		Reason:      t.Reason,
		Date:        t.Date,
	}
}

type AttachmentResponse struct {
	ID         uint      `json:"id"`
	DocumentID uint      `json:"document_id"`
	Document   string    `json:"document"`
	URL        string    `json:"url"`
	Date       time.Time `json:"date"`
}

func (h *BookingHandler) attachmentResponse(a models.Attachment) AttachmentResponse {
	return AttachmentResponse{ID: a.ID, DocumentID: a.DocumentID, Document: a.Document.Name, URL: h.files.URL(a.File), Date: a.Date}
}

type BookingDetail struct {
	BookingRow
	Sex              *string               `json:"sex"`
	DateOfBirth      string                `json:"date_of_birth"`
	Address          *string               `json:"address"`
	Zipcode          *string               `json:"zipcode"`
	City             *string               `json:"city"`
	Country          *string               `json:"country"`
	Phone            *string               `json:"phone"`
	RateID           *uint                 `json:"rate_id"`
	ArrivalID        *uint                 `json:"arrival_id"`
	Arrival          string                `json:"arrival"`
	DepartureID      *uint                 `json:"departure_id"`
	Departure        string                `json:"departure"`
	Disciplines      []DisciplineResponse  `json:"disciplines"`
	Notes            string                `json:"notes"`
	InternalNotes    string                `json:"internal_notes"`
	Transactions     []TransactionResponse `json:"transactions"`
	Attachments      []AttachmentResponse  `json:"attachments"`
	MissingDocuments []string              `json:"missing_documents" doc:"Documents the participant still has to upload"`
	SuggestedStates  []string              `json:"suggested_states" doc:"Usual next states, any state may be set"`
}

func (h *BookingHandler) bookingDetail(b models.Booking) BookingDetail {
	d := BookingDetail{
		BookingRow:       bookingRow(b),
		DateOfBirth:      b.DateOfBirth.Format(dateLayout),
		Address:          b.Address,
		Zipcode:          b.Zipcode,
		City:             b.City,
		Country:          b.Country,
		Phone:            b.Phone,
		RateID:           b.RateID,
		ArrivalID:        b.ArrivalID,
		DepartureID:      b.DepartureID,
		Disciplines:      make([]DisciplineResponse, 0, len(b.Disciplines)),
		Notes:            b.Notes,
		InternalNotes:    b.InternalNotes,
		Transactions:     make([]TransactionResponse, 0, len(b.Transactions)),
		Attachments:      make([]AttachmentResponse, 0, len(b.Attachments)),
		MissingDocuments: []string{},
		SuggestedStates:  []string{},
	}
	if b.Sex != nil {
		sex := string(*b.Sex)
		d.Sex = &sex
	}
	if b.Arrival != nil {
		d.Arrival = b.Arrival.Label
	}
	if b.Departure != nil {
		d.Departure = b.Departure.Label
	}
	for _, disc := range b.Disciplines {
		d.Disciplines = append(d.Disciplines, disciplineResponse(disc))
	}
	for _, t := range b.Transactions {
		t.Booking.Code = b.Code
		d.Transactions = append(d.Transactions, transactionResponse(t))
	}
	for _, a := range b.Attachments {
		d.Attachments = append(d.Attachments, h.attachmentResponse(a))
	}
	for _, doc := range store.MissingDocuments(b) {
		d.MissingDocuments = append(d.MissingDocuments, doc.Name)
	}
	for _, s := range models.SuggestedTransitions[b.State] {
		d.SuggestedStates = append(d.SuggestedStates, string(s))
	}
	return d
}

type BookingIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type BookingDetailOutput struct {
	Body BookingDetail
}

func (h *BookingHandler) HandleGet(ctx context.Context, input *BookingIDInput) (*BookingDetailOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	b, err := h.store.GetBooking(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load booking")
	}
	return &BookingDetailOutput{Body: h.bookingDetail(*b)}, nil
}

type UpdateBookingInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		EventID       uint    `json:"event_id"`
		FirstName     string  `json:"first_name" minLength:"1" maxLength:"100"`
		LastName      string  `json:"last_name" minLength:"1" maxLength:"100"`
		Sex           *string `json:"sex,omitempty" enum:"f,m"`
		Email         string  `json:"email" format:"email"`
		Club          string  `json:"club,omitempty" maxLength:"100"`
		DateOfBirth   string  `json:"date_of_birth" format:"date"`
		Address       *string `json:"address,omitempty" maxLength:"255"`
		Zipcode       *string `json:"zipcode,omitempty" maxLength:"20"`
		City          *string `json:"city,omitempty" maxLength:"100"`
		Country       *string `json:"country,omitempty" minLength:"2" maxLength:"2"`
		Phone         *string `json:"phone,omitempty" maxLength:"20"`
		Food          string  `json:"food" enum:"all,v,vv"`
		ArrivalID     *uint   `json:"arrival_id,omitempty"`
		DepartureID   *uint   `json:"departure_id,omitempty"`
		RateID        *uint   `json:"rate_id,omitempty"`
		Disciplines   []uint  `json:"disciplines,omitempty"`
		Notes         string  `json:"notes,omitempty"`
		State         string  `json:"state" enum:"open,progress,confirmed,problem,canceled"`
		InternalNotes string  `json:"internal_notes,omitempty"`
	}
}

func (h *BookingHandler) HandleUpdate(ctx context.Context, input *UpdateBookingInput) (*BookingDetailOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	body := input.Body
	dob, err := parseDate("date_of_birth", body.DateOfBirth)
	if err != nil {
		return nil, err
	}
	b := models.Booking{
		EventID:       body.EventID,
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Email:         body.Email,
		Club:          body.Club,
		DateOfBirth:   dob,
		Address:       body.Address,
		Zipcode:       body.Zipcode,
		City:          body.City,
		Country:       body.Country,
		Phone:         body.Phone,
		Food:          models.Food(body.Food),
		ArrivalID:     body.ArrivalID,
		DepartureID:   body.DepartureID,
		RateID:        body.RateID,
		Notes:         body.Notes,
		State:         models.BookingState(body.State),
		InternalNotes: body.InternalNotes,
	}
	b.ID = input.ID
	if body.Sex != nil {
		sex := models.Sex(*body.Sex)
		b.Sex = &sex
	}

	if err := h.store.UpdateBooking(ctx, actor, &b, body.Disciplines); err != nil {
		return nil, storeError(err, "update booking")
	}
	updated, err := h.store.GetBooking(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load booking")
	}
	return &BookingDetailOutput{Body: h.bookingDetail(*updated)}, nil
}

type SetStateInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		State string `json:"state" enum:"open,progress,confirmed,problem,canceled"`
	}
}

func (h *BookingHandler) HandleSetState(ctx context.Context, input *SetStateInput) (*BookingDetailOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.SetState(ctx, actor, input.ID, models.BookingState(input.Body.State)); err != nil {
		return nil, storeError(err, "set state")
	}
	b, err := h.store.GetBooking(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load booking")
	}
	return &BookingDetailOutput{Body: h.bookingDetail(*b)}, nil
}

func (h *BookingHandler) HandleDelete(ctx context.Context, input *BookingIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	attachments, err := h.store.DeleteBooking(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "delete booking")
	}
	for _, a := range attachments {
		h.deleteFile(ctx, a.File)
	}
	logrus.WithField("booking_id", input.ID).Info("Booking deleted")
	return nil, nil
}

type CheckInInput struct {
	auth.AuthInput
	Body struct {
		IDs []uint `json:"ids" minItems:"1" doc:"Bookings to check in"`
	}
}

type CheckInOutput struct {
	Body struct {
		Count   int64  `json:"count"`
		Message string `json:"message"`
	}
}

func (h *BookingHandler) HandleCheckIn(ctx context.Context, input *CheckInInput) (*CheckInOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	n, err := h.store.CheckIn(ctx, actor, input.Body.IDs)
	if err != nil {
		return nil, storeError(err, "check in")
	}
	res := &CheckInOutput{}
	res.Body.Count = n
	if n == 1 {
		res.Body.Message = "1 booking was successfully checked in."
	} else {
		res.Body.Message = fmt.Sprintf("%d bookings were successfully checked in.", n)
	}
	return res, nil
}
