package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/sirupsen/logrus"
)

type CSVOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

var bookingColumns = []string{
	"code", "created", "event", "first_name", "last_name", "sex", "email", "club",
	"date_of_birth", "address", "zipcode", "city", "country", "phone", "food",
	"rate", "arrival", "departure", "disciplines", "amount", "paid", "open",
	"state", "checkin_date", "notes",
}

func bookingRecord(b models.Booking) []string {
	disciplines := make([]string, 0, len(b.Disciplines))
	for _, d := range b.Disciplines {
		disciplines = append(disciplines, d.Code)
	}
	var rate, arrival, departure, sex, checkin string
	if b.Rate != nil {
		rate = b.Rate.Label
	}
	if b.Arrival != nil {
		arrival = b.Arrival.Label
	}
	if b.Departure != nil {
		departure = b.Departure.Label
	}
	if b.Sex != nil {
		sex = string(*b.Sex)
	}
	if b.CheckinDate != nil {
		checkin = b.CheckinDate.Format(time.RFC3339)
	}
	return []string{
		b.Code,
		b.CreatedAt.Format(time.RFC3339),
		b.Event.Name,
		b.FirstName,
		b.LastName,
		sex,
		b.Email,
		b.Club,
		b.DateOfBirth.Format(dateLayout),
		deref(b.Address),
		deref(b.Zipcode),
		deref(b.City),
		deref(b.Country),
		deref(b.Phone),
		b.Food.Label(),
		rate,
		arrival,
		departure,
		strings.Join(disciplines, ","),
		money(b.Amount),
		money(b.Paid()),
		money(b.Open()),
		b.State.Label(),
		checkin,
		b.Notes,
	}
}

// HandleExport writes the filtered booking list as CSV.
func (h *BookingHandler) HandleExport(ctx context.Context, input *ListBookingsInput) (*CSVOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	bookings, err := h.store.ListBookings(ctx, actor, input.filter())
	if err != nil {
		return nil, storeError(err, "export bookings")
	}

	rows := make([][]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, bookingRecord(b))
	}
	return writeCSV("bookings", bookingColumns, rows)
}

var transactionColumns = []string{"booking", "type", "method", "number", "amount", "fee", "reason", "date"}

func (h *TransactionHandler) HandleExport(ctx context.Context, input *ListTransactionsInput) (*CSVOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	transactions, err := h.store.ListTransactions(ctx, actor, input.EventID)
	if err != nil {
		return nil, storeError(err, "export transactions")
	}

	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, []string{
			t.Booking.Code,
			string(t.Type),
			string(t.Method),
			t.Number,
			money(t.Amount),
			money(t.Fee),
			t.Reason,
			t.Date.Format(dateLayout),
		})
	}
	return writeCSV("transactions", transactionColumns, rows)
}

func writeCSV(name string, header []string, rows [][]string) (*CSVOutput, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, csvError(err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, csvError(err)
	}
	return &CSVOutput{
		ContentType:        "text/csv; charset=utf-8",
		ContentDisposition: fmt.Sprintf(`attachment; filename="%s.csv"`, name),
		Body:               buf.Bytes(),
	}, nil
}

func csvError(err error) error {
	logrus.WithError(err).Error("Failed to write CSV")
	return huma.Error500InternalServerError("Failed to write CSV")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
