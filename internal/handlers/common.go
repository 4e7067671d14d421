package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

var cookieAuth = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}

func secured(o *huma.Operation) {
	o.Security = cookieAuth
}

func authorize(ctx context.Context, authHandler *auth.AuthHandler, input auth.AuthInput) (store.Actor, error) {
	user, err := authHandler.Authorize(ctx, input)
	if err != nil {
		return store.Actor{}, err
	}
	return store.ActorFor(*user), nil
}

// storeError maps store errors onto HTTP errors. Unexpected errors are logged
// and hidden from the client.
func storeError(err error, action string) error {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		return huma.Error422UnprocessableEntity("Invalid input", validationDetails(ve)...)
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound("Not found")
	case errors.Is(err, store.ErrAttachmentExists):
		return huma.Error409Conflict(err.Error())
	}
	logrus.WithError(err).Error("Failed to " + action)
	return huma.Error500InternalServerError("Failed to " + action)
}

func validationDetails(ve *store.ValidationError) []error {
	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	details := make([]error, 0, len(fields))
	for _, f := range fields {
		details = append(details, &huma.ErrorDetail{
			Location: "body." + f,
			Message:  strings.Join(ve.Fields[f], " "),
		})
	}
	return details
}

func invalidField(field, message string, value any) error {
	return huma.Error422UnprocessableEntity("Invalid input", &huma.ErrorDetail{
		Location: "body." + field,
		Message:  message,
		Value:    value,
	})
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, invalidField(field, "Enter a valid date.", s)
	}
	return t, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalidField(field, "Enter a number.", s)
	}
	return d, nil
}

func parseNullDecimal(field, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(field, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// FileUpload carries a file inside a JSON body.
type FileUpload struct {
	Filename    string `json:"filename" minLength:"1" doc:"Original file name"`
	ContentType string `json:"content_type,omitempty" doc:"MIME type of the file"`
	Data        []byte `json:"data" doc:"Base64 encoded file content"`
}
