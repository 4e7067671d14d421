package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/sirupsen/logrus"
)

type EventHandler struct {
	store       *store.Store
	files       storage.Storage
	authHandler *auth.AuthHandler
}

func NewEventHandler(s *store.Store, files storage.Storage, authHandler *auth.AuthHandler) *EventHandler {
	return &EventHandler{store: s, files: files, authHandler: authHandler}
}

type EventBody struct {
	Name        string `json:"name" minLength:"1" maxLength:"100"`
	Slug        string `json:"slug,omitempty" maxLength:"50" doc:"Short name, generated from the name when empty"`
	BeginDate   string `json:"begin_date" format:"date"`
	EndDate     string `json:"end_date" format:"date"`
	Description string `json:"description,omitempty"`
	IsOpen      bool   `json:"is_open,omitempty" doc:"Whether bookings are accepted"`

	ContactEmail string `json:"contact_email,omitempty"`
	ContactName  string `json:"contact_name,omitempty" maxLength:"100"`
	Host         string `json:"host,omitempty" maxLength:"100"`

	PayPal        string `json:"paypal,omitempty"`
	AccountHolder string `json:"account_holder,omitempty" maxLength:"100"`
	BIC           string `json:"bic,omitempty" maxLength:"11"`
	IBAN          string `json:"iban,omitempty" maxLength:"34"`

	AddressIsRequired  bool `json:"address_is_required,omitempty"`
	PhoneIsRequired    bool `json:"phone_is_required,omitempty"`
	SexIsRequired      bool `json:"sex_is_required,omitempty"`
	FoodIsIncluded     bool `json:"food_is_included,omitempty"`
	Vegetarian         bool `json:"vegetarian,omitempty"`
	Vegan              bool `json:"vegan,omitempty"`
	VeganBreakfastOnly bool `json:"vegan_breakfast_only,omitempty"`

	AdminID uint `json:"admin_id,omitempty" doc:"Administrator of the event, superusers only"`
}

func (b EventBody) toModel() (models.Event, error) {
	begin, err := parseDate("begin_date", b.BeginDate)
	if err != nil {
		return models.Event{}, err
	}
	end, err := parseDate("end_date", b.EndDate)
	if err != nil {
		return models.Event{}, err
	}
	if end.Before(begin) {
		return models.Event{}, invalidField("end_date", "The event cannot end before it begins.", b.EndDate)
	}
	return models.Event{
		Name:               b.Name,
		Slug:               b.Slug,
		BeginDate:          begin,
		EndDate:            end,
		Description:        b.Description,
		IsOpen:             b.IsOpen,
		ContactEmail:       b.ContactEmail,
		ContactName:        b.ContactName,
		Host:               b.Host,
		PayPal:             b.PayPal,
		AccountHolder:      b.AccountHolder,
		BIC:                b.BIC,
		IBAN:               b.IBAN,
		AddressIsRequired:  b.AddressIsRequired,
		PhoneIsRequired:    b.PhoneIsRequired,
		SexIsRequired:      b.SexIsRequired,
		FoodIsIncluded:     b.FoodIsIncluded,
		Vegetarian:         b.Vegetarian,
		Vegan:              b.Vegan,
		VeganBreakfastOnly: b.VeganBreakfastOnly,
		AdminID:            b.AdminID,
	}, nil
}

type EventResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	EventBody
	LogoURL string `json:"logo_url"`
}

func (h *EventHandler) eventResponse(e models.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		EventBody: EventBody{
			Name:               e.Name,
			Slug:               e.Slug,
			BeginDate:          e.BeginDate.Format(dateLayout),
			EndDate:            e.EndDate.Format(dateLayout),
			Description:        e.Description,
			IsOpen:             e.IsOpen,
			ContactEmail:       e.ContactEmail,
			ContactName:        e.ContactName,
			Host:               e.Host,
			PayPal:             e.PayPal,
			AccountHolder:      e.AccountHolder,
			BIC:                e.BIC,
			IBAN:               e.IBAN,
			AddressIsRequired:  e.AddressIsRequired,
			PhoneIsRequired:    e.PhoneIsRequired,
			SexIsRequired:      e.SexIsRequired,
			FoodIsIncluded:     e.FoodIsIncluded,
			Vegetarian:         e.Vegetarian,
			Vegan:              e.Vegan,
			VeganBreakfastOnly: e.VeganBreakfastOnly,
			AdminID:            e.AdminID,
		},
		LogoURL: h.files.URL(e.Logo),
	}
}

type ListEventsInput struct {
	auth.AuthInput
}

type ListEventsOutput struct {
	Body []EventResponse
}

func (h *EventHandler) HandleList(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	events, err := h.store.ListEvents(ctx, actor)
	if err != nil {
		return nil, storeError(err, "list events")
	}
	res := &ListEventsOutput{Body: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		res.Body = append(res.Body, h.eventResponse(e))
	}
	return res, nil
}

type EventIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type EventDetail struct {
	EventResponse
	Days        []DayResponse        `json:"days"`
	Disciplines []DisciplineResponse `json:"disciplines"`
	Rates       []RateResponse       `json:"rates"`
	Products    []ProductResponse    `json:"products"`
	Documents   []DocumentResponse   `json:"documents"`
	Pages       []PageResponse       `json:"pages"`
}

type EventDetailOutput struct {
	Body EventDetail
}

func (h *EventHandler) HandleGet(ctx context.Context, input *EventIDInput) (*EventDetailOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.store.GetEvent(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load event")
	}

	detail := EventDetail{
		EventResponse: h.eventResponse(*event),
		Days:          make([]DayResponse, 0, len(event.Days)),
		Disciplines:   make([]DisciplineResponse, 0, len(event.Disciplines)),
		Rates:         make([]RateResponse, 0, len(event.Rates)),
		Products:      make([]ProductResponse, 0, len(event.Products)),
		Documents:     make([]DocumentResponse, 0, len(event.Documents)),
		Pages:         make([]PageResponse, 0, len(event.WebPages)),
	}
	for _, d := range event.Days {
		detail.Days = append(detail.Days, dayResponse(d))
	}
	for _, d := range event.Disciplines {
		detail.Disciplines = append(detail.Disciplines, disciplineResponse(d))
	}
	for _, r := range event.Rates {
		detail.Rates = append(detail.Rates, rateResponse(r))
	}
	for _, p := range event.Products {
		detail.Products = append(detail.Products, productResponse(p))
	}
	for _, d := range event.Documents {
		detail.Documents = append(detail.Documents, h.documentResponse(d))
	}
	for _, p := range event.WebPages {
		detail.Pages = append(detail.Pages, pageResponse(p))
	}
	return &EventDetailOutput{Body: detail}, nil
}

type CreateEventInput struct {
	auth.AuthInput
	Body EventBody
}

type EventOutput struct {
	Body EventResponse
}

func (h *EventHandler) HandleCreate(ctx context.Context, input *CreateEventInput) (*EventOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := input.Body.toModel()
	if err != nil {
		return nil, err
	}
	if err := h.store.CreateEvent(ctx, actor, &event); err != nil {
		return nil, storeError(err, "create event")
	}
	logrus.WithFields(logrus.Fields{"event": event.Slug, "admin_id": event.AdminID}).Info("Event created")
	return &EventOutput{Body: h.eventResponse(event)}, nil
}

type UpdateEventInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body EventBody
}

func (h *EventHandler) HandleUpdate(ctx context.Context, input *UpdateEventInput) (*EventOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	current, err := h.store.GetEvent(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load event")
	}
	event, err := input.Body.toModel()
	if err != nil {
		return nil, err
	}
	event.ID = input.ID
	event.Logo = current.Logo
	if event.AdminID == 0 {
		event.AdminID = current.AdminID
	}
	if err := h.store.SaveEvent(ctx, actor, &event); err != nil {
		return nil, storeError(err, "update event")
	}
	return &EventOutput{Body: h.eventResponse(event)}, nil
}

func (h *EventHandler) HandleDelete(ctx context.Context, input *EventIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.store.GetEvent(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load event")
	}
	if err := h.store.DeleteEvent(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete event")
	}

	keys := []string{event.Logo}
	for _, d := range event.Documents {
		keys = append(keys, d.File)
	}
	h.removeFiles(ctx, keys...)
	logrus.WithField("event", event.Slug).Info("Event deleted")
	return nil, nil
}

type UploadLogoInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body FileUpload
}

func (h *EventHandler) HandleUploadLogo(ctx context.Context, input *UploadLogoInput) (*EventOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.store.GetEvent(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "load event")
	}

	key := storage.UniqueKey("logos", input.Body.Filename)
	if err := h.files.Put(ctx, key, input.Body.Data, input.Body.ContentType); err != nil {
		logrus.WithError(err).Error("Failed to store logo")
		return nil, huma.Error500InternalServerError("Failed to store logo")
	}

	old := event.Logo
	event.Logo = key
	if err := h.store.SaveEvent(ctx, actor, event); err != nil {
		h.removeFiles(ctx, key)
		return nil, storeError(err, "update event")
	}
	h.removeFiles(ctx, old)
	return &EventOutput{Body: h.eventResponse(*event)}, nil
}

// removeFiles deletes stored files on a best effort basis.
func (h *EventHandler) removeFiles(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := h.files.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to delete file")
		}
	}
}
