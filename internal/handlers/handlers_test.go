package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/database"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db           *gorm.DB
	store        *store.Store
	files        *storage.Local
	authHandler  *auth.AuthHandler
	events       *EventHandler
	bookings     *BookingHandler
	transactions *TransactionHandler
	admin        models.User
	other        models.User
	ctx          context.Context
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		db:          db,
		store:       store.New(db),
		files:       storage.NewLocal(t.TempDir(), "/media/"),
		authHandler: auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db),
		admin:       models.User{DiscordID: "100", Username: "admin"},
		other:       models.User{DiscordID: "200", Username: "other"},
	}
	db.Create(&env.admin)
	db.Create(&env.other)
	env.events = NewEventHandler(env.store, env.files, env.authHandler)
	env.bookings = NewBookingHandler(env.store, env.files, env.authHandler)
	env.transactions = NewTransactionHandler(env.store, env.authHandler)
	env.ctx = auth.WithUser(context.Background(), &env.admin)
	return env
}

func (env *testEnv) createEvent(t *testing.T, name string) EventResponse {
	t.Helper()
	input := &CreateEventInput{Body: EventBody{Name: name, BeginDate: "2030-07-01", EndDate: "2030-07-03", IsOpen: true}}
	resp, err := env.events.HandleCreate(env.ctx, input)
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	return resp.Body
}

func (env *testEnv) book(t *testing.T, eventID uint, rateID *uint) *models.Booking {
	t.Helper()
	b, err := env.store.CreateBooking(context.Background(), store.NewBooking{
		EventID:     eventID,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Club:        "RV Nord",
		DateOfBirth: time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		RateID:      rateID,
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	return b
}

func (env *testEnv) exists(key string) bool {
	_, err := os.Stat(filepath.Join(env.files.Root(), filepath.FromSlash(key)))
	return err == nil
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected a status error, got %v", err)
	}
	return se.GetStatus()
}

func TestEventLifecycle(t *testing.T) {
	env := setupEnv(t)
	event := env.createEvent(t, "Summer Camp")

	if event.Slug != "summer-camp" {
		t.Errorf("expected slug 'summer-camp', got '%s'", event.Slug)
	}
	if event.AdminID != env.admin.ID {
		t.Errorf("expected admin %d, got %d", env.admin.ID, event.AdminID)
	}

	for i, day := range []string{"Friday", "Sunday"} {
		input := &AddDayInput{EventID: event.ID}
		input.Body.Day = day
		input.Body.Arrival = i == 0
		input.Body.Departure = i == 1
		input.Body.Order = uint(i)
		if _, err := env.events.HandleAddDay(env.ctx, input); err != nil {
			t.Fatalf("HandleAddDay returned error: %v", err)
		}
	}

	docInput := &AddDocumentInput{EventID: event.ID}
	docInput.Body.Name = "Consent form"
	docInput.Body.File = &FileUpload{Filename: "Consent Form.pdf", Data: []byte("%PDF")}
	doc, err := env.events.HandleAddDocument(env.ctx, docInput)
	if err != nil {
		t.Fatalf("HandleAddDocument returned error: %v", err)
	}
	if !strings.HasPrefix(doc.Body.URL, "/media/documents/") || !strings.HasSuffix(doc.Body.URL, "-consent-form.pdf") {
		t.Errorf("unexpected document url '%s'", doc.Body.URL)
	}

	logo, err := env.events.HandleUploadLogo(env.ctx, &UploadLogoInput{ID: event.ID, Body: FileUpload{Filename: "Logo.PNG", Data: []byte("png")}})
	if err != nil {
		t.Fatalf("HandleUploadLogo returned error: %v", err)
	}
	logoKey := strings.TrimPrefix(logo.Body.LogoURL, "/media/")
	if !env.exists(logoKey) {
		t.Errorf("expected logo file %s to exist", logoKey)
	}

	detail, err := env.events.HandleGet(env.ctx, &EventIDInput{ID: event.ID})
	if err != nil {
		t.Fatalf("HandleGet returned error: %v", err)
	}
	if len(detail.Body.Days) != 2 || detail.Body.Days[0].Day != "Friday" {
		t.Errorf("unexpected days %+v", detail.Body.Days)
	}
	if len(detail.Body.Documents) != 1 {
		t.Errorf("expected 1 document, got %d", len(detail.Body.Documents))
	}

	otherCtx := auth.WithUser(context.Background(), &env.other)
	if _, err := env.events.HandleGet(otherCtx, &EventIDInput{ID: event.ID}); statusOf(t, err) != 404 {
		t.Errorf("expected 404 for a foreign event, got %v", err)
	}

	if _, err := env.events.HandleDelete(env.ctx, &EventIDInput{ID: event.ID}); err != nil {
		t.Fatalf("HandleDelete returned error: %v", err)
	}
	if env.exists(logoKey) {
		t.Errorf("expected logo file %s to be removed", logoKey)
	}
	if _, err := env.events.HandleGet(env.ctx, &EventIDInput{ID: event.ID}); statusOf(t, err) != 404 {
		t.Errorf("expected 404 after delete, got %v", err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	env := setupEnv(t)

	input := &CreateEventInput{Body: EventBody{Name: "Backwards", BeginDate: "2030-07-03", EndDate: "2030-07-01"}}
	if _, err := env.events.HandleCreate(env.ctx, input); statusOf(t, err) != 422 {
		t.Errorf("expected 422, got %v", err)
	}

	env.createEvent(t, "Summer Camp")
	input = &CreateEventInput{Body: EventBody{Name: "Summer Camp", BeginDate: "2031-07-01", EndDate: "2031-07-03"}}
	if _, err := env.events.HandleCreate(env.ctx, input); statusOf(t, err) != 422 {
		t.Errorf("expected 422 for a taken slug, got %v", err)
	}
}

func TestRequiresAuthentication(t *testing.T) {
	env := setupEnv(t)

	if _, err := env.events.HandleList(context.Background(), &ListEventsInput{}); statusOf(t, err) != 401 {
		t.Errorf("expected 401, got %v", err)
	}
	if _, err := env.bookings.HandleList(context.Background(), &ListBookingsInput{}); statusOf(t, err) != 401 {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestBookingWorkflow(t *testing.T) {
	env := setupEnv(t)
	event := env.createEvent(t, "Summer Camp")

	docInput := &AddDocumentInput{EventID: event.ID}
	docInput.Body.Name = "Parental consent"
	docInput.Body.U18 = true
	docInput.Body.Upload = true
	doc, err := env.events.HandleAddDocument(env.ctx, docInput)
	if err != nil {
		t.Fatalf("HandleAddDocument returned error: %v", err)
	}

	booking := env.book(t, event.ID, nil)

	detail, err := env.bookings.HandleGet(env.ctx, &BookingIDInput{ID: booking.ID})
	if err != nil {
		t.Fatalf("HandleGet returned error: %v", err)
	}
	if len(detail.Body.MissingDocuments) != 1 || detail.Body.MissingDocuments[0] != "Parental consent" {
		t.Errorf("unexpected missing documents %v", detail.Body.MissingDocuments)
	}
	if len(detail.Body.SuggestedStates) != 1 || detail.Body.SuggestedStates[0] != "progress" {
		t.Errorf("unexpected suggested states %v", detail.Body.SuggestedStates)
	}
	if detail.Body.AgeColor != "red" {
		t.Errorf("expected a minor to be marked red, got %s", detail.Body.AgeColor)
	}

	upload := &UploadAttachmentInput{BookingID: booking.ID}
	upload.Body.DocumentID = doc.Body.ID
	upload.Body.Filename = "Signed Consent.pdf"
	upload.Body.Data = []byte("%PDF")
	att, err := env.bookings.HandleUploadAttachment(env.ctx, upload)
	if err != nil {
		t.Fatalf("HandleUploadAttachment returned error: %v", err)
	}
	key := "attachments/" + booking.Code + "/signed-consent.pdf"
	if att.Body.URL != "/media/"+key || !env.exists(key) {
		t.Errorf("expected attachment stored at %s, got url %s", key, att.Body.URL)
	}
	if _, err := env.bookings.HandleUploadAttachment(env.ctx, upload); statusOf(t, err) != 409 {
		t.Errorf("expected 409 for a second upload, got %v", err)
	}

	stateInput := &SetStateInput{ID: booking.ID}
	stateInput.Body.State = "confirmed"
	detail, err = env.bookings.HandleSetState(env.ctx, stateInput)
	if err != nil {
		t.Fatalf("HandleSetState returned error: %v", err)
	}
	if detail.Body.State != "confirmed" || len(detail.Body.MissingDocuments) != 0 {
		t.Errorf("unexpected booking after upload and confirmation: %+v", detail.Body)
	}

	checkIn := &CheckInInput{}
	checkIn.Body.IDs = []uint{booking.ID}
	res, err := env.bookings.HandleCheckIn(env.ctx, checkIn)
	if err != nil {
		t.Fatalf("HandleCheckIn returned error: %v", err)
	}
	if res.Body.Count != 1 || res.Body.Message != "1 booking was successfully checked in." {
		t.Errorf("unexpected check-in result %+v", res.Body)
	}

	update := &UpdateBookingInput{ID: booking.ID}
	update.Body.EventID = event.ID
	update.Body.FirstName = booking.FirstName
	update.Body.LastName = booking.LastName
	update.Body.Email = booking.Email
	update.Body.DateOfBirth = "2015-03-01"
	update.Body.Food = "all"
	update.Body.State = "confirmed"
	update.Body.InternalNotes = "arrived late"
	detail, err = env.bookings.HandleUpdate(env.ctx, update)
	if err != nil {
		t.Fatalf("HandleUpdate returned error: %v", err)
	}
	if detail.Body.CheckinDate == nil || detail.Body.InternalNotes != "arrived late" {
		t.Errorf("expected the edit to keep the check-in date, got %+v", detail.Body)
	}

	otherCtx := auth.WithUser(context.Background(), &env.other)
	if _, err := env.bookings.HandleDelete(otherCtx, &BookingIDInput{ID: booking.ID}); statusOf(t, err) != 404 {
		t.Errorf("expected 404 for a foreign booking, got %v", err)
	}
	if _, err := env.bookings.HandleDelete(env.ctx, &BookingIDInput{ID: booking.ID}); err != nil {
		t.Fatalf("HandleDelete returned error: %v", err)
	}
	if env.exists(key) {
		t.Errorf("expected attachment %s to be removed with the booking", key)
	}
}

func TestTransactions(t *testing.T) {
	env := setupEnv(t)
	event := env.createEvent(t, "Summer Camp")
	rate := models.Rate{
		EventID:  event.ID,
		Label:    "Youth",
		IsActive: true,
		Prices:   []models.Price{{Total: decimal.NewNullDecimal(decimal.NewFromInt(50))}},
	}
	if err := env.store.AddRate(env.ctx, store.ActorFor(env.admin), &rate, nil); err != nil {
		t.Fatalf("AddRate returned error: %v", err)
	}
	booking := env.book(t, event.ID, &rate.ID)

	input := &CreateTransactionInput{}
	input.Body.BookingID = booking.ID
	input.Body.Method = "cash"
	input.Body.Amount = "abc"
	if _, err := env.transactions.HandleCreate(env.ctx, input); statusOf(t, err) != 422 {
		t.Errorf("expected 422 for a bad amount, got %v", err)
	}

	input.Body.Amount = "20"
	input.Body.Date = "2030-06-01"
	created, err := env.transactions.HandleCreate(env.ctx, input)
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	if created.Body.Type != "incoming" || created.Body.Amount != "20.00" || created.Body.Fee != "0.00" {
		t.Errorf("unexpected transaction %+v", created.Body)
	}

	list, err := env.transactions.HandleList(env.ctx, &ListTransactionsInput{EventID: event.ID})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if len(list.Body) != 1 || list.Body[0].BookingCode != booking.Code {
		t.Errorf("unexpected transactions %+v", list.Body)
	}

	bookings, err := env.bookings.HandleList(env.ctx, &ListBookingsInput{})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if len(bookings.Body) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings.Body))
	}
	row := bookings.Body[0]
	if row.Amount != "50.00" || row.Paid != "20.00" || row.Open != "30.00" {
		t.Errorf("expected 50.00/20.00/30.00, got %s/%s/%s", row.Amount, row.Paid, row.Open)
	}

	otherCtx := auth.WithUser(context.Background(), &env.other)
	if _, err := env.transactions.HandleDelete(otherCtx, &ItemIDInput{ID: created.Body.ID}); statusOf(t, err) != 404 {
		t.Errorf("expected 404 for a foreign transaction, got %v", err)
	}
	if _, err := env.transactions.HandleDelete(env.ctx, &ItemIDInput{ID: created.Body.ID}); err != nil {
		t.Fatalf("HandleDelete returned error: %v", err)
	}
}
