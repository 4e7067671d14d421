package graph

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/database"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
)

type recordingNotifier struct {
	bookings []models.Booking
}

func (n *recordingNotifier) NotifyBooking(event models.Event, booking models.Booking) error {
	n.bookings = append(n.bookings, booking)
	return nil
}

type fixture struct {
	store    *store.Store
	schema   *graphql.Schema
	notifier *recordingNotifier
	alice    models.User
	bob      models.User
	camp     models.Event
	days     []models.Day
	adult    models.Rate
	youth    models.Rate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	f := &fixture{
		store:    store.New(db),
		notifier: &recordingNotifier{},
		alice:    models.User{DiscordID: "1", Username: "alice"},
		bob:      models.User{DiscordID: "2", Username: "bob"},
	}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)
	alice := store.ActorFor(f.alice)

	f.camp = models.Event{
		Name:      "Summer Camp",
		BeginDate: time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, 7, 3, 0, 0, 0, 0, time.UTC),
		Logo:      "logos/camp.png",
		IsOpen:    true,
	}
	require.NoError(t, f.store.CreateEvent(ctx, alice, &f.camp))
	for i, label := range []string{"Friday", "Saturday", "Sunday"} {
		day := models.Day{EventID: f.camp.ID, Label: label, Arrival: i < 2, Departure: i > 0, Order: uint(i + 1)}
		require.NoError(t, f.store.AddDay(ctx, alice, &day))
		f.days = append(f.days, day)
	}

	f.adult = models.Rate{
		EventID:  f.camp.ID,
		Label:    "Adult",
		IsActive: true,
		Order:    1,
		Prices:   []models.Price{{Total: decimal.NewNullDecimal(decimal.NewFromInt(40))}},
	}
	require.NoError(t, f.store.AddRate(ctx, alice, &f.adult, nil))
	from := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	f.youth = models.Rate{EventID: f.camp.ID, Label: "Youth", DOBFrom: &from, IsActive: true, Order: 2}
	require.NoError(t, f.store.AddRate(ctx, alice, &f.youth, nil))
	hidden := models.Rate{EventID: f.camp.ID, Label: "Staff", Order: 3}
	require.NoError(t, f.store.AddRate(ctx, alice, &hidden, nil))

	files := storage.NewLocal(t.TempDir(), "/media/")
	f.schema = NewSchema(NewResolver(f.store, files, f.notifier))
	return f
}

func (f *fixture) exec(t *testing.T, ctx context.Context, query string, vars map[string]interface{}) gjson.Result {
	t.Helper()
	resp := f.schema.Exec(ctx, query, "", vars)
	require.Empty(t, resp.Errors)
	return gjson.ParseBytes(resp.Data)
}

func TestEventQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	query := `query($id: Int) {
		event(id: $id) {
			id name slug logo beginDate isOpen
			arrival { day }
			departure { day }
			rates { label prices { price priceDay } }
			ratesAvailable(dateOfBirth: "2015-05-05") { label }
		}
	}`
	data := f.exec(t, ctx, query, map[string]interface{}{"id": int(f.camp.ID)})

	assert.Equal(t, "Summer Camp", data.Get("event.name").String())
	assert.Equal(t, "summer-camp", data.Get("event.slug").String())
	assert.Equal(t, "/media/logos/camp.png", data.Get("event.logo").String())
	assert.Equal(t, "2030-07-01", data.Get("event.beginDate").String())
	assert.Equal(t, `["Friday","Saturday"]`, data.Get("event.arrival.#.day").Raw)
	assert.Equal(t, `["Saturday","Sunday"]`, data.Get("event.departure.#.day").Raw)
	assert.Equal(t, `["Adult","Youth"]`, data.Get("event.rates.#.label").Raw)
	assert.Equal(t, "40.00", data.Get("event.rates.0.prices.0.price").String())
	assert.Equal(t, gjson.Null, data.Get("event.rates.0.prices.0.priceDay").Type)
	assert.Equal(t, `["Adult","Youth"]`, data.Get("event.ratesAvailable.#.label").Raw)

	data = f.exec(t, ctx, `{ event(id: 999) { id } }`, nil)
	assert.Equal(t, gjson.Null, data.Get("event").Type)

	data = f.exec(t, ctx, `{ event { id } }`, nil)
	assert.Equal(t, gjson.Null, data.Get("event").Type)
}

func TestRatesAvailableByDateOfBirth(t *testing.T) {
	f := newFixture(t)
	query := `query($id: Int) { event(id: $id) { ratesAvailable(dateOfBirth: "1990-01-01") { label } } }`
	data := f.exec(t, context.Background(), query, map[string]interface{}{"id": int(f.camp.ID)})
	assert.Equal(t, `["Adult"]`, data.Get("event.ratesAvailable.#.label").Raw)
}

func TestAllEventsPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, name := range []string{"Spring Cup", "Autumn Cup"} {
		e := models.Event{Name: name, BeginDate: time.Date(2029, time.Month(3+i*6), 1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, f.store.CreateEvent(ctx, store.ActorFor(f.bob), &e))
	}

	query := `query($first: Int, $after: String) {
		allEvents(first: $first, after: $after) {
			totalCount
			edges { cursor node { name } }
			pageInfo { hasNextPage hasPreviousPage endCursor }
		}
	}`
	data := f.exec(t, ctx, query, map[string]interface{}{"first": 2})
	assert.Equal(t, int64(3), data.Get("allEvents.totalCount").Int())
	assert.Equal(t, `["Summer Camp","Autumn Cup"]`, data.Get("allEvents.edges.#.node.name").Raw)
	assert.True(t, data.Get("allEvents.pageInfo.hasNextPage").Bool())
	assert.False(t, data.Get("allEvents.pageInfo.hasPreviousPage").Bool())

	after := data.Get("allEvents.pageInfo.endCursor").String()
	data = f.exec(t, ctx, query, map[string]interface{}{"first": 2, "after": after})
	assert.Equal(t, `["Spring Cup"]`, data.Get("allEvents.edges.#.node.name").Raw)
	assert.False(t, data.Get("allEvents.pageInfo.hasNextPage").Bool())
	assert.True(t, data.Get("allEvents.pageInfo.hasPreviousPage").Bool())
}

func TestCursorRoundTrip(t *testing.T) {
	assert.Equal(t, "YXJyYXljb25uZWN0aW9uOjA=", encodeCursor(0))
	assert.Equal(t, 7, decodeCursor(encodeCursor(7)))
	assert.Equal(t, -1, decodeCursor("bogus"))
}

const createBooking = `mutation($input: CreateBookingInput!) {
	createBooking(input: $input) {
		id code clientMutationId
		errors { field messages }
	}
}`

func (f *fixture) bookingInput() map[string]interface{} {
	return map[string]interface{}{
		"event":            int(f.camp.ID),
		"firstName":        "Ada",
		"lastName":         "Lovelace",
		"email":            "ada@example.com",
		"club":             "RV Nord",
		"dateOfBirth":      "1990-12-10",
		"arrival":          int(f.days[0].ID),
		"departure":        int(f.days[2].ID),
		"rate":             int(f.adult.ID),
		"clientMutationId": "abc",
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	data := f.exec(t, context.Background(), createBooking, map[string]interface{}{"input": f.bookingInput()})

	assert.Equal(t, "[]", data.Get("createBooking.errors").Raw)
	assert.Equal(t, "abc", data.Get("createBooking.clientMutationId").String())
	code := data.Get("createBooking.code").String()
	assert.Len(t, code, 8)

	require.Len(t, f.notifier.bookings, 1)
	booking := f.notifier.bookings[0]
	assert.Equal(t, code, booking.Code)
	assert.Equal(t, uint(data.Get("createBooking.id").Int()), booking.ID)
	assert.Equal(t, "40.00", booking.Amount.StringFixed(2))
	assert.Equal(t, models.FoodAll, booking.Food)
}

func TestCreateBookingErrors(t *testing.T) {
	f := newFixture(t)
	input := f.bookingInput()
	input["firstName"] = ""
	input["email"] = "not an email"

	data := f.exec(t, context.Background(), createBooking, map[string]interface{}{"input": input})
	assert.Equal(t, gjson.Null, data.Get("createBooking.id").Type)
	assert.Equal(t, `["email","firstName"]`, data.Get("createBooking.errors.#.field").Raw)
	assert.Empty(t, f.notifier.bookings)

	input = f.bookingInput()
	input["event"] = 999
	data = f.exec(t, context.Background(), createBooking, map[string]interface{}{"input": input})
	assert.Equal(t, `["event"]`, data.Get("createBooking.errors.#.field").Raw)
}

func TestCreateBookingRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	input := f.bookingInput()
	input["dateOfBirth"] = "10.12.1990"

	resp := f.schema.Exec(context.Background(), createBooking, "", map[string]interface{}{"input": input})
	assert.NotEmpty(t, resp.Errors)
}

func TestAllBookingsScoped(t *testing.T) {
	f := newFixture(t)
	f.exec(t, context.Background(), createBooking, map[string]interface{}{"input": f.bookingInput()})

	query := `{ allBookings { code firstName amount paid open event { name } rate { label prices { price } } arrival { day } } }`

	data := f.exec(t, context.Background(), query, nil)
	assert.Equal(t, "[]", data.Get("allBookings").Raw)

	data = f.exec(t, auth.WithUser(context.Background(), &f.bob), query, nil)
	assert.Equal(t, "[]", data.Get("allBookings").Raw)

	data = f.exec(t, auth.WithUser(context.Background(), &f.alice), query, nil)
	require.Equal(t, int64(1), data.Get("allBookings.#").Int())
	assert.Equal(t, "Ada", data.Get("allBookings.0.firstName").String())
	assert.Equal(t, "Summer Camp", data.Get("allBookings.0.event.name").String())
	assert.Equal(t, "40.00", data.Get("allBookings.0.amount").String())
	assert.Equal(t, "0.00", data.Get("allBookings.0.paid").String())
	assert.Equal(t, "40.00", data.Get("allBookings.0.open").String())
	assert.Equal(t, "40.00", data.Get("allBookings.0.rate.prices.0.price").String())
	assert.Equal(t, "Friday", data.Get("allBookings.0.arrival.day").String())
}

func TestDateScalar(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalGraphQL("2024-02-29"))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(out))
	assert.Error(t, d.UnmarshalGraphQL(int32(5)))
}
