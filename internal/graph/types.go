package graph

import (
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/pricing"
	"github.com/gdg-garage/convention-booking/internal/storage"
)

type eventResolver struct {
	e     models.Event
	files storage.Storage
}

func (r *eventResolver) ID() int32           { return int32(r.e.ID) }
func (r *eventResolver) Slug() string        { return r.e.Slug }
func (r *eventResolver) Name() string        { return r.e.Name }
func (r *eventResolver) Host() string        { return r.e.Host }
func (r *eventResolver) Description() string { return r.e.Description }
func (r *eventResolver) BeginDate() Date     { return Date{Time: r.e.BeginDate} }
func (r *eventResolver) EndDate() Date       { return Date{Time: r.e.EndDate} }
func (r *eventResolver) IsOpen() bool        { return r.e.IsOpen }

func (r *eventResolver) Logo() *string {
	return r.url(r.e.Logo)
}

func (r *eventResolver) SexIsRequired() bool      { return r.e.SexIsRequired }
func (r *eventResolver) AddressIsRequired() bool  { return r.e.AddressIsRequired }
func (r *eventResolver) PhoneIsRequired() bool    { return r.e.PhoneIsRequired }
func (r *eventResolver) FoodIsIncluded() bool     { return r.e.FoodIsIncluded }
func (r *eventResolver) Vegetarian() bool         { return r.e.Vegetarian }
func (r *eventResolver) Vegan() bool              { return r.e.Vegan }
func (r *eventResolver) VeganBreakfastOnly() bool { return r.e.VeganBreakfastOnly }

func (r *eventResolver) Disciplines() []*disciplineResolver {
	return disciplines(r.e.Disciplines)
}

func (r *eventResolver) Documents() []*documentResolver {
	res := make([]*documentResolver, 0, len(r.e.Documents))
	for _, d := range r.e.Documents {
		res = append(res, &documentResolver{d: d, url: r.url(d.File)})
	}
	return res
}

func (r *eventResolver) Arrival() []*dayResolver {
	return days(r.e.ArrivalDays())
}

func (r *eventResolver) Departure() []*dayResolver {
	return days(r.e.DepartureDays())
}

// Rates only lists active rates. Inactive ones are an administrative detail.
func (r *eventResolver) Rates() []*rateResolver {
	return rates(r.e.ActiveRates())
}

func (r *eventResolver) RatesAvailable(args struct{ DateOfBirth *Date }) []*rateResolver {
	active := r.e.ActiveRates()
	if args.DateOfBirth == nil {
		return rates(active)
	}
	var open []models.Rate
	for _, rate := range active {
		if pricing.DOBInRange(args.DateOfBirth.Time, rate.DOBFrom, rate.DOBTo) {
			open = append(open, rate)
		}
	}
	return rates(open)
}

func (r *eventResolver) Products() []*productResolver {
	res := make([]*productResolver, 0, len(r.e.Products))
	for _, p := range r.e.Products {
		res = append(res, &productResolver{p: p})
	}
	return res
}

func (r *eventResolver) rate(id *uint) *models.Rate {
	if id == nil {
		return nil
	}
	for i := range r.e.Rates {
		if r.e.Rates[i].ID == *id {
			return &r.e.Rates[i]
		}
	}
	return nil
}

func (r *eventResolver) url(key string) *string {
	if key == "" || r.files == nil {
		return nil
	}
	u := r.files.URL(key)
	return &u
}

type dayResolver struct{ d models.Day }

func (r *dayResolver) ID() int32   { return int32(r.d.ID) }
func (r *dayResolver) Day() string { return r.d.Label }

func days(ds []models.Day) []*dayResolver {
	res := make([]*dayResolver, 0, len(ds))
	for _, d := range ds {
		res = append(res, &dayResolver{d: d})
	}
	return res
}

type disciplineResolver struct{ d models.Discipline }

func (r *disciplineResolver) ID() int32     { return int32(r.d.ID) }
func (r *disciplineResolver) Code() string  { return r.d.Code }
func (r *disciplineResolver) Label() string { return r.d.Label }

func disciplines(ds []models.Discipline) []*disciplineResolver {
	res := make([]*disciplineResolver, 0, len(ds))
	for _, d := range ds {
		res = append(res, &disciplineResolver{d: d})
	}
	return res
}

type documentResolver struct {
	d   models.Document
	url *string
}

func (r *documentResolver) ID() int32         { return int32(r.d.ID) }
func (r *documentResolver) Name() string      { return r.d.Name }
func (r *documentResolver) Document() *string { return r.url }
func (r *documentResolver) U18() bool         { return r.d.U18 }
func (r *documentResolver) Upload() bool      { return r.d.Upload }

type rateResolver struct{ r models.Rate }

func (r *rateResolver) ID() int32      { return int32(r.r.ID) }
func (r *rateResolver) Label() string  { return r.r.Label }
func (r *rateResolver) DobFrom() *Date { return datePtr(r.r.DOBFrom) }
func (r *rateResolver) DobTo() *Date   { return datePtr(r.r.DOBTo) }
func (r *rateResolver) NonRider() bool { return r.r.NonRider }

func (r *rateResolver) Disciplines() []*disciplineResolver {
	return disciplines(r.r.Disciplines)
}

func (r *rateResolver) Prices() []*priceResolver {
	res := make([]*priceResolver, 0, len(r.r.Prices))
	for _, p := range r.r.Prices {
		res = append(res, &priceResolver{p: p})
	}
	return res
}

func rates(rs []models.Rate) []*rateResolver {
	res := make([]*rateResolver, 0, len(rs))
	for _, r := range rs {
		res = append(res, &rateResolver{r: r})
	}
	return res
}

type priceResolver struct{ p models.Price }

func (r *priceResolver) ValidFrom() *Date   { return datePtr(r.p.ValidFrom) }
func (r *priceResolver) ValidUntil() *Date  { return datePtr(r.p.ValidUntil) }
func (r *priceResolver) PriceDay() *Decimal { return decimalPtr(r.p.PriceDay) }
func (r *priceResolver) Price() *Decimal    { return decimalPtr(r.p.Total) }

type productResolver struct{ p models.Product }

func (r *productResolver) Name() string   { return r.p.Name }
func (r *productResolver) Kind() string   { return string(r.p.Kind) }
func (r *productResolver) Required() bool { return r.p.Required }

func (r *productResolver) Variants() []*variantResolver {
	res := make([]*variantResolver, 0, len(r.p.Variants))
	for _, v := range r.p.Variants {
		res = append(res, &variantResolver{v: v})
	}
	return res
}

type variantResolver struct{ v models.ProductVariant }

func (r *variantResolver) Name() string   { return r.v.Name }
func (r *variantResolver) Price() Decimal { return Decimal{Decimal: r.v.Price} }

type bookingResolver struct {
	b     models.Booking
	event *eventResolver
}

func (r *bookingResolver) ID() int32             { return int32(r.b.ID) }
func (r *bookingResolver) Code() string          { return r.b.Code }
func (r *bookingResolver) Event() *eventResolver { return r.event }
func (r *bookingResolver) FirstName() string     { return r.b.FirstName }
func (r *bookingResolver) LastName() string      { return r.b.LastName }
func (r *bookingResolver) Email() string         { return r.b.Email }
func (r *bookingResolver) Club() string          { return r.b.Club }
func (r *bookingResolver) DateOfBirth() Date     { return Date{Time: r.b.DateOfBirth} }
func (r *bookingResolver) Address() *string      { return r.b.Address }
func (r *bookingResolver) Zipcode() *string      { return r.b.Zipcode }
func (r *bookingResolver) City() *string         { return r.b.City }
func (r *bookingResolver) Country() *string      { return r.b.Country }
func (r *bookingResolver) Phone() *string        { return r.b.Phone }
func (r *bookingResolver) Food() string          { return string(r.b.Food) }
func (r *bookingResolver) Notes() string         { return r.b.Notes }
func (r *bookingResolver) State() string         { return string(r.b.State) }
func (r *bookingResolver) Amount() Decimal       { return Decimal{Decimal: r.b.Amount} }
func (r *bookingResolver) Paid() Decimal         { return Decimal{Decimal: r.b.Paid()} }
func (r *bookingResolver) Open() Decimal         { return Decimal{Decimal: r.b.Open()} }

func (r *bookingResolver) Sex() *string {
	if r.b.Sex == nil {
		return nil
	}
	s := string(*r.b.Sex)
	return &s
}

func (r *bookingResolver) Arrival() *dayResolver {
	if r.b.Arrival == nil {
		return nil
	}
	return &dayResolver{d: *r.b.Arrival}
}

func (r *bookingResolver) Departure() *dayResolver {
	if r.b.Departure == nil {
		return nil
	}
	return &dayResolver{d: *r.b.Departure}
}

// Rate prefers the event's copy, which carries prices and disciplines.
func (r *bookingResolver) Rate() *rateResolver {
	if rate := r.event.rate(r.b.RateID); rate != nil {
		return &rateResolver{r: *rate}
	}
	if r.b.Rate == nil {
		return nil
	}
	return &rateResolver{r: *r.b.Rate}
}

func (r *bookingResolver) Disciplines() []*disciplineResolver {
	return disciplines(r.b.Disciplines)
}
