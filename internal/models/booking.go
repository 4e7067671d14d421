package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingState string

const (
	StateOpen      BookingState = "open"
	StateProgress  BookingState = "progress"
	StateConfirmed BookingState = "confirmed"
	StateProblem   BookingState = "problem"
	StateCanceled  BookingState = "canceled"
)

var BookingStates = []BookingState{StateOpen, StateProgress, StateConfirmed, StateProblem, StateCanceled}

// SuggestedTransitions is advisory only. Administrators may set any state.
var SuggestedTransitions = map[BookingState][]BookingState{
	StateOpen:      {StateProgress},
	StateProgress:  {StateConfirmed, StateProblem, StateCanceled},
	StateProblem:   {StateProgress, StateCanceled},
	StateConfirmed: {StateCanceled},
	StateCanceled:  {StateOpen},
}

func (s BookingState) Valid() bool {
	for _, st := range BookingStates {
		if s == st {
			return true
		}
	}
	return false
}

func (s BookingState) Label() string {
	if s == StateProgress {
		return "in progress"
	}
	return string(s)
}

type Food string

const (
	FoodAll        Food = "all"
	FoodVegetarian Food = "v"
	FoodVegan      Food = "vv"
)

func (f Food) Valid() bool {
	return f == FoodAll || f == FoodVegetarian || f == FoodVegan
}

func (f Food) Label() string {
	switch f {
	case FoodVegetarian:
		return "vegetarian"
	case FoodVegan:
		return "vegan"
	}
	return string(f)
}

type Sex string

const (
	SexFemale Sex = "f"
	SexMale   Sex = "m"
)

// Booking is a participant's registration for an event.
type Booking struct {
	gorm.Model
	EventID     uint       `gorm:"index;not null" json:"event_id"`
	Event       Event      `json:"-"`
	Code        string     `gorm:"size:8;uniqueIndex" json:"code"`
	CheckinDate *time.Time `json:"checkin_date"`

	FirstName   string    `gorm:"size:100" json:"first_name"`
	LastName    string    `gorm:"size:100" json:"last_name"`
	Sex         *Sex      `gorm:"size:1" json:"sex"`
	Email       string    `json:"email"`
	Club        string    `gorm:"size:100" json:"club"`
	DateOfBirth time.Time `gorm:"type:date" json:"date_of_birth"`

	Address *string `gorm:"size:255" json:"address"`
	Zipcode *string `gorm:"size:20" json:"zipcode"`
	City    *string `gorm:"size:100" json:"city"`
	Country *string `gorm:"size:2" json:"country"`
	Phone   *string `gorm:"size:20" json:"phone"`

	Food        Food         `gorm:"size:15" json:"food"`
	ArrivalID   *uint        `json:"arrival_id"`
	Arrival     *Day         `gorm:"foreignKey:ArrivalID" json:"arrival,omitempty"`
	DepartureID *uint        `json:"departure_id"`
	Departure   *Day         `gorm:"foreignKey:DepartureID" json:"departure,omitempty"`
	RateID      *uint        `json:"rate_id"`
	Rate        *Rate        `json:"rate,omitempty"`
	Disciplines []Discipline `gorm:"many2many:booking_disciplines" json:"disciplines"`

	Notes string `json:"notes"`
	// Amount is recomputed from the selected rate whenever the booking is saved.
	Amount        decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"amount"`
	State         BookingState    `gorm:"size:15;default:open" json:"state"`
	InternalNotes string          `json:"internal_notes"`

	Transactions []Transaction `json:"transactions,omitempty"`
	Attachments  []Attachment  `json:"attachments,omitempty"`
}

// Paid sums the loaded transactions. Refunds carry a negative amount.
func (b Booking) Paid() decimal.Decimal {
	paid := decimal.Zero
	for _, t := range b.Transactions {
		paid = paid.Add(t.Amount)
	}
	return paid
}

// Open is what is still owed; negative when the booking was overpaid.
func (b Booking) Open() decimal.Decimal {
	return b.Amount.Sub(b.Paid())
}

func (b Booking) DisciplineIDs() []uint {
	ids := make([]uint, 0, len(b.Disciplines))
	for _, d := range b.Disciplines {
		ids = append(ids, d.ID)
	}
	return ids
}
