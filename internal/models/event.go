package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a bookable convention or competition. Everything else hangs off it.
type Event struct {
	gorm.Model
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:50;uniqueIndex" json:"slug"`
	BeginDate   time.Time `json:"begin_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description"`
	Logo        string    `json:"logo"`
	IsOpen      bool      `json:"is_open"`

	ContactEmail string `json:"contact_email"`
	ContactName  string `gorm:"size:100" json:"contact_name"`
	Host         string `gorm:"size:100" json:"host"`

	PayPal        string `json:"paypal"`
	AccountHolder string `gorm:"size:100" json:"account_holder"`
	BIC           string `gorm:"size:11" json:"bic"`
	IBAN          string `gorm:"size:34" json:"iban"`

	AddressIsRequired  bool `json:"address_is_required"`
	PhoneIsRequired    bool `json:"phone_is_required"`
	SexIsRequired      bool `json:"sex_is_required"`
	FoodIsIncluded     bool `json:"food_is_included"`
	Vegetarian         bool `json:"vegetarian"`
	Vegan              bool `json:"vegan"`
	VeganBreakfastOnly bool `json:"vegan_breakfast_only"`

	AdminID uint `gorm:"index;not null" json:"admin_id"`
	Admin   User `gorm:"foreignKey:AdminID" json:"-"`

	Rates       []Rate       `json:"rates,omitempty"`
	Products    []Product    `json:"products,omitempty"`
	Documents   []Document   `json:"documents,omitempty"`
	Days        []Day        `json:"days,omitempty"`
	Disciplines []Discipline `json:"disciplines,omitempty"`
	WebPages    []WebPage    `json:"web_pages,omitempty"`
}

// ArrivalDays returns the loaded days flagged as valid arrival days.
func (e Event) ArrivalDays() []Day {
	var days []Day
	for _, d := range e.Days {
		if d.Arrival {
			days = append(days, d)
		}
	}
	return days
}

// DepartureDays returns the loaded days flagged as valid departure days.
func (e Event) DepartureDays() []Day {
	var days []Day
	for _, d := range e.Days {
		if d.Departure {
			days = append(days, d)
		}
	}
	return days
}

// ActiveRates returns the loaded rates that can currently be booked.
func (e Event) ActiveRates() []Rate {
	var rates []Rate
	for _, r := range e.Rates {
		if r.IsActive {
			rates = append(rates, r)
		}
	}
	return rates
}

// Day is one entry of an event's arrival/departure calendar.
type Day struct {
	gorm.Model
	EventID   uint   `gorm:"index;not null" json:"event_id"`
	Label     string `gorm:"column:day;size:100" json:"day"`
	Arrival   bool   `json:"arrival"`
	Departure bool   `json:"departure"`
	Order     uint   `gorm:"column:sort_order" json:"order"`
}

type Discipline struct {
	gorm.Model
	EventID uint   `gorm:"index;not null" json:"event_id"`
	Code    string `gorm:"size:10" json:"code"`
	Label   string `gorm:"size:100" json:"label"`
	Order   uint   `gorm:"column:sort_order" json:"order"`
}

type WebPage struct {
	gorm.Model
	EventID uint    `gorm:"uniqueIndex:idx_event_page_slug;not null" json:"event_id"`
	Slug    string  `gorm:"uniqueIndex:idx_event_page_slug;size:50" json:"slug"`
	Name    string  `gorm:"size:30" json:"name"`
	Icon    string  `gorm:"size:30" json:"icon"`
	HTML    *string `json:"html"`
	Order   uint    `gorm:"column:sort_order" json:"order"`
	Menu    bool    `json:"menu"`
}
