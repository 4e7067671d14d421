package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rate is a priced eligibility tier of an event, gated by date of birth and discipline.
type Rate struct {
	gorm.Model
	EventID  uint       `gorm:"index;not null" json:"event_id"`
	Label    string     `gorm:"size:100" json:"label"`
	DOBFrom  *time.Time `gorm:"type:date" json:"dob_from"`
	DOBTo    *time.Time `gorm:"type:date" json:"dob_to"`
	NonRider bool       `json:"non_rider"`
	IsActive bool       `json:"is_active"`
	Order    uint       `gorm:"column:sort_order" json:"order"`

	// Empty means the rate applies to all disciplines.
	Disciplines []Discipline `gorm:"many2many:rate_disciplines" json:"disciplines"`
	Prices      []Price      `json:"prices"`
}

// Price is valid between ValidFrom and ValidUntil; either bound may be open.
type Price struct {
	gorm.Model
	RateID     uint                `gorm:"index;not null" json:"rate_id"`
	ValidFrom  *time.Time          `gorm:"type:date" json:"valid_from"`
	ValidUntil *time.Time          `gorm:"type:date" json:"valid_until"`
	PriceDay   decimal.NullDecimal `gorm:"type:decimal(8,2)" json:"price_day"`
	Total      decimal.NullDecimal `gorm:"column:price;type:decimal(8,2)" json:"price"`
}
