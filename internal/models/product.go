package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductKind string

const (
	ProductShirt         ProductKind = "shirt"
	ProductAccommodation ProductKind = "accommodation"
	ProductMeal          ProductKind = "meal"
	ProductOther         ProductKind = "other"
)

func (k ProductKind) Valid() bool {
	switch k {
	case ProductShirt, ProductAccommodation, ProductMeal, ProductOther:
		return true
	}
	return false
}

type Product struct {
	gorm.Model
	EventID uint        `gorm:"index;not null" json:"event_id"`
	Kind    ProductKind `gorm:"size:100" json:"kind"`
	Name    string      `gorm:"size:100" json:"name"`
	// Required products cannot be deselected by the participant.
	Required bool             `json:"required"`
	Order    uint             `gorm:"column:sort_order" json:"order"`
	Variants []ProductVariant `json:"variants"`
}

type ProductVariant struct {
	gorm.Model
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Name      string          `gorm:"size:100" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(8,2)" json:"price"`
	Order     uint            `gorm:"column:sort_order" json:"order"`
}
