package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionIncoming TransactionType = "incoming"
	TransactionCredit   TransactionType = "credit"
	TransactionRefund   TransactionType = "refund"
	TransactionOther    TransactionType = "other"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncoming, TransactionCredit, TransactionRefund, TransactionOther:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodPayPal   PaymentMethod = "paypal"
	MethodCash     PaymentMethod = "cash"
	MethodWire     PaymentMethod = "wire"
	MethodInternal PaymentMethod = "internal"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodPayPal, MethodCash, MethodWire, MethodInternal:
		return true
	}
	return false
}

// Transaction records a payment against a booking. It is never processed here.
type Transaction struct {
	gorm.Model
	BookingID uint            `gorm:"index;not null" json:"booking_id"`
	Booking   Booking         `json:"-"`
	Type      TransactionType `gorm:"size:15" json:"type"`
	Method    PaymentMethod   `gorm:"size:15" json:"method"`
	// Number is the reference of the payment provider, if any.
	Number string `gorm:"size:255" json:"number"`
	// Outgoing payments are negative.
	Amount decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"amount"`
	Fee    decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"fee"`
	Reason string          `gorm:"size:255" json:"reason"`
	Date   time.Time       `json:"date"`
}
