package models

import (
	"time"

	"gorm.io/gorm"
)

type Document struct {
	gorm.Model
	EventID uint   `gorm:"index;not null" json:"event_id"`
	Name    string `gorm:"size:100" json:"name"`
	File    string `json:"file"`
	// U18 documents are only needed by participants under 18.
	U18 bool `json:"u18"`
	// Upload documents have to be signed and uploaded back.
	Upload bool `json:"upload"`
	Order  uint `gorm:"column:sort_order" json:"order"`
}

// RequiredFor reports whether a participant has to upload a signed copy.
func (d Document) RequiredFor(fullAge bool) bool {
	if !d.Upload {
		return false
	}
	return !d.U18 || !fullAge
}

// Attachment is the uploaded file fulfilling a Document for one Booking.
type Attachment struct {
	gorm.Model
	BookingID  uint      `gorm:"uniqueIndex:idx_booking_document;not null" json:"booking_id"`
	DocumentID uint      `gorm:"uniqueIndex:idx_booking_document;not null" json:"document_id"`
	Document   Document  `json:"document"`
	File       string    `json:"file"`
	Date       time.Time `gorm:"autoUpdateTime" json:"date"`
}
