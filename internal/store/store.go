// Package store is the data access layer. Every administrative call takes the
// acting user explicitly; rows outside the actor's events behave as if they
// did not exist.
package store

import (
	"errors"
	"time"

	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalid          = errors.New("invalid input")
	ErrAttachmentExists = errors.New("attachment for this document already exists")
	ErrCodeExhausted    = errors.New("could not generate a unique booking code")
)

// Actor is the administrator a call is made for.
type Actor struct {
	UserID      uint
	IsSuperuser bool
}

// Everyone reads without scoping. Used for public event data.
var Everyone = Actor{IsSuperuser: true}

func ActorFor(u models.User) Actor {
	return Actor{UserID: u.ID, IsSuperuser: u.IsSuperuser}
}

type Store struct {
	db     *gorm.DB
	now    func() time.Time
	codes  func() (string, error)
	strict bool
}

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCodeGenerator replaces GenerateCode.
func WithCodeGenerator(codes func() (string, error)) Option {
	return func(s *Store) { s.codes = codes }
}

// WithStrictBookings turns on the eligibility and consistency checks for new bookings.
func WithStrictBookings(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, codes: GenerateCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the connection for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
