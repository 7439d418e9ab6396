package domain

import (
	"fmt"
	"time"
)

// BookingStatus is a step of the booking lifecycle:
//
//	pending → confirmed → in_progress → completed
//
// cancelled is reachable from every non-terminal status.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

var nextStatus = map[BookingStatus]BookingStatus{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle allows from → to.
func CanTransition(from, to BookingStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return nextStatus[from] == to
}

// CheckTransition returns ErrInvalidTransition when from → to is not allowed.
func CheckTransition(from, to BookingStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// TimelineEntry records one status change.
type TimelineEntry struct {
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message,omitempty"`
	Actor     string        `json:"actor,omitempty"`
}

// Booking is a reservation (auto test drive, life service appointment)
// or a group-buy session. Its Timeline only ever grows.
type Booking struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	UserID       string          `json:"userId"`
	ItemID       string          `json:"itemId"`
	Status       BookingStatus   `json:"status"`
	ScheduledAt  time.Time       `json:"scheduledAt,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Amount       float64         `json:"amount,omitempty"`
	Participants []string        `json:"participants,omitempty"`
	Timeline     []TimelineEntry `json:"timeline"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of b.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Participants = append([]string(nil), b.Participants...)
	cp.Timeline = append([]TimelineEntry(nil), b.Timeline...)
	return &cp
}

// BookingInput carries the caller-provided fields of a new booking.
type BookingInput struct {
	UserID       string    `json:"userId"`
	ItemID       string    `json:"itemId"`
	ScheduledAt  time.Time `json:"scheduledAt,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	Participants []string  `json:"participants,omitempty"`
}

// BookingPatch is a partial update. Nil fields are left unchanged.
type BookingPatch struct {
	Status       *BookingStatus `json:"status,omitempty"`
	ScheduledAt  *time.Time     `json:"scheduledAt,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Amount       *float64       `json:"amount,omitempty"`
	Participants []string       `json:"participants,omitempty"`

	// Message and Actor annotate the timeline entry of a status change.
	Message string `json:"message,omitempty"`
	Actor   string `json:"actor,omitempty"`
}

// RequestTTL is how long a service request stays open.
const RequestTTL = 7 * 24 * time.Hour

// ServiceRequest is an open request for a life service. Expiry is a
// read-time check; nothing collects expired requests.
type ServiceRequest struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	ItemID      string        `json:"itemId"`
	Description string        `json:"description"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ExpiresAt   time.Time     `json:"expiresAt"`
}

// Expired reports whether the request is past its expiry at now.
func (r *ServiceRequest) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Review is a user's rating of an item.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ItemID    string    `json:"itemId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateRating checks the 1..5 star range.
func ValidateRating(r int) error {
	if r < 1 || r > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidInput, r)
	}
	return nil
}
