package store

import (
	"fmt"
	"slices"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

func (c *Collection) bookingIndexLocked(id string) int {
	for i, b := range c.bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// CreateBooking appends a new pending booking with a one-entry timeline.
func (c *Collection) CreateBooking(in domain.BookingInput) (*domain.Booking, error) {
	var created *domain.Booking
	err := c.mutate("create_booking", func() (bool, error) {
		if err := requireUser(in.UserID); err != nil {
			return false, err
		}
		if in.Amount < 0 {
			return false, fmt.Errorf("%w: negative amount", domain.ErrInvalidInput)
		}
		if _, ok := c.itemIndex[in.ItemID]; !ok {
			return false, domain.NotFound("item", in.ItemID)
		}

		now := c.opts.Now()
		participants := append([]string(nil), in.Participants...)
		if c.kind == domain.KindGroup && !slices.Contains(participants, in.UserID) {
			participants = append([]string{in.UserID}, participants...)
		}

		b := &domain.Booking{
			ID:           c.opts.NewID(),
			Kind:         c.kind,
			UserID:       in.UserID,
			ItemID:       in.ItemID,
			Status:       domain.StatusPending,
			ScheduledAt:  in.ScheduledAt,
			Notes:        in.Notes,
			Amount:       in.Amount,
			Participants: participants,
			Timeline: []domain.TimelineEntry{{
				Status:    domain.StatusPending,
				Timestamp: now,
				Message:   "booking created",
				Actor:     in.UserID,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		c.bookings = append(c.bookings, b)
		created = b.Clone()
		return true, nil
	})
	return created, err
}

// UpdateBooking shallow-merges patch into the booking. A status change
// must be allowed by the lifecycle and appends one timeline entry.
func (c *Collection) UpdateBooking(id string, patch domain.BookingPatch) (*domain.Booking, error) {
	var updated *domain.Booking
	err := c.mutate("update_booking", func() (bool, error) {
		idx := c.bookingIndexLocked(id)
		if idx < 0 {
			return false, domain.NotFound("booking", id)
		}

		next, err := c.applyPatchLocked(c.bookings[idx], patch, true)
		if err != nil {
			return false, err
		}
		c.bookings[idx] = next
		updated = next.Clone()
		return true, nil
	})
	return updated, err
}

// CancelBooking appends a cancelled entry carrying reason, then sets the
// status. Unknown ids leave bookings untouched; terminal bookings are
// rejected with ErrInvalidTransition.
func (c *Collection) CancelBooking(id, reason, actor string) (*domain.Booking, error) {
	var cancelled *domain.Booking
	err := c.mutate("cancel_booking", func() (bool, error) {
		idx := c.bookingIndexLocked(id)
		if idx < 0 {
			return false, domain.NotFound("booking", id)
		}
		current := c.bookings[idx]
		if err := domain.CheckTransition(current.Status, domain.StatusCancelled); err != nil {
			return false, err
		}

		withEntry := current.Clone()
		withEntry.Timeline = append(withEntry.Timeline, domain.TimelineEntry{
			Status:    domain.StatusCancelled,
			Timestamp: c.opts.Now(),
			Message:   reason,
			Actor:     actor,
		})

		status := domain.StatusCancelled
		next, err := c.applyPatchLocked(withEntry, domain.BookingPatch{Status: &status}, false)
		if err != nil {
			return false, err
		}
		c.bookings[idx] = next
		cancelled = next.Clone()
		return true, nil
	})
	return cancelled, err
}

// JoinSession adds userID to the participants of an open booking.
// Joining twice is a no-op.
func (c *Collection) JoinSession(id, userID string) (*domain.Booking, error) {
	var joined *domain.Booking
	err := c.mutate("join_session", func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}
		idx := c.bookingIndexLocked(id)
		if idx < 0 {
			return false, domain.NotFound("booking", id)
		}
		current := c.bookings[idx]
		if current.Status.Terminal() {
			return false, fmt.Errorf("%w: session is %s", domain.ErrInvalidTransition, current.Status)
		}
		if slices.Contains(current.Participants, userID) {
			joined = current.Clone()
			return false, nil
		}

		next := current.Clone()
		next.Participants = append(next.Participants, userID)
		next.UpdatedAt = c.opts.Now()
		c.bookings[idx] = next
		joined = next.Clone()
		return true, nil
	})
	return joined, err
}

// applyPatchLocked returns a patched copy of b. The original is never
// modified, so a rejected patch leaves no trace.
func (c *Collection) applyPatchLocked(b *domain.Booking, patch domain.BookingPatch, recordStatus bool) (*domain.Booking, error) {
	next := b.Clone()
	now := c.opts.Now()

	if patch.Status != nil && *patch.Status != b.Status {
		if err := domain.CheckTransition(b.Status, *patch.Status); err != nil {
			return nil, err
		}
		next.Status = *patch.Status
		if recordStatus {
			next.Timeline = append(next.Timeline, domain.TimelineEntry{
				Status:    *patch.Status,
				Timestamp: now,
				Message:   patch.Message,
				Actor:     patch.Actor,
			})
		}
	}
	if patch.ScheduledAt != nil {
		next.ScheduledAt = *patch.ScheduledAt
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return nil, fmt.Errorf("%w: negative amount", domain.ErrInvalidInput)
		}
		next.Amount = *patch.Amount
	}
	if patch.Participants != nil {
		next.Participants = append([]string(nil), patch.Participants...)
	}

	next.UpdatedAt = now
	return next, nil
}

// Booking returns one booking.
func (c *Collection) Booking(id string) (*domain.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.bookingIndexLocked(id)
	if idx < 0 {
		return nil, domain.NotFound("booking", id)
	}
	return c.bookings[idx].Clone(), nil
}

// Bookings lists the bookings a user created or joined, oldest first.
func (c *Collection) Bookings(userID string) []*domain.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.Booking, 0)
	for _, b := range c.bookings {
		if b.UserID == userID || slices.Contains(b.Participants, userID) {
			out = append(out, b.Clone())
		}
	}
	return out
}
