package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

func autoCatalog() *domain.Catalog {
	return &domain.Catalog{
		Categories: []*domain.Category{{ID: "suv", Name: "SUV"}},
		Items: []*domain.Item{
			{ID: "car-1", Title: "Compact SUV", CategoryID: "suv", Price: 32000},
			{ID: "car-2", Title: "Family SUV", CategoryID: "suv", Price: 41000},
		},
	}
}

func statusPtr(s domain.BookingStatus) *domain.BookingStatus { return &s }

func TestCreateBooking(t *testing.T) {
	c, clock := newTestCollection(t, domain.KindAuto, autoCatalog())

	b, err := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1", Notes: "weekend"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != domain.StatusPending || b.Kind != domain.KindAuto {
		t.Errorf("booking = %+v", b)
	}
	want := []domain.TimelineEntry{{
		Status:    domain.StatusPending,
		Timestamp: clock.Now(),
		Message:   "booking created",
		Actor:     "u1",
	}}
	if diff := cmp.Diff(want, b.Timeline); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-9"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown item error = %v, want ErrNotFound", err)
	}
	if _, err := c.CreateBooking(domain.BookingInput{ItemID: "car-1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing user error = %v, want ErrInvalidInput", err)
	}
}

func TestCreateBooking_UniqueIDs(t *testing.T) {
	c := New(domain.KindAuto, Options{})
	if err := c.ReplaceCatalog(autoCatalog()); err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		b, err := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[b.ID] {
			t.Fatalf("duplicate booking id %s after %d creations", b.ID, i)
		}
		seen[b.ID] = true
	}
}

func TestUpdateBooking_Lifecycle(t *testing.T) {
	c, clock := newTestCollection(t, domain.KindAuto, autoCatalog())
	b, err := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1"})
	if err != nil {
		t.Fatal(err)
	}

	steps := []domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress, domain.StatusCompleted}
	for i, status := range steps {
		clock.Advance(time.Hour)
		got, err := c.UpdateBooking(b.ID, domain.BookingPatch{Status: statusPtr(status), Actor: "dealer"})
		if err != nil {
			t.Fatalf("-> %s: %v", status, err)
		}
		if got.Status != status || len(got.Timeline) != i+2 {
			t.Errorf("-> %s: status=%s timeline=%d", status, got.Status, len(got.Timeline))
		}
		last := got.Timeline[len(got.Timeline)-1]
		if last.Status != status || last.Actor != "dealer" || !last.Timestamp.Equal(clock.Now()) {
			t.Errorf("-> %s: last entry = %+v", status, last)
		}
	}

	if _, err := c.UpdateBooking(b.ID, domain.BookingPatch{Status: statusPtr(domain.StatusCancelled)}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("cancel after completion error = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateBooking_RejectedPatchLeavesNoTrace(t *testing.T) {
	c, _ := newTestCollection(t, domain.KindAuto, autoCatalog())
	b, _ := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1", Notes: "before"})

	notes := "after"
	_, err := c.UpdateBooking(b.ID, domain.BookingPatch{Status: statusPtr(domain.StatusCompleted), Notes: &notes})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}

	got, _ := c.Booking(b.ID)
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("booking changed (-want +got):\n%s", diff)
	}

	if _, err := c.UpdateBooking("missing", domain.BookingPatch{Notes: &notes}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestUpdateBooking_MergesFields(t *testing.T) {
	c, _ := newTestCollection(t, domain.KindAuto, autoCatalog())
	b, _ := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1", Notes: "n", Amount: 10})

	amount := 25.5
	got, err := c.UpdateBooking(b.ID, domain.BookingPatch{Amount: &amount})
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 25.5 || got.Notes != "n" || got.Status != domain.StatusPending {
		t.Errorf("merged booking = %+v", got)
	}
	if len(got.Timeline) != 1 {
		t.Errorf("non-status patch appended timeline entries: %d", len(got.Timeline))
	}
}

func TestCancelBooking_AppendsExactlyOneEntry(t *testing.T) {
	c, clock := newTestCollection(t, domain.KindAuto, autoCatalog())
	b, _ := c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1"})
	b, _ = c.UpdateBooking(b.ID, domain.BookingPatch{Status: statusPtr(domain.StatusConfirmed)})
	before := b.Timeline

	clock.Advance(time.Minute)
	got, err := c.CancelBooking(b.ID, "changed my mind", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if got.Status != domain.StatusCancelled {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.Timeline) != len(before)+1 {
		t.Fatalf("timeline grew by %d, want 1", len(got.Timeline)-len(before))
	}
	if diff := cmp.Diff(before, got.Timeline[:len(before)]); diff != "" {
		t.Errorf("earlier entries changed (-want +got):\n%s", diff)
	}
	want := domain.TimelineEntry{
		Status:    domain.StatusCancelled,
		Timestamp: clock.Now(),
		Message:   "changed my mind",
		Actor:     "u1",
	}
	if diff := cmp.Diff(want, got.Timeline[len(before)]); diff != "" {
		t.Errorf("cancel entry mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.CancelBooking(b.ID, "again", "u1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second cancel error = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelBooking_UnknownIDLeavesBookingsUnchanged(t *testing.T) {
	c, _ := newTestCollection(t, domain.KindLife, autoCatalog())
	_, _ = c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-1"})
	_, _ = c.CreateBooking(domain.BookingInput{UserID: "u1", ItemID: "car-2"})
	before := c.Bookings("u1")

	if _, err := c.CancelBooking("does-not-exist", "reason", "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff(before, c.Bookings("u1")); diff != "" {
		t.Errorf("bookings changed (-want +got):\n%s", diff)
	}
}

func TestJoinSession(t *testing.T) {
	c, _ := newTestCollection(t, domain.KindGroup, autoCatalog())
	b, err := c.CreateBooking(domain.BookingInput{UserID: "host", ItemID: "car-2"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"host"}, b.Participants); diff != "" {
		t.Errorf("creator not a participant (-want +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		got, err := c.JoinSession(b.ID, "guest")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"host", "guest"}, got.Participants); diff != "" {
			t.Errorf("join #%d participants (-want +got):\n%s", i+1, diff)
		}
	}

	if n := len(c.Bookings("guest")); n != 1 {
		t.Errorf("guest sees %d bookings, want 1", n)
	}

	_, _ = c.CancelBooking(b.ID, "not enough buyers", "host")
	if _, err := c.JoinSession(b.ID, "late"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("join cancelled session error = %v, want ErrInvalidTransition", err)
	}
}
