package store

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

// CreateRequest opens a service request that expires after RequestTTL.
func (c *Collection) CreateRequest(userID, itemID, description string) (*domain.ServiceRequest, error) {
	var created *domain.ServiceRequest
	err := c.mutate("create_request", func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}
		if strings.TrimSpace(description) == "" {
			return false, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
		}
		if _, ok := c.itemIndex[itemID]; !ok {
			return false, domain.NotFound("item", itemID)
		}

		now := c.opts.Now()
		r := &domain.ServiceRequest{
			ID:          c.opts.NewID(),
			UserID:      userID,
			ItemID:      itemID,
			Description: description,
			Status:      domain.StatusPending,
			CreatedAt:   now,
			ExpiresAt:   now.Add(domain.RequestTTL),
		}
		c.requests = append(c.requests, r)
		cp := *r
		created = &cp
		return true, nil
	})
	return created, err
}

// Requests lists a user's requests, expired ones included.
func (c *Collection) Requests(userID string) []*domain.ServiceRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.ServiceRequest, 0)
	for _, r := range c.requests {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

// AddReview stores a 1..5 star review of an item.
func (c *Collection) AddReview(userID, itemID string, rating int, comment string) (*domain.Review, error) {
	var created *domain.Review
	err := c.mutate("add_review", func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}
		if err := domain.ValidateRating(rating); err != nil {
			return false, err
		}
		if _, ok := c.itemIndex[itemID]; !ok {
			return false, domain.NotFound("item", itemID)
		}

		r := &domain.Review{
			ID:        c.opts.NewID(),
			UserID:    userID,
			ItemID:    itemID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: c.opts.Now(),
		}
		c.reviews = append(c.reviews, r)
		cp := *r
		created = &cp
		return true, nil
	})
	return created, err
}

// Reviews lists the reviews of an item, oldest first.
func (c *Collection) Reviews(itemID string) []*domain.Review {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.Review, 0)
	for _, r := range c.reviews {
		if r.ItemID == itemID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

// ReviewSummary aggregates the stored reviews of an item.
func (c *Collection) ReviewSummary(itemID string) domain.Rating {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum, n int
	for _, r := range c.reviews {
		if r.ItemID == itemID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return domain.Rating{}
	}
	return domain.Rating{Overall: float64(sum) / float64(n), Count: n}
}

// UpdatePreferences overlays patch on the user's preferences.
func (c *Collection) UpdatePreferences(userID string, patch domain.Preferences) (domain.Preferences, error) {
	var merged domain.Preferences
	err := c.mutate("update_preferences", func() (bool, error) {
		if err := requireUser(userID); err != nil {
			return false, err
		}
		merged = c.prefs[userID].Merge(patch)
		c.prefs[userID] = merged
		merged = merged.Merge(nil)
		return len(patch) > 0, nil
	})
	return merged, err
}

// Preferences returns a copy of the user's preferences (never nil).
func (c *Collection) Preferences(userID string) domain.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.prefs[userID].Merge(nil)
}
