// Package booking persists reservation records as JSON strings with a per-user id list.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/manara/internal/db"
	"github.com/kailas-cloud/manara/internal/domain"
)

// store is the consumer interface for booking storage (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo implements usecase/booking.Repository on Valkey.
type Repo struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a booking repository. ttl bounds how long records are kept; zero keeps them forever.
func New(s store, keyPrefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *Repo) bookingKey(id string) string { return r.keyPrefix + "booking:" + id }
func (r *Repo) userKey(userID string) string { return r.keyPrefix + "user_bookings:" + userID }

// Save stores the reservation and appends its id to the user's history.
func (r *Repo) Save(ctx context.Context, res domain.Reservation) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal booking %s: %w", res.BookingID, err)
	}
	if err := r.store.SetWithTTL(ctx, r.bookingKey(res.BookingID), data, r.ttl); err != nil {
		return fmt.Errorf("save booking %s: %w", res.BookingID, err)
	}
	if err := r.store.RPush(ctx, r.userKey(res.UserID), res.BookingID); err != nil {
		return fmt.Errorf("index booking %s for user %s: %w", res.BookingID, res.UserID, err)
	}
	return nil
}

// Get returns a single reservation or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domain.Reservation, error) {
	data, err := r.store.Get(ctx, r.bookingKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Reservation{}, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
		}
		return domain.Reservation{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	var res domain.Reservation
	if err := json.Unmarshal(data, &res); err != nil {
		return domain.Reservation{}, fmt.Errorf("decode booking %s: %w", id, err)
	}
	return res, nil
}

// ListByUser returns the user's reservations in creation order. Expired records are skipped.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	ids, err := r.store.LRange(ctx, r.userKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", userID, err)
	}
	out := make([]domain.Reservation, 0, len(ids))
	for _, id := range ids {
		res, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
