// Package memory provides process-local booking and profile repositories on go-cache.
// It backs storage.driver=memory for local runs without Valkey.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/manara/internal/domain"
)

const cleanupInterval = 10 * time.Minute

// BookingRepo keeps reservations in memory.
type BookingRepo struct {
	cache *gocache.Cache

	mu     sync.Mutex
	byUser map[string][]string
}

// NewBookingRepo creates an in-memory booking repository. ttl of zero keeps entries forever.
func NewBookingRepo(ttl time.Duration) *BookingRepo {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	r := &BookingRepo{
		cache:  gocache.New(ttl, cleanupInterval),
		byUser: make(map[string][]string),
	}
	r.cache.OnEvicted(func(id string, v any) {
		if res, ok := v.(domain.Reservation); ok {
			r.mu.Lock()
			r.keepLocked(res.UserID, func(have string) bool { return have != id })
			r.mu.Unlock()
		}
	})
	return r
}

// keepLocked filters the user's id index, dropping the entry once it is empty. r.mu must be held.
func (r *BookingRepo) keepLocked(userID string, keep func(id string) bool) {
	ids := r.byUser[userID]
	live := ids[:0]
	for _, id := range ids {
		if keep(id) {
			live = append(live, id)
		}
	}
	if len(live) == 0 {
		delete(r.byUser, userID)
		return
	}
	r.byUser[userID] = live
}

// Save stores the reservation and appends it to the user's history.
func (r *BookingRepo) Save(_ context.Context, res domain.Reservation) error {
	r.cache.Set(res.BookingID, res, gocache.DefaultExpiration)
	r.mu.Lock()
	r.byUser[res.UserID] = append(r.byUser[res.UserID], res.BookingID)
	r.mu.Unlock()
	return nil
}

// Get returns a reservation or domain.ErrNotFound.
func (r *BookingRepo) Get(_ context.Context, id string) (domain.Reservation, error) {
	v, found := r.cache.Get(id)
	if !found {
		return domain.Reservation{}, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return v.(domain.Reservation), nil
}

// ListByUser returns unexpired reservations in creation order and prunes expired ids from the index.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Reservation, 0, len(r.byUser[userID]))
	r.keepLocked(userID, func(id string) bool {
		res, err := r.Get(ctx, id)
		if err != nil {
			return false
		}
		out = append(out, res)
		return true
	})
	return out, nil
}

// ProfileRepo keeps user profiles in memory without expiry.
type ProfileRepo struct {
	cache *gocache.Cache
}

// NewProfileRepo creates an in-memory profile repository.
func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get returns a stored profile or domain.ErrNotFound.
func (r *ProfileRepo) Get(_ context.Context, userID string) (domain.UserProfile, error) {
	v, found := r.cache.Get(userID)
	if !found {
		return domain.UserProfile{}, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	return v.(domain.UserProfile), nil
}

// Save overwrites the stored profile.
func (r *ProfileRepo) Save(_ context.Context, p domain.UserProfile) error {
	r.cache.Set(p.UserID, p, gocache.NoExpiration)
	return nil
}

// ConversationRepo keeps conversation turns in memory, capped to the most recent maxTurns.
type ConversationRepo struct {
	cache    *gocache.Cache
	maxTurns int

	mu sync.Mutex
}

// NewConversationRepo creates an in-memory conversation repository.
// ttl of zero keeps idle conversations forever; maxTurns of zero keeps every turn.
func NewConversationRepo(maxTurns int, ttl time.Duration) *ConversationRepo {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &ConversationRepo{cache: gocache.New(ttl, cleanupInterval), maxTurns: maxTurns}
}

// Load returns a copy of the stored turns, empty for unknown conversations.
func (r *ConversationRepo) Load(_ context.Context, id string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Message{}, r.turnsLocked(id)...), nil
}

// Append adds turns, drops the oldest beyond maxTurns and refreshes the idle ttl.
func (r *ConversationRepo) Append(_ context.Context, id string, turns ...domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.turnsLocked(id)
	all := make([]domain.Message, 0, len(prev)+len(turns))
	all = append(append(all, prev...), turns...)
	if r.maxTurns > 0 && len(all) > r.maxTurns {
		all = all[len(all)-r.maxTurns:]
	}
	r.cache.Set(id, all, gocache.DefaultExpiration)
	return nil
}

// Clear removes the conversation.
func (r *ConversationRepo) Clear(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *ConversationRepo) turnsLocked(id string) []domain.Message {
	if v, found := r.cache.Get(id); found {
		return v.([]domain.Message)
	}
	return nil
}
