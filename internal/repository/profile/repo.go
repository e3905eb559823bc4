// Package profile persists user preference profiles as Valkey hashes.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/manara/internal/domain"
)

// store is the consumer interface for profile storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/profile.Repository on Valkey.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a profile repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix + "profile:"}
}

// Get loads a profile; an absent hash yields domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	m, err := r.store.HGetAll(ctx, r.keyPrefix+userID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	if len(m) == 0 {
		return domain.UserProfile{}, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	p, err := parseHashFields(userID, m)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return p, nil
}

// Save overwrites the stored profile fields.
func (r *Repo) Save(ctx context.Context, p domain.UserProfile) error {
	fields, err := buildHashFields(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.UserID, err)
	}
	if err := r.store.HSet(ctx, r.keyPrefix+p.UserID, fields); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}

func buildHashFields(p domain.UserProfile) (map[string]string, error) {
	food, err := json.Marshal(p.FoodPreferences)
	if err != nil {
		return nil, err
	}
	acts, err := json.Marshal(p.ActivityTypes)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"food_preferences": string(food),
		"activity_types":   string(acts),
		"budget_range":     string(p.BudgetRange),
		"language":         p.Language,
		"group_size":       strconv.Itoa(p.GroupSize),
		"min_rating":       strconv.FormatFloat(p.MinRating, 'f', -1, 64),
	}, nil
}

func parseHashFields(userID string, m map[string]string) (domain.UserProfile, error) {
	p := domain.UserProfile{
		UserID:      userID,
		BudgetRange: domain.BudgetTier(m["budget_range"]),
		Language:    m["language"],
	}
	if v := m["food_preferences"]; v != "" {
		if err := json.Unmarshal([]byte(v), &p.FoodPreferences); err != nil {
			return p, fmt.Errorf("food_preferences: %w", err)
		}
	}
	if v := m["activity_types"]; v != "" {
		if err := json.Unmarshal([]byte(v), &p.ActivityTypes); err != nil {
			return p, fmt.Errorf("activity_types: %w", err)
		}
	}
	if v := m["group_size"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("group_size: %w", err)
		}
		p.GroupSize = n
	}
	if v := m["min_rating"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("min_rating: %w", err)
		}
		p.MinRating = f
	}
	return p.Normalize(), nil
}
