// Package profile serves stored user preference profiles.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/manara/internal/domain"
)

// Repository persists profiles. Get returns domain.ErrNotFound for unknown users.
type Repository interface {
	Get(ctx context.Context, userID string) (domain.UserProfile, error)
	Save(ctx context.Context, p domain.UserProfile) error
}

// Service reads and writes profiles.
type Service struct {
	repo Repository
}

// New creates a profile service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored profile, or the default profile for users that never saved one.
func (s *Service) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	if userID == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultProfile(userID), nil
		}
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p.Normalize(), nil
}

// Save normalizes and stores the profile.
func (s *Service) Save(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	if p.UserID == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	if p.BudgetRange != "" {
		if _, ok := p.BudgetRange.Level(); !ok {
			return domain.UserProfile{}, fmt.Errorf("%w: budget_range %q is not one of $, $$, $$$, $$$$",
				domain.ErrInvalidRequest, p.BudgetRange)
		}
	}
	p = p.Normalize()
	if err := s.repo.Save(ctx, p); err != nil {
		return domain.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}
