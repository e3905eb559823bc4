package domain

import "strings"

// BudgetTier is an ordinal price category: $ < $$ < $$$ < $$$$.
type BudgetTier string

// Known budget tiers.
const (
	BudgetLow      BudgetTier = "$"
	BudgetModerate BudgetTier = "$$"
	BudgetHigh     BudgetTier = "$$$"
	BudgetLuxury   BudgetTier = "$$$$"
)

// Level returns the ordinal position of the tier (1..4).
// ok is false for empty or non-ordinal values such as "Free" or "QAR 50".
func (t BudgetTier) Level() (level int, ok bool) {
	switch BudgetTier(strings.TrimSpace(string(t))) {
	case BudgetLow:
		return 1, true
	case BudgetModerate:
		return 2, true
	case BudgetHigh:
		return 3, true
	case BudgetLuxury:
		return 4, true
	default:
		return 0, false
	}
}

// Profile defaults applied by Normalize.
const (
	DefaultGroupSize = 1
	DefaultMinRating = 4.0
	DefaultLanguage  = "en"
)

// UserProfile is the per-request preference vector that biases retrieval and generation.
type UserProfile struct {
	UserID          string     `json:"user_id"`
	FoodPreferences []string   `json:"food_preferences"`
	BudgetRange     BudgetTier `json:"budget_range"`
	ActivityTypes   []string   `json:"activity_types"`
	Language        string     `json:"language,omitempty"`
	GroupSize       int        `json:"group_size"`
	MinRating       float64    `json:"min_rating"`
}

// Normalize fills unset numeric fields with defaults and clamps MinRating into [0,5].
func (p UserProfile) Normalize() UserProfile {
	if p.GroupSize <= 0 {
		p.GroupSize = DefaultGroupSize
	}
	if p.MinRating < 0 {
		p.MinRating = 0
	}
	if p.MinRating > 5 {
		p.MinRating = 5
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.FoodPreferences == nil {
		p.FoodPreferences = []string{}
	}
	if p.ActivityTypes == nil {
		p.ActivityTypes = []string{}
	}
	return p
}

// HasActivity reports whether the profile lists the given activity tag.
func (p UserProfile) HasActivity(tag string) bool {
	for _, a := range p.ActivityTypes {
		if a == tag {
			return true
		}
	}
	return false
}

// DefaultProfile is the profile served for users that never saved one.
func DefaultProfile(userID string) UserProfile {
	return UserProfile{
		UserID:          userID,
		FoodPreferences: []string{},
		BudgetRange:     BudgetLow,
		ActivityTypes:   []string{},
		Language:        DefaultLanguage,
		GroupSize:       DefaultGroupSize,
		MinRating:       DefaultMinRating,
	}
}
