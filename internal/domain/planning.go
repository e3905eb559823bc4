package domain

// ParsedQueryPreferences are planning cues extracted from free text.
// Zero values mean "not mentioned"; the day planner applies its own defaults.
type ParsedQueryPreferences struct {
	Duration           int        `json:"duration,omitempty"`
	DurationText       string     `json:"duration_text,omitempty"`
	StartTime          string     `json:"start_time,omitempty"`
	StartTimeText      string     `json:"start_time_text,omitempty"`
	BudgetRange        BudgetTier `json:"budget_range,omitempty"`
	BudgetAmount       int        `json:"budget_amount,omitempty"`
	BudgetText         string     `json:"budget_text,omitempty"`
	ActivityTypes      []string   `json:"activity_types,omitempty"`
	SurpriseMode       bool       `json:"surprise_mode,omitempty"`
	IncludeSouqs       bool       `json:"include_souqs,omitempty"`
	PrioritizeCulture  bool       `json:"prioritize_culture,omitempty"`
	IncludeRestaurants bool       `json:"include_restaurants,omitempty"`
}

// Overlay applies parsed budget tier and activity types over the profile.
func (p ParsedQueryPreferences) Overlay(profile UserProfile) UserProfile {
	if p.BudgetRange != "" {
		profile.BudgetRange = p.BudgetRange
	}
	if len(p.ActivityTypes) > 0 {
		profile.ActivityTypes = append([]string(nil), p.ActivityTypes...)
	}
	return profile
}
