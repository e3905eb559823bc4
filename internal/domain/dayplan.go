package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Activity is one scheduled slot of a day plan.
type Activity struct {
	Time            string `json:"time"`
	Activity        string `json:"activity"`
	Location        string `json:"location"`
	Duration        string `json:"duration"`
	EstimatedCost   string `json:"estimated_cost"`
	Description     string `json:"description"`
	Transportation  string `json:"transportation"`
	BookingRequired bool   `json:"booking_required"`
	Tips            string `json:"tips"`
}

// BudgetBreakdown splits a plan's cost.
type BudgetBreakdown struct {
	Food           string `json:"food"`
	Attractions    string `json:"attractions"`
	Transportation string `json:"transportation"`
}

// DayPlan is an ordered itinerary with cost and time totals.
type DayPlan struct {
	Title                string          `json:"title"`
	Date                 string          `json:"date"`
	TotalEstimatedCost   string          `json:"total_estimated_cost"`
	TotalDuration        string          `json:"total_duration"`
	Activities           []Activity      `json:"activities"`
	TransportationNotes  string          `json:"transportation_notes"`
	TotalWalkingDistance string          `json:"total_walking_distance"`
	WeatherTips          string          `json:"weather_tips"`
	BudgetBreakdown      BudgetBreakdown `json:"budget_breakdown"`
}

// DayPlanEnvelope is the day_plan artifact as it appears on the wire.
type DayPlanEnvelope struct {
	DayPlan DayPlan `json:"day_plan"`
}

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsClock reports whether s is a HH:MM 24h time.
func IsClock(s string) bool { return clockRe.MatchString(s) }

// Validate checks the required-field contract shared by the LLM and rule-based paths.
func (e DayPlanEnvelope) Validate() error {
	p := e.DayPlan
	if p.Title == "" {
		return errors.New("day_plan.title is required")
	}
	if p.TotalEstimatedCost == "" {
		return errors.New("day_plan.total_estimated_cost is required")
	}
	if len(p.Activities) == 0 {
		return errors.New("day_plan.activities must not be empty")
	}
	for i, a := range p.Activities {
		if !IsClock(a.Time) {
			return fmt.Errorf("day_plan.activities[%d]: time %q is not HH:MM", i, a.Time)
		}
		if a.Activity == "" {
			return fmt.Errorf("day_plan.activities[%d]: activity is required", i)
		}
	}
	return nil
}
