package domain

import (
	"encoding/json"
	"fmt"
)

// Keys each artifact must carry on the wire. A decoded struct cannot tell a missing
// key from its zero value, so LLM replies are checked against these before Validate.
var (
	recommendationSetKeys = []string{"recommendations", "summary"}
	recommendationKeys    = []string{
		"name", "type", "description", "location", "price_range", "rating",
		"estimated_duration", "why_recommended", "booking_available", "best_time_to_visit",
	}

	bookingResultKeys  = []string{"booking_details", "booking_summary", "next_steps"}
	bookingDetailsKeys = []string{
		"type", "venue_name", "date", "time", "party_size", "estimated_cost", "confirmation_needed",
	}

	dayPlanKeys = []string{
		"title", "date", "total_estimated_cost", "total_duration", "activities",
		"transportation_notes", "total_walking_distance", "weather_tips", "budget_breakdown",
	}
	activityKeys = []string{
		"time", "activity", "location", "duration", "estimated_cost",
		"description", "transportation", "booking_required", "tips",
	}
	budgetBreakdownKeys = []string{"food", "attractions", "transportation"}
)

// RequireKeys checks that raw holds a recommendations object with every item fully keyed.
func (RecommendationSet) RequireKeys(raw []byte) error {
	obj, err := requireKeys(raw, "$", recommendationSetKeys...)
	if err != nil {
		return err
	}
	return requireEach(obj["recommendations"], "recommendations", recommendationKeys...)
}

// RequireKeys checks that raw holds a booking object with fully keyed booking_details.
func (BookingResult) RequireKeys(raw []byte) error {
	obj, err := requireKeys(raw, "$", bookingResultKeys...)
	if err != nil {
		return err
	}
	_, err = requireKeys(obj["booking_details"], "booking_details", bookingDetailsKeys...)
	return err
}

// RequireKeys checks that raw holds a day_plan object with fully keyed activities.
func (DayPlanEnvelope) RequireKeys(raw []byte) error {
	env, err := requireKeys(raw, "$", "day_plan")
	if err != nil {
		return err
	}
	plan, err := requireKeys(env["day_plan"], "day_plan", dayPlanKeys...)
	if err != nil {
		return err
	}
	if _, err := requireKeys(plan["budget_breakdown"], "day_plan.budget_breakdown", budgetBreakdownKeys...); err != nil {
		return err
	}
	return requireEach(plan["activities"], "day_plan.activities", activityKeys...)
}

func requireKeys(raw json.RawMessage, path string, keys ...string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%s must be an object", path)
	}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return nil, fmt.Errorf("%s.%s is required", path, k)
		}
	}
	return obj, nil
}

func requireEach(raw json.RawMessage, path string, keys ...string) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("%s must be a list", path)
	}
	for i, item := range items {
		if _, err := requireKeys(item, fmt.Sprintf("%s[%d]", path, i), keys...); err != nil {
			return err
		}
	}
	return nil
}
