package dayplan

import (
	"strings"

	"github.com/kailas-cloud/manara/internal/domain"
)

// Activity tags understood by the ranker.
const (
	ActivityCultural = "Cultural"
	ActivityFood     = "Food"
	ActivityModern   = "Modern"
	ActivityShopping = "Shopping"
)

type cue struct {
	phrases []string
	apply   func(*domain.ParsedQueryPreferences)
}

// The first matching cue in each group wins.
var (
	durationCues = []cue{
		{[]string{"extended day", "12 hour"}, func(p *domain.ParsedQueryPreferences) {
			p.Duration, p.DurationText = 12, "extended day (12 hours)"
		}},
		{[]string{"full day", "8 hour"}, func(p *domain.ParsedQueryPreferences) {
			p.Duration, p.DurationText = 8, "full day (8 hours)"
		}},
		{[]string{"half day", "4 hour"}, func(p *domain.ParsedQueryPreferences) {
			p.Duration, p.DurationText = 4, "half day (4 hours)"
		}},
	}
	startCues = []cue{
		{[]string{"early morning", "7-9 am"}, func(p *domain.ParsedQueryPreferences) {
			p.StartTime, p.StartTimeText = "07:00", "early morning"
		}},
		{[]string{"morning", "9-11 am"}, func(p *domain.ParsedQueryPreferences) {
			p.StartTime, p.StartTimeText = "09:00", "morning"
		}},
		{[]string{"afternoon", "12-2 pm"}, func(p *domain.ParsedQueryPreferences) {
			p.StartTime, p.StartTimeText = "13:00", "afternoon"
		}},
	}
	budgetCues = []cue{
		{[]string{"premium", "$200+"}, func(p *domain.ParsedQueryPreferences) {
			p.BudgetRange, p.BudgetAmount, p.BudgetText = domain.BudgetHigh, 250, "premium ($200+)"
		}},
		{[]string{"moderate", "$100-200"}, func(p *domain.ParsedQueryPreferences) {
			p.BudgetRange, p.BudgetAmount, p.BudgetText = domain.BudgetModerate, 150, "moderate ($100-200)"
		}},
		{[]string{"budget", "$50-100"}, func(p *domain.ParsedQueryPreferences) {
			p.BudgetRange, p.BudgetAmount, p.BudgetText = domain.BudgetLow, 75, "budget-friendly ($50-100)"
		}},
	}
)

// ParsePlanningQuery extracts duration, start, budget and activity cues from free text.
func ParsePlanningQuery(query string) domain.ParsedQueryPreferences {
	var p domain.ParsedQueryPreferences
	q := strings.ToLower(query)

	for _, group := range [][]cue{durationCues, startCues, budgetCues} {
		for _, c := range group {
			if containsAny(q, c.phrases...) {
				c.apply(&p)
				break
			}
		}
	}

	var activities []string
	if containsAny(q, "cultural", "historic") {
		activities = append(activities, ActivityCultural)
	}
	if containsAny(q, "food", "dining") {
		activities = append(activities, ActivityFood)
	}
	if containsAny(q, "modern", "shopping") {
		activities = append(activities, ActivityModern)
	}
	if containsAny(q, "mix of everything", "surprise me") {
		activities = []string{ActivityCultural, ActivityFood, ActivityModern, ActivityShopping}
		p.SurpriseMode = true
	}
	p.ActivityTypes = activities

	p.IncludeSouqs = strings.Contains(q, "traditional souqs")
	p.PrioritizeCulture = strings.Contains(q, "cultural sites")
	if strings.Contains(q, "restaurants") {
		p.IncludeRestaurants = true
		if len(p.ActivityTypes) == 0 {
			p.ActivityTypes = []string{ActivityFood}
		}
	}
	return p
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
