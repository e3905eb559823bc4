package dayplan

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/manara/internal/domain"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC) }

func rec(name, category, price, fee string, rating float64) domain.VenueRecord {
	return domain.VenueRecord{
		ID:       name,
		Document: name + " is a well known place in Doha.",
		Metadata: domain.VenueMetadata{
			Name: name, Category: category, Location: "Doha",
			PriceRange: price, EntryFee: fee, Rating: rating, HasRating: rating > 0,
		},
	}
}

func halfDayVenues() []domain.VenueRecord {
	return []domain.VenueRecord{
		rec("Bandar Aden", domain.CategoryRestaurants, "$", "", 4.3),
		rec("Museum of Islamic Art", domain.CategoryAttractions, "", "Free", 4.8),
		rec("Chapati & Karak", domain.CategoryCafes, "$", "", 4.6),
		rec("Katara Village", domain.CategoryAttractions, "", "QAR 100", 4.7),
	}
}

func halfDayBudgetRequest() Request {
	return Request{
		Duration: 4, DurationText: "half day (4 hours)", StartTime: "09:00", Budget: 75,
		ActivityTypes: []string{ActivityCultural},
	}
}

func TestRank_BudgetAndPreferences(t *testing.T) {
	g := NewGenerator(fixedNow)
	ranked := g.Rank(halfDayVenues(), halfDayBudgetRequest())

	var names []string
	for _, v := range ranked {
		names = append(names, v.Metadata.Name)
	}
	want := []string{"Museum of Islamic Art", "Chapati & Karak", "Bandar Aden"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ranked = %v, want %v", names, want)
	}
}

func TestRank_StableAndCapped(t *testing.T) {
	var venues []domain.VenueRecord
	for i := 0; i < 20; i++ {
		venues = append(venues, rec(fmt.Sprintf("v%02d", i), domain.CategoryShopping, "", "", 0))
	}
	ranked := NewGenerator(fixedNow).Rank(venues, Request{Budget: 150})
	if len(ranked) != MaxRanked {
		t.Fatalf("expected %d venues, got %d", MaxRanked, len(ranked))
	}
	for i, v := range ranked {
		if want := fmt.Sprintf("v%02d", i); v.ID != want {
			t.Errorf("position %d = %s, want %s (equal scores keep input order)", i, v.ID, want)
		}
	}
}

func TestBudgetScore(t *testing.T) {
	tests := []struct {
		budget, cost, want int
		keep               bool
	}{
		{250, 50, 3, true},
		{250, 10, 1, true},
		{150, 20, 3, true},
		{150, 80, 3, true},
		{150, 10, 2, true},
		{150, 100, 0, true},
		{75, 30, 3, true},
		{75, 50, 1, true},
		{75, 51, 0, false},
	}
	for _, tt := range tests {
		got, keep := budgetScore(tt.budget, tt.cost)
		if got != tt.want || keep != tt.keep {
			t.Errorf("budgetScore(%d, %d) = %d,%v want %d,%v", tt.budget, tt.cost, got, keep, tt.want, tt.keep)
		}
	}
}

func TestBuild_HalfDayBudget(t *testing.T) {
	plan := NewGenerator(fixedNow).Build(halfDayVenues(), halfDayBudgetRequest()).DayPlan

	if plan.Title != "Your half day (4 hours) Qatar Experience" {
		t.Errorf("title = %q", plan.Title)
	}
	if plan.Date != "2026-10-14" || plan.TotalDuration != "4 hours" {
		t.Errorf("date/duration = %q / %q", plan.Date, plan.TotalDuration)
	}

	want := []struct{ time, activity, duration, cost string }{
		{"09:00", "Coffee break at Chapati & Karak", "0.5 hours", "$10"},
		{"09:30", "Visit Museum of Islamic Art", "2.0 hours", "Free"},
		{"11:30", "Lunch at Bandar Aden", "1.0 hours", "$25"},
		{"12:30", "Visit Museum of Islamic Art", "1.5 hours", "Free"},
	}
	if len(plan.Activities) != len(want) {
		t.Fatalf("expected %d activities, got %d", len(want), len(plan.Activities))
	}
	for i, w := range want {
		a := plan.Activities[i]
		if a.Time != w.time || a.Activity != w.activity || a.Duration != w.duration || a.EstimatedCost != w.cost {
			t.Errorf("activity %d = {%s %s %s %s}, want %+v", i, a.Time, a.Activity, a.Duration, a.EstimatedCost, w)
		}
	}

	if plan.TotalEstimatedCost != "$35" {
		t.Errorf("total = %q, want $35", plan.TotalEstimatedCost)
	}
	wantBreakdown := domain.BudgetBreakdown{Food: "$35", Attractions: "$0", Transportation: "$30"}
	if plan.BudgetBreakdown != wantBreakdown {
		t.Errorf("breakdown = %+v, want %+v", plan.BudgetBreakdown, wantBreakdown)
	}
	if plan.TotalWalkingDistance != "2.0 km" {
		t.Errorf("walking = %q", plan.TotalWalkingDistance)
	}
	if err := (domain.DayPlanEnvelope{DayPlan: plan}).Validate(); err != nil {
		t.Errorf("rule-based plan must validate: %v", err)
	}
}

func TestBuild_FullDayPlaceholdersAndDinnerBand(t *testing.T) {
	req := Request{Duration: 8, StartTime: "09:00", Budget: 150}
	plan := NewGenerator(fixedNow).Build(nil, req).DayPlan

	if plan.Title != "Your Perfect Qatar Experience" {
		t.Errorf("title = %q", plan.Title)
	}
	times := []string{"09:00", "10:00", "12:30", "14:00", "16:30"}
	for i, a := range plan.Activities {
		if a.Time != times[i] {
			t.Errorf("activity %d at %s, want %s", i, a.Time, times[i])
		}
	}
	if got := plan.Activities[0].Activity; got != "Breakfast at Local Restaurant" {
		t.Errorf("breakfast = %q", got)
	}
	if got := plan.Activities[1].Activity; got != "Visit Qatar Attraction" {
		t.Errorf("activity = %q", got)
	}
	// Dinner at 150 is priced in the premium band (150 * 1.5).
	if got := plan.Activities[4].EstimatedCost; got != "$120" {
		t.Errorf("dinner cost = %q, want $120", got)
	}
	if got := plan.Activities[0].Description; got != "Enjoy an excellent breakfast experience" {
		t.Errorf("placeholder description = %q", got)
	}
	if plan.Activities[0].Tips != "Perfect breakfast spot with 4.5/5 rating" {
		t.Errorf("tips = %q", plan.Activities[0].Tips)
	}
}

func TestBuild_ExtendedDayHasSevenSlots(t *testing.T) {
	plan := NewGenerator(fixedNow).Build(halfDayVenues(), Request{Duration: 12, StartTime: "07:00", Budget: 250}).DayPlan
	if len(plan.Activities) != 7 {
		t.Fatalf("expected 7 activities, got %d", len(plan.Activities))
	}
	if got := plan.BudgetBreakdown.Transportation; got != "$37" {
		t.Errorf("transportation = %q, want $37", got)
	}
}

func TestBuild_PremiumAttractionFloor(t *testing.T) {
	venues := []domain.VenueRecord{rec("Fort", domain.CategoryAttractions, "", "QAR 10", 4.0)}
	plan := NewGenerator(fixedNow).Build(venues, Request{Duration: 4, StartTime: "09:00", Budget: 250}).DayPlan
	if got := plan.Activities[1].EstimatedCost; got != "$20" {
		t.Errorf("premium attraction cost = %q, want $20", got)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	g := NewGenerator(fixedNow)
	a := g.Build(halfDayVenues(), halfDayBudgetRequest())
	b := g.Build(halfDayVenues(), halfDayBudgetRequest())
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different plans")
	}
}

func TestEmergency(t *testing.T) {
	g := NewGenerator(fixedNow)

	budget := g.Emergency(Request{Duration: 4, StartTime: "10:00", Budget: 75}).DayPlan
	if budget.Title != "Your 4-Hour Qatar Experience" || budget.TotalEstimatedCost != "$35" {
		t.Errorf("budget plan = %q / %q", budget.Title, budget.TotalEstimatedCost)
	}
	if budget.Activities[1].Time != "11:30" || budget.Activities[1].Activity != "Explore Souq Waqif" {
		t.Errorf("second stop = %+v", budget.Activities[1])
	}
	if budget.BudgetBreakdown != (domain.BudgetBreakdown{Food: "$21", Attractions: "$10", Transportation: "$23"}) {
		t.Errorf("breakdown = %+v", budget.BudgetBreakdown)
	}

	premium := g.Emergency(Request{Duration: 8, StartTime: "09:00", Budget: 250}).DayPlan
	if premium.Activities[0].Activity != "Breakfast at Al Mourjan Restaurant" || premium.Activities[1].Time != "11:00" {
		t.Errorf("premium plan = %+v", premium.Activities)
	}
	if premium.TotalWalkingDistance != "1 km" {
		t.Errorf("walking = %q", premium.TotalWalkingDistance)
	}
	for _, p := range []domain.DayPlan{budget, premium} {
		if err := (domain.DayPlanEnvelope{DayPlan: p}).Validate(); err != nil {
			t.Errorf("emergency plan must validate: %v", err)
		}
	}
}
