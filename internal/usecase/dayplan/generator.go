package dayplan

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/manara/internal/domain"
)

// MaxRanked caps the venues kept after scoring.
const MaxRanked = 12

// Request is a fully resolved day-plan request.
type Request struct {
	Duration          int
	DurationText      string
	StartTime         string
	Budget            int
	ActivityTypes     []string
	IncludeSouqs      bool
	PrioritizeCulture bool
}

// Generator builds itineraries without the LLM. Output depends only on its inputs and the clock.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a generator. A nil clock uses time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

func (g *Generator) today() string { return g.now().Format("2006-01-02") }

type slotKind int

const (
	slotBreakfast slotKind = iota
	slotLunch
	slotDinner
	slotCoffee
	slotActivity
)

type slot struct {
	kind  slotKind
	hours float64
}

func template(duration int) []slot {
	switch {
	case duration >= 12:
		return []slot{
			{slotBreakfast, 1}, {slotActivity, 2.5}, {slotLunch, 1.5},
			{slotActivity, 2}, {slotCoffee, 1}, {slotActivity, 2.5}, {slotDinner, 2},
		}
	case duration >= 8:
		return []slot{
			{slotBreakfast, 1}, {slotActivity, 2.5}, {slotLunch, 1.5}, {slotActivity, 2.5}, {slotDinner, 1.5},
		}
	default:
		return []slot{{slotCoffee, 0.5}, {slotActivity, 2}, {slotLunch, 1}, {slotActivity, 1.5}}
	}
}

// Build assembles a plan from ranked venues.
func (g *Generator) Build(venues []domain.VenueRecord, req Request) domain.DayPlanEnvelope {
	ranked := g.Rank(venues, req)
	activities := g.schedule(ranked, req)

	total := 0
	for _, a := range activities {
		total += ParseCost(a.EstimatedCost)
	}
	durationText := req.DurationText
	if durationText == "" {
		durationText = "Perfect"
	}

	return domain.DayPlanEnvelope{DayPlan: domain.DayPlan{
		Title:                fmt.Sprintf("Your %s Qatar Experience", durationText),
		Date:                 g.today(),
		TotalEstimatedCost:   dollars(total),
		TotalDuration:        fmt.Sprintf("%d hours", req.Duration),
		Activities:           activities,
		TransportationNotes:  fmt.Sprintf("Recommended transportation for this %d-hour itinerary", req.Duration),
		TotalWalkingDistance: fmt.Sprintf("%.1f km", float64(len(activities))*0.5),
		WeatherTips:          "Dress comfortably, bring sunscreen and water for extended touring",
		BudgetBreakdown:      breakdown(activities, req.Budget),
	}}
}

type scored struct {
	venue domain.VenueRecord
	score int
}

// Rank scores venues against budget, activity tags and rating, drops venues too expensive
// for a low budget, and returns at most MaxRanked in descending score order (stable).
func (g *Generator) Rank(venues []domain.VenueRecord, req Request) []domain.VenueRecord {
	out := make([]scored, 0, len(venues))
	for _, v := range venues {
		score, ok := budgetScore(req.Budget, ParseCost(orDefault(v.Metadata.PriceOrFee(), "$0")))
		if !ok {
			continue
		}
		out = append(out, scored{venue: v, score: score + preferenceScore(v.Metadata, req)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > MaxRanked {
		out = out[:MaxRanked]
	}
	ranked := make([]domain.VenueRecord, len(out))
	for i, s := range out {
		ranked[i] = s.venue
	}
	return ranked
}

func budgetScore(budget, cost int) (int, bool) {
	switch {
	case budget >= PremiumBudget:
		if cost >= 50 {
			return 3, true
		}
		return 1, true
	case budget >= ModerateBudget:
		switch {
		case cost >= 20 && cost <= 80:
			return 3, true
		case cost < 20:
			return 2, true
		default:
			return 0, true
		}
	default:
		switch {
		case cost <= 30:
			return 3, true
		case cost <= 50:
			return 1, true
		default:
			return 0, false
		}
	}
}

func preferenceScore(m domain.VenueMetadata, req Request) int {
	score := 0
	culture := m.Category == domain.CategoryAttractions || m.Category == domain.CategoryMuseums
	souq := m.NameContains("souq")

	if hasTag(req.ActivityTypes, ActivityCultural) && culture {
		score += 2
	}
	if hasTag(req.ActivityTypes, ActivityFood) &&
		(m.Category == domain.CategoryRestaurants || m.Category == domain.CategoryCafes) {
		score += 2
	}
	if hasTag(req.ActivityTypes, ActivityModern) &&
		(m.Category == domain.CategoryShopping || m.Category == domain.CategoryMalls) {
		score += 2
	}
	if hasTag(req.ActivityTypes, ActivityShopping) && souq {
		score += 2
	}
	if req.IncludeSouqs && souq {
		score += 3
	}
	if req.PrioritizeCulture && culture {
		score += 3
	}

	switch r := m.RatingOr(0); {
	case r >= 4.5:
		score += 2
	case r >= 4.0:
		score++
	}
	return score
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

var (
	placeholderRestaurant = domain.VenueRecord{Metadata: domain.VenueMetadata{
		Name: "Local Restaurant", Category: domain.CategoryRestaurants, Location: "Doha",
	}}
	placeholderAttraction = domain.VenueRecord{Metadata: domain.VenueMetadata{
		Name: "Qatar Attraction", Category: domain.CategoryAttractions, Location: "Doha",
	}}
)

func (g *Generator) schedule(ranked []domain.VenueRecord, req Request) []domain.Activity {
	var restaurants, attractions, cafes []domain.VenueRecord
	for _, v := range ranked {
		switch v.Metadata.Category {
		case domain.CategoryRestaurants:
			restaurants = append(restaurants, v)
		case domain.CategoryAttractions:
			attractions = append(attractions, v)
		case domain.CategoryCafes:
			cafes = append(cafes, v)
		}
	}
	if len(restaurants) == 0 {
		restaurants = []domain.VenueRecord{placeholderRestaurant}
	}
	if len(attractions) == 0 {
		attractions = []domain.VenueRecord{placeholderAttraction}
	}

	var ri, ai, ci int
	clock := req.StartTime
	slots := template(req.Duration)
	activities := make([]domain.Activity, 0, len(slots))

	for _, s := range slots {
		var a domain.Activity
		switch s.kind {
		case slotBreakfast, slotLunch:
			a = mealActivity(restaurants[ri%len(restaurants)], clock, mealName(s.kind), float64(req.Budget), s.hours)
			ri++
		case slotDinner:
			// Dinner is priced one band up.
			a = mealActivity(restaurants[ri%len(restaurants)], clock, MealDinner, float64(req.Budget)*1.5, s.hours)
			ri++
		case slotCoffee:
			v := restaurants[0]
			if len(cafes) > 0 {
				v = cafes[ci%len(cafes)]
			}
			a = cafeActivity(v, clock, req.Budget, s.hours)
			ci++
		default:
			a = attractionActivity(attractions[ai%len(attractions)], clock, req.Budget, s.hours)
			ai++
		}
		activities = append(activities, a)
		clock = AddTime(clock, s.hours)
	}
	return activities
}

func mealName(k slotKind) string {
	if k == slotBreakfast {
		return MealBreakfast
	}
	return MealLunch
}

func mealActivity(v domain.VenueRecord, clock, meal string, budget, hours float64) domain.Activity {
	m := v.Metadata
	cost := MealBaseCost(budget, meal)
	if venueCost := ParseCost(orDefault(m.PriceRange, "$0")); venueCost > 0 &&
		math.Abs(float64(venueCost-cost)) < float64(cost)*0.5 {
		cost = venueCost
	}
	return domain.Activity{
		Time:            clock,
		Activity:        fmt.Sprintf("%s at %s", titleCase(meal), orDefault(m.Name, "Premium Restaurant")),
		Location:        orDefault(m.Location, "Doha, Qatar"),
		Duration:        hoursText(hours),
		EstimatedCost:   dollars(cost),
		Description:     describe(v, fmt.Sprintf("Enjoy an excellent %s experience", meal)),
		Transportation:  "Private transport or taxi",
		BookingRequired: true,
		Tips:            fmt.Sprintf("Perfect %s spot with %s/5 rating", meal, domain.FormatDecimal(m.RatingOr(4.5))),
	}
}

func attractionActivity(v domain.VenueRecord, clock string, budget int, hours float64) domain.Activity {
	m := v.Metadata
	cost := "Free"
	if base := ParseCost(orDefault(m.FeeOrPrice(), "$0")); base > 0 {
		if budget >= PremiumBudget {
			base = max(base, 20)
		}
		cost = dollars(base)
	}
	return domain.Activity{
		Time:            clock,
		Activity:        "Visit " + orDefault(m.Name, "Qatar Cultural Site"),
		Location:        orDefault(m.Location, "Doha, Qatar"),
		Duration:        hoursText(hours),
		EstimatedCost:   cost,
		Description:     describe(v, "Explore this remarkable attraction"),
		Transportation:  "Private transport recommended",
		BookingRequired: false,
		Tips:            fmt.Sprintf("Rated %s/5 - don't miss this experience", domain.FormatDecimal(m.RatingOr(4.5))),
	}
}

func cafeActivity(v domain.VenueRecord, clock string, budget int, hours float64) domain.Activity {
	m := v.Metadata
	return domain.Activity{
		Time:            clock,
		Activity:        "Coffee break at " + orDefault(m.Name, "Local Café"),
		Location:        orDefault(m.Location, "Doha, Qatar"),
		Duration:        hoursText(hours),
		EstimatedCost:   dollars(cafeCost(budget)),
		Description:     describe(v, "Relaxing coffee break and light refreshments"),
		Transportation:  "Walking distance or short taxi",
		BookingRequired: false,
		Tips:            "Perfect spot to recharge and enjoy local atmosphere",
	}
}

func describe(v domain.VenueRecord, fallback string) string {
	if v.Document == "" {
		return fallback
	}
	return domain.Truncate(v.Document, 150) + "..."
}

var foodWords = []string{MealBreakfast, MealLunch, MealDinner, "coffee"}

func breakdown(activities []domain.Activity, budget int) domain.BudgetBreakdown {
	var food, attractions int
	for _, a := range activities {
		cost := ParseCost(a.EstimatedCost)
		if containsAny(strings.ToLower(a.Activity), foodWords...) {
			food += cost
		} else {
			attractions += cost
		}
	}
	return domain.BudgetBreakdown{
		Food:           dollars(food),
		Attractions:    dollars(attractions),
		Transportation: dollars(max(int(float64(budget)*0.15), 30)),
	}
}

// Emergency returns a fixed two-stop itinerary chosen by budget band.
func (g *Generator) Emergency(req Request) domain.DayPlanEnvelope {
	premium := req.Budget >= PremiumBudget

	var activities []domain.Activity
	if premium {
		activities = []domain.Activity{
			{
				Time:            req.StartTime,
				Activity:        "Breakfast at Al Mourjan Restaurant",
				Location:        "West Bay, Corniche",
				Duration:        "1 hour",
				EstimatedCost:   "$45",
				Description:     "Premium waterfront breakfast with traditional Qatari cuisine",
				Transportation:  "Private car from hotel",
				BookingRequired: true,
				Tips:            "Request table with Corniche view",
			},
			{
				Time:           AddTime(req.StartTime, 2),
				Activity:       "Visit Museum of Islamic Art",
				Location:       "Corniche, Doha",
				Duration:       "2.5 hours",
				EstimatedCost:  "Free",
				Description:    "World-class Islamic art collection in stunning I.M. Pei building",
				Transportation: "10-minute private car ride",
				Tips:           "Don't miss the manuscript collection",
			},
		}
	} else {
		activities = []domain.Activity{
			{
				Time:           req.StartTime,
				Activity:       "Breakfast at Local Café",
				Location:       "Souq Waqif",
				Duration:       "1 hour",
				EstimatedCost:  "$15",
				Description:    "Traditional breakfast in authentic market setting",
				Transportation: "Taxi from hotel",
				Tips:           "Try the local bread and honey",
			},
			{
				Time:           AddTime(req.StartTime, 1.5),
				Activity:       "Explore Souq Waqif",
				Location:       "Old Doha",
				Duration:       "3 hours",
				EstimatedCost:  "$20",
				Description:    "Traditional marketplace with authentic architecture",
				Transportation: "Walking within souq",
				Tips:           "Perfect for shopping and cultural immersion",
			},
		}
	}

	total := 0
	for _, a := range activities {
		total += ParseCost(a.EstimatedCost)
	}
	notes, walking := "Taxi and walking recommended for budget plan", "3 km"
	if premium {
		notes, walking = "Private car recommended for premium experience", "1 km"
	}

	return domain.DayPlanEnvelope{DayPlan: domain.DayPlan{
		Title:                fmt.Sprintf("Your %d-Hour Qatar Experience", req.Duration),
		Date:                 g.today(),
		TotalEstimatedCost:   dollars(total),
		TotalDuration:        fmt.Sprintf("%d hours", req.Duration),
		Activities:           activities,
		TransportationNotes:  notes,
		TotalWalkingDistance: walking,
		WeatherTips:          "Dress comfortably, bring sunscreen and water",
		BudgetBreakdown: domain.BudgetBreakdown{
			Food:           dollars(int(float64(total) * 0.6)),
			Attractions:    dollars(int(float64(total) * 0.3)),
			Transportation: dollars(int(float64(total)*0.1) + 20),
		},
	}}
}

func hoursText(h float64) string { return domain.FormatDecimal(h) + " hours" }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
