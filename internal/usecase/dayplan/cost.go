package dayplan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Budget bands in dollars. Band lookups use >=.
const (
	PremiumBudget  = 200
	ModerateBudget = 100
)

// Meal kinds.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

var digitsRe = regexp.MustCompile(`\d+`)

// ParseCost extracts a dollar amount from a price string.
// The first integer wins; otherwise "$$$"/"$$"/"$" map to 100/50/25. Empty and "free" are 0.
func ParseCost(s string) int {
	if s == "" || strings.EqualFold(s, "free") {
		return 0
	}
	if m := digitsRe.FindString(s); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0
		}
		return n
	}
	switch {
	case strings.Contains(s, "$$$"):
		return 100
	case strings.Contains(s, "$$"):
		return 50
	case strings.Contains(s, "$"):
		return 25
	default:
		return 0
	}
}

var mealBands = []struct {
	min   float64
	costs map[string]int
}{
	{PremiumBudget, map[string]int{MealBreakfast: 40, MealLunch: 60, MealDinner: 120}},
	{ModerateBudget, map[string]int{MealBreakfast: 25, MealLunch: 40, MealDinner: 70}},
	{0, map[string]int{MealBreakfast: 15, MealLunch: 25, MealDinner: 45}},
}

// MealBaseCost is the expected price of a meal for a day budget. Unknown meals cost 30.
func MealBaseCost(budget float64, meal string) int {
	for _, band := range mealBands {
		if budget >= band.min {
			if c, ok := band.costs[meal]; ok {
				return c
			}
			return 30
		}
	}
	return 30
}

func cafeCost(budget int) int {
	switch {
	case budget >= PremiumBudget:
		return 20
	case budget >= ModerateBudget:
		return 15
	default:
		return 10
	}
}

// AddTime adds fractional hours to an "HH:MM" clock and wraps at midnight.
// Unparsable input yields "12:00".
func AddTime(clock string, hours float64) string {
	h, m, ok := splitClock(clock)
	if !ok {
		return "12:00"
	}
	total := float64(h*60+m) + hours*60
	hour := floorMod(math.Floor(total/60), 24)
	minute := floorMod(total, 60)
	return fmt.Sprintf("%02d:%02d", int(hour), int(minute))
}

func splitClock(s string) (h, m int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

func floorMod(x, y float64) float64 {
	r := math.Mod(x, y)
	if r < 0 {
		r += y
	}
	return r
}

func dollars(n int) string { return fmt.Sprintf("$%d", n) }
