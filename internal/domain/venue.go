package domain

import (
	"strconv"
	"strings"
)

// Venue categories as stored in the index.
const (
	CategoryRestaurants = "restaurants"
	CategoryAttractions = "attractions"
	CategoryCafes       = "cafes"
	CategoryMuseums     = "museums"
	CategoryShopping    = "shopping"
	CategoryMalls       = "malls"
)

// VenueMetadata is the structured part of an indexed venue.
// PriceRange and EntryFee are both optional; read them through PriceOrFee / FeeOrPrice.
type VenueMetadata struct {
	Name       string
	Category   string
	Location   string
	Rating     float64
	HasRating  bool
	PriceRange string
	EntryFee   string
	Extra      map[string]string
}

// PriceOrFee returns price_range when set, otherwise entry_fee.
func (m VenueMetadata) PriceOrFee() string {
	if m.PriceRange != "" {
		return m.PriceRange
	}
	return m.EntryFee
}

// FeeOrPrice returns entry_fee when set, otherwise price_range. Attractions price by fee first.
func (m VenueMetadata) FeeOrPrice() string {
	if m.EntryFee != "" {
		return m.EntryFee
	}
	return m.PriceRange
}

// Tier interprets price_range as a budget tier. Venues priced by entry fee have no tier.
func (m VenueMetadata) Tier() BudgetTier {
	return BudgetTier(m.PriceRange)
}

// RatingOr returns the rating, or def when the venue has none.
func (m VenueMetadata) RatingOr(def float64) float64 {
	if !m.HasRating {
		return def
	}
	return m.Rating
}

// RatingText renders the rating with at least one decimal, or "N/A" when missing.
func (m VenueMetadata) RatingText() string {
	if !m.HasRating {
		return "N/A"
	}
	return FormatDecimal(m.Rating)
}

// FormatDecimal renders f in shortest form but always with a fractional part: 4 -> "4.0", 2.5 -> "2.5".
func FormatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// NameContains reports whether the lowercased name contains sub.
func (m VenueMetadata) NameContains(sub string) bool {
	return strings.Contains(strings.ToLower(m.Name), sub)
}

// VenueRecord is a venue returned by retrieval, scoped to one call.
type VenueRecord struct {
	ID         string
	Document   string
	Metadata   VenueMetadata
	Similarity float64
}

// VenueHit is a raw index hit before post-filtering.
type VenueHit struct {
	ID       string
	Document string
	Metadata VenueMetadata
	Distance float64
}

// SimilarityFromDistance maps a cosine distance in [0,2] to a similarity in [0,1].
func SimilarityFromDistance(distance float64) float64 {
	s := 1 - distance/2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
