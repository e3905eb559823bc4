package domain

import (
	"errors"
	"fmt"
)

// Recommendation is one recommended venue or experience.
type Recommendation struct {
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	Description       string  `json:"description"`
	Location          string  `json:"location"`
	PriceRange        string  `json:"price_range"`
	Rating            float64 `json:"rating"`
	EstimatedDuration string  `json:"estimated_duration"`
	WhyRecommended    string  `json:"why_recommended"`
	BookingAvailable  bool    `json:"booking_available"`
	BestTimeToVisit   string  `json:"best_time_to_visit"`
}

// RecommendationSet is the recommendations artifact.
type RecommendationSet struct {
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
}

// Validate checks the required-field contract shared by the LLM and fallback paths.
func (s RecommendationSet) Validate() error {
	if len(s.Recommendations) == 0 {
		return errors.New("recommendations must not be empty")
	}
	if s.Summary == "" {
		return errors.New("summary is required")
	}
	for i, r := range s.Recommendations {
		if r.Name == "" {
			return fmt.Errorf("recommendations[%d]: name is required", i)
		}
		if r.Rating < 0 || r.Rating > 5 {
			return fmt.Errorf("recommendations[%d]: rating %.2f outside [0,5]", i, r.Rating)
		}
	}
	return nil
}
