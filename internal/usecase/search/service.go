// Package search is the quick venue search behind the search bar.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/domain/filter"
	"github.com/kailas-cloud/manara/internal/usecase/recommend"
)

// Results is the number of venues a quick search returns.
const Results = 10

// FieldCategory is the venue metadata tag used for category pre-filtering.
const FieldCategory = "category"

var knownCategories = map[string]bool{
	domain.CategoryRestaurants: true,
	domain.CategoryAttractions: true,
	domain.CategoryCafes:       true,
	domain.CategoryMuseums:     true,
	domain.CategoryShopping:    true,
	domain.CategoryMalls:       true,
}

type retriever interface {
	RetrieveWhere(
		ctx context.Context, query string, profile domain.UserProfile, n int, f filter.Expression,
	) []domain.VenueRecord
}

// Query is a quick search request. Category, Budget and Location are optional.
type Query struct {
	Text     string
	Category string
	Budget   domain.BudgetTier
	Location string
}

// Result is one search hit in recommendation shape plus its similarity.
type Result struct {
	domain.Recommendation
	Features        []string `json:"features"`
	SimilarityScore float64  `json:"similarity_score"`
}

// Response is the quick search output.
type Response struct {
	Results    []Result `json:"results"`
	TotalCount int      `json:"total_count"`
	Query      string   `json:"query"`
}

// Service runs quick searches.
type Service struct {
	retriever retriever
}

// New creates a search service.
func New(r retriever) *Service {
	return &Service{retriever: r}
}

// Search never fails on index problems; it reports them as zero results.
func (s *Service) Search(ctx context.Context, q Query) (Response, error) {
	if strings.TrimSpace(q.Text) == "" {
		return Response{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	f, err := categoryFilter(q.Category)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	venues := s.retriever.RetrieveWhere(ctx, Text(q), Profile(q.Budget), Results, f)

	out := make([]Result, 0, len(venues))
	for _, v := range venues {
		out = append(out, toResult(v))
	}
	return Response{Results: out, TotalCount: len(out), Query: q.Text}, nil
}

// Text appends the category and location hints to the query.
func Text(q Query) string {
	text := q.Text
	if q.Category != "" {
		text += fmt.Sprintf(" in %s category", q.Category)
	}
	if q.Location != "" {
		text += " near " + q.Location
	}
	return text
}

// Profile is the anonymous profile quick searches run under.
func Profile(budget domain.BudgetTier) domain.UserProfile {
	p := domain.DefaultProfile("search_user")
	p.FoodPreferences = []string{"Middle Eastern", "Traditional"}
	p.ActivityTypes = []string{"Cultural", "Food"}
	if budget != "" {
		p.BudgetRange = budget
	}
	return p
}

func categoryFilter(category string) (filter.Expression, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !knownCategories[category] {
		return filter.Expression{}, nil
	}
	cond, err := filter.Tag(FieldCategory, category)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.New([]filter.Condition{cond}, nil)
}

func toResult(v domain.VenueRecord) Result {
	m := v.Metadata
	return Result{
		Recommendation: domain.Recommendation{
			Name:              orDefault(m.Name, "Unknown"),
			Type:              orDefault(m.Category, "attraction"),
			Description:       domain.Truncate(v.Document, 200) + "...",
			Location:          orDefault(m.Location, "Qatar"),
			PriceRange:        m.PriceOrFee(),
			Rating:            m.RatingOr(4.0),
			EstimatedDuration: "1-2 hours",
			WhyRecommended:    fmt.Sprintf("Found in database with %s relevance", recommend.Percent(v.Similarity)),
			BookingAvailable:  m.Category == domain.CategoryRestaurants,
			BestTimeToVisit:   "Anytime",
		},
		Features:        []string{},
		SimilarityScore: v.Similarity,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
