package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/manara/internal/domain"
)

// sourceVenue is one entry of the venue dataset file.
type sourceVenue struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Text     string         `json:"text"`
	Metadata sourceMetadata `json:"metadata"`
}

type sourceMetadata struct {
	Location        string   `json:"location"`
	Rating          *float64 `json:"rating"`
	PriceRange      string   `json:"price_range"`
	EntryFee        string   `json:"entry_fee"`
	CuisineType     string   `json:"cuisine_type"`
	OpeningHours    string   `json:"opening_hours"`
	BestTimeToVisit string   `json:"best_time_to_visit"`
	Features        []string `json:"features"`
}

// Parse reads a JSON array of venues. Entries without an id get a random one.
func Parse(r io.Reader) ([]domain.VenueRecord, error) {
	var src []sourceVenue
	if err := json.NewDecoder(r).Decode(&src); err != nil {
		return nil, fmt.Errorf("decode venues: %w", err)
	}

	out := make([]domain.VenueRecord, 0, len(src))
	seen := make(map[string]bool, len(src))
	for i, v := range src {
		if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Text) == "" {
			return nil, fmt.Errorf("venue #%d: name and text are required: %w", i, domain.ErrInvalidRequest)
		}
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("venue #%d: duplicate id %q: %w", i, v.ID, domain.ErrInvalidRequest)
		}
		seen[v.ID] = true
		out = append(out, v.record())
	}
	return out, nil
}

func (v sourceVenue) record() domain.VenueRecord {
	m := v.Metadata
	md := domain.VenueMetadata{
		Name:       v.Name,
		Category:   strings.ToLower(v.Category),
		Location:   m.Location,
		PriceRange: m.PriceRange,
		EntryFee:   m.EntryFee,
		Extra:      map[string]string{},
	}
	if m.Rating != nil {
		md.Rating, md.HasRating = *m.Rating, true
	}
	extra := map[string]string{
		"cuisine_type":       m.CuisineType,
		"opening_hours":      m.OpeningHours,
		"best_time_to_visit": m.BestTimeToVisit,
		"features":           strings.Join(m.Features, ","),
	}
	for k, val := range extra {
		if val != "" {
			md.Extra[k] = val
		}
	}
	return domain.VenueRecord{ID: v.ID, Document: v.Text, Metadata: md}
}
