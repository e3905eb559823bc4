package domain

import "errors"

// BookingDetails are the structured fields extracted from a booking request.
type BookingDetails struct {
	Type               string `json:"type"`
	VenueName          string `json:"venue_name"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	PartySize          int    `json:"party_size"`
	EstimatedCost      string `json:"estimated_cost"`
	ConfirmationNeeded bool   `json:"confirmation_needed"`
}

// BookingResult is the booking artifact produced by the core.
type BookingResult struct {
	BookingDetails BookingDetails `json:"booking_details"`
	BookingSummary string         `json:"booking_summary"`
	NextSteps      string         `json:"next_steps"`
	MissingInfo    []string       `json:"missing_info"`
}

// Validate checks the required-field contract shared by the LLM and fallback paths.
func (b BookingResult) Validate() error {
	d := b.BookingDetails
	switch {
	case d.VenueName == "":
		return errors.New("booking_details.venue_name is required")
	case d.Date == "":
		return errors.New("booking_details.date is required")
	case d.Time == "":
		return errors.New("booking_details.time is required")
	case d.PartySize <= 0:
		return errors.New("booking_details.party_size must be positive")
	case b.BookingSummary == "":
		return errors.New("booking_summary is required")
	}
	return nil
}

// Reservation is the confirmed booking record kept for a user.
type Reservation struct {
	BookingID           string `json:"booking_id"`
	UserID              string `json:"user_id"`
	Status              string `json:"status"`
	VenueName           string `json:"venue_name"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	PartySize           int    `json:"party_size"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
	ConfirmationNumber  string `json:"confirmation_number"`
	EstimatedCost       string `json:"estimated_cost"`
	CancellationPolicy  string `json:"cancellation_policy"`
	ContactInfo         string `json:"contact_info"`
	Location            string `json:"location"`
	Notes               string `json:"notes"`
	Insights            string `json:"fanar_insights"`
	CreatedAt           string `json:"created_at"`
}
