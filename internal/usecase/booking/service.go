package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/logger"
)

// Reservation defaults.
const (
	DefaultEstimatedCost = "$75"
	StatusConfirmed      = "confirmed"
	CancellationPolicy   = "Free cancellation up to 2 hours before reservation"
)

// Repository persists reservation records.
type Repository interface {
	Save(ctx context.Context, res domain.Reservation) error
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
}

// ReserveRequest is a structured booking request.
type ReserveRequest struct {
	UserID              string
	VenueName           string
	Date                string
	Time                string
	PartySize           int
	SpecialRequirements string
}

func (r ReserveRequest) validate() error {
	switch {
	case r.UserID == "":
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	case r.VenueName == "":
		return fmt.Errorf("%w: venue_name is required", domain.ErrInvalidRequest)
	case r.Date == "":
		return fmt.Errorf("%w: date is required", domain.ErrInvalidRequest)
	case r.Time == "":
		return fmt.Errorf("%w: time is required", domain.ErrInvalidRequest)
	case r.PartySize <= 0:
		return fmt.Errorf("%w: party_size must be positive", domain.ErrInvalidRequest)
	}
	return nil
}

// Query renders the request as the free-text booking sentence fed to the synthesizer.
func (r ReserveRequest) Query() string {
	q := fmt.Sprintf("Book a table at %s for %d people on %s at %s", r.VenueName, r.PartySize, r.Date, r.Time)
	if r.SpecialRequirements != "" {
		q += " with special requirements: " + r.SpecialRequirements
	}
	return q
}

type generator interface {
	Generate(ctx context.Context, text string, profile domain.UserProfile) (domain.BookingResult, domain.FallbackReason)
}

// Service records reservations.
type Service struct {
	synth  generator
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a booking service. A nil clock uses time.Now.
func NewService(synth generator, repo Repository, now func() time.Time, l *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{synth: synth, repo: repo, now: now, logger: l}
}

// Reserve runs booking extraction for the request and stores a confirmed reservation.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (domain.Reservation, error) {
	if err := req.validate(); err != nil {
		return domain.Reservation{}, err
	}

	profile := domain.DefaultProfile(req.UserID)
	profile.GroupSize = req.PartySize
	result, reason := s.synth.Generate(ctx, req.Query(), profile)

	now := s.now()
	id := NewBookingID(now)
	insights := result.BookingSummary
	if insights == "" {
		insights = "Booking processed successfully"
	}
	res := domain.Reservation{
		BookingID:           id,
		UserID:              req.UserID,
		Status:              StatusConfirmed,
		VenueName:           req.VenueName,
		Date:                req.Date,
		Time:                req.Time,
		PartySize:           req.PartySize,
		SpecialRequirements: req.SpecialRequirements,
		ConfirmationNumber:  "CONF-" + id,
		EstimatedCost:       orDefault(result.BookingDetails.EstimatedCost, DefaultEstimatedCost),
		CancellationPolicy:  CancellationPolicy,
		ContactInfo:         fmt.Sprintf("+974 4444 %04d", now.Nanosecond()/int(time.Millisecond)),
		Location:            "Qatar - " + req.VenueName,
		Notes:               "Booking processed by the Manara assistant",
		Insights:            insights,
		CreatedAt:           now.Format(time.RFC3339),
	}

	if err := s.repo.Save(ctx, res); err != nil {
		return domain.Reservation{}, fmt.Errorf("reserve %s: %w", req.VenueName, err)
	}
	logger.FromContextOr(ctx, s.logger).Info("Booking confirmed",
		zap.String("booking_id", id), zap.String("user_id", req.UserID),
		zap.String("fallback_reason", reason.String()))
	return res, nil
}

// ListByUser returns a user's reservations in creation order.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// NewBookingID is "MNR" + local timestamp + a short random suffix.
func NewBookingID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "MNR" + now.Format("20060102150405") + suffix
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
