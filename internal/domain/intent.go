package domain

// Intent is the classified purpose of a user message.
type Intent string

// Known intents.
const (
	IntentRecommendation Intent = "recommendation"
	IntentPlanning       Intent = "planning"
	IntentBooking        Intent = "booking"
	IntentChat           Intent = "chat"
)

// ParseIntent accepts only the four known tokens.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentRecommendation, IntentPlanning, IntentBooking, IntentChat:
		return Intent(s), true
	default:
		return "", false
	}
}
