package domain

// ResponseType tags the orchestrator result.
type ResponseType string

// Response types.
const (
	ResponseRecommendations ResponseType = "recommendations"
	ResponseDayPlan         ResponseType = "day_plan"
	ResponseBooking         ResponseType = "booking"
	ResponseChat            ResponseType = "chat"
	ResponseError           ResponseType = "error"
)

// Response is the tagged result of process_user_request.
type Response struct {
	Type ResponseType `json:"type"`
	Data any          `json:"data"`
}

// ChatReply is the data of a chat response.
type ChatReply struct {
	Message     string `json:"message"`
	ContextUsed bool   `json:"context_used"`
}

// ErrorReply is the data of an error response.
type ErrorReply struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
