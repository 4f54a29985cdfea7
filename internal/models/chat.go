package models

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message states for the in-progress assistant reply.
const (
	MessageStreaming = "streaming"
	MessageDone      = "done"
)

// Message is one chat transcript entry. The transcript is append-only within
// a session; only the in-progress assistant message mutates (its content
// grows while streaming).
type Message struct {
	ID               string         `json:"id"`
	Role             string         `json:"role"`
	Content          string         `json:"content"`
	State            string         `json:"state,omitempty"`
	DashboardSpec    *DashboardSpec `json:"dashboardSpec,omitempty"`
	SuggestedPrompts []string       `json:"suggestedPrompts,omitempty"`
}

// QueryRequest is the payload of POST /api/query and /api/query/stream.
type QueryRequest struct {
	Message      string         `json:"message"`
	CurrentChaos map[string]any `json:"currentChaos,omitempty"`
}
