package models

// ChaosState carries the ambient visual directives that persist across
// queries until the backend overrides them or the session is cleared.
type ChaosState struct {
	Rotation   float64 `json:"rotation"`
	FontFamily string  `json:"fontFamily"`
	Animation  *string `json:"animation"`
	Theme      string  `json:"theme"`
}

// DefaultChaos is the state every session starts from.
func DefaultChaos() ChaosState {
	return ChaosState{
		Rotation:   0,
		FontFamily: "Inter",
		Animation:  nil,
		Theme:      "professional",
	}
}

// Block is one renderable dashboard unit: a type discriminator plus a
// type-specific props payload.
type Block struct {
	Type  string         `json:"type"`
	Props map[string]any `json:"props"`
}

// DashboardSpec is the full dashboard returned by the agent. Chaos is kept
// as a raw object so that key presence survives the round trip; the session
// merge only overwrites keys the backend actually sent.
type DashboardSpec struct {
	Blocks []Block        `json:"blocks"`
	Chaos  map[string]any `json:"chaos,omitempty"`
}

// QueryMetadata reports how the agent serviced a request.
type QueryMetadata struct {
	ExecutionTimeMs     int64 `json:"executionTimeMs"`
	SQLQueriesRequested int   `json:"sqlQueriesRequested"`
	SQLQueriesExecuted  int   `json:"sqlQueriesExecuted"`
}

// APIResponse is the body of POST /api/query and the payload of the
// streaming "result" event. A response without a dashboardSpec is a valid
// text-only answer.
type APIResponse struct {
	DashboardSpec    *DashboardSpec `json:"dashboardSpec,omitempty"`
	AssistantMessage string         `json:"assistantMessage"`
	Intent           string         `json:"intent,omitempty"`
	QueryMetadata    *QueryMetadata `json:"queryMetadata,omitempty"`
	SuggestedPrompts []string       `json:"suggestedPrompts,omitempty"`
}

// AgentStep is an ephemeral progress notification emitted while the agent
// works. Discarded once the terminal result or error arrives.
type AgentStep struct {
	Step    int    `json:"step"`
	Type    string `json:"type"` // "tool_call" or "tool_result"
	Tool    string `json:"tool"`
	Input   string `json:"input,omitempty"`
	Preview string `json:"preview,omitempty"`
}
