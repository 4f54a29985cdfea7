package agent

import (
	"context"
	"strings"
	"time"

	"financeflip-backend/internal/llm"
	"financeflip-backend/internal/models"
)

// Event names emitted on the stream channel.
const (
	EventStep    = "step"
	EventContent = "content"
	EventResult  = "result"
	EventError   = "error"
)

// Event is one unit of agent progress. Data is the JSON-serializable payload
// for the matching SSE event.
type Event struct {
	Name string
	Data any
}

// ContentDelta is the payload of a content event.
type ContentDelta struct {
	Delta string `json:"delta"`
}

// ErrorDetail is the payload of an error event.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

const simulatedChunkSize = 80

// ProcessQueryStream runs the streaming path. The returned channel delivers
// step and content events while the agent works, then exactly one result or
// error event, and is always closed.
func (s *Service) ProcessQueryStream(ctx context.Context, message string, currentChaos map[string]any) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		start := time.Now()
		system := llm.BuildSystemPrompt(s.catalog, s.warehouse.Schema(), currentChaos)

		emit := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		gate := &contentGate{}
		streamedContent := false

		text, err := s.provider.Stream(ctx, system, message, func(delta string) {
			if prose := gate.filter(delta); prose != "" {
				streamedContent = true
				emit(Event{Name: EventContent, Data: ContentDelta{Delta: prose}})
			}
		})
		if err != nil {
			emit(Event{Name: EventError, Data: ErrorDetail{Detail: err.Error()}})
			return
		}

		parsed := s.parseReply(text, currentChaos)
		resp := s.finalize(ctx, parsed, currentChaos, start, func(step models.AgentStep) {
			emit(Event{Name: EventStep, Data: step})
		})

		// If the model never streamed prose, simulate a short content stream
		// from the assistant message so the UI has something to type out.
		if !streamedContent && resp.AssistantMessage != "" {
			msg := resp.AssistantMessage
			for i := 0; i < len(msg); i += simulatedChunkSize {
				end := i + simulatedChunkSize
				if end > len(msg) {
					end = len(msg)
				}
				if !emit(Event{Name: EventContent, Data: ContentDelta{Delta: msg[i:end]}}) {
					return
				}
			}
		}

		emit(Event{Name: EventResult, Data: resp})
	}()

	return events
}

// contentGate passes prose deltas through until the reply's JSON payload
// starts, then swallows everything after it.
type contentGate struct {
	inJSON bool
}

func (g *contentGate) filter(delta string) string {
	if g.inJSON {
		return ""
	}
	idx := len(delta)
	if i := strings.Index(delta, "{"); i != -1 && i < idx {
		idx = i
	}
	if i := strings.Index(delta, "```"); i != -1 && i < idx {
		idx = i
	}
	if idx == len(delta) {
		return delta
	}
	g.inJSON = true
	return delta[:idx]
}
