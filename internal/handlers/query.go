package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"financeflip-backend/internal/agent"
	"financeflip-backend/internal/models"
	"financeflip-backend/internal/sse"
	"financeflip-backend/internal/websocket"
)

// QueryAgent is the slice of the agent service the HTTP layer needs.
type QueryAgent interface {
	ProcessQuery(ctx context.Context, message string, currentChaos map[string]any) (*models.APIResponse, error)
	ProcessQueryStream(ctx context.Context, message string, currentChaos map[string]any) <-chan agent.Event
	SuggestedPrompts() []string
}

type QueryHandler struct {
	agent QueryAgent
	hub   *websocket.Hub
}

func NewQueryHandler(agentService QueryAgent, hub *websocket.Hub) *QueryHandler {
	return &QueryHandler{agent: agentService, hub: hub}
}

// Query handles the non-streaming endpoint: one request, one full
// APIResponse body.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.agent.ProcessQuery(r.Context(), req.Message, req.CurrentChaos)
	if err != nil {
		log.Printf("Agent query failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResp("AGENT_ERROR", "The analysis agent failed to produce a response", r))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// QueryStream handles the streaming endpoint. After the SSE headers go out,
// failures become error events on the stream rather than status codes.
func (h *QueryHandler) QueryStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Streaming is not supported on this connection", r))
		return
	}

	sessionID := r.Header.Get("X-Session-ID")

	events := h.agent.ProcessQueryStream(r.Context(), req.Message, req.CurrentChaos)
	for event := range events {
		if err := writer.Send(event.Name, event.Data); err != nil {
			// Client went away; drain the channel so the agent goroutine exits.
			for range events {
			}
			return
		}
		if event.Name == agent.EventStep && sessionID != "" {
			h.hub.PublishStep(r.Context(), sessionID, event.Data)
		}
	}

	writer.Send("done", map[string]any{})
}

// SuggestedPrompts returns conversation starters from the prompt catalog.
func (h *QueryHandler) SuggestedPrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"prompts": h.agent.SuggestedPrompts(),
	})
}

func (h *QueryHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (models.QueryRequest, bool) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return req, false
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return req, false
	}
	return req, true
}
