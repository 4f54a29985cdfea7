// Package client is the consuming side of the dashboard protocol: it drives
// the streaming endpoint, validates the terminal payload, and falls back to
// the non-streaming endpoint when the stream cannot deliver a result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"financeflip-backend/internal/agent"
	"financeflip-backend/internal/genui"
	"financeflip-backend/internal/models"
	"financeflip-backend/internal/session"
	"financeflip-backend/internal/sse"
)

// Events carries the optional per-event callbacks a caller can observe
// while a request streams. Step progress is ephemeral and never touches the
// transcript.
type Events struct {
	OnStep    func(models.AgentStep)
	OnContent func(delta string)
	OnError   func(detail string)
}

// StreamOutcome is the explicit result of one streaming attempt. Exactly one
// of these holds: Response set (delivered and valid), Errors set (delivered
// but failed validation), or Reason set (stream never produced a result).
type StreamOutcome struct {
	Response *models.APIResponse
	Errors   []string
	Reason   error
}

// Delivered reports whether a terminal result event arrived at all.
func (o StreamOutcome) Delivered() bool {
	return o.Response != nil || len(o.Errors) > 0
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Send runs one full user submission against a session: append the user
// message, stream the reply into an in-progress assistant message, and
// finalize it from the result. If the stream fails, falls back to the
// non-streaming endpoint exactly once. Cancellation via ctx aborts the
// request without fallback and without appending anything further.
func (c *Client) Send(ctx context.Context, ctrl *session.Controller, text string, ev Events) error {
	ctrl.AppendUserMessage(ctx, text)
	msgID := ctrl.BeginAssistantMessage(ctx)

	req := models.QueryRequest{
		Message:      text,
		CurrentChaos: ctrl.ChaosMap(),
	}

	streamEv := ev
	streamEv.OnContent = func(delta string) {
		ctrl.AppendContent(msgID, delta)
		if ev.OnContent != nil {
			ev.OnContent(delta)
		}
	}

	outcome := c.attemptStream(ctx, req, streamEv)

	if !outcome.Delivered() {
		if errors.Is(outcome.Reason, context.Canceled) {
			return outcome.Reason
		}
		fallback, err := c.Query(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			ctrl.FailAssistantMessage(ctx, msgID, []string{"The backend is unreachable. Please try again."})
			return fmt.Errorf("stream failed (%v) and fallback failed: %w", outcome.Reason, err)
		}
		ctrl.ApplyResponse(ctx, msgID, fallback)
		return nil
	}

	if outcome.Response == nil {
		ctrl.FailAssistantMessage(ctx, msgID, outcome.Errors)
		return nil
	}

	ctrl.ApplyResponse(ctx, msgID, outcome.Response)
	return nil
}

// attemptStream POSTs to the streaming endpoint and consumes events until a
// result arrives or the stream ends.
func (c *Client) attemptStream(ctx context.Context, req models.QueryRequest, ev Events) StreamOutcome {
	body, err := json.Marshal(req)
	if err != nil {
		return StreamOutcome{Reason: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query/stream", bytes.NewReader(body))
	if err != nil {
		return StreamOutcome{Reason: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return StreamOutcome{Reason: context.Canceled}
		}
		return StreamOutcome{Reason: fmt.Errorf("stream request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StreamOutcome{Reason: fmt.Errorf("stream returned status %d", resp.StatusCode)}
	}

	decoder := sse.NewDecoder(resp.Body)
	for {
		event, err := decoder.Next()
		if err == io.EOF {
			return StreamOutcome{Reason: fmt.Errorf("stream ended without a result event")}
		}
		if err != nil {
			if ctx.Err() != nil {
				return StreamOutcome{Reason: context.Canceled}
			}
			return StreamOutcome{Reason: fmt.Errorf("stream read failed: %w", err)}
		}

		switch event.Name {
		case agent.EventStep:
			var step models.AgentStep
			if json.Unmarshal(event.Data, &step) == nil && ev.OnStep != nil {
				ev.OnStep(step)
			}
		case agent.EventContent:
			var delta agent.ContentDelta
			if json.Unmarshal(event.Data, &delta) == nil && delta.Delta != "" && ev.OnContent != nil {
				ev.OnContent(delta.Delta)
			}
		case agent.EventError:
			var detail agent.ErrorDetail
			if json.Unmarshal(event.Data, &detail) == nil && ev.OnError != nil {
				ev.OnError(detail.Detail)
			}
		case agent.EventResult:
			var payload any
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				continue
			}
			response, errs := genui.ValidateAPIResponse(payload)
			if response == nil {
				return StreamOutcome{Errors: errs}
			}
			return StreamOutcome{Response: response}
		}
	}
}

// Query hits the non-streaming endpoint and validates the response body.
func (c *Client) Query(ctx context.Context, req models.QueryRequest) (*models.APIResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("fallback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fallback returned status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode fallback response: %w", err)
	}

	response, errs := genui.ValidateAPIResponse(payload)
	if response == nil {
		return nil, fmt.Errorf("fallback response invalid: %v", errs)
	}
	return response, nil
}
