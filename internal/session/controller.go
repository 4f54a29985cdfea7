package session

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"financeflip-backend/internal/genui"
	"financeflip-backend/internal/models"
)

// Controller owns one chat session's state. Construct one per session and
// discard it on session end; there are no package-level singletons. All
// mutations go through the controller so the transcript stays append-only
// and chaos merges stay consistent.
type Controller struct {
	mu    sync.Mutex
	id    string
	store Store
	state *State
}

// NewController loads the session's prior state from the store, or starts a
// fresh one.
func NewController(ctx context.Context, id string, store Store) (*Controller, error) {
	state, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = NewState()
	}
	return &Controller{id: id, store: store, state: state}, nil
}

func (c *Controller) ID() string { return c.id }

// Chaos returns the session's current chaos state.
func (c *Controller) Chaos() models.ChaosState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Chaos
}

// ChaosMap renders the current chaos state as a wire object for requests.
func (c *Controller) ChaosMap() map[string]any {
	return genui.ChaosToMap(c.Chaos())
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.state.Messages...)
}

// AppendUserMessage records a user submission.
func (c *Controller) AppendUserMessage(ctx context.Context, content string) models.Message {
	msg := models.Message{
		ID:      uuid.NewString(),
		Role:    models.RoleUser,
		Content: content,
	}
	c.mu.Lock()
	c.state.Messages = append(c.state.Messages, msg)
	c.mu.Unlock()
	c.persist(ctx)
	return msg
}

// BeginAssistantMessage appends an empty in-progress assistant reply and
// returns its id.
func (c *Controller) BeginAssistantMessage(ctx context.Context) string {
	msg := models.Message{
		ID:    uuid.NewString(),
		Role:  models.RoleAssistant,
		State: models.MessageStreaming,
	}
	c.mu.Lock()
	c.state.Messages = append(c.state.Messages, msg)
	c.mu.Unlock()
	return msg.ID
}

// AppendContent grows the in-progress assistant message with a streamed
// delta.
func (c *Controller) AppendContent(id, delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.Messages {
		if c.state.Messages[i].ID == id {
			c.state.Messages[i].Content += delta
			return
		}
	}
}

// ApplyResponse finalizes the in-progress assistant message with a validated
// response. Chaos is merged only when the spec actually carries a chaos
// object; an absent chaos leaves the session state untouched.
func (c *Controller) ApplyResponse(ctx context.Context, id string, resp *models.APIResponse) {
	c.mu.Lock()
	for i := range c.state.Messages {
		if c.state.Messages[i].ID != id {
			continue
		}
		msg := &c.state.Messages[i]
		if strings.TrimSpace(resp.AssistantMessage) != "" {
			msg.Content = resp.AssistantMessage
		}
		msg.State = models.MessageDone
		msg.DashboardSpec = resp.DashboardSpec
		msg.SuggestedPrompts = resp.SuggestedPrompts
		break
	}
	if resp.DashboardSpec != nil && resp.DashboardSpec.Chaos != nil {
		c.state.Chaos = genui.MergeChaos(c.state.Chaos, resp.DashboardSpec.Chaos)
	}
	c.mu.Unlock()
	c.persist(ctx)
}

// FailAssistantMessage replaces the in-progress message content with a
// readable error listing.
func (c *Controller) FailAssistantMessage(ctx context.Context, id string, errs []string) {
	content := "The response could not be rendered:\n- " + strings.Join(errs, "\n- ")
	c.mu.Lock()
	for i := range c.state.Messages {
		if c.state.Messages[i].ID == id {
			c.state.Messages[i].Content = content
			c.state.Messages[i].State = models.MessageDone
			break
		}
	}
	c.mu.Unlock()
	c.persist(ctx)
}

// Reset clears the transcript and restores default chaos.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	c.state = NewState()
	c.mu.Unlock()
	if err := c.store.Delete(ctx, c.id); err != nil {
		log.Printf("Failed to delete session %s: %v", c.id, err)
	}
}

func (c *Controller) persist(ctx context.Context) {
	c.mu.Lock()
	snapshot := *c.state
	snapshot.Messages = append([]models.Message(nil), c.state.Messages...)
	c.mu.Unlock()
	if err := c.store.Save(ctx, c.id, &snapshot); err != nil {
		log.Printf("Failed to persist session %s: %v", c.id, err)
	}
}
