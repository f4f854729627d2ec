// Package channel holds the per-channel delivery transports. The scheduler
// picks a transport through a static registry keyed by channel name; transport
// failure is a distinct outcome from a policy-gate skip.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cobaltline/outreach/internal/config"
)

// Message is one outbound send.
type Message struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject,omitempty"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is a successful dispatch. MessageID keys inbound delivery webhooks
// back to the step that sent the message.
type Result struct {
	MessageID string
}

// Transport delivers messages on one channel. A non-nil error is a transport
// failure and is retryable by the sweep's attempt budget.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) (Result, error)
}

// Registry maps channel name to transport, built once at startup.
type Registry map[string]Transport

// NewRegistry builds HTTP transports for every configured provider.
func NewRegistry(providers map[string]config.ProviderConfig) Registry {
	r := make(Registry, len(providers))
	for channel, pc := range providers {
		if pc.URL == "" {
			continue
		}
		r[channel] = &HTTPTransport{
			Channel: channel,
			URL:     pc.URL,
			APIKey:  pc.APIKey,
			From:    pc.From,
			Client:  &http.Client{Timeout: 15 * time.Second},
		}
	}
	return r
}

// HTTPTransport posts sends to a provider webhook-style JSON endpoint.
type HTTPTransport struct {
	Channel string
	URL     string
	APIKey  string
	From    string
	Client  *http.Client
}

func (t *HTTPTransport) Name() string { return t.Channel }

func (t *HTTPTransport) Send(ctx context.Context, msg Message) (Result, error) {
	payload := map[string]any{
		"channel": t.Channel,
		"from":    t.From,
		"to":      msg.To,
		"body":    msg.Body,
	}
	if msg.Subject != "" {
		payload["subject"] = msg.Subject
	}
	if len(msg.Metadata) > 0 {
		payload["metadata"] = msg.Metadata
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s transport: %w", t.Channel, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%s transport: provider returned %d", t.Channel, resp.StatusCode)
	}

	var out struct {
		MessageID string `json:"message_id"`
		ID        string `json:"id"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	id := out.MessageID
	if id == "" {
		id = out.ID
	}
	if id == "" {
		// Provider returned no identifier; mint one so webhook correlation
		// still has a stable key on our side.
		id = strings.ToLower(uuid.NewString())
	}
	return Result{MessageID: id}, nil
}

// Capture records sends in memory. Used by tests and the dry-run sweep path
// in environments with no providers configured.
type Capture struct {
	Channel string
	Sent    []Message
	Fail    bool // when set, every Send reports a transport failure
}

func (c *Capture) Name() string { return c.Channel }

func (c *Capture) Send(_ context.Context, msg Message) (Result, error) {
	if c.Fail {
		return Result{}, fmt.Errorf("%s transport: simulated failure", c.Channel)
	}
	c.Sent = append(c.Sent, msg)
	return Result{MessageID: fmt.Sprintf("%s-msg-%d", c.Channel, len(c.Sent))}, nil
}
