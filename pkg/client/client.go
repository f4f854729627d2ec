// Package client provides a Go SDK for the Outreach HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cobaltline/outreach/pkg/models"
)

// Client calls the Outreach HTTP API. It is safe for concurrent use.
type Client struct {
	BaseURL    string       // e.g. "http://localhost:3861"
	APIKey     string       // optional; set for X-API-Key
	HTTPClient *http.Client // optional; nil uses http.DefaultClient
}

// New returns a client for the given base URL (e.g. "http://localhost:3861").
// APIKey is optional; when set, requests carry the X-API-Key header.
func New(baseURL, apiKey string) *Client {
	return &Client{BaseURL: baseURL, APIKey: apiKey}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(b)
	}
	u := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	return c.client().Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error != "" {
			return fmt.Errorf("api %s %s: %s", method, path, errBody.Error)
		}
		return fmt.Errorf("api %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Health returns the /health response (ok: true).
func (c *Client) Health(ctx context.Context) (ok bool, err error) {
	var out struct {
		OK bool `json:"ok"`
	}
	err = c.doJSON(ctx, http.MethodGet, "/health", nil, &out)
	return out.OK, err
}

// Config returns the /config response.
func (c *Client) Config(ctx context.Context) (*models.Config, error) {
	var out models.Config
	err := c.doJSON(ctx, http.MethodGet, "/config", nil, &out)
	return &out, err
}

// ListProspects returns prospects (limit 0 = default).
func (c *Client) ListProspects(ctx context.Context, limit int) ([]models.Prospect, error) {
	path := "/prospects"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []models.Prospect
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreateProspect creates a prospect and returns it with its assigned ID.
func (c *Client) CreateProspect(ctx context.Context, p models.Prospect) (*models.Prospect, error) {
	var out models.Prospect
	err := c.doJSON(ctx, http.MethodPost, "/prospects", p, &out)
	return &out, err
}

// GetProspect returns a prospect by ID.
func (c *Client) GetProspect(ctx context.Context, prospectID string) (*models.Prospect, error) {
	var out models.Prospect
	err := c.doJSON(ctx, http.MethodGet, "/prospects/"+url.PathEscape(prospectID), nil, &out)
	return &out, err
}

// AddEvidence records one signal for a prospect and returns the evidence_id.
func (c *Client) AddEvidence(ctx context.Context, prospectID string, ev models.Evidence) (string, error) {
	var out struct {
		EvidenceID string `json:"evidence_id"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/prospects/"+url.PathEscape(prospectID)+"/evidence", ev, &out)
	return out.EvidenceID, err
}

// ListEvidence returns stored evidence for a prospect.
func (c *Client) ListEvidence(ctx context.Context, prospectID string) ([]models.Evidence, error) {
	var out []models.Evidence
	err := c.doJSON(ctx, http.MethodGet, "/prospects/"+url.PathEscape(prospectID)+"/evidence", nil, &out)
	return out, err
}

// MineHooks mines and ranks hooks from the prospect's fresh evidence.
// maxDaysOld and limit are optional (0 = server default).
func (c *Client) MineHooks(ctx context.Context, prospectID string, maxDaysOld, limit int) ([]models.Hook, error) {
	body := map[string]int{}
	if maxDaysOld > 0 {
		body["max_days_old"] = maxDaysOld
	}
	if limit > 0 {
		body["limit"] = limit
	}
	var out []models.Hook
	err := c.doJSON(ctx, http.MethodPost, "/prospects/"+url.PathEscape(prospectID)+"/hooks/mine", body, &out)
	return out, err
}

// ListHooks returns mined hooks for a prospect.
func (c *Client) ListHooks(ctx context.Context, prospectID string) ([]models.Hook, error) {
	var out []models.Hook
	err := c.doJSON(ctx, http.MethodGet, "/prospects/"+url.PathEscape(prospectID)+"/hooks", nil, &out)
	return out, err
}

// GetHook returns a hook by ID.
func (c *Client) GetHook(ctx context.Context, hookID string) (*models.Hook, error) {
	var out models.Hook
	err := c.doJSON(ctx, http.MethodGet, "/hooks/"+url.PathEscape(hookID), nil, &out)
	return &out, err
}

// ComposeRequest describes one variant to compose for a hook.
type ComposeRequest struct {
	Channel        string `json:"channel"`
	Tone           string `json:"tone,omitempty"`
	Formality      string `json:"formality,omitempty"`
	Style          string `json:"style,omitempty"`
	Language       string `json:"language,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`
	CompanyContext string `json:"company_context,omitempty"`
}

// ComposeVariant drafts and verifies a message variant for a hook.
func (c *Client) ComposeVariant(ctx context.Context, hookID string, req ComposeRequest) (*models.Variant, error) {
	var out models.Variant
	err := c.doJSON(ctx, http.MethodPost, "/hooks/"+url.PathEscape(hookID)+"/variants", req, &out)
	return &out, err
}

// ListVariants returns composed variants for a hook.
func (c *Client) ListVariants(ctx context.Context, hookID string) ([]models.Variant, error) {
	var out []models.Variant
	err := c.doJSON(ctx, http.MethodGet, "/hooks/"+url.PathEscape(hookID)+"/variants", nil, &out)
	return out, err
}

// CreateSchedule builds the escalation plan for a prospect from composed variants.
func (c *Client) CreateSchedule(ctx context.Context, prospectID, campaignID string, variantIDs []string) (*models.Schedule, error) {
	var out models.Schedule
	err := c.doJSON(ctx, http.MethodPost, "/schedules", map[string]any{
		"prospect_id": prospectID,
		"campaign_id": campaignID,
		"variant_ids": variantIDs,
	}, &out)
	return &out, err
}

// GetSchedule returns a schedule with its steps.
func (c *Client) GetSchedule(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	var out models.Schedule
	err := c.doJSON(ctx, http.MethodGet, "/schedules/"+url.PathEscape(scheduleID), nil, &out)
	return &out, err
}

// StartCampaign activates pending schedules and returns the count affected.
func (c *Client) StartCampaign(ctx context.Context, campaignID string) (int, error) {
	return c.campaignTransition(ctx, campaignID, "start")
}

// PauseCampaign pauses active schedules and returns the count affected.
func (c *Client) PauseCampaign(ctx context.Context, campaignID string) (int, error) {
	return c.campaignTransition(ctx, campaignID, "pause")
}

func (c *Client) campaignTransition(ctx context.Context, campaignID, action string) (int, error) {
	var out struct {
		Schedules int `json:"schedules"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/campaigns/"+url.PathEscape(campaignID)+"/"+action, nil, &out)
	return out.Schedules, err
}

// CampaignStats returns delivery outcomes for a campaign.
func (c *Client) CampaignStats(ctx context.Context, campaignID string) (*models.CampaignStats, error) {
	var out models.CampaignStats
	err := c.doJSON(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(campaignID)+"/stats", nil, &out)
	return &out, err
}

// Sweep runs one send sweep. With dryRun set, gates are evaluated but nothing
// is dispatched or mutated.
func (c *Client) Sweep(ctx context.Context, dryRun bool) (*models.SweepReport, error) {
	path := "/sweep"
	if dryRun {
		path += "?dry_run=true"
	}
	var out models.SweepReport
	err := c.doJSON(ctx, http.MethodPost, path, nil, &out)
	return &out, err
}

// ReportEvent posts a provider delivery event for a sent message. Optional
// provider metadata is retained on the step for auditing.
func (c *Client) ReportEvent(ctx context.Context, messageID, event string, meta map[string]string) error {
	body := map[string]any{"message_id": messageID, "event": event}
	if len(meta) > 0 {
		body["metadata"] = meta
	}
	return c.doJSON(ctx, http.MethodPost, "/webhooks/events", body, nil)
}

// SetConsent records or revokes an explicit opt-in for a channel.
func (c *Client) SetConsent(ctx context.Context, prospectID, channel string, granted bool, source string) error {
	return c.doJSON(ctx, http.MethodPost, "/prospects/"+url.PathEscape(prospectID)+"/consent", map[string]any{
		"channel": channel, "granted": granted, "source": source,
	}, nil)
}

// ListSuppressions returns the suppression set.
func (c *Client) ListSuppressions(ctx context.Context) ([]models.Suppression, error) {
	var out []models.Suppression
	err := c.doJSON(ctx, http.MethodGet, "/suppressions", nil, &out)
	return out, err
}

// AddSuppression permanently excludes a domain or address from outreach.
func (c *Client) AddSuppression(ctx context.Context, value, kind, reason string) error {
	return c.doJSON(ctx, http.MethodPost, "/suppressions", models.Suppression{
		Value: value, Kind: kind, Reason: reason,
	}, nil)
}
