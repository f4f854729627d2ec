// Package models provides shared types for the Outreach HTTP API and external tools.
// These types mirror the API JSON and are stable for use by pkg/client and other consumers.
package models

import "time"

// Prospect is an outreach target: a person at a company with contact channels.
type Prospect struct {
	ProspectID string    `json:"prospect_id"`
	Name       string    `json:"name"`
	Company    string    `json:"company,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	LinkedIn   string    `json:"linkedin,omitempty"`
	Language   string    `json:"language,omitempty"`
	Industry   string    `json:"industry,omitempty"`
	City       string    `json:"city,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Evidence is one observed signal about a prospect (review, press mention,
// funding announcement, ...). Immutable once stored.
type Evidence struct {
	EvidenceID  string    `json:"evidence_id"`
	ProspectID  string    `json:"prospect_id"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet,omitempty"`
	Quote       string    `json:"quote,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Authority   float64   `json:"authority,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Hook is a scored, classified candidate conversation-opener derived from Evidence.
type Hook struct {
	HookID        string    `json:"hook_id"`
	ProspectID    string    `json:"prospect_id"`
	Type          string    `json:"type"`
	Headline      string    `json:"headline"`
	Quote         string    `json:"quote,omitempty"`
	EvidenceIDs   []string  `json:"evidence_ids"`
	FreshnessDays int       `json:"freshness_days"`
	Score         float64   `json:"score"`
	Confidence    float64   `json:"confidence"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Variant is a drafted, evidence-verified message for one (hook, channel) pair.
// An email primary carries short-form alternates for SMS and WhatsApp.
type Variant struct {
	VariantID         string    `json:"variant_id"`
	HookID            string    `json:"hook_id"`
	Channel           string    `json:"channel"`
	Subject           string    `json:"subject,omitempty"`
	Body              string    `json:"body"`
	Language          string    `json:"language"`
	Tone              string    `json:"tone,omitempty"`
	Formality         string    `json:"formality,omitempty"`
	Style             string    `json:"style,omitempty"`
	Model             string    `json:"model,omitempty"`
	EvidenceIDs       []string  `json:"evidence_ids,omitempty"`
	UnsupportedClaims []string  `json:"unsupported_claims,omitempty"`
	Confidence        float64   `json:"confidence"`
	SMSAlternate      string    `json:"sms_alternate,omitempty"`
	WhatsAppAlternate string    `json:"whatsapp_alternate,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// Caps is the rate/compliance policy attached to a schedule.
type Caps struct {
	QuietStartHour int `json:"quiet_start_hour"`
	QuietEndHour   int `json:"quiet_end_hour"`
	MaxPerChannel  int `json:"max_per_channel"`
	DomainGapDays  int `json:"domain_gap_days"`
}

// Schedule is the escalation plan for one (prospect, campaign) pair.
type Schedule struct {
	ScheduleID  string     `json:"schedule_id"`
	ProspectID  string     `json:"prospect_id"`
	CampaignID  string     `json:"campaign_id"`
	Status      string     `json:"status"`
	Consent     bool       `json:"consent"`
	Caps        Caps       `json:"caps"`
	Steps       []Step     `json:"steps,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Step is one planned send attempt within a schedule.
type Step struct {
	StepID         string     `json:"step_id"`
	ScheduleID     string     `json:"schedule_id"`
	StepNumber     int        `json:"step_number"`
	DayOffset      int        `json:"day_offset"`
	Channel        string     `json:"channel"`
	VariantID      string     `json:"variant_id"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts,omitempty"`
	MessageID      string     `json:"message_id,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	OpenedAt       *time.Time `json:"opened_at,omitempty"`
	ClickedAt      *time.Time `json:"clicked_at,omitempty"`
	RepliedAt      *time.Time `json:"replied_at,omitempty"`
	UnsubscribedAt *time.Time        `json:"unsubscribed_at,omitempty"`
	MeetingAt      *time.Time        `json:"meeting_at,omitempty"`
	ResponseMeta   map[string]string `json:"response_meta,omitempty"`
}

// Suppression is a domain or address permanently excluded from outreach.
type Suppression struct {
	Value     string    `json:"value"`
	Kind      string    `json:"kind"` // "domain" or "address"
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CampaignStats is the rollup returned by /campaigns/{id}/stats.
type CampaignStats struct {
	CampaignID string  `json:"campaign_id"`
	Schedules  int     `json:"schedules"`
	Sent       int     `json:"sent"`
	Delivered  int     `json:"delivered"`
	Opened     int     `json:"opened"`
	Clicked    int     `json:"clicked"`
	Replied    int     `json:"replied"`
	Meetings   int     `json:"meetings"`
	OpenRate   float64 `json:"open_rate"`
	ReplyRate  float64 `json:"reply_rate"`
}

// SweepReport summarizes one sweep over active schedules (POST /sweep).
type SweepReport struct {
	Schedules int `json:"schedules"`
	Due       int `json:"due"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	DryRun    int `json:"dry_run"`
}

// Stream event types carried on the /stream SSE feed.
const (
	StreamConnected       = "connected"
	StreamCampaign        = "campaign"
	StreamSend            = "send"
	StreamDeliveryEvent   = "delivery_event"
	StreamHooksMined      = "hooks_mined"
	StreamVariantComposed = "variant_composed"
	StreamSweep           = "sweep"
)

// StreamEvent is one engine event on the /stream SSE feed. Type discriminates
// the payload; fields that do not apply to a given type stay empty and are
// omitted from the JSON.
type StreamEvent struct {
	Type       string `json:"type"`
	CampaignID string `json:"campaign_id,omitempty"`
	ScheduleID string `json:"schedule_id,omitempty"`
	StepID     string `json:"step_id,omitempty"`
	ProspectID string `json:"prospect_id,omitempty"`
	HookID     string `json:"hook_id,omitempty"`
	VariantID  string `json:"variant_id,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Status     string `json:"status,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	Event      string `json:"event,omitempty"`
	Count      int    `json:"count,omitempty"`
	Due        int    `json:"due,omitempty"`
	Sent       int    `json:"sent,omitempty"`
	Failed     int    `json:"failed,omitempty"`
	Skipped    int    `json:"skipped,omitempty"`
}

// Config is the /config API response.
type Config struct {
	Home    string `json:"home,omitempty"`
	Version string `json:"version,omitempty"`
}
