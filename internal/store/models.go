// Package store defines the persistence interface and shared models for
// prospects, evidence, hooks, message variants, schedules, and compliance state.
package store

import "time"

// Prospect is an outreach target with its contact channels and preferences.
type Prospect struct {
	ProspectID string
	Name       string
	Company    string
	Domain     string // company web domain, used for the global send cooldown
	Email      string
	Phone      string
	LinkedIn   string
	Language   string // preferred language, lowercased ("en", "no", ...)
	Industry   string
	City       string
	CreatedAt  time.Time
}

// Evidence is one observed signal about a prospect. Immutable once stored.
type Evidence struct {
	EvidenceID  string
	ProspectID  string
	Source      string
	URL         string
	Title       string
	Snippet     string
	Quote       string
	PublishedAt time.Time
	Authority   float64 // source authority in [0,1]; 0 means unknown
	CreatedAt   time.Time
}

// Hook is a scored candidate conversation-opener. Immutable once scored;
// re-mining creates new rows.
type Hook struct {
	HookID        string
	ProspectID    string
	Type          string
	Headline      string
	Quote         string
	EvidenceIDs   string // comma-separated evidence ids
	FreshnessDays int
	Score         float64
	Confidence    float64
	Status        string // approved, review, rejected
	CreatedAt     time.Time
}

// Variant is one drafted message for a (hook, channel) pair, with generation
// metadata and the verifier's leftover unsupported-claims audit trail.
type Variant struct {
	VariantID         string
	HookID            string
	Channel           string
	Subject           string // email only
	Body              string
	Language          string
	Tone              string
	Formality         string
	Style             string
	Model             string // drafting backend identity, or "template"
	EvidenceIDs       string // comma-separated evidence ids actually used
	UnsupportedClaims string // newline-separated claims stripped during repair
	Confidence        float64
	SMSAlternate      string
	WhatsAppAlternate string
	CreatedAt         time.Time
}

// Schedule is the escalation unit for one (prospect, campaign) pair.
type Schedule struct {
	ScheduleID     string
	ProspectID     string
	CampaignID     string
	Status         string // pending, active, paused, completed
	Consent        bool
	QuietStartHour int
	QuietEndHour   int
	MaxPerChannel  int
	DomainGapDays  int
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// Step is one planned send attempt. Response timestamps are append-only.
type Step struct {
	StepID         string
	ScheduleID     string
	StepNumber     int
	DayOffset      int
	Channel        string
	VariantID      string
	Status         string // pending, sending, sent, failed, skipped
	Attempts       int
	MessageID      string
	SentAt         *time.Time
	DeliveredAt    *time.Time
	OpenedAt       *time.Time
	ClickedAt      *time.Time
	RepliedAt      *time.Time
	UnsubscribedAt *time.Time
	MeetingAt      *time.Time
	ResponseMeta   string // JSON object from the latest provider event, "" if none
}

// Suppression is one excluded domain or address.
type Suppression struct {
	Value     string
	Kind      string // "domain" or "address"
	Reason    string
	CreatedAt time.Time
}

// Consent is an explicit opt-in record for a (prospect, channel) pair.
type Consent struct {
	ProspectID string
	Channel    string
	Granted    bool
	Source     string // where the opt-in came from (form, import, reply)
	CreatedAt  time.Time
}

// Rollup is the aggregate delivery outcome for a campaign.
type Rollup struct {
	Schedules    int
	Sent         int
	Delivered    int
	Opened       int
	Clicked      int
	Replied      int
	Unsubscribed int
	Meetings     int
}
