package store

import (
	"context"
	"time"
)

// EvidenceFilter narrows ListEvidence (all fields optional).
type EvidenceFilter struct {
	Sources []string
	Since   *time.Time
	Limit   int
}

// Store is the persistence interface for the outreach engine.
// Implementations: the embedded SQLite store (Open) and *postgres.Store.
type Store interface {
	// Prospects
	CreateProspect(ctx context.Context, p Prospect) (string, error)
	GetProspect(ctx context.Context, prospectID string) (*Prospect, error)
	ListProspects(ctx context.Context, limit int) ([]Prospect, error)

	// Evidence
	CreateEvidence(ctx context.Context, ev Evidence) (string, error)
	ListEvidence(ctx context.Context, prospectID string, f EvidenceFilter) ([]Evidence, error)
	GetEvidenceByIDs(ctx context.Context, ids []string) ([]Evidence, error)

	// Hooks
	CreateHook(ctx context.Context, h Hook) (string, error)
	GetHook(ctx context.Context, hookID string) (*Hook, error)
	ListHooks(ctx context.Context, prospectID string, limit int) ([]Hook, error)

	// Variants
	CreateVariant(ctx context.Context, v Variant) (string, error)
	GetVariant(ctx context.Context, variantID string) (*Variant, error)
	ListVariantsForHook(ctx context.Context, hookID string) ([]Variant, error)

	// Schedules and steps
	CreateSchedule(ctx context.Context, sc Schedule, steps []Step) (string, error)
	GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error)
	ListSchedules(ctx context.Context, campaignID, status string) ([]Schedule, error)
	ListActiveSchedules(ctx context.Context) ([]Schedule, error)
	SetScheduleStatus(ctx context.Context, scheduleID, status string, at time.Time) error
	ListSteps(ctx context.Context, scheduleID string) ([]Step, error)

	// ClaimStep flips a step to "sending" if it is pending, or failed with
	// fewer than maxAttempts attempts (the bounded transport re-offer).
	// Returns false when another sweep already holds or finished the step.
	ClaimStep(ctx context.Context, stepID string, maxAttempts int) (bool, error)
	ReleaseStep(ctx context.Context, stepID string) error
	MarkStepSent(ctx context.Context, stepID, messageID string, at time.Time) error
	MarkStepFailed(ctx context.Context, stepID string) error
	MarkStepSkipped(ctx context.Context, stepID string) error
	FindStepByMessageID(ctx context.Context, messageID string) (*Step, error)
	RecordStepEvent(ctx context.Context, stepID, event string, at time.Time, meta map[string]string) error

	// Suppression set (shared across schedules and scheduler instances)
	AddSuppression(ctx context.Context, value, kind, reason string) error
	IsSuppressed(ctx context.Context, values ...string) (bool, error)
	ListSuppressions(ctx context.Context) ([]Suppression, error)

	// Consent ledger (explicit opt-in channels: sms, whatsapp)
	SetConsent(ctx context.Context, prospectID, channel string, granted bool, source string) error
	HasConsent(ctx context.Context, prospectID, channel string) (bool, error)

	// Domain cooldown clock (global, not per-schedule)
	LastDomainSend(ctx context.Context, domain string) (*time.Time, error)
	TouchDomainSend(ctx context.Context, domain string, at time.Time) error

	// Campaign rollup for stats
	CampaignRollup(ctx context.Context, campaignID string) (Rollup, error)

	// Lifecycle
	Close() error
}
