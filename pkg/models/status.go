package models

// Channels a variant or step can target.
const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelLinkedIn = "linkedin"
)

// Channels lists all supported channels in escalation-preference order.
var Channels = []string{ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelLinkedIn}

// Hook event types.
const (
	HookReviewWin     = "review_win"
	HookAward         = "award"
	HookProductLaunch = "product_launch"
	HookPRFeature     = "pr_feature"
	HookMilestone     = "milestone"
	HookCaseStudy     = "case_study"
	HookFunding       = "funding"
	HookPartnership   = "partnership"
	HookExpansion     = "expansion"
)

// Hook statuses (terminal, assigned at scoring time).
const (
	HookApproved = "approved"
	HookReview   = "review"
	HookRejected = "rejected"
)

// Schedule statuses.
const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusActive    = "active"
	ScheduleStatusPaused    = "paused"
	ScheduleStatusCompleted = "completed"
)

// Step statuses. "sending" is the transient claim state held while a dispatch
// is in flight; it is never persisted across a completed sweep.
const (
	StepStatusPending = "pending"
	StepStatusSending = "sending"
	StepStatusSent    = "sent"
	StepStatusFailed  = "failed"
	StepStatusSkipped = "skipped"
)

// Delivery events accepted by the webhook.
const (
	EventDelivered    = "delivered"
	EventOpened       = "opened"
	EventClicked      = "clicked"
	EventReplied      = "replied"
	EventUnsubscribed = "unsubscribed"
	EventMeeting      = "meeting"
)

// Suppression kinds.
const (
	SuppressDomain  = "domain"
	SuppressAddress = "address"
)

// Voice profile enumerations (tone x formality x style).
const (
	ToneWarm         = "warm"
	ToneDirect       = "direct"
	ToneEnthusiastic = "enthusiastic"

	FormalityCasual       = "casual"
	FormalityProfessional = "professional"

	StyleConcise   = "concise"
	StyleNarrative = "narrative"
)

// ValidHookType reports whether t is a known hook event type.
func ValidHookType(t string) bool {
	switch t {
	case HookReviewWin, HookAward, HookProductLaunch, HookPRFeature, HookMilestone,
		HookCaseStudy, HookFunding, HookPartnership, HookExpansion:
		return true
	}
	return false
}

// ValidChannel reports whether c is a known channel.
func ValidChannel(c string) bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelLinkedIn:
		return true
	}
	return false
}

// ValidEvent reports whether e is a known delivery event.
func ValidEvent(e string) bool {
	switch e {
	case EventDelivered, EventOpened, EventClicked, EventReplied, EventUnsubscribed, EventMeeting:
		return true
	}
	return false
}
