// Package schedule owns the escalation state machine: building multi-channel
// send plans, sweeping due steps through the policy gates, and folding
// delivery events back into schedule state.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/channel"
	"github.com/cobaltline/outreach/internal/otel"
	"github.com/cobaltline/outreach/internal/store"
)

// The default escalation cadence. Steps whose channel has no matching variant
// are omitted from the plan, not inserted empty.
var (
	cadenceOffsets  = []int{0, 4, 7, 11, 14, 20}
	cadenceChannels = []string{
		models.ChannelEmail, models.ChannelEmail, models.ChannelSMS,
		models.ChannelEmail, models.ChannelLinkedIn, models.ChannelEmail,
	}
)

// maxSendAttempts bounds the transport re-offer: a failed step is offered to
// one more sweep, then it can only be skipped.
const maxSendAttempts = 2

// Scheduler drives schedules for all campaigns. Safe for concurrent sweeps:
// step claims are store-level compare-and-swap, and suppression/cooldown state
// lives in the shared store.
type Scheduler struct {
	Store      store.Store
	Transports channel.Registry
	Log        *slog.Logger
	Now        func() time.Time
	Languages  []string // supported prospect language preferences
	Caps       Caps
	Publish    func(ev models.StreamEvent) // optional SSE fan-out
}

// Options configures NewScheduler.
type Options struct {
	Transports channel.Registry
	Languages  []string
	Caps       Caps
	Publish    func(ev models.StreamEvent)
	Log        *slog.Logger
}

// Caps is the default policy applied to new schedules.
type Caps struct {
	QuietStartHour int
	QuietEndHour   int
	MaxPerChannel  int
	DomainGapDays  int
}

// NewScheduler wires a scheduler over the store and transports.
func NewScheduler(db store.Store, opts Options) *Scheduler {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	caps := opts.Caps
	if caps.MaxPerChannel == 0 {
		caps = Caps{QuietStartHour: 20, QuietEndHour: 8, MaxPerChannel: 3, DomainGapDays: 3}
	}
	return &Scheduler{
		Store:      db,
		Transports: opts.Transports,
		Log:        log,
		Now:        time.Now,
		Languages:  opts.Languages,
		Caps:       caps,
		Publish:    opts.Publish,
	}
}

// CreateSchedule builds the escalation plan for a prospect and campaign from
// the supplied variants. The compliance gate runs first; a rejected prospect
// gets no schedule at all.
func (s *Scheduler) CreateSchedule(ctx context.Context, prospectID, campaignID string, variantIDs []string) (string, error) {
	p, err := s.Store.GetProspect(ctx, prospectID)
	if err != nil {
		return "", err
	}
	if err := s.checkCompliance(ctx, p); err != nil {
		return "", fmt.Errorf("compliance: %w", err)
	}

	variants := make([]*store.Variant, 0, len(variantIDs))
	for _, id := range variantIDs {
		v, err := s.Store.GetVariant(ctx, id)
		if err != nil {
			return "", err
		}
		variants = append(variants, v)
	}
	steps := buildCadence(variants)
	if len(steps) == 0 {
		return "", fmt.Errorf("no variant matches any cadence channel")
	}

	sc := store.Schedule{
		ProspectID:     prospectID,
		CampaignID:     campaignID,
		Status:         models.ScheduleStatusPending,
		Consent:        true,
		QuietStartHour: s.Caps.QuietStartHour,
		QuietEndHour:   s.Caps.QuietEndHour,
		MaxPerChannel:  s.Caps.MaxPerChannel,
		DomainGapDays:  s.Caps.DomainGapDays,
	}
	id, err := s.Store.CreateSchedule(ctx, sc, steps)
	if err != nil {
		return "", err
	}
	s.Log.Info("created schedule",
		"schedule_id", id, "prospect_id", prospectID, "campaign_id", campaignID, "steps", len(steps))
	return id, nil
}

// buildCadence pairs each cadence slot with a supplied variant for its
// channel. Dedicated variants rotate round-robin across repeated slots; SMS
// and WhatsApp slots may fall back to an email variant's short-form alternate.
func buildCadence(variants []*store.Variant) []store.Step {
	byChannel := make(map[string][]*store.Variant)
	for _, v := range variants {
		byChannel[v.Channel] = append(byChannel[v.Channel], v)
	}
	next := make(map[string]int)

	pick := func(ch string) *store.Variant {
		if vs := byChannel[ch]; len(vs) > 0 {
			v := vs[next[ch]%len(vs)]
			next[ch]++
			return v
		}
		if ch == models.ChannelSMS || ch == models.ChannelWhatsApp {
			for _, v := range byChannel[models.ChannelEmail] {
				if (ch == models.ChannelSMS && v.SMSAlternate != "") ||
					(ch == models.ChannelWhatsApp && v.WhatsAppAlternate != "") {
					return v
				}
			}
		}
		return nil
	}

	var steps []store.Step
	for i, offset := range cadenceOffsets {
		ch := cadenceChannels[i]
		v := pick(ch)
		if v == nil {
			continue
		}
		steps = append(steps, store.Step{
			StepNumber: len(steps) + 1,
			DayOffset:  offset,
			Channel:    ch,
			VariantID:  v.VariantID,
			Status:     models.StepStatusPending,
		})
	}
	return steps
}

// StartCampaign bulk-activates every pending schedule in the campaign.
func (s *Scheduler) StartCampaign(ctx context.Context, campaignID string) (int, error) {
	return s.bulkTransition(ctx, campaignID, models.ScheduleStatusPending, models.ScheduleStatusActive)
}

// PauseCampaign bulk-pauses every active schedule in the campaign. Sent steps
// keep their state; only future due-step evaluation stops.
func (s *Scheduler) PauseCampaign(ctx context.Context, campaignID string) (int, error) {
	return s.bulkTransition(ctx, campaignID, models.ScheduleStatusActive, models.ScheduleStatusPaused)
}

func (s *Scheduler) bulkTransition(ctx context.Context, campaignID, from, to string) (int, error) {
	schedules, err := s.Store.ListSchedules(ctx, campaignID, from)
	if err != nil {
		return 0, err
	}
	now := s.Now().UTC()
	for _, sc := range schedules {
		if err := s.Store.SetScheduleStatus(ctx, sc.ScheduleID, to, now); err != nil {
			return 0, err
		}
	}
	s.Log.Info("campaign transition", "campaign_id", campaignID, "from", from, "to", to, "schedules", len(schedules))
	s.publish(models.StreamEvent{Type: models.StreamCampaign, CampaignID: campaignID, Status: to})
	return len(schedules), nil
}

// SweepReport summarizes one ExecuteSends pass.
type SweepReport struct {
	Schedules int `json:"schedules"`
	Due       int `json:"due"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	DryRun    int `json:"dry_run"`
}

// ExecuteSends sweeps all active schedules and dispatches due steps that clear
// every gate. Idempotent per step: terminal steps are never re-evaluated, and
// the claim CAS keeps concurrent sweeps from double-sending.
func (s *Scheduler) ExecuteSends(ctx context.Context, dryRun bool) (SweepReport, error) {
	start := s.Now()
	var rep SweepReport

	schedules, err := s.Store.ListActiveSchedules(ctx)
	if err != nil {
		return rep, err
	}
	rep.Schedules = len(schedules)

	for _, sc := range schedules {
		if err := s.sweepSchedule(ctx, sc, dryRun, &rep); err != nil {
			s.Log.Error("sweep schedule failed", "schedule_id", sc.ScheduleID, "err", err)
		}
	}

	otel.RecordSweep(ctx, s.Now().Sub(start))
	s.Log.Info("sweep done", "schedules", rep.Schedules, "due", rep.Due,
		"sent", rep.Sent, "failed", rep.Failed, "skipped", rep.Skipped, "dry_run", dryRun)
	return rep, nil
}

func (s *Scheduler) sweepSchedule(ctx context.Context, sc store.Schedule, dryRun bool, rep *SweepReport) error {
	if sc.StartedAt == nil {
		return nil
	}
	now := s.Now()
	p, err := s.Store.GetProspect(ctx, sc.ProspectID)
	if err != nil {
		return err
	}
	steps, err := s.Store.ListSteps(ctx, sc.ScheduleID)
	if err != nil {
		return err
	}

	for i := range steps {
		st := steps[i]
		if !stepOpen(st) {
			continue
		}
		if now.Before(sc.StartedAt.AddDate(0, 0, st.DayOffset)) {
			continue
		}
		rep.Due++

		gate, err := s.evaluateGates(ctx, sc, p, steps, st, now)
		if err != nil {
			return err
		}
		if gate != "" {
			if !dryRun {
				if err := s.Store.MarkStepSkipped(ctx, st.StepID); err != nil {
					return err
				}
				steps[i].Status = models.StepStatusSkipped
			}
			rep.Skipped++
			otel.RecordGateSkip(ctx, st.Channel, gate)
			s.Log.Info("step gated", "step_id", st.StepID, "channel", st.Channel, "gate", gate)
			continue
		}

		if dryRun {
			rep.DryRun++
			s.Log.Info("dry-run send", "step_id", st.StepID, "channel", st.Channel, "prospect_id", p.ProspectID)
			continue
		}

		// Keep the local view current so the channel cap and cooldown see
		// sends made earlier in this same pass.
		sent, err := s.dispatchStep(ctx, sc, p, st, now, rep)
		if err != nil {
			return err
		}
		if sent {
			steps[i].Status = models.StepStatusSent
		}
	}

	if !dryRun {
		return s.maybeComplete(ctx, sc.ScheduleID)
	}
	return nil
}

// stepOpen reports whether the sweep should still consider this step: pending,
// or failed with attempt budget left.
func stepOpen(st store.Step) bool {
	if st.Status == models.StepStatusPending {
		return true
	}
	return st.Status == models.StepStatusFailed && st.Attempts < maxSendAttempts
}

// evaluateGates returns the name of the first policy gate a due step fails,
// or "" when all pass. Store errors propagate unchanged: a transient failure
// must leave the step pending for the next sweep, not skip it terminally.
func (s *Scheduler) evaluateGates(ctx context.Context, sc store.Schedule, p *store.Prospect, steps []store.Step, st store.Step, now time.Time) (string, error) {
	if inQuietHours(now, sc.QuietStartHour, sc.QuietEndHour) {
		return gateQuietHours, nil
	}
	if !underChannelCap(steps, st.Channel, sc.MaxPerChannel) {
		return gateChannelCap, nil
	}
	ok, err := s.domainCooldownOK(ctx, p.Domain, sc.DomainGapDays, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return gateCooldown, nil
	}
	if err := s.checkCompliance(ctx, p); err != nil {
		if complianceViolation(err) {
			return gateCompliance, nil
		}
		return "", err
	}
	ok, err = s.checkConsent(ctx, p.ProspectID, st.Channel)
	if err != nil {
		return "", err
	}
	if !ok {
		return gateConsent, nil
	}
	return "", nil
}

func (s *Scheduler) dispatchStep(ctx context.Context, sc store.Schedule, p *store.Prospect, st store.Step, now time.Time, rep *SweepReport) (bool, error) {
	claimed, err := s.Store.ClaimStep(ctx, st.StepID, maxSendAttempts)
	if err != nil {
		return false, err
	}
	if !claimed {
		// Another sweep holds or already finished this step.
		return false, nil
	}

	v, err := s.Store.GetVariant(ctx, st.VariantID)
	if err != nil {
		if rerr := s.Store.ReleaseStep(ctx, st.StepID); rerr != nil {
			return false, rerr
		}
		return false, err
	}

	to := contactFor(p, st.Channel)
	tr := s.Transports[st.Channel]
	if to == "" || tr == nil {
		// Misconfiguration, not a transient transport failure.
		if err := s.Store.MarkStepSkipped(ctx, st.StepID); err != nil {
			return false, err
		}
		rep.Skipped++
		s.Log.Warn("step unroutable", "step_id", st.StepID, "channel", st.Channel,
			"has_contact", to != "", "has_transport", tr != nil)
		return false, nil
	}

	msg := channel.Message{
		To:      to,
		Subject: v.Subject,
		Body:    bodyFor(v, st.Channel),
		Metadata: map[string]string{
			"schedule_id": sc.ScheduleID,
			"step_id":     st.StepID,
			"campaign_id": sc.CampaignID,
			"prospect_id": p.ProspectID,
		},
	}

	res, err := tr.Send(ctx, msg)
	if err != nil {
		if merr := s.Store.MarkStepFailed(ctx, st.StepID); merr != nil {
			return false, merr
		}
		rep.Failed++
		otel.RecordSend(ctx, st.Channel, models.StepStatusFailed)
		s.Log.Warn("send failed", "step_id", st.StepID, "channel", st.Channel, "err", err)
		return false, nil
	}

	if err := s.Store.MarkStepSent(ctx, st.StepID, res.MessageID, now); err != nil {
		return false, err
	}
	if err := s.Store.TouchDomainSend(ctx, p.Domain, now); err != nil {
		return false, err
	}
	rep.Sent++
	otel.RecordSend(ctx, st.Channel, models.StepStatusSent)
	s.publish(models.StreamEvent{
		Type:       models.StreamSend,
		ScheduleID: sc.ScheduleID,
		StepID:     st.StepID,
		Channel:    st.Channel,
		MessageID:  res.MessageID,
	})
	s.Log.Info("step sent", "step_id", st.StepID, "channel", st.Channel, "message_id", res.MessageID)
	return true, nil
}

// maybeComplete marks the schedule completed once no step is still open.
func (s *Scheduler) maybeComplete(ctx context.Context, scheduleID string) error {
	steps, err := s.Store.ListSteps(ctx, scheduleID)
	if err != nil {
		return err
	}
	for _, st := range steps {
		if stepOpen(st) || st.Status == models.StepStatusSending {
			return nil
		}
	}
	return s.Store.SetScheduleStatus(ctx, scheduleID, models.ScheduleStatusCompleted, s.Now().UTC())
}

// HandleResponse folds one inbound delivery event into step and schedule
// state. Provider metadata rides along onto the step record for audit.
// Replied completes the schedule; unsubscribed pauses it and grows the
// suppression set consulted by all future schedule creation.
func (s *Scheduler) HandleResponse(ctx context.Context, messageID, event string, meta map[string]string) error {
	if !models.ValidEvent(event) {
		return fmt.Errorf("unknown delivery event: %s", event)
	}
	st, err := s.Store.FindStepByMessageID(ctx, messageID)
	if err != nil {
		return err
	}
	now := s.Now().UTC()
	if err := s.Store.RecordStepEvent(ctx, st.StepID, event, now, meta); err != nil {
		return err
	}
	otel.RecordWebhookEvent(ctx, event)

	switch event {
	case models.EventReplied:
		if err := s.Store.SetScheduleStatus(ctx, st.ScheduleID, models.ScheduleStatusCompleted, now); err != nil {
			return err
		}
	case models.EventUnsubscribed:
		if err := s.Store.SetScheduleStatus(ctx, st.ScheduleID, models.ScheduleStatusPaused, now); err != nil {
			return err
		}
		if err := s.suppressProspect(ctx, st.ScheduleID); err != nil {
			return err
		}
	}

	s.publish(models.StreamEvent{
		Type:       models.StreamDeliveryEvent,
		Event:      event,
		ScheduleID: st.ScheduleID,
		StepID:     st.StepID,
		MessageID:  messageID,
	})
	s.Log.Info("delivery event", "event", event, "step_id", st.StepID, "message_id", messageID)
	return nil
}

func (s *Scheduler) suppressProspect(ctx context.Context, scheduleID string) error {
	sc, err := s.Store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	p, err := s.Store.GetProspect(ctx, sc.ProspectID)
	if err != nil {
		return err
	}
	if p.Domain != "" {
		if err := s.Store.AddSuppression(ctx, p.Domain, models.SuppressDomain, "unsubscribed"); err != nil {
			return err
		}
	}
	if p.Email != "" {
		if err := s.Store.AddSuppression(ctx, p.Email, models.SuppressAddress, "unsubscribed"); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports campaign delivery outcomes with derived rates.
func (s *Scheduler) Stats(ctx context.Context, campaignID string) (models.CampaignStats, error) {
	r, err := s.Store.CampaignRollup(ctx, campaignID)
	if err != nil {
		return models.CampaignStats{}, err
	}
	stats := models.CampaignStats{
		CampaignID: campaignID,
		Schedules:  r.Schedules,
		Sent:       r.Sent,
		Delivered:  r.Delivered,
		Opened:     r.Opened,
		Clicked:    r.Clicked,
		Replied:    r.Replied,
		Meetings:   r.Meetings,
	}
	if r.Sent > 0 {
		stats.OpenRate = float64(r.Opened) / float64(r.Sent)
		stats.ReplyRate = float64(r.Replied) / float64(r.Sent)
	}
	return stats, nil
}

func (s *Scheduler) publish(ev models.StreamEvent) {
	if s.Publish != nil {
		s.Publish(ev)
	}
}

func contactFor(p *store.Prospect, ch string) string {
	switch ch {
	case models.ChannelEmail:
		return p.Email
	case models.ChannelSMS, models.ChannelWhatsApp:
		return p.Phone
	case models.ChannelLinkedIn:
		return p.LinkedIn
	}
	return ""
}

// bodyFor picks the right payload when an SMS or WhatsApp step rides on an
// email variant's short-form alternate.
func bodyFor(v *store.Variant, ch string) string {
	if v.Channel == ch {
		return v.Body
	}
	switch ch {
	case models.ChannelSMS:
		if v.SMSAlternate != "" {
			return v.SMSAlternate
		}
	case models.ChannelWhatsApp:
		if v.WhatsAppAlternate != "" {
			return v.WhatsAppAlternate
		}
	}
	return v.Body
}
