package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/channel"
	"github.com/cobaltline/outreach/internal/store"
)

type env struct {
	db       store.Store
	s        *Scheduler
	email    *channel.Capture
	sms      *channel.Capture
	linkedin *channel.Capture
	pid      string
	variants []string // email, sms, linkedin
	now      time.Time
}

// setNow moves the scheduler clock; tests start at noon UTC, outside the
// default 20-8 quiet window.
func (e *env) setNow(t time.Time) { e.now = t }

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	e := &env{
		db:       db,
		email:    &channel.Capture{Channel: models.ChannelEmail},
		sms:      &channel.Capture{Channel: models.ChannelSMS},
		linkedin: &channel.Capture{Channel: models.ChannelLinkedIn},
		now:      time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	e.pid, err = db.CreateProspect(ctx, store.Prospect{
		Name:     "Kari Nordmann",
		Company:  "Fjellheim Dental",
		Domain:   "fjellheimdental.no",
		Email:    "kari@fjellheimdental.no",
		Phone:    "+4791234567",
		LinkedIn: "linkedin.com/in/karinordmann",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}

	hookID, err := db.CreateHook(ctx, store.Hook{
		ProspectID: e.pid,
		Type:       models.HookReviewWin,
		Headline:   "Fjellheim Dental crossed 500 Trustpilot reviews",
		Status:     models.HookApproved,
	})
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	for _, v := range []store.Variant{
		{HookID: hookID, Channel: models.ChannelEmail, Subject: "Congrats on 500 reviews",
			Body: "Hi Kari, saw the milestone.", SMSAlternate: "Saw the 500 review milestone!",
			WhatsAppAlternate: "Saw the 500 review milestone 🎉"},
		{HookID: hookID, Channel: models.ChannelSMS, Body: "Hi Kari - 500 reviews, nice. Quick call?"},
		{HookID: hookID, Channel: models.ChannelLinkedIn, Body: "Impressive review milestone, Kari."},
	} {
		id, err := db.CreateVariant(ctx, v)
		if err != nil {
			t.Fatalf("create variant: %v", err)
		}
		e.variants = append(e.variants, id)
	}

	e.s = NewScheduler(db, Options{
		Transports: channel.Registry{
			models.ChannelEmail:    e.email,
			models.ChannelSMS:      e.sms,
			models.ChannelLinkedIn: e.linkedin,
		},
		Languages: []string{"en", "no"},
		Caps:      Caps{QuietStartHour: 20, QuietEndHour: 8, MaxPerChannel: 3, DomainGapDays: 3},
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	e.s.Now = func() time.Time { return e.now }
	return e
}

func (e *env) mustSchedule(t *testing.T, variantIDs []string) string {
	t.Helper()
	id, err := e.s.CreateSchedule(context.Background(), e.pid, "camp-1", variantIDs)
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return id
}

func (e *env) startCampaign(t *testing.T) {
	t.Helper()
	if _, err := e.s.StartCampaign(context.Background(), "camp-1"); err != nil {
		t.Fatalf("start campaign: %v", err)
	}
}

func TestCreateScheduleFullCadence(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	sid := e.mustSchedule(t, e.variants)

	steps, err := e.db.ListSteps(context.Background(), sid)
	if err != nil {
		t.Fatalf("list steps: %v", err)
	}
	if len(steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(steps))
	}
	wantOffsets := []int{0, 4, 7, 11, 14, 20}
	wantChannels := []string{"email", "email", "sms", "email", "linkedin", "email"}
	for i, st := range steps {
		if st.DayOffset != wantOffsets[i] || st.Channel != wantChannels[i] {
			t.Errorf("step %d: offset=%d channel=%s, want %d/%s",
				i+1, st.DayOffset, st.Channel, wantOffsets[i], wantChannels[i])
		}
		if st.StepNumber != i+1 {
			t.Errorf("step number %d at index %d", st.StepNumber, i)
		}
	}
}

func TestCreateScheduleOmitsUnmatchedSteps(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	// An email variant with no short-form alternates covers only the four
	// email slots; sms and linkedin slots are omitted.
	bare, err := e.db.CreateVariant(context.Background(), store.Variant{
		HookID: mustHookID(t, e), Channel: models.ChannelEmail, Body: "Plain email body.",
	})
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}
	sid := e.mustSchedule(t, []string{bare})

	steps, _ := e.db.ListSteps(context.Background(), sid)
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	for i, st := range steps {
		if st.Channel != models.ChannelEmail {
			t.Errorf("unexpected channel %s", st.Channel)
		}
		if st.StepNumber != i+1 {
			t.Errorf("step numbers not contiguous after omission: %d at %d", st.StepNumber, i)
		}
	}
}

func mustHookID(t *testing.T, e *env) string {
	t.Helper()
	v, err := e.db.GetVariant(context.Background(), e.variants[0])
	if err != nil {
		t.Fatalf("get variant: %v", err)
	}
	return v.HookID
}

func TestCreateScheduleSMSRidesEmailAlternate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	// Email variant only, but it carries alternates: the sms slot rides it.
	sid := e.mustSchedule(t, e.variants[:1])
	steps, _ := e.db.ListSteps(context.Background(), sid)
	var smsStep *store.Step
	for i := range steps {
		if steps[i].Channel == models.ChannelSMS {
			smsStep = &steps[i]
		}
	}
	if smsStep == nil {
		t.Fatal("sms slot omitted despite alternate")
	}
	if smsStep.VariantID != e.variants[0] {
		t.Errorf("sms step should reference the email variant")
	}
}

func TestCreateScheduleComplianceRejections(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	// Suppressed domain.
	if err := e.db.AddSuppression(ctx, "fjellheimdental.no", "domain", "test"); err != nil {
		t.Fatalf("add suppression: %v", err)
	}
	if _, err := e.s.CreateSchedule(ctx, e.pid, "camp-1", e.variants); err == nil {
		t.Error("expected rejection for suppressed domain")
	}

	// No contact channel at all.
	noContact, err := e.db.CreateProspect(ctx, store.Prospect{Name: "Ghost"})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	if _, err := e.s.CreateSchedule(ctx, noContact, "camp-1", e.variants); err == nil {
		t.Error("expected rejection for missing contact")
	}

	// Unsupported language.
	wrongLang, err := e.db.CreateProspect(ctx, store.Prospect{
		Name: "Pierre", Email: "pierre@example.fr", Language: "fr",
	})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	if _, err := e.s.CreateSchedule(ctx, wrongLang, "camp-1", e.variants); err == nil {
		t.Error("expected rejection for unsupported language")
	}
}

func TestExecuteSendsStepOnceOnly(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	rep, err := e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if rep.Sent != 1 || len(e.email.Sent) != 1 {
		t.Fatalf("expected exactly one send, got rep=%+v captured=%d", rep, len(e.email.Sent))
	}
	msg := e.email.Sent[0]
	if msg.To != "kari@fjellheimdental.no" || msg.Subject == "" {
		t.Errorf("unexpected message: %+v", msg)
	}

	// Immediate re-sweep must not double-send.
	rep2, err := e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if rep2.Sent != 0 || len(e.email.Sent) != 1 {
		t.Errorf("step dispatched twice: rep=%+v captured=%d", rep2, len(e.email.Sent))
	}

	steps, _ := e.db.ListSteps(ctx, sid)
	if steps[0].Status != models.StepStatusSent || steps[0].SentAt == nil {
		t.Errorf("step 1 not marked sent: %+v", steps[0])
	}
}

func TestSweepProgressionAcrossDays(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	if _, err := e.s.ExecuteSends(ctx, false); err != nil {
		t.Fatalf("day 0 sweep: %v", err)
	}
	if len(e.email.Sent) != 1 {
		t.Fatalf("day 0: %d email sends", len(e.email.Sent))
	}

	// Day 4: second email step due, domain cooldown (3d) has elapsed.
	e.setNow(e.now.AddDate(0, 0, 4))
	if _, err := e.s.ExecuteSends(ctx, false); err != nil {
		t.Fatalf("day 4 sweep: %v", err)
	}
	if len(e.email.Sent) != 2 {
		t.Errorf("day 4: %d email sends, want 2", len(e.email.Sent))
	}
}

func TestConsentGateForSMS(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	_, _ = e.s.ExecuteSends(ctx, false) // day 0 email
	e.setNow(e.now.AddDate(0, 0, 4))
	_, _ = e.s.ExecuteSends(ctx, false) // day 4 email

	// Day 7: sms step due, but no opt-in recorded.
	e.setNow(e.now.AddDate(0, 0, 3))
	rep, err := e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("day 7 sweep: %v", err)
	}
	if rep.Skipped != 1 || len(e.sms.Sent) != 0 {
		t.Errorf("sms without consent not skipped: %+v sms=%d", rep, len(e.sms.Sent))
	}
	steps, _ := e.db.ListSteps(ctx, sid)
	for _, st := range steps {
		if st.Channel == models.ChannelSMS && st.Status != models.StepStatusSkipped {
			t.Errorf("sms step status = %s, want skipped", st.Status)
		}
	}
}

func TestConsentedSMSSends(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	if err := e.db.SetConsent(ctx, e.pid, models.ChannelSMS, true, "signup-form"); err != nil {
		t.Fatalf("set consent: %v", err)
	}
	e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	_, _ = e.s.ExecuteSends(ctx, false)
	e.setNow(e.now.AddDate(0, 0, 4))
	_, _ = e.s.ExecuteSends(ctx, false)
	e.setNow(e.now.AddDate(0, 0, 3))
	if _, err := e.s.ExecuteSends(ctx, false); err != nil {
		t.Fatalf("day 7 sweep: %v", err)
	}
	if len(e.sms.Sent) != 1 {
		t.Fatalf("consented sms not sent: %d", len(e.sms.Sent))
	}
	if e.sms.Sent[0].To != "+4791234567" {
		t.Errorf("sms to = %s", e.sms.Sent[0].To)
	}
}

func TestQuietHoursGate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	e.setNow(time.Date(2026, 8, 25, 22, 0, 0, 0, time.UTC))
	rep, err := e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if rep.Skipped != 1 || rep.Sent != 0 {
		t.Errorf("quiet-hours step not skipped: %+v", rep)
	}
}

func TestDomainCooldownGate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	// A send to the domain happened yesterday; the 3-day gap has not elapsed.
	if err := e.db.TouchDomainSend(ctx, "fjellheimdental.no", e.now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("touch domain: %v", err)
	}
	rep, err := e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if rep.Skipped != 1 || rep.Sent != 0 {
		t.Errorf("cooldown step not skipped: %+v", rep)
	}
}

// outageStore wraps a Store and fails LastDomainSend on demand, standing in
// for a transient database outage mid-sweep.
type outageStore struct {
	store.Store
	fail bool
}

func (o *outageStore) LastDomainSend(ctx context.Context, domain string) (*time.Time, error) {
	if o.fail {
		return nil, errors.New("database is locked")
	}
	return o.Store.LastDomainSend(ctx, domain)
}

func TestStoreOutageLeavesStepPending(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	faulty := &outageStore{Store: e.db, fail: true}
	e.s.Store = faulty

	rep, err := e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if rep.Sent != 0 || rep.Skipped != 0 {
		t.Fatalf("store outage must not send or skip: %+v", rep)
	}
	steps, _ := e.db.ListSteps(ctx, sid)
	if steps[0].Status != models.StepStatusPending {
		t.Fatalf("step status = %s, want pending after store outage", steps[0].Status)
	}

	// Outage over: the same step is still eligible on the next sweep.
	faulty.fail = false
	rep, err = e.s.ExecuteSends(ctx, false)
	if err != nil {
		t.Fatalf("sweep after recovery: %v", err)
	}
	if rep.Sent != 1 {
		t.Fatalf("sent = %d after recovery, want 1", rep.Sent)
	}
	steps, _ = e.db.ListSteps(ctx, sid)
	if steps[0].Status != models.StepStatusSent {
		t.Fatalf("step status = %s, want sent after recovery", steps[0].Status)
	}
}

func TestTransportFailureReofferedOnce(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)
	e.email.Fail = true

	rep1, _ := e.s.ExecuteSends(ctx, false)
	if rep1.Failed != 1 {
		t.Fatalf("first sweep: %+v", rep1)
	}
	rep2, _ := e.s.ExecuteSends(ctx, false)
	if rep2.Failed != 1 {
		t.Fatalf("failed step not re-offered: %+v", rep2)
	}
	rep3, _ := e.s.ExecuteSends(ctx, false)
	if rep3.Due != 0 || rep3.Failed != 0 {
		t.Errorf("step re-offered past attempt budget: %+v", rep3)
	}

	steps, _ := e.db.ListSteps(ctx, sid)
	if steps[0].Status != models.StepStatusFailed || steps[0].Attempts != 2 {
		t.Errorf("step after budget: status=%s attempts=%d", steps[0].Status, steps[0].Attempts)
	}
}

func TestRepliedCompletesSchedule(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)
	_, _ = e.s.ExecuteSends(ctx, false)

	steps, _ := e.db.ListSteps(ctx, sid)
	meta := map[string]string{"provider": "sendgrid", "reply_excerpt": "sounds interesting"}
	if err := e.s.HandleResponse(ctx, steps[0].MessageID, models.EventReplied, meta); err != nil {
		t.Fatalf("handle replied: %v", err)
	}

	sc, _ := e.db.GetSchedule(ctx, sid)
	if sc.Status != models.ScheduleStatusCompleted {
		t.Errorf("schedule status = %s, want completed", sc.Status)
	}
	steps, _ = e.db.ListSteps(ctx, sid)
	if !strings.Contains(steps[0].ResponseMeta, "sendgrid") {
		t.Errorf("provider metadata not retained: %q", steps[0].ResponseMeta)
	}

	// No further step may become sent.
	e.setNow(e.now.AddDate(0, 0, 10))
	rep, _ := e.s.ExecuteSends(ctx, false)
	if rep.Sent != 0 || len(e.email.Sent) != 1 {
		t.Errorf("sends continued after reply: %+v", rep)
	}
}

func TestUnsubscribedPausesAndSuppresses(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)
	_, _ = e.s.ExecuteSends(ctx, false)

	steps, _ := e.db.ListSteps(ctx, sid)
	if err := e.s.HandleResponse(ctx, steps[0].MessageID, models.EventUnsubscribed, nil); err != nil {
		t.Fatalf("handle unsubscribed: %v", err)
	}

	sc, _ := e.db.GetSchedule(ctx, sid)
	if sc.Status != models.ScheduleStatusPaused {
		t.Errorf("schedule status = %s, want paused", sc.Status)
	}
	hit, _ := e.db.IsSuppressed(ctx, "fjellheimdental.no")
	if !hit {
		t.Error("domain not suppressed after unsubscribe")
	}

	// Future schedule creation for the same prospect is rejected.
	if _, err := e.s.CreateSchedule(ctx, e.pid, "camp-2", e.variants); err == nil {
		t.Error("expected rejection after unsubscribe suppression")
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	rep, err := e.s.ExecuteSends(ctx, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if rep.DryRun != 1 || rep.Sent != 0 {
		t.Errorf("unexpected dry-run report: %+v", rep)
	}
	if len(e.email.Sent) != 0 {
		t.Error("dry run dispatched a message")
	}
	steps, _ := e.db.ListSteps(ctx, sid)
	if steps[0].Status != models.StepStatusPending {
		t.Errorf("dry run mutated step: %s", steps[0].Status)
	}
}

func TestPauseCampaignStopsSends(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.mustSchedule(t, e.variants)
	e.startCampaign(t)

	if _, err := e.s.PauseCampaign(ctx, "camp-1"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	rep, _ := e.s.ExecuteSends(ctx, false)
	if rep.Schedules != 0 || rep.Sent != 0 {
		t.Errorf("paused campaign still swept: %+v", rep)
	}
}

func TestStatsWithRates(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	sid := e.mustSchedule(t, e.variants)
	e.startCampaign(t)
	_, _ = e.s.ExecuteSends(ctx, false)

	steps, _ := e.db.ListSteps(ctx, sid)
	_ = e.s.HandleResponse(ctx, steps[0].MessageID, models.EventOpened, nil)
	_ = e.s.HandleResponse(ctx, steps[0].MessageID, models.EventReplied, nil)
	_ = e.s.HandleResponse(ctx, steps[0].MessageID, models.EventMeeting, nil)

	stats, err := e.s.Stats(ctx, "camp-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Sent != 1 || stats.Opened != 1 || stats.Replied != 1 || stats.Meetings != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.OpenRate != 1.0 || stats.ReplyRate != 1.0 {
		t.Errorf("unexpected rates: %+v", stats)
	}
}

func TestInQuietHoursWindow(t *testing.T) {
	t.Parallel()
	at := func(h int) time.Time { return time.Date(2026, 8, 25, h, 30, 0, 0, time.UTC) }

	cases := []struct {
		hour       int
		start, end int
		want       bool
	}{
		{22, 20, 8, true},  // inside wrapped window, evening
		{3, 20, 8, true},   // inside wrapped window, early morning
		{12, 20, 8, false}, // midday
		{8, 20, 8, false},  // end hour is exclusive
		{20, 20, 8, true},  // start hour is inclusive
		{10, 9, 17, true},  // non-wrapping window
		{18, 9, 17, false},
		{5, 6, 6, false}, // degenerate window disables quiet hours
	}
	for _, tc := range cases {
		if got := inQuietHours(at(tc.hour), tc.start, tc.end); got != tc.want {
			t.Errorf("inQuietHours(h=%d, %d-%d) = %v, want %v", tc.hour, tc.start, tc.end, got, tc.want)
		}
	}
}
