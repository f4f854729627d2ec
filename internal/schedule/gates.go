package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/store"
)

// Gate identifiers, recorded on skip metrics and logs.
const (
	gateQuietHours = "quiet_hours"
	gateChannelCap = "channel_cap"
	gateCooldown   = "domain_cooldown"
	gateCompliance = "compliance"
	gateConsent    = "consent"
)

// Compliance rejections. Sentinels so callers can tell a policy verdict from
// a store error: only these skip a step, everything else propagates.
var (
	ErrSuppressed          = errors.New("prospect is suppressed")
	ErrNoContact           = errors.New("prospect has no contact channel")
	ErrUnsupportedLanguage = errors.New("prospect language not supported")
)

func complianceViolation(err error) bool {
	return errors.Is(err, ErrSuppressed) ||
		errors.Is(err, ErrNoContact) ||
		errors.Is(err, ErrUnsupportedLanguage)
}

// inQuietHours reports whether t's local hour falls inside [start, end).
// The window wraps midnight when start > end (the common 20..8 case).
// start == end means no quiet window.
func inQuietHours(t time.Time, startHour, endHour int) bool {
	if startHour == endHour {
		return false
	}
	h := t.Hour()
	if startHour < endHour {
		return h >= startHour && h < endHour
	}
	return h >= startHour || h < endHour
}

// underChannelCap counts steps already sent on channel within the schedule.
func underChannelCap(steps []store.Step, channel string, maxPerChannel int) bool {
	if maxPerChannel <= 0 {
		return true
	}
	sent := 0
	for _, st := range steps {
		if st.Channel == channel && st.Status == models.StepStatusSent {
			sent++
		}
	}
	return sent < maxPerChannel
}

// domainCooldownOK consults the global cooldown clock for the prospect domain.
func (s *Scheduler) domainCooldownOK(ctx context.Context, domain string, gapDays int, now time.Time) (bool, error) {
	if domain == "" || gapDays <= 0 {
		return true, nil
	}
	last, err := s.Store.LastDomainSend(ctx, domain)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return now.Sub(*last) >= time.Duration(gapDays)*24*time.Hour, nil
}

// checkCompliance rejects outreach that must never be attempted: suppressed
// domain or address, no usable contact channel, or an unsupported language.
// Run at schedule creation and again per due step (the suppression set can
// grow between the two).
func (s *Scheduler) checkCompliance(ctx context.Context, p *store.Prospect) error {
	suppressed, err := s.Store.IsSuppressed(ctx, p.Domain, p.Email)
	if err != nil {
		return err
	}
	if suppressed {
		return fmt.Errorf("prospect %s: %w", p.ProspectID, ErrSuppressed)
	}
	if p.Email == "" && p.Phone == "" && p.LinkedIn == "" {
		return fmt.Errorf("prospect %s: %w", p.ProspectID, ErrNoContact)
	}
	lang := strings.ToLower(p.Language)
	if lang != "" && len(s.Languages) > 0 && !slices.Contains(s.Languages, lang) {
		return fmt.Errorf("prospect %s language %q: %w", p.ProspectID, p.Language, ErrUnsupportedLanguage)
	}
	return nil
}

// checkConsent is channel-sensitive: professional email and LinkedIn outreach
// rest on legitimate-interest grounds and pass; SMS and WhatsApp require an
// explicit opt-in in the consent ledger.
func (s *Scheduler) checkConsent(ctx context.Context, prospectID, channel string) (bool, error) {
	switch channel {
	case models.ChannelSMS, models.ChannelWhatsApp:
		return s.Store.HasConsent(ctx, prospectID, channel)
	default:
		return true, nil
	}
}
