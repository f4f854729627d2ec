package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/store"
)

// Converters between the persistence models and the API wire types in
// pkg/models. Kept mechanical so the two layers can drift independently.

func apiProspect(p store.Prospect) models.Prospect {
	return models.Prospect{
		ProspectID: p.ProspectID,
		Name:       p.Name,
		Company:    p.Company,
		Domain:     p.Domain,
		Email:      p.Email,
		Phone:      p.Phone,
		LinkedIn:   p.LinkedIn,
		Language:   p.Language,
		Industry:   p.Industry,
		City:       p.City,
		CreatedAt:  p.CreatedAt,
	}
}

func storeProspect(p models.Prospect) store.Prospect {
	return store.Prospect{
		Name:     p.Name,
		Company:  p.Company,
		Domain:   strings.ToLower(p.Domain),
		Email:    p.Email,
		Phone:    p.Phone,
		LinkedIn: p.LinkedIn,
		Language: strings.ToLower(p.Language),
		Industry: p.Industry,
		City:     p.City,
	}
}

func apiEvidence(ev store.Evidence) models.Evidence {
	return models.Evidence{
		EvidenceID:  ev.EvidenceID,
		ProspectID:  ev.ProspectID,
		Source:      ev.Source,
		URL:         ev.URL,
		Title:       ev.Title,
		Snippet:     ev.Snippet,
		Quote:       ev.Quote,
		PublishedAt: ev.PublishedAt,
		Authority:   ev.Authority,
		CreatedAt:   ev.CreatedAt,
	}
}

func storeEvidence(prospectID string, ev models.Evidence) store.Evidence {
	return store.Evidence{
		ProspectID:  prospectID,
		Source:      ev.Source,
		URL:         ev.URL,
		Title:       ev.Title,
		Snippet:     ev.Snippet,
		Quote:       ev.Quote,
		PublishedAt: ev.PublishedAt,
		Authority:   ev.Authority,
	}
}

func apiHook(h store.Hook) models.Hook {
	return models.Hook{
		HookID:        h.HookID,
		ProspectID:    h.ProspectID,
		Type:          h.Type,
		Headline:      h.Headline,
		Quote:         h.Quote,
		EvidenceIDs:   splitCSV(h.EvidenceIDs),
		FreshnessDays: h.FreshnessDays,
		Score:         h.Score,
		Confidence:    h.Confidence,
		Status:        h.Status,
		CreatedAt:     h.CreatedAt,
	}
}

func apiVariant(v store.Variant) models.Variant {
	out := models.Variant{
		VariantID:         v.VariantID,
		HookID:            v.HookID,
		Channel:           v.Channel,
		Subject:           v.Subject,
		Body:              v.Body,
		Language:          v.Language,
		Tone:              v.Tone,
		Formality:         v.Formality,
		Style:             v.Style,
		Model:             v.Model,
		EvidenceIDs:       splitCSV(v.EvidenceIDs),
		Confidence:        v.Confidence,
		SMSAlternate:      v.SMSAlternate,
		WhatsAppAlternate: v.WhatsAppAlternate,
		CreatedAt:         v.CreatedAt,
	}
	if v.UnsupportedClaims != "" {
		out.UnsupportedClaims = strings.Split(v.UnsupportedClaims, "\n")
	}
	return out
}

func apiSchedule(sc store.Schedule, steps []store.Step) models.Schedule {
	out := models.Schedule{
		ScheduleID: sc.ScheduleID,
		ProspectID: sc.ProspectID,
		CampaignID: sc.CampaignID,
		Status:     sc.Status,
		Consent:    sc.Consent,
		Caps: models.Caps{
			QuietStartHour: sc.QuietStartHour,
			QuietEndHour:   sc.QuietEndHour,
			MaxPerChannel:  sc.MaxPerChannel,
			DomainGapDays:  sc.DomainGapDays,
		},
		CreatedAt:   sc.CreatedAt,
		StartedAt:   sc.StartedAt,
		CompletedAt: sc.CompletedAt,
	}
	for _, st := range steps {
		out.Steps = append(out.Steps, apiStep(st))
	}
	return out
}

func apiStep(st store.Step) models.Step {
	var meta map[string]string
	if st.ResponseMeta != "" {
		_ = json.Unmarshal([]byte(st.ResponseMeta), &meta)
	}
	return models.Step{
		StepID:         st.StepID,
		ScheduleID:     st.ScheduleID,
		StepNumber:     st.StepNumber,
		DayOffset:      st.DayOffset,
		Channel:        st.Channel,
		VariantID:      st.VariantID,
		Status:         st.Status,
		Attempts:       st.Attempts,
		MessageID:      st.MessageID,
		SentAt:         st.SentAt,
		DeliveredAt:    st.DeliveredAt,
		OpenedAt:       st.OpenedAt,
		ClickedAt:      st.ClickedAt,
		RepliedAt:      st.RepliedAt,
		UnsubscribedAt: st.UnsubscribedAt,
		MeetingAt:      st.MeetingAt,
		ResponseMeta:   meta,
	}
}

func apiSuppression(s store.Suppression) models.Suppression {
	return models.Suppression{
		Value:     s.Value,
		Kind:      s.Kind,
		Reason:    s.Reason,
		CreatedAt: s.CreatedAt,
	}
}

func splitCSV(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
