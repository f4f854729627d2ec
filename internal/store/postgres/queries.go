package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cobaltline/outreach/internal/store"
)

const stepColumns = `step_id, schedule_id, step_number, day_offset, channel, variant_id, status, attempts, COALESCE(message_id,''), sent_at, delivered_at, opened_at, clicked_at, replied_at, unsubscribed_at, meeting_at, response_meta`

const scheduleColumns = `schedule_id, prospect_id, campaign_id, status, consent, quiet_start_hour, quiet_end_hour, max_per_channel, domain_gap_days, created_at, started_at, completed_at`

// --- Prospects ---

func (s *Store) CreateProspect(ctx context.Context, p store.Prospect) (string, error) {
	if p.Name == "" {
		return "", errors.New("prospect name required")
	}
	if p.ProspectID == "" {
		p.ProspectID = uuid.NewString()
	}
	if p.Language == "" {
		p.Language = "en"
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO prospects(prospect_id, name, company, domain, email, phone, linkedin, language, industry, city, created_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ProspectID, p.Name, p.Company, p.Domain, p.Email, p.Phone, p.LinkedIn,
		strings.ToLower(p.Language), p.Industry, p.City, time.Now().UTC().Unix())
	if err != nil {
		return "", err
	}
	return p.ProspectID, nil
}

func (s *Store) GetProspect(ctx context.Context, prospectID string) (*store.Prospect, error) {
	row := s.Pool.QueryRow(ctx, `
SELECT prospect_id, name, company, domain, email, phone, linkedin, language, industry, city, created_at
FROM prospects WHERE prospect_id = $1`, prospectID)
	var p store.Prospect
	var createdAt int64
	err := row.Scan(&p.ProspectID, &p.Name, &p.Company, &p.Domain, &p.Email, &p.Phone,
		&p.LinkedIn, &p.Language, &p.Industry, &p.City, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prospect not found: %s", prospectID)
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func (s *Store) ListProspects(ctx context.Context, limit int) ([]store.Prospect, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.Pool.Query(ctx, `
SELECT prospect_id, name, company, domain, email, phone, linkedin, language, industry, city, created_at
FROM prospects ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Prospect
	for rows.Next() {
		var p store.Prospect
		var createdAt int64
		if err := rows.Scan(&p.ProspectID, &p.Name, &p.Company, &p.Domain, &p.Email, &p.Phone,
			&p.LinkedIn, &p.Language, &p.Industry, &p.City, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- Evidence ---

func (s *Store) CreateEvidence(ctx context.Context, ev store.Evidence) (string, error) {
	if ev.ProspectID == "" || ev.Title == "" || ev.Source == "" {
		return "", errors.New("evidence requires prospect_id, source, and title")
	}
	if ev.EvidenceID == "" {
		ev.EvidenceID = uuid.NewString()
	}
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO evidence(evidence_id, prospect_id, source, url, title, snippet, quote, published_at, authority, created_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.EvidenceID, ev.ProspectID, ev.Source, ev.URL, ev.Title, ev.Snippet, ev.Quote,
		ev.PublishedAt.UTC().Unix(), ev.Authority, time.Now().UTC().Unix())
	if err != nil {
		return "", err
	}
	return ev.EvidenceID, nil
}

func (s *Store) ListEvidence(ctx context.Context, prospectID string, f store.EvidenceFilter) ([]store.Evidence, error) {
	q := `
SELECT evidence_id, prospect_id, source, url, title, snippet, quote, published_at, authority, created_at
FROM evidence WHERE prospect_id = $1`
	args := []any{prospectID}
	if f.Since != nil {
		args = append(args, f.Since.UTC().Unix())
		q += fmt.Sprintf(` AND published_at >= $%d`, len(args))
	}
	if len(f.Sources) > 0 {
		args = append(args, f.Sources)
		q += fmt.Sprintf(` AND source = ANY($%d)`, len(args))
	}
	q += ` ORDER BY published_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvidenceRows(rows)
}

func (s *Store) GetEvidenceByIDs(ctx context.Context, ids []string) ([]store.Evidence, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx, `
SELECT evidence_id, prospect_id, source, url, title, snippet, quote, published_at, authority, created_at
FROM evidence WHERE evidence_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvidenceRows(rows)
}

func scanEvidenceRows(rows pgx.Rows) ([]store.Evidence, error) {
	var out []store.Evidence
	for rows.Next() {
		var ev store.Evidence
		var publishedAt, createdAt int64
		if err := rows.Scan(&ev.EvidenceID, &ev.ProspectID, &ev.Source, &ev.URL, &ev.Title,
			&ev.Snippet, &ev.Quote, &publishedAt, &ev.Authority, &createdAt); err != nil {
			return nil, err
		}
		ev.PublishedAt = time.Unix(publishedAt, 0).UTC()
		ev.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

// --- Hooks ---

func (s *Store) CreateHook(ctx context.Context, h store.Hook) (string, error) {
	if h.ProspectID == "" || h.Type == "" {
		return "", errors.New("hook requires prospect_id and type")
	}
	if h.HookID == "" {
		h.HookID = uuid.NewString()
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO hooks(hook_id, prospect_id, type, headline, quote, evidence_ids, freshness_days, score, confidence, status, created_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		h.HookID, h.ProspectID, h.Type, h.Headline, h.Quote, h.EvidenceIDs,
		h.FreshnessDays, h.Score, h.Confidence, h.Status, time.Now().UTC().Unix())
	if err != nil {
		return "", err
	}
	return h.HookID, nil
}

func (s *Store) GetHook(ctx context.Context, hookID string) (*store.Hook, error) {
	row := s.Pool.QueryRow(ctx, `
SELECT hook_id, prospect_id, type, headline, quote, evidence_ids, freshness_days, score, confidence, status, created_at
FROM hooks WHERE hook_id = $1`, hookID)
	var h store.Hook
	var createdAt int64
	err := row.Scan(&h.HookID, &h.ProspectID, &h.Type, &h.Headline, &h.Quote, &h.EvidenceIDs,
		&h.FreshnessDays, &h.Score, &h.Confidence, &h.Status, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("hook not found: %s", hookID)
	}
	if err != nil {
		return nil, err
	}
	h.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &h, nil
}

func (s *Store) ListHooks(ctx context.Context, prospectID string, limit int) ([]store.Hook, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
SELECT hook_id, prospect_id, type, headline, quote, evidence_ids, freshness_days, score, confidence, status, created_at
FROM hooks WHERE prospect_id = $1 ORDER BY score DESC, created_at DESC LIMIT $2`, prospectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Hook
	for rows.Next() {
		var h store.Hook
		var createdAt int64
		if err := rows.Scan(&h.HookID, &h.ProspectID, &h.Type, &h.Headline, &h.Quote, &h.EvidenceIDs,
			&h.FreshnessDays, &h.Score, &h.Confidence, &h.Status, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}

// --- Variants ---

func (s *Store) CreateVariant(ctx context.Context, v store.Variant) (string, error) {
	if v.HookID == "" || v.Channel == "" || v.Body == "" {
		return "", errors.New("variant requires hook_id, channel, and body")
	}
	if v.VariantID == "" {
		v.VariantID = uuid.NewString()
	}
	if v.Language == "" {
		v.Language = "en"
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO variants(variant_id, hook_id, channel, subject, body, language, tone, formality, style, model, evidence_ids, unsupported_claims, confidence, sms_alternate, whatsapp_alternate, created_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		v.VariantID, v.HookID, v.Channel, v.Subject, v.Body, v.Language, v.Tone, v.Formality,
		v.Style, v.Model, v.EvidenceIDs, v.UnsupportedClaims, v.Confidence,
		v.SMSAlternate, v.WhatsAppAlternate, time.Now().UTC().Unix())
	if err != nil {
		return "", err
	}
	return v.VariantID, nil
}

func (s *Store) GetVariant(ctx context.Context, variantID string) (*store.Variant, error) {
	row := s.Pool.QueryRow(ctx, `
SELECT variant_id, hook_id, channel, subject, body, language, tone, formality, style, model, evidence_ids, unsupported_claims, confidence, sms_alternate, whatsapp_alternate, created_at
FROM variants WHERE variant_id = $1`, variantID)
	v, err := scanVariantRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("variant not found: %s", variantID)
	}
	return v, err
}

func (s *Store) ListVariantsForHook(ctx context.Context, hookID string) ([]store.Variant, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT variant_id, hook_id, channel, subject, body, language, tone, formality, style, model, evidence_ids, unsupported_claims, confidence, sms_alternate, whatsapp_alternate, created_at
FROM variants WHERE hook_id = $1 ORDER BY created_at ASC`, hookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Variant
	for rows.Next() {
		v, err := scanVariantRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func scanVariantRow(row pgx.Row) (*store.Variant, error) {
	var v store.Variant
	var createdAt int64
	err := row.Scan(&v.VariantID, &v.HookID, &v.Channel, &v.Subject, &v.Body, &v.Language,
		&v.Tone, &v.Formality, &v.Style, &v.Model, &v.EvidenceIDs, &v.UnsupportedClaims,
		&v.Confidence, &v.SMSAlternate, &v.WhatsAppAlternate, &createdAt)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &v, nil
}

// --- Schedules and steps ---

func (s *Store) CreateSchedule(ctx context.Context, sc store.Schedule, steps []store.Step) (string, error) {
	if sc.ProspectID == "" || sc.CampaignID == "" {
		return "", errors.New("schedule requires prospect_id and campaign_id")
	}
	if sc.ScheduleID == "" {
		sc.ScheduleID = uuid.NewString()
	}
	if sc.Status == "" {
		sc.Status = "pending"
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO schedules(schedule_id, prospect_id, campaign_id, status, consent, quiet_start_hour, quiet_end_hour, max_per_channel, domain_gap_days, created_at, started_at, completed_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL, NULL)`,
		sc.ScheduleID, sc.ProspectID, sc.CampaignID, sc.Status, boolToInt(sc.Consent),
		sc.QuietStartHour, sc.QuietEndHour, sc.MaxPerChannel, sc.DomainGapDays,
		time.Now().UTC().Unix()); err != nil {
		return "", err
	}

	for _, st := range steps {
		if st.StepID == "" {
			st.StepID = uuid.NewString()
		}
		if st.Status == "" {
			st.Status = "pending"
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO steps(step_id, schedule_id, step_number, day_offset, channel, variant_id, status, attempts)
VALUES($1, $2, $3, $4, $5, $6, $7, 0)`,
			st.StepID, sc.ScheduleID, st.StepNumber, st.DayOffset, st.Channel, st.VariantID, st.Status); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return sc.ScheduleID, nil
}

func (s *Store) GetSchedule(ctx context.Context, scheduleID string) (*store.Schedule, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE schedule_id = $1`, scheduleID)
	sc, err := scanScheduleRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("schedule not found: %s", scheduleID)
	}
	return sc, err
}

func (s *Store) ListSchedules(ctx context.Context, campaignID, status string) ([]store.Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules WHERE campaign_id = $1`
	args := []any{campaignID}
	if status != "" {
		args = append(args, status)
		q += ` AND status = $2`
	}
	q += ` ORDER BY created_at ASC`
	return s.querySchedules(ctx, q, args...)
}

func (s *Store) ListActiveSchedules(ctx context.Context) ([]store.Schedule, error) {
	return s.querySchedules(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE status = 'active' ORDER BY created_at ASC`)
}

func (s *Store) querySchedules(ctx context.Context, q string, args ...any) ([]store.Schedule, error) {
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Schedule
	for rows.Next() {
		sc, err := scanScheduleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

func scanScheduleRow(row pgx.Row) (*store.Schedule, error) {
	var sc store.Schedule
	var consent int
	var createdAt int64
	var startedAt, completedAt sql.NullInt64
	err := row.Scan(&sc.ScheduleID, &sc.ProspectID, &sc.CampaignID, &sc.Status, &consent,
		&sc.QuietStartHour, &sc.QuietEndHour, &sc.MaxPerChannel, &sc.DomainGapDays,
		&createdAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	sc.Consent = consent != 0
	sc.CreatedAt = time.Unix(createdAt, 0).UTC()
	sc.StartedAt = nullableTime(startedAt)
	sc.CompletedAt = nullableTime(completedAt)
	return &sc, nil
}

func (s *Store) SetScheduleStatus(ctx context.Context, scheduleID, status string, at time.Time) error {
	ts := at.UTC().Unix()
	var err error
	switch status {
	case "active":
		_, err = s.Pool.Exec(ctx,
			`UPDATE schedules SET status=$1, started_at=COALESCE(started_at, $2) WHERE schedule_id=$3`,
			status, ts, scheduleID)
	case "completed":
		_, err = s.Pool.Exec(ctx,
			`UPDATE schedules SET status=$1, completed_at=COALESCE(completed_at, $2) WHERE schedule_id=$3`,
			status, ts, scheduleID)
	default:
		_, err = s.Pool.Exec(ctx, `UPDATE schedules SET status=$1 WHERE schedule_id=$2`, status, scheduleID)
	}
	return err
}

func (s *Store) ListSteps(ctx context.Context, scheduleID string) ([]store.Step, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE schedule_id = $1 ORDER BY step_number ASC`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Step
	for rows.Next() {
		st, err := scanStepRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func scanStepRow(row pgx.Row) (*store.Step, error) {
	var st store.Step
	var sentAt, deliveredAt, openedAt, clickedAt, repliedAt, unsubscribedAt, meetingAt sql.NullInt64
	err := row.Scan(&st.StepID, &st.ScheduleID, &st.StepNumber, &st.DayOffset, &st.Channel,
		&st.VariantID, &st.Status, &st.Attempts, &st.MessageID,
		&sentAt, &deliveredAt, &openedAt, &clickedAt, &repliedAt, &unsubscribedAt, &meetingAt,
		&st.ResponseMeta)
	if err != nil {
		return nil, err
	}
	st.SentAt = nullableTime(sentAt)
	st.DeliveredAt = nullableTime(deliveredAt)
	st.OpenedAt = nullableTime(openedAt)
	st.ClickedAt = nullableTime(clickedAt)
	st.RepliedAt = nullableTime(repliedAt)
	st.UnsubscribedAt = nullableTime(unsubscribedAt)
	st.MeetingAt = nullableTime(meetingAt)
	return &st, nil
}

func (s *Store) ClaimStep(ctx context.Context, stepID string, maxAttempts int) (bool, error) {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE steps SET status='sending' WHERE step_id=$1 AND (status='pending' OR (status='failed' AND attempts < $2))`,
		stepID, maxAttempts)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ReleaseStep(ctx context.Context, stepID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE steps SET status='pending' WHERE step_id=$1 AND status='sending'`, stepID)
	return err
}

func (s *Store) MarkStepSent(ctx context.Context, stepID, messageID string, at time.Time) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE steps SET status='sent', message_id=$1, sent_at=$2, attempts=attempts+1 WHERE step_id=$3 AND status='sending'`,
		messageID, at.UTC().Unix(), stepID)
	return err
}

func (s *Store) MarkStepFailed(ctx context.Context, stepID string) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE steps SET status='failed', attempts=attempts+1 WHERE step_id=$1 AND status='sending'`, stepID)
	return err
}

func (s *Store) MarkStepSkipped(ctx context.Context, stepID string) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE steps SET status='skipped' WHERE step_id=$1 AND status IN ('pending','sending','failed')`, stepID)
	return err
}

func (s *Store) FindStepByMessageID(ctx context.Context, messageID string) (*store.Step, error) {
	if messageID == "" {
		return nil, errors.New("message id required")
	}
	st, err := scanStepRow(s.Pool.QueryRow(ctx, `SELECT `+stepColumns+` FROM steps WHERE message_id=$1`, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no step for message: %s", messageID)
	}
	return st, err
}

func (s *Store) RecordStepEvent(ctx context.Context, stepID, event string, at time.Time, meta map[string]string) error {
	col, ok := eventColumn(event)
	if !ok {
		return fmt.Errorf("unknown delivery event: %s", event)
	}
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		_, err = s.Pool.Exec(ctx,
			`UPDATE steps SET `+col+` = COALESCE(`+col+`, $1), response_meta = $2 WHERE step_id = $3`,
			at.UTC().Unix(), string(b), stepID)
		return err
	}
	_, err := s.Pool.Exec(ctx,
		`UPDATE steps SET `+col+` = COALESCE(`+col+`, $1) WHERE step_id = $2`,
		at.UTC().Unix(), stepID)
	return err
}

func eventColumn(event string) (string, bool) {
	switch event {
	case "delivered":
		return "delivered_at", true
	case "opened":
		return "opened_at", true
	case "clicked":
		return "clicked_at", true
	case "replied":
		return "replied_at", true
	case "unsubscribed":
		return "unsubscribed_at", true
	case "meeting":
		return "meeting_at", true
	}
	return "", false
}

// --- Suppression set ---

func (s *Store) AddSuppression(ctx context.Context, value, kind, reason string) error {
	if value == "" {
		return errors.New("suppression value required")
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO suppressions(value, kind, reason, created_at) VALUES($1, $2, $3, $4)
ON CONFLICT(value) DO NOTHING`,
		strings.ToLower(value), kind, reason, time.Now().UTC().Unix())
	return err
}

func (s *Store) IsSuppressed(ctx context.Context, values ...string) (bool, error) {
	var checked []string
	for _, v := range values {
		if v != "" {
			checked = append(checked, strings.ToLower(v))
		}
	}
	if len(checked) == 0 {
		return false, nil
	}
	var n int
	if err := s.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM suppressions WHERE value = ANY($1)`, checked).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListSuppressions(ctx context.Context) ([]store.Suppression, error) {
	rows, err := s.Pool.Query(ctx, `SELECT value, kind, reason, created_at FROM suppressions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Suppression
	for rows.Next() {
		var sup store.Suppression
		var createdAt int64
		if err := rows.Scan(&sup.Value, &sup.Kind, &sup.Reason, &createdAt); err != nil {
			return nil, err
		}
		sup.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, sup)
	}
	return out, rows.Err()
}

// --- Consent ledger ---

func (s *Store) SetConsent(ctx context.Context, prospectID, channel string, granted bool, source string) error {
	if prospectID == "" || channel == "" {
		return errors.New("consent requires prospect_id and channel")
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO consents(prospect_id, channel, granted, source, created_at) VALUES($1, $2, $3, $4, $5)
ON CONFLICT(prospect_id, channel) DO UPDATE SET granted=EXCLUDED.granted, source=EXCLUDED.source, created_at=EXCLUDED.created_at`,
		prospectID, channel, boolToInt(granted), source, time.Now().UTC().Unix())
	return err
}

func (s *Store) HasConsent(ctx context.Context, prospectID, channel string) (bool, error) {
	var granted int
	err := s.Pool.QueryRow(ctx,
		`SELECT granted FROM consents WHERE prospect_id=$1 AND channel=$2`, prospectID, channel).Scan(&granted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return granted != 0, nil
}

// --- Domain cooldown ---

func (s *Store) LastDomainSend(ctx context.Context, domain string) (*time.Time, error) {
	if domain == "" {
		return nil, nil
	}
	var ts int64
	err := s.Pool.QueryRow(ctx,
		`SELECT last_sent_at FROM domain_cooldowns WHERE domain=$1`, strings.ToLower(domain)).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := time.Unix(ts, 0).UTC()
	return &t, nil
}

func (s *Store) TouchDomainSend(ctx context.Context, domain string, at time.Time) error {
	if domain == "" {
		return nil
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO domain_cooldowns(domain, last_sent_at) VALUES($1, $2)
ON CONFLICT(domain) DO UPDATE SET last_sent_at=EXCLUDED.last_sent_at`,
		strings.ToLower(domain), at.UTC().Unix())
	return err
}

// --- Campaign rollup ---

func (s *Store) CampaignRollup(ctx context.Context, campaignID string) (store.Rollup, error) {
	var r store.Rollup
	if err := s.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM schedules WHERE campaign_id = $1`, campaignID).Scan(&r.Schedules); err != nil {
		return r, err
	}
	err := s.Pool.QueryRow(ctx, `
SELECT
  COUNT(CASE WHEN st.status = 'sent' THEN 1 END),
  COUNT(st.delivered_at),
  COUNT(st.opened_at),
  COUNT(st.clicked_at),
  COUNT(st.replied_at),
  COUNT(st.unsubscribed_at),
  COUNT(st.meeting_at)
FROM steps st
JOIN schedules sc ON sc.schedule_id = st.schedule_id
WHERE sc.campaign_id = $1`, campaignID).Scan(
		&r.Sent, &r.Delivered, &r.Opened, &r.Clicked, &r.Replied, &r.Unsubscribed, &r.Meetings)
	return r, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
