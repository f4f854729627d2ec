package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const stepColumns = `step_id, schedule_id, step_number, day_offset, channel, variant_id, status, attempts, COALESCE(message_id,''), sent_at, delivered_at, opened_at, clicked_at, replied_at, unsubscribed_at, meeting_at, response_meta`

const scheduleColumns = `schedule_id, prospect_id, campaign_id, status, consent, quiet_start_hour, quiet_end_hour, max_per_channel, domain_gap_days, created_at, started_at, completed_at`

// --- Prospects ---

func (s *sqliteStore) CreateProspect(ctx context.Context, p Prospect) (string, error) {
	if p.Name == "" {
		return "", errors.New("prospect name required")
	}
	if p.ProspectID == "" {
		p.ProspectID = uuid.NewString()
	}
	if p.Language == "" {
		p.Language = "en"
	}
	now := time.Now().UTC().Unix()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO prospects(prospect_id, name, company, domain, email, phone, linkedin, language, industry, city, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProspectID, p.Name, p.Company, p.Domain, p.Email, p.Phone, p.LinkedIn,
		strings.ToLower(p.Language), p.Industry, p.City, now)
	if err != nil {
		return "", err
	}
	return p.ProspectID, nil
}

func (s *sqliteStore) GetProspect(ctx context.Context, prospectID string) (*Prospect, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT prospect_id, name, company, domain, email, phone, linkedin, language, industry, city, created_at
FROM prospects WHERE prospect_id = ?`, prospectID)
	var p Prospect
	var createdAt int64
	err := row.Scan(&p.ProspectID, &p.Name, &p.Company, &p.Domain, &p.Email, &p.Phone,
		&p.LinkedIn, &p.Language, &p.Industry, &p.City, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("prospect not found: %s", prospectID)
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func (s *sqliteStore) ListProspects(ctx context.Context, limit int) ([]Prospect, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT prospect_id, name, company, domain, email, phone, linkedin, language, industry, city, created_at
FROM prospects ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Prospect
	for rows.Next() {
		var p Prospect
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

func (s *sqliteStore) CreateEvidence(ctx context.Context, ev Evidence) (string, error) {
	if ev.ProspectID == "" || ev.Title == "" || ev.Source == "" {
		return "", errors.New("evidence requires prospect_id, source, and title")
	}
	if ev.EvidenceID == "" {
		ev.EvidenceID = uuid.NewString()
	}
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = time.Now().UTC()
	}
	now := time.Now().UTC().Unix()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO evidence(evidence_id, prospect_id, source, url, title, snippet, quote, published_at, authority, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EvidenceID, ev.ProspectID, ev.Source, ev.URL, ev.Title, ev.Snippet, ev.Quote,
		ev.PublishedAt.UTC().Unix(), ev.Authority, now)
	if err != nil {
		return "", err
	}
	return ev.EvidenceID, nil
}

func (s *sqliteStore) ListEvidence(ctx context.Context, prospectID string, f EvidenceFilter) ([]Evidence, error) {
	q := `
SELECT evidence_id, prospect_id, source, url, title, snippet, quote, published_at, authority, created_at
FROM evidence WHERE prospect_id = ?`
	args := []any{prospectID}
	if f.Since != nil {
		q += ` AND published_at >= ?`
		args = append(args, f.Since.UTC().Unix())
	}
	if len(f.Sources) > 0 {
		q += ` AND source IN (?` + strings.Repeat(",?", len(f.Sources)-1) + `)`
		for _, src := range f.Sources {
			args = append(args, src)
		}
	}
	q += ` ORDER BY published_at DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanEvidenceRows(rows)
}

func (s *sqliteStore) GetEvidenceByIDs(ctx context.Context, ids []string) ([]Evidence, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `
SELECT evidence_id, prospect_id, source, url, title, snippet, quote, published_at, authority, created_at
FROM evidence WHERE evidence_id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanEvidenceRows(rows)
}

func scanEvidenceRows(rows *sql.Rows) ([]Evidence, error) {
	var out []Evidence
	for rows.Next() {
		var ev Evidence
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

func (s *sqliteStore) CreateHook(ctx context.Context, h Hook) (string, error) {
	if h.ProspectID == "" || h.Type == "" {
		return "", errors.New("hook requires prospect_id and type")
	}
	if h.HookID == "" {
		h.HookID = uuid.NewString()
	}
	now := time.Now().UTC().Unix()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO hooks(hook_id, prospect_id, type, headline, quote, evidence_ids, freshness_days, score, confidence, status, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.HookID, h.ProspectID, h.Type, h.Headline, h.Quote, h.EvidenceIDs,
		h.FreshnessDays, h.Score, h.Confidence, h.Status, now)
	if err != nil {
		return "", err
	}
	return h.HookID, nil
}

func (s *sqliteStore) GetHook(ctx context.Context, hookID string) (*Hook, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT hook_id, prospect_id, type, headline, quote, evidence_ids, freshness_days, score, confidence, status, created_at
FROM hooks WHERE hook_id = ?`, hookID)
	var h Hook
	var createdAt int64
	err := row.Scan(&h.HookID, &h.ProspectID, &h.Type, &h.Headline, &h.Quote, &h.EvidenceIDs,
		&h.FreshnessDays, &h.Score, &h.Confidence, &h.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hook not found: %s", hookID)
	}
	if err != nil {
		return nil, err
	}
	h.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &h, nil
}

func (s *sqliteStore) ListHooks(ctx context.Context, prospectID string, limit int) ([]Hook, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT hook_id, prospect_id, type, headline, quote, evidence_ids, freshness_days, score, confidence, status, created_at
FROM hooks WHERE prospect_id = ? ORDER BY score DESC, created_at DESC LIMIT ?`, prospectID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Hook
	for rows.Next() {
		var h Hook
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

func (s *sqliteStore) CreateVariant(ctx context.Context, v Variant) (string, error) {
	if v.HookID == "" || v.Channel == "" || v.Body == "" {
		return "", errors.New("variant requires hook_id, channel, and body")
	}
	if v.VariantID == "" {
		v.VariantID = uuid.NewString()
	}
	if v.Language == "" {
		v.Language = "en"
	}
	now := time.Now().UTC().Unix()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO variants(variant_id, hook_id, channel, subject, body, language, tone, formality, style, model, evidence_ids, unsupported_claims, confidence, sms_alternate, whatsapp_alternate, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VariantID, v.HookID, v.Channel, v.Subject, v.Body, v.Language, v.Tone, v.Formality,
		v.Style, v.Model, v.EvidenceIDs, v.UnsupportedClaims, v.Confidence,
		v.SMSAlternate, v.WhatsAppAlternate, now)
	if err != nil {
		return "", err
	}
	return v.VariantID, nil
}

func (s *sqliteStore) GetVariant(ctx context.Context, variantID string) (*Variant, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT variant_id, hook_id, channel, subject, body, language, tone, formality, style, model, evidence_ids, unsupported_claims, confidence, sms_alternate, whatsapp_alternate, created_at
FROM variants WHERE variant_id = ?`, variantID)
	v, err := scanVariantRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("variant not found: %s", variantID)
	}
	return v, err
}

func (s *sqliteStore) ListVariantsForHook(ctx context.Context, hookID string) ([]Variant, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT variant_id, hook_id, channel, subject, body, language, tone, formality, style, model, evidence_ids, unsupported_claims, confidence, sms_alternate, whatsapp_alternate, created_at
FROM variants WHERE hook_id = ? ORDER BY created_at ASC`, hookID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Variant
	for rows.Next() {
		v, err := scanVariantRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVariantRow(row rowScanner) (*Variant, error) {
	var v Variant
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

func (s *sqliteStore) CreateSchedule(ctx context.Context, sc Schedule, steps []Step) (string, error) {
	if sc.ProspectID == "" || sc.CampaignID == "" {
		return "", errors.New("schedule requires prospect_id and campaign_id")
	}
	if sc.ScheduleID == "" {
		sc.ScheduleID = uuid.NewString()
	}
	if sc.Status == "" {
		sc.Status = "pending"
	}
	now := time.Now().UTC().Unix()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO schedules(schedule_id, prospect_id, campaign_id, status, consent, quiet_start_hour, quiet_end_hour, max_per_channel, domain_gap_days, created_at, started_at, completed_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)`,
		sc.ScheduleID, sc.ProspectID, sc.CampaignID, sc.Status, boolToInt(sc.Consent),
		sc.QuietStartHour, sc.QuietEndHour, sc.MaxPerChannel, sc.DomainGapDays, now); err != nil {
		return "", err
	}

	for _, st := range steps {
		if st.StepID == "" {
			st.StepID = uuid.NewString()
		}
		if st.Status == "" {
			st.Status = "pending"
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO steps(step_id, schedule_id, step_number, day_offset, channel, variant_id, status, attempts)
VALUES(?, ?, ?, ?, ?, ?, ?, 0)`,
			st.StepID, sc.ScheduleID, st.StepNumber, st.DayOffset, st.Channel, st.VariantID, st.Status); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return sc.ScheduleID, nil
}

func (s *sqliteStore) GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE schedule_id = ?`, scheduleID)
	sc, err := scanScheduleRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule not found: %s", scheduleID)
	}
	return sc, err
}

func (s *sqliteStore) ListSchedules(ctx context.Context, campaignID, status string) ([]Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules WHERE campaign_id = ?`
	args := []any{campaignID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at ASC`
	return s.querySchedules(ctx, q, args...)
}

func (s *sqliteStore) ListActiveSchedules(ctx context.Context) ([]Schedule, error) {
	return s.querySchedules(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE status = 'active' ORDER BY created_at ASC`)
}

func (s *sqliteStore) querySchedules(ctx context.Context, q string, args ...any) ([]Schedule, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Schedule
	for rows.Next() {
		sc, err := scanScheduleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

func scanScheduleRow(row rowScanner) (*Schedule, error) {
	var sc Schedule
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

// SetScheduleStatus updates a schedule's status, stamping started_at on the
// first transition to active and completed_at on completion.
func (s *sqliteStore) SetScheduleStatus(ctx context.Context, scheduleID, status string, at time.Time) error {
	ts := at.UTC().Unix()
	var err error
	switch status {
	case "active":
		_, err = s.DB.ExecContext(ctx,
			`UPDATE schedules SET status=?, started_at=COALESCE(started_at, ?) WHERE schedule_id=?`,
			status, ts, scheduleID)
	case "completed":
		_, err = s.DB.ExecContext(ctx,
			`UPDATE schedules SET status=?, completed_at=COALESCE(completed_at, ?) WHERE schedule_id=?`,
			status, ts, scheduleID)
	default:
		_, err = s.DB.ExecContext(ctx, `UPDATE schedules SET status=? WHERE schedule_id=?`, status, scheduleID)
	}
	return err
}

func (s *sqliteStore) ListSteps(ctx context.Context, scheduleID string) ([]Step, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE schedule_id = ? ORDER BY step_number ASC`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Step
	for rows.Next() {
		st, err := scanStepRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func scanStepRow(row rowScanner) (*Step, error) {
	var st Step
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

func (s *sqliteStore) ClaimStep(ctx context.Context, stepID string, maxAttempts int) (bool, error) {
	res, err := s.stmtClaimStep.ExecContext(ctx, stepID, maxAttempts)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *sqliteStore) ReleaseStep(ctx context.Context, stepID string) error {
	_, err := s.stmtReleaseStep.ExecContext(ctx, stepID)
	return err
}

func (s *sqliteStore) MarkStepSent(ctx context.Context, stepID, messageID string, at time.Time) error {
	_, err := s.stmtMarkSent.ExecContext(ctx, messageID, at.UTC().Unix(), stepID)
	return err
}

func (s *sqliteStore) MarkStepFailed(ctx context.Context, stepID string) error {
	_, err := s.stmtMarkFailed.ExecContext(ctx, stepID)
	return err
}

func (s *sqliteStore) MarkStepSkipped(ctx context.Context, stepID string) error {
	_, err := s.stmtMarkSkipped.ExecContext(ctx, stepID)
	return err
}

func (s *sqliteStore) FindStepByMessageID(ctx context.Context, messageID string) (*Step, error) {
	if messageID == "" {
		return nil, errors.New("message id required")
	}
	st, err := scanStepRow(s.stmtStepByMessage.QueryRowContext(ctx, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no step for message: %s", messageID)
	}
	return st, err
}

// RecordStepEvent sets the timestamp column for one delivery event. Columns
// are append-only: an already-set timestamp is kept. Provider metadata, when
// present, is kept as JSON on the step for auditing.
func (s *sqliteStore) RecordStepEvent(ctx context.Context, stepID, event string, at time.Time, meta map[string]string) error {
	col, ok := eventColumn(event)
	if !ok {
		return fmt.Errorf("unknown delivery event: %s", event)
	}
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		_, err = s.DB.ExecContext(ctx,
			`UPDATE steps SET `+col+` = COALESCE(`+col+`, ?), response_meta = ? WHERE step_id = ?`,
			at.UTC().Unix(), string(b), stepID)
		return err
	}
	_, err := s.DB.ExecContext(ctx,
		`UPDATE steps SET `+col+` = COALESCE(`+col+`, ?) WHERE step_id = ?`,
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

func (s *sqliteStore) AddSuppression(ctx context.Context, value, kind, reason string) error {
	if value == "" {
		return errors.New("suppression value required")
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO suppressions(value, kind, reason, created_at) VALUES(?, ?, ?, ?)
ON CONFLICT(value) DO NOTHING`,
		strings.ToLower(value), kind, reason, time.Now().UTC().Unix())
	return err
}

func (s *sqliteStore) IsSuppressed(ctx context.Context, values ...string) (bool, error) {
	var checked []any
	for _, v := range values {
		if v != "" {
			checked = append(checked, strings.ToLower(v))
		}
	}
	if len(checked) == 0 {
		return false, nil
	}
	q := `SELECT COUNT(*) FROM suppressions WHERE value IN (?` + strings.Repeat(",?", len(checked)-1) + `)`
	var n int
	if err := s.DB.QueryRowContext(ctx, q, checked...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqliteStore) ListSuppressions(ctx context.Context) ([]Suppression, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT value, kind, reason, created_at FROM suppressions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Suppression
	for rows.Next() {
		var sup Suppression
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

func (s *sqliteStore) SetConsent(ctx context.Context, prospectID, channel string, granted bool, source string) error {
	if prospectID == "" || channel == "" {
		return errors.New("consent requires prospect_id and channel")
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO consents(prospect_id, channel, granted, source, created_at) VALUES(?, ?, ?, ?, ?)
ON CONFLICT(prospect_id, channel) DO UPDATE SET granted=excluded.granted, source=excluded.source, created_at=excluded.created_at`,
		prospectID, channel, boolToInt(granted), source, time.Now().UTC().Unix())
	return err
}

func (s *sqliteStore) HasConsent(ctx context.Context, prospectID, channel string) (bool, error) {
	var granted int
	err := s.DB.QueryRowContext(ctx,
		`SELECT granted FROM consents WHERE prospect_id=? AND channel=?`, prospectID, channel).Scan(&granted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return granted != 0, nil
}

// --- Domain cooldown ---

func (s *sqliteStore) LastDomainSend(ctx context.Context, domain string) (*time.Time, error) {
	if domain == "" {
		return nil, nil
	}
	var ts int64
	err := s.stmtLastDomainSend.QueryRowContext(ctx, strings.ToLower(domain)).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := time.Unix(ts, 0).UTC()
	return &t, nil
}

func (s *sqliteStore) TouchDomainSend(ctx context.Context, domain string, at time.Time) error {
	if domain == "" {
		return nil
	}
	_, err := s.stmtTouchDomain.ExecContext(ctx, strings.ToLower(domain), at.UTC().Unix())
	return err
}

// --- Campaign rollup ---

func (s *sqliteStore) CampaignRollup(ctx context.Context, campaignID string) (Rollup, error) {
	var r Rollup
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schedules WHERE campaign_id = ?`, campaignID).Scan(&r.Schedules); err != nil {
		return r, err
	}
	err := s.DB.QueryRowContext(ctx, `
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
WHERE sc.campaign_id = ?`, campaignID).Scan(
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
