// Package httpapi serves the outreach engine over HTTP: prospect and evidence
// ingestion, hook mining, variant composition, schedule control, the sweep
// trigger, delivery webhooks, and an SSE event stream.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/channel"
	"github.com/cobaltline/outreach/internal/compose"
	"github.com/cobaltline/outreach/internal/config"
	"github.com/cobaltline/outreach/internal/evidence"
	"github.com/cobaltline/outreach/internal/hook"
	"github.com/cobaltline/outreach/internal/otel"
	"github.com/cobaltline/outreach/internal/schedule"
	"github.com/cobaltline/outreach/internal/store"
	"github.com/cobaltline/outreach/internal/store/postgres"
)

// Version is stamped by the release build; "dev" otherwise.
var Version = "dev"

// defaultMaxRequestBodyBytes is the default limit for request body size (1 MiB).
const defaultMaxRequestBodyBytes = 1 << 20

// ServerOptions configures the HTTP server (home dir, listen addr, API key, DB, metrics).
type ServerOptions struct {
	Home           string
	Addr           string
	Dev            bool
	APIKey         string       // if set, require X-API-Key header or query api_key
	DBDriver       string       // "sqlite" (default) or "postgres"
	DBURL          string       // for postgres: connection string
	MetricsHandler http.Handler // if set, used for /metrics (e.g. OTel Prometheus handler)
	UseOtelHTTP    bool         // if true, wrap handler with otelhttp for request metrics
}

// App holds the HTTP server, SSE hub, store, and the pipeline components.
type App struct {
	Server    *http.Server
	Hub       *SSEHub
	Store     store.Store
	Evidence  evidence.Store
	Ranker    *hook.Ranker
	Composer  *compose.Composer
	Scheduler *schedule.Scheduler
	Home      string
}

// NewApp creates the HTTP app and registers all routes.
func NewApp(opts ServerOptions) (*App, error) {
	hub := NewSSEHub()
	mux := http.NewServeMux()

	var st store.Store
	var err error
	if opts.DBDriver == "postgres" {
		st, err = postgres.Open(opts.DBURL)
	} else {
		st, err = store.Open(opts.Home)
	}
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.Home)
	if err != nil {
		return nil, err
	}

	es := evidence.New(st, nil)
	ranker := hook.NewRanker(es, st, slog.Default())
	// Keep the interface nil when no backend is configured; a typed nil
	// pointer would defeat the composer's nil check.
	var gen compose.Generator
	if g := compose.NewOpenAIGenerator(cfg.LLM); g != nil {
		gen = g
	}
	composer := compose.NewComposer(st, es, gen, slog.Default())
	scheduler := schedule.NewScheduler(st, schedule.Options{
		Transports: channel.NewRegistry(cfg.Providers),
		Languages:  cfg.Languages,
		Caps: schedule.Caps{
			QuietStartHour: cfg.Caps.QuietStartHour,
			QuietEndHour:   cfg.Caps.QuietEndHour,
			MaxPerChannel:  cfg.Caps.MaxPerChannel,
			DomainGapDays:  cfg.Caps.DomainGapDays,
		},
		Publish: hub.Publish,
	})

	app := &App{
		Hub:       hub,
		Store:     st,
		Evidence:  es,
		Ranker:    ranker,
		Composer:  composer,
		Scheduler: scheduler,
		Home:      opts.Home,
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	if opts.MetricsHandler != nil {
		mux.Handle("/metrics", opts.MetricsHandler)
	} else {
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			schedules, _ := st.ListActiveSchedules(r.Context())
			_, _ = fmt.Fprintf(w, "# TYPE outreach_schedules_active gauge\n")
			_, _ = fmt.Fprintf(w, "outreach_schedules_active %d\n", len(schedules))
		})
	}

	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.Config{Home: opts.Home, Version: Version})
	})

	mux.HandleFunc("/stream", hub.Handler())

	mux.HandleFunc("/prospects", app.handleProspects)
	mux.HandleFunc("/prospects/", app.handleProspectScoped)
	mux.HandleFunc("/hooks/", app.handleHookScoped)
	mux.HandleFunc("/schedules", app.handleSchedules)
	mux.HandleFunc("/schedules/", app.handleScheduleScoped)
	mux.HandleFunc("/campaigns/", app.handleCampaignScoped)
	mux.HandleFunc("/sweep", app.handleSweep)
	mux.HandleFunc("/webhooks/events", app.handleWebhookEvent)
	mux.HandleFunc("/suppressions", app.handleSuppressions)

	var handler http.Handler = mux
	handler = bodyLimitMiddleware(defaultMaxRequestBodyBytes, handler)
	if opts.APIKey != "" {
		handler = apiKeyMiddleware(opts.APIKey, handler)
	}
	if opts.Dev {
		handler = corsMiddleware(handler)
	}
	if opts.UseOtelHTTP {
		handler = otelhttp.NewHandler(handler, "http.server")
	}
	handler = requestLogMiddleware(handler)

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.RegisterOnShutdown(func() {
		_ = st.Close()
	})
	app.Server = srv
	return app, nil
}

// --- Prospects ---

func (a *App) handleProspects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ps, err := a.Store.ListProspects(r.Context(), queryInt(r, "limit", 0))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]models.Prospect, 0, len(ps))
		for _, p := range ps {
			out = append(out, apiProspect(p))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var body models.Prospect
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Name == "" {
			writeJSONError(w, http.StatusBadRequest, "name required")
			return
		}
		id, err := a.Store.CreateProspect(r.Context(), storeProspect(body))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.Store.GetProspect(r.Context(), id)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, apiProspect(*p))
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProspectScoped dispatches /prospects/{id} and its sub-resources:
// evidence, hooks, hooks/mine, consent.
func (a *App) handleProspectScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/prospects/")
	parts := strings.Split(rest, "/")
	if len(parts) < 1 || parts[0] == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	prospectID := parts[0]

	p, err := a.Store.GetProspect(r.Context(), prospectID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "prospect not found")
		return
	}

	if len(parts) == 1 || parts[1] == "" {
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, apiProspect(*p))
		return
	}

	switch parts[1] {
	case "evidence":
		a.handleProspectEvidence(w, r, prospectID)
	case "hooks":
		if len(parts) >= 3 && parts[2] == "mine" {
			a.handleMineHooks(w, r, prospectID)
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		hooks, err := a.Store.ListHooks(r.Context(), prospectID, queryInt(r, "limit", 0))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]models.Hook, 0, len(hooks))
		for _, h := range hooks {
			out = append(out, apiHook(h))
		}
		writeJSON(w, out)
	case "consent":
		a.handleConsent(w, r, prospectID)
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

func (a *App) handleProspectEvidence(w http.ResponseWriter, r *http.Request, prospectID string) {
	switch r.Method {
	case http.MethodGet:
		f := store.EvidenceFilter{Limit: queryInt(r, "limit", 0)}
		if src := r.URL.Query().Get("source"); src != "" {
			f.Sources = []string{src}
		}
		evs, err := a.Evidence.GetEvidenceForProspect(r.Context(), prospectID, f)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]models.Evidence, 0, len(evs))
		for _, ev := range evs {
			out = append(out, apiEvidence(ev))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var body models.Evidence
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Title == "" || body.Source == "" {
			writeJSONError(w, http.StatusBadRequest, "title and source required")
			return
		}
		if body.PublishedAt.IsZero() {
			writeJSONError(w, http.StatusBadRequest, "published_at required")
			return
		}
		id, err := a.Evidence.StoreEvidence(r.Context(), storeEvidence(prospectID, body))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]any{"evidence_id": id})
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *App) handleMineHooks(w http.ResponseWriter, r *http.Request, prospectID string) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		MaxDaysOld int `json:"max_days_old"`
		Limit      int `json:"limit"`
	}
	// An empty body means defaults.
	_ = json.NewDecoder(r.Body).Decode(&body)

	hooks, err := a.Ranker.Mine(r.Context(), prospectID, body.MaxDaysOld, body.Limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]models.Hook, 0, len(hooks))
	for _, h := range hooks {
		otel.RecordHookMined(r.Context(), h.Status)
		out = append(out, apiHook(h))
	}
	a.Hub.Publish(models.StreamEvent{Type: models.StreamHooksMined, ProspectID: prospectID, Count: len(out)})
	writeJSON(w, out)
}

func (a *App) handleConsent(w http.ResponseWriter, r *http.Request, prospectID string) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Channel string `json:"channel"`
		Granted bool   `json:"granted"`
		Source  string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !models.ValidChannel(body.Channel) {
		writeJSONError(w, http.StatusBadRequest, "unknown channel")
		return
	}
	if err := a.Store.SetConsent(r.Context(), prospectID, body.Channel, body.Granted, body.Source); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// --- Hooks ---

func (a *App) handleHookScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/hooks/")
	parts := strings.Split(rest, "/")
	if len(parts) < 1 || parts[0] == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	hookID := parts[0]

	if len(parts) == 1 || parts[1] == "" {
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h, err := a.Store.GetHook(r.Context(), hookID)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "hook not found")
			return
		}
		writeJSON(w, apiHook(*h))
		return
	}

	if parts[1] != "variants" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		vs, err := a.Store.ListVariantsForHook(r.Context(), hookID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]models.Variant, 0, len(vs))
		for _, v := range vs {
			out = append(out, apiVariant(v))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var body struct {
			Channel        string `json:"channel"`
			Tone           string `json:"tone"`
			Formality      string `json:"formality"`
			Style          string `json:"style"`
			Language       string `json:"language"`
			RecipientName  string `json:"recipient_name"`
			CompanyContext string `json:"company_context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Channel == "" {
			writeJSONError(w, http.StatusBadRequest, "channel required")
			return
		}
		v, err := a.Composer.Generate(r.Context(), compose.Request{
			HookID:         hookID,
			Channel:        body.Channel,
			Voice:          compose.VoiceProfile{Tone: body.Tone, Formality: body.Formality, Style: body.Style},
			Language:       body.Language,
			RecipientName:  body.RecipientName,
			CompanyContext: body.CompanyContext,
		})
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		otel.RecordVariantComposed(r.Context(), v.Channel)
		a.Hub.Publish(models.StreamEvent{Type: models.StreamVariantComposed, HookID: hookID, VariantID: v.VariantID, Channel: v.Channel})
		writeJSON(w, apiVariant(*v))
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Schedules and campaigns ---

func (a *App) handleSchedules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		ProspectID string   `json:"prospect_id"`
		CampaignID string   `json:"campaign_id"`
		VariantIDs []string `json:"variant_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProspectID == "" || body.CampaignID == "" || len(body.VariantIDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "prospect_id, campaign_id, and variant_ids required")
		return
	}
	id, err := a.Scheduler.CreateSchedule(r.Context(), body.ProspectID, body.CampaignID, body.VariantIDs)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.writeSchedule(w, r, id)
}

func (a *App) handleScheduleScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/schedules/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	a.writeSchedule(w, r, id)
}

func (a *App) writeSchedule(w http.ResponseWriter, r *http.Request, scheduleID string) {
	sc, err := a.Store.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "schedule not found")
		return
	}
	steps, err := a.Store.ListSteps(r.Context(), scheduleID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, apiSchedule(*sc, steps))
}

func (a *App) handleCampaignScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/campaigns/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	campaignID := parts[0]

	switch parts[1] {
	case "start", "pause":
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var n int
		var err error
		if parts[1] == "start" {
			n, err = a.Scheduler.StartCampaign(r.Context(), campaignID)
		} else {
			n, err = a.Scheduler.PauseCampaign(r.Context(), campaignID)
		}
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, map[string]any{"campaign_id": campaignID, "schedules": n})
	case "stats":
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		stats, err := a.Scheduler.Stats(r.Context(), campaignID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, stats)
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

// --- Sweep, webhooks, suppressions ---

func (a *App) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"
	rep, err := a.Scheduler.ExecuteSends(r.Context(), dryRun)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, rep)
}

func (a *App) handleWebhookEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		MessageID string            `json:"message_id"`
		Event     string            `json:"event"`
		Metadata  map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.MessageID == "" || body.Event == "" {
		writeJSONError(w, http.StatusBadRequest, "message_id and event required")
		return
	}
	if err := a.Scheduler.HandleResponse(r.Context(), body.MessageID, body.Event, body.Metadata); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (a *App) handleSuppressions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sup, err := a.Store.ListSuppressions(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]models.Suppression, 0, len(sup))
		for _, s := range sup {
			out = append(out, apiSuppression(s))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var body models.Suppression
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Value == "" {
			writeJSONError(w, http.StatusBadRequest, "value required")
			return
		}
		if body.Kind != models.SuppressDomain && body.Kind != models.SuppressAddress {
			writeJSONError(w, http.StatusBadRequest, "kind must be domain or address")
			return
		}
		if err := a.Store.AddSuppression(r.Context(), body.Value, body.Kind, body.Reason); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Middleware and helpers ---

// limitBody wraps r.Body with http.MaxBytesReader so handlers cannot read more than maxBytes.
func limitBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
}

// bodyLimitMiddleware limits request body size for POST, PUT, PATCH to prevent OOM.
func bodyLimitMiddleware(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			limitBody(w, r, maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware sets CORS headers for dev mode (dashboard dev server on a different origin).
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func apiKeyMiddleware(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/health" || path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}
		if key != apiKey {
			writeJSONError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseRecorder captures status code for logging and forwards Flusher if supported.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		slog.Info("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeJSONError sends a JSON body {"error": "message"} with the given status code.
func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}
