package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestServerSmoke walks the whole pipeline over HTTP: prospect, evidence,
// mining, composition, schedule, campaign start, and a dry-run sweep.
func TestServerSmoke(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	app, err := NewApp(ServerOptions{Home: home, Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	ts := httptest.NewServer(app.Server.Handler)
	t.Cleanup(ts.Close)

	// health
	r1, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	if r1.StatusCode != 200 {
		t.Fatalf("/health status=%d", r1.StatusCode)
	}

	// create prospect
	resp, err := http.Post(ts.URL+"/prospects", "application/json", strings.NewReader(
		`{"name":"Kari Nordmann","company":"Fjellheim Dental","domain":"fjellheimdental.no",
		  "email":"kari@fjellheimdental.no","language":"en","industry":"dental"}`))
	if err != nil {
		t.Fatalf("POST /prospects: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("POST /prospects status=%d", resp.StatusCode)
	}
	var prospect struct {
		ProspectID string `json:"prospect_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&prospect); err != nil {
		t.Fatalf("decode prospect: %v", err)
	}
	if prospect.ProspectID == "" {
		t.Fatal("expected prospect_id")
	}

	// add fresh evidence
	published := time.Now().UTC().AddDate(0, 0, -3).Format(time.RFC3339)
	evBody := fmt.Sprintf(`{"source":"Trustpilot","title":"Fjellheim Dental reaches 500 reviews",
	  "snippet":"The clinic crossed 500 reviews with a 4.9 star rating. Patients love the service.",
	  "published_at":%q,"authority":0.9}`, published)
	evResp, err := http.Post(ts.URL+"/prospects/"+prospect.ProspectID+"/evidence", "application/json", strings.NewReader(evBody))
	if err != nil {
		t.Fatalf("POST evidence: %v", err)
	}
	if evResp.StatusCode != 200 {
		t.Fatalf("POST evidence status=%d", evResp.StatusCode)
	}

	// mine hooks
	mineResp, err := http.Post(ts.URL+"/prospects/"+prospect.ProspectID+"/hooks/mine", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST mine: %v", err)
	}
	if mineResp.StatusCode != 200 {
		t.Fatalf("POST mine status=%d", mineResp.StatusCode)
	}
	var hooks []struct {
		HookID string `json:"hook_id"`
		Type   string `json:"type"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(mineResp.Body).Decode(&hooks); err != nil {
		t.Fatalf("decode hooks: %v", err)
	}
	if len(hooks) == 0 {
		t.Fatal("expected at least one mined hook")
	}
	if hooks[0].Type != "review_win" {
		t.Errorf("hook type = %s, want review_win", hooks[0].Type)
	}

	// compose an email variant
	compResp, err := http.Post(ts.URL+"/hooks/"+hooks[0].HookID+"/variants", "application/json",
		strings.NewReader(`{"channel":"email","recipient_name":"Kari"}`))
	if err != nil {
		t.Fatalf("POST variants: %v", err)
	}
	if compResp.StatusCode != 200 {
		t.Fatalf("POST variants status=%d", compResp.StatusCode)
	}
	var variant struct {
		VariantID string `json:"variant_id"`
		Subject   string `json:"subject"`
		Body      string `json:"body"`
	}
	if err := json.NewDecoder(compResp.Body).Decode(&variant); err != nil {
		t.Fatalf("decode variant: %v", err)
	}
	if variant.VariantID == "" || variant.Subject == "" || variant.Body == "" {
		t.Fatalf("incomplete variant: %+v", variant)
	}

	// create and start a schedule
	schedBody := fmt.Sprintf(`{"prospect_id":%q,"campaign_id":"q3-dental","variant_ids":[%q]}`,
		prospect.ProspectID, variant.VariantID)
	schedResp, err := http.Post(ts.URL+"/schedules", "application/json", strings.NewReader(schedBody))
	if err != nil {
		t.Fatalf("POST /schedules: %v", err)
	}
	if schedResp.StatusCode != 200 {
		t.Fatalf("POST /schedules status=%d", schedResp.StatusCode)
	}
	var sched struct {
		ScheduleID string `json:"schedule_id"`
		Status     string `json:"status"`
		Steps      []struct {
			Channel string `json:"channel"`
		} `json:"steps"`
	}
	if err := json.NewDecoder(schedResp.Body).Decode(&sched); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	if sched.Status != "pending" || len(sched.Steps) == 0 {
		t.Fatalf("unexpected schedule: %+v", sched)
	}

	startResp, _ := http.Post(ts.URL+"/campaigns/q3-dental/start", "application/json", nil)
	if startResp.StatusCode != 200 {
		t.Fatalf("POST start status=%d", startResp.StatusCode)
	}

	// dry-run sweep: the first step is due immediately
	sweepResp, err := http.Post(ts.URL+"/sweep?dry_run=true", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sweep: %v", err)
	}
	var rep struct {
		Schedules int `json:"schedules"`
		Due       int `json:"due"`
		Sent      int `json:"sent"`
	}
	if err := json.NewDecoder(sweepResp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode sweep report: %v", err)
	}
	if rep.Schedules != 1 || rep.Due < 1 || rep.Sent != 0 {
		t.Errorf("unexpected sweep report: %+v", rep)
	}

	// campaign stats
	statsResp, _ := http.Get(ts.URL + "/campaigns/q3-dental/stats")
	if statsResp.StatusCode != 200 {
		t.Fatalf("GET stats status=%d", statsResp.StatusCode)
	}
	var stats struct {
		Schedules int `json:"schedules"`
	}
	if err := json.NewDecoder(statsResp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Schedules != 1 {
		t.Errorf("stats schedules = %d", stats.Schedules)
	}

	// SSE should produce initial connected event quickly.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/stream", nil)
	sseResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /stream: %v", err)
	}
	defer func() { _ = sseResp.Body.Close() }()

	sc := bufio.NewScanner(sseResp.Body)
	found := false
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, `"type":"connected"`) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("did not see connected event")
	}
}

func TestWebhookRejectsUnknownMessage(t *testing.T) {
	t.Parallel()
	app, err := NewApp(ServerOptions{Home: t.TempDir(), Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ts := httptest.NewServer(app.Server.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/webhooks/events", "application/json",
		strings.NewReader(`{"message_id":"no-such-message","event":"opened"}`))
	if err != nil {
		t.Fatalf("POST webhook: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Error == "" {
		t.Error("expected error message in JSON")
	}
}
