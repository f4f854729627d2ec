package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, opts ServerOptions) *httptest.Server {
	t.Helper()
	if opts.Home == "" {
		opts.Home = t.TempDir()
	}
	opts.Addr = "127.0.0.1:0"
	app, err := NewApp(opts)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ts := httptest.NewServer(app.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{APIKey: "sekrit"})

	// /health is exempt.
	r, _ := http.Get(ts.URL + "/health")
	if r.StatusCode != 200 {
		t.Errorf("/health without key status=%d", r.StatusCode)
	}

	// Everything else requires the key.
	r2, _ := http.Get(ts.URL + "/prospects")
	if r2.StatusCode != 401 {
		t.Errorf("no key status=%d, want 401", r2.StatusCode)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/prospects", nil)
	req.Header.Set("X-API-Key", "sekrit")
	r3, _ := http.DefaultClient.Do(req)
	if r3.StatusCode != 200 {
		t.Errorf("header key status=%d", r3.StatusCode)
	}

	r4, _ := http.Get(ts.URL + "/prospects?api_key=sekrit")
	if r4.StatusCode != 200 {
		t.Errorf("query key status=%d", r4.StatusCode)
	}
}

func TestProspectNotFound(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{})

	r, _ := http.Get(ts.URL + "/prospects/nope")
	if r.StatusCode != 404 {
		t.Errorf("status = %d, want 404", r.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" {
		t.Error("expected error message")
	}
}

func TestCreateProspectValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{})

	r, _ := http.Post(ts.URL+"/prospects", "application/json", strings.NewReader(`{"company":"NoName AS"}`))
	if r.StatusCode != 400 {
		t.Errorf("missing name status=%d, want 400", r.StatusCode)
	}

	r2, _ := http.Post(ts.URL+"/prospects", "application/json", strings.NewReader(`not json`))
	if r2.StatusCode != 400 {
		t.Errorf("bad json status=%d, want 400", r2.StatusCode)
	}
}

func TestEvidenceValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{})

	resp, _ := http.Post(ts.URL+"/prospects", "application/json", strings.NewReader(`{"name":"Ola"}`))
	var p struct {
		ProspectID string `json:"prospect_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Missing published_at.
	r, _ := http.Post(ts.URL+"/prospects/"+p.ProspectID+"/evidence", "application/json",
		strings.NewReader(`{"source":"Trustpilot","title":"something"}`))
	if r.StatusCode != 400 {
		t.Errorf("missing published_at status=%d, want 400", r.StatusCode)
	}
}

func TestSuppressionsEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{})

	r, _ := http.Post(ts.URL+"/suppressions", "application/json",
		strings.NewReader(`{"value":"spam.example","kind":"carrier-pigeon"}`))
	if r.StatusCode != 400 {
		t.Errorf("bad kind status=%d, want 400", r.StatusCode)
	}

	r2, _ := http.Post(ts.URL+"/suppressions", "application/json",
		strings.NewReader(`{"value":"Spam.Example","kind":"domain","reason":"manual"}`))
	if r2.StatusCode != 200 {
		t.Fatalf("add suppression status=%d", r2.StatusCode)
	}

	r3, _ := http.Get(ts.URL + "/suppressions")
	var sups []struct {
		Value string `json:"value"`
		Kind  string `json:"kind"`
	}
	if err := json.NewDecoder(r3.Body).Decode(&sups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sups) != 1 || sups[0].Value != "spam.example" || sups[0].Kind != "domain" {
		t.Errorf("unexpected suppressions: %+v", sups)
	}
}

func TestConsentEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{})

	resp, _ := http.Post(ts.URL+"/prospects", "application/json", strings.NewReader(`{"name":"Ola","phone":"+4790000000"}`))
	var p struct {
		ProspectID string `json:"prospect_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	r, _ := http.Post(ts.URL+"/prospects/"+p.ProspectID+"/consent", "application/json",
		strings.NewReader(`{"channel":"fax","granted":true}`))
	if r.StatusCode != 400 {
		t.Errorf("unknown channel status=%d, want 400", r.StatusCode)
	}

	r2, _ := http.Post(ts.URL+"/prospects/"+p.ProspectID+"/consent", "application/json",
		strings.NewReader(`{"channel":"sms","granted":true,"source":"signup-form"}`))
	if r2.StatusCode != 200 {
		t.Errorf("grant consent status=%d", r2.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, ServerOptions{})

	req, _ := http.NewRequest("DELETE", ts.URL+"/prospects", nil)
	r, _ := http.DefaultClient.Do(req)
	if r.StatusCode != 405 {
		t.Errorf("DELETE /prospects status=%d, want 405", r.StatusCode)
	}

	r2, _ := http.Get(ts.URL + "/sweep")
	if r2.StatusCode != 405 {
		t.Errorf("GET /sweep status=%d, want 405", r2.StatusCode)
	}
}
