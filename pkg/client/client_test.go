package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:3861", "")
	if c.BaseURL != "http://localhost:3861" || c.APIKey != "" {
		t.Errorf("New: %+v", c)
	}
	c2 := New("http://localhost:3861", "secret")
	if c2.APIKey != "secret" {
		t.Errorf("New with key: %+v", c2)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()
	ok, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !ok {
		t.Fatal("Health: expected ok true")
	}
}

func TestHealth_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"down"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()
	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected error from 503")
	}
}

func TestClient_setsAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "mykey")
	ctx := context.Background()
	_, _ = c.Health(ctx)
	if gotKey != "mykey" {
		t.Errorf("X-API-Key: got %q", gotKey)
	}
}

func TestCreateSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/schedules" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"schedule_id":"sch-1","prospect_id":"p-1","campaign_id":"camp-1","status":"pending","steps":[{"step_id":"st-1","step_number":1,"day_offset":0,"channel":"email","status":"scheduled"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	sc, err := c.CreateSchedule(context.Background(), "p-1", "camp-1", []string{"v-1"})
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if sc.ScheduleID != "sch-1" || len(sc.Steps) != 1 || sc.Steps[0].Channel != "email" {
		t.Errorf("schedule: %+v", sc)
	}
}

func TestSweep_dryRunQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"schedules":2,"due":1,"dry_run":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	rep, err := c.Sweep(context.Background(), true)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if gotQuery != "dry_run=true" {
		t.Errorf("query: %q", gotQuery)
	}
	if rep.Schedules != 2 || rep.DryRun != 1 {
		t.Errorf("report: %+v", rep)
	}
}
