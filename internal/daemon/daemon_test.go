package daemon

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/cobaltline/outreach/internal/httpapi"
	"github.com/cobaltline/outreach/internal/store"
	"github.com/cobaltline/outreach/pkg/models"
)

func TestStartForeground_emptyHome(t *testing.T) {
	ctx := context.Background()
	err := StartForeground(ctx, StartOptions{Home: ""})
	if err == nil {
		t.Fatal("StartForeground empty home: expected error")
	}
}

func TestStatus_notRunning(t *testing.T) {
	st, err := Status(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Running {
		t.Errorf("expected not running, got %+v", st)
	}
}

func testApp(t *testing.T) (*httpapi.App, context.Context) {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	app, err := httpapi.NewApp(httpapi.ServerOptions{Home: home, Addr: ":0"})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, context.Background()
}

func TestRunSweepLoop_processesDueSteps(t *testing.T) {
	app, ctx := testApp(t)
	defer func() { _ = app.Store.Close() }()

	pid, err := app.Store.CreateProspect(ctx, store.Prospect{
		Name: "Kari", Email: "kari@example.no", Domain: "example.no", Language: "en",
	})
	if err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	hookID, err := app.Store.CreateHook(ctx, store.Hook{
		ProspectID: pid, Type: models.HookMilestone, Headline: "Milestone", Status: models.HookApproved,
	})
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	vid, err := app.Store.CreateVariant(ctx, store.Variant{
		HookID: hookID, Channel: models.ChannelEmail, Subject: "Hi", Body: "Body.",
	})
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}
	sid, err := app.Scheduler.CreateSchedule(ctx, pid, "c1", []string{vid})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if _, err := app.Scheduler.StartCampaign(ctx, "c1"); err != nil {
		t.Fatalf("start campaign: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	go runSweepLoop(runCtx, StartOptions{SweepIntervalSec: 0.01}, app)

	// With no transports configured, the due step is claimed and then skipped
	// as unroutable. Either way the sweep loop must move it out of pending.
	var step store.Step
	for i := 0; i < 100; i++ {
		steps, _ := app.Store.ListSteps(ctx, sid)
		if len(steps) > 0 && steps[0].Status != models.StepStatusPending {
			step = steps[0]
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	time.Sleep(50 * time.Millisecond)

	if step.Status != models.StepStatusSkipped {
		t.Errorf("step status = %q, want skipped", step.Status)
	}
}

func TestSweepLoopPublishesReport(t *testing.T) {
	app, ctx := testApp(t)
	defer func() { _ = app.Store.Close() }()

	pid, _ := app.Store.CreateProspect(ctx, store.Prospect{
		Name: "Ola", Email: "ola@example.no", Domain: "example.no", Language: "en",
	})
	hookID, _ := app.Store.CreateHook(ctx, store.Hook{
		ProspectID: pid, Type: models.HookAward, Headline: "Award", Status: models.HookApproved,
	})
	vid, _ := app.Store.CreateVariant(ctx, store.Variant{
		HookID: hookID, Channel: models.ChannelEmail, Subject: "Hi", Body: "Body.",
	})
	if _, err := app.Scheduler.CreateSchedule(ctx, pid, "c2", []string{vid}); err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if _, err := app.Scheduler.StartCampaign(ctx, "c2"); err != nil {
		t.Fatalf("start campaign: %v", err)
	}

	ch := app.Hub.Subscribe()
	defer app.Hub.Unsubscribe(ch)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go runSweepLoop(runCtx, StartOptions{SweepIntervalSec: 0.01}, app)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-ch:
			var payload map[string]any
			if err := json.Unmarshal(raw, &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if payload["type"] == "sweep" {
				if due, ok := payload["due"].(float64); !ok || due < 1 {
					t.Errorf("sweep event due = %v", payload["due"])
				}
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for sweep event")
		}
	}
}
