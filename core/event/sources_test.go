package event

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/schedule"
)

func TestReminderSource_LoadPending(t *testing.T) {
	repo := newFakeRepo()
	conf := core.NewConfig()
	log := &testLogger{}
	ctx := context.Background()

	now := time.Now().UTC()
	_, _ = repo.CreateMeeting(ctx, Meeting{ID: "m-past", Title: "Old", StartAt: now.Add(-time.Hour)})
	_, _ = repo.CreateMeeting(ctx, Meeting{ID: "m-soon", Title: "Soon", StartAt: now.Add(2 * time.Hour)})
	_, _ = repo.CreateContest(ctx, Contest{ID: "c-past", Platform: PlatformLeetCode, StartAt: now.Add(-2 * time.Hour), EndAt: now.Add(-time.Hour)})
	_, _ = repo.CreateContest(ctx, Contest{ID: "c-soon", Platform: PlatformCodeforces, StartAt: now.Add(3 * time.Hour), EndAt: now.Add(5 * time.Hour)})

	items, err := NewReminderSource(repo, conf, log).LoadPending(ctx)
	if err != nil {
		t.Fatalf("LoadPending() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("LoadPending() returned %d item(s); want 2 (past records excluded)", len(items))
	}

	byID := make(map[string]schedule.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	mtg, ok := byID["m-soon"]
	if !ok || mtg.Kind != schedule.KindMeeting {
		t.Fatalf("missing meeting item; got %v", items)
	}
	if want := now.Add(2 * time.Hour).Add(-conf.Schedule.ReminderLead); !mtg.TriggerAt.Equal(want) {
		t.Errorf("meeting trigger = %v; want %v", mtg.TriggerAt, want)
	}

	cst, ok := byID["c-soon"]
	if !ok || cst.Kind != schedule.KindContest || cst.Platform != PlatformCodeforces {
		t.Fatalf("missing contest item; got %v", items)
	}
	if want := now.Add(3 * time.Hour).Add(-conf.Schedule.ReminderLead); !cst.TriggerAt.Equal(want) {
		t.Errorf("contest trigger = %v; want %v", cst.TriggerAt, want)
	}
}

func TestResultSource_LoadPending(t *testing.T) {
	repo := newFakeRepo()
	conf := core.NewConfig()
	log := &testLogger{}
	ctx := context.Background()

	now := time.Now().UTC()
	// ended long ago: excluded
	_, _ = repo.CreateContest(ctx, Contest{ID: "c-done", Platform: PlatformLeetCode, StartAt: now.Add(-5 * time.Hour), EndAt: now.Add(-3 * time.Hour)})
	// running right now: still pending collection
	_, _ = repo.CreateContest(ctx, Contest{ID: "c-live", Platform: PlatformCodeChef, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour)})
	// upcoming
	_, _ = repo.CreateContest(ctx, Contest{ID: "c-next", Platform: PlatformLeetCode, StartAt: now.Add(24 * time.Hour), EndAt: now.Add(26 * time.Hour)})

	items, err := NewResultSource(repo, conf, log).LoadPending(ctx)
	if err != nil {
		t.Fatalf("LoadPending() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("LoadPending() returned %d item(s); want 2", len(items))
	}

	byID := make(map[string]schedule.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	if _, ok := byID["c-done"]; ok {
		t.Error("ended contest was loaded for result collection")
	}
	live, ok := byID["c-live"]
	if !ok {
		t.Fatal("running contest missing from pending set")
	}
	if want := now.Add(time.Hour).Add(conf.Schedule.ResultGrace); !live.TriggerAt.Equal(want) {
		t.Errorf("live contest trigger = %v; want %v", live.TriggerAt, want)
	}
}
