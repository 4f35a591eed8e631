package similarity

import (
	"context"
	"testing"
	"time"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/store"
)

func seedInteractions(t *testing.T, adapter *store.InteractionAdapter, userID string, productIDs ...string) {
	t.Helper()
	for _, pid := range productIDs {
		err := adapter.Record(context.Background(), &core.InteractionEvent{
			UserID:    userID,
			ProductID: pid,
			Type:      core.EventView,
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("Record(%s, %s): %v", userID, pid, err)
		}
	}
}

func TestRebuilderRebuild(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	interactions := store.NewInteractionAdapter(mem, "")
	similarities := store.NewSimilarityAdapter(mem, "")

	// a 和 b 交集 {p1,p2}，并集 {p1,p2,p3,p4} -> 0.5
	// a 和 c 不相交 -> 0.0，不落盘
	seedInteractions(t, interactions, "a", "p1", "p2")
	seedInteractions(t, interactions, "b", "p1", "p2", "p3", "p4")
	seedInteractions(t, interactions, "c", "p9")

	r := &Rebuilder{
		Interactions: interactions,
		Similarities: similarities,
	}
	if err := r.Rebuild(ctx, "a"); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	sims, err := similarities.ListByUser(ctx, "a")
	if err != nil {
		t.Fatalf("ListByUser(a): %v", err)
	}
	if len(sims) != 1 {
		t.Fatalf("got %d rows for a, want 1 (only b above threshold)", len(sims))
	}
	if sims[0].OtherID != "b" || sims[0].Score != 0.5 {
		t.Errorf("got (%s, %v), want (b, 0.5)", sims[0].OtherID, sims[0].Score)
	}

	// 默认同时写反方向
	back, err := similarities.ListByUser(ctx, "b")
	if err != nil {
		t.Fatalf("ListByUser(b): %v", err)
	}
	if len(back) != 1 || back[0].OtherID != "a" || back[0].Score != 0.5 {
		t.Errorf("reverse row = %+v, want (a, 0.5)", back)
	}
}

func TestRebuilderOnlyForward(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	interactions := store.NewInteractionAdapter(mem, "")
	similarities := store.NewSimilarityAdapter(mem, "")

	seedInteractions(t, interactions, "a", "p1")
	seedInteractions(t, interactions, "b", "p1")

	r := &Rebuilder{
		Interactions: interactions,
		Similarities: similarities,
		OnlyForward:  true,
	}
	if err := r.Rebuild(ctx, "a"); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	back, err := similarities.ListByUser(ctx, "b")
	if err != nil {
		t.Fatalf("ListByUser(b): %v", err)
	}
	if len(back) != 0 {
		t.Errorf("got %d reverse rows, want 0 with OnlyForward", len(back))
	}
}

func TestRebuilderRetainThreshold(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	interactions := store.NewInteractionAdapter(mem, "")
	similarities := store.NewSimilarityAdapter(mem, "")

	// 交集 1，并集 10 -> 0.1，不大于阈值 0.1，不落盘
	seedInteractions(t, interactions, "a", "p1", "p2", "p3", "p4", "p5")
	seedInteractions(t, interactions, "b", "p1", "q2", "q3", "q4", "q5", "q6")

	r := &Rebuilder{
		Interactions: interactions,
		Similarities: similarities,
	}
	if err := r.Rebuild(ctx, "a"); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	sims, err := similarities.ListByUser(ctx, "a")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(sims) != 0 {
		t.Errorf("got %d rows, want 0 (score at threshold is not retained)", len(sims))
	}
}

func TestRebuilderCancelled(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()

	interactions := store.NewInteractionAdapter(mem, "")
	similarities := store.NewSimilarityAdapter(mem, "")
	seedInteractions(t, interactions, "a", "p1")
	seedInteractions(t, interactions, "b", "p1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Rebuilder{Interactions: interactions, Similarities: similarities}
	if err := r.Rebuild(ctx, "a"); err == nil {
		t.Error("Rebuild with cancelled context should fail")
	}
}

func TestRebuilderEmptyUserID(t *testing.T) {
	r := &Rebuilder{}
	if err := r.Rebuild(context.Background(), ""); !core.IsInvalidInput(err) {
		t.Errorf("got %v, want invalid input error", err)
	}
}

func TestBetween(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	interactions := store.NewInteractionAdapter(mem, "")
	seedInteractions(t, interactions, "a", "p1", "p2")
	seedInteractions(t, interactions, "b", "p2", "p3")

	r := &Rebuilder{Interactions: interactions}
	got, err := r.Between(ctx, "a", "b")
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	want := 1.0 / 3.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Between = %v, want %v", got, want)
	}
}
