package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/marketkit/promorank/core"
)

// stubSource 返回固定结果的召回源，用于合并策略测试。
type stubSource struct {
	name  string
	items []string
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, 0, len(s.items))
	for _, id := range s.items {
		out = append(out, core.NewItem(id))
	}
	return out, nil
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFanoutMergeFirst(t *testing.T) {
	f := &Fanout{
		Sources: []Source{
			&stubSource{name: "a", items: []string{"p1", "p2"}},
			&stubSource{name: "b", items: []string{"p2", "p3"}},
		},
		Dedup:         true,
		MaxConcurrent: 1, // 串行保证结果顺序可断言
	}

	items, err := f.Process(context.Background(), &core.RecommendContext{UserID: "u"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := ids(items)
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 unique items", got)
	}
	seen := make(map[string]bool)
	for _, id := range got {
		if seen[id] {
			t.Errorf("duplicate id %s after dedup", id)
		}
		seen[id] = true
	}
}

func TestFanoutSourceErrorDoesNotFail(t *testing.T) {
	f := &Fanout{
		Sources: []Source{
			&stubSource{name: "bad", err: errors.New("boom")},
			&stubSource{name: "good", items: []string{"p1"}},
		},
		Dedup: true,
	}

	items, err := f.Process(context.Background(), &core.RecommendContext{UserID: "u"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Errorf("got %v, want [p1] (failed source skipped)", ids(items))
	}
}

func TestFanoutRecallSourceLabel(t *testing.T) {
	f := &Fanout{
		Sources: []Source{&stubSource{name: "content", items: []string{"p1"}}},
		Dedup:   true,
	}
	items, err := f.Process(context.Background(), &core.RecommendContext{UserID: "u"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	lbl, ok := items[0].GetLabel("recall_source")
	if !ok || lbl.Value != "content" {
		t.Errorf("recall_source = %q, want content", lbl.Value)
	}
}
