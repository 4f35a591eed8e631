package filter

import (
	"context"
	"testing"
	"time"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pkg/utils"
	"github.com/marketkit/promorank/store"
)

func testCatalog(t *testing.T) *store.CatalogAdapter {
	t.Helper()
	mem := store.NewMemoryStore()
	t.Cleanup(func() { mem.Close() })

	catalog := store.NewCatalogAdapter(mem, "")
	ctx := context.Background()
	for _, prod := range []*core.Product{
		{ID: "live", IsActive: true},
		{ID: "gone", IsActive: false},
	} {
		if err := catalog.PutProduct(ctx, prod); err != nil {
			t.Fatalf("PutProduct: %v", err)
		}
	}
	return catalog
}

func TestActiveFilter(t *testing.T) {
	f := &ActiveFilter{Catalog: testCatalog(t)}
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"active product kept", "live", false},
		{"inactive product filtered", "gone", true},
		{"unknown id filtered", "ghost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(ctx, nil, core.NewItem(tt.id))
			if err != nil {
				t.Fatalf("ShouldFilter: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter(%s) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestBlacklistFilterStatic(t *testing.T) {
	f := NewBlacklistFilter([]string{"bad1", "bad2"}, nil, "")
	ctx := context.Background()

	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("bad1")); !got {
		t.Error("bad1 should be filtered")
	}
	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("ok")); got {
		t.Error("ok should be kept")
	}
}

func TestBlacklistFilterStoreBacked(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	if err := mem.Set(ctx, "blacklist:products", []byte(`["bad1"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	f := NewBlacklistFilter(nil, NewStoreBlacklist(mem), "blacklist:products")
	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("bad1")); !got {
		t.Error("store-backed bad1 should be filtered")
	}
	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("ok")); got {
		t.Error("ok should be kept")
	}

	// key 不存在等同于空黑名单
	missing := NewBlacklistFilter(nil, NewStoreBlacklist(mem), "blacklist:missing")
	if got, _ := missing.ShouldFilter(ctx, nil, core.NewItem("bad1")); got {
		t.Error("missing key must not filter anything")
	}
}

func TestSeenFilter(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	interactions := store.NewInteractionAdapter(mem, "")
	now := time.Now()
	for _, ev := range []*core.InteractionEvent{
		{UserID: "alice", ProductID: "old", Type: core.EventView, CreatedAt: now.Add(-48 * time.Hour)},
		{UserID: "alice", ProductID: "recent", Type: core.EventView, CreatedAt: now.Add(-time.Hour)},
	} {
		if err := interactions.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	rctx := &core.RecommendContext{UserID: "alice"}

	// 无窗口：全部历史都算
	all := &SeenFilter{Interactions: interactions}
	if got, _ := all.ShouldFilter(ctx, rctx, core.NewItem("old")); !got {
		t.Error("old should be filtered without window")
	}
	if got, _ := all.ShouldFilter(ctx, rctx, core.NewItem("fresh")); got {
		t.Error("fresh should be kept")
	}

	// 24h 窗口：窗口外的交互不算
	windowed := &SeenFilter{Interactions: interactions, Window: 24 * time.Hour}
	if got, _ := windowed.ShouldFilter(ctx, rctx, core.NewItem("old")); got {
		t.Error("old is outside the window, should be kept")
	}
	if got, _ := windowed.ShouldFilter(ctx, rctx, core.NewItem("recent")); !got {
		t.Error("recent is inside the window, should be filtered")
	}
}

func TestHiddenFilter(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	if err := mem.Set(ctx, "user:hidden:alice", []byte(`["spam"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	f := &HiddenFilter{Store: mem}
	rctx := &core.RecommendContext{UserID: "alice"}

	if got, _ := f.ShouldFilter(ctx, rctx, core.NewItem("spam")); !got {
		t.Error("spam should be filtered")
	}
	if got, _ := f.ShouldFilter(ctx, rctx, core.NewItem("ok")); got {
		t.Error("ok should be kept")
	}

	// 没有隐藏列表的用户不受影响
	other := &core.RecommendContext{UserID: "bob"}
	if got, _ := f.ShouldFilter(ctx, other, core.NewItem("spam")); got {
		t.Error("bob has no hidden list, spam should be kept")
	}
}

func TestExprFilter(t *testing.T) {
	ctx := context.Background()

	item := core.NewItem("p1")
	item.Score = 0.3
	item.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty expr keeps all", "", false},
		{"score rule hits", "item.score < 0.5", true},
		{"score rule misses", "item.score > 0.5", false},
		{"label rule hits", `label.recall_source == "popular"`, true},
		{"combined rule", `label.recall_source == "popular" && item.score < 0.5`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ExprFilter{Expr: tt.expr}
			got, err := f.ShouldFilter(ctx, nil, item)
			if err != nil {
				t.Fatalf("ShouldFilter: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExprFilterMissingLabelErrors(t *testing.T) {
	f := &ExprFilter{Expr: `label.boost_type == "URGENT"`}
	item := core.NewItem("p1")

	if _, err := f.ShouldFilter(context.Background(), nil, item); err == nil {
		t.Error("accessing a missing label key must error")
	}
}

// erroringFilter 模拟一个总是失败的过滤器。
type erroringFilter struct{}

func (erroringFilter) Name() string { return "filter.broken" }

func (erroringFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, context.DeadlineExceeded
}

func TestFilterNode(t *testing.T) {
	ctx := context.Background()
	node := &FilterNode{Filters: []Filter{
		erroringFilter{}, // 出错的过滤器跳过，不拦截
		NewBlacklistFilter([]string{"bad"}, nil, ""),
	}}

	items := []*core.Item{
		core.NewItem("ok"),
		core.NewItem("bad"),
		nil,
	}
	out, err := node.Process(ctx, &core.RecommendContext{UserID: "alice"}, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].ID != "ok" {
		t.Errorf("Process = %v, want only ok", out)
	}

	// 被过滤的 item 带上过滤原因标签
	if lbl, ok := items[1].Labels["filtered"]; !ok || lbl.Source != "filter.blacklist" {
		t.Errorf("filtered label = %+v, want source filter.blacklist", items[1].Labels)
	}
}

func TestFilterNodeNoFilters(t *testing.T) {
	node := &FilterNode{}
	items := []*core.Item{core.NewItem("p1")}

	out, err := node.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("Process without filters = %v, want passthrough", out)
	}
}
