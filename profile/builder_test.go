package profile

import (
	"context"
	"testing"
	"time"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/store"
)

func newBuilder(t *testing.T) (*Builder, *store.InteractionAdapter, *store.CatalogAdapter, func()) {
	t.Helper()
	mem := store.NewMemoryStore()
	interactions := store.NewInteractionAdapter(mem, "")
	catalog := store.NewCatalogAdapter(mem, "")
	profiles := store.NewProfileAdapter(mem, "")
	b := &Builder{
		Interactions: interactions,
		Catalog:      catalog,
		Profiles:     profiles,
	}
	return b, interactions, catalog, func() { mem.Close() }
}

func record(t *testing.T, a *store.InteractionAdapter, userID, productID string, typ core.EventType) {
	t.Helper()
	err := a.Record(context.Background(), &core.InteractionEvent{
		UserID: userID, ProductID: productID, Type: typ, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestBuilderRebuild(t *testing.T) {
	ctx := context.Background()
	b, interactions, catalog, done := newBuilder(t)
	defer done()

	for _, prod := range []*core.Product{
		{ID: "p1", CategoryKey: "electronics", Brand: "apple", Condition: "good", Price: 300, City: "berlin", IsActive: true},
		{ID: "p2", CategoryKey: "electronics", Brand: "samsung", Condition: "fair", Price: 100, City: "hamburg", IsActive: true},
		{ID: "p3", CategoryKey: "furniture", Price: 50, IsActive: true},
	} {
		if err := catalog.PutProduct(ctx, prod); err != nil {
			t.Fatalf("PutProduct: %v", err)
		}
	}

	// p1 交互两次：计数加两次
	record(t, interactions, "alice", "p1", core.EventView)
	record(t, interactions, "alice", "p1", core.EventFavorite)
	record(t, interactions, "alice", "p2", core.EventView)
	record(t, interactions, "alice", "p3", core.EventView)

	prof, err := b.Rebuild(ctx, "alice")
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if got := prof.CategoryWeights["electronics"]; got != 3 {
		t.Errorf("CategoryWeights[electronics] = %d, want 3", got)
	}
	if got := prof.CategoryWeights["furniture"]; got != 1 {
		t.Errorf("CategoryWeights[furniture] = %d, want 1", got)
	}
	if got := prof.BrandWeights["apple"]; got != 2 {
		t.Errorf("BrandWeights[apple] = %d, want 2", got)
	}
	if _, ok := prof.BrandWeights[""]; ok {
		t.Error("empty brand must not be counted")
	}
	if !prof.HasPriceRange || prof.PriceMin != 50 || prof.PriceMax != 300 {
		t.Errorf("price range = [%v, %v] (has=%v), want [50, 300]", prof.PriceMin, prof.PriceMax, prof.HasPriceRange)
	}
	if !prof.PrefersCity("berlin") || !prof.PrefersCity("hamburg") {
		t.Error("locations must contain berlin and hamburg")
	}
	if prof.PrefersCity("") {
		t.Error("empty city must not be preferred")
	}
}

func TestBuilderRebuildReplacesProfile(t *testing.T) {
	ctx := context.Background()
	b, interactions, catalog, done := newBuilder(t)
	defer done()

	if err := catalog.PutProduct(ctx, &core.Product{ID: "p1", CategoryKey: "books", Price: 10, IsActive: true}); err != nil {
		t.Fatalf("PutProduct: %v", err)
	}

	// 先写一个带历史类目的旧画像
	old := core.NewUserProfile("alice")
	old.CategoryWeights["garden"] = 9
	if err := b.Profiles.PutProfile(ctx, old); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	record(t, interactions, "alice", "p1", core.EventView)
	prof, err := b.Rebuild(ctx, "alice")
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// 整体覆盖：旧类目不保留
	if _, ok := prof.CategoryWeights["garden"]; ok {
		t.Error("rebuild must replace, not merge")
	}

	stored, err := b.Profiles.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if _, ok := stored.CategoryWeights["garden"]; ok {
		t.Error("stored profile must be the rebuilt one")
	}
}

func TestBuilderNoResolvableInteractions(t *testing.T) {
	ctx := context.Background()
	b, interactions, _, done := newBuilder(t)
	defer done()

	// 只有无商品的搜索事件
	err := interactions.Record(ctx, &core.InteractionEvent{
		UserID: "alice", Type: core.EventSearch, Value: "bike", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, err := b.Rebuild(ctx, "alice"); !core.IsProfileNotFound(err) {
		t.Errorf("got %v, want ErrProfileNotFound", err)
	}
}

func TestBuilderUnknownProducts(t *testing.T) {
	ctx := context.Background()
	b, interactions, _, done := newBuilder(t)
	defer done()

	// 商品不在目录里：事件不可解析
	record(t, interactions, "alice", "ghost", core.EventView)

	if _, err := b.Rebuild(ctx, "alice"); !core.IsProfileNotFound(err) {
		t.Errorf("got %v, want ErrProfileNotFound", err)
	}
}

func TestBuilderEmptyUserID(t *testing.T) {
	b, _, _, done := newBuilder(t)
	defer done()

	if _, err := b.Rebuild(context.Background(), ""); !core.IsInvalidInput(err) {
		t.Errorf("got %v, want invalid input error", err)
	}
}
