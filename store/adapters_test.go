package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/marketkit/promorank/core"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	t.Cleanup(func() { m.Close() })
	return m
}

func TestInteractionAdapterRecord(t *testing.T) {
	ctx := context.Background()
	m := newTestStore(t)
	dirty := NewDirtyAdapter(m, "")
	a := NewInteractionAdapter(m, "")
	a.Dirty = dirty

	now := time.Now()
	events := []*core.InteractionEvent{
		{UserID: "alice", ProductID: "p1", Type: core.EventView, CreatedAt: now},
		{UserID: "alice", ProductID: "p2", Type: core.EventFavorite, CreatedAt: now.Add(time.Second)},
	}
	for _, ev := range events {
		if err := a.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := a.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].ProductID != "p1" || got[1].ProductID != "p2" {
		t.Errorf("ListByUser order wrong: %+v", got)
	}

	// 用户列表去重
	userIDs, err := a.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if !reflect.DeepEqual(userIDs, []string{"alice"}) {
		t.Errorf("ListUserIDs = %v, want [alice]", userIDs)
	}

	// 落库后进入待重建队列
	marked, err := dirty.Drain(ctx, 10)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !reflect.DeepEqual(marked, []string{"alice"}) {
		t.Errorf("Drain = %v, want [alice]", marked)
	}
}

func TestInteractionAdapterEmpty(t *testing.T) {
	ctx := context.Background()
	a := NewInteractionAdapter(newTestStore(t), "")

	got, err := a.ListByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListByUser = %v, want empty", got)
	}

	if err := a.Record(ctx, &core.InteractionEvent{UserID: ""}); !core.IsInvalidInput(err) {
		t.Errorf("Record(empty user) = %v, want invalid input", err)
	}
}

func TestCatalogAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewCatalogAdapter(newTestStore(t), "")

	if err := a.PutProduct(ctx, &core.Product{ID: ""}); !core.IsInvalidInput(err) {
		t.Errorf("PutProduct(empty id) = %v, want invalid input", err)
	}

	for _, prod := range []*core.Product{
		{ID: "p2", IsActive: true},
		{ID: "p1", IsActive: true},
		{ID: "p3", IsActive: false},
	} {
		if err := a.PutProduct(ctx, prod); err != nil {
			t.Fatalf("PutProduct(%s): %v", prod.ID, err)
		}
	}

	// 在架商品按 ID 升序，下架不返回
	active, err := a.ActiveProducts(ctx)
	if err != nil {
		t.Fatalf("ActiveProducts: %v", err)
	}
	if len(active) != 2 || active[0].ID != "p1" || active[1].ID != "p2" {
		t.Errorf("ActiveProducts = %+v, want [p1 p2]", active)
	}

	// 未知 ID 跳过不报错
	got, err := a.ProductsByIDs(ctx, []string{"p1", "missing", "p3"})
	if err != nil {
		t.Fatalf("ProductsByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p3" {
		t.Errorf("ProductsByIDs = %+v, want [p1 p3]", got)
	}
}

func TestBoostAdapterPutReplacesSameType(t *testing.T) {
	ctx := context.Background()
	a := NewBoostAdapter(newTestStore(t), "")
	now := time.Now()

	put := func(typ core.BoostType, level int) {
		t.Helper()
		err := a.Put(ctx, &core.ProductBoost{
			ProductID: "p1", Type: typ, Level: level,
			StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour),
			Active: true, CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	put(core.BoostFeatured, 1)
	put(core.BoostFeatured, 3) // 同类型覆盖
	put(core.BoostSponsored, 2)

	active, err := a.ActiveBoostsForProduct(ctx, "p1", now)
	if err != nil {
		t.Fatalf("ActiveBoostsForProduct: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("got %d boosts, want 2 (same type replaced)", len(active))
	}
	for _, b := range active {
		if b.Type == core.BoostFeatured && b.Level != 3 {
			t.Errorf("featured level = %d, want 3", b.Level)
		}
	}

	boosted, err := a.IsBoosted(ctx, "p1", now)
	if err != nil {
		t.Fatalf("IsBoosted: %v", err)
	}
	if !boosted {
		t.Error("IsBoosted = false, want true")
	}
}

func TestBoostAdapterActiveBoostsOrder(t *testing.T) {
	ctx := context.Background()
	a := NewBoostAdapter(newTestStore(t), "")
	now := time.Now()

	for _, b := range []*core.ProductBoost{
		{ProductID: "p2", Type: core.BoostFeatured, Level: 1, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Active: true},
		{ProductID: "p1", Type: core.BoostUrgent, Level: 2, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Active: true},
		{ProductID: "p1", Type: core.BoostFeatured, Level: 5, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Active: true},
		// 未生效：不在窗口内
		{ProductID: "p3", Type: core.BoostFeatured, Level: 9, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), Active: true},
	} {
		if err := a.Put(ctx, b); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	active, err := a.ActiveBoosts(ctx, now)
	if err != nil {
		t.Fatalf("ActiveBoosts: %v", err)
	}
	// 商品 ID 升序，同商品 Level 降序
	if len(active) != 3 {
		t.Fatalf("got %d boosts, want 3", len(active))
	}
	if active[0].ProductID != "p1" || active[0].Level != 5 {
		t.Errorf("active[0] = %s/%d, want p1/5", active[0].ProductID, active[0].Level)
	}
	if active[1].ProductID != "p1" || active[1].Level != 2 {
		t.Errorf("active[1] = %s/%d, want p1/2", active[1].ProductID, active[1].Level)
	}
	if active[2].ProductID != "p2" {
		t.Errorf("active[2] = %s, want p2", active[2].ProductID)
	}
}

func TestBoostAdapterExpire(t *testing.T) {
	ctx := context.Background()
	a := NewBoostAdapter(newTestStore(t), "")
	now := time.Now()

	for _, b := range []*core.ProductBoost{
		{ProductID: "p1", Type: core.BoostFeatured, Level: 1, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour), Active: true},
		{ProductID: "p2", Type: core.BoostFeatured, Level: 1, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Active: true},
	} {
		if err := a.Put(ctx, b); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	expired, err := a.ExpireBoosts(ctx, now)
	if err != nil {
		t.Fatalf("ExpireBoosts: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want 1", expired)
	}

	// 重复执行幂等
	expired, err = a.ExpireBoosts(ctx, now)
	if err != nil {
		t.Fatalf("ExpireBoosts again: %v", err)
	}
	if expired != 0 {
		t.Errorf("second pass expired = %d, want 0", expired)
	}

	active, err := a.ActiveBoosts(ctx, now)
	if err != nil {
		t.Fatalf("ActiveBoosts: %v", err)
	}
	if len(active) != 1 || active[0].ProductID != "p2" {
		t.Errorf("ActiveBoosts = %+v, want only p2", active)
	}
}

func TestProfileAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewProfileAdapter(newTestStore(t), "")

	if _, err := a.GetProfile(ctx, "nobody"); !core.IsProfileNotFound(err) {
		t.Errorf("GetProfile(nobody) = %v, want profile not found", err)
	}

	p := core.NewUserProfile("alice")
	p.CategoryWeights["electronics"] = 2
	if err := a.PutProfile(ctx, p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	got, err := a.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.CategoryWeights["electronics"] != 2 {
		t.Errorf("CategoryWeights = %v, want electronics=2", got.CategoryWeights)
	}

	if err := a.DeleteProfile(ctx, "alice"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if _, err := a.GetProfile(ctx, "alice"); !core.IsProfileNotFound(err) {
		t.Errorf("GetProfile after delete = %v, want profile not found", err)
	}
}

func TestSimilarityAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewSimilarityAdapter(newTestStore(t), "")
	now := time.Now()

	for _, sim := range []*core.UserSimilarity{
		{UserID: "alice", OtherID: "carol", Score: 0.5, LastCalculated: now},
		{UserID: "alice", OtherID: "bob", Score: 0.8, LastCalculated: now},
		{UserID: "alice", OtherID: "dave", Score: 0.5, LastCalculated: now},
	} {
		if err := a.PutSimilarity(ctx, sim); err != nil {
			t.Fatalf("PutSimilarity: %v", err)
		}
	}

	// 分数降序，同分按对端 ID 升序
	got, err := a.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	order := make([]string, 0, len(got))
	for _, s := range got {
		order = append(order, s.OtherID)
	}
	if !reflect.DeepEqual(order, []string{"bob", "carol", "dave"}) {
		t.Errorf("order = %v, want [bob carol dave]", order)
	}

	// 同对端覆盖不追加
	err = a.PutSimilarity(ctx, &core.UserSimilarity{
		UserID: "alice", OtherID: "bob", Score: 0.1, LastCalculated: now,
	})
	if err != nil {
		t.Fatalf("PutSimilarity(update): %v", err)
	}
	got, err = a.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3 (replaced, not appended)", len(got))
	}
	if got[len(got)-1].OtherID != "bob" || got[len(got)-1].Score != 0.1 {
		t.Errorf("updated bob not last with 0.1: %+v", got)
	}
}

func TestDirtyAdapterDrainOldestFirst(t *testing.T) {
	ctx := context.Background()
	a := NewDirtyAdapter(newTestStore(t), "")
	base := time.Now()

	if err := a.Mark(ctx, "carol", base.Add(2*time.Second)); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := a.Mark(ctx, "alice", base); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := a.Mark(ctx, "bob", base.Add(time.Second)); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	got, err := a.Drain(ctx, 2)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Errorf("Drain = %v, want [alice bob] (oldest first)", got)
	}

	rest, err := a.Drain(ctx, 10)
	if err != nil {
		t.Fatalf("Drain rest: %v", err)
	}
	if !reflect.DeepEqual(rest, []string{"carol"}) {
		t.Errorf("Drain rest = %v, want [carol]", rest)
	}

	empty, err := a.Drain(ctx, 10)
	if err != nil {
		t.Fatalf("Drain empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Drain empty = %v, want none", empty)
	}

	if err := a.Mark(ctx, "", base); !core.IsInvalidInput(err) {
		t.Errorf("Mark(empty user) = %v, want invalid input", err)
	}
}
