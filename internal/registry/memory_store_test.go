package registry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAgent(id, name, category string) *Agent {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Agent{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Category:    category,
		Attributes:  map[string]any{"model": "gpt-4"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	agent := newTestAgent("agent-1", "Sales Bot", "Sales")
	if err := store.Put(ctx, agent); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Sales Bot" || got.Category != "Sales" {
		t.Fatalf("unexpected agent: %+v", got)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestMemoryStoreClonesOnReadAndWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	agent := newTestAgent("agent-1", "Sales Bot", "Sales")
	if err := store.Put(ctx, agent); err != nil {
		t.Fatalf("put: %v", err)
	}

	// 写入后修改原对象不应影响存储内容。
	agent.Name = "mutated"
	agent.Attributes["model"] = "mutated"

	got, err := store.Get(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Sales Bot" {
		t.Fatalf("store leaked caller mutation: %q", got.Name)
	}
	if got.Attributes["model"] != "gpt-4" {
		t.Fatalf("store leaked attribute mutation: %v", got.Attributes["model"])
	}

	// 读出后的修改同样不应影响存储内容。
	got.Attributes["model"] = "claude"
	again, err := store.Get(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Attributes["model"] != "gpt-4" {
		t.Fatalf("store leaked reader mutation: %v", again.Attributes["model"])
	}
}

func TestMemoryStoreQueryByCategoryIsExact(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, newTestAgent("a1", "Sales Bot", "Sales")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, newTestAgent("a2", "Support Bot", "Support")); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.QueryByCategory(ctx, "Sales")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("expected only a1, got %d agents", len(got))
	}

	// 分类匹配区分大小写。
	got, err = store.QueryByCategory(ctx, "sales")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected case-sensitive match, got %d agents", len(got))
	}
}

func TestMemoryStoreScanEmpty(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty scan, got %d agents", len(got))
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, newTestAgent("a1", "Sales Bot", "Sales")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete existing: %v", err)
	}
	if err := store.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete missing should succeed: %v", err)
	}
	if _, err := store.Get(ctx, "a1"); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected agent gone, got %v", err)
	}
}

func TestMemoryStoreUpdatePartial(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, newTestAgent("a1", "Sales Bot", "Sales")); err != nil {
		t.Fatalf("put: %v", err)
	}

	name := "Renamed Bot"
	stamp := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	got, err := store.UpdatePartial(ctx, "a1", Patch{
		Name:       &name,
		Attributes: map[string]any{"version": "2", "model": nil},
		UpdatedAt:  stamp,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got.Name != "Renamed Bot" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Description != "Sales Bot description" {
		t.Fatalf("description should be untouched: %q", got.Description)
	}
	if got.Category != "Sales" {
		t.Fatalf("category should be untouched: %q", got.Category)
	}
	if got.Attributes["version"] != "2" {
		t.Fatalf("attribute not merged: %v", got.Attributes)
	}
	if _, ok := got.Attributes["model"]; ok {
		t.Fatalf("null attribute should delete the key: %v", got.Attributes)
	}
	if !got.UpdatedAt.Equal(stamp) {
		t.Fatalf("updatedAt not stamped: %v", got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("createdAt must not change: %v", got.CreatedAt)
	}
}

func TestMemoryStoreUpdatePartialMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.UpdatePartial(context.Background(), "missing", Patch{})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}
