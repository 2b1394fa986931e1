package registry

import "testing"

func filterFixture() []*Agent {
	return []*Agent{
		{ID: "a1", Name: "Sales Bot", Description: "Handles quota questions", Category: "Sales"},
		{ID: "a2", Name: "Helper", Description: "A support bot", Category: "Support"},
	}
}

func TestFilterNoCriteria(t *testing.T) {
	got := Filter(filterFixture(), "", "")
	if len(got) != 2 {
		t.Fatalf("no criteria should pass everything, got %d", len(got))
	}
}

func TestFilterSearchMatchesNameOrDescription(t *testing.T) {
	// "bot" 同时命中第一条的名称和第二条的描述。
	got := Filter(filterFixture(), "bot", "")
	if len(got) != 2 {
		t.Fatalf("expected both agents for %q, got %d", "bot", len(got))
	}

	got = Filter(filterFixture(), "sales", "")
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("expected only a1 for %q, got %d", "sales", len(got))
	}

	got = Filter(filterFixture(), "SALES", "")
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("search must be case-insensitive, got %d", len(got))
	}
}

func TestFilterCategoryIsExact(t *testing.T) {
	got := Filter(filterFixture(), "", "Support")
	if len(got) != 1 || got[0].ID != "a2" {
		t.Fatalf("expected only a2 for Support, got %d", len(got))
	}

	got = Filter(filterFixture(), "", "support")
	if len(got) != 0 {
		t.Fatalf("category must be case-sensitive, got %d", len(got))
	}

	got = Filter(filterFixture(), "", CategoryAll)
	if len(got) != 2 {
		t.Fatalf("All must bypass the category filter, got %d", len(got))
	}
}

func TestFilterComposition(t *testing.T) {
	// 两个条件同时给出时取交集。
	got := Filter(filterFixture(), "sales", "Support")
	if len(got) != 0 {
		t.Fatalf("conjunction of non-overlapping criteria must be empty, got %d", len(got))
	}

	got = Filter(filterFixture(), "bot", "Support")
	if len(got) != 1 || got[0].ID != "a2" {
		t.Fatalf("expected only a2 for bot+Support, got %d", len(got))
	}
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	agents := filterFixture()
	got := Filter(agents, "bot", "")
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("filter must preserve input order")
	}
	if len(agents) != 2 {
		t.Fatalf("filter must not mutate its input")
	}
}
