package registry

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAgentMarshalFlattensAttributes(t *testing.T) {
	agent := &Agent{
		ID:          "a1",
		Name:        "Sales Bot",
		Description: "Handles quota questions",
		Category:    "Sales",
		Attributes:  map[string]any{"model": "gpt-4", "version": "2"},
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(agent)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc["id"] != "a1" || doc["name"] != "Sales Bot" {
		t.Fatalf("fixed fields missing: %v", doc)
	}
	if doc["model"] != "gpt-4" || doc["version"] != "2" {
		t.Fatalf("attributes must be flattened to the top level: %v", doc)
	}
	if _, ok := doc["attributes"]; ok {
		t.Fatalf("attributes must not appear as a nested object")
	}
	if doc["createdAt"] != "2026-03-01T10:00:00Z" {
		t.Fatalf("unexpected createdAt encoding: %v", doc["createdAt"])
	}
}

func TestAgentMarshalReservedKeysWin(t *testing.T) {
	agent := &Agent{
		ID:         "a1",
		Name:       "Sales Bot",
		Attributes: map[string]any{"name": "hijack"},
	}

	data, err := json.Marshal(agent)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["name"] != "Sales Bot" {
		t.Fatalf("fixed field must win over a shadowing attribute: %v", doc["name"])
	}
}

func TestAgentUnmarshalCollectsUnknownFields(t *testing.T) {
	var agent Agent
	body := `{"name":"Sales Bot","category":"Sales","model":"gpt-4","maxTurns":5}`
	if err := json.Unmarshal([]byte(body), &agent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if agent.Name != "Sales Bot" || agent.Category != "Sales" {
		t.Fatalf("fixed fields not decoded: %+v", agent)
	}
	if agent.Attributes["model"] != "gpt-4" {
		t.Fatalf("unknown fields must land in attributes: %v", agent.Attributes)
	}
	if agent.Attributes["maxTurns"] != float64(5) {
		t.Fatalf("numeric attribute lost: %v", agent.Attributes)
	}
	if _, ok := agent.Attributes["name"]; ok {
		t.Fatalf("fixed fields must not duplicate into attributes")
	}
}

func TestAgentCloneIsDeep(t *testing.T) {
	agent := newTestAgent("a1", "Sales Bot", "Sales")
	clone := agent.Clone()

	clone.Name = "mutated"
	clone.Attributes["model"] = "mutated"

	if agent.Name != "Sales Bot" || agent.Attributes["model"] != "gpt-4" {
		t.Fatalf("clone must not share state with the original: %+v", agent)
	}
}
