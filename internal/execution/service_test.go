package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	xerrors "AgentDock/internal/errors"
	"AgentDock/internal/registry"
)

// recordingBackend 记录交接出去的回执，用于断言提交路径。
type recordingBackend struct {
	submitted []*Execution
	err       error
}

func (b *recordingBackend) Submit(_ context.Context, exec *Execution) error {
	if b.err != nil {
		return b.err
	}
	b.submitted = append(b.submitted, exec)
	return nil
}

func (b *recordingBackend) Close() error { return nil }

func newExecutionFixture(t *testing.T, backend Backend) (*Service, *registry.Service) {
	t.Helper()
	agents := registry.NewService(registry.NewMemoryStore())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(agents, backend,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "exec-1" }),
	)
	return svc, agents
}

func TestRunProducesReceipt(t *testing.T) {
	backend := &recordingBackend{}
	svc, agents := newExecutionFixture(t, backend)
	ctx := context.Background()

	agent, err := agents.Create(ctx, &registry.Agent{Name: "Sales Bot", Category: "Sales"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	exec, err := svc.Run(ctx, agent.ID, RunRequest{Input: map[string]any{"query": "quota"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if exec.ID == "" || exec.ID == agent.ID {
		t.Fatalf("execution must get its own id, got %q", exec.ID)
	}
	if exec.AgentID != agent.ID || exec.AgentName != "Sales Bot" {
		t.Fatalf("unexpected agent reference: %+v", exec)
	}
	if exec.Status != StatusRunning {
		t.Fatalf("expected running status, got %q", exec.Status)
	}
	if exec.Input["query"] != "quota" {
		t.Fatalf("input must pass through: %v", exec.Input)
	}
	if exec.Message != "Agent Sales Bot execution started successfully" {
		t.Fatalf("unexpected message: %q", exec.Message)
	}
	if len(backend.submitted) != 1 || backend.submitted[0].ID != exec.ID {
		t.Fatalf("receipt must be handed to the backend")
	}
}

func TestRunDefaultsInputToEmptyObject(t *testing.T) {
	svc, agents := newExecutionFixture(t, nil)
	ctx := context.Background()

	agent, err := agents.Create(ctx, &registry.Agent{Name: "Sales Bot"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	exec, err := svc.Run(ctx, agent.ID, RunRequest{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exec.Input == nil || len(exec.Input) != 0 {
		t.Fatalf("missing input must default to an empty object, got %v", exec.Input)
	}
}

func TestRunMissingAgent(t *testing.T) {
	backend := &recordingBackend{}
	svc, _ := newExecutionFixture(t, backend)

	_, err := svc.Run(context.Background(), "missing", RunRequest{})
	if !errors.Is(err, registry.ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	if len(backend.submitted) != 0 {
		t.Fatalf("no receipt may be produced for a missing agent")
	}
}

func TestRunReceiptSurvivesAgentDeletion(t *testing.T) {
	svc, agents := newExecutionFixture(t, nil)
	ctx := context.Background()

	agent, err := agents.Create(ctx, &registry.Agent{Name: "Sales Bot"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	exec, err := svc.Run(ctx, agent.ID, RunRequest{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := agents.Delete(ctx, agent.ID); err != nil {
		t.Fatalf("delete agent: %v", err)
	}
	if exec.AgentName != "Sales Bot" {
		t.Fatalf("receipt snapshot must survive deletion: %q", exec.AgentName)
	}
}

func TestRunBackendFailure(t *testing.T) {
	backend := &recordingBackend{err: errors.New("broker unavailable")}
	svc, agents := newExecutionFixture(t, backend)
	ctx := context.Background()

	agent, err := agents.Create(ctx, &registry.Agent{Name: "Sales Bot"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	_, err = svc.Run(ctx, agent.ID, RunRequest{})
	if xerrors.CodeOf(err) != CodeExecutionSubmit {
		t.Fatalf("expected submit failure code, got %v", err)
	}
}
