package registry

import (
	"context"
	"strings"
	"sync"

	xerrors "AgentDock/internal/errors"
)

// MemoryStore 以内存方式保存 Agent 记录，主要用于测试与本地开发。
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewMemoryStore 创建 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{agents: make(map[string]*Agent)}
}

// Put 实现 Store 接口。
func (m *MemoryStore) Put(_ context.Context, agent *Agent) error {
	if agent == nil {
		return xerrors.New(xerrors.CodeInvalidArgument, "agent 不能为空")
	}
	if strings.TrimSpace(agent.ID) == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "agent ID 不能为空")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[agent.ID] = agent.Clone()
	return nil
}

// Get 返回指定记录。
func (m *MemoryStore) Get(_ context.Context, id string) (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agent, ok := m.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return agent.Clone(), nil
}

// Scan 枚举全部记录，顺序不做保证。
func (m *MemoryStore) Scan(_ context.Context) ([]*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]*Agent, 0, len(m.agents))
	for _, agent := range m.agents {
		results = append(results, agent.Clone())
	}
	return results, nil
}

// QueryByCategory 按分类精确匹配。
func (m *MemoryStore) QueryByCategory(_ context.Context, category string) ([]*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]*Agent, 0)
	for _, agent := range m.agents {
		if agent.Category == category {
			results = append(results, agent.Clone())
		}
	}
	return results, nil
}

// Delete 幂等删除。
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.agents, id)
	return nil
}

// UpdatePartial 对已存在的记录应用稀疏更新。
func (m *MemoryStore) UpdatePartial(_ context.Context, id string, patch Patch) (*Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	patch.apply(agent)
	return agent.Clone(), nil
}

// Close 对内存存储无需操作。
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
