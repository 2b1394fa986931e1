package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	xerrors "AgentDock/internal/errors"
	"AgentDock/internal/registry"
	"AgentDock/pkg/logger"
)

// AgentSource 定义调度器所需的注册表能力。
type AgentSource interface {
	Get(ctx context.Context, id string) (*registry.Agent, error)
}

// Service 受理执行请求并产出执行回执。
//
// 读取 Agent 后只做合成、不回写，因此与并发删除之间不需要跨键事务：
// 回执已经反规范化了它需要的全部字段。
type Service struct {
	agents  AgentSource
	backend Backend
	now     func() time.Time
	newID   func() string
}

// Option 定义可选的 Service 配置。
type Option func(*Service)

// WithClock 注入时间源，便于测试。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator 注入标识生成器，便于测试。
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService 构造执行调度服务。backend 为 nil 时退化为 NoopBackend。
func NewService(agents AgentSource, backend Backend, opts ...Option) *Service {
	if backend == nil {
		backend = NoopBackend{}
	}
	s := &Service{
		agents:  agents,
		backend: backend,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run 受理针对已存在 Agent 的执行请求。
//
// Agent 不存在时直接返回 NotFound，绝不会为不存在的 Agent 产出回执。
// 回执不落库：这是同步受理，不是被跟踪的作业。
func (s *Service) Run(ctx context.Context, agentID string, req RunRequest) (*Execution, error) {
	if s.agents == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "执行调度服务未初始化")
	}

	agent, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	input := req.Input
	if input == nil {
		input = map[string]any{}
	}

	exec := &Execution{
		ID:        s.newID(),
		AgentID:   agentID,
		AgentName: agent.Name,
		Status:    StatusRunning,
		StartTime: s.now(),
		Input:     input,
		Message:   fmt.Sprintf("Agent %s execution started successfully", agent.Name),
	}

	if err := s.backend.Submit(ctx, exec); err != nil {
		return nil, xerrors.Wrap(CodeExecutionSubmit, err, "交接执行请求失败")
	}

	logger.Audit().Info("执行请求受理成功",
		slog.String("execution_id", exec.ID),
		slog.String("agent_id", exec.AgentID),
		slog.String("agent_name", exec.AgentName),
	)
	return exec, nil
}

// Close 释放交接后端资源。
func (s *Service) Close() error {
	if s.backend != nil {
		return s.backend.Close()
	}
	return nil
}
