package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	xerrors "AgentDock/internal/errors"
	"AgentDock/pkg/logger"
)

// Service 拥有 Agent 的完整生命周期：校验输入、分配标识与时间戳、
// 选择扫描或索引查询策略、安全地应用稀疏更新。
//
// Service 本身无状态，所有一致性都委托给 Store 的按键原子性。
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
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

// NewService 构造注册表服务。
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// List 返回目录内容。category 为空或等于 CategoryAll 时全表扫描，
// 否则走分类二级索引。空结果是合法结果，不是错误。
func (s *Service) List(ctx context.Context, category string) ([]*Agent, error) {
	if s.store == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "注册表存储未初始化")
	}
	if category == "" || category == CategoryAll {
		return s.store.Scan(ctx)
	}
	return s.store.QueryByCategory(ctx, category)
}

// Get 返回指定的 Agent。
func (s *Service) Get(ctx context.Context, id string) (*Agent, error) {
	if s.store == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "注册表存储未初始化")
	}
	return s.store.Get(ctx, id)
}

// Create 校验并落库一个新的 Agent。
//
// 客户端提交的 id、createdAt、updatedAt 一律忽略，注册表是这些字段的
// 唯一来源；createdAt 与 updatedAt 在创建时相等。
func (s *Service) Create(ctx context.Context, draft *Agent) (*Agent, error) {
	if s.store == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "注册表存储未初始化")
	}
	if draft == nil {
		return nil, xerrors.New(CodeAgentValidation, "请求体不能为空")
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, xerrors.New(CodeAgentValidation, "name 不能为空")
	}
	if draft.Category == CategoryAll {
		return nil, xerrors.New(CodeAgentValidation, fmt.Sprintf("category 不能使用保留值 %s", CategoryAll))
	}

	now := s.now()
	agent := &Agent{
		ID:          s.newID(),
		Name:        draft.Name,
		Description: draft.Description,
		Category:    draft.Category,
		Attributes:  cloneAttributes(draft.Attributes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Put(ctx, agent); err != nil {
		return nil, err
	}
	logger.Audit().Info("agent 创建成功",
		slog.String("agent_id", agent.ID),
		slog.String("name", agent.Name),
		slog.String("category", agent.Category),
	)
	return agent, nil
}

// Update 对已存在的 Agent 应用稀疏更新。
//
// id 与 createdAt 在创建后不可变，Patch 解析阶段已经剥离；
// updatedAt 总是刷新，即使没有任何其他字段变化。
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Agent, error) {
	if s.store == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "注册表存储未初始化")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, xerrors.New(CodeAgentValidation, "name 不能为空")
	}
	if patch.Category != nil && *patch.Category == CategoryAll {
		return nil, xerrors.New(CodeAgentValidation, fmt.Sprintf("category 不能使用保留值 %s", CategoryAll))
	}

	patch.UpdatedAt = s.now()
	agent, err := s.store.UpdatePartial(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	logger.Audit().Info("agent 更新成功",
		slog.String("agent_id", agent.ID),
		slog.String("name", agent.Name),
	)
	return agent, nil
}

// Delete 幂等删除。键不存在同样返回成功，不泄露记录是否真实存在。
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "注册表存储未初始化")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Audit().Info("agent 删除完成", slog.String("agent_id", id))
	return nil
}

// Close 释放底层存储资源。
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
