package registry

import "context"

// Store 抽象了 Agent 记录的持久化接口。
//
// Scan 与 QueryByCategory 的返回顺序均不做保证，需要稳定顺序的调用方
// 必须自行排序。所有实现都要求按键原子地完成单条写入。
type Store interface {
	// Put 幂等地写入记录，已存在时整体覆盖。
	Put(ctx context.Context, agent *Agent) error
	// Get 按键查询，记录不存在时返回 ErrAgentNotFound。
	Get(ctx context.Context, id string) (*Agent, error)
	// Scan 全表枚举。
	Scan(ctx context.Context) ([]*Agent, error)
	// QueryByCategory 按分类精确匹配（区分大小写），依赖分类二级索引。
	QueryByCategory(ctx context.Context, category string) ([]*Agent, error)
	// Delete 幂等删除，键不存在不视为错误。
	Delete(ctx context.Context, id string) error
	// UpdatePartial 对已存在的记录应用稀疏更新并返回更新后的完整记录，
	// 记录不存在时返回 ErrAgentNotFound，绝不隐式创建。
	UpdatePartial(ctx context.Context, id string, patch Patch) (*Agent, error)
	Close() error
}
