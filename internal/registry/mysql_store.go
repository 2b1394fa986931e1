package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	stdErrors "errors"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	xerrors "AgentDock/internal/errors"
)

// MySQLConfig 描述 MySQL 存储的连接与连接池参数。
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// MySQLStore 使用 MySQL 保存 Agent 记录。
//
// agents 表带有 idx_agent_category 二级索引，QueryByCategory 走索引而非全表扫描；
// category 列使用二进制排序规则，保证精确匹配区分大小写。
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 建立连接、配置连接池并执行内嵌迁移。
func NewMySQLStore(ctx context.Context, cfg MySQLConfig) (*MySQLStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "MySQL DSN 不能为空")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "连接 MySQL 失败")
	}

	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 20
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = 10 * time.Minute
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "无法连接到 MySQL")
	}

	store := &MySQLStore{db: db}
	if err := store.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

const agentColumns = `id, name, description, category, attributes, created_at, updated_at`

// Put 幂等写入，已存在时整体覆盖。
func (s *MySQLStore) Put(ctx context.Context, agent *Agent) error {
	if agent == nil {
		return xerrors.New(xerrors.CodeInvalidArgument, "agent 不能为空")
	}
	if strings.TrimSpace(agent.ID) == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "agent ID 不能为空")
	}

	attributes, err := marshalAttributes(agent.Attributes)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeInvalidArgument, err, "编码 agent attributes 失败")
	}

	const stmt = `INSERT INTO agents (` + agentColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
        name = VALUES(name), description = VALUES(description), category = VALUES(category),
        attributes = VALUES(attributes), created_at = VALUES(created_at), updated_at = VALUES(updated_at)`

	_, err = s.db.ExecContext(ctx, stmt,
		agent.ID,
		agent.Name,
		agent.Description,
		agent.Category,
		attributes,
		agent.CreatedAt.Unix(),
		agent.UpdatedAt.Unix(),
	)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "写入 agent 失败")
	}
	return nil
}

// Get 查询指定记录。
func (s *MySQLStore) Get(ctx context.Context, id string) (*Agent, error) {
	const stmt = `SELECT ` + agentColumns + ` FROM agents WHERE id = ?`

	agent, err := scanAgent(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询 agent 失败")
	}
	return agent, nil
}

// Scan 全表枚举，不保证顺序。
func (s *MySQLStore) Scan(ctx context.Context) ([]*Agent, error) {
	const stmt = `SELECT ` + agentColumns + ` FROM agents`
	return s.queryAgents(ctx, stmt)
}

// QueryByCategory 按分类索引精确查询。
func (s *MySQLStore) QueryByCategory(ctx context.Context, category string) ([]*Agent, error) {
	const stmt = `SELECT ` + agentColumns + ` FROM agents WHERE category = ?`
	return s.queryAgents(ctx, stmt, category)
}

func (s *MySQLStore) queryAgents(ctx context.Context, stmt string, args ...any) ([]*Agent, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询 agent 列表失败")
	}
	defer rows.Close()

	agents := make([]*Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析 agent 记录失败")
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "遍历 agent 列表失败")
	}
	return agents, nil
}

// Delete 幂等删除。
func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "删除 agent 失败")
	}
	return nil
}

// UpdatePartial 基于封闭字段集构造稀疏 SET 子句。
//
// attributes 通过 JSON_MERGE_PATCH 原子合并，值为 null 的键即删除。
func (s *MySQLStore) UpdatePartial(ctx context.Context, id string, patch Patch) (*Agent, error) {
	assignments := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if patch.Name != nil {
		assignments = append(assignments, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Category != nil {
		assignments = append(assignments, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Attributes != nil {
		encoded, err := json.Marshal(patch.Attributes)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "编码 attributes 更新失败")
		}
		assignments = append(assignments, "attributes = JSON_MERGE_PATCH(COALESCE(attributes, '{}'), ?)")
		args = append(args, string(encoded))
	}
	updatedAt := patch.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, updatedAt.Unix())
	args = append(args, id)

	stmt := "UPDATE agents SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "更新 agent 失败")
	}
	// RowsAffected 为 0 既可能是行不存在，也可能是新值与旧值一致，
	// 统一用读回结果区分：读不到即 NotFound。
	return s.Get(ctx, id)
}

// Close 关闭底层数据库连接。
func (s *MySQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*Agent, error) {
	var agent Agent
	var description sql.NullString
	var attributes sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(
		&agent.ID,
		&agent.Name,
		&description,
		&agent.Category,
		&attributes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	agent.Description = description.String
	agent.CreatedAt = time.Unix(createdAt, 0).UTC()
	agent.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	decoded, err := unmarshalAttributes(attributes)
	if err != nil {
		return nil, err
	}
	agent.Attributes = decoded
	return &agent, nil
}

func marshalAttributes(attrs map[string]any) (sql.NullString, error) {
	if len(attrs) == 0 {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

func unmarshalAttributes(raw sql.NullString) (map[string]any, error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil, nil
	}
	var attrs map[string]any
	if err := json.Unmarshal([]byte(raw.String), &attrs); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	return attrs, nil
}

var _ Store = (*MySQLStore)(nil)
