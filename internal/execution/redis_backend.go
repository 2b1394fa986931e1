package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackendConfig 描述 Redis 交接队列的连接参数。
type RedisBackendConfig struct {
	Address  string
	Password string
	DB       int
	Queue    string
}

// RedisBackend 使用 Redis list 交接执行回执，供下游编排进程消费。
type RedisBackend struct {
	client *redis.Client
	queue  string
}

// NewRedisBackend 创建 Redis 交接后端。
func NewRedisBackend(cfg RedisBackendConfig) (*RedisBackend, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "agentdock:executions"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &RedisBackend{client: client, queue: queue}, nil
}

// Submit 将执行回执投递到 Redis。
func (b *RedisBackend) Submit(ctx context.Context, exec *Execution) error {
	payload, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("编码执行回执失败: %w", err)
	}
	if err := b.client.LPush(ctx, b.queue, payload).Err(); err != nil {
		return fmt.Errorf("Redis 投递执行回执失败: %w", err)
	}
	return nil
}

// Close 关闭 Redis 连接。
func (b *RedisBackend) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}

var _ Backend = (*RedisBackend)(nil)
