package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQBackendConfig 描述 RabbitMQ 交接队列的连接参数。
type RabbitMQBackendConfig struct {
	URL        string
	Queue      string
	Durable    bool
	AutoDelete bool
}

// RabbitMQBackend 使用 RabbitMQ 交接执行回执。
type RabbitMQBackend struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewRabbitMQBackend 创建 RabbitMQ 交接后端。
func NewRabbitMQBackend(cfg RabbitMQBackendConfig) (*RabbitMQBackend, error) {
	if cfg.URL == "" {
		return nil, errors.New("RabbitMQ URL 不能为空")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "agentdock.executions"
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建 RabbitMQ channel 失败: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, cfg.Durable, cfg.AutoDelete, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明 RabbitMQ 队列失败: %w", err)
	}
	return &RabbitMQBackend{conn: conn, ch: ch, queue: queue}, nil
}

// Submit 将执行回执投递到 RabbitMQ。
func (b *RabbitMQBackend) Submit(ctx context.Context, exec *Execution) error {
	if b == nil || b.ch == nil {
		return errors.New("RabbitMQ 后端未初始化")
	}
	payload, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("编码执行回执失败: %w", err)
	}
	return b.ch.PublishWithContext(ctx, "", b.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}

// Close 关闭 RabbitMQ 连接。
func (b *RabbitMQBackend) Close() error {
	if b == nil {
		return nil
	}
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

var _ Backend = (*RabbitMQBackend)(nil)
