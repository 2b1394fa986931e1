package execution

import "context"

// Backend 是真实工作负载编排后端的扩展缝。
//
// Submit 在受理回执构建完成后被调用，把执行交接给编排系统（容器、
// 作业队列等）。无论接入哪种后端，调度器对客户端的返回契约不变：
// 同样的字段、同样的立即受理语义。
type Backend interface {
	Submit(ctx context.Context, exec *Execution) error
	Close() error
}

// NoopBackend 不做任何交接，仅受理。是未接入编排系统时的默认实现。
type NoopBackend struct{}

// Submit 实现 Backend 接口。
func (NoopBackend) Submit(context.Context, *Execution) error { return nil }

// Close 实现 Backend 接口。
func (NoopBackend) Close() error { return nil }

var _ Backend = NoopBackend{}
