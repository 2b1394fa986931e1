package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"AgentDock/internal/execution"
	"AgentDock/internal/observability/metrics"
	"AgentDock/internal/registry"
)

// Server 负责暴露 REST 接口，是注册表与执行调度器的无状态门面。
type Server struct {
	addr       string
	agents     *registry.Service
	executions *execution.Service
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, agents *registry.Service, executions *execution.Service) *Server {
	return &Server{addr: addr, agents: agents, executions: executions}
}

// Handler 返回完整装配的路由，测试可以直接挂到 httptest 上。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /agents", s.instrument("list_agents", http.HandlerFunc(s.handleListAgents)))
	mux.Handle("POST /agents", s.instrument("create_agent", http.HandlerFunc(s.handleCreateAgent)))
	mux.Handle("GET /agents/{id}", s.instrument("get_agent", http.HandlerFunc(s.handleGetAgent)))
	mux.Handle("PUT /agents/{id}", s.instrument("update_agent", http.HandlerFunc(s.handleUpdateAgent)))
	mux.Handle("DELETE /agents/{id}", s.instrument("delete_agent", http.HandlerFunc(s.handleDeleteAgent)))
	mux.Handle("POST /agents/{id}/run", s.instrument("run_agent", http.HandlerFunc(s.handleRunAgent)))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", handleHealth)
	return withCORS(mux)
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
