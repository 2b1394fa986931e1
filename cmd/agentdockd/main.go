package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"AgentDock/internal/api"
	"AgentDock/internal/config"
	"AgentDock/internal/execution"
	"AgentDock/internal/registry"
	"AgentDock/pkg/logger"
)

// main 是 AgentDock 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("agentdockd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("AGENTDOCK_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "agentdock.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.Outputs,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := createAgentStore(ctx, cfg)
	if err != nil {
		return err
	}

	backend, err := createDispatchBackend(cfg)
	if err != nil {
		_ = store.Close()
		return err
	}

	agents := registry.NewService(store)
	defer agents.Close()

	executions := execution.NewService(agents, backend)
	defer executions.Close()

	logger.L().Info("agentdockd 启动",
		slog.String("address", cfg.Server.Address),
		slog.String("store_driver", cfg.Storage.AgentStore.Driver),
		slog.String("dispatch_driver", cfg.Dispatch.Driver),
	)

	server := api.NewServer(cfg.Server.Address, agents, executions)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func createAgentStore(ctx context.Context, cfg *config.Config) (registry.Store, error) {
	switch cfg.Storage.AgentStore.Driver {
	case "", "memory":
		return registry.NewMemoryStore(), nil
	case "mysql":
		return registry.NewMySQLStore(ctx, registry.MySQLConfig{
			DSN:             cfg.Storage.AgentStore.DSN,
			MaxOpenConns:    cfg.Storage.AgentStore.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.AgentStore.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Storage.AgentStore.ConnMaxLifetimeSeconds) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Storage.AgentStore.ConnMaxIdleTimeSeconds) * time.Second,
		})
	default:
		return nil, fmt.Errorf("未知的存储驱动: %s", cfg.Storage.AgentStore.Driver)
	}
}

func createDispatchBackend(cfg *config.Config) (execution.Backend, error) {
	switch cfg.Dispatch.Driver {
	case "", "none":
		return execution.NoopBackend{}, nil
	case "redis":
		return execution.NewRedisBackend(execution.RedisBackendConfig{
			Address:  cfg.Dispatch.Redis.Address,
			Password: cfg.Dispatch.Redis.Password,
			DB:       cfg.Dispatch.Redis.DB,
			Queue:    cfg.Dispatch.Redis.Queue,
		})
	case "rabbitmq":
		return execution.NewRabbitMQBackend(execution.RabbitMQBackendConfig{
			URL:        cfg.Dispatch.RabbitMQ.URL,
			Queue:      cfg.Dispatch.RabbitMQ.Queue,
			Durable:    cfg.Dispatch.RabbitMQ.Durable,
			AutoDelete: cfg.Dispatch.RabbitMQ.AutoDelete,
		})
	default:
		return nil, fmt.Errorf("未知的交接后端: %s", cfg.Dispatch.Driver)
	}
}
