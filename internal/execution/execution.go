package execution

import (
	"time"

	xerrors "AgentDock/internal/errors"
)

// Status 表示一次执行在生命周期中的状态。
//
// 当前范围内调度器只会立即产出 running：真正的工作负载编排是扩展点，
// 后续的状态流转由接入的后端负责。
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Execution 是一次调用请求的受理回执。
//
// AgentName 是调用时刻的反规范化快照，后续 Agent 改名或删除都不影响
// 已产出的执行记录。
type Execution struct {
	ID        string         `json:"executionId"`
	AgentID   string         `json:"agentId"`
	AgentName string         `json:"agentName"`
	Status    Status         `json:"status"`
	StartTime time.Time      `json:"startTime"`
	Input     map[string]any `json:"input"`
	Message   string         `json:"message,omitempty"`
}

// RunRequest 描述一次执行请求的入参。
type RunRequest struct {
	Input map[string]any `json:"input"`
}

const (
	CodeExecutionSubmit xerrors.Code = "EXECUTION_SUBMIT_FAILED"
)

func init() {
	xerrors.Register(CodeExecutionSubmit, xerrors.Attributes{
		Message:   "failed to submit execution",
		Severity:  xerrors.SeverityCritical,
		Retryable: true,
		Alert:     true,
	})
}

// IsValidStatus 检查给定的执行状态是否为支持的枚举值。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed:
		return true
	default:
		return false
	}
}
