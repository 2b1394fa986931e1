package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	xerrors "AgentDock/internal/errors"
	"AgentDock/internal/execution"
	"AgentDock/internal/registry"
	"AgentDock/pkg/logger"
)

type listResponse struct {
	Agents []*registry.Agent `json:"agents"`
	Count  int               `json:"count"`
}

// handleListAgents 处理目录列表请求，category 缺省或为 All 时返回全量，
// search 参数在查询结果上做大小写不敏感的子串筛选。
func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.agents.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.respondError(w, err, "Failed to get agents")
		return
	}
	if term := r.URL.Query().Get("search"); term != "" {
		agents = registry.Filter(agents, term, "")
	}
	writeJSON(w, http.StatusOK, listResponse{Agents: agents, Count: len(agents)})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.agents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, err, "Failed to get agent")
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var draft registry.Agent
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "请求体解析失败")
		return
	}
	agent, err := s.agents.Create(r.Context(), &draft)
	if err != nil {
		s.respondError(w, err, "Failed to create agent")
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "读取请求体失败")
		return
	}
	patch, err := registry.ParsePatch(body)
	if err != nil {
		s.respondError(w, err, "Failed to update agent")
		return
	}
	agent, err := s.agents.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.respondError(w, err, "Failed to update agent")
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// handleDeleteAgent 幂等删除：无论记录此前是否存在都返回成功。
func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.agents.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, err, "Failed to delete agent")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Agent deleted successfully"})
}

func (s *Server) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	var req execution.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "请求体解析失败")
		return
	}
	exec, err := s.executions.Run(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.respondError(w, err, "Failed to run agent")
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError 把内部错误统一转换为 {error: string} 信封。
//
// NotFound 与校验错误原样透出；其余一律折叠为 500 加通用文案，
// 详细原因只进日志，绝不泄露给客户端。
func (s *Server) respondError(w http.ResponseWriter, err error, fallback string) {
	if e, ok := xerrors.From(err); ok {
		switch e.Code() {
		case registry.CodeAgentNotFound, xerrors.CodeNotFound:
			writeError(w, http.StatusNotFound, "Agent not found")
			return
		case registry.CodeAgentValidation, xerrors.CodeInvalidArgument:
			writeError(w, http.StatusBadRequest, e.Message())
			return
		}
	}
	logger.L().Error("请求处理失败",
		slog.Any("error", err),
		slog.String("code", string(xerrors.CodeOf(err))),
	)
	writeError(w, http.StatusInternalServerError, fallback)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
