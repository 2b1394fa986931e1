package registry

import (
	"encoding/json"
	"time"

	xerrors "AgentDock/internal/errors"
)

// CategoryAll 是保留的分类哨兵值，表示“不过滤”，永远不会作为真实分类落库。
const CategoryAll = "All"

// Agent 描述目录中的一条可调用任务定义。
//
// 除固定字段外，客户端在创建时可以附带任意描述性字段，这些字段以
// Attributes 的形式透传保存，并在序列化时平铺回顶层 JSON 对象。
type Agent struct {
	ID          string
	Name        string
	Description string
	Category    string
	Attributes  map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrAgentNotFound 表示指定的 Agent 不存在。
	ErrAgentNotFound = xerrors.New(CodeAgentNotFound, "agent not found")
)

const (
	CodeAgentNotFound   xerrors.Code = "AGENT_NOT_FOUND"
	CodeAgentValidation xerrors.Code = "AGENT_VALIDATION_FAILED"
)

func init() {
	xerrors.Register(CodeAgentNotFound, xerrors.Attributes{
		Message:   "agent not found",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeAgentValidation, xerrors.Attributes{
		Message:   "agent validation failed",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
}

// reservedFields 是注册表自身拥有的字段名，客户端提交的同名字段不会进入 Attributes。
var reservedFields = map[string]struct{}{
	"id":          {},
	"name":        {},
	"description": {},
	"category":    {},
	"createdAt":   {},
	"updatedAt":   {},
}

// MarshalJSON 将固定字段与透传属性平铺成同一个 JSON 对象。
func (a *Agent) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(a.Attributes)+6)
	for key, value := range a.Attributes {
		if _, reserved := reservedFields[key]; reserved {
			continue
		}
		doc[key] = value
	}
	doc["id"] = a.ID
	doc["name"] = a.Name
	doc["description"] = a.Description
	doc["category"] = a.Category
	doc["createdAt"] = a.CreatedAt
	doc["updatedAt"] = a.UpdatedAt
	return json.Marshal(doc)
}

// UnmarshalJSON 解析平铺的 JSON 对象，未知字段收入 Attributes。
func (a *Agent) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	next := Agent{}
	for key, raw := range doc {
		switch key {
		case "id":
			if err := json.Unmarshal(raw, &next.ID); err != nil {
				return err
			}
		case "name":
			if err := json.Unmarshal(raw, &next.Name); err != nil {
				return err
			}
		case "description":
			if err := json.Unmarshal(raw, &next.Description); err != nil {
				return err
			}
		case "category":
			if err := json.Unmarshal(raw, &next.Category); err != nil {
				return err
			}
		case "createdAt":
			if err := json.Unmarshal(raw, &next.CreatedAt); err != nil {
				return err
			}
		case "updatedAt":
			if err := json.Unmarshal(raw, &next.UpdatedAt); err != nil {
				return err
			}
		default:
			var value any
			if err := json.Unmarshal(raw, &value); err != nil {
				return err
			}
			if next.Attributes == nil {
				next.Attributes = make(map[string]any)
			}
			next.Attributes[key] = value
		}
	}
	*a = next
	return nil
}

// Clone 返回 Agent 的深拷贝，保证存储内部状态不被调用方修改。
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Attributes = cloneAttributes(a.Attributes)
	return &clone
}

func cloneAttributes(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	cloned := make(map[string]any, len(attrs))
	for key, value := range attrs {
		cloned[key] = value
	}
	return cloned
}
