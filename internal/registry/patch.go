package registry

import (
	"encoding/json"
	"fmt"
	"time"

	xerrors "AgentDock/internal/errors"
)

// Patch 是针对 Agent 的封闭稀疏更新结构。
//
// 只有这里列出的字段可以被更新；指针为 nil 表示“保持原值”。
// Attributes 中值为 nil 的键表示删除对应的透传属性（JSON null）。
// UpdatedAt 由注册表在应用前统一盖章，客户端提交的同名字段会被丢弃。
type Patch struct {
	Name        *string
	Description *string
	Category    *string
	Attributes  map[string]any
	UpdatedAt   time.Time
}

// ParsePatch 将请求体解析为 Patch。
//
// id、createdAt、updatedAt 属于注册表自身，出现时静默剥离；
// 除此之外的未知字段名一律拒绝，不做透传。
func ParsePatch(data []byte) (Patch, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Patch{}, xerrors.Wrap(CodeAgentValidation, err, "请求体不是合法的 JSON 对象")
	}

	patch := Patch{}
	for key, raw := range doc {
		switch key {
		case "id", "createdAt", "updatedAt":
			// 注册表拥有这些字段，剥离而非报错。
		case "name":
			var name string
			if err := json.Unmarshal(raw, &name); err != nil {
				return Patch{}, xerrors.Wrap(CodeAgentValidation, err, "name 必须是字符串")
			}
			patch.Name = &name
		case "description":
			var description string
			if err := json.Unmarshal(raw, &description); err != nil {
				return Patch{}, xerrors.Wrap(CodeAgentValidation, err, "description 必须是字符串")
			}
			patch.Description = &description
		case "category":
			var category string
			if err := json.Unmarshal(raw, &category); err != nil {
				return Patch{}, xerrors.Wrap(CodeAgentValidation, err, "category 必须是字符串")
			}
			patch.Category = &category
		case "attributes":
			var attrs map[string]any
			if err := json.Unmarshal(raw, &attrs); err != nil {
				return Patch{}, xerrors.Wrap(CodeAgentValidation, err, "attributes 必须是 JSON 对象")
			}
			patch.Attributes = attrs
		default:
			return Patch{}, xerrors.New(CodeAgentValidation, fmt.Sprintf("不支持的更新字段: %s", key))
		}
	}
	return patch, nil
}

// apply 将稀疏更新写入目标记录。
func (p Patch) apply(agent *Agent) {
	if p.Name != nil {
		agent.Name = *p.Name
	}
	if p.Description != nil {
		agent.Description = *p.Description
	}
	if p.Category != nil {
		agent.Category = *p.Category
	}
	for key, value := range p.Attributes {
		if _, reserved := reservedFields[key]; reserved {
			continue
		}
		if value == nil {
			delete(agent.Attributes, key)
			continue
		}
		if agent.Attributes == nil {
			agent.Attributes = make(map[string]any)
		}
		agent.Attributes[key] = value
	}
	if !p.UpdatedAt.IsZero() {
		agent.UpdatedAt = p.UpdatedAt
	}
}
