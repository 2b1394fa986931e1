package registry

import "strings"

// Filter 在已经取回的结果集上执行客户端语义的搜索组合：
// 分类为 CategoryAll 或精确相等，且搜索词为空或是 name/description 的
// 大小写不敏感子串。
//
// 纯函数：不修改输入，不排序，结果保持输入顺序。
func Filter(agents []*Agent, searchTerm, category string) []*Agent {
	term := strings.ToLower(searchTerm)

	results := make([]*Agent, 0, len(agents))
	for _, agent := range agents {
		if agent == nil {
			continue
		}
		if category != "" && category != CategoryAll && agent.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(agent.Name), term) &&
			!strings.Contains(strings.ToLower(agent.Description), term) {
			continue
		}
		results = append(results, agent)
	}
	return results
}
