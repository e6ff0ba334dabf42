package service

import (
	"fmt"
	"sort"
	"strings"
)

// ReasonUnresolvedParent 行被剔除的原因：父级万通码在目录和本批次里都不存在
const ReasonUnresolvedParent = "UnresolvedParent"

// parentWtcode 万通码的上级（A.3.1 的上级是 A.3），顶层返回空串
func parentWtcode(wtcode string) string {
	i := strings.LastIndex(wtcode, ".")
	if i < 0 {
		return ""
	}
	return wtcode[:i]
}

// BuildHierarchy 校验调和结果的父级链接。父级可以来自目录快照、同批到达
// 的部件、或本批次里的其他行。第一遍未解析到的行先挂起（部件可能经由
// 独立通道晚到），全量集合齐了以后做延迟解析；仍未解析的行被剔除
// （ReasonUnresolvedParent），同批其余行不受影响。
func BuildHierarchy(projectCode string, resolutions []*Resolution, batchComponents map[string]struct{}, ix *CatalogIndex) (accepted, rejected []*Resolution, warnings []string) {
	seen := make(map[string]struct{}, len(resolutions))

	resolvable := func(parent string) bool {
		if parent == "" {
			return true // 顶层
		}
		if ix.LookupComponentByWtcode(projectCode, parent) != nil {
			return true
		}
		if _, ok := batchComponents[parent]; ok {
			return true
		}
		_, ok := seen[parent]
		return ok
	}

	var deferred []*Resolution
	for _, res := range resolutions {
		if res.Row.ParentCode == "" {
			res.Row.ParentCode = parentWtcode(res.Row.Wtcode)
		}
		seen[res.Row.Wtcode] = struct{}{}

		if resolvable(res.Row.ParentCode) {
			accepted = append(accepted, res)
			continue
		}
		deferred = append(deferred, res)
	}

	// 延迟解析：此时 seen 已是全批次的万通码集合
	for _, res := range deferred {
		if resolvable(res.Row.ParentCode) {
			accepted = append(accepted, res)
			continue
		}
		res.Action = ActionRejected
		res.Reason = ReasonUnresolvedParent
		rejected = append(rejected, res)
		warnings = append(warnings, fmt.Sprintf("%s代号 %s 的父级 %s 不存在，该行被剔除",
			msgErrPrefix, res.Row.Code, res.Row.ParentCode))
	}

	return accepted, rejected, warnings
}

// TreeNode 展示层的树节点。Children 是按万通码前缀归组的视图，不是存储关系。
type TreeNode struct {
	ImportRow
	Action     string      `json:"action,omitempty"`
	RollupMass float64     `json:"rollup_mass"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// BuildTree 把扁平明细按万通码前缀组装成树（森林）。找不到父级的节点提升为根。
func BuildTree(rows []ImportRow) []*TreeNode {
	nodes := make(map[string]*TreeNode, len(rows))
	for i := range rows {
		nodes[rows[i].Wtcode] = &TreeNode{ImportRow: rows[i]}
	}

	// 排序保证自顶向下挂载
	wtcodes := make([]string, 0, len(nodes))
	for w := range nodes {
		wtcodes = append(wtcodes, w)
	}
	sort.Strings(wtcodes)

	var roots []*TreeNode
	for _, w := range wtcodes {
		node := nodes[w]
		if parent, ok := nodes[parentWtcode(w)]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	RollupTree(roots)
	return roots
}

// BuildResolutionTree 带落库动作标注的树（提交前的审阅视图）
func BuildResolutionTree(resolutions []*Resolution) []*TreeNode {
	rows := make([]ImportRow, 0, len(resolutions))
	actions := make(map[string]string, len(resolutions))
	for _, res := range resolutions {
		rows = append(rows, res.Row)
		actions[res.Row.Wtcode] = res.Action
	}
	roots := BuildTree(rows)
	var mark func(nodes []*TreeNode)
	mark = func(nodes []*TreeNode) {
		for _, n := range nodes {
			n.Action = actions[n.Wtcode]
			mark(n.Children)
		}
	}
	mark(roots)
	return roots
}

// RollupTree 后序遍历计算汇总重量：节点汇总 = 自身总重 + 全部子孙汇总。
// 汇总值只在读取时推导，从不落库，避免和活动子集漂移。
func RollupTree(nodes []*TreeNode) float64 {
	var sum float64
	for _, n := range nodes {
		n.RollupMass = n.TotalMass + RollupTree(n.Children)
		sum += n.RollupMass
	}
	return sum
}
