package service

import (
	"testing"

	"github.com/shange6/wantong/internal/mes/entity"
)

func resolutionsFromRows(rows []ImportRow) []*Resolution {
	out := make([]*Resolution, 0, len(rows))
	for _, row := range rows {
		out = append(out, &Resolution{Row: row, Action: ActionCreate})
	}
	return out
}

func TestBuildHierarchyRejectsUnresolvedParent(t *testing.T) {
	ix := NewCatalogIndex(nil, nil)
	rows := []ImportRow{
		{Code: "WT01", Wtcode: "A", Count: 1},
		{Code: "WT01.1", Wtcode: "A.1", Count: 2},
		{Code: "WT99.9", Wtcode: "Z.9.9", Count: 1}, // 父级 Z.9 不存在
	}

	accepted, rejected, warnings := BuildHierarchy("P-001", resolutionsFromRows(rows), nil, ix)
	if len(accepted) != 2 {
		t.Fatalf("Expected 2 accepted, got %d", len(accepted))
	}
	if len(rejected) != 1 {
		t.Fatalf("Expected 1 rejected, got %d", len(rejected))
	}
	if rejected[0].Reason != ReasonUnresolvedParent || rejected[0].Action != ActionRejected {
		t.Errorf("Unexpected rejection: %+v", rejected[0])
	}
	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %v", warnings)
	}
}

func TestBuildHierarchyDeferredParentInBatch(t *testing.T) {
	// 子行排在父行前面：第一遍挂起，全集齐了以后延迟解析成功
	ix := NewCatalogIndex(nil, nil)
	rows := []ImportRow{
		{Code: "WT01.1.1", Wtcode: "A.1.1", Count: 1},
		{Code: "WT01.1", Wtcode: "A.1", Count: 1},
		{Code: "WT01", Wtcode: "A", Count: 1},
	}

	accepted, rejected, _ := BuildHierarchy("P-001", resolutionsFromRows(rows), nil, ix)
	if len(rejected) != 0 {
		t.Fatalf("Expected no rejections, got %+v", rejected)
	}
	if len(accepted) != 3 {
		t.Fatalf("Expected 3 accepted, got %d", len(accepted))
	}
}

func TestBuildHierarchyParentFromBatchComponent(t *testing.T) {
	// 部件经独立通道同批到达，零件父级指向它
	ix := NewCatalogIndex(nil, nil)
	rows := []ImportRow{
		{Code: "WT01.1", Wtcode: "A.3.1", Count: 1},
	}
	batch := map[string]struct{}{"A.3": {}}

	accepted, rejected, _ := BuildHierarchy("P-001", resolutionsFromRows(rows), batch, ix)
	if len(rejected) != 0 || len(accepted) != 1 {
		t.Fatalf("Expected batch component to resolve parent, accepted=%d rejected=%d",
			len(accepted), len(rejected))
	}
	if accepted[0].Row.ParentCode != "A.3" {
		t.Errorf("Expected derived parent A.3, got %q", accepted[0].Row.ParentCode)
	}
}

func TestBuildHierarchyParentFromCatalog(t *testing.T) {
	comp := entity.Component{ProjectCode: "P-001", Wtcode: "A.3"}
	ix := NewCatalogIndex([]entity.Component{comp}, nil)
	rows := []ImportRow{
		{Code: "WT01.1", Wtcode: "A.3.1", Count: 1},
	}

	accepted, rejected, _ := BuildHierarchy("P-001", resolutionsFromRows(rows), nil, ix)
	if len(rejected) != 0 || len(accepted) != 1 {
		t.Fatalf("Expected catalog component to resolve parent, accepted=%d rejected=%d",
			len(accepted), len(rejected))
	}
}

func TestBuildTreeRollupMass(t *testing.T) {
	rows := []ImportRow{
		{Code: "WT01", Wtcode: "A", Count: 2, UnitMass: 5, TotalMass: 10},
		{Code: "WT01.1", Wtcode: "A.1", Count: 4, UnitMass: 1.5, TotalMass: 6},
	}

	roots := BuildTree(rows)
	if len(roots) != 1 {
		t.Fatalf("Expected a single root, got %d", len(roots))
	}
	root := roots[0]
	if len(root.Children) != 1 {
		t.Fatalf("Expected one child, got %d", len(root.Children))
	}
	// 节点汇总 = 自身总重 + 子树汇总
	if root.RollupMass != 16 {
		t.Errorf("Expected rollup 16, got %g", root.RollupMass)
	}
	if root.Children[0].RollupMass != 6 {
		t.Errorf("Expected child rollup 6, got %g", root.Children[0].RollupMass)
	}
}

func TestBuildTreeOrphanPromotedToRoot(t *testing.T) {
	rows := []ImportRow{
		{Code: "WT01", Wtcode: "A", TotalMass: 1},
		{Code: "WT02.5", Wtcode: "B.5", TotalMass: 2}, // 父级 B 不在本表
	}

	roots := BuildTree(rows)
	if len(roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(roots))
	}
}

func TestBuildResolutionTreeActions(t *testing.T) {
	resolutions := []*Resolution{
		{Row: ImportRow{Code: "WT01", Wtcode: "A", TotalMass: 1}, Action: ActionUpdate},
		{Row: ImportRow{Code: "WT01.1", Wtcode: "A.1", TotalMass: 2}, Action: ActionCreate},
	}

	roots := BuildResolutionTree(resolutions)
	if len(roots) != 1 {
		t.Fatalf("Expected one root, got %d", len(roots))
	}
	if roots[0].Action != ActionUpdate {
		t.Errorf("Expected update action on root, got %q", roots[0].Action)
	}
	if roots[0].Children[0].Action != ActionCreate {
		t.Errorf("Expected create action on child, got %q", roots[0].Children[0].Action)
	}
}
